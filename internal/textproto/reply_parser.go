package textproto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reply represents a parsed SMTP reply (RFC 5321 §4.2).
type Reply struct {
	Code  int      // Three-digit reply code.
	Lines []string // One or more reply text lines (without code or dash/space prefix).
}

// ReadReply reads a single-line or multi-line SMTP reply from the
// connection. Multi-line replies use the "code-hyphen" continuation
// convention (RFC 5321 §4.2); every continuation line must repeat the same
// three-digit code as the first.
func (c *Conn) ReadReply() (Reply, error) {
	var lines []string
	total := 0
	var firstCode int

	for {
		line, err := c.ReadLine(MaxReplyLineLen)
		if err != nil {
			return Reply{}, fmt.Errorf("smtp: reading reply: %w", err)
		}

		if len(line) < 3 {
			return Reply{}, errors.New("smtp: reply line too short")
		}

		code, err := strconv.Atoi(line[:3])
		if err != nil {
			return Reply{}, fmt.Errorf("smtp: invalid reply code %q: %w", line[:3], err)
		}
		if len(lines) == 0 {
			firstCode = code
		} else if code != firstCode {
			return Reply{}, fmt.Errorf("smtp: reply code mismatch: %d then %d", firstCode, code)
		}

		var text string
		var sep byte = ' '
		if len(line) > 3 {
			sep = line[3]
			text = line[4:]
		}

		total += len(text)
		if total > MaxTotalReplyLen {
			return Reply{}, fmt.Errorf("smtp: reply exceeds %d total bytes", MaxTotalReplyLen)
		}

		switch sep {
		case '-':
			lines = append(lines, text)
		case ' ':
			lines = append(lines, text)
			return Reply{Code: code, Lines: lines}, nil
		default:
			return Reply{}, fmt.Errorf("smtp: invalid reply separator %q", sep)
		}
	}
}

// WriteReply writes a single-line or multi-line reply to the connection.
func (c *Conn) WriteReply(code int, lines ...string) error {
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, line := range lines {
		var sep byte = ' '
		if i < len(lines)-1 {
			sep = '-'
		}
		s := fmt.Sprintf("%d%c%s", code, sep, line)
		if _, err := c.w.WriteString(s); err != nil {
			return err
		}
		if _, err := c.w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return c.w.Flush()
}

// ParseEnhancedCode attempts to parse an enhanced status code (RFC 3463)
// from the beginning of a reply text line. statusCode is the three-digit
// reply code the text line belongs to; the enhanced code's class digit
// must agree with the reply's status class (2/4/5), or the whole line is
// treated as having no enhanced code, since a disagreeing class is more
// likely ordinary text that happens to look like "N.N.N " than a genuine
// enhanced code.
func ParseEnhancedCode(statusCode int, text string) (class, subject, detail int, rest string) {
	parts := strings.SplitN(text, " ", 2)
	code := parts[0]
	rest = ""
	if len(parts) == 2 {
		rest = parts[1]
	}

	segments := strings.Split(code, ".")
	if len(segments) != 3 {
		return 0, 0, 0, text
	}

	c, err1 := strconv.Atoi(segments[0])
	s, err2 := strconv.Atoi(segments[1])
	d, err3 := strconv.Atoi(segments[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, text
	}
	if c != 2 && c != 4 && c != 5 {
		return 0, 0, 0, text
	}
	if statusClass := statusCode / 100; c != statusClass {
		return 0, 0, 0, text
	}

	return c, s, d, rest
}
