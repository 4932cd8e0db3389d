// Package textproto implements the low-level SMTP wire protocol:
// line reading/writing, multi-line reply parsing, and dot-stuffed
// DATA streams. It sits between net.Conn and the SMTP client/server.
package textproto

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// MaxCommandLineLen is the maximum length of an SMTP command line
// including CRLF (RFC 5321 §4.5.3.1.4).
const MaxCommandLineLen = 512

// MaxTextLineLen is the maximum length of a text line in the message body
// including CRLF (RFC 5322 §2.1.1).
const MaxTextLineLen = 1000

// MaxReplyLineLen is a generous limit for a single reply line to prevent
// memory exhaustion from a misbehaving or malicious server.
const MaxReplyLineLen = 4096

// MaxTotalReplyLen bounds the accumulated text of a multi-line reply, so a
// server cannot exhaust memory by stringing together many lines that each
// individually pass MaxReplyLineLen.
const MaxTotalReplyLen = 65536

// Conn wraps a net.Conn with buffered reading and writing for SMTP protocol I/O.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewConn creates a new protocol Conn wrapping the given network connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		r:    bufio.NewReaderSize(c, 4096),
		w:    bufio.NewWriterSize(c, 4096),
	}
}

// ReplaceConn replaces the underlying net.Conn (used after TLS upgrade)
// and resets the buffered reader/writer.
func (c *Conn) ReplaceConn(nc net.Conn) {
	c.conn = nc
	c.r = bufio.NewReaderSize(nc, 4096)
	c.w = bufio.NewWriterSize(nc, 4096)
}

// NetConn returns the underlying net.Conn.
func (c *Conn) NetConn() net.Conn {
	return c.conn
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// SetDeadlineFromContext sets the connection read/write deadline from a
// context's deadline. If the context has no deadline, the deadline is cleared.
func (c *Conn) SetDeadlineFromContext(ctx context.Context) {
	if dl, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(dl)
	} else {
		c.conn.SetDeadline(time.Time{})
	}
}

// SetReadDeadline sets the read deadline on the underlying connection.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline sets the write deadline on the underlying connection.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

// ReadLine reads a single \r\n-terminated line from the connection.
// The returned line does NOT include the trailing \r\n.
// Returns an error if the line exceeds maxLen bytes (including \r\n).
func (c *Conn) ReadLine(maxLen int) (string, error) {
	var line []byte
	for {
		chunk, isPrefix, err := c.r.ReadLine()
		line = append(line, chunk...)
		if err != nil {
			return "", err
		}
		if !isPrefix {
			break
		}
		// Still reading — check limit.
		if len(line) > maxLen {
			// Drain the rest of the line.
			for isPrefix {
				_, isPrefix, err = c.r.ReadLine()
				if err != nil {
					break
				}
			}
			return "", fmt.Errorf("smtp: line too long (%d bytes, max %d)", len(line), maxLen)
		}
	}
	if len(line) > maxLen-2 { // -2 for the \r\n we already consumed
		return "", fmt.Errorf("smtp: line too long (%d bytes, max %d)", len(line)+2, maxLen)
	}
	return string(line), nil
}

// WriteLine writes a line followed by \r\n and flushes the buffer.
func (c *Conn) WriteLine(line string) error {
	if _, err := c.w.WriteString(line); err != nil {
		return err
	}
	if _, err := c.w.WriteString("\r\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

// WriteLines writes multiple lines, each followed by \r\n, and flushes once.
func (c *Conn) WriteLines(lines ...string) error {
	for _, line := range lines {
		if _, err := c.w.WriteString(line); err != nil {
			return err
		}
		if _, err := c.w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return c.w.Flush()
}

// BufReader returns the underlying buffered reader.
func (c *Conn) BufReader() *bufio.Reader {
	return c.r
}

// BufWriter returns the underlying buffered writer.
func (c *Conn) BufWriter() *bufio.Writer {
	return c.w
}

// Cmd sends a command line and reads the reply. Convenience method for
// simple command/response exchanges.
func (c *Conn) Cmd(format string, args ...any) (Reply, error) {
	cmd := fmt.Sprintf(format, args...)
	if err := c.WriteLine(cmd); err != nil {
		return Reply{}, err
	}
	return c.ReadReply()
}

// DotWriter returns an io.WriteCloser that writes the message body to the
// connection with SMTP Transparency applied (leading dots doubled). Calling
// Close writes the ".\r\n" terminator and flushes the buffer (RFC 5321
// §4.5.2).
func (c *Conn) DotWriter() io.WriteCloser {
	return newTransparencyWriter(c.w)
}
