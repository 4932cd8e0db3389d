package smtpclient

import (
	"errors"
	"net"
	"strings"

	"github.com/sendkit/smtpsend"
	"github.com/sendkit/smtpsend/internal/textproto"
)

// toReply converts a wire-level textproto.Reply into the public smtp.Reply,
// extracting an enhanced status code when the first text line carries one
// that agrees with the reply's status class (§4.1).
func toReply(r textproto.Reply) smtp.Reply {
	var enhanced smtp.EnhancedCode
	lines := r.Lines
	if len(lines) > 0 {
		cl, su, de, rest := textproto.ParseEnhancedCode(r.Code, lines[0])
		if cl != 0 {
			enhanced = smtp.EnhancedCode{Class: cl, Subject: su, Detail: de}
			replaced := make([]string, len(lines))
			copy(replaced, lines)
			replaced[0] = rest
			lines = replaced
		}
	}
	return smtp.Reply{Code: smtp.ReplyCode(r.Code), Enhanced: enhanced, Lines: lines}
}

// classify turns a wire reply into a *smtp.Error when it doesn't belong to
// expectedClass (2 or 3), or nil when it does.
func classify(expectedClass int, r textproto.Reply) *smtp.Error {
	reply := toReply(r)
	if int(reply.Code)/100 == expectedClass {
		return nil
	}
	return smtp.UnexpectedCodeError(expectedClass, reply)
}

// ioError wraps a transport-level read/write failure, distinguishing an
// expired deadline (Timeout) and an unexpected EOF from other I/O errors per
// §7. Malformed replies reported by the reply parser are also classified
// as Io here.
func ioError(err error) *smtp.Error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return smtp.TimeoutError()
	}
	if strings.Contains(err.Error(), "EOF") {
		return smtp.UnexpectedEOFError()
	}
	return smtp.IOError(err)
}
