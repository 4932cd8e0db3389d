package smtpclient

import (
	"fmt"

	"github.com/sendkit/smtpsend"
	"github.com/sendkit/smtpsend/internal/textproto"
)

// sendEnvelope issues MAIL FROM followed by one RCPT TO per recipient
// (§4.5). When pipelined is true (server advertised PIPELINING), every
// command is written before any reply is read, and replies are then
// consumed strictly in FIFO order to match the commands (§5 Ordering
// guarantees). A MAIL rejection aborts immediately with its *smtp.Error;
// RCPT rejections are collected per recipient and never abort early — the
// caller decides whether "all rejected" is fatal.
func sendEnvelope(conn *textproto.Conn, pipelined bool, from string, recipients []string, mo mailOptions, ro rcptOptions) ([]smtp.RecipientResult, *smtp.Error) {
	mailCmd := mailFromCommand(from, mo)
	rcptCmd := func(addr string) string { return rcptToCommand(addr, ro) }

	if pipelined {
		cmds := make([]string, 0, len(recipients)+1)
		cmds = append(cmds, mailCmd)
		for _, rcpt := range recipients {
			cmds = append(cmds, rcptCmd(rcpt))
		}
		if err := conn.WriteLines(cmds...); err != nil {
			return nil, ioError(err)
		}
	} else {
		if err := conn.WriteLine(mailCmd); err != nil {
			return nil, ioError(err)
		}
	}

	mailReply, err := conn.ReadReply()
	if err != nil {
		return nil, ioError(err)
	}
	if mailReply.Code/100 != 2 {
		if pipelined {
			// The RCPT commands were already written alongside MAIL; the
			// server will answer each in turn (typically "bad sequence of
			// commands"). Drain them so the next command this connection
			// issues (an implicit RSET) reads its own reply, not a stale
			// RCPT one.
			for range recipients {
				if _, err := conn.ReadReply(); err != nil {
					break
				}
			}
		}
		return nil, smtp.UnexpectedCodeError(2, toReply(mailReply))
	}

	results := make([]smtp.RecipientResult, 0, len(recipients))
	for _, rcpt := range recipients {
		if !pipelined {
			if err := conn.WriteLine(rcptCmd(rcpt)); err != nil {
				return nil, ioError(err)
			}
		}

		reply, err := conn.ReadReply()
		if err != nil {
			return nil, ioError(err)
		}

		result := smtp.RecipientResult{Address: rcpt, Reply: toReply(reply)}
		if reply.Code/100 != 2 {
			result.Err = smtp.UnexpectedCodeError(2, result.Reply)
		}
		results = append(results, result)
	}

	return results, nil
}

// mailFromCommand builds a MAIL FROM command line with whichever extension
// parameters mo carries set (RFC 1870 SIZE, RFC 6152 BODY, RFC 6531
// SMTPUTF8, RFC 3461 DSN RET/ENVID).
func mailFromCommand(from string, mo mailOptions) string {
	cmd := fmt.Sprintf("MAIL FROM:<%s>", from)
	if mo.size > 0 {
		cmd += fmt.Sprintf(" SIZE=%d", mo.size)
	}
	if mo.body != "" {
		cmd += " BODY=" + mo.body
	}
	if mo.smtpUTF8 {
		cmd += " SMTPUTF8"
	}
	if mo.dsnRet != "" {
		cmd += " RET=" + mo.dsnRet
	}
	if mo.dsnEnvID != "" {
		cmd += " ENVID=" + mo.dsnEnvID
	}
	return cmd
}

// rcptToCommand builds a RCPT TO command line with whichever DSN parameters
// ro carries set (RFC 3461 NOTIFY/ORCPT).
func rcptToCommand(to string, ro rcptOptions) string {
	cmd := fmt.Sprintf("RCPT TO:<%s>", to)
	if ro.dsnNotify != "" {
		cmd += " NOTIFY=" + ro.dsnNotify
	}
	if ro.dsnOrcpt != "" {
		cmd += " ORCPT=" + ro.dsnOrcpt
	}
	return cmd
}
