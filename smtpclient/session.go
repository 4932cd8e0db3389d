package smtpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/sendkit/smtpsend"
	"github.com/sendkit/smtpsend/internal/textproto"
)

// Session is a single SMTP connection driven through the states of §4.5.
// It is not safe for concurrent use: the protocol is strictly
// request/reply, and a Session serves at most one caller at a time (§5).
// Once Closed, a Session must be discarded rather than reused.
type Session struct {
	conn      *textproto.Conn
	netConn   net.Conn
	phase     Phase
	exts      smtp.Extensions
	localName string
	hostname  string
	tls       bool
	tlsConfig *tls.Config
	log       *logrus.Entry
}

// Phase returns the session's current state.
func (s *Session) Phase() Phase { return s.phase }

// Extensions returns the capability set from the most recent EHLO.
func (s *Session) Extensions() smtp.Extensions { return s.exts }

// IsTLS reports whether the connection is currently TLS-wrapped.
func (s *Session) IsTLS() bool { return s.tls }

// greet reads the connection banner (RFC 5321 §4.3.1) and advances to
// Greeted.
func (s *Session) greet(ctx context.Context) error {
	if err := s.requirePhase("greet", PhaseDisconnected); err != nil {
		return err
	}
	s.conn.SetDeadlineFromContext(ctx)

	reply, err := s.conn.ReadReply()
	if err != nil {
		return s.fail(ioError(err))
	}
	if reply.Code != int(smtp.ReplyServiceReady) {
		return s.fail(smtp.UnexpectedCodeError(2, toReply(reply)))
	}
	if len(reply.Lines) > 0 {
		s.hostname = reply.Lines[0]
	}
	s.phase = PhaseGreeted
	s.log.WithField("banner", s.hostname).Debug("session: greeted")
	return nil
}

// ehlo sends EHLO and falls back to HELO if rejected, refreshing the
// capability set and advancing to Ready.
func (s *Session) ehlo(ctx context.Context) error {
	if err := s.requirePhase("ehlo", PhaseGreeted); err != nil {
		return err
	}
	s.conn.SetDeadlineFromContext(ctx)

	reply, err := s.conn.Cmd("EHLO %s", s.localName)
	if err != nil {
		return s.fail(ioError(err))
	}

	switch {
	case reply.Code == int(smtp.ReplyOK):
		s.exts = smtp.ParseEHLOResponse(reply.Lines)
	case reply.Code == int(smtp.ReplySyntaxError) || reply.Code == int(smtp.ReplyCommandNotImpl):
		reply, err = s.conn.Cmd("HELO %s", s.localName)
		if err != nil {
			return s.fail(ioError(err))
		}
		if reply.Code != int(smtp.ReplyOK) {
			return s.fail(smtp.UnexpectedCodeError(2, toReply(reply)))
		}
		s.exts = nil
	default:
		return s.fail(smtp.UnexpectedCodeError(2, toReply(reply)))
	}

	s.phase = PhaseReady
	s.log.WithField("extensions", len(s.exts)).Debug("session: ehlo complete")
	return nil
}

// StartTLS upgrades the connection to TLS (RFC 3207) and re-issues EHLO,
// discarding the pre-upgrade capability set per §3's invariant.
func (s *Session) StartTLS(ctx context.Context, config *tls.Config) error {
	if err := s.requirePhase("starttls", PhaseReady); err != nil {
		return err
	}
	if s.tls {
		return smtp.InvalidStateError("starttls: connection is already TLS")
	}
	if !s.exts.Has(smtp.ExtSTARTTLS) {
		return smtp.InvalidStateError("starttls: server did not advertise STARTTLS")
	}
	s.conn.SetDeadlineFromContext(ctx)

	reply, err := s.conn.Cmd("STARTTLS")
	if err != nil {
		return s.fail(ioError(err))
	}
	if reply.Code != int(smtp.ReplyServiceReady) {
		return s.fail(smtp.UnexpectedCodeError(2, toReply(reply)))
	}

	tlsConn := tls.Client(s.netConn, config)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return s.fail(smtp.TLSError(err))
	}

	s.netConn = tlsConn
	s.conn.ReplaceConn(tlsConn)
	s.tls = true
	s.phase = PhaseGreeted // a fresh EHLO is mandatory before Ready (§3).
	s.log.Debug("session: starttls upgrade complete")

	return s.ehlo(ctx)
}

// Authenticate selects a SASL mechanism from the server's advertised AUTH
// list and creds (§4.3), then drives the challenge/response exchange.
func (s *Session) Authenticate(ctx context.Context, creds smtp.Credentials) error {
	if err := s.requirePhase("auth", PhaseReady); err != nil {
		return err
	}
	if !s.exts.Has(smtp.ExtAUTH) {
		return smtp.UnsupportedAuthError(nil, creds.Kind.String())
	}
	s.conn.SetDeadlineFromContext(ctx)

	mech, err := smtp.SelectMechanism(s.exts.AuthMechanisms(), creds)
	if err != nil {
		return err
	}

	if err := authenticate(s.conn, mech, s.log); err != nil {
		var smtpErr *smtp.Error
		if errors.As(err, &smtpErr) && (smtpErr.Kind == smtp.KindIO || smtpErr.Kind == smtp.KindUnexpectedEOF) {
			s.phase = PhaseClosed
		}
		return err
	}

	s.phase = PhaseAuthenticated
	return nil
}

// checkSize fails fast with MessageTooLarge if the server advertised a
// SIZE ceiling the message exceeds (§4.5 SIZE handling).
func (s *Session) checkSize(size int64) error {
	if size <= 0 {
		return nil
	}
	limit, ok := s.exts.SizeLimit()
	if !ok || size <= limit {
		return nil
	}
	return smtp.MessageTooLargeError(limit)
}

// SendEnvelope issues MAIL FROM and RCPT TO for every recipient (§4.5),
// pipelining them in a single round trip when the server advertises
// PIPELINING. It returns a RecipientResult per recipient, continuing
// past individual RCPT rejections; the transaction is only aborted
// (AllRecipientsRejected) once every recipient has been rejected.
func (s *Session) SendEnvelope(ctx context.Context, from string, recipients []string, size int64, opts ...MailOption) ([]smtp.RecipientResult, error) {
	var mo mailOptions
	for _, opt := range opts {
		opt(&mo)
	}
	if mo.size == 0 {
		mo.size = size
	}
	return s.sendEnvelope(ctx, from, recipients, mo, rcptOptions{})
}

// SendEnvelopeWithDSN is SendEnvelope with RFC 3461 DSN parameters applied
// uniformly to every RCPT TO.
func (s *Session) SendEnvelopeWithDSN(ctx context.Context, from string, recipients []string, size int64, mailOpts []MailOption, rcptOpts []RcptOption) ([]smtp.RecipientResult, error) {
	var mo mailOptions
	for _, opt := range mailOpts {
		opt(&mo)
	}
	if mo.size == 0 {
		mo.size = size
	}
	var ro rcptOptions
	for _, opt := range rcptOpts {
		opt(&ro)
	}
	return s.sendEnvelope(ctx, from, recipients, mo, ro)
}

func (s *Session) sendEnvelope(ctx context.Context, from string, recipients []string, mo mailOptions, ro rcptOptions) ([]smtp.RecipientResult, error) {
	if err := s.requirePhase("mail", PhaseReady, PhaseAuthenticated); err != nil {
		return nil, err
	}
	if err := s.checkSize(mo.size); err != nil {
		return nil, err
	}
	s.conn.SetDeadlineFromContext(ctx)

	pipelined := s.exts.Has(smtp.ExtPIPELINING)
	results, smtpErr := sendEnvelope(s.conn, pipelined, from, recipients, mo, ro)
	if smtpErr != nil {
		s.abortTransaction(ctx, smtpErr)
		return nil, smtpErr
	}

	s.phase = PhaseInTxn

	accepted := 0
	for _, r := range results {
		if r.Accepted() {
			accepted++
		}
	}
	if accepted == 0 {
		rejected := smtp.AllRecipientsRejectedError(results)
		s.abortTransaction(ctx, rejected)
		return results, rejected
	}

	s.log.WithField("accepted", accepted).WithField("total", len(results)).Debug("session: envelope accepted")
	return results, nil
}

// Data streams r as the message body through the Transparency Writer and
// reads the final reply (§4.2, §4.5). At least one RCPT TO must already
// have been accepted.
func (s *Session) Data(ctx context.Context, r io.Reader) error {
	if err := s.requirePhase("data", PhaseInTxn); err != nil {
		return err
	}
	s.conn.SetDeadlineFromContext(ctx)

	reply, err := s.conn.Cmd("DATA")
	if err != nil {
		return s.fail(ioError(err))
	}
	if reply.Code/100 != 3 {
		smtpErr := smtp.UnexpectedCodeError(3, toReply(reply))
		s.abortTransaction(ctx, smtpErr)
		return smtpErr
	}
	s.phase = PhaseSending

	dw := s.conn.DotWriter()
	if _, err := io.Copy(dw, r); err != nil {
		dw.Close()
		return s.fail(ioError(err))
	}
	if err := dw.Close(); err != nil {
		return s.fail(ioError(err))
	}

	finalReply, err := s.conn.ReadReply()
	if err != nil {
		return s.fail(ioError(err))
	}
	if finalReply.Code/100 != 2 {
		smtpErr := smtp.UnexpectedCodeError(2, toReply(finalReply))
		s.abortTransaction(ctx, smtpErr)
		return smtpErr
	}

	s.phase = PhaseReady
	s.log.Debug("session: data transfer complete")
	return nil
}

// bdatChunkSize is the amount of body data sent per BDAT command when
// chunking is in use.
const bdatChunkSize = 1 << 16

// DataChunked streams r as the message body using BDAT (RFC 3030) instead
// of DATA, when the server advertises CHUNKING. Unlike DATA, BDAT data is
// sent raw — no dot-stuffing — since the chunk length prefix makes the
// trailing ".\r\n" sentinel unnecessary.
func (s *Session) DataChunked(ctx context.Context, r io.Reader) error {
	if err := s.requirePhase("bdat", PhaseInTxn); err != nil {
		return err
	}
	if !s.exts.Has(smtp.ExtCHUNKING) {
		return smtp.InvalidStateError("bdat: server did not advertise CHUNKING")
	}
	s.conn.SetDeadlineFromContext(ctx)
	s.phase = PhaseSending

	buf := make([]byte, bdatChunkSize)
	for {
		n, readErr := io.ReadFull(r, buf)
		last := readErr == io.EOF || readErr == io.ErrUnexpectedEOF
		if readErr != nil && !last {
			return s.fail(ioError(readErr))
		}

		reply, err := s.bdat(buf[:n], last)
		if err != nil {
			smtpErr := ioError(err)
			s.abortTransaction(ctx, smtpErr)
			return smtpErr
		}
		if reply.Code/100 != 2 {
			smtpErr := smtp.UnexpectedCodeError(2, toReply(reply))
			s.abortTransaction(ctx, smtpErr)
			return smtpErr
		}
		if last {
			break
		}
	}

	s.phase = PhaseReady
	s.log.Debug("session: bdat transfer complete")
	return nil
}

func (s *Session) bdat(data []byte, last bool) (textproto.Reply, error) {
	cmd := fmt.Sprintf("BDAT %d", len(data))
	if last {
		cmd += " LAST"
	}
	if err := s.conn.WriteLine(cmd); err != nil {
		return textproto.Reply{}, err
	}
	w := s.conn.BufWriter()
	if _, err := w.Write(data); err != nil {
		return textproto.Reply{}, err
	}
	if err := w.Flush(); err != nil {
		return textproto.Reply{}, err
	}
	return s.conn.ReadReply()
}

// Send performs a full mail transaction: SIZE pre-check, MAIL/RCPT, and
// DATA. Among RCPT outcomes only the rejection of every recipient is an
// error; partial rejections are reported in the returned results, which
// are also returned with any error raised after the envelope phase.
func (s *Session) Send(ctx context.Context, msg smtp.Message) ([]smtp.RecipientResult, error) {
	results, err := s.SendEnvelope(ctx, msg.From(), msg.Recipients(), msg.Size())
	if err != nil {
		return results, err
	}

	body, err := msg.Open()
	if err != nil {
		return results, fmt.Errorf("smtp: opening message: %w", err)
	}

	if err := s.Data(ctx, body); err != nil {
		return results, err
	}
	return results, nil
}

// abortTransaction attempts a best-effort RSET after a failed MAIL/RCPT/DATA
// (§4.5). RSET failures are swallowed except that an I/O failure closes the
// session, since the stream can no longer be trusted.
func (s *Session) abortTransaction(ctx context.Context, cause *smtp.Error) {
	s.log.WithError(cause).Debug("session: aborting transaction")

	reply, err := s.conn.Cmd("RSET")
	if err != nil {
		s.phase = PhaseClosed
		return
	}
	if reply.Code/100 != 2 {
		// Ignore — best effort per §4.5.
	}
	s.phase = PhaseReady
}

// Reset sends RSET to abort the current transaction (RFC 5321 §4.1.1.5).
func (s *Session) Reset(ctx context.Context) error {
	s.conn.SetDeadlineFromContext(ctx)

	reply, err := s.conn.Cmd("RSET")
	if err != nil {
		return s.fail(ioError(err))
	}
	if reply.Code != int(smtp.ReplyOK) {
		return smtp.UnexpectedCodeError(2, toReply(reply))
	}
	s.phase = PhaseReady
	return nil
}

// Noop sends a NOOP keepalive (RFC 5321 §4.1.1.9).
func (s *Session) Noop(ctx context.Context) error {
	s.conn.SetDeadlineFromContext(ctx)

	reply, err := s.conn.Cmd("NOOP")
	if err != nil {
		return s.fail(ioError(err))
	}
	if reply.Code != int(smtp.ReplyOK) {
		return smtp.UnexpectedCodeError(2, toReply(reply))
	}
	return nil
}

// Close sends QUIT (best effort) and closes the underlying connection
// (RFC 5321 §4.1.1.10). The Session must not be used afterward.
func (s *Session) Close() error {
	if s.phase != PhaseClosed {
		s.conn.Cmd("QUIT")
		s.phase = PhaseClosed
	}
	return s.netConn.Close()
}

// fail marks the session Closed on a protocol- or transport-level error,
// matching §7's "a protocol error terminates the session" policy, and
// returns the error unchanged for the caller to propagate.
func (s *Session) fail(err *smtp.Error) error {
	s.phase = PhaseClosed
	return err
}
