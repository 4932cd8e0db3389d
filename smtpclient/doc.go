// Package smtpclient implements the SMTP client session state machine
// (RFC 5321) described by the [github.com/sendkit/smtpsend] core: the
// Client Builder, the Session phase transitions, the Authenticator, and
// PIPELINING-aware envelope submission.
//
// # Quick Start
//
// Use [New] to configure a [Builder], then call [Builder.Connect] to run
// the full connect/EHLO/STARTTLS/AUTH pipeline and obtain a ready
// [Session]:
//
//	b := smtpclient.New("mail.example.com", "587",
//		smtpclient.WithCredentials(smtp.PlainCredentials(user, pass)),
//		smtpclient.WithTimeout(30*time.Second))
//	sess, err := b.Connect(ctx)
//	if err != nil { ... }
//	defer sess.Close()
//	results, err := sess.Send(ctx, msg)
//
// # Message Submission
//
// [Session.Send] runs a full mail transaction: the SIZE pre-check,
// MAIL FROM/RCPT TO for every recipient, and DATA. [Session.SendEnvelope]
// and [Session.Data] expose the envelope and data phases independently
// for callers that need to prepend a DKIM-Signature header (see
// [github.com/sendkit/smtpsend/dkim]) or inspect per-recipient results
// before transferring the body.
//
// # STARTTLS
//
// [Builder.Connect] upgrades automatically via [Session.StartTLS] when
// the server advertises STARTTLS and implicit TLS was not requested.
// After a successful upgrade the session re-issues EHLO before returning
// to the caller, discarding the pre-upgrade capability set.
//
// # Authentication
//
// [Session.Authenticate] selects a [smtp.SASLMechanism] from the
// server's advertised AUTH list and the supplied [smtp.Credentials] via
// [smtp.SelectMechanism] (PLAIN, LOGIN, XOAUTH2, CRAM-MD5, DIGEST-MD5).
//
// # CHUNKING (RFC 3030)
//
// Call [Session.DataChunked] to send message data in BDAT chunks,
// without dot-stuffing, when the server advertises CHUNKING.
package smtpclient
