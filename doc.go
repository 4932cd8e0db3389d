// Package smtp provides the shared protocol types for submitting mail over
// SMTP (RFC 5321) from a Go client: reply codes, enhanced status codes, a
// tagged [Error] type, email address parsing, SMTP extension definitions,
// SASL authentication mechanisms, and the [Message] contract an application
// implements to hand envelopes and RFC 5322 content to
// [github.com/sendkit/smtpsend/smtpclient].
//
// # Reply Codes
//
// [ReplyCode] constants cover the standard SMTP reply codes, grouped into
// the four RFC 5321 §4.2.1 classes via [ReplyCode.Class]. [Reply] pairs a
// code with an optional [EnhancedCode] (RFC 3463) and the response text.
//
// # Errors
//
// [Error] is a single tagged-union failure type distinguished by [Kind]; use
// [errors.Is] against a bare &Error{Kind: ...} to match on kind, and
// [errors.As] to recover fields like [Error.Reply] or [Error.PerRecipient].
//
// # Address Types
//
// [Mailbox], [ReversePath], and [ForwardPath] represent RFC 5321 email
// addresses with full parsing and validation, including support for
// internationalized domain names (RFC 6531).
//
// # Authentication
//
// [Credentials] is a tagged union of supported mechanisms. The
// [SASLMechanism] interface and its implementations ([PlainAuth],
// [LoginAuth], [CramMD5Auth], [XOAUTH2Auth], [DigestMD5Auth]) drive the
// client side of each exchange; [SelectMechanism] picks one from a server's
// advertised list and a set of credentials.
//
// # Extensions
//
// The [Extension] type and [Extensions] map track EHLO-advertised
// capabilities. Use [ParseEHLOResponse] to parse a server's EHLO reply, and
// [Extensions.AuthMechanisms], [Extensions.SupportsMechanism], and
// [Extensions.SizeLimit] to query it.
package smtp
