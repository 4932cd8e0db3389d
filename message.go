package smtp

import "io"

// Message is the external collaborator that supplies the envelope and the
// RFC 5322 data this module transfers (§6 Message producer contract). MIME
// construction, address rewriting, and message parsing live entirely
// outside this module; the core only ever reads the bytes Open returns.
type Message interface {
	// From returns the envelope sender as a bare RFC 5321 path (no angle
	// brackets).
	From() string

	// Recipients returns the envelope recipient addresses, also bare.
	Recipients() []string

	// Size returns the message's length in octets if known in advance (for
	// the MAIL FROM SIZE parameter and the §4.5 SIZE pre-check), or 0 if
	// unknown.
	Size() int64

	// Open returns a fresh reader over the RFC 5322 header+body sequence.
	// Send and Session.SendSigned each call it once per transaction
	// (SendSigned reads it in full and reuses those bytes for both the
	// signature and the transfer); a Message sent more than once is opened
	// once per send.
	Open() (io.Reader, error)
}
