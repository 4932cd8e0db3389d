package dkim

import "crypto"

// KeyKind identifies the signing key's algorithm and, for RSA, the digest
// it signs (§3 DKIM Signing Parameters: "hash algorithm implied by the
// key kind").
type KeyKind int

const (
	// KeyRSASHA256 signs with RSA PKCS#1 v1.5 over SHA-256.
	KeyRSASHA256 KeyKind = iota
	// KeyRSASHA1 signs with RSA PKCS#1 v1.5 over SHA-1. Offered for
	// interoperability with legacy verifiers; prefer KeyRSASHA256.
	KeyRSASHA1
	// KeyED25519SHA256 signs with Ed25519 (RFC 8463) over a SHA-256 digest.
	KeyED25519SHA256
)

// algorithmName returns the DKIM "a=" tag value for the key kind.
func (k KeyKind) algorithmName() string {
	switch k {
	case KeyRSASHA256:
		return "rsa-sha256"
	case KeyRSASHA1:
		return "rsa-sha1"
	case KeyED25519SHA256:
		return "ed25519-sha256"
	default:
		return "unknown"
	}
}

// hash returns the digest algorithm implied by the key kind.
func (k KeyKind) hash() crypto.Hash {
	if k == KeyRSASHA1 {
		return crypto.SHA1
	}
	return crypto.SHA256
}

// Canonicalization selects the RFC 6376 §3.4 normalization applied before
// hashing, independently for the header block and the body.
type Canonicalization int

const (
	// CanonSimple tolerates only minor whitespace changes (§3.4.1, §3.4.3).
	CanonSimple Canonicalization = iota
	// CanonRelaxed tolerates common whitespace-altering transformations
	// such as line folding and trailing-space removal (§3.4.2, §3.4.4).
	CanonRelaxed
)

func (c Canonicalization) tag() string {
	if c == CanonRelaxed {
		return "relaxed"
	}
	return "simple"
}

// Signer is an alias for crypto.Signer. Signing accepts only two concrete
// key types behind it: *rsa.PrivateKey for the RSA key kinds and
// ed25519.PrivateKey for KeyED25519SHA256. Any other crypto.Signer
// implementation fails with DkimSigningFailed; its Sign method is never
// called.
type Signer = crypto.Signer

// SignParams bundles the §3 "DKIM Signing Parameters" a single [Sign]
// call needs: the private key, its kind, the selector/domain identity,
// which headers to sign, and the canonicalization choice.
type SignParams struct {
	// Key is the private key material, referenced (never copied) for the
	// duration of Sign. Must be *rsa.PrivateKey for KeyRSASHA256/
	// KeyRSASHA1, or ed25519.PrivateKey for KeyED25519SHA256.
	Key Signer
	// Kind selects the algorithm and, for RSA, the digest.
	Kind KeyKind

	// Selector is the "s=" tag: the name of the TXT record under
	// "<Selector>._domainkey.<Domain>" that publishes the public key.
	Selector string
	// Domain is the "d=" tag: the signing domain.
	Domain string
	// AgentOrUserID is the optional "i=" tag (the Agent or User
	// Identifier, RFC 6376 §3.5).
	AgentOrUserID string

	// Headers lists, in order, the header field names to sign. A name
	// may repeat to "oversign" it (§4.4 "Header oversigning"): requesting
	// a name k times when only m < k instances exist in the message
	// contributes k-m empty canonicalized lines, binding the signature
	// against header fields an attacker might add later.
	Headers []string

	// HeaderCanon and BodyCanon select simple or relaxed canonicalization
	// independently for the header block and the body.
	HeaderCanon Canonicalization
	BodyCanon   Canonicalization

	// ExpireSeconds, when positive, sets the "x=" tag to t + ExpireSeconds.
	// Zero omits the tag (no expiration).
	ExpireSeconds int64
}
