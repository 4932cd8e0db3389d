package dkim

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sendkit/smtpsend"
)

const signatureHeaderName = "DKIM-Signature"

// Sign computes a DKIM-Signature header for msg per params (§4.4 DKIM
// Signer) and returns it as a single CRLF-terminated line ready to
// prepend to the transferred data. It never modifies msg.
func Sign(params SignParams, msg []byte) (string, error) {
	if params.Domain == "" || params.Selector == "" {
		return "", smtp.DkimSigningFailedError("domain and selector are required")
	}
	if len(params.Headers) == 0 {
		return "", smtp.DkimSigningFailedError("at least one header must be signed")
	}

	headerBlock, body := splitMessage(msg)
	headers := parseHeaders(headerBlock)

	bh, err := bodyHash(body, params.BodyCanon, params.Kind.hash())
	if err != nil {
		return "", smtp.DkimSigningFailedError(err.Error())
	}

	now := time.Now().Unix()
	draftValue := formatSignatureValue(params, bh, now, "")

	instances := selectInstances(headers, params.Headers)
	hashed := params.Kind.hash().New()
	for _, inst := range instances {
		hashed.Write(canonicalizeHeader(inst, params.HeaderCanon))
	}
	hashed.Write(canonicalizeHeaderNoTrailingCRLF(signatureHeaderName, draftValue, params.HeaderCanon))

	digest := hashed.Sum(nil)

	sig, err := signDigest(params, digest)
	if err != nil {
		return "", smtp.DkimSigningFailedError(err.Error())
	}
	b := base64.StdEncoding.EncodeToString(sig)

	finalValue := formatSignatureValue(params, bh, now, b)
	return signatureHeaderName + ":" + finalValue + "\r\n", nil
}

// bodyHash canonicalizes body and returns its base64-encoded digest
// (the "bh=" tag).
func bodyHash(body []byte, mode Canonicalization, digest crypto.Hash) (string, error) {
	canon := canonicalizeBody(body, mode)
	h := digest.New()
	h.Write(canon)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// signDigest signs digest (already hashed per params.Kind) with the
// configured key. Ed25519 signs the digest bytes directly as the
// "message" (RFC 8463): Ed25519 never pre-hashes internally, so the
// caller's SHA-256 digest stands in for the signed message. RSA signs
// with PKCS#1 v1.5 over the same digest and hash identifier.
func signDigest(params SignParams, digest []byte) ([]byte, error) {
	switch params.Kind {
	case KeyED25519SHA256:
		key, ok := params.Key.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("dkim: KeyED25519SHA256 requires an ed25519.PrivateKey")
		}
		return ed25519.Sign(key, digest), nil
	case KeyRSASHA256, KeyRSASHA1:
		key, ok := params.Key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("dkim: %s requires an *rsa.PrivateKey", params.Kind.algorithmName())
		}
		return rsa.SignPKCS1v15(rand.Reader, key, params.Kind.hash(), digest)
	default:
		return nil, fmt.Errorf("dkim: unknown key kind %d", params.Kind)
	}
}
