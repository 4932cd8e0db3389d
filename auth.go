package smtp

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// SASLMechanism defines a client-side SASL authentication mechanism (§4.3
// Authenticator). Each implementation is a pure function of
// (credentials, challenge) -> response bytes; the Authenticator composes
// them with the wire-level AUTH command exchange.
type SASLMechanism interface {
	// Name returns the IANA-registered mechanism name (e.g., "PLAIN").
	Name() string
	// Start begins authentication and returns the initial response.
	// If no initial response is needed, return nil, nil.
	Start() ([]byte, error)
	// Next processes a server challenge and returns the response.
	Next(challenge []byte) ([]byte, error)
}

// PlainAuth returns a SASLMechanism implementing SASL PLAIN (RFC 4616).
// The identity is typically empty (server derives it from username).
func PlainAuth(identity, username, password string) SASLMechanism {
	return &plainAuth{identity: identity, username: username, password: password}
}

type plainAuth struct {
	identity string
	username string
	password string
}

func (a *plainAuth) Name() string { return "PLAIN" }

func (a *plainAuth) Start() ([]byte, error) {
	// PLAIN format: [authzid] NUL authcid NUL passwd
	resp := []byte(a.identity + "\x00" + a.username + "\x00" + a.password)
	return resp, nil
}

func (a *plainAuth) Next(challenge []byte) ([]byte, error) {
	return nil, fmt.Errorf("smtp: unexpected PLAIN challenge")
}

// LoginAuth returns a SASLMechanism implementing the LOGIN mechanism
// (draft-murchison-sasl-login, widely deployed).
type loginAuth struct {
	username string
	password string
	step     int
}

// LoginAuth returns a SASLMechanism implementing SASL LOGIN.
func LoginAuth(username, password string) SASLMechanism {
	return &loginAuth{username: username, password: password}
}

func (a *loginAuth) Name() string { return "LOGIN" }

func (a *loginAuth) Start() ([]byte, error) {
	// LOGIN does not have an initial response; the server sends challenges.
	return nil, nil
}

func (a *loginAuth) Next(challenge []byte) ([]byte, error) {
	switch a.step {
	case 0:
		a.step++
		return []byte(a.username), nil
	case 1:
		a.step++
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("smtp: unexpected LOGIN challenge at step %d", a.step)
	}
}

// CramMD5Auth returns a SASLMechanism implementing SASL CRAM-MD5 (RFC 2195).
func CramMD5Auth(username, secret string) SASLMechanism {
	return &cramMD5Auth{username: username, secret: secret}
}

type cramMD5Auth struct {
	username string
	secret   string
}

func (a *cramMD5Auth) Name() string { return "CRAM-MD5" }

func (a *cramMD5Auth) Start() ([]byte, error) {
	// CRAM-MD5 does not have an initial response; server sends the challenge.
	return nil, nil
}

func (a *cramMD5Auth) Next(challenge []byte) ([]byte, error) {
	// HMAC-MD5 of challenge using secret as key.
	mac := hmac.New(md5.New, []byte(a.secret))
	mac.Write(challenge)
	digest := hex.EncodeToString(mac.Sum(nil))
	return []byte(a.username + " " + digest), nil
}

// XOAUTH2Auth returns a SASLMechanism implementing the XOAUTH2 mechanism
// used by OAuth2-fronted mail providers (RFC 7628-style SASL, Google's
// XOAUTH2 profile).
func XOAUTH2Auth(username, token string) SASLMechanism {
	return &xoauth2Auth{username: username, token: token}
}

type xoauth2Auth struct {
	username string
	token    string
}

func (a *xoauth2Auth) Name() string { return "XOAUTH2" }

func (a *xoauth2Auth) Start() ([]byte, error) {
	resp := fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", a.username, a.token)
	return []byte(resp), nil
}

func (a *xoauth2Auth) Next(challenge []byte) ([]byte, error) {
	// The server sent a 334 carrying a base64'd JSON error body. The
	// client must respond with an empty line; the 5xx that follows is
	// classified as AuthenticationFailed by the caller.
	return []byte{}, nil
}

// DigestMD5Auth returns a SASLMechanism implementing SASL DIGEST-MD5
// (RFC 2831). host is the service hostname used in the digest-uri
// directive ("smtp/<host>").
func DigestMD5Auth(username, password, host string) SASLMechanism {
	return &digestMD5Auth{username: username, password: password, host: host}
}

type digestMD5Auth struct {
	username string
	password string
	host     string
	step     int
}

func (a *digestMD5Auth) Name() string { return "DIGEST-MD5" }

func (a *digestMD5Auth) Start() ([]byte, error) {
	// DIGEST-MD5 has no initial response; the server sends the challenge.
	return nil, nil
}

func (a *digestMD5Auth) Next(challenge []byte) ([]byte, error) {
	switch a.step {
	case 0:
		a.step++
		return a.respond(challenge)
	case 1:
		// Second 334 carries rspauth=...; acknowledge with an empty line.
		a.step++
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("smtp: unexpected DIGEST-MD5 challenge at step %d", a.step)
	}
}

func (a *digestMD5Auth) respond(challenge []byte) ([]byte, error) {
	directives := parseDigestDirectives(string(challenge))

	realm := directives["realm"]
	nonce := directives["nonce"]
	if nonce == "" {
		return nil, fmt.Errorf("smtp: DIGEST-MD5 challenge missing nonce")
	}
	qop := directives["qop"]
	if qop == "" {
		qop = "auth"
	}

	cnonceRaw := make([]byte, 16)
	if _, err := rand.Read(cnonceRaw); err != nil {
		return nil, fmt.Errorf("smtp: generating DIGEST-MD5 cnonce: %w", err)
	}
	cnonce := hex.EncodeToString(cnonceRaw)

	const nc = "00000001"
	digestURI := "smtp/" + a.host

	response := digestMD5Response(a.username, realm, a.password, nonce, cnonce, nc, qop, digestURI)

	var b strings.Builder
	fmt.Fprintf(&b, `username="%s",realm="%s",nonce="%s",cnonce="%s",nc=%s,qop=%s,digest-uri="%s",response=%s,charset=utf-8`,
		a.username, realm, nonce, cnonce, nc, qop, digestURI, response)
	return []byte(b.String()), nil
}

// digestMD5Response computes the RFC 2831 §2.1.2 response-value for
// qop=auth.
func digestMD5Response(username, realm, password, nonce, cnonce, nc, qop, digestURI string) string {
	h := func(s string) []byte {
		sum := md5.Sum([]byte(s))
		return sum[:]
	}
	hex16 := func(b []byte) string { return hex.EncodeToString(b) }

	h1 := h(username + ":" + realm + ":" + password)
	a1 := string(h1) + ":" + nonce + ":" + cnonce
	ha1 := hex16(h(a1))

	a2 := "AUTHENTICATE:" + digestURI
	ha2 := hex16(h(a2))

	kd := ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2
	return hex16(h(kd))
}

// parseDigestDirectives parses a comma-separated list of key=value or
// key="value" directives (RFC 2831 §7.2), honoring commas inside
// quoted-strings.
func parseDigestDirectives(s string) map[string]string {
	directives := make(map[string]string)
	var key, val strings.Builder
	inQuotes := false
	inValue := false

	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			directives[strings.ToLower(k)] = val.String()
		}
		key.Reset()
		val.Reset()
		inValue = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == '=' && !inQuotes && !inValue:
			inValue = true
		case c == ',' && !inQuotes:
			flush()
		default:
			if inValue {
				val.WriteByte(c)
			} else {
				key.WriteByte(c)
			}
		}
	}
	flush()
	return directives
}
