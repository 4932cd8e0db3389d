package smtp

import "strings"

// mechanismPreference is the deterministic selection order of §4.3: from
// the intersection of server-offered and credential-implied mechanisms,
// the most preferred wins.
var mechanismPreference = []CredentialKind{
	CredCramMD5,
	CredDigestMD5,
	CredOAuth2,
	CredLogin,
	CredPlain,
}

// SelectMechanism picks a SASLMechanism from the intersection of the
// server's advertised AUTH mechanisms and what the supplied credentials
// can authenticate with, following the preference order CRAM-MD5 >
// DIGEST-MD5 > XOAUTH2 > LOGIN > PLAIN (§4.3). XOAUTH2 is only
// considered when creds.Kind is CredOAuth2.
//
// For any username/password credential kind the choice ignores which of
// PLAIN, LOGIN, CRAM-MD5 or DIGEST-MD5 creds.Kind names: all of them are
// candidates (DIGEST-MD5 only when Host is set), and the most preferred
// one the server offers wins.
func SelectMechanism(offered []string, creds Credentials) (SASLMechanism, error) {
	offeredSet := make(map[string]bool, len(offered))
	for _, m := range offered {
		offeredSet[strings.ToUpper(m)] = true
	}

	candidates := credentialCandidates(creds)

	for _, kind := range mechanismPreference {
		mech, ok := candidates[kind]
		if !ok {
			continue
		}
		if offeredSet[kind.String()] {
			return mech, nil
		}
	}

	return nil, UnsupportedAuthError(offered, creds.Kind.String())
}

// credentialCandidates returns every SASLMechanism the supplied
// credentials could drive, keyed by the CredentialKind they'd satisfy.
// A username/password credential can drive PLAIN, LOGIN, CRAM-MD5, and
// (if Host is set) DIGEST-MD5; an OAuth2 credential can only drive
// XOAUTH2.
func credentialCandidates(creds Credentials) map[CredentialKind]SASLMechanism {
	candidates := make(map[CredentialKind]SASLMechanism)

	switch creds.Kind {
	case CredOAuth2:
		candidates[CredOAuth2] = XOAUTH2Auth(creds.Username, creds.Token)
	case CredPlain, CredLogin, CredCramMD5, CredDigestMD5:
		candidates[CredPlain] = PlainAuth("", creds.Username, creds.Password)
		candidates[CredLogin] = LoginAuth(creds.Username, creds.Password)
		candidates[CredCramMD5] = CramMD5Auth(creds.Username, creds.Password)
		if creds.Host != "" {
			candidates[CredDigestMD5] = DigestMD5Auth(creds.Username, creds.Password, creds.Host)
		}
	}

	return candidates
}
