package smtp

import "strings"

// Extension represents an SMTP service extension keyword (RFC 5321 §2.2).
type Extension string

// Standard SMTP extension keywords (§3 Capabilities).
const (
	ExtSTARTTLS            Extension = "STARTTLS"
	ExtAUTH                Extension = "AUTH"
	ExtSIZE                Extension = "SIZE"
	ExtPIPELINING          Extension = "PIPELINING"
	Ext8BITMIME            Extension = "8BITMIME"
	ExtDSN                 Extension = "DSN"
	ExtENHANCEDSTATUSCODES Extension = "ENHANCEDSTATUSCODES"
	ExtSMTPUTF8            Extension = "SMTPUTF8"
	ExtCHUNKING            Extension = "CHUNKING"
	ExtBINARYMIME          Extension = "BINARYMIME"
)

// Extensions holds the set of SMTP extensions advertised in an EHLO response,
// mapped from keyword to parameters (e.g., "AUTH" → "PLAIN LOGIN").
//
// Extensions is replaced wholesale on every EHLO, including the fresh EHLO
// issued after a STARTTLS upgrade (§3 Capabilities lifetime).
type Extensions map[Extension]string

// Has reports whether the extension set includes the given keyword.
func (e Extensions) Has(ext Extension) bool {
	_, ok := e[ext]
	return ok
}

// Param returns the parameter string for the given extension keyword.
func (e Extensions) Param(ext Extension) string {
	return e[ext]
}

// AuthMechanisms returns the SASL mechanism names advertised in the AUTH
// extension, upper-cased. Returns nil if the server did not advertise AUTH.
func (e Extensions) AuthMechanisms() []string {
	param, ok := e[ExtAUTH]
	if !ok {
		return nil
	}
	fields := strings.Fields(param)
	mechs := make([]string, 0, len(fields))
	for _, f := range fields {
		mechs = append(mechs, strings.ToUpper(f))
	}
	return mechs
}

// SupportsMechanism reports whether the given SASL mechanism name was
// advertised in the AUTH extension (case-insensitive).
func (e Extensions) SupportsMechanism(name string) bool {
	for _, m := range e.AuthMechanisms() {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// SizeLimit returns the maximum message octet count advertised via the SIZE
// extension (RFC 1870) and whether a (non-zero) limit was advertised.
func (e Extensions) SizeLimit() (int64, bool) {
	param, ok := e[ExtSIZE]
	if !ok || param == "" {
		return 0, false
	}
	var n int64
	for _, r := range param {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int64(r-'0')
	}
	return n, n > 0
}

// ParseEHLOResponse parses the lines of a multi-line 250 EHLO response into
// an Extensions map. Each line after the first (the greeting) is expected to
// be "KEYWORD [params]". Extension keywords are case-insensitive (RFC 5321
// §4.1.1.1); they are normalized to upper-case.
func ParseEHLOResponse(lines []string) Extensions {
	exts := make(Extensions)
	for i, line := range lines {
		if i == 0 {
			continue // Skip the greeting line (hostname).
		}
		keyword, params, _ := strings.Cut(line, " ")
		exts[Extension(strings.ToUpper(keyword))] = params
	}
	return exts
}
