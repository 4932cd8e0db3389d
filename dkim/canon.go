package dkim

import "bytes"

// canonicalizeBody applies the chosen RFC 6376 §3.4.3/§3.4.4 body
// canonicalization ahead of hashing.
func canonicalizeBody(body []byte, mode Canonicalization) []byte {
	if mode == CanonRelaxed {
		return canonicalizeBodyRelaxed(body)
	}
	return canonicalizeBodySimple(body)
}

// canonicalizeBodySimple implements RFC 6376 §3.4.3: the body is left
// untouched except that trailing empty lines are removed, and a body that
// is empty or does not end in CRLF gets a CRLF appended (so an empty body
// canonicalizes to a single CRLF rather than zero bytes).
func canonicalizeBodySimple(body []byte) []byte {
	b := trimTrailingCRLFLines(body)
	if !bytes.HasSuffix(b, []byte("\r\n")) {
		b = append(b[:len(b):len(b)], '\r', '\n')
	}
	return b
}

// canonicalizeBodyRelaxed implements RFC 6376 §3.4.4: within each line,
// runs of WSP collapse to a single SP and trailing WSP is dropped, then
// trailing empty lines are removed. Unlike simple canonicalization, a
// body that reduces to nothing canonicalizes to zero bytes, not a CRLF.
func canonicalizeBodyRelaxed(body []byte) []byte {
	lines := bytes.Split(body, []byte("\r\n"))
	for i, line := range lines {
		lines[i] = reduceWSP(line)
	}

	end := len(lines)
	for end > 0 && len(lines[end-1]) == 0 {
		end--
	}
	if end == 0 {
		return nil
	}

	result := bytes.Join(lines[:end], []byte("\r\n"))
	return append(result, '\r', '\n')
}

// reduceWSP collapses interior runs of SP/HTAB to a single SP and strips
// trailing SP/HTAB from a single line (no CRLF included).
func reduceWSP(line []byte) []byte {
	out := make([]byte, 0, len(line))
	inWS := false
	for _, c := range line {
		if c == ' ' || c == '\t' {
			inWS = true
			continue
		}
		if inWS {
			out = append(out, ' ')
			inWS = false
		}
		out = append(out, c)
	}
	return out
}

// trimTrailingCRLFLines removes trailing "\r\n" pairs one at a time while
// the body ends in an empty line, leaving at most a single trailing CRLF
// even if the original had several trailing blank lines. A body with no
// trailing line terminator is returned unchanged; canonicalizeBodySimple
// adds the CRLF in that case.
func trimTrailingCRLFLines(body []byte) []byte {
	b := body
	for bytes.HasSuffix(b, []byte("\r\n\r\n")) {
		b = b[:len(b)-2]
	}
	return b
}
