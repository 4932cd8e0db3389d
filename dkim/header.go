package dkim

import (
	"bytes"
	"strings"
)

// header is one RFC 5322 header field as it appeared in the message:
// Name preserves the original case, Raw is the exact bytes from the name
// through the last folded continuation line (no trailing CRLF), and
// Value is Raw's content after the colon with fold CRLFs removed (RFC
// 6376 §3.4.2.2 unfolding) but whitespace otherwise untouched, ready for
// relaxed canonicalization's own whitespace collapsing.
type header struct {
	Name  string
	Raw   []byte
	Value string
}

// splitMessage separates the header block from the body at the first
// blank line (a line consisting solely of CRLF), per RFC 5322 §2.1. The
// message is assumed to use CRLF line endings throughout, consistent
// with the wire format the rest of this module produces and consumes.
func splitMessage(msg []byte) (headerBlock, body []byte) {
	sep := []byte("\r\n\r\n")
	if i := bytes.Index(msg, sep); i >= 0 {
		return msg[:i+2], msg[i+4:]
	}
	// No blank line: treat the whole message as headers with an empty body.
	return msg, nil
}

// parseHeaders splits a header block (terminated by the trailing CRLF of
// its last field, as returned by splitMessage) into ordered fields,
// joining folded continuation lines (those starting with SP or HTAB)
// into their owning field.
func parseHeaders(headerBlock []byte) []header {
	var headers []header
	lines := bytes.Split(bytes.TrimSuffix(headerBlock, []byte("\r\n")), []byte("\r\n"))

	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && len(headers) > 0 {
			last := &headers[len(headers)-1]
			last.Raw = append(append(last.Raw, '\r', '\n'), line...)
			last.Value += string(line)
			continue
		}

		name, value, found := bytes.Cut(line, []byte(":"))
		if !found {
			continue // Malformed field without a colon; skip rather than error.
		}
		headers = append(headers, header{
			Name:  string(name),
			Raw:   append([]byte{}, line...),
			Value: string(value),
		})
	}
	return headers
}

// selectInstances picks, for each requested header name in order, the
// bottom-most not-yet-used instance of that name in the message (RFC
// 6376 §5.4.2: duplicate requests consume occurrences from the end of
// the header block upward). A nil entry marks a request with no
// remaining instance — the oversigning case (§4.4).
func selectInstances(headers []header, requested []string) []*header {
	byName := make(map[string][]*header)
	for i := range headers {
		key := strings.ToLower(headers[i].Name)
		byName[key] = append(byName[key], &headers[i])
	}

	result := make([]*header, 0, len(requested))
	for _, name := range requested {
		key := strings.ToLower(name)
		list := byName[key]
		if len(list) == 0 {
			result = append(result, nil)
			continue
		}
		result = append(result, list[len(list)-1])
		byName[key] = list[:len(list)-1]
	}
	return result
}

// canonicalizeHeader renders one selected header instance (or the empty
// contribution for an oversigned slot with no instance) terminated by a
// CRLF, per the chosen canonicalization mode.
func canonicalizeHeader(h *header, mode Canonicalization) []byte {
	if h == nil {
		return []byte("\r\n")
	}
	if mode == CanonSimple {
		return append(append([]byte{}, h.Raw...), '\r', '\n')
	}
	return []byte(strings.ToLower(h.Name) + ":" + relaxHeaderValue(h.Value) + "\r\n")
}

// canonicalizeHeaderNoTrailingCRLF is canonicalizeHeader without the
// final CRLF, used for the draft DKIM-Signature header itself: RFC 6376
// §3.7 requires the signature header be the last item hashed and that it
// NOT be terminated by a CRLF.
func canonicalizeHeaderNoTrailingCRLF(name, rawValue string, mode Canonicalization) []byte {
	h := &header{Name: name, Raw: []byte(name + ":" + rawValue), Value: rawValue}
	line := canonicalizeHeader(h, mode)
	return bytes.TrimSuffix(line, []byte("\r\n"))
}

// relaxHeaderValue applies RFC 6376 §3.4.2's value transformation: fold
// CRLFs already removed by parseHeaders leave raw WSP runs (including the
// whitespace that followed each fold) which are collapsed to a single
// SP, and leading/trailing WSP is dropped.
func relaxHeaderValue(value string) string {
	var b strings.Builder
	inWS := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == ' ' || c == '\t' {
			inWS = true
			continue
		}
		if inWS {
			b.WriteByte(' ')
			inWS = false
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}
