package dkim

import (
	"strconv"
	"strings"
)

// formatSignatureValue renders the DKIM-Signature tag list in the
// canonical order of §4.4 step 3: v=1; a=...; c=head/body; d=domain;
// s=selector; h=H1:H2:...; bh=...; t=now; [i=...;] [x=...;] b=<b>. b is
// empty for the draft header hashed alongside the signed fields, and the
// finished signature for the header actually emitted.
func formatSignatureValue(params SignParams, bh string, now int64, b string) string {
	var s strings.Builder

	s.WriteString(" v=1; a=")
	s.WriteString(params.Kind.algorithmName())
	s.WriteString("; c=")
	s.WriteString(params.HeaderCanon.tag())
	s.WriteString("/")
	s.WriteString(params.BodyCanon.tag())
	s.WriteString("; d=")
	s.WriteString(params.Domain)
	s.WriteString("; s=")
	s.WriteString(params.Selector)
	s.WriteString("; h=")
	s.WriteString(strings.Join(params.Headers, ":"))
	s.WriteString("; bh=")
	s.WriteString(bh)
	s.WriteString("; t=")
	s.WriteString(strconv.FormatInt(now, 10))
	if params.AgentOrUserID != "" {
		s.WriteString("; i=")
		s.WriteString(params.AgentOrUserID)
	}
	if params.ExpireSeconds > 0 {
		s.WriteString("; x=")
		s.WriteString(strconv.FormatInt(now+params.ExpireSeconds, 10))
	}
	s.WriteString("; b=")
	s.WriteString(b)

	return s.String()
}
