package smtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEHLOResponse(t *testing.T) {
	lines := []string{
		"mail.example.com Hello",
		"SIZE 52428800",
		"PIPELINING",
		"AUTH PLAIN LOGIN CRAM-MD5",
		"STARTTLS",
		"8BITMIME",
		"ENHANCEDSTATUSCODES",
		"DSN",
		"SMTPUTF8",
		"CHUNKING",
	}

	exts := ParseEHLOResponse(lines)

	if !exts.Has(ExtSIZE) {
		t.Error("expected SIZE extension")
	}
	if exts.Param(ExtSIZE) != "52428800" {
		t.Errorf("SIZE param = %q, want %q", exts.Param(ExtSIZE), "52428800")
	}

	if !exts.Has(ExtPIPELINING) {
		t.Error("expected PIPELINING extension")
	}
	if exts.Param(ExtPIPELINING) != "" {
		t.Errorf("PIPELINING param = %q, want empty", exts.Param(ExtPIPELINING))
	}

	if !exts.Has(ExtAUTH) {
		t.Error("expected AUTH extension")
	}
	if exts.Param(ExtAUTH) != "PLAIN LOGIN CRAM-MD5" {
		t.Errorf("AUTH param = %q, want %q", exts.Param(ExtAUTH), "PLAIN LOGIN CRAM-MD5")
	}

	for _, ext := range []Extension{ExtSTARTTLS, Ext8BITMIME, ExtENHANCEDSTATUSCODES, ExtDSN, ExtSMTPUTF8, ExtCHUNKING} {
		if !exts.Has(ext) {
			t.Errorf("expected %s extension", ext)
		}
	}
}

func TestParseEHLOResponse_CaseInsensitive(t *testing.T) {
	lines := []string{
		"hostname",
		"size 1000",
		"Pipelining",
		"starttls",
	}
	exts := ParseEHLOResponse(lines)

	if !exts.Has(ExtSIZE) {
		t.Error("expected SIZE (case-insensitive)")
	}
	if !exts.Has(ExtPIPELINING) {
		t.Error("expected PIPELINING (case-insensitive)")
	}
	if !exts.Has(ExtSTARTTLS) {
		t.Error("expected STARTTLS (case-insensitive)")
	}
}

func TestExtensions_Has_Missing(t *testing.T) {
	exts := Extensions{}
	if exts.Has(ExtSTARTTLS) {
		t.Error("empty Extensions should not have STARTTLS")
	}
}

func TestExtensions_AuthMechanisms(t *testing.T) {
	exts := ParseEHLOResponse([]string{"host", "AUTH plain login cram-md5"})
	assert.Equal(t, []string{"PLAIN", "LOGIN", "CRAM-MD5"}, exts.AuthMechanisms())

	assert.Nil(t, Extensions{}.AuthMechanisms())
}

func TestExtensions_SupportsMechanism(t *testing.T) {
	exts := ParseEHLOResponse([]string{"host", "AUTH PLAIN LOGIN"})
	assert.True(t, exts.SupportsMechanism("plain"))
	assert.True(t, exts.SupportsMechanism("LOGIN"))
	assert.False(t, exts.SupportsMechanism("XOAUTH2"))
}

func TestExtensions_SizeLimit(t *testing.T) {
	exts := ParseEHLOResponse([]string{"host", "SIZE 35882577"})
	limit, ok := exts.SizeLimit()
	assert.True(t, ok)
	assert.Equal(t, int64(35882577), limit)

	noSize := ParseEHLOResponse([]string{"host", "PIPELINING"})
	_, ok = noSize.SizeLimit()
	assert.False(t, ok)

	zero := ParseEHLOResponse([]string{"host", "SIZE 0"})
	_, ok = zero.SizeLimit()
	assert.False(t, ok, "SIZE 0 means no fixed limit per RFC 1870")

	malformed := ParseEHLOResponse([]string{"host", "SIZE abc"})
	_, ok = malformed.SizeLimit()
	assert.False(t, ok)
}
