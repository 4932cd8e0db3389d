package textproto

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"testing"
	"time"
)

// FuzzTransparencyWriter exercises the dot-stuffing writer against
// arbitrary input, checking only that it never panics and that it always
// terminates the stream with ".\r\n" — there is no reader counterpart in
// this client-only module to round-trip against.
func FuzzTransparencyWriter(f *testing.F) {
	f.Add([]byte("Hello\r\n"))
	f.Add([]byte(".leading dot\r\n"))
	f.Add([]byte("..double\r\n"))
	f.Add([]byte(""))
	f.Add([]byte("no trailing newline"))
	f.Add([]byte(".\r\n"))
	f.Add([]byte("Line1\r\n.Line2\r\n..Line3\r\n"))
	f.Add([]byte("\r\n.\r\n"))
	f.Add([]byte("bare\rcr\rmixed\nwith\r\nlf"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var buf bytes.Buffer
		w := newTransparencyWriter(bufio.NewWriter(&buf))
		if _, err := w.Write(data); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
		if !strings.HasSuffix(buf.String(), ".\r\n") {
			t.Fatalf("output %q does not end with terminator", buf.String())
		}
	})
}

func FuzzReadReply(f *testing.F) {
	f.Add("250 OK\r\n")
	f.Add("250-Hello\r\n250 World\r\n")
	f.Add("220 Ready\r\n")
	f.Add("550 5.1.1 User unknown\r\n")
	f.Add("250\r\n")
	f.Add("250-Hello\r\n251 Mismatch\r\n")

	f.Fuzz(func(t *testing.T, data string) {
		conn := NewConn(&fakeConn{r: strings.NewReader(data)})
		_, _ = conn.ReadReply() // Must not panic.
	})
}

// fakeConn implements net.Conn for fuzzing.
type fakeConn struct {
	r *strings.Reader
}

func (f *fakeConn) Read(b []byte) (int, error)       { return f.r.Read(b) }
func (f *fakeConn) Write(b []byte) (int, error)      { return len(b), nil }
func (f *fakeConn) Close() error                     { return nil }
func (f *fakeConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (f *fakeConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (f *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (f *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }
