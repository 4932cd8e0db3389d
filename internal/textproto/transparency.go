package textproto

import (
	"bufio"
	"io"
)

// transparencyWriter implements the SMTP Transparency procedure (RFC 5321
// §4.5.2): any line beginning with "." gets an extra "." prepended, and
// Close appends the ".\r\n" terminator. It is the sole way message data
// reaches the wire, so every DATA transfer goes through it.
//
// beginLine tracks whether the writer is positioned at the start of a new
// line. A bare CR is treated the same as a bare LF for that purpose: a
// line-start test that only fires on LF lets a bare-CR-terminated line
// smuggle an unstuffed leading dot past this writer and into a later
// "\r\n.\r\n" read by a leniently-parsing relay.
//
// tail holds the last two payload bytes written, oldest first, so Close can
// tell a CRLF ending from a bare CR or bare LF ending; wrote reports whether
// any payload byte has been written at all.
type transparencyWriter struct {
	w         *bufio.Writer
	beginLine bool
	tail      [2]byte
	wrote     bool
	closed    bool
}

func newTransparencyWriter(w *bufio.Writer) *transparencyWriter {
	return &transparencyWriter{w: w, beginLine: true}
}

func (d *transparencyWriter) Write(p []byte) (int, error) {
	if d.closed {
		return 0, io.ErrClosedPipe
	}

	written := 0
	for _, b := range p {
		if d.beginLine && b == '.' {
			if err := d.w.WriteByte('.'); err != nil {
				return written, err
			}
		}

		if err := d.w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		d.tail = [2]byte{d.tail[1], b}
		d.wrote = true
		d.beginLine = b == '\n' || b == '\r'
	}
	return written, nil
}

// Close writes the termination sequence and flushes the writer. If a
// non-empty stream did not already end in CRLF, the missing line ending is
// written first (an LF after a trailing bare CR, a CRLF otherwise), so the
// terminator always follows a CRLF and is never glued onto message content.
func (d *transparencyWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.wrote && d.tail != [2]byte{'\r', '\n'} {
		end := "\r\n"
		if d.tail[1] == '\r' {
			end = "\n"
		}
		if _, err := d.w.WriteString(end); err != nil {
			return err
		}
	}
	if _, err := d.w.WriteString(".\r\n"); err != nil {
		return err
	}
	return d.w.Flush()
}
