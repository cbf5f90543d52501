package minerva

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
)

// Result holds one captured PDF artifact and provides helpers for common
// output forms. Artifacts are written once and never mutated; it is safe
// to call these methods multiple times.
type Result struct {
	data []byte
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF re-encoded as a standard base64 string
// (RFC 4648), the form the DevTools Protocol delivers it in.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns a [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
