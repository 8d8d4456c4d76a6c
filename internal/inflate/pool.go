// Package inflate provides pooled raw-DEFLATE readers for entry decoding.
package inflate

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// Pool manages reusable flate readers to reduce allocation overhead across
// entries and scans.
type Pool struct {
	pool sync.Pool
}

// NewPool creates an empty reader pool.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns a reader decoding the raw DEFLATE stream r.
// The caller must call the returned release function once the reader is no
// longer in use; release recycles the reader for later Get calls.
func (p *Pool) Get(r io.Reader) (io.ReadCloser, func()) {
	if p == nil {
		// No pool available, create a one-off reader
		fr := flate.NewReader(r)
		return fr, func() {}
	}
	if fr, ok := p.pool.Get().(io.ReadCloser); ok {
		rs, ok := fr.(flate.Resetter)
		if ok && rs.Reset(r, nil) == nil {
			return fr, func() { p.put(fr) }
		}
		// Reset failed or reader is not resettable; discard it.
		_ = fr.Close()
	}
	fr := flate.NewReader(r)
	return fr, func() { p.put(fr) }
}

// put points the reader at an empty stream and pools it. Resetting first
// drops the reference to the caller's buffer so pooled readers never keep
// scan input alive.
func (p *Pool) put(fr io.ReadCloser) {
	rs, ok := fr.(flate.Resetter)
	if !ok || rs.Reset(emptyStream{}, nil) != nil {
		_ = fr.Close()
		return
	}
	p.pool.Put(fr)
}

// emptyStream is an io.Reader that is always at EOF.
type emptyStream struct{}

func (emptyStream) Read([]byte) (int, error) { return 0, io.EOF }
