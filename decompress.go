package zipsift

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/zipsift/internal/zipfmt"
)

// Compression methods recognized in local file headers.
const (
	MethodStore   = zipfmt.MethodStore
	MethodDeflate = zipfmt.MethodDeflate
	MethodZstd    = zipfmt.MethodZstd
)

// Decompressor returns a reader decoding the compressed stream r.
// The returned reader is closed once the entry payload has been consumed.
//
// A Decompressor must be safe to invoke from multiple goroutines
// simultaneously, but each returned reader is used by one goroutine at a
// time. Failures surface as read errors and cause the entry to be skipped;
// they never abort the scan.
type Decompressor func(r io.Reader) io.ReadCloser

// Zstd returns a Decompressor for Zstandard entries (method 93).
//
// Method 93 is not decoded by default. Register it explicitly:
//
//	zipsift.New(zipsift.WithDecompressor(zipsift.MethodZstd, zipsift.Zstd()))
func Zstd() Decompressor {
	return func(r io.Reader) io.ReadCloser {
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return errorReader{err: err}
		}
		return dec.IOReadCloser()
	}
}

// errorReader surfaces a decompressor construction error on first read so
// the failure flows through the normal entry-skip path.
type errorReader struct {
	err error
}

func (e errorReader) Read([]byte) (int, error) { return 0, e.err }

func (e errorReader) Close() error { return nil }
