// Package testutil fabricates ZIP byte buffers for scanner tests.
//
// Builders write local file records directly so tests can produce archives
// the standard library would refuse to emit: missing central directories,
// lying size fields, unknown compression methods, truncated payloads.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Entry describes one synthetic local file record.
type Entry struct {
	// Name is the stored entry name.
	Name string

	// Method is the compression method field.
	Method uint16

	// Payload is written verbatim as the entry's data region.
	Payload []byte

	// DeclaredSize overrides the compressed-size field when non-nil.
	// Used to fabricate truncated or lying archives.
	DeclaredSize *uint32

	// UncompressedSize fills the advisory size field when non-zero.
	UncompressedSize uint32

	// Extra is written between the name and the payload.
	Extra []byte
}

// Append writes e as a local file record at the end of buf.
func Append(buf *bytes.Buffer, e Entry) {
	declared := uint32(len(e.Payload))
	if e.DeclaredSize != nil {
		declared = *e.DeclaredSize
	}

	var hdr [30]byte
	binary.LittleEndian.PutUint32(hdr[0:], 0x04034b50)
	binary.LittleEndian.PutUint16(hdr[4:], 20) // version needed to extract
	binary.LittleEndian.PutUint16(hdr[8:], e.Method)
	binary.LittleEndian.PutUint32(hdr[14:], crc32.ChecksumIEEE(e.Payload))
	binary.LittleEndian.PutUint32(hdr[18:], declared)
	binary.LittleEndian.PutUint32(hdr[22:], e.UncompressedSize)
	binary.LittleEndian.PutUint16(hdr[26:], uint16(len(e.Name)))
	binary.LittleEndian.PutUint16(hdr[28:], uint16(len(e.Extra)))

	buf.Write(hdr[:])
	buf.WriteString(e.Name)
	buf.Write(e.Extra)
	buf.Write(e.Payload)
}

// Archive builds a buffer holding the given records back to back.
func Archive(entries ...Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		Append(&buf, e)
	}
	return buf.Bytes()
}

// Stored returns a method-0 record carrying payload verbatim.
func Stored(name string, payload []byte) Entry {
	return Entry{
		Name:             name,
		Method:           0,
		Payload:          payload,
		UncompressedSize: uint32(len(payload)),
	}
}

// Deflated returns a method-8 record whose data region is the raw DEFLATE
// stream of payload.
func Deflated(tb testing.TB, name string, payload []byte) Entry {
	tb.Helper()
	return Entry{
		Name:             name,
		Method:           8,
		Payload:          Deflate(tb, payload),
		UncompressedSize: uint32(len(payload)),
	}
}

// Deflate compresses payload into a raw DEFLATE stream.
func Deflate(tb testing.TB, payload []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		tb.Fatalf("new flate writer: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		tb.Fatalf("deflate payload: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close flate writer: %v", err)
	}
	return buf.Bytes()
}

// Zstd compresses payload into a Zstandard frame.
func Zstd(tb testing.TB, payload []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		tb.Fatalf("new zstd writer: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		tb.Fatalf("zstd payload: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close zstd writer: %v", err)
	}
	return buf.Bytes()
}

// Uint32 returns a pointer for Entry.DeclaredSize literals.
func Uint32(v uint32) *uint32 {
	return &v
}
