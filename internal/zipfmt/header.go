// Package zipfmt holds the byte-level layout of ZIP local file headers.
//
// Only the fields the scanner dispatches on are decoded. Every field is
// untrusted input: callers must bounds-check each derived offset against the
// buffer before slicing.
package zipfmt

import "encoding/binary"

// Compression methods (APPNOTE.TXT section 4.4.5).
const (
	MethodStore   uint16 = 0  // no compression
	MethodDeflate uint16 = 8  // raw DEFLATE stream
	MethodZstd    uint16 = 93 // Zstandard
)

// HeaderLen is the fixed size of a local file header before its variable
// name and extra sections.
const HeaderLen = 30

// Signature is the local-file-header magic "PK\x03\x04" as a little-endian
// 32-bit value.
const Signature uint32 = 0x04034b50

// Header is the decoded fixed portion of one local file header.
type Header struct {
	// Method is the compression method for the entry payload.
	Method uint16

	// CompressedSize is the declared length of the payload region in bytes.
	CompressedSize uint32

	// UncompressedSize is the declared size of the decoded payload. It is
	// advisory only; archives may declare zero or lie outright.
	UncompressedSize uint32

	// NameLen is the length of the entry name following the fixed header.
	NameLen int

	// ExtraLen is the length of the extra field between name and payload.
	ExtraLen int
}

// HasSignatureAt reports whether a local-file-header signature begins at off.
// It returns false when fewer than four bytes remain.
func HasSignatureAt(data []byte, off int) bool {
	if off < 0 || len(data)-off < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(data[off:]) == Signature
}

// Parse decodes the fixed header fields starting at off. It returns false
// when fewer than HeaderLen bytes remain or the signature does not match.
func Parse(data []byte, off int) (Header, bool) {
	if off < 0 || len(data)-off < HeaderLen {
		return Header{}, false
	}
	b := data[off : off+HeaderLen]
	if binary.LittleEndian.Uint32(b) != Signature {
		return Header{}, false
	}
	return Header{
		Method:           binary.LittleEndian.Uint16(b[8:]),
		CompressedSize:   binary.LittleEndian.Uint32(b[18:]),
		UncompressedSize: binary.LittleEndian.Uint32(b[22:]),
		NameLen:          int(binary.LittleEndian.Uint16(b[26:])),
		ExtraLen:         int(binary.LittleEndian.Uint16(b[28:])),
	}, true
}
