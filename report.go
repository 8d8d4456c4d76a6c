package zipsift

// SkipReason classifies why a selected entry produced no result.
type SkipReason uint8

// skipNone is the zero SkipReason: the entry decoded successfully.
const skipNone SkipReason = 0

const (
	// SkipUnsupportedMethod marks entries compressed with a method no
	// registered decompressor handles.
	SkipUnsupportedMethod SkipReason = iota + 1

	// SkipDecode marks entries whose compressed stream failed to decode.
	SkipDecode

	// SkipTooLarge marks entries whose decoded payload exceeded the
	// configured size cap.
	SkipTooLarge

	// SkipInvalidJSON marks entries whose decoded payload is not
	// well-formed JSON.
	SkipInvalidJSON

	// SkipSchema marks well-formed payloads rejected by the configured
	// schema.
	SkipSchema
)

// String returns the reason name used in logs and the CLI.
func (r SkipReason) String() string {
	switch r {
	case SkipUnsupportedMethod:
		return "unsupported method"
	case SkipDecode:
		return "decode failure"
	case SkipTooLarge:
		return "payload too large"
	case SkipInvalidJSON:
		return "invalid json"
	case SkipSchema:
		return "schema violation"
	default:
		return "unknown"
	}
}

// Skip records one selected entry that produced no result.
type Skip struct {
	// Entry is the zero-based ordinal of the entry within the scan.
	Entry int

	// Name is the entry name as stored in the archive.
	Name string

	// Method is the entry's declared compression method.
	Method uint16

	// Reason classifies the failure.
	Reason SkipReason
}

// Stats describes a completed scan.
//
// Collecting stats never changes scan behavior; the default extraction
// contract stays best-effort and silent.
type Stats struct {
	// Entries is the number of local file headers parsed.
	Entries int

	// Matched is the number of entries that passed the selector.
	Matched int

	// Decoded is the number of results produced.
	Decoded int

	// Truncated reports whether the scan stopped early because an entry's
	// name or payload region ran past the end of the buffer.
	Truncated bool

	// Skips lists selected entries that produced no result, in scan order.
	Skips []Skip
}
