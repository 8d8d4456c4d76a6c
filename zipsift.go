package zipsift

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"

	"github.com/meigma/zipsift/internal/inflate"
	"github.com/meigma/zipsift/internal/zipfmt"
)

// DefaultMaxDecodedSize is the per-payload decoded size cap applied unless
// WithMaxDecodedSize overrides it.
const DefaultMaxDecodedSize = 256 << 20

// preallocCeiling bounds how much the declared uncompressed size may
// preallocate. The field is untrusted; larger payloads grow normally.
const preallocCeiling = 1 << 20

// errTooLarge marks a decoded payload exceeding the configured cap.
var errTooLarge = errors.New("decoded payload exceeds cap")

// Result is one decoded entry.
type Result struct {
	// Name is the entry name as stored in the archive.
	Name string

	// JSON is the canonical compact serialization of the payload.
	JSON json.RawMessage
}

// Extractor scans ZIP buffers for selected entries and decodes their
// payloads.
//
// An Extractor is immutable after New and safe for concurrent use;
// independent calls share nothing but pooled decompressors.
type Extractor struct {
	selector      Selector
	selectFunc    func(name string) bool
	decompressors map[uint16]Decompressor
	maxDecoded    uint64
	schema        *schemaValidator
	logger        *slog.Logger
	pool          *inflate.Pool
}

// New creates an Extractor. The returned error covers configuration
// problems only; scanning never fails.
func New(opts ...Option) (*Extractor, error) {
	x := &Extractor{
		selector:   DefaultSelector(),
		maxDecoded: DefaultMaxDecodedSize,
		logger:     slog.New(slog.DiscardHandler),
		pool:       inflate.NewPool(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Extract configures an Extractor and scans data in one call. The error
// covers configuration problems only; any byte buffer scans cleanly.
func Extract(data []byte, opts ...Option) ([]Result, error) {
	x, err := New(opts...)
	if err != nil {
		return nil, err
	}
	results, _ := x.Extract(data)
	return results, nil
}

// Extract walks data looking for local file headers and returns the decoded
// payloads of selected entries in encounter order, together with scan
// statistics.
//
// Extract never fails: entries that cannot be decoded are skipped, a name
// or payload region running past the end of the buffer ends the scan early
// (Stats.Truncated), and input holding no entries at all yields an empty
// result set. Results never alias data; the buffer is read, never retained.
func (x *Extractor) Extract(data []byte) ([]Result, Stats) {
	var (
		results []Result
		stats   Stats
	)
	for cursor := 0; cursor+zipfmt.HeaderLen < len(data); {
		hdr, ok := zipfmt.Parse(data, cursor)
		if !ok {
			// Not a local file header. Resynchronize one byte at a time:
			// tolerates leading garbage and misaligned regions at the cost
			// of a linear walk over non-archive bytes.
			cursor++
			continue
		}
		entry := stats.Entries
		stats.Entries++

		nameEnd := cursor + zipfmt.HeaderLen + hdr.NameLen
		if nameEnd > len(data) {
			stats.Truncated = true
			x.logger.Debug("scan truncated in entry name",
				slog.Int("entry", entry),
				slog.Int("offset", cursor))
			break
		}
		name := string(data[cursor+zipfmt.HeaderLen : nameEnd])

		dataStart := nameEnd + hdr.ExtraLen
		dataEnd := dataStart + int(hdr.CompressedSize)
		if dataEnd > len(data) || dataEnd < dataStart {
			stats.Truncated = true
			x.logger.Debug("scan truncated in entry payload",
				slog.Int("entry", entry),
				slog.String("name", name),
				slog.Int("offset", cursor))
			break
		}

		if !x.selected(name) {
			cursor = dataEnd
			continue
		}
		stats.Matched++

		msg, reason := x.decode(hdr, data[dataStart:dataEnd])
		if reason != skipNone {
			stats.Skips = append(stats.Skips, Skip{
				Entry:  entry,
				Name:   name,
				Method: hdr.Method,
				Reason: reason,
			})
			x.logger.Debug("entry skipped",
				slog.Int("entry", entry),
				slog.String("name", name),
				slog.Int("method", int(hdr.Method)),
				slog.String("reason", reason.String()))
			cursor = dataEnd
			continue
		}
		results = append(results, Result{Name: name, JSON: msg})
		stats.Decoded++
		cursor = dataEnd
	}
	return results, stats
}

// selected applies the configured selection policy.
func (x *Extractor) selected(name string) bool {
	if x.selectFunc != nil {
		return x.selectFunc(name)
	}
	return x.selector.Match(name)
}

// decode decompresses region per the entry's method and validates the
// payload as JSON, returning its canonical compact form.
func (x *Extractor) decode(hdr zipfmt.Header, region []byte) (json.RawMessage, SkipReason) {
	payload, reason := x.payload(hdr, region)
	if reason != skipNone {
		return nil, reason
	}
	if !json.Valid(payload) {
		return nil, SkipInvalidJSON
	}
	if x.schema != nil && !x.schema.validate(payload) {
		return nil, SkipSchema
	}
	var buf bytes.Buffer
	buf.Grow(len(payload))
	if err := json.Compact(&buf, payload); err != nil {
		return nil, SkipInvalidJSON
	}
	return buf.Bytes(), skipNone
}

// payload produces the decoded bytes for one entry region.
func (x *Extractor) payload(hdr zipfmt.Header, region []byte) ([]byte, SkipReason) {
	if hdr.Method == MethodStore {
		if x.maxDecoded > 0 && uint64(len(region)) > x.maxDecoded {
			return nil, SkipTooLarge
		}
		return region, skipNone
	}

	var (
		rc      io.ReadCloser
		release func()
	)
	if d, ok := x.decompressors[hdr.Method]; ok {
		rc = d(bytes.NewReader(region))
	} else if hdr.Method == MethodDeflate {
		rc, release = x.pool.Get(bytes.NewReader(region))
	} else {
		return nil, SkipUnsupportedMethod
	}

	payload, err := readCapped(rc, hdr.UncompressedSize, x.maxDecoded)
	cerr := rc.Close()
	if release != nil {
		release()
	}
	switch {
	case errors.Is(err, errTooLarge):
		return nil, SkipTooLarge
	case err != nil, cerr != nil:
		return nil, SkipDecode
	}
	return payload, skipNone
}

// readCapped drains r into memory, enforcing limit when non-zero. The
// declared uncompressed size serves only as a bounded preallocation hint.
func readCapped(r io.Reader, declared uint32, limit uint64) ([]byte, error) {
	var buf bytes.Buffer
	if hint := int(declared); hint > 0 && hint <= preallocCeiling {
		buf.Grow(hint)
	}
	if limit == 0 {
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	capped := limit
	if capped > math.MaxInt64-1 {
		capped = math.MaxInt64 - 1
	}
	n, err := buf.ReadFrom(io.LimitReader(r, int64(capped)+1))
	if err != nil {
		return nil, err
	}
	if uint64(n) > capped {
		return nil, errTooLarge
	}
	return buf.Bytes(), nil
}
