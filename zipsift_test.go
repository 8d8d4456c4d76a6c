package zipsift

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/zipsift/internal/testutil"
)

func TestExtract_EmptyAndTinyBuffers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil buffer", data: nil},
		{name: "empty buffer", data: []byte{}},
		{name: "single byte", data: []byte{'P'}},
		{name: "29 byte header prefix", data: append([]byte("PK\x03\x04"), make([]byte, 25)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results, stats := extract(t, tt.data)
			assert.Empty(t, results)
			assert.Equal(t, Stats{}, stats)
		})
	}
}

func TestExtract_NonArchiveBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "text", data: []byte("this is not an archive, not even close to one......")},
		{name: "binary noise", data: bytes.Repeat([]byte{0x50, 0x4b, 0x00, 0xff}, 64)},
		{name: "worst case resync", data: bytes.Repeat([]byte{'P'}, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results, stats := extract(t, tt.data)
			assert.Empty(t, results)
			assert.Zero(t, stats.Entries)
			assert.False(t, stats.Truncated)
		})
	}
}

// A buffer of back-to-back signatures parses headers out of its own
// signature bytes. The scan must survive whatever fields it finds there.
func TestExtract_SignatureSoup(t *testing.T) {
	t.Parallel()

	results, _ := extract(t, bytes.Repeat([]byte("PK\x03\x04"), 10))
	assert.Empty(t, results)
}

func TestExtract_StoredEntry(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(
		testutil.Stored("report.json", []byte("{\n  \"ok\": true,\n  \"count\": 3\n}")),
	)

	results, stats := extract(t, arc)
	require.Len(t, results, 1)
	assert.Equal(t, "report.json", results[0].Name)
	assert.Equal(t, `{"ok":true,"count":3}`, string(results[0].JSON))
	assert.Equal(t, Stats{Entries: 1, Matched: 1, Decoded: 1}, stats)
}

func TestExtract_DeflatedEntry(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(
		testutil.Deflated(t, "metrics.json", []byte(`{"p50": 12, "p99": 340}`)),
	)

	results, stats := extract(t, arc)
	require.Len(t, results, 1)
	assert.Equal(t, "metrics.json", results[0].Name)
	assert.Equal(t, `{"p50":12,"p99":340}`, string(results[0].JSON))
	assert.Equal(t, 1, stats.Decoded)
}

func TestExtract_ExtraFieldOffsets(t *testing.T) {
	t.Parallel()

	// The payload region starts only after the extra field. An extra field
	// full of signature bytes must not derail the cursor either.
	arc := testutil.Archive(
		testutil.Entry{
			Name:    "a.json",
			Method:  0,
			Payload: []byte(`{"a":1}`),
			Extra:   bytes.Repeat([]byte("PK\x03\x04"), 3),
		},
		testutil.Stored("b.json", []byte(`{"b":2}`)),
	)

	results, _ := extract(t, arc)
	require.Len(t, results, 2)
	assert.Equal(t, `{"a":1}`, string(results[0].JSON))
	assert.Equal(t, `{"b":2}`, string(results[1].JSON))
}

func TestExtract_LeadingGarbage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.WriteString("garbage bytes before any record")
	testutil.Append(&buf, testutil.Stored("late.json", []byte(`{"found":true}`)))

	results, stats := extract(t, buf.Bytes())
	require.Len(t, results, 1)
	assert.Equal(t, "late.json", results[0].Name)
	assert.Equal(t, 1, stats.Entries)
}

func TestExtract_InterleavedGarbage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	testutil.Append(&buf, testutil.Stored("a.json", []byte(`{"a":1}`)))
	buf.WriteString("central directory? never heard of it")
	testutil.Append(&buf, testutil.Deflated(t, "b.json", []byte(`{"b":2}`)))

	results, _ := extract(t, buf.Bytes())
	require.Len(t, results, 2)
	assert.Equal(t, "a.json", results[0].Name)
	assert.Equal(t, "b.json", results[1].Name)
}

func TestExtract_TruncatedName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	testutil.Append(&buf, testutil.Stored("kept.json", []byte(`{"kept":1}`)))
	keep := buf.Len()
	testutil.Append(&buf, testutil.Stored("chopped.json", []byte(`{"gone":1}`)))

	// Cut inside the second entry's name, leaving its header intact.
	arc := buf.Bytes()[:keep+30+3]

	results, stats := extract(t, arc)
	require.Len(t, results, 1)
	assert.Equal(t, "kept.json", results[0].Name)
	assert.True(t, stats.Truncated)
	assert.Equal(t, 2, stats.Entries)
}

func TestExtract_TruncatedPayload(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(
		testutil.Stored("kept.json", []byte(`{"kept":1}`)),
		testutil.Entry{
			Name:         "chopped.json",
			Method:       0,
			Payload:      []byte(`{"go`),
			DeclaredSize: testutil.Uint32(4096),
		},
	)

	results, stats := extract(t, arc)
	require.Len(t, results, 1)
	assert.Equal(t, "kept.json", results[0].Name)
	assert.True(t, stats.Truncated)
}

func TestExtract_HeaderStraddlesEnd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	testutil.Append(&buf, testutil.Stored("kept.json", []byte(`{"kept":1}`)))
	keep := buf.Len()
	testutil.Append(&buf, testutil.Stored("chopped.json", []byte(`{"gone":1}`)))

	// Only 12 of the second header's 30 bytes survive. The scan ends
	// without parsing it.
	results, stats := extract(t, buf.Bytes()[:keep+12])
	require.Len(t, results, 1)
	assert.Equal(t, 1, stats.Entries)
}

func TestExtract_HugeDeclaredSize(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(testutil.Entry{
		Name:         "huge.json",
		Method:       0,
		Payload:      []byte(`{}`),
		DeclaredSize: testutil.Uint32(0xFFFFFFFF),
	})

	results, stats := extract(t, arc)
	assert.Empty(t, results)
	assert.True(t, stats.Truncated)
}

func TestExtract_SelectionSkipsDecompression(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	counting := func(r io.Reader) io.ReadCloser {
		calls.Add(1)
		return flate.NewReader(r)
	}

	x, err := New(WithDecompressor(MethodDeflate, counting))
	require.NoError(t, err)

	arc := testutil.Archive(
		testutil.Deflated(t, "skipped.txt", []byte(`{"never":"decoded"}`)),
		testutil.Deflated(t, "taken.json", []byte(`{"decoded":true}`)),
	)

	results, _ := x.Extract(arc)
	require.Len(t, results, 1)
	assert.Equal(t, "taken.json", results[0].Name)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExtract_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(testutil.Entry{
		Name:    "bzip.json",
		Method:  12,
		Payload: []byte("whatever a bzip2 stream looks like"),
	})

	results, stats := extract(t, arc)
	assert.Empty(t, results)
	require.Len(t, stats.Skips, 1)
	assert.Equal(t, SkipUnsupportedMethod, stats.Skips[0].Reason)
	assert.Equal(t, uint16(12), stats.Skips[0].Method)
	assert.Equal(t, 1, stats.Matched)
}

func TestExtract_CorruptEntryDoesNotPoisonScan(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(
		testutil.Deflated(t, "a.json", []byte(`{"a":1}`)),
		testutil.Entry{
			Name:    "corrupt.json",
			Method:  8,
			Payload: []byte("\xde\xad\xbe\xef this is not deflate"),
		},
		testutil.Deflated(t, "c.json", []byte(`{"c":3}`)),
	)

	results, stats := extract(t, arc)
	require.Len(t, results, 2)
	assert.Equal(t, "a.json", results[0].Name)
	assert.Equal(t, "c.json", results[1].Name)
	require.Len(t, stats.Skips, 1)
	assert.Equal(t, "corrupt.json", stats.Skips[0].Name)
	assert.Equal(t, SkipDecode, stats.Skips[0].Reason)
	assert.Equal(t, 1, stats.Skips[0].Entry)
}

func TestExtract_InvalidJSONSkipped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "not json at all", payload: []byte("hello world")},
		{name: "unterminated object", payload: []byte(`{"a":`)},
		{name: "trailing garbage", payload: []byte(`{"a":1} extra`)},
		{name: "empty payload", payload: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			arc := testutil.Archive(testutil.Stored("bad.json", tt.payload))
			results, stats := extract(t, arc)
			assert.Empty(t, results)
			require.Len(t, stats.Skips, 1)
			assert.Equal(t, SkipInvalidJSON, stats.Skips[0].Reason)
		})
	}
}

func TestExtract_EncounterOrder(t *testing.T) {
	t.Parallel()

	entries := make([]testutil.Entry, 0, 20)
	for i := range 20 {
		entries = append(entries, testutil.Deflated(t,
			fmt.Sprintf("results/%02d.json", i),
			fmt.Appendf(nil, `{"seq": %d}`, i)))
	}
	arc := testutil.Archive(entries...)

	results, stats := extract(t, arc)
	require.Len(t, results, 20)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("results/%02d.json", i), r.Name)
		assert.Equal(t, fmt.Sprintf(`{"seq":%d}`, i), string(r.JSON))
	}
	assert.Equal(t, 20, stats.Decoded)
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(
		testutil.Stored("a.json", []byte(`{"a":1}`)),
		testutil.Deflated(t, "b.json", []byte(`{"b":2}`)),
		testutil.Entry{Name: "bad.json", Method: 8, Payload: []byte("junk")},
	)

	x, err := New()
	require.NoError(t, err)

	first, firstStats := x.Extract(arc)
	second, secondStats := x.Extract(arc)
	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}

func TestExtract_ResultsDoNotAliasInput(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(testutil.Stored("a.json", []byte(`{"a":1}`)))

	results, _ := extract(t, arc)
	require.Len(t, results, 1)

	for i := range arc {
		arc[i] = 0
	}
	assert.Equal(t, `{"a":1}`, string(results[0].JSON))
}

func TestExtract_DeclaredUncompressedSizeLies(t *testing.T) {
	t.Parallel()

	// The uncompressed-size field is advisory. Wildly wrong values must not
	// change the decoded output.
	payload := []byte(`{"truth": "in the stream"}`)
	tests := []struct {
		name     string
		declared uint32
	}{
		{name: "zero", declared: 0},
		{name: "too small", declared: 1},
		{name: "absurd", declared: 0xFFFFFFF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			arc := testutil.Archive(testutil.Entry{
				Name:             "a.json",
				Method:           8,
				Payload:          testutil.Deflate(t, payload),
				UncompressedSize: tt.declared,
			})

			results, _ := extract(t, arc)
			require.Len(t, results, 1)
			assert.Equal(t, `{"truth":"in the stream"}`, string(results[0].JSON))
		})
	}
}

func TestExtract_MixedArchiveAccounting(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(
		testutil.Stored("a.json", []byte(`{"a":1}`)),
		testutil.Stored("readme.txt", []byte("plain text")),
		testutil.Entry{Name: "odd.json", Method: 99, Payload: []byte("??")},
		testutil.Deflated(t, "b.json", []byte(`{"b":2}`)),
		testutil.Stored("broken.json", []byte("{nope")),
	)

	results, stats := extract(t, arc)
	require.Len(t, results, 2)
	assert.Equal(t, 5, stats.Entries)
	assert.Equal(t, 4, stats.Matched)
	assert.Equal(t, 2, stats.Decoded)
	require.Len(t, stats.Skips, 2)
	assert.Equal(t, SkipUnsupportedMethod, stats.Skips[0].Reason)
	assert.Equal(t, SkipInvalidJSON, stats.Skips[1].Reason)
}

func TestExtract_ConcurrentUse(t *testing.T) {
	t.Parallel()

	entries := make([]testutil.Entry, 0, 8)
	for i := range 8 {
		entries = append(entries, testutil.Deflated(t,
			fmt.Sprintf("results/%d.json", i),
			fmt.Appendf(nil, `{"n": %d}`, i)))
	}
	arc := testutil.Archive(entries...)

	x, err := New()
	require.NoError(t, err)

	want, wantStats := x.Extract(arc)
	require.Len(t, want, 8)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 16 {
				got, gotStats := x.Extract(arc)
				if len(got) != len(want) {
					return fmt.Errorf("got %d results, want %d", len(got), len(want))
				}
				for i := range got {
					if got[i].Name != want[i].Name || !bytes.Equal(got[i].JSON, want[i].JSON) {
						return fmt.Errorf("result %d diverged: %q", i, got[i].Name)
					}
				}
				if gotStats.Entries != wantStats.Entries || gotStats.Decoded != wantStats.Decoded {
					return fmt.Errorf("stats diverged: %+v", gotStats)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestExtract_PackageLevel(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(testutil.Stored("a.json", []byte(`{"a":1}`)))

	results, err := Extract(arc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.json", results[0].Name)

	_, err = Extract(arc, WithDecompressor(MethodStore, Zstd()))
	require.ErrorIs(t, err, ErrStoredMethod)
}

// Stats comparison above relies on Skips being nil for clean scans; keep
// the zero value meaningful.
func TestExtract_CleanScanHasNilSkips(t *testing.T) {
	t.Parallel()

	arc := testutil.Archive(testutil.Stored("a.json", []byte(`{"a":1}`)))
	_, stats := extract(t, arc)
	assert.Nil(t, stats.Skips)
}

// extract scans data with a default-configuration Extractor.
func extract(t *testing.T, data []byte) ([]Result, Stats) {
	t.Helper()

	x, err := New()
	require.NoError(t, err)
	return x.Extract(data)
}
