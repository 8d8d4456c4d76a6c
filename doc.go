// Package zipsift scans raw byte buffers for ZIP local file headers and
// decodes the entries worth keeping, without ever consulting a central
// directory.
//
// The scanner is built for hostile or damaged input: payloads fetched over
// the network, archives cut off mid-transfer, buffers that are not archives
// at all. Extraction never returns an error and never panics. Whatever can
// be decoded is returned in encounter order; everything else is skipped and
// accounted for in [Stats].
//
// # Quick Start
//
// Decode every .json entry in a buffer:
//
//	results, err := zipsift.Extract(data)
//	if err != nil {
//	    return err // configuration error only, never a data error
//	}
//	for _, r := range results {
//	    fmt.Println(r.Name, string(r.JSON))
//	}
//
// Reuse one [Extractor] across buffers and inspect scan statistics:
//
//	x, err := zipsift.New(
//	    zipsift.WithPathContains("results/"),
//	    zipsift.WithExcludeContains("invalid-issues"),
//	)
//	if err != nil {
//	    return err
//	}
//	results, stats := x.Extract(data)
//
// # Failure Model
//
// [Extractor.Extract] treats the buffer as untrusted from the first byte to
// the last. Bytes that do not form a local file header are stepped over one
// at a time, an entry whose name or payload region runs past the end of the
// buffer ends the scan with Stats.Truncated set, and a matched entry whose
// payload cannot be decompressed or is not well-formed JSON becomes a [Skip]
// rather than a failure. One corrupt entry never hides the valid entries
// around it.
//
// Successful payloads are re-serialized into canonical compact JSON, so two
// archives holding the same documents with different formatting produce
// identical results.
//
// # Compression Methods
//
// Stored (method 0) and deflate (method 8) entries decode out of the box.
// Further methods are opt-in through [WithDecompressor]; [Zstd] covers
// method 93:
//
//	x, err := zipsift.New(zipsift.WithDecompressor(zipsift.MethodZstd, zipsift.Zstd()))
//
// # Caching
//
// The cache subpackage wraps an Extractor so that repeated extractions of
// byte-identical buffers are served from memory, with concurrent extractions
// of the same buffer deduplicated to a single scan.
package zipsift
