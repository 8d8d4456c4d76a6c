package zipsift

import "log/slog"

// Option configures an Extractor.
type Option func(*Extractor) error

// WithSuffix restricts selection to names ending with suffix
// (default ".json"). An empty suffix disables the check.
func WithSuffix(suffix string) Option {
	return func(x *Extractor) error {
		x.selector.Suffix = suffix
		return nil
	}
}

// WithPathContains restricts selection to names containing at least one of
// the given substrings, e.g. a results-directory marker.
func WithPathContains(substrings ...string) Option {
	return func(x *Extractor) error {
		x.selector.PathContains = append(x.selector.PathContains, substrings...)
		return nil
	}
}

// WithExcludeContains rejects any name containing one of the given
// substrings, regardless of the other selection settings.
func WithExcludeContains(substrings ...string) Option {
	return func(x *Extractor) error {
		x.selector.ExcludeContains = append(x.selector.ExcludeContains, substrings...)
		return nil
	}
}

// WithDirectoryEntries includes names ending in "/" (default: excluded).
func WithDirectoryEntries(enabled bool) Option {
	return func(x *Extractor) error {
		x.selector.DirectoryEntries = enabled
		return nil
	}
}

// WithPlatformArtifacts includes macOS metadata entries such as __MACOSX/
// resource forks and .DS_Store files (default: excluded).
func WithPlatformArtifacts(enabled bool) Option {
	return func(x *Extractor) error {
		x.selector.PlatformArtifacts = enabled
		return nil
	}
}

// WithSelector replaces the built-in selection policy wholesale.
func WithSelector(sel Selector) Option {
	return func(x *Extractor) error {
		x.selector = sel
		return nil
	}
}

// WithSelectFunc replaces the entire selection policy with fn. When set,
// the Selector-based options are ignored.
func WithSelectFunc(fn func(name string) bool) Option {
	return func(x *Extractor) error {
		if fn == nil {
			return ErrNilSelectFunc
		}
		x.selectFunc = fn
		return nil
	}
}

// WithDecompressor registers d for a compression method, overriding the
// built-in DEFLATE handler when method is 8. Method 0 is handled
// structurally and cannot be overridden.
func WithDecompressor(method uint16, d Decompressor) Option {
	return func(x *Extractor) error {
		if d == nil {
			return ErrNilDecompressor
		}
		if method == MethodStore {
			return ErrStoredMethod
		}
		if x.decompressors == nil {
			x.decompressors = make(map[uint16]Decompressor)
		}
		x.decompressors[method] = d
		return nil
	}
}

// WithMaxDecodedSize caps the decoded size of a single payload
// (default 256 MiB). Entries exceeding the cap are skipped.
// Set limit to 0 to disable the cap.
func WithMaxDecodedSize(limit uint64) Option {
	return func(x *Extractor) error {
		x.maxDecoded = limit
		return nil
	}
}

// WithSchema requires every decoded payload to conform to the given JSON
// Schema. The schema is compiled once; non-conforming payloads are skipped.
func WithSchema(schemaJSON string) Option {
	return func(x *Extractor) error {
		v, err := newSchemaValidator(schemaJSON)
		if err != nil {
			return err
		}
		x.schema = v
		return nil
	}
}

// WithLogger sets a logger for per-entry skip and truncation events,
// emitted at debug level. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) error {
		if logger != nil {
			x.logger = logger
		}
		return nil
	}
}
