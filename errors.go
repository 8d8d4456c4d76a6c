package zipsift

import "errors"

// Sentinel errors for extractor configuration.
//
// Scanning itself never fails: malformed input is absorbed per the package
// failure model. Only New and the package-level Extract return errors, and
// only for configuration problems.
var (
	// ErrNilDecompressor is returned when WithDecompressor is given a nil
	// function.
	ErrNilDecompressor = errors.New("zipsift: nil decompressor")

	// ErrStoredMethod is returned when WithDecompressor targets method 0,
	// which is handled structurally and cannot be overridden.
	ErrStoredMethod = errors.New("zipsift: method 0 is not decompressed")

	// ErrSchemaInvalid is returned when WithSchema is given a schema that
	// does not compile.
	ErrSchemaInvalid = errors.New("zipsift: invalid schema")

	// ErrNilSelectFunc is returned when WithSelectFunc is given a nil
	// predicate.
	ErrNilSelectFunc = errors.New("zipsift: nil select func")
)
