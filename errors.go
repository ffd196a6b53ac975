// Copyright (c) 2024 Neomantra Corp

package mbin

import "fmt"

var (
	ErrInvalidMbinFile      = fmt.Errorf("invalid MBIN file")
	ErrHeaderTooShort       = fmt.Errorf("header shorter than expected")
	ErrNoRecord             = fmt.Errorf("no record scanned")
	ErrMalformedRecord      = fmt.Errorf("malformed record")
	ErrUnknownRType         = fmt.Errorf("unknown rtype")
	ErrNoMetadata           = fmt.Errorf("no metadata")
	ErrUnknownVendorId      = fmt.Errorf("unknown vendor id")
	ErrDuplicateAfterTransform = fmt.Errorf("duplicate records found after transform")
	ErrNoShardsFound        = fmt.Errorf("no zstd shards found in batch directory")
	ErrInvalidDateFormat    = fmt.Errorf("invalid date format")
	ErrUnknownDownloadMode  = fmt.Errorf("unknown download mode")
	ErrUserCancelled        = fmt.Errorf("user declined download")
	ErrJobExpired           = fmt.Errorf("vendor batch job expired")
	ErrExtractFailed        = fmt.Errorf("error opening vendor file")
	ErrVendor422            = fmt.Errorf("vendor rejected request as unprocessable")
)

func unexpectedBytesError(got int, want int) error {
	return fmt.Errorf("expected %d bytes, got %d", want, got)
}

func unexpectedRTypeError(got RType, want RType) error {
	return fmt.Errorf("expected RType %d, got %d", want, got)
}

// wrapf wraps a sentinel error with additional context, preserving
// errors.Is/errors.As across package boundaries.
func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
