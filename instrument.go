// Copyright (c) 2024 Neomantra Corp

package mbin

import "time"

// Instrument is the identity of one tradable symbol as carried by the
// registry (registry.Client). InstrumentID is nil until the registry
// assigns one on CreateSymbol. VendorData is opaque to this package --
// a vendor-specific encoding of e.g. Databento's stype/schema/dataset
// tri-tuple, read by vendors/databento but never interpreted here.
// Grounded on original_source's mbn::symbols::Instrument and its
// per-vendor VendorData (vendors/databento/mod.rs).
type Instrument struct {
	InstrumentID   *uint32
	Ticker         string
	Name           string
	Dataset        Dataset
	Vendor         Vendor
	VendorData     []byte
	FirstAvailable uint64
	LastAvailable  uint64
	ExpirationDate uint64
	IsContinuous   bool
	Active         bool
}

// LastAvailableTime is LastAvailable as a time.Time, the form the
// update driver's window walk (ingest.DatabentoVendor.Update) consumes.
func (i Instrument) LastAvailableTime() time.Time {
	return TimestampToTime(i.LastAvailable)
}

// FullyIngested reports whether this instrument's watermark has
// passed its expiration date -- expired futures are never refilled,
// per SPEC_FULL §4.8's exclusion condition. Equities have no
// expiration and are never considered fully ingested by this check.
func (i Instrument) FullyIngested() bool {
	return i.Dataset != Dataset_Equities && i.LastAvailable > i.ExpirationDate
}
