// Copyright (c) 2024 Neomantra Corp
//
// Enumerations for the MBIN record model. Schema/RType naming follows
// Databento's DBN conventions (the vendor this pipeline ingests from),
// trimmed to the record shapes this module actually decodes/encodes.

package mbin

// Side of an order or trade aggressor.
type Side uint8

const (
	// A sell order or sell aggressor in a trade.
	Side_Ask Side = 'A'
	// A buy order or a buy aggressor in a trade.
	Side_Bid Side = 'B'
	// No side specified by the original source.
	Side_None Side = 'N'
)

// Action describes the book event that produced a record.
type Action uint8

const (
	// An existing order was modified.
	Action_Modify Action = 'M'
	// A trade executed.
	Action_Trade Action = 'T'
	// An existing order was filled.
	Action_Fill Action = 'F'
	// An order was cancelled.
	Action_Cancel Action = 'C'
	// A new order was added.
	Action_Add Action = 'A'
	// Reset the book; clear all orders for an instrument.
	Action_Clear Action = 'R'
)

// SType is the symbology type: how a caller's symbol string is
// interpreted by the vendor.
type SType uint8

const (
	// Symbology using a unique numeric ID.
	SType_InstrumentId SType = 0
	// Symbology using the original symbols provided by the publisher.
	SType_RawSymbol SType = 1
	// A vendor-specific symbology where one symbol may point to
	// different instruments at different points of time, e.g. to
	// always refer to the front month future.
	SType_Continuous SType = 3
	// A vendor-specific symbology for referring to a group of symbols
	// by one "parent" symbol, e.g. ES.FUT for all ES futures.
	SType_Parent SType = 4
	// Symbology for US equities using NASDAQ Integrated conventions.
	SType_Nasdaq SType = 5
	// Symbology for US equities using CMS suffix conventions.
	SType_Cms SType = 6
)

// RType tags the wire shape of a record body following RHeader.
type RType uint8

const (
	RType_Mbp1      RType = 0x01 // market-by-price, depth 1 (also used for Tbbo)
	RType_Trades    RType = 0x00 // trade events, depth 0
	RType_Bbo1S     RType = 0x30 // best-bid-offer snapshot, 1s cadence
	RType_Bbo1M     RType = 0x31 // best-bid-offer snapshot, 1m cadence
	RType_Ohlcv1S   RType = 0x20 // open/high/low/close/volume, 1s cadence
	RType_Ohlcv1M   RType = 0x21 // open/high/low/close/volume, 1m cadence
	RType_Ohlcv1H   RType = 0x22 // open/high/low/close/volume, 1h cadence
	RType_Ohlcv1D   RType = 0x23 // open/high/low/close/volume, 1d cadence
	RType_Unknown   RType = 0xFF
)

// Schema is the record shape written into an MBIN artifact.
type Schema uint8

const (
	Schema_Mbp1    Schema = 1
	Schema_Trades  Schema = 2
	Schema_Tbbo    Schema = 3
	Schema_Bbo1S   Schema = 4
	Schema_Bbo1M   Schema = 5
	Schema_Ohlcv1S Schema = 6
	Schema_Ohlcv1M Schema = 7
	Schema_Ohlcv1H Schema = 8
	Schema_Ohlcv1D Schema = 9
)

// Dataset is a semantic family of instruments.
type Dataset uint8

const (
	Dataset_Futures Dataset = iota
	Dataset_Equities
	Dataset_Option
)

func (d Dataset) String() string {
	switch d {
	case Dataset_Futures:
		return "futures"
	case Dataset_Equities:
		return "equities"
	case Dataset_Option:
		return "option"
	default:
		return "unknown"
	}
}

// Vendor identifies the upstream source an Instrument's vendor_data is
// shaped for.
type Vendor uint8

const (
	Vendor_Databento Vendor = iota
	Vendor_Internal
)

func (v Vendor) String() string {
	switch v {
	case Vendor_Databento:
		return "databento"
	case Vendor_Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Encoding of a raw vendor file's payload.
type Encoding uint8

const (
	Encoding_Dbn  Encoding = 0
	Encoding_Csv  Encoding = 1
	Encoding_Json Encoding = 2
)

// Compression of a raw vendor file.
type Compression uint8

const (
	Compression_None Compression = 0
	Compression_ZStd Compression = 1
)

// Constants for the MBP-1/Trades bit-flag record field.
const (
	// Indicates it's the last message in the packet from the venue
	// for a given instrument_id.
	RFlag_LAST uint8 = 1 << 7
	// Indicates a top-of-book message, not an individual order.
	RFlag_TOB uint8 = 1 << 6
	// Indicates the message was sourced from a replay, such as a
	// snapshot server.
	RFlag_SNAPSHOT uint8 = 1 << 5
	// Indicates an aggregated price level message, not an individual
	// order.
	RFlag_MBP uint8 = 1 << 4
	// Indicates the ts_recv value is inaccurate due to clock issues
	// or packet reordering.
	RFlag_BAD_TS_RECV uint8 = 1 << 3
)

// DownloadMode is the vendor download strategy chosen by the size
// probe (see vendors/databento's Client.GetHistorical).
type DownloadMode uint8

const (
	DownloadMode_Stream DownloadMode = iota
	DownloadMode_Batch
)

func (m DownloadMode) String() string {
	switch m {
	case DownloadMode_Stream:
		return "STREAM"
	case DownloadMode_Batch:
		return "BATCH"
	default:
		return "UNKNOWN"
	}
}

// DownloadModeFromString parses the "STREAM"/"BATCH" wire values
// (case-insensitive), grounded on original_source's DownloadType
// TryFrom<&str>. Any other value is ErrUnknownDownloadMode.
func DownloadModeFromString(s string) (DownloadMode, error) {
	switch upperASCII(s) {
	case "STREAM":
		return DownloadMode_Stream, nil
	case "BATCH":
		return DownloadMode_Batch, nil
	default:
		return 0, wrapf(ErrUnknownDownloadMode, "%q", s)
	}
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
