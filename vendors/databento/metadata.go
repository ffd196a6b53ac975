// Copyright (c) 2024 Neomantra Corp

// Package databento reads Databento-shaped vendor output (zstd-
// compressed DBN files) and talks to the vendor's historical HTTP API.
package databento

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/midas-systems/mbin"
)

// Metadata mirrors the fixed+dynamic DBN metadata header, trimmed to
// the fields this module actually reads: the schema/time-range tags
// and the symbol mapping table used to build a vendor SymbolMap.
// Grounded on the teacher's metadata.go (MetadataPrefix/
// MetadataHeaderV1/V2, decodeToSymbolMapping), read-only here since
// this module never writes a DBN file, only MBIN ones.
type Metadata struct {
	VersionNum uint8
	Dataset    string
	Schema     mbin.Schema
	Start      uint64
	End        uint64
	Mappings   []SymbolMapping
}

// SymbolMapping is one raw (continuous/queried) symbol's resolved
// tickers over one or more date ranges.
type SymbolMapping struct {
	RawSymbol string
	Intervals []MappingInterval
}

// MappingInterval is the resolved symbol for one date range within a
// SymbolMapping. Symbol is the vendor's numeric instrument id rendered
// as a decimal string, per Databento's InstrumentId stype-out
// convention.
type MappingInterval struct {
	StartDate uint32
	EndDate   uint32
	Symbol    string
}

const (
	headerVersion1           = 1
	headerVersion2           = 2
	metadataV1SymbolCstrLen  = 22
	metadataV1ReservedLen    = 47
	metadataV2ReservedLen    = 53
	metadataDatasetCstrLen   = 16
	metadataHeaderV1Size     = 100
	metadataHeaderV2Size     = 100
)

type metadataPrefix struct {
	VersionRaw [4]byte
	Length     uint32
}

// readMetadata reads the DBN metadata header from r, dispatching on
// the embedded version byte.
func readMetadata(r io.Reader) (*Metadata, error) {
	var mp metadataPrefix
	if err := binary.Read(r, binary.LittleEndian, &mp); err != nil {
		return nil, err
	}
	if mp.VersionRaw[0] != 'D' || mp.VersionRaw[1] != 'B' || mp.VersionRaw[2] != 'N' {
		return nil, mbin.ErrInvalidMbinFile
	}

	b := make([]byte, mp.Length)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}

	switch versionNum := mp.VersionRaw[3]; versionNum {
	case headerVersion1:
		return readMetadataV1(b, mp)
	case headerVersion2:
		return readMetadataV2(b, mp)
	default:
		return nil, mbin.ErrInvalidMbinFile
	}
}

func readMetadataV1(b []byte, mp metadataPrefix) (*Metadata, error) {
	if len(b) < metadataHeaderV1Size {
		return nil, mbin.ErrHeaderTooShort
	}
	m := &Metadata{
		VersionNum: mp.VersionRaw[3],
		Dataset:    mbin.TrimNullBytes(b[0:metadataDatasetCstrLen]),
		Schema:     mbin.Schema(binary.LittleEndian.Uint16(b[metadataDatasetCstrLen:18])),
		Start:      binary.LittleEndian.Uint64(b[18:26]),
		End:        binary.LittleEndian.Uint64(b[26:34]),
	}
	r := bytes.NewReader(b[metadataHeaderV1Size:])
	if err := skipSchemaDefAndSymbolArrays(r, metadataV1SymbolCstrLen); err != nil {
		return nil, err
	}
	if err := decodeToSymbolMapping(r, metadataV1SymbolCstrLen, &m.Mappings); err != nil {
		return nil, err
	}
	return m, nil
}

func readMetadataV2(b []byte, mp metadataPrefix) (*Metadata, error) {
	if len(b) < metadataHeaderV2Size {
		return nil, mbin.ErrHeaderTooShort
	}
	symbolCstrLen := binary.LittleEndian.Uint16(b[45:47])
	m := &Metadata{
		VersionNum: mp.VersionRaw[3],
		Dataset:    mbin.TrimNullBytes(b[0:metadataDatasetCstrLen]),
		Schema:     mbin.Schema(binary.LittleEndian.Uint16(b[metadataDatasetCstrLen:18])),
		Start:      binary.LittleEndian.Uint64(b[18:26]),
		End:        binary.LittleEndian.Uint64(b[26:34]),
	}
	r := bytes.NewReader(b[metadataHeaderV2Size:])
	if err := skipSchemaDefAndSymbolArrays(r, symbolCstrLen); err != nil {
		return nil, err
	}
	if err := decodeToSymbolMapping(r, symbolCstrLen, &m.Mappings); err != nil {
		return nil, err
	}
	return m, nil
}

// skipSchemaDefAndSymbolArrays reads past the schema-definition blob
// and the symbols/partial/not-found string arrays, none of which this
// module consumes, positioning r at the mappings section.
func skipSchemaDefAndSymbolArrays(r io.Reader, cstrLen uint16) error {
	var schemaDefLen uint32
	if err := binary.Read(r, binary.LittleEndian, &schemaDefLen); err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, r, int64(schemaDefLen)); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := skipStringArray(r, cstrLen); err != nil {
			return err
		}
	}
	return nil
}

func skipStringArray(r io.Reader, cstrLen uint16) error {
	var arrayLen uint32
	if err := binary.Read(r, binary.LittleEndian, &arrayLen); err != nil {
		return err
	}
	_, err := io.CopyN(io.Discard, r, int64(arrayLen)*int64(cstrLen))
	return err
}

func decodeToSymbolMapping(r io.Reader, cstrLen uint16, mappings *[]SymbolMapping) error {
	var mappingLen uint32
	if err := binary.Read(r, binary.LittleEndian, &mappingLen); err != nil {
		return err
	}
	strBytes := make([]byte, cstrLen)
	for i := uint32(0); i < mappingLen; i++ {
		var mapping SymbolMapping
		if err := binary.Read(r, binary.LittleEndian, &strBytes); err != nil {
			return err
		}
		mapping.RawSymbol = mbin.TrimNullBytes(strBytes)

		var intervalLen uint32
		if err := binary.Read(r, binary.LittleEndian, &intervalLen); err != nil {
			return err
		}
		for j := uint32(0); j < intervalLen; j++ {
			var interval MappingInterval
			if err := binary.Read(r, binary.LittleEndian, &interval.StartDate); err != nil {
				return err
			}
			if err := binary.Read(r, binary.LittleEndian, &interval.EndDate); err != nil {
				return err
			}
			if err := binary.Read(r, binary.LittleEndian, &strBytes); err != nil {
				return err
			}
			interval.Symbol = mbin.TrimNullBytes(strBytes)
			mapping.Intervals = append(mapping.Intervals, interval)
		}
		*mappings = append(*mappings, mapping)
	}
	return nil
}
