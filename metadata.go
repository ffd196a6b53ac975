// Copyright (c) 2024 Neomantra Corp

package mbin

import (
	"encoding/binary"
	"io"
)

// Metadata is the prefix prepended once to every MBIN artifact:
// schema/dataset tags, the inclusive time range the file covers, and
// the internal-id -> ticker symbol map. Simplified from the teacher's
// versioned DBN metadata (no V1/V2 header, no partial/not-found
// symbol sections) since MBIN has a single format revision.
type Metadata struct {
	Schema    Schema
	Dataset   Dataset
	StartNs   uint64
	EndNs     uint64
	SymbolMap SymbolMap
}

// Metadata_Magic tags the start of the prefix so a reader can fail
// fast on a non-MBIN file, the same role teacher's "DBN" magic plays.
const Metadata_Magic = "MBIN"

// encode writes the metadata prefix: magic, schema, dataset, start_ns,
// end_ns, then the symbol map as a length-prefixed sequence of
// (u32 id, length-prefixed utf-8 ticker).
func (m *Metadata) encode(w io.Writer) error {
	buf := make([]byte, 0, len(Metadata_Magic)+2+16+4)
	buf = append(buf, Metadata_Magic...)
	buf = append(buf, byte(m.Schema), byte(m.Dataset))
	buf = appendUint64(buf, m.StartNs)
	buf = appendUint64(buf, m.EndNs)
	buf = appendUint32(buf, uint32(len(m.SymbolMap)))
	if _, err := w.Write(buf); err != nil {
		return err
	}
	ids := m.SymbolMap.sortedIds()
	for _, id := range ids {
		ticker := m.SymbolMap[id]
		entry := make([]byte, 0, 4+4+len(ticker))
		entry = appendUint32(entry, id)
		entry = appendUint32(entry, uint32(len(ticker)))
		entry = append(entry, ticker...)
		if _, err := w.Write(entry); err != nil {
			return err
		}
	}
	return nil
}

// ReadMetadata reads and validates the metadata prefix from r.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	head := make([]byte, len(Metadata_Magic)+2+16+4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, wrapf(ErrNoMetadata, "%v", err)
	}
	if string(head[0:4]) != Metadata_Magic {
		return nil, wrapf(ErrInvalidMbinFile, "bad magic %q", head[0:4])
	}
	md := &Metadata{
		Schema:  Schema(head[4]),
		Dataset: Dataset(head[5]),
		StartNs: binary.LittleEndian.Uint64(head[6:14]),
		EndNs:   binary.LittleEndian.Uint64(head[14:22]),
	}
	count := binary.LittleEndian.Uint32(head[22:26])
	md.SymbolMap = make(SymbolMap, count)
	for i := uint32(0); i < count; i++ {
		var idLen [8]byte
		if _, err := io.ReadFull(r, idLen[:]); err != nil {
			return nil, wrapf(ErrInvalidMbinFile, "truncated symbol map: %v", err)
		}
		id := binary.LittleEndian.Uint32(idLen[0:4])
		tickerLen := binary.LittleEndian.Uint32(idLen[4:8])
		ticker := make([]byte, tickerLen)
		if _, err := io.ReadFull(r, ticker); err != nil {
			return nil, wrapf(ErrInvalidMbinFile, "truncated ticker: %v", err)
		}
		md.SymbolMap[id] = string(ticker)
	}
	return md, nil
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}
