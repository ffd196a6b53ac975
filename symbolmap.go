// Copyright (c) 2024 Neomantra Corp

package mbin

import "sort"

// SymbolMap is the internal id -> ticker table carried in Metadata.
// Grounded on the teacher's PitSymbolMap (symbol_map.go), trimmed to a
// plain map since MBIN metadata has no mapping-interval concept (one
// ticker per internal id per file, not a time-varying mapping).
type SymbolMap map[uint32]string

// IsEmpty reports whether the map has no entries. Deliberately NOT
// copied from the teacher's PitSymbolMap.IsEmpty, whose
// `len(p.mapping) != 0` body contradicts its own name.
func (m SymbolMap) IsEmpty() bool { return len(m) == 0 }

// Get returns the ticker for an internal instrument id.
func (m SymbolMap) Get(instrumentID uint32) (string, bool) {
	t, ok := m[instrumentID]
	return t, ok
}

func (m SymbolMap) sortedIds() []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IdMap maps a vendor's per-file instrument id to this pipeline's
// internal instrument id. Built by joining the vendor file's embedded
// ticker mapping (vendors/databento.Extractor.SymbolMap) against
// the registry's ticker -> internal-id table -- see
// ingest.BuildIdMap, grounded on original_source's
// transform.rs::instrument_id_map.
type IdMap map[uint32]uint32

// Translate looks up the internal instrument id for a vendor id.
func (m IdMap) Translate(vendorID uint32) (uint32, bool) {
	id, ok := m[vendorID]
	return id, ok
}
