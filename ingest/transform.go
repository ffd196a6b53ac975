// Copyright (c) 2024 Neomantra Corp

package ingest

import (
	"fmt"
	"io"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/vendors/databento"
)

// batchSize is the flush threshold named in SPEC_FULL §4.4, matching
// original_source's transform.rs::to_mbn (`let batch_size = 10000;`).
const batchSize = 10000

// BuildIdMap joins a vendor file's embedded vendor-id -> ticker table
// against the registry's ticker -> internal-id table, producing the
// vendor-id -> internal-id IdMap the Transform step needs. Any vendor
// ticker absent from tickerToID fails the whole join -- grounded on
// original_source's transform.rs::instrument_id_map, which returns an
// error rather than skipping an unresolved ticker.
func BuildIdMap(vendorSymbolMap mbin.SymbolMap, tickerToID map[string]uint32) (mbin.IdMap, error) {
	idMap := make(mbin.IdMap, len(vendorSymbolMap))
	for vendorID, ticker := range vendorSymbolMap {
		internalID, ok := tickerToID[ticker]
		if !ok {
			return nil, fmt.Errorf("ticker %q not in registry", ticker)
		}
		idMap[vendorID] = internalID
	}
	return idMap, nil
}

// buildMetadataSymbolMap flattens the vendor's vendor-id -> ticker
// table through idMap into the internal-id -> ticker table the MBIN
// metadata prefix carries (SPEC_FULL §3's Metadata.SymbolMap).
func buildMetadataSymbolMap(vendorSymbolMap mbin.SymbolMap, idMap mbin.IdMap) mbin.SymbolMap {
	out := make(mbin.SymbolMap, len(vendorSymbolMap))
	for vendorID, ticker := range vendorSymbolMap {
		if internalID, ok := idMap.Translate(vendorID); ok {
			out[internalID] = ticker
		}
	}
	return out
}

// dedupState is the transform's bounded dedup/collision-count block:
// one sub-map per distinct ts_recv seen so far. evictBefore drops
// every bucket older than the current record's ts_recv, keeping the
// footprint proportional to the largest single ts_recv group rather
// than the whole file (SPEC_FULL §9's "Dedup memory bound" note).
type dedupState struct {
	buckets map[uint64]map[mbin.Mbp1Record]uint32
}

func newDedupState() *dedupState {
	return &dedupState{buckets: make(map[uint64]map[mbin.Mbp1Record]uint32)}
}

func (d *dedupState) evictBefore(tsRecv uint64) {
	for k := range d.buckets {
		if k < tsRecv {
			delete(d.buckets, k)
		}
	}
}

// discriminatorFor returns the next discriminator for key within the
// ts_recv bucket: 0 for the first occurrence, incrementing on each
// structurally-equal collision thereafter.
func (d *dedupState) discriminatorFor(tsRecv uint64, key mbin.Mbp1Record) uint32 {
	bucket, ok := d.buckets[tsRecv]
	if !ok {
		bucket = make(map[mbin.Mbp1Record]uint32)
		d.buckets[tsRecv] = bucket
	}
	count := bucket[key]
	bucket[key] = count + 1
	return count
}

func fromVendor(v databento.Mbp1, internalID uint32) mbin.Mbp1Record {
	return mbin.Mbp1Record{
		Hd: mbin.RHeader{
			Length:       mbin.Mbp1Record_Size / 4,
			RType:        mbin.RType_Mbp1,
			InstrumentID: internalID,
			TsEvent:      v.TsEvent,
		},
		Price:     v.Price,
		Size:      v.Size,
		Action:    mbin.Action(v.Action),
		Side:      mbin.Side(v.Side),
		Depth:     v.Depth,
		Flags:     v.Flags,
		TsRecv:    v.TsRecv,
		TsInDelta: v.TsInDelta,
		Sequence:  v.Sequence,
		Levels:    [1]mbin.BidAskPair{v.Level},
	}
}

// Transform is the heart of the pipeline (SPEC_FULL §4.4): it reads
// every MBP-1 record out of ext, translates its vendor instrument id
// through idMap, assigns a per-ts_recv discriminator to break ties
// between structurally-equal records, and writes the result to w in
// batches of batchSize. w must already have the metadata prefix
// written by the caller (WriteMetadata) -- Transform only ever emits
// record blocks, matching codec.go's append-mode contract. An
// ErrUnknownVendorId or I/O error aborts mid-stream; the caller (see
// stageOne) is responsible for deleting the now-poisoned output file,
// exactly as SPEC_FULL §4.2's encode_records contract requires.
func Transform(w io.Writer, ext *databento.Extractor, idMap mbin.IdMap) error {
	dedup := newDedupState()
	batch := make([]mbin.RecordEnum, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := mbin.EncodeRecords(w, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		v, ok := ext.Next()
		if !ok {
			break
		}
		internalID, ok := idMap.Translate(v.InstrumentID)
		if !ok {
			return fmt.Errorf("%w: vendor instrument id %d", mbin.ErrUnknownVendorId, v.InstrumentID)
		}
		rec := fromVendor(v, internalID)
		dedup.evictBefore(rec.TsRecv)
		key := rec.WithoutDiscriminator()
		rec.Discriminator = dedup.discriminatorFor(rec.TsRecv, key)

		batch = append(batch, mbin.RecordEnum{RType: mbin.RType_Mbp1, Mbp1: rec})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := ext.Error(); err != nil {
		return err
	}
	return flush()
}
