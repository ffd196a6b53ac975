// Copyright (c) 2024 Neomantra Corp

package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/midas-systems/mbin"
	"github.com/midas-systems/mbin/registry"
	"github.com/midas-systems/mbin/vendors/databento"
)

// stageOne writes one MBIN artifact at outPath from ext: metadata
// prefix, then every transformed record. idMap is built fresh from
// ext's own embedded symbol map, since a batch download's shards can
// each carry a different vendor-id -> ticker table even though they
// share one ticker -> internal-id join against the registry. Grounded
// on original_source's pipeline/vendors/v_databento/mod.rs::stage,
// which does the same two-step write per shard. A Transform error or
// a post-write duplicate removes the partially-written file --
// SPEC_FULL §4.2's encode_records contract -- so a failed Stage never
// leaves a poisoned artifact behind for Upload to find.
func stageOne(ext *databento.Extractor, tickerToID map[string]uint32, dataset mbin.Dataset, outPath string) error {
	idMap, err := BuildIdMap(ext.SymbolMap(), tickerToID)
	if err != nil {
		return err
	}

	w, closer, err := mbin.MakeCompressedWriter(outPath, false)
	if err != nil {
		return err
	}

	md := &mbin.Metadata{
		Schema:    ext.Metadata().Schema,
		Dataset:   dataset,
		StartNs:   ext.Metadata().Start,
		EndNs:     ext.Metadata().End,
		SymbolMap: buildMetadataSymbolMap(ext.SymbolMap(), idMap),
	}
	if err := mbin.WriteMetadata(w, md); err != nil {
		closer()
		os.Remove(outPath)
		return err
	}
	if err := Transform(w, ext, idMap); err != nil {
		closer()
		os.Remove(outPath)
		return err
	}
	closer()

	dupCount, err := mbin.FindDuplicates(outPath)
	if err != nil {
		os.Remove(outPath)
		return err
	}
	if dupCount > 0 {
		os.Remove(outPath)
		return mbin.ErrDuplicateAfterTransform
	}
	return nil
}

// StageStream stages one raw (non-batch) vendor download at rawPath
// into processedDir, producing a single MBIN artifact. Grounded on
// stage's stream branch, which calls transform exactly once and
// appends the resulting file name to files_list.
func StageStream(rawPath string, tickerToID map[string]uint32, dataset mbin.Dataset, processedDir string, symbols []string, schema mbin.Schema, start, end time.Time) (string, error) {
	ext, err := databento.Open(rawPath)
	if err != nil {
		return "", err
	}
	defer ext.Close()

	name := databento.MbinFileName(symbols, schema, start, end, false, 0)
	outPath := filepath.Join(processedDir, name)
	if err := stageOne(ext, tickerToID, dataset, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// StageBatch stages every shard of a batch download under rawDir,
// naming each artifact "{n}_{mbinFileName}" in upload order, 0-indexed
// -- grounded on stage's batch branch (read_dbn_batch_dir walk,
// per-shard transform, `let mut count = 0; ...; count += 1`). Stops at
// the first shard that fails -- the returned slice holds every
// artifact successfully staged so far, which the caller may still
// attempt to Upload.
func StageBatch(rawDir string, tickerToID map[string]uint32, dataset mbin.Dataset, processedDir string, symbols []string, schema mbin.Schema, start, end time.Time) ([]string, error) {
	shards, err := databento.WalkShards(rawDir)
	if err != nil {
		return nil, err
	}

	var staged []string
	for i, shard := range shards {
		ext, err := databento.Open(shard)
		if err != nil {
			return staged, err
		}
		name := databento.MbinFileName(symbols, schema, start, end, true, i)
		outPath := filepath.Join(processedDir, name)
		stageErr := stageOne(ext, tickerToID, dataset, outPath)
		ext.Close()
		if stageErr != nil {
			return staged, stageErr
		}
		staged = append(staged, outPath)
	}
	return staged, nil
}

// Upload hands every staged artifact in paths to loader, one at a
// time, and removes the local file afterward whether or not the
// upload succeeded -- grounded on original_source's upload, which
// always evicts a processed file from PROCESSED_DIR regardless of the
// create_mbp_from_file outcome, collecting per-file failures into one
// composite error rather than stopping at the first one.
func Upload(ctx context.Context, loader registry.Loader, processedDir string, paths []string) error {
	var errs []error
	for _, path := range paths {
		rel, err := filepath.Rel(processedDir, path)
		if err != nil {
			rel = path
		}
		if err := loader.CreateFromFile(ctx, rel); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
		}
		os.Remove(path)
	}
	return errors.Join(errs...)
}
