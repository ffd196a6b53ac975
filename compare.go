// Copyright (c) 2024 Neomantra Corp

package mbin

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindDuplicates decodes the MBIN file at path and returns the number
// of distinct records that occur more than once. RecordEnum is a
// comparable struct (see structs.go), so the tally below is a native
// Go map -- no hash/equality method needed, unlike
// original_source/src/pipeline/midas/checks.rs::find_duplicates whose
// Rust HashMap<RecordEnum, usize> plays the same role.
func FindDuplicates(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, _, err := ReadMbinToEnums(f)
	if err != nil {
		return 0, err
	}

	tally := make(map[RecordEnum]int, len(records))
	for _, r := range records {
		tally[r]++
	}
	count := 0
	for _, n := range tally {
		if n > 1 {
			count++
		}
	}
	return count, nil
}

// compareBucketCap bounds how many f1 records the comparator keeps
// resident at once, refilling from f1 as matches against f2 evict
// entries. Grounded on original_source/src/pipeline/vendors/
// v_databento/compare.rs's batch_size = 1000, corrected here to
// actually cap the refill: the Rust refill loop has no size check of
// its own and reads mbn_decoder to exhaustion on its first call, so
// its "batch" never bounds memory in practice. f2 is always streamed
// one record at a time rather than materialized, matching compare.rs's
// decode_record_ref loop; only f1 can still grow past the cap, and
// only in the tail drain below, when mismatches leave the buffer full
// and there's no room to refill further.
const compareBucketCap = 1000

// Compare verifies every record of f2 has a structural match in f1
// sharing the same ts_event, and vice versa. Bucketing is keyed by
// ts_event, not ts_recv -- the resolved Open Question from SPEC_FULL.md
// §9, following original_source/src/pipeline/vendors/v_databento/
// compare.rs's record-by-record matching against a refillable batch.
// Writes compare_results.txt alongside f2 listing both unmatched sets;
// returns nil iff both are empty.
func Compare(f1, f2 string) error {
	r1, err := os.Open(f1)
	if err != nil {
		return err
	}
	defer r1.Close()
	s1, err := NewMbinScanner(r1)
	if err != nil {
		return err
	}

	r2, err := os.Open(f2)
	if err != nil {
		return err
	}
	defer r2.Close()
	s2, err := NewMbinScanner(r2)
	if err != nil {
		return err
	}

	buckets := make(map[uint64][]RecordEnum)
	buffered := 0
	s1Done := false

	refill := func() error {
		for buffered < compareBucketCap && !s1Done {
			if !s1.Next() {
				if err := s1.Error(); err != nil {
					return err
				}
				s1Done = true
				break
			}
			rec, err := s1.Decode()
			if err != nil {
				return err
			}
			key := rec.Header().TsEvent
			buckets[key] = append(buckets[key], rec)
			buffered++
		}
		return nil
	}
	if err := refill(); err != nil {
		return err
	}

	var unmatchedF2 []RecordEnum
	for s2.Next() {
		rec, err := s2.Decode()
		if err != nil {
			return err
		}
		if err := refill(); err != nil {
			return err
		}

		key := rec.Header().TsEvent
		bucket := buckets[key]
		pos := -1
		for i, candidate := range bucket {
			if candidate == rec {
				pos = i
				break
			}
		}
		if pos == -1 {
			unmatchedF2 = append(unmatchedF2, rec)
			continue
		}
		bucket = append(bucket[:pos], bucket[pos+1:]...)
		buffered--
		if len(bucket) == 0 {
			delete(buckets, key)
		} else {
			buckets[key] = bucket
		}
	}
	if err := s2.Error(); err != nil {
		return err
	}

	// Drain whatever f1 has left unread: the cap only bounds the
	// working set during matching, not the final unmatched-in-f1
	// report.
	for !s1Done {
		if !s1.Next() {
			if err := s1.Error(); err != nil {
				return err
			}
			s1Done = true
			break
		}
		rec, err := s1.Decode()
		if err != nil {
			return err
		}
		key := rec.Header().TsEvent
		buckets[key] = append(buckets[key], rec)
	}

	var unmatchedF1 []RecordEnum
	for _, bucket := range buckets {
		unmatchedF1 = append(unmatchedF1, bucket...)
	}

	if err := writeCompareResults(f2, unmatchedF1, unmatchedF2); err != nil {
		return err
	}
	if len(unmatchedF1) != 0 || len(unmatchedF2) != 0 {
		return fmt.Errorf("compare mismatch: %d unmatched in %s, %d unmatched in %s", len(unmatchedF1), f1, len(unmatchedF2), f2)
	}
	return nil
}

func writeCompareResults(near string, unmatchedF1, unmatchedF2 []RecordEnum) error {
	out, err := os.Create(filepath.Join(filepath.Dir(near), "compare_results.txt"))
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Fprintf(out, "Unmatched records in first file: %d\n", len(unmatchedF1))
	for _, r := range unmatchedF1 {
		fmt.Fprintf(out, "  %+v\n", r)
	}
	fmt.Fprintf(out, "Unmatched records in second file (%s): %d\n", near, len(unmatchedF2))
	for _, r := range unmatchedF2 {
		fmt.Fprintf(out, "  %+v\n", r)
	}
	return nil
}
