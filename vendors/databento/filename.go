// Copyright (c) 2024 Neomantra Corp

package databento

import (
	"fmt"
	"strings"
	"time"

	"github.com/midas-systems/mbin"
	"github.com/relvacode/iso8601"
)

func schemaFromCode(code string) (mbin.Schema, bool) {
	switch code {
	case "mbp-1":
		return mbin.Schema_Mbp1, true
	case "trades":
		return mbin.Schema_Trades, true
	case "tbbo":
		return mbin.Schema_Tbbo, true
	case "bbo-1s":
		return mbin.Schema_Bbo1S, true
	case "bbo-1m":
		return mbin.Schema_Bbo1M, true
	case "ohlcv-1s":
		return mbin.Schema_Ohlcv1S, true
	case "ohlcv-1m":
		return mbin.Schema_Ohlcv1M, true
	case "ohlcv-1h":
		return mbin.Schema_Ohlcv1H, true
	case "ohlcv-1d":
		return mbin.Schema_Ohlcv1D, true
	default:
		return 0, false
	}
}

// schemaCode returns the vendor's wire-format schema token, e.g.
// "mbp-1", matching Databento's own Schema::as_str() used by
// original_source/src/vendors/v_databento/utils.rs.
func schemaCode(s mbin.Schema) string {
	switch s {
	case mbin.Schema_Mbp1:
		return "mbp-1"
	case mbin.Schema_Trades:
		return "trades"
	case mbin.Schema_Tbbo:
		return "tbbo"
	case mbin.Schema_Bbo1S:
		return "bbo-1s"
	case mbin.Schema_Bbo1M:
		return "bbo-1m"
	case mbin.Schema_Ohlcv1S:
		return "ohlcv-1s"
	case mbin.Schema_Ohlcv1M:
		return "ohlcv-1m"
	case mbin.Schema_Ohlcv1H:
		return "ohlcv-1h"
	case mbin.Schema_Ohlcv1D:
		return "ohlcv-1d"
	default:
		return "unknown"
	}
}

// GlbxMdp3 is the only vendor dataset code this module's fixtures and
// registry entries exercise -- CME Globex MDP 3.0, Databento's own
// dataset string for futures.
const GlbxMdp3 = "GLBX.MDP3"

// FileName builds the vendor's raw-download file name:
// "<dataset>_<schema>_<sym1>_<sym2>_..._<startRFC3339>_<endRFC3339>.dbn",
// optionally prefixed "batch_". Grounded on
// original_source/src/pipeline/vendors/v_databento/utils.rs's
// databento_file_name, fixture-tested there and in extract.rs.
func FileName(datasetCode string, schema mbin.Schema, start, end time.Time, symbols []string, batch bool) string {
	prefix := ""
	if batch {
		prefix = "batch_"
	}
	return fmt.Sprintf("%s%s_%s_%s_%s_%s.dbn",
		prefix,
		datasetCode,
		schemaCode(schema),
		strings.Join(symbols, "_"),
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)
}

// MbinFileName builds the pipeline's own MBIN artifact name:
// "<sym1>_<sym2>_..._<schema>_<startRFC3339>_<endRFC3339>.bin" for a
// stream download, or "<shard>_<...>.bin" for one batch shard, shard
// starting at 0. Grounded on original_source/src/pipeline/midas/
// load.rs's test fixture file name, which orders symbols/schema before
// the time range and uses ".bin" -- distinct from the vendor's own
// ".dbn" naming in FileName -- and on stage()'s own shard counter
// (`let mut count = 0; ...; count += 1`), which starts numbering
// batch shards at 0, not 1. batch must be passed explicitly since a
// batch download's first shard (index 0) would otherwise be
// indistinguishable from a stream artifact's un-prefixed name.
func MbinFileName(symbols []string, schema mbin.Schema, start, end time.Time, batch bool, shard int) string {
	base := fmt.Sprintf("%s_%s_%s_%s.bin",
		strings.Join(symbols, "_"),
		schemaCode(schema),
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)
	if !batch {
		return base
	}
	return fmt.Sprintf("%d_%s", shard, base)
}

// ParsedFileName is the decomposed form of a vendor raw-download file
// name, the exact inverse of FileName.
type ParsedFileName struct {
	DatasetCode string
	Schema      mbin.Schema
	Symbols     []string
	Start       time.Time
	End         time.Time
	Batch       bool
}

// ParseFileName decomposes a vendor file name built by FileName, used
// by the download client (findExistingDownload) to recognize an
// already-downloaded raw file under <dir>/databento and skip a
// redundant fetch. RFC3339 timestamps
// are parsed with relvacode/iso8601, the same parser the teacher's
// cmd/dbn-go-hist/main.go uses for its own --start/--end flags.
func ParseFileName(name string) (ParsedFileName, error) {
	base := strings.TrimSuffix(name, ".dbn")
	parts := strings.Split(base, "_")

	var p ParsedFileName
	if len(parts) > 0 && parts[0] == "batch" {
		p.Batch = true
		parts = parts[1:]
	}
	if len(parts) < 5 {
		return ParsedFileName{}, fmt.Errorf("%w: malformed vendor file name %q", mbin.ErrInvalidMbinFile, name)
	}

	p.DatasetCode = parts[0]
	schema, ok := schemaFromCode(parts[1])
	if !ok {
		return ParsedFileName{}, fmt.Errorf("%w: unknown schema code %q", mbin.ErrInvalidMbinFile, parts[1])
	}
	p.Schema = schema

	rest := parts[2:]
	p.Symbols = rest[:len(rest)-2]
	start, err := iso8601.ParseString(rest[len(rest)-2])
	if err != nil {
		return ParsedFileName{}, fmt.Errorf("%w: bad start timestamp: %v", mbin.ErrInvalidMbinFile, err)
	}
	end, err := iso8601.ParseString(rest[len(rest)-1])
	if err != nil {
		return ParsedFileName{}, fmt.Errorf("%w: bad end timestamp: %v", mbin.ErrInvalidMbinFile, err)
	}
	p.Start, p.End = start, end
	return p, nil
}
