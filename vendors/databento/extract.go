// Copyright (c) 2024 Neomantra Corp

package databento

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/midas-systems/mbin"
)

// vendorHeaderSize is the 16-byte record header every vendor record
// shares with MBIN's RHeader, except the 2-byte field in position 2-4
// is a PublisherID rather than MBIN's Reserved -- the vendor file
// multiplexes many publishers, an MBIN artifact is always one vendor.
const vendorHeaderSize = 16

// Mbp1 is the vendor's wire-shaped MBP-1 record: 80 bytes, the public
// Databento MBP-1 schema layout (header 16 + 64-byte body). It lacks
// the Discriminator field mbin.Mbp1Record carries -- that is assigned
// by the transform (vendors/../ingest.Transform), not present on the
// wire.
type Mbp1 struct {
	PublisherID  uint16
	InstrumentID uint32
	TsEvent      uint64
	Price        int64
	Size         uint32
	Action       byte
	Side         byte
	Flags        byte
	Depth        byte
	TsRecv       uint64
	TsInDelta    int32
	Sequence     uint32
	Level        mbin.BidAskPair
}

// Mbp1Size is the wire size of a vendor MBP-1 record.
const Mbp1Size = vendorHeaderSize + 64

func decodeMbp1(b []byte) (Mbp1, error) {
	if len(b) < Mbp1Size {
		return Mbp1{}, mbin.ErrMalformedRecord
	}
	var r Mbp1
	r.PublisherID = binary.LittleEndian.Uint16(b[2:4])
	r.InstrumentID = binary.LittleEndian.Uint32(b[4:8])
	r.TsEvent = binary.LittleEndian.Uint64(b[8:16])
	body := b[vendorHeaderSize:]
	r.Price = int64(binary.LittleEndian.Uint64(body[0:8]))
	r.Size = binary.LittleEndian.Uint32(body[8:12])
	r.Action = body[12]
	r.Side = body[13]
	r.Flags = body[14]
	r.Depth = body[15]
	r.TsRecv = binary.LittleEndian.Uint64(body[16:24])
	r.TsInDelta = int32(binary.LittleEndian.Uint32(body[24:28]))
	r.Sequence = binary.LittleEndian.Uint32(body[28:32])
	r.Level.BidPx = int64(binary.LittleEndian.Uint64(body[32:40]))
	r.Level.AskPx = int64(binary.LittleEndian.Uint64(body[40:48]))
	r.Level.BidSz = binary.LittleEndian.Uint32(body[48:52])
	r.Level.AskSz = binary.LittleEndian.Uint32(body[52:56])
	r.Level.BidCt = binary.LittleEndian.Uint32(body[56:60])
	r.Level.AskCt = binary.LittleEndian.Uint32(body[60:64])
	return r, nil
}

// Extractor streams MBP-1 records out of one zstd-compressed vendor
// file, exposing the flattened vendor-id -> ticker table from its
// embedded metadata. Grounded on the teacher's compressed_io.go for
// the zstd-wrapping idiom and original_source's extract.rs for the
// two responsibilities (symbol map + record stream).
type Extractor struct {
	file      *os.File
	zr        *zstd.Decoder
	br        *bufio.Reader
	metadata  *Metadata
	symbolMap mbin.SymbolMap
	lastErr   error
}

// Open opens path, which must be a zstd-compressed vendor file, and
// reads its metadata header immediately. Open/frame failure is
// reported as ExtractError, matching SPEC_FULL §4.3; the extractor
// does not retry.
func Open(path string) (*Extractor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mbin.ErrExtractFailed
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, mbin.ErrExtractFailed
	}
	br := bufio.NewReaderSize(zr, mbin.DEFAULT_DECODE_BUFFER_SIZE)
	md, err := readMetadata(br)
	if err != nil {
		zr.Close()
		f.Close()
		return nil, mbin.ErrExtractFailed
	}
	return &Extractor{
		file:      f,
		zr:        zr,
		br:        br,
		metadata:  md,
		symbolMap: flattenSymbolMap(md),
	}, nil
}

// flattenSymbolMap builds a vendor-id -> ticker table from the DBN
// metadata's mapping intervals, grounded directly on extract.rs's
// symbol_map: for each raw (continuous) symbol, each resolved interval
// carries the vendor's numeric instrument id as a decimal string --
// the InstrumentId stype-out convention -- which this flattens to a
// uint32 key against the continuous ticker.
func flattenSymbolMap(md *Metadata) mbin.SymbolMap {
	out := make(mbin.SymbolMap)
	for _, mapping := range md.Mappings {
		for _, interval := range mapping.Intervals {
			id, err := strconv.ParseUint(interval.Symbol, 10, 32)
			if err != nil {
				continue
			}
			out[uint32(id)] = mapping.RawSymbol
		}
	}
	return out
}

// Metadata returns the vendor file's metadata header.
func (e *Extractor) Metadata() *Metadata { return e.metadata }

// SymbolMap returns the flattened vendor-id -> ticker table.
func (e *Extractor) SymbolMap() mbin.SymbolMap { return e.symbolMap }

// Close releases the underlying zstd reader and file handle.
func (e *Extractor) Close() error {
	e.zr.Close()
	return e.file.Close()
}

// Error returns the error that stopped the last Next(), or nil on a
// clean EOF.
func (e *Extractor) Error() error { return e.lastErr }

// Next reads and decodes the next MBP-1 record. Returns false on EOF
// or error; call Error() to distinguish the two.
func (e *Extractor) Next() (Mbp1, bool) {
	lenByte, err := e.br.ReadByte()
	if err != nil {
		if err != io.EOF {
			e.lastErr = err
		}
		return Mbp1{}, false
	}
	if lenByte == 0 {
		e.lastErr = mbin.ErrMalformedRecord
		return Mbp1{}, false
	}
	mustRead := 4 * int(lenByte)
	buf := make([]byte, mustRead)
	buf[0] = lenByte
	if _, err := io.ReadFull(e.br, buf[1:]); err != nil {
		e.lastErr = err
		return Mbp1{}, false
	}
	rec, err := decodeMbp1(buf)
	if err != nil {
		e.lastErr = err
		return Mbp1{}, false
	}
	return rec, true
}

// WalkShards returns every ".zst" file under dir, recursively.
// ErrNoShardsFound if none are found. Grounded on extract.rs's
// read_dbn_batch_dir (WalkDir + extension filter).
func WalkShards(dir string) ([]string, error) {
	var shards []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".zst") {
			shards = append(shards, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, mbin.ErrNoShardsFound
	}
	return shards, nil
}
