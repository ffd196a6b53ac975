// Copyright (c) 2024 Neomantra Corp

package mbin

import (
	"bufio"
	"io"
)

// DEFAULT_DECODE_BUFFER_SIZE sizes the buffered reader wrapping the
// underlying file/network stream.
const DEFAULT_DECODE_BUFFER_SIZE = 16 * 1024

///////////////////////////////////////////////////////////////////////////////
// MbinScanner - the "async" streaming decoder (see SPEC_FULL.md §4.2)

// MbinScanner decodes a sequence of record references from a buffered
// reader. Go has no native async/await; the suspension points named
// in SPEC_FULL.md §5 (file reads) are realized as the plain blocking
// Next()/decode-current-record pair below, exactly the shape of the
// teacher's DbnScanner. The metadata prefix is consumed once by
// NewMbinScanner and never re-observed by Next -- this is how append
// mode is tolerated: Next only ever sees record blocks.
type MbinScanner struct {
	r          *bufio.Reader
	metadata   *Metadata
	lastError  error
	lastRecord []byte
	lastHeader RHeader
}

// NewMbinScanner reads the metadata prefix immediately and returns a
// scanner positioned at the first record block.
func NewMbinScanner(r io.Reader) (*MbinScanner, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, DEFAULT_DECODE_BUFFER_SIZE)
	}
	md, err := ReadMetadata(br)
	if err != nil {
		return nil, err
	}
	return &MbinScanner{r: br, metadata: md}, nil
}

// Metadata returns the prefix observed when the scanner was opened.
func (s *MbinScanner) Metadata() *Metadata { return s.metadata }

// Error returns the error that caused the last Next() to return false,
// or nil if Next returned false solely due to a clean EOF.
func (s *MbinScanner) Error() error { return s.lastError }

// Next reads the next record block's header and body. Returns false
// on EOF or error; call Error() to distinguish the two.
func (s *MbinScanner) Next() bool {
	lenByte, err := s.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			s.lastError = err
		}
		return false
	}
	recordLen := int(lenByte)
	if recordLen == 0 {
		s.lastError = ErrMalformedRecord
		return false
	}
	mustRead := 4 * recordLen
	buf := make([]byte, mustRead)
	buf[0] = lenByte
	if _, err := io.ReadFull(s.r, buf[1:]); err != nil {
		s.lastError = err
		return false
	}
	if err := s.lastHeader.fillRaw(buf); err != nil {
		s.lastError = err
		return false
	}
	s.lastRecord = buf
	return true
}

// GetLastHeader returns the header of the most recently scanned
// record.
func (s *MbinScanner) GetLastHeader() RHeader { return s.lastHeader }

// GetLastRecord returns the raw bytes of the most recently scanned
// record. Valid only until the next call to Next().
func (s *MbinScanner) GetLastRecord() []byte { return s.lastRecord }

// Decode converts the current record into an owned RecordEnum.
func (s *MbinScanner) Decode() (RecordEnum, error) {
	if s.lastRecord == nil {
		return RecordEnum{}, ErrNoRecord
	}
	return decodeRecordEnum(s.lastHeader.RType, s.lastRecord)
}

// MbinScannerDecode decodes the current record as type R, checking
// that its RType matches. A plain function, not a method, because Go
// forbids generic methods -- mirrors the teacher's DbnScannerDecode.
func MbinScannerDecode[R Record, RP RecordPtr[R]](s *MbinScanner) (*R, error) {
	if s.lastRecord == nil {
		return nil, ErrNoRecord
	}
	var rp RP = new(R)
	if s.lastHeader.RType != rp.RType() {
		return nil, unexpectedRTypeError(s.lastHeader.RType, rp.RType())
	}
	if err := rp.FillRaw(s.lastRecord); err != nil {
		return nil, err
	}
	return rp, nil
}

///////////////////////////////////////////////////////////////////////////////
// Slice helpers

// ReadMbinToSlice reads every record from r, typed as R, until EOF.
// Mirrors the teacher's ReadDBNToSlice.
func ReadMbinToSlice[R Record, RP RecordPtr[R]](r io.Reader) ([]R, *Metadata, error) {
	scanner, err := NewMbinScanner(r)
	if err != nil {
		return nil, nil, err
	}
	records := make([]R, 0)
	for scanner.Next() {
		rp, err := MbinScannerDecode[R, RP](scanner)
		if err != nil {
			return records, scanner.Metadata(), err
		}
		records = append(records, *rp)
	}
	return records, scanner.Metadata(), scanner.Error()
}

// ReadMbinToEnums reads every record from r into owned RecordEnum
// values, regardless of schema. Used by the comparator and duplicate
// scan (mbin/compare.go), which must handle a mixed-schema stream.
func ReadMbinToEnums(r io.Reader) ([]RecordEnum, *Metadata, error) {
	scanner, err := NewMbinScanner(r)
	if err != nil {
		return nil, nil, err
	}
	records := make([]RecordEnum, 0)
	for scanner.Next() {
		e, err := scanner.Decode()
		if err != nil {
			return records, scanner.Metadata(), err
		}
		records = append(records, e)
	}
	return records, scanner.Metadata(), scanner.Error()
}

///////////////////////////////////////////////////////////////////////////////
// Encoding

// WriteMetadata writes the metadata prefix. Called exactly once, when
// an MBIN artifact is first created.
func WriteMetadata(w io.Writer, md *Metadata) error {
	return md.encode(w)
}

// EncodeRecords writes a contiguous block of records in append-mode
// framing: no padding beyond each record's own length, self-describing
// via its header. Never fails mid-sequence except on an underlying
// I/O error, in which case the caller must delete the now-poisoned
// output file (in mbin/ingest, Transform returns the error and its
// caller stageOne removes the file) -- EncodeRecords registers no
// cleanup of its own.
func EncodeRecords(w io.Writer, records []RecordEnum) error {
	for _, rec := range records {
		if _, err := w.Write(rec.Encode()); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetadataAndRecords writes a brand-new MBIN artifact: the
// metadata prefix followed by every record, in order.
func WriteMetadataAndRecords(w io.Writer, md *Metadata, records []RecordEnum) error {
	if err := WriteMetadata(w, md); err != nil {
		return err
	}
	return EncodeRecords(w, records)
}
