// Copyright (c) 2024 Neomantra Corp

package mbin

import "encoding/binary"

///////////////////////////////////////////////////////////////////////////////
// RHeader

// RHeader is the 16-byte header prefixing every MBIN record. Length is
// in 4-byte units and includes the header itself, so a decoder can
// read `4*Length` bytes to recover the whole record without knowing
// its schema in advance. Reserved pads the header to a 4-byte-aligned
// 16 bytes; this format has no per-record publisher concept (a single
// MBIN file is always single-vendor), so the reserved bytes simply
// keep the teacher's word-alignment trick without giving it a name.
type RHeader struct {
	Length       uint8
	RType        RType
	Reserved     uint16
	InstrumentID uint32
	TsEvent      uint64
}

const RHeader_Size = 16

func (h RHeader) Header() RHeader { return h }

func (h *RHeader) fillRaw(b []byte) error {
	if len(b) < RHeader_Size {
		return wrapf(ErrHeaderTooShort, "got %d bytes", len(b))
	}
	h.Length = b[0]
	h.RType = RType(b[1])
	h.Reserved = binary.LittleEndian.Uint16(b[2:4])
	h.InstrumentID = binary.LittleEndian.Uint32(b[4:8])
	h.TsEvent = binary.LittleEndian.Uint64(b[8:16])
	return nil
}

func (h RHeader) encode(b []byte) {
	b[0] = h.Length
	b[1] = byte(h.RType)
	binary.LittleEndian.PutUint16(b[2:4], h.Reserved)
	binary.LittleEndian.PutUint32(b[4:8], h.InstrumentID)
	binary.LittleEndian.PutUint64(b[8:16], h.TsEvent)
}

///////////////////////////////////////////////////////////////////////////////
// BidAskPair

// BidAskPair is one level of a market-by-price book.
type BidAskPair struct {
	BidPx int64
	AskPx int64
	BidSz uint32
	AskSz uint32
	BidCt uint32
	AskCt uint32
}

const BidAskPair_Size = 32

func (p *BidAskPair) fillRaw(b []byte) {
	p.BidPx = int64(binary.LittleEndian.Uint64(b[0:8]))
	p.AskPx = int64(binary.LittleEndian.Uint64(b[8:16]))
	p.BidSz = binary.LittleEndian.Uint32(b[16:20])
	p.AskSz = binary.LittleEndian.Uint32(b[20:24])
	p.BidCt = binary.LittleEndian.Uint32(b[24:28])
	p.AskCt = binary.LittleEndian.Uint32(b[28:32])
}

func (p BidAskPair) encode(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(p.BidPx))
	binary.LittleEndian.PutUint64(b[8:16], uint64(p.AskPx))
	binary.LittleEndian.PutUint32(b[16:20], p.BidSz)
	binary.LittleEndian.PutUint32(b[20:24], p.AskSz)
	binary.LittleEndian.PutUint32(b[24:28], p.BidCt)
	binary.LittleEndian.PutUint32(b[28:32], p.AskCt)
}

///////////////////////////////////////////////////////////////////////////////
// Record / RecordPtr

// Record is implemented by every concrete MBIN record type.
type Record interface {
	Header() RHeader
}

// RecordPtr is the pointer-receiver constraint used by the generic
// decode helpers in codec.go. Go forbids generic methods, so decoding
// is expressed as free functions parameterized by [R, RP] instead, the
// same shape the teacher's dbn_scanner.go uses for DbnScannerDecode.
type RecordPtr[T any] interface {
	*T
	Record
	RType() RType
	RSize() uint8
	FillRaw([]byte) error
}

///////////////////////////////////////////////////////////////////////////////
// Mbp1Record - the core schema this pipeline transforms

// Mbp1Record is a market-by-price snapshot at book depth 1: one
// top-of-book bid/ask pair plus the trade-event fields that produced
// it. Discriminator disambiguates otherwise-structurally-equal
// records sharing TsRecv (see mbin/ingest.Transform).
type Mbp1Record struct {
	Hd            RHeader
	Price         int64
	Size          uint32
	Action        Action
	Side          Side
	Depth         uint8
	Flags         uint8
	TsRecv        uint64
	TsInDelta     int32
	Sequence      uint32
	Discriminator uint32
	Levels        [1]BidAskPair
}

const (
	Mbp1Record_BodySize = 68
	Mbp1Record_Size     = RHeader_Size + Mbp1Record_BodySize // 84, 21 words
)

func (r Mbp1Record) Header() RHeader { return r.Hd }
func (r Mbp1Record) RType() RType    { return RType_Mbp1 }
func (r Mbp1Record) RSize() uint8    { return Mbp1Record_Size / 4 }

func (r *Mbp1Record) FillRaw(b []byte) error {
	if len(b) < Mbp1Record_Size {
		return unexpectedBytesError(len(b), Mbp1Record_Size)
	}
	if err := r.Hd.fillRaw(b); err != nil {
		return err
	}
	r.Price = int64(binary.LittleEndian.Uint64(b[16:24]))
	r.Size = binary.LittleEndian.Uint32(b[24:28])
	r.Action = Action(b[28])
	r.Side = Side(b[29])
	r.Depth = b[30]
	r.Flags = b[31]
	r.TsRecv = binary.LittleEndian.Uint64(b[32:40])
	r.TsInDelta = int32(binary.LittleEndian.Uint32(b[40:44]))
	r.Sequence = binary.LittleEndian.Uint32(b[44:48])
	r.Discriminator = binary.LittleEndian.Uint32(b[48:52])
	r.Levels[0].fillRaw(b[52:84])
	return nil
}

func (r Mbp1Record) Encode() []byte {
	b := make([]byte, Mbp1Record_Size)
	r.Hd.encode(b)
	binary.LittleEndian.PutUint64(b[16:24], uint64(r.Price))
	binary.LittleEndian.PutUint32(b[24:28], r.Size)
	b[28] = byte(r.Action)
	b[29] = byte(r.Side)
	b[30] = r.Depth
	b[31] = r.Flags
	binary.LittleEndian.PutUint64(b[32:40], r.TsRecv)
	binary.LittleEndian.PutUint32(b[40:44], uint32(r.TsInDelta))
	binary.LittleEndian.PutUint32(b[44:48], r.Sequence)
	binary.LittleEndian.PutUint32(b[48:52], r.Discriminator)
	r.Levels[0].encode(b[52:84])
	return b
}

// WithoutDiscriminator returns a copy with Discriminator zeroed, used
// as the dedup/collision-count map key by ingest.Transform, which
// lives outside this package and needs the zeroed copy to detect
// structurally-equal records before assigning a fresh discriminator.
func (r Mbp1Record) WithoutDiscriminator() Mbp1Record {
	r.Discriminator = 0
	return r
}

///////////////////////////////////////////////////////////////////////////////
// TradeRecord - Trades schema (book depth 0)

// TradeRecord is a single trade event, no book level attached.
type TradeRecord struct {
	Hd        RHeader
	TsRecv    uint64
	Price     int64
	Size      uint32
	Action    Action
	Side      Side
	Flags     uint8
	Reserved  uint8
	TsInDelta int32
	Sequence  uint32
}

const (
	TradeRecord_BodySize = 32
	TradeRecord_Size     = RHeader_Size + TradeRecord_BodySize // 48, 12 words
)

func (r TradeRecord) Header() RHeader { return r.Hd }
func (r TradeRecord) RType() RType    { return RType_Trades }
func (r TradeRecord) RSize() uint8    { return TradeRecord_Size / 4 }

func (r *TradeRecord) FillRaw(b []byte) error {
	if len(b) < TradeRecord_Size {
		return unexpectedBytesError(len(b), TradeRecord_Size)
	}
	if err := r.Hd.fillRaw(b); err != nil {
		return err
	}
	r.TsRecv = binary.LittleEndian.Uint64(b[16:24])
	r.Price = int64(binary.LittleEndian.Uint64(b[24:32]))
	r.Size = binary.LittleEndian.Uint32(b[32:36])
	r.Action = Action(b[36])
	r.Side = Side(b[37])
	r.Flags = b[38]
	r.Reserved = b[39]
	r.TsInDelta = int32(binary.LittleEndian.Uint32(b[40:44]))
	r.Sequence = binary.LittleEndian.Uint32(b[44:48])
	return nil
}

func (r TradeRecord) Encode() []byte {
	b := make([]byte, TradeRecord_Size)
	r.Hd.encode(b)
	binary.LittleEndian.PutUint64(b[16:24], r.TsRecv)
	binary.LittleEndian.PutUint64(b[24:32], uint64(r.Price))
	binary.LittleEndian.PutUint32(b[32:36], r.Size)
	b[36] = byte(r.Action)
	b[37] = byte(r.Side)
	b[38] = r.Flags
	b[39] = r.Reserved
	binary.LittleEndian.PutUint32(b[40:44], uint32(r.TsInDelta))
	binary.LittleEndian.PutUint32(b[44:48], r.Sequence)
	return b
}

///////////////////////////////////////////////////////////////////////////////
// BboRecord - Bbo-1s/1m schema

// BboRecord is a best-bid-offer snapshot taken at a fixed cadence.
type BboRecord struct {
	Hd       RHeader
	TsRecv   uint64
	Price    int64
	Size     uint32
	Side     Side
	Flags    uint8
	Reserved uint16
	Sequence uint32
	Level    BidAskPair
}

const (
	BboRecord_BodySize = 60
	BboRecord_Size     = RHeader_Size + BboRecord_BodySize // 76, 19 words
)

func (r BboRecord) Header() RHeader { return r.Hd }
func (r BboRecord) RType() RType    { return RType_Bbo1S }
func (r BboRecord) RSize() uint8    { return BboRecord_Size / 4 }

func (r *BboRecord) FillRaw(b []byte) error {
	if len(b) < BboRecord_Size {
		return unexpectedBytesError(len(b), BboRecord_Size)
	}
	if err := r.Hd.fillRaw(b); err != nil {
		return err
	}
	r.TsRecv = binary.LittleEndian.Uint64(b[16:24])
	r.Price = int64(binary.LittleEndian.Uint64(b[24:32]))
	r.Size = binary.LittleEndian.Uint32(b[32:36])
	r.Side = Side(b[36])
	r.Flags = b[37]
	r.Reserved = binary.LittleEndian.Uint16(b[38:40])
	r.Sequence = binary.LittleEndian.Uint32(b[40:44])
	r.Level.fillRaw(b[44:76])
	return nil
}

func (r BboRecord) Encode() []byte {
	b := make([]byte, BboRecord_Size)
	r.Hd.encode(b)
	binary.LittleEndian.PutUint64(b[16:24], r.TsRecv)
	binary.LittleEndian.PutUint64(b[24:32], uint64(r.Price))
	binary.LittleEndian.PutUint32(b[32:36], r.Size)
	b[36] = byte(r.Side)
	b[37] = r.Flags
	binary.LittleEndian.PutUint16(b[38:40], r.Reserved)
	binary.LittleEndian.PutUint32(b[40:44], r.Sequence)
	r.Level.encode(b[44:76])
	return b
}

///////////////////////////////////////////////////////////////////////////////
// OhlcvRecord - Ohlcv-1s/1m/1h/1d schemas

// OhlcvRecord is an open/high/low/close/volume candle.
type OhlcvRecord struct {
	Hd     RHeader
	Open   int64
	High   int64
	Low    int64
	Close  int64
	Volume uint64
}

const (
	OhlcvRecord_BodySize = 40
	OhlcvRecord_Size     = RHeader_Size + OhlcvRecord_BodySize // 56, 14 words
)

func (r OhlcvRecord) Header() RHeader { return r.Hd }
func (r OhlcvRecord) RType() RType    { return RType_Ohlcv1S }
func (r OhlcvRecord) RSize() uint8    { return OhlcvRecord_Size / 4 }

func (r *OhlcvRecord) FillRaw(b []byte) error {
	if len(b) < OhlcvRecord_Size {
		return unexpectedBytesError(len(b), OhlcvRecord_Size)
	}
	if err := r.Hd.fillRaw(b); err != nil {
		return err
	}
	r.Open = int64(binary.LittleEndian.Uint64(b[16:24]))
	r.High = int64(binary.LittleEndian.Uint64(b[24:32]))
	r.Low = int64(binary.LittleEndian.Uint64(b[32:40]))
	r.Close = int64(binary.LittleEndian.Uint64(b[40:48]))
	r.Volume = binary.LittleEndian.Uint64(b[48:56])
	return nil
}

func (r OhlcvRecord) Encode() []byte {
	b := make([]byte, OhlcvRecord_Size)
	r.Hd.encode(b)
	binary.LittleEndian.PutUint64(b[16:24], uint64(r.Open))
	binary.LittleEndian.PutUint64(b[24:32], uint64(r.High))
	binary.LittleEndian.PutUint64(b[32:40], uint64(r.Low))
	binary.LittleEndian.PutUint64(b[40:48], uint64(r.Close))
	binary.LittleEndian.PutUint64(b[48:56], r.Volume)
	return b
}

///////////////////////////////////////////////////////////////////////////////
// RecordEnum - the owned sum type over all schema variants

// RecordEnum is the owned, structurally-comparable sum type decoding
// yields (see mbin/codec.go). Only the field matching RType is
// populated; the rest are zero. Because every field is itself a
// plain struct of fixed-width primitives, RecordEnum is `comparable`
// and can be used directly as a Go map key -- this is how the
// duplicate scan's tally (FindDuplicates) gets both equality and
// hashing, and how the comparator matches records within a ts_event
// bucket (Compare), without a bespoke Hash() method.
type RecordEnum struct {
	RType RType
	Mbp1  Mbp1Record
	Trade TradeRecord
	Bbo   BboRecord
	Ohlcv OhlcvRecord
}

func (e RecordEnum) Header() RHeader {
	switch e.RType {
	case RType_Mbp1:
		return e.Mbp1.Hd
	case RType_Trades:
		return e.Trade.Hd
	case RType_Bbo1S, RType_Bbo1M:
		return e.Bbo.Hd
	case RType_Ohlcv1S, RType_Ohlcv1M, RType_Ohlcv1H, RType_Ohlcv1D:
		return e.Ohlcv.Hd
	default:
		return RHeader{}
	}
}

// Encode returns the wire bytes of the populated variant.
func (e RecordEnum) Encode() []byte {
	switch e.RType {
	case RType_Mbp1:
		return e.Mbp1.Encode()
	case RType_Trades:
		return e.Trade.Encode()
	case RType_Bbo1S, RType_Bbo1M:
		return e.Bbo.Encode()
	case RType_Ohlcv1S, RType_Ohlcv1M, RType_Ohlcv1H, RType_Ohlcv1D:
		return e.Ohlcv.Encode()
	default:
		return nil
	}
}

// decodeRecordEnum decodes a single record's raw bytes (as sliced by
// the caller using the header's Length field) into an owned
// RecordEnum.
func decodeRecordEnum(rtype RType, b []byte) (RecordEnum, error) {
	switch rtype {
	case RType_Mbp1:
		var r Mbp1Record
		if err := r.FillRaw(b); err != nil {
			return RecordEnum{}, err
		}
		return RecordEnum{RType: RType_Mbp1, Mbp1: r}, nil
	case RType_Trades:
		var r TradeRecord
		if err := r.FillRaw(b); err != nil {
			return RecordEnum{}, err
		}
		return RecordEnum{RType: RType_Trades, Trade: r}, nil
	case RType_Bbo1S, RType_Bbo1M:
		var r BboRecord
		if err := r.FillRaw(b); err != nil {
			return RecordEnum{}, err
		}
		return RecordEnum{RType: rtype, Bbo: r}, nil
	case RType_Ohlcv1S, RType_Ohlcv1M, RType_Ohlcv1H, RType_Ohlcv1D:
		var r OhlcvRecord
		if err := r.FillRaw(b); err != nil {
			return RecordEnum{}, err
		}
		return RecordEnum{RType: rtype, Ohlcv: r}, nil
	default:
		return RecordEnum{}, unexpectedRTypeError(rtype, RType_Unknown)
	}
}
