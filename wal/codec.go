package wal

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

type Update struct {
	Addr  common.Bnum
	Block disk.Block
}

func MkBlockData(bn common.Bnum, blk disk.Block) Update {
	b := Update{Addr: bn, Block: blk}
	return b
}

// Header is the first HDRSIZE bytes of the journal.
type Header struct {
	Magic     uint32
	BytesUsed uint32
}

// MkHeader returns the header of an empty journal.
func MkHeader() Header {
	return Header{Magic: common.JOURNALMAGIC, BytesUsed: uint32(HDRSIZE)}
}

func (h Header) Valid() bool {
	return h.Magic == common.JOURNALMAGIC
}

// Empty reports whether there is nothing staged to install.
func (h Header) Empty() bool {
	return !h.Valid() || uint64(h.BytesUsed) <= HDRSIZE
}

func (h Header) Encode() []byte {
	enc := marshal.NewEnc(HDRSIZE)
	enc.PutInt32(h.Magic)
	enc.PutInt32(h.BytesUsed)
	return enc.Finish()
}

func DecodeHeader(b []byte) Header {
	dec := marshal.NewDec(b)
	magic := dec.GetInt32()
	used := dec.GetInt32()
	return Header{Magic: magic, BytesUsed: used}
}

// RecordHeader is the common prefix of every record. Size covers the whole
// record, header included.
type RecordHeader struct {
	Kind RecKind
	Size uint16
}

func (rh RecordHeader) String() string {
	return fmt.Sprintf("{kind %d size %d}", rh.Kind, rh.Size)
}

// kind and size are consecutive 16-bit fields, which is one 32-bit word with
// the kind in the low half.
func putRecordHeader(enc marshal.Enc, kind RecKind, size uint64) {
	enc.PutInt32(uint32(kind) | uint32(size)<<16)
}

func DecodeRecordHeader(b []byte) RecordHeader {
	dec := marshal.NewDec(b)
	w := dec.GetInt32()
	return RecordHeader{Kind: RecKind(w & 0xFFFF), Size: uint16(w >> 16)}
}

// EncodeData encodes a Data record writing blk to block bn.
func EncodeData(bn common.Bnum, blk disk.Block) []byte {
	enc := marshal.NewEnc(DATARECSZ)
	putRecordHeader(enc, REC_DATA, DATARECSZ)
	enc.PutInt32(uint32(bn))
	data := enc.Finish()
	copy(data[RECHDRSIZE+4:], blk)
	return data
}

func EncodeCommit() []byte {
	enc := marshal.NewEnc(COMMITRECSZ)
	putRecordHeader(enc, REC_COMMIT, COMMITRECSZ)
	return enc.Finish()
}

// decodeData decodes a Data record whose header has already been checked.
func decodeData(rec []byte) Update {
	dec := marshal.NewDec(rec[RECHDRSIZE:])
	bn := common.Bnum(dec.GetInt32())
	return MkBlockData(bn, util.CloneByteSlice(rec[RECHDRSIZE+4:DATARECSZ]))
}

// recordSize is the fixed encoded length of each record kind.
func recordSize(kind RecKind) (uint64, bool) {
	switch kind {
	case REC_DATA:
		return DATARECSZ, true
	case REC_COMMIT:
		return COMMITRECSZ, true
	}
	return 0, false
}

// TxnSize is the journal space a transaction of n blocks takes.
func TxnSize(n uint64) uint64 {
	return n*DATARECSZ + COMMITRECSZ
}
