package wal

import (
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

// Log is the journal region of a disk.
//
// Log keeps no state in memory between calls: every operation starts from
// the header on disk.
type Log struct {
	d      disk.Disk
	region *region
}

// MkLog uses the nblocks blocks starting at start as the journal.
func MkLog(d disk.Disk, start common.Bnum, nblocks uint64) *Log {
	l := &Log{
		d:      d,
		region: &region{d: d, start: start, nblocks: nblocks},
	}
	util.DPrintf(1, "MkLog: blocks [%d, %d) size %d\n", start, start+nblocks, l.Size())
	return l
}

// Size is the capacity of the journal in bytes, header included.
func (l *Log) Size() uint64 {
	return l.region.size()
}

func ioError(op string, err error) error {
	return common.MkError(common.IoError, op, err)
}

func (l *Log) ReadHeader() (Header, error) {
	b, err := l.region.readAt(0, HDRSIZE)
	if err != nil {
		return Header{}, ioError("read journal header", err)
	}
	return DecodeHeader(b), nil
}

func (l *Log) WriteHeader(h Header) error {
	if err := l.region.writeAt(0, h.Encode()); err != nil {
		return ioError("write journal header", err)
	}
	return nil
}

// ReadRecordHeader peeks at the kind and size of the record at off without
// reading its payload.
func (l *Log) ReadRecordHeader(off uint64) (RecordHeader, error) {
	b, err := l.region.readAt(off, RECHDRSIZE)
	if err != nil {
		return RecordHeader{}, ioError("read record header", err)
	}
	return DecodeRecordHeader(b), nil
}

// Init writes the header of an empty journal.
func (l *Log) Init() error {
	return l.WriteHeader(MkHeader())
}

// Reserve loads the header and checks that nbytes more fit in the journal.
// A header with a bad magic, or a bytesUsed inside the header itself, is
// treated as a freshly initialized journal; the fresh header is only
// returned, not written.
func (l *Log) Reserve(nbytes uint64) (Header, error) {
	h, err := l.ReadHeader()
	if err != nil {
		return Header{}, err
	}
	if !h.Valid() || uint64(h.BytesUsed) < HDRSIZE {
		util.DPrintf(1, "Reserve: journal uninitialized (magic %#x used %d)\n",
			h.Magic, h.BytesUsed)
		h = MkHeader()
	}
	if !l.fits(h, nbytes) {
		return Header{}, common.Errorf(common.JournalFull, "reserve",
			"%d bytes used, %d needed, capacity %d", h.BytesUsed, nbytes, l.Size())
	}
	return h, nil
}

func (l *Log) fits(h Header, nbytes uint64) bool {
	used := uint64(h.BytesUsed)
	return !util.SumOverflows(used, nbytes) && used+nbytes <= l.Size()
}

// Free reports the unused bytes left after h.
func (l *Log) Free(h Header) uint64 {
	used := uint64(h.BytesUsed)
	if used > l.Size() {
		return 0
	}
	return l.Size() - used
}

// Append writes txn as Data records followed by a Commit at h.BytesUsed, and
// then persists the advanced header. It returns the new header.
//
// If Append fails, the header on disk is unchanged and the transaction had no
// logical effect.
func (l *Log) Append(h Header, txn []Update) (Header, error) {
	if len(txn) > MAXPENDING {
		return h, common.Errorf(common.JournalFull, "append",
			"%d blocks in one transaction, max %d", len(txn), MAXPENDING)
	}
	if !l.fits(h, TxnSize(uint64(len(txn)))) {
		return h, common.Errorf(common.JournalFull, "append",
			"%d bytes used, %d needed", h.BytesUsed, TxnSize(uint64(len(txn))))
	}
	off := uint64(h.BytesUsed)
	for _, u := range txn {
		util.DPrintf(5, "Append: block %d at journal offset %d\n", u.Addr, off)
		if err := l.region.writeAt(off, EncodeData(u.Addr, u.Block)); err != nil {
			return h, ioError("append data record", err)
		}
		off += DATARECSZ
	}
	if err := l.region.writeAt(off, EncodeCommit()); err != nil {
		return h, ioError("append commit record", err)
	}
	off += COMMITRECSZ

	newh := Header{Magic: common.JOURNALMAGIC, BytesUsed: uint32(off)}
	if err := l.WriteHeader(newh); err != nil {
		return h, err
	}
	util.DPrintf(1, "Append: %d blocks, journal now %d bytes\n", len(txn), off)
	return newh, nil
}
