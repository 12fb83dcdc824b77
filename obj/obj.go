// Package obj installs objects from modified buffers into their disk blocks
// and writes the blocks to the journal as one transaction.
package obj

import (
	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/buf"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
	"github.com/mit-pdos/vsfs-journal/wal"
)

// Log mediates access to object loading and installation.
//
// Objects are always loaded from their home locations; writes staged in the
// journal are not visible until they are installed.
type Log struct {
	d   disk.Disk
	log *wal.Log
}

func MkLog(d disk.Disk, log *wal.Log) *Log {
	return &Log{d: d, log: log}
}

// Read a disk object into buf
func (l *Log) Load(addr addr.Addr, sz uint64) (*buf.Buf, error) {
	blk, err := l.d.Read(addr.Blkno)
	if err != nil {
		return nil, common.MkError(common.IoError, "load", err)
	}
	b := buf.MkBufLoad(addr, sz, blk)
	return b, nil
}

// Reserve checks that a transaction of up to nbytes fits in the journal and
// returns the header to append after.
func (l *Log) Reserve(nbytes uint64) (wal.Header, error) {
	return l.log.Reserve(nbytes)
}

// Installs bufs into their blocks and returns the blocks, in the order the
// bufs first touch them. A buf may only partially update a disk block and
// several bufs may apply to the same disk block.
func (l *Log) installBufsMap(bufs []*buf.Buf) (map[common.Bnum]disk.Block, []common.Bnum, error) {
	blks := make(map[common.Bnum]disk.Block)
	var order []common.Bnum

	for _, b := range bufs {
		blkno := b.Addr.Blkno
		if _, ok := blks[blkno]; !ok {
			order = append(order, blkno)
		}
		if b.Sz == common.NBITBLOCK {
			blks[blkno] = b.Data
			continue
		}
		blk, ok := blks[blkno]
		if !ok {
			util.DPrintf(4, "installBufsMap: Reading %v\n", blkno)
			var err error
			blk, err = l.d.Read(blkno)
			if err != nil {
				return nil, nil, common.MkError(common.IoError, "install buf", err)
			}
			blks[blkno] = blk
		}
		if err := b.Install(blk); err != nil {
			return nil, nil, err
		}
	}
	util.DPrintf(3, "installBufsMap: %v\n", order)
	return blks, order, nil
}

func (l *Log) installBufs(bufs []*buf.Buf) ([]wal.Update, error) {
	bufmap, order, err := l.installBufsMap(bufs)
	if err != nil {
		return nil, err
	}
	blks := make([]wal.Update, 0, len(order))
	for _, blkno := range order {
		blks = append(blks, wal.MkBlockData(blkno, bufmap[blkno]))
	}
	return blks, nil
}

// CommitWait appends the dirty bufs of a transaction to the journal after h
// and waits for the records and the new header to be durable.
//
// If CommitWait returns an error, the journal header is unchanged and the
// transaction had no logical effect.
func (l *Log) CommitWait(h wal.Header, bufs []*buf.Buf) (wal.Header, error) {
	if len(bufs) == 0 {
		util.DPrintf(5, "commit read-only trans\n")
		return h, nil
	}
	blks, err := l.installBufs(bufs)
	if err != nil {
		return h, err
	}
	util.DPrintf(3, "CommitWait: %v blocks\n", len(blks))
	return l.log.Append(h, blks)
}
