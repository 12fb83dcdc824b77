// Package jrnl is the top-level journal API.
//
// It provides atomic operations that are buffered locally and manipulate
// objects via buffers of type *buf.Buf.
//
// The caller uses this interface by beginning an operation Op,
// reading/writing within the operation, and finally committing the buffered
// transaction.
//
// Only writes are made atomic. Reads come from the objects' home locations
// and are cached in the operation on first read, so an operation never sees
// writes that are still waiting in the journal to be installed.
//
// Objects have sizes. Implicit in the code is that there is a static "schema"
// that determines the disk layout: each block has objects of a particular size,
// and all sizes used fit an integer number of objects in a block. This schema
// guarantees that objects never overlap, as long as operations involving an
// addr.Addr use the correct size for that block number.
package jrnl

import (
	"fmt"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/buf"
	"github.com/mit-pdos/vsfs-journal/obj"
	"github.com/mit-pdos/vsfs-journal/util"
	"github.com/mit-pdos/vsfs-journal/wal"
)

// LogBlocks is the maximum number of blocks that can be written in one
// operation
const LogBlocks uint64 = wal.MAXPENDING

// Op is an in-progress journal operation.
//
// Call CommitWait to persist the operation's writes.
// To abort the operation simply stop using it.
type Op struct {
	log  *obj.Log
	hdr  wal.Header  // journal header the operation will append after
	bufs *buf.BufMap // map of bufs read/written by this operation
}

// Begin starts an operation that may write up to reserve bytes of journal.
// It fails with JournalFull, before anything is read, if they do not fit.
func Begin(log *obj.Log, reserve uint64) (*Op, error) {
	hdr, err := log.Reserve(reserve)
	if err != nil {
		return nil, err
	}
	trans := &Op{
		log:  log,
		hdr:  hdr,
		bufs: buf.MkBufMap(),
	}
	util.DPrintf(3, "Begin: %v\n", trans)
	return trans, nil
}

func (op *Op) String() string {
	return fmt.Sprintf("op{used %d, %d bufs}", op.hdr.BytesUsed, len(op.bufs.Bufs()))
}

func (op *Op) ReadBuf(addr addr.Addr, sz uint64) (*buf.Buf, error) {
	b := op.bufs.Lookup(addr)
	if b == nil {
		buf, err := op.log.Load(addr, sz)
		if err != nil {
			return nil, err
		}
		op.bufs.Insert(buf)
		return op.bufs.Lookup(addr), nil
	}
	return b, nil
}

// OverWrite writes an object to addr
func (op *Op) OverWrite(addr addr.Addr, sz uint64, data []byte) {
	var b = op.bufs.Lookup(addr)
	if b == nil {
		b = buf.MkBuf(addr, sz, data)
		b.SetDirty()
		op.bufs.Insert(b)
	} else {
		if sz != b.Sz {
			panic("overwrite")
		}
		b.Data = data
		b.SetDirty()
	}
}

// NDirty reports an upper bound on the number of blocks this operation will
// write when committed.
func (op *Op) NDirty() uint64 {
	return op.bufs.Ndirty()
}

// CommitWait appends the operation's writes to the journal as one
// transaction and waits for them to be durable.
//
// If CommitWait returns an error, the transaction failed and had no logical
// effect. This can happen, for example, if the transaction is too big to fit
// in the on-disk journal.
func (op *Op) CommitWait() error {
	util.DPrintf(3, "Commit %v\n", op)
	hdr, err := op.log.CommitWait(op.hdr, op.bufs.DirtyBufs())
	if err != nil {
		return err
	}
	op.hdr = hdr
	return nil
}
