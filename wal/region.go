package wal

import (
	"fmt"

	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

// region gives byte-offset access to the nblocks blocks starting at start.
type region struct {
	d       disk.Disk
	start   common.Bnum
	nblocks uint64
}

func (r *region) size() uint64 {
	return r.nblocks * disk.BlockSize
}

func (r *region) check(off uint64, n uint64) error {
	if util.SumOverflows(off, n) || off+n > r.size() {
		return fmt.Errorf("journal access [%d, %d) past end %d", off, off+n, r.size())
	}
	return nil
}

// readAt reads n bytes at byte offset off.
func (r *region) readAt(off uint64, n uint64) ([]byte, error) {
	if err := r.check(off, n); err != nil {
		return nil, err
	}
	data := make([]byte, 0, n)
	blk := make(disk.Block, disk.BlockSize)
	for pos := off; pos < off+n; {
		i := pos / disk.BlockSize
		boff := pos % disk.BlockSize
		if err := r.d.ReadTo(r.start+i, blk); err != nil {
			return nil, err
		}
		m := util.Min(disk.BlockSize-boff, off+n-pos)
		data = append(data, blk[boff:boff+m]...)
		pos += m
	}
	return data, nil
}

// writeAt writes data at byte offset off. Partially covered blocks are read,
// patched and written back; every block write is followed by a barrier.
func (r *region) writeAt(off uint64, data []byte) error {
	n := uint64(len(data))
	if err := r.check(off, n); err != nil {
		return err
	}
	for pos := off; pos < off+n; {
		i := pos / disk.BlockSize
		boff := pos % disk.BlockSize
		m := util.Min(disk.BlockSize-boff, off+n-pos)
		var blk disk.Block
		if boff == 0 && m == disk.BlockSize {
			blk = data[pos-off : pos-off+m]
		} else {
			b, err := r.d.Read(r.start + i)
			if err != nil {
				return err
			}
			copy(b[boff:], data[pos-off:pos-off+m])
			blk = b
		}
		util.DPrintf(5, "writeAt: journal block %d [%d, %d)\n", i, boff, boff+m)
		if err := disk.WriteSync(r.d, r.start+i, blk); err != nil {
			return err
		}
		pos += m
	}
	return nil
}
