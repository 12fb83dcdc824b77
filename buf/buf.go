// buf manages disk objects (whole blocks, inodes, bitmap bits) that are
// packed into disk blocks.
package buf

import (
	"fmt"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

// A Buf is a write to a disk object (inode, a bitmap bit, or disk block)
type Buf struct {
	Addr  addr.Addr
	Sz    uint64 // number of bits
	Data  []byte
	dirty bool // has this block been written to?
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	b := &Buf{
		Addr:  addr,
		Sz:    sz,
		Data:  data,
		dirty: false,
	}
	return b
}

// Load the bits of a disk block into a new buf, as specified by addr.
//
// The buf's Data aliases blk, so writes through the buf are visible in blk.
func MkBufLoad(addr addr.Addr, sz uint64, blk disk.Block) *Buf {
	bytefirst := addr.Off / 8
	bytelast := (addr.Off + sz - 1) / 8
	data := blk[bytefirst : bytelast+1]
	b := &Buf{
		Addr:  addr,
		Sz:    sz,
		Data:  data,
		dirty: false,
	}
	return b
}

// Install 1 bit from src into dst, at offset bit. return new dst.
func installOneBit(src byte, dst byte, bit uint64) byte {
	var new byte = dst
	if src&(1<<bit) != dst&(1<<bit) {
		if src&(1<<bit) == 0 {
			// dst is 1, but should be 0
			new = new & ^(1 << bit)
		} else {
			// dst is 0, but should be 1
			new = new | (1 << bit)
		}
	}
	return new
}

// Install bit from src to dst, at dstoff in destination. dstoff is in bits.
func installBit(src []byte, dst []byte, dstoff uint64) {
	dstbyte := dstoff / 8
	dst[dstbyte] = installOneBit(src[0], dst[dstbyte], dstoff%8)
}

// Install bytes from src to dst.
func installBytes(src []byte, dst []byte, dstoff uint64, nbit uint64) {
	sz := nbit / 8
	copy(dst[dstoff/8:], src[:sz])
}

// Install the bits from buf into blk.  Two cases: a bit or a byte-aligned
// object (inode, directory entry, block)
func (buf *Buf) Install(blk disk.Block) error {
	util.DPrintf(5, "%v: install\n", buf.Addr)
	if buf.Sz == 1 {
		installBit(buf.Data, blk, buf.Addr.Off)
	} else if buf.Sz%8 == 0 && buf.Addr.Off%8 == 0 {
		installBytes(buf.Data, blk, buf.Addr.Off, buf.Sz)
	} else {
		return fmt.Errorf("install: unsupported object %v size %d", buf.Addr, buf.Sz)
	}
	return nil
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}

// WriteDirect writes buf straight to its home location, bypassing any
// journal. Sub-block objects are merged into the block read from d.
func (buf *Buf) WriteDirect(d disk.Disk) error {
	buf.SetDirty()
	if buf.Sz == disk.BlockSize*8 {
		return disk.WriteSync(d, uint64(buf.Addr.Blkno), buf.Data)
	}
	blk, err := d.Read(uint64(buf.Addr.Blkno))
	if err != nil {
		return err
	}
	if err := buf.Install(blk); err != nil {
		return err
	}
	return disk.WriteSync(d, uint64(buf.Addr.Blkno), blk)
}
