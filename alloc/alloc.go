package alloc

import (
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

// Alloc uses a one-block bit map to allocate numbers in [1, max). Bit n of
// the map is bit n%8 of byte n/8; a set bit means n is in use. Number 0 is
// never handed out.
type Alloc struct {
	bitmap disk.Block
	max    uint64
}

// MkAlloc allocates out of bitmap in place; callers journal the block
// afterwards.
func MkAlloc(bitmap disk.Block, max uint64) *Alloc {
	if max > common.NBITBLOCK {
		max = common.NBITBLOCK
	}
	return &Alloc{bitmap: bitmap, max: max}
}

// MkMaxAlloc returns an allocator over a fresh, empty bit map.
func MkMaxAlloc(max uint64) *Alloc {
	return MkAlloc(make(disk.Block, disk.BlockSize), max)
}

func (a *Alloc) Bitmap() disk.Block {
	return a.bitmap
}

func (a *Alloc) IsUsed(n uint64) bool {
	return a.bitmap[n/8]&(1<<(n%8)) != 0
}

func (a *Alloc) MarkUsed(n uint64) {
	a.bitmap[n/8] |= 1 << (n % 8)
}

// findFreeBit returns the lowest clear bit in [1, max), or 0.
func (a *Alloc) findFreeBit() uint64 {
	for i := uint64(0); i < util.RoundUp(a.max, 8); i++ {
		if a.bitmap[i] == 0xFF {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			n := i*8 + bit
			if n == 0 {
				continue
			}
			if n >= a.max {
				return 0
			}
			if a.bitmap[i]&(1<<bit) == 0 {
				return n
			}
		}
	}
	return 0
}

// AllocNum marks the lowest free number as used and returns it, or returns 0
// if the map is full.
func (a *Alloc) AllocNum() uint64 {
	num := a.findFreeBit()
	if num != 0 {
		a.MarkUsed(num)
	}
	util.DPrintf(5, "AllocNum: %d\n", num)
	return num
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumFree counts the free numbers in [1, max).
func (a *Alloc) NumFree() uint64 {
	var used uint64
	for i := uint64(0); i < a.max/8; i++ {
		used += popCnt(a.bitmap[i])
	}
	// a partial last byte
	for n := a.max / 8 * 8; n < a.max; n++ {
		if a.IsUsed(n) {
			used++
		}
	}
	if a.IsUsed(0) {
		used--
	}
	return a.max - 1 - used
}
