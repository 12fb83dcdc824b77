// Package super holds the filesystem geometry stored in block 0.
package super

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

const SUPERBLK common.Bnum = 0

// FsSuper is the on-disk superblock. Every field is a 32-bit little-endian
// word, in this order, padded to one block.
type FsSuper struct {
	Magic        uint32
	BlockSize    uint32
	NBlocks      uint32
	NInodes      uint32
	JournalStart uint32
	InodeBitmap  uint32
	DataBitmap   uint32
	InodeStart   uint32
	DataStart    uint32
}

// MkFsSuper returns the reference geometry: superblock, 16 journal blocks,
// the two bitmaps, two inode-table blocks, then data.
func MkFsSuper() *FsSuper {
	journal := uint32(SUPERBLK) + 1
	ibitmap := journal + uint32(common.JOURNALBLKS)
	inodes := ibitmap + 2
	return &FsSuper{
		Magic:        common.SUPERMAGIC,
		BlockSize:    uint32(disk.BlockSize),
		NBlocks:      uint32(common.NBLOCKS),
		NInodes:      uint32(common.NINODES),
		JournalStart: journal,
		InodeBitmap:  ibitmap,
		DataBitmap:   ibitmap + 1,
		InodeStart:   inodes,
		DataStart:    inodes + uint32(common.NINODEBLK),
	}
}

func (fs *FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(fs.Magic)
	enc.PutInt32(fs.BlockSize)
	enc.PutInt32(fs.NBlocks)
	enc.PutInt32(fs.NInodes)
	enc.PutInt32(fs.JournalStart)
	enc.PutInt32(fs.InodeBitmap)
	enc.PutInt32(fs.DataBitmap)
	enc.PutInt32(fs.InodeStart)
	enc.PutInt32(fs.DataStart)
	return enc.Finish()
}

func Decode(blk disk.Block) *FsSuper {
	dec := marshal.NewDec(blk)
	return &FsSuper{
		Magic:        dec.GetInt32(),
		BlockSize:    dec.GetInt32(),
		NBlocks:      dec.GetInt32(),
		NInodes:      dec.GetInt32(),
		JournalStart: dec.GetInt32(),
		InodeBitmap:  dec.GetInt32(),
		DataBitmap:   dec.GetInt32(),
		InodeStart:   dec.GetInt32(),
		DataStart:    dec.GetInt32(),
	}
}

// Load reads and validates the superblock of d.
func Load(d disk.Disk) (*FsSuper, error) {
	blk, err := d.Read(SUPERBLK)
	if err != nil {
		return nil, common.MkError(common.IoError, "read superblock", err)
	}
	fs := Decode(blk)
	if fs.Magic != common.SUPERMAGIC {
		return nil, common.Errorf(common.InvalidImage, "load superblock",
			"bad magic %#x", fs.Magic)
	}
	if uint64(fs.BlockSize) != disk.BlockSize {
		return nil, common.Errorf(common.InvalidImage, "load superblock",
			"unsupported block size %d", fs.BlockSize)
	}
	if fs.NInodes == 0 || uint64(fs.NInodes) > common.NINODES {
		return nil, common.Errorf(common.InvalidImage, "load superblock",
			"unsupported inode count %d", fs.NInodes)
	}
	sz, err := d.Size()
	if err != nil {
		return nil, common.MkError(common.IoError, "disk size", err)
	}
	if uint64(fs.NBlocks) > sz || fs.lastBlock() >= uint64(fs.NBlocks) {
		return nil, common.Errorf(common.InvalidImage, "load superblock",
			"layout needs %d blocks, image has %d", fs.NBlocks, sz)
	}
	util.DPrintf(1, "super: %+v\n", *fs)
	return fs, nil
}

// lastBlock is the highest block number the metadata regions touch.
func (fs *FsSuper) lastBlock() uint64 {
	last := uint64(fs.JournalStart) + fs.JournalBlocks() - 1
	for _, b := range []uint64{
		uint64(fs.InodeBitmap),
		uint64(fs.DataBitmap),
		uint64(fs.InodeStart) + common.NINODEBLK - 1,
		uint64(fs.DataStart),
	} {
		if b > last {
			last = b
		}
	}
	return last
}

func (fs *FsSuper) JournalBlock(i uint64) common.Bnum {
	return common.Bnum(fs.JournalStart) + i
}

// JournalBlocks is the length of the journal region.
func (fs *FsSuper) JournalBlocks() uint64 {
	return common.JOURNALBLKS
}

func (fs *FsSuper) InodeBitmapBlock() common.Bnum {
	return common.Bnum(fs.InodeBitmap)
}

func (fs *FsSuper) DataBitmapBlock() common.Bnum {
	return common.Bnum(fs.DataBitmap)
}

// InodeBlock returns the i-th inode-table block.
func (fs *FsSuper) InodeBlock(i uint64) common.Bnum {
	return common.Bnum(fs.InodeStart) + i
}

func (fs *FsSuper) DataStartBlock() common.Bnum {
	return common.Bnum(fs.DataStart)
}

func (fs *FsSuper) Inum2Addr(inum common.Inum) addr.Addr {
	return addr.MkAddr(fs.InodeBlock(uint64(inum)/common.INODEBLK),
		(uint64(inum)%common.INODEBLK)*common.INODESZ*8)
}

func (fs *FsSuper) InodeBitAddr(inum common.Inum) addr.Addr {
	return addr.MkBitAddr(fs.InodeBitmapBlock(), uint64(inum))
}
