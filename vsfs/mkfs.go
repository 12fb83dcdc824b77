package vsfs

import (
	"time"

	"github.com/mit-pdos/vsfs-journal/alloc"
	"github.com/mit-pdos/vsfs-journal/buf"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/inode"
	"github.com/mit-pdos/vsfs-journal/super"
	"github.com/mit-pdos/vsfs-journal/util"
	"github.com/mit-pdos/vsfs-journal/wal"
)

// Mkfs writes an empty filesystem with the reference geometry to d: an empty
// journal, a root directory in the first data block, and every other inode
// free. Blocks are written in place; the superblock goes last, so a
// half-formatted disk is never mistaken for a filesystem.
func Mkfs(d disk.Disk) error {
	sz, err := d.Size()
	if err != nil {
		return common.MkError(common.IoError, "mkfs", err)
	}
	if sz < common.NBLOCKS {
		return common.Errorf(common.InvalidImage, "mkfs",
			"image has %d blocks, need %d", sz, common.NBLOCKS)
	}
	sb := super.MkFsSuper()
	util.DPrintf(1, "Mkfs: %+v\n", *sb)

	zero := make(disk.Block, disk.BlockSize)
	for bn := uint64(0); bn < common.NBLOCKS; bn++ {
		if err := d.Write(bn, zero); err != nil {
			return common.MkError(common.IoError, "mkfs", err)
		}
	}
	if err := d.Barrier(); err != nil {
		return common.MkError(common.IoError, "mkfs", err)
	}

	if err := wal.MkLog(d, sb.JournalBlock(0), sb.JournalBlocks()).Init(); err != nil {
		return err
	}

	rootblk := sb.DataStartBlock()
	root := inode.MkRootInode(rootblk, uint32(time.Now().Unix()))
	// the data bitmap counts from the start of the data region
	dbits := alloc.MkMaxAlloc(uint64(sb.NBlocks - sb.DataStart))
	dbits.MarkUsed(rootblk - sb.DataStartBlock())
	if err := d.Write(sb.DataBitmapBlock(), dbits.Bitmap()); err != nil {
		return common.MkError(common.IoError, "mkfs", err)
	}
	objs := []*buf.Buf{
		buf.MkBuf(sb.InodeBitAddr(common.ROOTINUM), 1, []byte{1}),
		buf.MkBuf(sb.Inum2Addr(common.ROOTINUM), common.INODESZ*8, root.Encode()),
	}
	for _, b := range objs {
		if err := b.WriteDirect(d); err != nil {
			return common.MkError(common.IoError, "mkfs", err)
		}
	}

	if err := disk.WriteSync(d, super.SUPERBLK, sb.Encode()); err != nil {
		return common.MkError(common.IoError, "mkfs", err)
	}
	return nil
}
