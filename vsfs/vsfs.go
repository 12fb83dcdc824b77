// Package vsfs stages file creations in the journal and installs them.
//
// An Fs is the context for one command: the disk, its superblock and the
// journal. Create never writes outside the journal; Install is the only
// operation that writes metadata blocks in place.
package vsfs

import (
	"strings"
	"time"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/alloc"
	"github.com/mit-pdos/vsfs-journal/buf"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/dir"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/inode"
	"github.com/mit-pdos/vsfs-journal/jrnl"
	"github.com/mit-pdos/vsfs-journal/obj"
	"github.com/mit-pdos/vsfs-journal/super"
	"github.com/mit-pdos/vsfs-journal/util"
	"github.com/mit-pdos/vsfs-journal/wal"
)

type Fs struct {
	d     disk.Disk
	Super *super.FsSuper
	wal   *wal.Log
	log   *obj.Log
	clock func() time.Time
}

// MkFs loads the superblock of d. It fails with InvalidImage if d does not
// hold a filesystem.
func MkFs(d disk.Disk) (*Fs, error) {
	sb, err := super.Load(d)
	if err != nil {
		return nil, err
	}
	w := wal.MkLog(d, sb.JournalBlock(0), sb.JournalBlocks())
	fs := &Fs{
		d:     d,
		Super: sb,
		wal:   w,
		log:   obj.MkLog(d, w),
		clock: time.Now,
	}
	return fs, nil
}

// SetClock replaces the source of inode timestamps.
func (fs *Fs) SetClock(clock func() time.Time) {
	fs.clock = clock
}

func (fs *Fs) now() uint32 {
	return uint32(fs.clock().Unix())
}

func checkName(name string) error {
	if uint64(len(name)) > common.MAXNAMELEN {
		return common.Errorf(common.NameTooLong, "create",
			"%q is %d bytes, max %d", name, len(name), common.MAXNAMELEN)
	}
	if name == "" {
		return common.Errorf(common.InvalidName, "create", "empty name")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return common.Errorf(common.InvalidName, "create", "%q contains NUL", name)
	}
	return nil
}

func (fs *Fs) readBlock(op *jrnl.Op, bn common.Bnum) (*buf.Buf, error) {
	return op.ReadBuf(addr.MkBlockAddr(bn), common.NBITBLOCK)
}

// readInodeBlocks loads every inode-table block into op, in order.
func (fs *Fs) readInodeBlocks(op *jrnl.Op) ([]*buf.Buf, error) {
	bufs := make([]*buf.Buf, 0, common.NINODEBLK)
	for i := uint64(0); i < common.NINODEBLK; i++ {
		b, err := fs.readBlock(op, fs.Super.InodeBlock(i))
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, b)
	}
	return bufs, nil
}

func (fs *Fs) inodeData(ibufs []*buf.Buf, inum common.Inum) []byte {
	a := fs.Super.Inum2Addr(inum)
	b := ibufs[a.Blkno-fs.Super.InodeBlock(0)]
	return b.Data[a.ByteOff() : a.ByteOff()+common.INODESZ]
}

func (fs *Fs) rootDirBlock(root *inode.Inode) (common.Bnum, error) {
	bn := common.Bnum(root.Direct[0])
	if root.Type != inode.DIR || bn < fs.Super.DataStartBlock() || bn >= uint64(fs.Super.NBlocks) {
		return 0, common.Errorf(common.InvalidImage, "root directory",
			"root inode %v has directory block %d", root.Type, bn)
	}
	return bn, nil
}

// Create stages the creation of an empty file called name in the root
// directory and returns its inode number. The new file becomes visible on
// disk once the journal is installed.
//
// On error nothing has been written, neither to the journal nor elsewhere.
func (fs *Fs) Create(name string) (common.Inum, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	op, err := jrnl.Begin(fs.log, wal.TXNRESERVE)
	if err != nil {
		return 0, err
	}

	bmap, err := fs.readBlock(op, fs.Super.InodeBitmapBlock())
	if err != nil {
		return 0, err
	}
	a := alloc.MkAlloc(bmap.Data, uint64(fs.Super.NInodes))
	inum := common.Inum(a.AllocNum())
	if inum == 0 {
		return 0, common.Errorf(common.NoFreeInode, "create",
			"all %d inodes in use", fs.Super.NInodes)
	}

	ibufs, err := fs.readInodeBlocks(op)
	if err != nil {
		return 0, err
	}
	root := inode.Decode(fs.inodeData(ibufs, common.ROOTINUM))
	dirbn, err := fs.rootDirBlock(root)
	if err != nil {
		return 0, err
	}
	dbuf, err := fs.readBlock(op, dirbn)
	if err != nil {
		return 0, err
	}
	d := dir.MkDir(dbuf.Data)
	slot, err := d.Lookup(name)
	if err != nil {
		return 0, err
	}

	util.DPrintf(1, "Create %q: inode %d slot %d\n", name, inum, slot)
	op.OverWrite(addr.MkBlockAddr(fs.Super.InodeBitmapBlock()), common.NBITBLOCK, a.Bitmap())
	copy(fs.inodeData(ibufs, inum), inode.MkFileInode(fs.now()).Encode())
	d.Put(slot, &dir.DirEnt{Inum: inum, Name: name})
	root.Size = d.Size()
	copy(fs.inodeData(ibufs, common.ROOTINUM), root.Encode())
	// the root inode is always in the first block
	ibufs[0].SetDirty()
	ibufs[fs.Super.Inum2Addr(inum).Blkno-fs.Super.InodeBlock(0)].SetDirty()
	dbuf.SetDirty()

	util.DPrintf(2, "Create %q: %d dirty blocks\n", name, op.NDirty())
	if err := op.CommitWait(); err != nil {
		return 0, err
	}
	return inum, nil
}

// Install applies the transactions staged in the journal and clears it. See
// wal.Log.Install for the error semantics.
func (fs *Fs) Install() (uint64, error) {
	return fs.wal.Install()
}
