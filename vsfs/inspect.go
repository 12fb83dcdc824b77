package vsfs

import (
	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/alloc"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/dir"
	"github.com/mit-pdos/vsfs-journal/inode"
	"github.com/mit-pdos/vsfs-journal/wal"
)

// ReadInode returns inode inum as installed on disk.
func (fs *Fs) ReadInode(inum common.Inum) (*inode.Inode, error) {
	if uint64(inum) >= uint64(fs.Super.NInodes) {
		return nil, common.Errorf(common.InvalidImage, "read inode",
			"inode %d out of range", inum)
	}
	b, err := fs.log.Load(fs.Super.Inum2Addr(inum), common.INODESZ*8)
	if err != nil {
		return nil, err
	}
	return inode.Decode(b.Data), nil
}

// ReadDir lists the occupied root directory slots as installed on disk.
// Creates still waiting in the journal are not included.
func (fs *Fs) ReadDir() ([]dir.Entry, error) {
	root, err := fs.ReadInode(common.ROOTINUM)
	if err != nil {
		return nil, err
	}
	bn, err := fs.rootDirBlock(root)
	if err != nil {
		return nil, err
	}
	b, err := fs.log.Load(addr.MkBlockAddr(bn), common.NBITBLOCK)
	if err != nil {
		return nil, err
	}
	return dir.MkDir(b.Data).Entries(), nil
}

// Status summarizes the journal without changing it.
type Status struct {
	Valid       bool   // header magic is intact
	BytesUsed   uint64 // as recorded in the header
	Free        uint64
	Committed   uint64 // transactions an install would apply
	Uncommitted uint64 // trailing Data records without a Commit
	Corrupt     error  // where an install would stop early, if it would
	FreeInodes  uint64 // in the installed inode bitmap
}

func (fs *Fs) Status() (*Status, error) {
	h, res, err := fs.wal.Scan()
	if err != nil {
		return nil, err
	}
	st := &Status{
		Valid:       h.Valid(),
		BytesUsed:   uint64(h.BytesUsed),
		Free:        fs.wal.Free(h),
		Committed:   res.Committed,
		Uncommitted: res.Discarded,
		Corrupt:     res.Corrupt,
	}
	if !h.Valid() {
		st.Free = fs.wal.Free(wal.MkHeader())
	}
	b, err := fs.log.Load(addr.MkBlockAddr(fs.Super.InodeBitmapBlock()), common.NBITBLOCK)
	if err != nil {
		return nil, err
	}
	st.FreeInodes = alloc.MkAlloc(b.Data, uint64(fs.Super.NInodes)).NumFree()
	return st, nil
}
