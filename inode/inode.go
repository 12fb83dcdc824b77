package inode

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/vsfs-journal/common"
)

type Itype uint16

const (
	FREE Itype = 0
	FILE Itype = 1
	DIR  Itype = 2
)

func (t Itype) String() string {
	switch t {
	case FREE:
		return "free"
	case FILE:
		return "file"
	case DIR:
		return "dir"
	}
	return fmt.Sprintf("itype(%d)", uint16(t))
}

// Inode is the 128-byte on-disk inode. Type and Links are 16-bit fields
// stored back to back; the rest are 32-bit words followed by zero padding.
type Inode struct {
	Type   Itype
	Links  uint16
	Size   uint32
	Direct [common.NDIRECT]uint32
	Ctime  uint32
	Mtime  uint32
}

// MkFileInode returns a fresh empty file created at now (seconds since the
// epoch).
func MkFileInode(now uint32) *Inode {
	return &Inode{
		Type:  FILE,
		Links: 1,
		Size:  0,
		Ctime: now,
		Mtime: now,
	}
}

// MkRootInode returns an empty root directory whose entries live in dirblk.
func MkRootInode(dirblk common.Bnum, now uint32) *Inode {
	ip := &Inode{
		Type:  DIR,
		Links: 2,
		Size:  0,
		Ctime: now,
		Mtime: now,
	}
	ip.Direct[0] = uint32(dirblk)
	return ip
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(uint32(ip.Type) | uint32(ip.Links)<<16)
	enc.PutInt32(ip.Size)
	for _, bn := range ip.Direct {
		enc.PutInt32(bn)
	}
	enc.PutInt32(ip.Ctime)
	enc.PutInt32(ip.Mtime)
	return enc.Finish()
}

func Decode(data []byte) *Inode {
	ip := new(Inode)
	dec := marshal.NewDec(data)
	w := dec.GetInt32()
	ip.Type = Itype(w & 0xFFFF)
	ip.Links = uint16(w >> 16)
	ip.Size = dec.GetInt32()
	for i := range ip.Direct {
		ip.Direct[i] = dec.GetInt32()
	}
	ip.Ctime = dec.GetInt32()
	ip.Mtime = dec.GetInt32()
	return ip
}

func (ip *Inode) IsFree() bool {
	return ip.Type == FREE
}
