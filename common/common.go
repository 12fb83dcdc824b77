package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	NBITBLOCK uint64 = disk.BlockSize * 8
	INODEBLK  uint64 = disk.BlockSize / INODESZ
	NDIRENT   uint64 = disk.BlockSize / DIRENTSZ

	INODESZ   uint64 = 128 // on-disk size
	NINODES   uint64 = 64
	NINODEBLK uint64 = NINODES / INODEBLK
	NDIRECT   uint64 = 8

	DIRENTSZ   uint64 = 32
	NAMELEN    uint64 = 28
	MAXNAMELEN uint64 = NAMELEN - 1 // room for the terminating NUL

	NBLOCKS     uint64 = 85
	JOURNALBLKS uint64 = 16
)

const (
	SUPERMAGIC   uint32 = 0x56534653 // "VSFS"
	JOURNALMAGIC uint32 = 0x4A524E4C // "JRNL"
)

type Inum uint64
type Bnum = uint64

const (
	ROOTINUM Inum = 0
)
