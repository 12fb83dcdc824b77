// Package dir encodes the root directory block: a flat array of 32-byte
// entries, each a 32-bit inode number and a NUL-terminated 28-byte name.
package dir

import (
	"bytes"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
)

type DirEnt struct {
	Inum common.Inum
	Name string
}

// Encode assumes len(Name) <= MAXNAMELEN; longer names are truncated.
func (de *DirEnt) Encode() []byte {
	enc := marshal.NewEnc(common.DIRENTSZ)
	enc.PutInt32(uint32(de.Inum))
	data := enc.Finish()
	name := []byte(de.Name)
	if uint64(len(name)) > common.MAXNAMELEN {
		name = name[:common.MAXNAMELEN]
	}
	copy(data[4:], name)
	return data
}

func Decode(data []byte) *DirEnt {
	dec := marshal.NewDec(data)
	inum := common.Inum(dec.GetInt32())
	name := data[4:common.DIRENTSZ]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return &DirEnt{Inum: inum, Name: string(name)}
}

// Dir is a view of a directory block.
type Dir struct {
	blk disk.Block
}

func MkDir(blk disk.Block) *Dir {
	return &Dir{blk: blk}
}

func (d *Dir) slot(i uint64) []byte {
	return d.blk[i*common.DIRENTSZ : (i+1)*common.DIRENTSZ]
}

// IsFree reports whether slot i is unused; a slot is in use iff the first
// byte of its name is non-zero.
func (d *Dir) IsFree(i uint64) bool {
	return d.slot(i)[4] == 0
}

func (d *Dir) Get(i uint64) *DirEnt {
	return Decode(d.slot(i))
}

func (d *Dir) Put(i uint64, de *DirEnt) {
	copy(d.slot(i), de.Encode())
}

// Lookup scans every slot once. It fails with DuplicateName if name is
// already present and with DirectoryFull if no slot is free; otherwise it
// returns the first free slot.
func (d *Dir) Lookup(name string) (uint64, error) {
	var free uint64
	found := false
	for i := uint64(0); i < common.NDIRENT; i++ {
		if d.IsFree(i) {
			if !found {
				free = i
				found = true
			}
			continue
		}
		if d.Get(i).Name == name {
			return 0, common.Errorf(common.DuplicateName, "lookup", "%q", name)
		}
	}
	if !found {
		return 0, common.MkError(common.DirectoryFull, "lookup", nil)
	}
	return free, nil
}

// Highest returns the index of the highest occupied slot, or false if the
// directory is empty.
func (d *Dir) Highest() (uint64, bool) {
	for i := common.NDIRENT; i > 0; i-- {
		if !d.IsFree(i - 1) {
			return i - 1, true
		}
	}
	return 0, false
}

// Size is the directory size implied by the highest occupied slot. Free
// slots below it still count.
func (d *Dir) Size() uint32 {
	h, ok := d.Highest()
	if !ok {
		return 0
	}
	return uint32((h + 1) * common.DIRENTSZ)
}

// Entry is an occupied directory slot.
type Entry struct {
	Slot uint64
	DirEnt
}

func (d *Dir) Entries() []Entry {
	var ents []Entry
	for i := uint64(0); i < common.NDIRENT; i++ {
		if !d.IsFree(i) {
			ents = append(ents, Entry{Slot: i, DirEnt: *d.Get(i)})
		}
	}
	return ents
}
