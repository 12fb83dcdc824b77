package disk

import (
	"fmt"
)

var _ Disk = (*FaultyDisk)(nil)

// FaultyDisk wraps a Disk and fails reads or writes of chosen blocks.
type FaultyDisk struct {
	Disk
	badReads  map[uint64]bool
	badWrites map[uint64]bool
}

func MkFaultyDisk(d Disk) *FaultyDisk {
	return &FaultyDisk{
		Disk:      d,
		badReads:  make(map[uint64]bool),
		badWrites: make(map[uint64]bool),
	}
}

func (d *FaultyDisk) FailReads(a uint64) {
	d.badReads[a] = true
}

func (d *FaultyDisk) FailWrites(a uint64) {
	d.badWrites[a] = true
}

func (d *FaultyDisk) ReadTo(a uint64, b Block) error {
	if d.badReads[a] {
		return fmt.Errorf("injected read failure at %d", a)
	}
	return d.Disk.ReadTo(a, b)
}

func (d *FaultyDisk) Read(a uint64) (Block, error) {
	b := make(Block, BlockSize)
	if err := d.ReadTo(a, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (d *FaultyDisk) Write(a uint64, v Block) error {
	if d.badWrites[a] {
		return fmt.Errorf("injected write failure at %d", a)
	}
	return d.Disk.Write(a, v)
}
