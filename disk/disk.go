package disk

import (
	goosedisk "github.com/tchajed/goose/machine/disk"
)

// Block is a 4096-byte buffer
type Block = []byte

const BlockSize uint64 = goosedisk.BlockSize

// Disk provides access to a logical block-based disk
type Disk interface {
	// Read reads a disk block by address
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

// WriteSync writes v to block a and waits for it to be durable.
func WriteSync(d Disk, a uint64, v Block) error {
	if err := d.Write(a, v); err != nil {
		return err
	}
	return d.Barrier()
}
