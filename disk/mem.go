package disk

import (
	"fmt"

	goosedisk "github.com/tchajed/goose/machine/disk"
)

var _ Disk = (*memDisk)(nil)

// memDisk adds bounds checking and error returns to goose's in-memory disk,
// which panics on misuse.
type memDisk struct {
	d goosedisk.Disk
}

func NewMemDisk(numBlocks uint64) Disk {
	return &memDisk{d: goosedisk.NewMemDisk(numBlocks)}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		return fmt.Errorf("read: buffer is not block-sized (%d bytes)", len(buf))
	}
	if a >= d.d.Size() {
		return fmt.Errorf("out-of-bounds read at %v", a)
	}
	copy(buf, d.d.Read(a))
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *memDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		return fmt.Errorf("write: v is not block-sized (%d bytes)", len(v))
	}
	if a >= d.d.Size() {
		return fmt.Errorf("out-of-bounds write at %v", a)
	}
	d.d.Write(a, v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	return d.d.Size(), nil
}

func (d *memDisk) Barrier() error {
	d.d.Barrier()
	return nil
}

func (d *memDisk) Close() error {
	d.d.Close()
	return nil
}
