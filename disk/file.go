package disk

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/vsfs-journal/util"
)

var _ Disk = (*fileDisk)(nil)

type fileDisk struct {
	fd        int
	path      string
	numBlocks uint64
}

// NewFileDisk creates (or resizes) the image at path to hold numBlocks
// blocks.
func NewFileDisk(path string, numBlocks uint64) (Disk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if (stat.Mode&unix.S_IFREG) != 0 && uint64(stat.Size) != numBlocks*BlockSize {
		if err := unix.Ftruncate(fd, int64(numBlocks*BlockSize)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("truncate %s: %w", path, err)
		}
	}
	util.DPrintf(1, "NewFileDisk: %s %d blocks\n", path, numBlocks)
	return &fileDisk{fd: fd, path: path, numBlocks: numBlocks}, nil
}

// OpenFileDisk opens an existing image; its size must be a whole number of
// blocks.
func OpenFileDisk(path string) (Disk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if uint64(stat.Size)%BlockSize != 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("%s: size %d is not a multiple of %d",
			path, stat.Size, BlockSize)
	}
	numBlocks := uint64(stat.Size) / BlockSize
	util.DPrintf(1, "OpenFileDisk: %s %d blocks\n", path, numBlocks)
	return &fileDisk{fd: fd, path: path, numBlocks: numBlocks}, nil
}

func (d *fileDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		return fmt.Errorf("read: buffer is not block-sized (%d bytes)", len(buf))
	}
	if a >= d.numBlocks {
		return fmt.Errorf("out-of-bounds read at %v", a)
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return fmt.Errorf("read block %d: %w", a, err)
	}
	if uint64(n) != BlockSize {
		return fmt.Errorf("read block %d: short read (%d bytes)", a, n)
	}
	util.DPrintf(5, "read: %v\n", a)
	return nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	buf := make([]byte, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *fileDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		return fmt.Errorf("write: v is not block sized (%d bytes)", len(v))
	}
	if a >= d.numBlocks {
		return fmt.Errorf("out-of-bounds write at %v", a)
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return fmt.Errorf("write block %d: %w", a, err)
	}
	if uint64(n) != BlockSize {
		return fmt.Errorf("write block %d: short write (%d bytes)", a, n)
	}
	util.DPrintf(5, "write: %v\n", a)
	return nil
}

func (d *fileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *fileDisk) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details. The correct replacement is to issue a fcntl syscall with
	// cmd F_FULLFSYNC.
	if err := unix.Fsync(d.fd); err != nil {
		return fmt.Errorf("file sync failed: %w", err)
	}
	return nil
}

func (d *fileDisk) Close() error {
	return unix.Close(d.fd)
}
