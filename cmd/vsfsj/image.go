package main

import (
	"os"

	"github.com/gofrs/flock"

	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

// image is an open, exclusively locked filesystem image.
type image struct {
	disk.Disk
	lock *flock.Flock
}

func lockImage(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, common.MkError(common.IoError, "lock image", err)
	}
	if !ok {
		return nil, common.Errorf(common.IoError, "lock image",
			"%s is in use by another process", path)
	}
	return lock, nil
}

// openImage locks and opens the existing image at path.
func openImage(path string) (*image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.MkError(common.IoError, "open image", err)
	}
	lock, err := lockImage(path)
	if err != nil {
		return nil, err
	}
	d, err := disk.OpenFileDisk(path)
	if err != nil {
		lock.Unlock()
		return nil, common.MkError(common.IoError, "open image", err)
	}
	return &image{Disk: d, lock: lock}, nil
}

// createImage locks the image at path, creating it if needed, and sizes it
// to numBlocks.
func createImage(path string, numBlocks uint64) (*image, error) {
	lock, err := lockImage(path)
	if err != nil {
		return nil, err
	}
	d, err := disk.NewFileDisk(path, numBlocks)
	if err != nil {
		lock.Unlock()
		return nil, common.MkError(common.IoError, "create image", err)
	}
	return &image{Disk: d, lock: lock}, nil
}

func (img *image) Close() error {
	err := img.Disk.Close()
	if uerr := img.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		return common.MkError(common.IoError, "close image", err)
	}
	util.DPrintf(1, "closed %s\n", img.lock.Path())
	return nil
}
