package super

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
)

func TestReferenceGeometry(t *testing.T) {
	assert := assert.New(t)
	fs := MkFsSuper()
	assert.Equal(uint32(1), fs.JournalStart)
	assert.Equal(uint32(17), fs.InodeBitmap)
	assert.Equal(uint32(18), fs.DataBitmap)
	assert.Equal(uint32(19), fs.InodeStart)
	assert.Equal(uint32(21), fs.DataStart)
	assert.Equal(uint64(16), fs.JournalBlocks())
}

func TestEncodeLayout(t *testing.T) {
	blk := MkFsSuper().Encode()
	assert.Len(t, blk, int(disk.BlockSize))
	// magic "VSFS" little-endian, then the block size
	assert.Equal(t, []byte{0x53, 0x46, 0x53, 0x56}, blk[0:4])
	assert.Equal(t, []byte{0x00, 0x10, 0x00, 0x00}, blk[4:8])
	assert.Equal(t, make([]byte, disk.BlockSize-36), blk[36:], "padding is zero")
}

func TestLoad(t *testing.T) {
	d := disk.NewMemDisk(common.NBLOCKS)
	fs := MkFsSuper()
	require.NoError(t, d.Write(SUPERBLK, fs.Encode()))

	loaded, err := Load(d)
	require.NoError(t, err)
	if diff := cmp.Diff(fs, loaded); diff != "" {
		t.Errorf("superblock mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBadMagic(t *testing.T) {
	d := disk.NewMemDisk(common.NBLOCKS)
	_, err := Load(d)
	assert.True(t, common.IsKind(err, common.InvalidImage))
	assert.ErrorIs(t, err, common.ErrInvalidImage)
}

func TestLoadTooSmall(t *testing.T) {
	d := disk.NewMemDisk(10)
	require.NoError(t, d.Write(SUPERBLK, MkFsSuper().Encode()))
	_, err := Load(d)
	assert.True(t, common.IsKind(err, common.InvalidImage))
}

func TestInum2Addr(t *testing.T) {
	assert := assert.New(t)
	fs := MkFsSuper()
	assert.Equal(addr.MkAddr(19, 0), fs.Inum2Addr(0))
	assert.Equal(addr.MkAddr(19, 31*128*8), fs.Inum2Addr(31))
	assert.Equal(addr.MkAddr(20, 0), fs.Inum2Addr(32))
	assert.Equal(addr.MkAddr(17, 40), fs.InodeBitAddr(40))
}

func TestLoadBadInodeCount(t *testing.T) {
	d := disk.NewMemDisk(common.NBLOCKS)
	fs := MkFsSuper()
	fs.NInodes = uint32(common.NINODES) + 1
	require.NoError(t, d.Write(SUPERBLK, fs.Encode()))
	_, err := Load(d)
	assert.ErrorIs(t, err, common.ErrInvalidImage)
}

func TestLoadReadError(t *testing.T) {
	d := disk.MkFaultyDisk(disk.NewMemDisk(common.NBLOCKS))
	d.FailReads(SUPERBLK)
	_, err := Load(d)
	assert.ErrorIs(t, err, common.ErrIo)
}
