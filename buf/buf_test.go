package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/disk"
)

func TestInstallOneBit(t *testing.T) {
	assert.Equal(t, byte(0x10), installOneBit(byte(0x1F), byte(0x0), 4))
	assert.Equal(t, byte(0x0F), installOneBit(byte(0x0F), byte(0x1F), 4))
	assert.Equal(t, byte(0xFF), installOneBit(byte(0xFF), byte(0xFF), 0),
		"installing an equal bit is a no-op")
}

func TestInstallBit(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	b := MkBuf(addr.MkBitAddr(17, 9), 1, []byte{0x02})
	require.NoError(t, b.Install(blk))
	assert.Equal(t, byte(0x02), blk[1])
	assert.Equal(t, byte(0x00), blk[0])
}

func TestInstallBytes(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	data := []byte{1, 2, 3, 4}
	b := MkBuf(addr.MkAddr(19, 128*8), 32, data)
	require.NoError(t, b.Install(blk))
	assert.Equal(t, data, blk[128:132])
	assert.Equal(t, byte(0), blk[127])
	assert.Equal(t, byte(0), blk[132])
}

func TestInstallUnaligned(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	b := MkBuf(addr.MkAddr(19, 3), 16, []byte{1, 2})
	assert.Error(t, b.Install(blk))
}

func TestMkBufLoadAliases(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	b := MkBufLoad(addr.MkAddr(19, 32*8), 32*8, blk)
	assert.Len(t, b.Data, 32)
	b.Data[0] = 7
	assert.Equal(t, byte(7), blk[32], "loaded buf should alias its block")
}

func TestWriteDirect(t *testing.T) {
	d := disk.NewMemDisk(4)
	full := make([]byte, disk.BlockSize)
	full[0] = 9
	require.NoError(t, MkBuf(addr.MkBlockAddr(1), disk.BlockSize*8, full).WriteDirect(d))

	bit := MkBuf(addr.MkBitAddr(1, 3), 1, []byte{1 << 3})
	require.NoError(t, bit.WriteDirect(d))
	assert.True(t, bit.IsDirty())

	blk, err := d.Read(1)
	require.NoError(t, err)
	assert.Equal(t, byte(9|1<<3), blk[0], "sub-block write should merge")
}

func TestBufMapOrder(t *testing.T) {
	assert := assert.New(t)
	m := MkBufMap()
	b3 := MkBuf(addr.MkBlockAddr(3), disk.BlockSize*8, nil)
	b1 := MkBuf(addr.MkBlockAddr(1), disk.BlockSize*8, nil)
	b2 := MkBuf(addr.MkBlockAddr(2), disk.BlockSize*8, nil)
	m.Insert(b3)
	m.Insert(b1)
	m.Insert(b2)
	assert.Equal([]*Buf{b3, b1, b2}, m.Bufs(), "insertion order is kept")

	b1.SetDirty()
	b3.SetDirty()
	assert.Equal(uint64(2), m.Ndirty())
	assert.Equal([]*Buf{b3, b1}, m.DirtyBufs())

	assert.Same(b1, m.Lookup(addr.MkBlockAddr(1)))
	assert.Nil(m.Lookup(addr.MkBlockAddr(4)))
}
