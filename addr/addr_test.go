package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/vsfs-journal/common"
)

func TestMkBitAddr(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(MkAddr(17, 5), MkBitAddr(17, 5))
	assert.Equal(MkAddr(18, 1), MkBitAddr(17, common.NBITBLOCK+1),
		"bits past the first block roll into the next one")
}

func TestFlatid(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(0), MkBlockAddr(0).Flatid())
	assert.Equal(common.NBITBLOCK+8, MkAddr(1, 8).Flatid())
	assert.NotEqual(MkAddr(1, 0).Flatid(), MkAddr(0, 8).Flatid())
}

func TestByteOff(t *testing.T) {
	assert.Equal(t, uint64(128), MkAddr(19, 128*8).ByteOff())
}
