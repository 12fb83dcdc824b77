package jrnl_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/vsfs-journal/addr"
	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/jrnl"
	"github.com/mit-pdos/vsfs-journal/obj"
	"github.com/mit-pdos/vsfs-journal/util"
	"github.com/mit-pdos/vsfs-journal/wal"
)

func TestSizeConstants(t *testing.T) {
	assert.Equal(t, uint64(wal.MAXPENDING), jrnl.LogBlocks)
}

func data(sz int) []byte {
	d := make([]byte, sz)
	rand.Read(d)
	return d
}

const inodeSz uint64 = 8 * common.INODESZ

func inodeAddr(i uint64) addr.Addr {
	return addr.MkAddr(19+i/32, (i%32)*inodeSz)
}

type testLog struct {
	d   disk.Disk
	wal *wal.Log
	log *obj.Log
}

func mkTestLog(t *testing.T) testLog {
	d := disk.NewMemDisk(common.NBLOCKS)
	w := wal.MkLog(d, 1, common.JOURNALBLKS)
	require.NoError(t, w.Init())
	return testLog{d: d, wal: w, log: obj.MkLog(d, w)}
}

func begin(t *testing.T, l testLog) *jrnl.Op {
	op, err := jrnl.Begin(l.log, wal.TXNRESERVE)
	require.NoError(t, err)
	return op
}

func install(t *testing.T, l testLog) uint64 {
	n, err := l.wal.Install()
	require.NoError(t, err)
	return n
}

func assertObj(t *testing.T, expected []byte, op *jrnl.Op, a addr.Addr,
	msgAndArgs ...interface{}) {
	t.Helper()
	sz := 8 * uint64(len(expected))
	buf, err := op.ReadBuf(a, sz)
	require.NoError(t, err)
	assert.Equal(t, expected, buf.Data, msgAndArgs...)
}

func TestJrnlWriteRead(t *testing.T) {
	l := mkTestLog(t)

	op := begin(t, l)
	bs0 := data(128)
	bs1 := data(128)
	op.OverWrite(inodeAddr(0), inodeSz, bs0)
	op.OverWrite(inodeAddr(1), inodeSz, bs1)
	assert.Equal(t, uint64(2), op.NDirty())
	require.NoError(t, op.CommitWait())
	assert.Equal(t, uint64(1), install(t, l))

	op = begin(t, l)
	assertObj(t, bs0, op, inodeAddr(0))
	assertObj(t, bs1, op, inodeAddr(1))
}

func TestJrnlReadSetDirty(t *testing.T) {
	l := mkTestLog(t)

	op := begin(t, l)
	// initialize with non-zero data
	bs0 := data(128)
	bs1 := data(128)
	op.OverWrite(inodeAddr(0), inodeSz, util.CloneByteSlice(bs0))
	op.OverWrite(inodeAddr(1), inodeSz, util.CloneByteSlice(bs1))
	require.NoError(t, op.CommitWait())
	install(t, l)

	op = begin(t, l)
	// modify just inode 1 through ReadBuf
	buf, err := op.ReadBuf(inodeAddr(1), inodeSz)
	require.NoError(t, err)
	buf.Data[0], buf.Data[1] = 0, 0
	buf.SetDirty()
	require.NoError(t, op.CommitWait())
	install(t, l)

	op = begin(t, l)
	bs1[0], bs1[1] = 0, 0
	assertObj(t, bs0, op, inodeAddr(0), "inode 0 should be unaffected")
	assertObj(t, bs1, op, inodeAddr(1))
}

func TestCommitOnlyTouchesJournal(t *testing.T) {
	l := mkTestLog(t)
	op := begin(t, l)
	op.OverWrite(inodeAddr(3), inodeSz, data(128))
	require.NoError(t, op.CommitWait())

	blk, err := l.d.Read(19)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, disk.BlockSize), blk)

	op = begin(t, l)
	assertObj(t, make([]byte, 128), op, inodeAddr(3),
		"staged writes should not be visible before install")
}

func TestCommitBlockOrder(t *testing.T) {
	l := mkTestLog(t)
	op := begin(t, l)
	// first touch decides the order, not the block number
	_, err := op.ReadBuf(addr.MkBlockAddr(21), common.NBITBLOCK)
	require.NoError(t, err)
	op.OverWrite(addr.MkBitAddr(17, 5), 1, []byte{1 << 5})
	op.OverWrite(inodeAddr(40), inodeSz, data(128))
	op.OverWrite(inodeAddr(0), inodeSz, data(128))
	dirblk, err := op.ReadBuf(addr.MkBlockAddr(21), common.NBITBLOCK)
	require.NoError(t, err)
	dirblk.Data[0] = 7
	dirblk.SetDirty()
	require.NoError(t, op.CommitWait())

	var blocks []uint64
	off := wal.HDRSIZE
	for i := 0; i < 4; i++ {
		rh, err := l.wal.ReadRecordHeader(off)
		require.NoError(t, err)
		require.Equal(t, wal.REC_DATA, rh.Kind)
		b, err := l.d.Read(1 + (off+wal.RECHDRSIZE)/disk.BlockSize)
		require.NoError(t, err)
		o := (off + wal.RECHDRSIZE) % disk.BlockSize
		require.True(t, o+4 <= disk.BlockSize)
		blocks = append(blocks, uint64(b[o])|uint64(b[o+1])<<8)
		off += wal.DATARECSZ
	}
	assert.Equal(t, []uint64{21, 17, 20, 19}, blocks)

	assert.Equal(t, uint64(1), install(t, l))
	bm, err := l.d.Read(17)
	require.NoError(t, err)
	assert.Equal(t, byte(1<<5), bm[0])
}

func TestSubBlockInstall(t *testing.T) {
	l := mkTestLog(t)
	blk := data(int(disk.BlockSize))
	require.NoError(t, l.d.Write(19, util.CloneByteSlice(blk)))

	op := begin(t, l)
	bs := data(128)
	op.OverWrite(inodeAddr(2), inodeSz, bs)
	require.NoError(t, op.CommitWait())
	install(t, l)

	got, err := l.d.Read(19)
	require.NoError(t, err)
	copy(blk[2*128:], bs)
	assert.Equal(t, blk, got, "other inodes in the block should survive")
}

func TestReadOnlyCommit(t *testing.T) {
	l := mkTestLog(t)
	op := begin(t, l)
	_, err := op.ReadBuf(inodeAddr(0), inodeSz)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), op.NDirty())
	require.NoError(t, op.CommitWait())

	h, err := l.wal.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, wal.MkHeader(), h, "read-only op should not log")
}

func TestBeginJournalFull(t *testing.T) {
	l := mkTestLog(t)
	for i := 0; i < 3; i++ {
		op := begin(t, l)
		for j := uint64(0); j < 4; j++ {
			op.OverWrite(addr.MkBlockAddr(21+j), common.NBITBLOCK, data(int(disk.BlockSize)))
		}
		require.NoError(t, op.CommitWait())
	}
	_, err := jrnl.Begin(l.log, wal.TXNRESERVE)
	assert.ErrorIs(t, err, common.ErrJournalFull)

	assert.Equal(t, uint64(3), install(t, l))
	_, err = jrnl.Begin(l.log, wal.TXNRESERVE)
	assert.NoError(t, err)
}

func TestLoadError(t *testing.T) {
	l := mkTestLog(t)
	fd := disk.MkFaultyDisk(l.d)
	fd.FailReads(19)
	op, err := jrnl.Begin(obj.MkLog(fd, wal.MkLog(fd, 1, common.JOURNALBLKS)), wal.TXNRESERVE)
	require.NoError(t, err)
	_, err = op.ReadBuf(inodeAddr(0), inodeSz)
	assert.ErrorIs(t, err, common.ErrIo)
}
