//  wal implements the journal: a write-ahead log of whole-block writes that
//  makes a multi-block metadata update atomic across crashes.
//
//  The layout of the journal region:
//  [ header | rec | rec | ... | rec | free ]
//   ^                                ^
//   0                                bytesUsed
//
//  The header holds a magic number and bytesUsed, the offset of the first
//  free byte. Records are either Data (a target block number and a full
//  block of contents) or Commit; a transaction is a run of Data records
//  ended by one Commit. Appending writes the records first and advances
//  bytesUsed last, so a crash mid-append leaves the new records beyond
//  bytesUsed, where install never looks. Install replays committed
//  transactions in order, discards a trailing uncommitted one, and resets
//  bytesUsed.
package wal

import (
	"github.com/mit-pdos/vsfs-journal/disk"
)

type RecKind uint16

const (
	REC_DATA   RecKind = 1
	REC_COMMIT RecKind = 2
)

const (
	HDRSIZE     = uint64(8) // magic + bytesUsed
	RECHDRSIZE  = uint64(4) // kind + size
	DATARECSZ   = RECHDRSIZE + 4 + disk.BlockSize
	COMMITRECSZ = RECHDRSIZE
)

// MAXPENDING bounds the Data records install buffers for one transaction.
// Later Data records in the same transaction are dropped.
const MAXPENDING = 16

// TXNRESERVE is the space one create transaction can need in the worst case:
// bitmap, two inode-table blocks, the directory block and the commit.
const TXNRESERVE = 4*DATARECSZ + COMMITRECSZ
