package wal

import (
	"errors"

	"github.com/mit-pdos/vsfs-journal/common"
	"github.com/mit-pdos/vsfs-journal/disk"
	"github.com/mit-pdos/vsfs-journal/util"
)

// ScanResult describes one pass over the journal.
type ScanResult struct {
	Committed uint64 // complete transactions found
	Discarded uint64 // Data records at the tail with no Commit
	Dropped   uint64 // Data records beyond MAXPENDING in one transaction
	End       uint64 // offset where the scan stopped
	Corrupt   error  // set if the scan stopped at a bad record
}

// scan walks the records in data[HDRSIZE:used], buffering Data records and
// handing each committed transaction to commit. It stops at the first corrupt
// record; nothing after it is looked at.
func scan(data []byte, used uint64, commit func(txn []Update)) ScanResult {
	var res ScanResult
	var pending []Update
	off := HDRSIZE
	for off < used {
		if off+RECHDRSIZE > used {
			res.Corrupt = common.Errorf(common.CorruptJournal, "scan",
				"truncated record header at %d", off)
			break
		}
		rh := DecodeRecordHeader(data[off:])
		size := uint64(rh.Size)
		if size == 0 {
			res.Corrupt = common.Errorf(common.CorruptJournal, "scan",
				"zero-size record at %d", off)
			break
		}
		if off+size > used {
			res.Corrupt = common.Errorf(common.CorruptJournal, "scan",
				"record %v at %d runs past %d", rh, off, used)
			break
		}
		want, ok := recordSize(rh.Kind)
		if !ok || want != size {
			res.Corrupt = common.Errorf(common.CorruptJournal, "scan",
				"bad record %v at %d", rh, off)
			break
		}
		switch rh.Kind {
		case REC_DATA:
			if len(pending) < MAXPENDING {
				pending = append(pending, decodeData(data[off:off+size]))
			} else {
				util.DPrintf(1, "scan: dropping data record at %d\n", off)
				res.Dropped++
			}
		case REC_COMMIT:
			commit(pending)
			res.Committed++
			pending = nil
		}
		off += size
	}
	res.End = off
	res.Discarded = uint64(len(pending))
	return res
}

// installBlocks writes the updates of one transaction to their home
// locations, in order. A failed write does not stop the rest.
func (l *Log) installBlocks(txn []Update) []error {
	var errs []error
	for i, u := range txn {
		util.DPrintf(5, "installBlocks: write log block %d to %d\n", i, u.Addr)
		if err := disk.WriteSync(l.d, u.Addr, u.Block); err != nil {
			errs = append(errs, common.MkError(common.IoError, "install block", err))
		}
	}
	return errs
}

// readUsed returns the header and the used prefix of the journal. If
// bytesUsed runs past the end of the journal, overflow is set and the whole
// journal is returned.
func (l *Log) readUsed() (h Header, data []byte, overflow bool, err error) {
	h, err = l.ReadHeader()
	if err != nil || h.Empty() {
		return h, nil, false, err
	}
	used := uint64(h.BytesUsed)
	if used > l.Size() {
		overflow = true
		used = l.Size()
	}
	data, err = l.region.readAt(0, used)
	if err != nil {
		return h, nil, false, ioError("read journal", err)
	}
	return h, data, overflow, nil
}

func overflowError(h Header, size uint64) error {
	return common.Errorf(common.CorruptJournal, "read journal",
		"%d bytes used, journal holds %d", h.BytesUsed, size)
}

// shortError flags a valid header whose bytes used ends inside the header
// itself. Such a journal holds no records but is not a clean empty one.
func shortError(h Header) error {
	if !h.Valid() || uint64(h.BytesUsed) >= HDRSIZE {
		return nil
	}
	return common.Errorf(common.CorruptJournal, "read journal",
		"%d bytes used, header alone is %d", h.BytesUsed, HDRSIZE)
}

// Install applies every committed transaction in the journal to its home
// location and then empties the journal.
//
// It returns the number of transactions applied. The error, if any, joins a
// CorruptJournal error (the scan stopped early and the rest of the journal
// was discarded) with IoErrors for block writes that failed. The journal is
// cleared in either case. If the journal cannot be read at all, Install
// returns the IoError and leaves the journal alone.
func (l *Log) Install() (uint64, error) {
	h, data, overflow, err := l.readUsed()
	if err != nil {
		return 0, err
	}
	if err := shortError(h); err != nil {
		util.Logger().WithError(err).Warn("resetting journal")
		return 0, errors.Join(err, l.WriteHeader(MkHeader()))
	}
	if h.Empty() {
		util.DPrintf(1, "Install: nothing to install (magic %#x used %d)\n",
			h.Magic, h.BytesUsed)
		return 0, nil
	}

	var errs []error
	if overflow {
		errs = append(errs, overflowError(h, l.Size()))
	}
	res := scan(data, uint64(len(data)), func(txn []Update) {
		util.DPrintf(3, "Install: txn of %d blocks\n", len(txn))
		errs = append(errs, l.installBlocks(txn)...)
	})
	if res.Corrupt != nil {
		util.Logger().WithError(res.Corrupt).Warnf(
			"journal truncated after %d transaction(s)", res.Committed)
		errs = append(errs, res.Corrupt)
	}
	if res.Discarded > 0 {
		util.Logger().Warnf("discarding %d uncommitted write(s)", res.Discarded)
	}

	if err := l.WriteHeader(MkHeader()); err != nil {
		errs = append(errs, err)
	}
	util.DPrintf(1, "Install: %d transaction(s), journal cleared\n", res.Committed)
	return res.Committed, errors.Join(errs...)
}

// Scan reports what Install would do, without writing anything.
func (l *Log) Scan() (Header, ScanResult, error) {
	h, data, overflow, err := l.readUsed()
	if err != nil {
		return h, ScanResult{}, err
	}
	if h.Empty() {
		return h, ScanResult{End: HDRSIZE, Corrupt: shortError(h)}, nil
	}
	res := scan(data, uint64(len(data)), func([]Update) {})
	if res.Corrupt == nil && overflow {
		res.Corrupt = overflowError(h, l.Size())
	}
	return h, res, nil
}
