package buf

import (
	"github.com/mit-pdos/vsfs-journal/addr"
)

//
// A map from Addr's to bufs that remembers insertion order, so dirty bufs
// reach the log in the order an operation first touched them.
//

type BufMap struct {
	addrs map[uint64]*Buf
	order []uint64
}

func MkBufMap() *BufMap {
	a := &BufMap{
		addrs: make(map[uint64]*Buf),
	}
	return a
}

func (bmap *BufMap) Insert(buf *Buf) {
	id := buf.Addr.Flatid()
	if _, ok := bmap.addrs[id]; !ok {
		bmap.order = append(bmap.order, id)
	}
	bmap.addrs[id] = buf
}

func (bmap *BufMap) Lookup(addr addr.Addr) *Buf {
	return bmap.addrs[addr.Flatid()]
}

func (bmap *BufMap) Ndirty() uint64 {
	n := uint64(0)
	for _, id := range bmap.order {
		if bmap.addrs[id].dirty {
			n += 1
		}
	}
	return n
}

func (bmap *BufMap) DirtyBufs() []*Buf {
	var bufs []*Buf
	for _, id := range bmap.order {
		b := bmap.addrs[id]
		if b.dirty {
			bufs = append(bufs, b)
		}
	}
	return bufs
}

func (bmap *BufMap) Bufs() []*Buf {
	bufs := make([]*Buf, 0, len(bmap.order))
	for _, id := range bmap.order {
		bufs = append(bufs, bmap.addrs[id])
	}
	return bufs
}
