package inet

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/frankli0324/go-geturl/internal/native"
)

var (
	ErrHandlesExhausted = errors.New("inet: no free handles")
	ErrInvalidHandle    = errors.New("inet: invalid handle")
)

const handleBase native.Handle = 0xcc0000

// handleTable maps handles to stack objects. At most cap(tickets) handles are
// live at once; acquire never blocks.
type handleTable struct {
	sync.Mutex
	tickets chan struct{}
	next    native.Handle
	objects map[native.Handle]interface{}
}

func newHandleTable(max uint) *handleTable {
	return &handleTable{
		tickets: make(chan struct{}, max),
		next:    handleBase,
		objects: map[native.Handle]interface{}{},
	}
}

func (t *handleTable) acquire(obj interface{}) (native.Handle, error) {
	select {
	case t.tickets <- struct{}{}:
	default:
		return 0, ErrHandlesExhausted
	}
	t.Lock()
	defer t.Unlock()
	t.next += 4
	t.objects[t.next] = obj
	return t.next, nil
}

func (t *handleTable) lookup(h native.Handle) (interface{}, bool) {
	t.Lock()
	defer t.Unlock()
	obj, ok := t.objects[h]
	return obj, ok
}

func (t *handleTable) release(h native.Handle) (interface{}, error) {
	t.Lock()
	obj, ok := t.objects[h]
	delete(t.objects, h)
	t.Unlock()
	if !ok {
		return nil, errors.Wrapf(ErrInvalidHandle, "handle %#x", uintptr(h))
	}
	<-t.tickets
	return obj, nil
}

func (t *handleTable) len() int {
	t.Lock()
	defer t.Unlock()
	return len(t.objects)
}
