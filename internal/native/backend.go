package native

import (
	"io"

	"k8s.io/klog/v2"

	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/model"
)

// Response is a live GET response backed by API handles. It must be closed.
//
// Read and Close must not be called concurrently: closing the handles while
// a Read is blocked in the API is not supported.
type Response[A API] struct {
	api                A
	session, conn, req Handle
	eof, closed        bool
	err                error
}

// Open performs the session, connect, open request, add headers, send
// sequence for rawURL. Handles acquired before a failing step are released
// in reverse order before Open returns, including when a step panics.
func Open[A API](api A, rawURL string, fields header.Fields) (*Response[A], error) {
	target, err := model.ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	fields, agent := header.Negotiate(fields, model.Agent)
	block, err := header.Encode(fields)
	if err != nil {
		return nil, err
	}

	r := &Response[A]{api: api}
	ok := false
	defer func() {
		if !ok {
			r.release()
		}
	}()

	var h Handle
	if h, err = api.Open(agent); err != nil {
		return nil, model.Wrap(model.KindResource, "open session", err)
	}
	r.session = h
	klog.V(4).Infof("native: session %#x opened as %q", h, agent)

	if h, err = api.Connect(r.session, target.Host, target.Port, target.User, target.Password); err != nil {
		return nil, model.Wrap(model.KindResource, "connect "+target.HostPort(), err)
	}
	r.conn = h

	if h, err = api.OpenRequest(r.conn, "GET", target.Object, target.Secure); err != nil {
		return nil, model.Wrap(model.KindResource, "open request "+target.Object, err)
	}
	r.req = h

	if err = api.AddHeaders(r.req, block); err != nil {
		return nil, model.Wrap(model.KindResource, "add request headers", err)
	}
	if err = api.Send(r.req); err != nil {
		return nil, model.Wrap(model.KindResource, "send request", err)
	}
	ok = true
	return r, nil
}

func (r *Response[A]) Read(p []byte) (int, error) {
	switch {
	case r.closed:
		return 0, model.ErrClosed
	case r.err != nil:
		return 0, r.err
	case r.eof:
		return 0, io.EOF
	case len(p) == 0:
		return 0, nil
	}
	n, err := r.api.Read(r.req, p)
	if err != nil {
		r.err = model.Wrap(model.KindIO, "read response", err)
		return 0, r.err
	}
	if n == 0 {
		r.eof = true
		return 0, io.EOF
	}
	return n, nil
}

// Close releases the request, connection and session handles. Release
// failures are logged, never returned. Close is idempotent.
func (r *Response[A]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.release()
	return nil
}

func (r *Response[A]) release() {
	for _, h := range []struct {
		name   string
		handle *Handle
	}{
		{"request", &r.req},
		{"connection", &r.conn},
		{"session", &r.session},
	} {
		if *h.handle == 0 {
			continue
		}
		if err := r.api.Close(*h.handle); err != nil {
			klog.Errorf("native: failed to close %s handle %#x: %v", h.name, *h.handle, err)
		} else {
			klog.V(4).Infof("native: closed %s handle %#x", h.name, *h.handle)
		}
		*h.handle = 0
	}
}
