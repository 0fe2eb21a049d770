package inet

import (
	"context"
	"encoding/base64"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/net/idna"
	"k8s.io/klog/v2"

	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/inet/transport"
	"github.com/frankli0324/go-geturl/internal/native"
)

var (
	ErrAlreadySent = errors.New("inet: request already sent")
	ErrNotSent     = errors.New("inet: request not sent")
)

type session struct {
	agent string
}

type connection struct {
	session        *session
	host           string // ASCII form, no brackets
	port           uint16
	user, password string
}

type request struct {
	sync.Mutex
	conn   *connection
	verb   string
	object string
	secure bool
	fields header.Fields

	sent bool
	raw  net.Conn
	resp *transport.Response
}

func (s *Stack) Open(agent string) (native.Handle, error) {
	if !httpguts.ValidHeaderFieldValue(agent) {
		return 0, errors.Errorf("inet: invalid agent %q", agent)
	}
	return s.handles.acquire(&session{agent: agent})
}

func (s *Stack) Connect(sh native.Handle, host string, port uint16, user, password string) (native.Handle, error) {
	sess, err := lookup[*session](s, sh)
	if err != nil {
		return 0, err
	}
	if host == "" || port == 0 {
		return 0, errors.Errorf("inet: invalid address %q port %d", host, port)
	}
	if net.ParseIP(host) == nil && !isASCII(host) {
		if host, err = idna.Lookup.ToASCII(host); err != nil {
			return 0, errors.Wrap(err, "inet: invalid host name")
		}
	}
	return s.handles.acquire(&connection{
		session: sess, host: host, port: port, user: user, password: password,
	})
}

func (s *Stack) OpenRequest(ch native.Handle, verb, object string, secure bool) (native.Handle, error) {
	conn, err := lookup[*connection](s, ch)
	if err != nil {
		return 0, err
	}
	if !httpguts.ValidHeaderFieldName(verb) {
		return 0, errors.Errorf("inet: invalid verb %q", verb)
	}
	if object == "" || strings.ContainsAny(object, " \t\r\n") {
		return 0, errors.Errorf("inet: invalid object name %q", object)
	}
	return s.handles.acquire(&request{conn: conn, verb: verb, object: object, secure: secure})
}

// AddHeaders decodes block and adds its fields, replacing fields of the same
// name compared case-insensitively.
func (s *Stack) AddHeaders(rh native.Handle, block []byte) error {
	req, err := lookup[*request](s, rh)
	if err != nil {
		return err
	}
	fields, err := header.Decode(block)
	if err != nil {
		return errors.Wrap(err, "inet: invalid header block")
	}
	for _, f := range fields {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return errors.Errorf("inet: invalid header name %q", f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(f.Value) {
			return errors.Errorf("inet: invalid value for header %q", f.Name)
		}
	}
	req.Lock()
	defer req.Unlock()
	if req.sent {
		return ErrAlreadySent
	}
	for _, f := range fields {
		req.set(f.Name, f.Value)
	}
	return nil
}

func (r *request) set(name, value string) {
	for i := range r.fields {
		if strings.EqualFold(r.fields[i].Name, name) {
			r.fields[i] = header.Field{Name: name, Value: value}
			return
		}
	}
	r.fields = append(r.fields, header.Field{Name: name, Value: value})
}

func (r *request) has(name string) bool {
	for i := range r.fields {
		if strings.EqualFold(r.fields[i].Name, name) {
			return true
		}
	}
	return false
}

func (s *Stack) Send(rh native.Handle) error {
	req, err := lookup[*request](s, rh)
	if err != nil {
		return err
	}
	req.Lock()
	defer req.Unlock()
	if req.sent {
		return ErrAlreadySent
	}
	req.sent = true

	c := req.conn
	if !req.has("User-Agent") {
		req.set("User-Agent", c.session.agent)
	}
	if c.user != "" && !req.has("Authorization") {
		req.set("Authorization", "Basic "+basicAuth(c.user, c.password))
	}
	req.set("Connection", "close")

	ctx := context.Background()
	raw, br, target, err := s.dial(ctx, req)
	if err != nil {
		return err
	}
	if err := transport.WriteHead(raw, req.verb, target, hostHeader(req), req.fields); err != nil {
		raw.Close()
		return errors.Wrap(err, "inet: writing request")
	}
	resp, err := transport.ReadResponse(br, req.verb)
	if err != nil {
		raw.Close()
		return errors.Wrap(err, "inet: reading response")
	}
	klog.V(4).Infof("inet: %s %s -> %s", req.verb, target, resp.Status)
	req.raw, req.resp = raw, resp
	return nil
}

// Read reports the end of the body as 0, nil.
func (s *Stack) Read(rh native.Handle, p []byte) (int, error) {
	req, err := lookup[*request](s, rh)
	if err != nil {
		return 0, err
	}
	req.Lock()
	resp := req.resp
	req.Unlock()
	if resp == nil {
		return 0, ErrNotSent
	}
	n, err := resp.Body.Read(p)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (s *Stack) Close(h native.Handle) error {
	obj, err := s.handles.release(h)
	if err != nil {
		return err
	}
	if req, ok := obj.(*request); ok {
		req.Lock()
		defer req.Unlock()
		if req.raw != nil {
			return req.raw.Close()
		}
	}
	return nil
}

func lookup[T any](s *Stack, h native.Handle) (T, error) {
	var zero T
	obj, ok := s.handles.lookup(h)
	if !ok {
		return zero, errors.Wrapf(ErrInvalidHandle, "handle %#x", uintptr(h))
	}
	t, ok := obj.(T)
	if !ok {
		return zero, errors.Wrapf(ErrInvalidHandle, "handle %#x has type %T", uintptr(h), obj)
	}
	return t, nil
}

func basicAuth(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
