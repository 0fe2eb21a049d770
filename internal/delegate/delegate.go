// Package delegate satisfies the open/read contract by forwarding the request
// to resty and streaming its raw response body.
package delegate

import (
	"io"

	"github.com/go-resty/resty/v2"
	"k8s.io/klog/v2"

	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/model"
)

type Response struct {
	body        io.ReadCloser
	eof, closed bool
	err         error
}

// Open validates the URL and headers exactly like the native backend, then
// issues the GET through a dedicated resty client so that no connection is
// shared between responses.
func Open(rawURL string, fields header.Fields) (*Response, error) {
	if _, err := model.ParseTarget(rawURL); err != nil {
		return nil, err
	}
	fields, _ = header.Negotiate(fields, model.Agent)
	if _, err := header.Encode(fields); err != nil {
		return nil, err
	}

	client := resty.New().
		SetLogger(logger{}).
		SetCloseConnection(true)
	req := client.R().SetDoNotParseResponse(true)
	for _, f := range fields {
		req.SetHeaderVerbatim(f.Name, f.Value)
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, model.Wrap(model.KindResource, "send request", err)
	}
	klog.V(4).Infof("delegate: GET %s -> %s", rawURL, resp.Status())
	return &Response{body: resp.RawBody()}, nil
}

func (r *Response) Read(p []byte) (int, error) {
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
	n, err := r.body.Read(p)
	switch {
	case err == io.EOF:
		r.eof = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	case err != nil:
		r.err = model.Wrap(model.KindIO, "read response", err)
		return n, r.err
	}
	return n, nil
}

// Close releases the response body. Failures are logged, never returned.
func (r *Response) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.body.Close(); err != nil {
		klog.Errorf("delegate: failed to close response body: %v", err)
	}
	return nil
}

// logger routes resty's diagnostics to klog.
type logger struct{}

func (logger) Errorf(format string, v ...interface{}) { klog.Errorf("resty: "+format, v...) }
func (logger) Warnf(format string, v ...interface{})  { klog.Warningf("resty: "+format, v...) }
func (logger) Debugf(format string, v ...interface{}) { klog.V(5).Infof("resty: "+format, v...) }
