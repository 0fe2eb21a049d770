package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/frankli0324/go-geturl/internal/header"
	"github.com/frankli0324/go-geturl/internal/inet/transport/chunked"
)

type Response struct {
	Proto      string
	Status     string
	StatusCode int
	Header     http.Header

	ContentLength int64
	Body          io.Reader
}

// WriteHead writes the request line and header section of an HTTP/1.1
// request, e.g.:
//
//	GET / HTTP/1.1\r\n
//	Host: www.google.com\r\n
//	X-Xx-Yy: cccccc\r\n
//	\r\n
//
// The fields are written as ISO-8859-1 bytes.
func WriteHead(w io.Writer, method, target, host string, fields header.Fields) error {
	block, err := header.Encode(fields)
	if err != nil {
		return err
	}
	head := bufio.NewWriter(w) // default bufsize is 4096

	head.WriteString(method)
	head.WriteByte(' ')
	head.WriteString(target)
	head.WriteString(" HTTP/1.1\r\n")
	head.WriteString("Host: ")
	head.WriteString(host)
	head.WriteString("\r\n")
	if _, err := head.Write(block); err != nil {
		return err
	}
	return head.Flush()
}

// ReadResponse reads a response head from br and frames its body. Interim
// 1xx responses are skipped. For a successful CONNECT the body is empty and
// br continues with the tunnelled stream.
func ReadResponse(br *bufio.Reader, method string) (*Response, error) {
	tp := textproto.NewReader(br)
	for {
		resp, err := readHead(tp)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != http.StatusSwitchingProtocols {
			continue
		}
		if err := readTransfer(br, method, resp); err != nil {
			return nil, err
		}
		return resp, nil
	}
}

func readHead(tp *textproto.Reader) (*Response, error) {
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return nil, errors.New("malformed HTTP response " + strconv.Quote(line))
	}
	resp := &Response{Proto: proto, Status: strings.TrimLeft(status, " ")}

	statusCode, _, _ := strings.Cut(resp.Status, " ")
	if len(statusCode) != 3 {
		return nil, errors.New("malformed HTTP status code " + strconv.Quote(statusCode))
	}
	resp.StatusCode, err = strconv.Atoi(statusCode)
	if err != nil || resp.StatusCode < 0 {
		return nil, errors.New("malformed HTTP status code " + strconv.Quote(statusCode))
	}

	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	resp.Header = http.Header(mimeHeader)
	return resp, nil
}

func readTransfer(br *bufio.Reader, method string, resp *Response) error {
	contentLens := resp.Header["Content-Length"]

	// Hardening against HTTP request smuggling, taken from standard library
	if len(contentLens) > 1 {
		// Per RFC 7230 Section 3.3.2
		first := textproto.TrimString(contentLens[0])
		for _, ct := range contentLens[1:] {
			if first != textproto.TrimString(ct) {
				return fmt.Errorf("http: message cannot contain multiple Content-Length headers; got %q", contentLens)
			}
		}
		contentLens = []string{first}
	}

	cl := int64(-1)
	if len(contentLens) > 0 {
		n, err := strconv.ParseUint(textproto.TrimString(contentLens[0]), 10, 63)
		if err != nil {
			return fmt.Errorf("http: bad Content-Length %q", contentLens[0])
		}
		cl = int64(n)
	}

	switch {
	case method == http.MethodConnect && resp.StatusCode/100 == 2,
		resp.StatusCode == http.StatusNoContent,
		resp.StatusCode == http.StatusNotModified:
		resp.ContentLength = 0
		resp.Body = http.NoBody
		return nil
	case isChunked(resp.Header):
		resp.ContentLength = -1
		resp.Body = chunked.NewReader(br)
		return nil
	}

	resp.ContentLength = cl
	switch {
	case cl > 0:
		resp.Body = &lengthReader{br, cl}
	case cl == 0:
		resp.Body = http.NoBody
	default:
		resp.Body = br // delimited by connection close
	}
	return nil
}

func isChunked(h http.Header) bool {
	te := h.Values("Transfer-Encoding")
	if len(te) == 0 {
		return false
	}
	codings := strings.Split(te[len(te)-1], ",")
	return strings.EqualFold(textproto.TrimString(codings[len(codings)-1]), "chunked")
}

// lengthReader is an [io.LimitReader] that reports a body cut short by the
// peer as [io.ErrUnexpectedEOF] instead of a clean end of stream.
type lengthReader struct {
	r io.Reader
	n int64
}

func (l *lengthReader) Read(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if err == io.EOF && l.n > 0 {
		err = io.ErrUnexpectedEOF
	} else if err == io.EOF {
		err = nil
	}
	return n, err
}
