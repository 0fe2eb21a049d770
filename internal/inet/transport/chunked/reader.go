package chunked

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var (
	ErrMalformed = errors.New("malformed chunked encoding")
	ErrTooLarge  = errors.New("http chunk length too large")
)

// NewReader decodes a chunked transfer-coded body. Chunk extensions and
// trailers are read and discarded.
func NewReader(r io.Reader) io.Reader {
	var br *bufio.Reader
	if v, ok := r.(*bufio.Reader); ok {
		br = v
	} else {
		br = bufio.NewReader(r)
	}
	return &chunkedReader{Reader: br}
}

type chunkedReader struct {
	*bufio.Reader
	remaining int64 // bytes left in the current chunk
	started   bool
	done      bool
	err       error
}

func (c *chunkedReader) readLine() ([]byte, error) {
	line, isPrefix, err := c.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if isPrefix {
		return nil, ErrTooLarge
	}
	return line, nil
}

func (c *chunkedReader) readChunkHeader() (size int64, err error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimRight(line, " \t")
	if len(line) == 0 {
		return 0, ErrMalformed
	}
	if len(line) > 15 {
		return 0, ErrTooLarge
	}
	for _, b := range line {
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, errors.New("invalid byte in chunk length")
		}
		size <<= 4
		size |= int64(b)
	}
	return size, nil
}

func (c *chunkedReader) readCRLF() error {
	dr, err := c.ReadByte()
	if err == nil {
		var dn byte
		dn, err = c.ReadByte()
		if err == nil && (dr != '\r' || dn != '\n') {
			return ErrMalformed
		}
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (c *chunkedReader) Read(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.done {
		return 0, io.EOF
	}
	if !c.started || c.remaining == 0 {
		if c.started {
			if err := c.readCRLF(); err != nil {
				c.err = err
				return 0, err
			}
		}
		c.started = true
		size, err := c.readChunkHeader()
		if err != nil {
			c.err = err
			return 0, err
		}
		if size == 0 {
			// trailer section ends with an empty line
			for {
				line, err := c.readLine()
				if err != nil {
					c.err = err
					return 0, err
				}
				if len(line) == 0 {
					break
				}
			}
			c.done = true
			return 0, io.EOF
		}
		c.remaining = size
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err = c.Reader.Read(p)
	c.remaining -= int64(n)
	if err == io.EOF {
		if c.remaining != 0 {
			err = io.ErrUnexpectedEOF
		} else {
			err = nil
		}
	}
	if err != nil {
		c.err = err
	}
	return n, err
}
