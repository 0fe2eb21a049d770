//go:build windows
// +build windows

// Package wininet implements [native.API] on top of wininet.dll.
package wininet

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/frankli0324/go-geturl/internal/native"
)

var (
	modwininet = windows.NewLazySystemDLL("wininet.dll")

	procInternetOpenW          = modwininet.NewProc("InternetOpenW")
	procInternetConnectW       = modwininet.NewProc("InternetConnectW")
	procHttpOpenRequestW       = modwininet.NewProc("HttpOpenRequestW")
	procHttpAddRequestHeadersW = modwininet.NewProc("HttpAddRequestHeadersW")
	procHttpSendRequestW       = modwininet.NewProc("HttpSendRequestW")
	procInternetReadFile       = modwininet.NewProc("InternetReadFile")
	procInternetCloseHandle    = modwininet.NewProc("InternetCloseHandle")
)

const (
	internetOpenTypePreconfig = 0
	internetServiceHTTP       = 3
	internetFlagSecure        = 0x00800000
	httpAddreqFlagAdd         = 0x20000000
	httpAddreqFlagReplace     = 0x80000000

	maxRead = 1 << 30
)

// API is the WinINet backed [native.API]. The zero value is ready to use.
type API struct{}

var _ native.API = API{}

// lastError turns the error returned by LazyProc.Call into the thread's last
// error, which is always set when a WinINet call fails.
func lastError(err error) error {
	if errno, ok := err.(windows.Errno); ok && errno != 0 {
		return errno
	}
	return errors.New("wininet: call failed without an error code")
}

// optional returns nil for the empty string, as WinINet expects NULL for
// absent optional strings.
func optional(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	return windows.UTF16PtrFromString(s)
}

func (API) Open(agent string) (native.Handle, error) {
	a, err := windows.UTF16PtrFromString(agent)
	if err != nil {
		return 0, err
	}
	h, _, err := procInternetOpenW.Call(
		uintptr(unsafe.Pointer(a)),
		internetOpenTypePreconfig,
		0, // proxy name
		0, // proxy bypass
		0, // flags
	)
	if h == 0 {
		return 0, lastError(err)
	}
	return native.Handle(h), nil
}

func (API) Connect(session native.Handle, host string, port uint16, user, password string) (native.Handle, error) {
	hp, err := windows.UTF16PtrFromString(host)
	if err != nil {
		return 0, err
	}
	up, err := optional(user)
	if err != nil {
		return 0, err
	}
	pp, err := optional(password)
	if err != nil {
		return 0, err
	}
	h, _, err := procInternetConnectW.Call(
		uintptr(session),
		uintptr(unsafe.Pointer(hp)),
		uintptr(port),
		uintptr(unsafe.Pointer(up)),
		uintptr(unsafe.Pointer(pp)),
		internetServiceHTTP,
		0, // flags
		0, // context
	)
	if h == 0 {
		return 0, lastError(err)
	}
	return native.Handle(h), nil
}

func (API) OpenRequest(conn native.Handle, verb, object string, secure bool) (native.Handle, error) {
	vp, err := windows.UTF16PtrFromString(verb)
	if err != nil {
		return 0, err
	}
	op, err := windows.UTF16PtrFromString(object)
	if err != nil {
		return 0, err
	}
	var flags uintptr
	if secure {
		flags |= internetFlagSecure
	}
	h, _, err := procHttpOpenRequestW.Call(
		uintptr(conn),
		uintptr(unsafe.Pointer(vp)),
		uintptr(unsafe.Pointer(op)),
		0, // version, HTTP/1.1
		0, // referrer
		0, // accept types
		flags,
		0, // context
	)
	if h == 0 {
		return 0, lastError(err)
	}
	return native.Handle(h), nil
}

// AddHeaders widens every ISO-8859-1 byte of block into one UTF-16 unit.
func (API) AddHeaders(req native.Handle, block []byte) error {
	if len(block) == 0 {
		return nil
	}
	if uint64(len(block)) > math.MaxUint32 {
		return errors.New("wininet: header block too long")
	}
	wide := make([]uint16, len(block))
	for i, b := range block {
		wide[i] = uint16(b)
	}
	ok, _, err := procHttpAddRequestHeadersW.Call(
		uintptr(req),
		uintptr(unsafe.Pointer(&wide[0])),
		uintptr(len(wide)),
		httpAddreqFlagAdd|httpAddreqFlagReplace,
	)
	if ok == 0 {
		return lastError(err)
	}
	return nil
}

func (API) Send(req native.Handle) error {
	ok, _, err := procHttpSendRequestW.Call(
		uintptr(req),
		0, // headers, already added
		0,
		0, // optional data
		0,
	)
	if ok == 0 {
		return lastError(err)
	}
	return nil
}

func (API) Read(req native.Handle, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) > maxRead {
		p = p[:maxRead]
	}
	var n uint32
	ok, _, err := procInternetReadFile.Call(
		uintptr(req),
		uintptr(unsafe.Pointer(&p[0])),
		uintptr(len(p)),
		uintptr(unsafe.Pointer(&n)),
	)
	if ok == 0 {
		return 0, lastError(err)
	}
	return int(n), nil
}

func (API) Close(h native.Handle) error {
	ok, _, err := procInternetCloseHandle.Call(uintptr(h))
	if ok == 0 {
		return lastError(err)
	}
	return nil
}
