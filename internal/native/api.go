// Package native drives a handle-based system HTTP API (WinINet style):
// a session handle, a connection handle scoped to one host and a request
// handle that is sent and then read from.
package native

// Handle is an opaque reference to an API owned resource. The zero Handle
// never refers to a live resource.
type Handle uintptr

// API is the set of calls the backend needs from a handle-based HTTP stack.
// Every Handle returned by an API call must eventually be passed to Close
// exactly once.
type API interface {
	// Open creates a session that identifies itself as agent and uses the
	// system's preconfigured proxy settings.
	Open(agent string) (Handle, error)
	// Connect creates a connection handle for host:port. It is not required
	// to perform any network I/O.
	Connect(session Handle, host string, port uint16, user, password string) (Handle, error)
	// OpenRequest creates a request for object (path and query) on conn.
	OpenRequest(conn Handle, verb, object string, secure bool) (Handle, error)
	// AddHeaders attaches an ISO-8859-1 encoded header block to req. Fields
	// already present are replaced rather than duplicated.
	AddHeaders(req Handle, block []byte) error
	// Send dispatches req without a body.
	Send(req Handle) error
	// Read fills p from the response body of req. Zero bytes read with a nil
	// error means the body is exhausted.
	Read(req Handle, p []byte) (int, error)
	Close(h Handle) error
}
