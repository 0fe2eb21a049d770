// package transport contains the HTTP/1.1 *message syntax* parts of the inet
// stack: writing a request head and framing a response body.
//
// as of 2022.06, RFCs that were to define HTTP/1.1 (RFC753x) are obsoleted by:
//
//	HTTP Semantics (RFC9110)
//	HTTP Caching (RFC9111) and
//	HTTP/1.1 (RFC9112)
//
// net/http components are reused on the "semantics" part ([net/http.Header],
// [net/http.NoBody], etc.)
package transport
