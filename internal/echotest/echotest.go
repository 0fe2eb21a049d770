// Package echotest provides an httpbin-like server for end-to-end tests.
//
//	/get          {"args": ..., "headers": ..., "url": ...}
//	/headers      {"headers": ...}
//	/user-agent   {"user-agent": ...}
//	/raw-header   the raw bytes of the header named by ?name=
//	/stream       ?n= bytes of 'x', flushed in pieces (chunked)
//	/status       replies with the status in ?code= and an empty body
package echotest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
)

type Reply struct {
	Args      map[string]string `json:"args,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	URL       string            `json:"url,omitempty"`
	UserAgent string            `json:"user-agent,omitempty"`
	Method    string            `json:"method,omitempty"`
	Target    string            `json:"target,omitempty"`
}

func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		args := map[string]string{}
		for k, v := range r.URL.Query() {
			args[k] = v[0]
		}
		writeJSON(w, Reply{Args: args, Headers: headers(r), URL: fullURL(r), Method: r.Method, Target: r.RequestURI})
	})
	mux.HandleFunc("/headers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Reply{Headers: headers(r)})
	})
	mux.HandleFunc("/user-agent", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Reply{UserAgent: r.UserAgent()})
	})
	mux.HandleFunc("/raw-header", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte(r.Header.Get(r.URL.Query().Get("name"))))
	})
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		chunk := []byte(strings.Repeat("x", 1000))
		for n > 0 {
			c := chunk
			if n < len(c) {
				c = c[:n]
			}
			w.Write(c)
			w.(http.Flusher).Flush()
			n -= len(c)
		}
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.URL.Query().Get("code"))
		if err != nil {
			code = http.StatusBadRequest
		}
		w.WriteHeader(code)
	})
	return mux
}

func NewServer() *httptest.Server {
	return httptest.NewServer(Handler())
}

func NewTLSServer() *httptest.Server {
	return httptest.NewTLSServer(Handler())
}

// Decode parses a JSON reply body.
func Decode(b []byte) (Reply, error) {
	var r Reply
	err := json.Unmarshal(b, &r)
	return r, err
}

func headers(r *http.Request) map[string]string {
	h := map[string]string{}
	for k, v := range r.Header {
		h[k] = strings.Join(v, ",")
	}
	return h
}

func fullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
