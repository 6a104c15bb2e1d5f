// Package kismettest runs an in-process fake of the Kismet REST API for
// tests. It serves a configurable device table with the same field
// simplification, regex filtering, ekjson streaming and session cookie
// behavior as the real server.
package kismettest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/usestring/kismetrest/pkg/fieldpath"
)

// CookieName is the session cookie the fake issues.
const CookieName = "KISMET"

// Request is one request received by the fake.
type Request struct {
	Method  string
	Path    string
	Command map[string]any // decoded "json" form field of a POST, nil if absent or empty
	RawJSON string         // the "json" form field as sent
	Cookie  string         // KISMET cookie sent by the client
	User    string         // basic-auth user, if any
}

// Server is a fake Kismet server.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	devices   []map[string]any
	docs      map[string]any
	username  string
	password  string
	cookie    string
	now       func() time.Time
	requests  []Request
	overrides map[string]http.HandlerFunc
	mux       *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithDevices sets the device table.
func WithDevices(devices ...map[string]any) Option {
	return func(s *Server) {
		s.devices = append(s.devices, devices...)
	}
}

// WithLogin makes every endpoint require basic auth with these credentials,
// or the session cookie issued after a successful login.
func WithLogin(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithSessionCookie sets the cookie value handed out on successful
// responses. Without it no cookie is set.
func WithSessionCookie(value string) Option {
	return func(s *Server) {
		s.cookie = value
	}
}

// WithClock sets the clock relative timestamps are resolved against.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithDocument serves v as JSON for GET requests to path (for example
// "/system/status.json").
func WithDocument(path string, v any) Option {
	return func(s *Server) {
		s.docs[path] = v
	}
}

// New starts a fake server that is shut down when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		docs:      defaultDocuments(),
		now:       time.Now,
		overrides: make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux = s.routes()
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Override replaces the handler for an exact path. Use it to inject
// malformed bodies or error statuses.
func (s *Server) Override(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = h
}

// SetSessionCookie changes the cookie value handed out from now on.
func (s *Server) SetSessionCookie(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = value
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.Lock()
	override := s.overrides[r.URL.Path]
	s.mu.Unlock()
	if override != nil {
		override(w, r)
		return
	}

	if !s.authorized(r) {
		http.Error(w, "Login required", http.StatusUnauthorized)
		return
	}
	s.setCookie(w)

	s.mux.ServeHTTP(w, r)
}

func (s *Server) record(r *http.Request) {
	req := Request{Method: r.Method, Path: r.URL.Path}
	if ck, err := r.Cookie(CookieName); err == nil {
		req.Cookie = ck.Value
	}
	if user, _, ok := r.BasicAuth(); ok {
		req.User = user
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			req.RawJSON = r.PostForm.Get("json")
			if req.RawJSON != "" {
				var cmd map[string]any
				if json.Unmarshal([]byte(req.RawJSON), &cmd) == nil {
					req.Command = cmd
				}
			}
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.username == "" {
		return true
	}
	if user, pass, ok := r.BasicAuth(); ok && user == s.username && pass == s.password {
		return true
	}
	if ck, err := r.Cookie(CookieName); err == nil && s.cookie != "" && ck.Value == s.cookie {
		return true
	}
	return false
}

func (s *Server) setCookie(w http.ResponseWriter) {
	s.mu.Lock()
	value := s.cookie
	s.mu.Unlock()
	if value != "" {
		http.SetCookie(w, &http.Cookie{Name: CookieName, Value: value, Path: "/"})
	}
}

// query is the subset of a command body the fake understands.
type query struct {
	Fields   fieldpath.Fields `json:"fields"`
	Regex    fieldpath.Regex  `json:"regex"`
	Devices  []string         `json:"devices"`
	LastTime *float64         `json:"last_time"`
}

func parseQuery(raw string) (*query, error) {
	q := &query{}
	if raw == "" {
		return q, nil
	}
	if err := json.Unmarshal([]byte(raw), q); err != nil {
		return nil, err
	}
	return q, nil
}

// sinceCutoff converts a Kismet timestamp into an absolute one; negative
// values are relative to now.
func (s *Server) sinceCutoff(ts float64) float64 {
	if ts < 0 {
		return float64(s.now().Unix()) + ts
	}
	return ts
}

func (s *Server) snapshot() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.devices...)
}

func lastTime(dev map[string]any) float64 {
	v, _ := dev["kismet.device.base.last_time"].(float64)
	return v
}

func parseTimestamp(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeEKJSON writes one document per line.
func writeEKJSON(w http.ResponseWriter, records []any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	for _, rec := range records {
		_ = enc.Encode(rec)
	}
}
