package client

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SessionCookieName is the cookie Kismet uses to carry the session token.
const SessionCookieName = "KISMET"

// Credentials are HTTP basic-auth credentials.
type Credentials struct {
	Username string
	Password string
}

// Session is the authentication state of one client: the cached session
// cookie, the file it is persisted to and optional basic-auth credentials.
//
// The cookie file is not locked. Several processes sharing one file may race
// and the last writer wins; the cache only saves logins.
type Session struct {
	path   string
	cookie string
	creds  *Credentials
}

// LoadSession creates a session persisted at path, reading a previously
// cached cookie if the file exists. A missing or unreadable file is not an
// error; the session starts empty. An empty path disables persistence.
func LoadSession(path string, creds *Credentials) *Session {
	s := &Session{path: expandHome(path), creds: creds}
	if s.path == "" {
		return s
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("failed to read session cache",
				slog.String("path", s.path),
				slog.String("error", err.Error()),
			)
		}
		return s
	}

	s.cookie = strings.TrimSpace(string(data))
	return s
}

// Path returns the expanded cache file path.
func (s *Session) Path() string {
	return s.path
}

// Cookie returns the current session cookie value, or "" when there is none.
func (s *Session) Cookie() string {
	return s.cookie
}

// Save stores cookie in memory and overwrites the cache file. Empty values
// are ignored. A write failure is logged and otherwise ignored: the client
// keeps working without persistence.
func (s *Session) Save(cookie string) {
	if cookie == "" {
		return
	}
	s.cookie = cookie
	if s.path == "" {
		return
	}

	if err := os.WriteFile(s.path, []byte(cookie), 0o600); err != nil {
		slog.Warn("failed to save session cache",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
	}
}

// Attach adds the cached cookie and basic-auth credentials to req.
func (s *Session) Attach(req *http.Request) {
	if s.cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: s.cookie})
	}
	if s.creds != nil {
		req.SetBasicAuth(s.creds.Username, s.creds.Password)
	}
}

// Update records the session cookie set by resp, if any. A response that
// sets no cookie, or an empty one, leaves the session as it was.
func (s *Session) Update(resp *http.Response) {
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookieName && ck.Value != "" {
			s.Save(ck.Value)
			return
		}
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("cannot expand session cache path",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return path
	}
	return filepath.Join(home, path[1:])
}
