package client

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSession_MissingFile(t *testing.T) {
	s := LoadSession(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Empty(t, s.Cookie())
}

func TestLoadSession_ReadsCookie(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("cached-token\n"), 0o600))

	s := LoadSession(path, nil)
	assert.Equal(t, "cached-token", s.Cookie())
}

func TestLoadSession_UnreadableIsNotFatal(t *testing.T) {
	// A directory cannot be read as a file.
	s := LoadSession(t.TempDir(), nil)
	assert.Empty(t, s.Cookie())
}

func TestLoadSession_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s := LoadSession("~/.kismet_session", nil)
	assert.Equal(t, filepath.Join(home, ".kismet_session"), s.Path())
}

func TestSession_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	s := LoadSession(path, nil)

	s.Save("")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty cookie must not create the cache")

	s.Save("fresh")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
	assert.Equal(t, "fresh", s.Cookie())
}

func TestSession_SaveFailureIsIgnored(t *testing.T) {
	s := LoadSession(filepath.Join(t.TempDir(), "missing-dir", "session"), nil)

	assert.NotPanics(t, func() { s.Save("token") })
	assert.Equal(t, "token", s.Cookie())
}

func TestSession_Attach(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))
	s := LoadSession(path, &Credentials{Username: "kismet", Password: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/system/status.json", nil)
	s.Attach(req)

	ck, err := req.Cookie(SessionCookieName)
	require.NoError(t, err)
	assert.Equal(t, "abc", ck.Value)

	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "kismet", user)
	assert.Equal(t, "secret", pass)
}

func TestSession_AttachWithoutState(t *testing.T) {
	s := LoadSession("", nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s.Attach(req)

	assert.Empty(t, req.Header.Get("Cookie"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSession_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	s := LoadSession(path, nil)

	respond := func(cookies ...*http.Cookie) *http.Response {
		rec := httptest.NewRecorder()
		for _, ck := range cookies {
			http.SetCookie(rec, ck)
		}
		return rec.Result()
	}

	// No session cookie: the loaded value stays.
	s.Update(respond(&http.Cookie{Name: "other", Value: "x"}))
	assert.Equal(t, "stale", s.Cookie())

	s.Update(respond(&http.Cookie{Name: SessionCookieName, Value: "newer"}))
	assert.Equal(t, "newer", s.Cookie())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "newer", string(data))
}
