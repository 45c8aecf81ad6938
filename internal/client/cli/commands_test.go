package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/dmitrijs2005/outreach/internal/logging"
	"github.com/dmitrijs2005/outreach/internal/server/auth"
	"github.com/dmitrijs2005/outreach/internal/server/config"
	"github.com/dmitrijs2005/outreach/internal/server/httpapi"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/outreach/internal/server/services"
	"github.com/dmitrijs2005/outreach/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// startServer runs the real auth API over the in-memory store.
func startServer(t *testing.T) string {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rm := repomanager.NewMemoryRepositoryManager()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec, err := auth.NewSessionCodec([]byte("cli-test-secret"))
	require.NoError(t, err)
	sessions := session.NewManager(codec, rm.Users(nil), logger)

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	srv := httptest.NewServer(httpapi.NewRouter(httpapi.Deps{
		Auth:     services.NewAuthService(nil, rm, hasher, sessions, logger, &cfg),
		Sessions: sessions,
		Cookie:   session.CookieOptions{Name: common.SessionCookieName},
		Logger:   logger,
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type runner struct {
	server      string
	sessionFile string
}

func (r runner) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(strings.NewReader(input), &out)
	cmd.SetArgs(append(args, "--server", r.server, "--session-file", r.sessionFile))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newRunner(t *testing.T) runner {
	t.Helper()
	withTerminal(t, false, nil, nil)
	return runner{
		server:      startServer(t),
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func TestCLI_FullFlow(t *testing.T) {
	r := newRunner(t)

	out, err := r.run(t, "secret1\n", "register", "--email", "alice@example.com", "--name", "Alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered alice@example.com")
	_, err = os.Stat(r.sessionFile)
	assert.True(t, os.IsNotExist(err), "register must not store a session")

	_, err = r.run(t, "", "whoami")
	require.EqualError(t, err, "not logged in")

	out, err = r.run(t, "alice@example.com\nsecret1\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice@example.com")

	fi, err := os.Stat(r.sessionFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	out, err = r.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice <alice@example.com>")

	out, err = r.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = os.Stat(r.sessionFile)
	assert.True(t, os.IsNotExist(err))

	_, err = r.run(t, "", "whoami")
	require.EqualError(t, err, "not logged in")
}

func TestCLI_LoginWrongPassword(t *testing.T) {
	r := newRunner(t)

	_, err := r.run(t, "secret1\n", "register", "-e", "bob@example.com", "-n", "Bob")
	require.NoError(t, err)

	_, err = r.run(t, "wrong-password\n", "login", "-e", "bob@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), common.ErrInvalidCredentials.Error())
	_, statErr := os.Stat(r.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCLI_RegisterWeakPassword(t *testing.T) {
	r := newRunner(t)

	_, err := r.run(t, "abc\n", "register", "-e", "carol@example.com", "-n", "Carol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), common.ErrWeakPassword.Error())
}

func TestCLI_SessionBoundToServer(t *testing.T) {
	r := newRunner(t)

	_, err := r.run(t, "secret1\n", "register", "-e", "dave@example.com", "-n", "Dave")
	require.NoError(t, err)
	_, err = r.run(t, "secret1\n", "login", "-e", "dave@example.com")
	require.NoError(t, err)

	other := runner{server: startServer(t), sessionFile: r.sessionFile}
	_, err = other.run(t, "", "whoami")
	require.EqualError(t, err, "not logged in")

	out, err := r.run(t, "", "whoami")
	require.NoError(t, err, "the first server's session must survive")
	assert.Contains(t, out, "dave@example.com")
}

func TestLoadSession_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadSession(path, "http://x")
	assert.Error(t, err)
}
