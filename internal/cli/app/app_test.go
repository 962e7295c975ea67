package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/store"
	"github.com/castvote-dev/castvote/internal/cli/ui"
	"github.com/castvote-dev/castvote/internal/config"
)

type testApp struct {
	*App
	store store.Store
	out   *bytes.Buffer
	err   *bytes.Buffer
}

func newTestApp(t *testing.T, baseURL string) *testApp {
	t.Helper()

	s := store.NewMemory()
	if baseURL != "" {
		require.NoError(t, s.Save(store.KeyBaseURL, baseURL))
	}

	var out, errOut bytes.Buffer
	cfg := &config.CLIConfig{Timeout: 2 * time.Second, TokenStore: config.TokenStoreFile}

	a, err := New(cfg, zerolog.Nop(), WithStore(s), WithConsole(&ui.Console{Out: &out, Err: &errOut}))
	require.NoError(t, err)

	return &testApp{App: a, store: s, out: &out, err: &errOut}
}

func loginAs(t *testing.T, a *testApp, admin bool) {
	t.Helper()
	user := `{"id":"7","name":"Ana","email":"a@x.io","isAdmin":false}`
	if admin {
		user = `{"id":"7","name":"Ana","email":"a@x.io","isAdmin":true}`
	}
	require.NoError(t, a.store.Save(store.KeyToken, "T"))
	require.NoError(t, a.store.Save(store.KeyUser, user))
}

func TestEnter_PublicRoute(t *testing.T) {
	a := newTestApp(t, "")
	require.NoError(t, a.Enter(context.Background(), guard.Login))
	assert.Equal(t, guard.Login.Path, a.Location())
}

func TestEnter_ProtectedRouteRedirectsToLogin(t *testing.T) {
	a := newTestApp(t, "")

	err := a.Enter(context.Background(), guard.Vote)
	require.ErrorIs(t, err, ErrRedirected)

	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, guard.Login.Path, redirect.Target)
	assert.Equal(t, guard.Login.Path, a.Location())
	assert.Contains(t, a.err.String(), "castvote login")
}

func TestEnter_AdminRouteAsUser(t *testing.T) {
	a := newTestApp(t, "")
	loginAs(t, a, false)

	err := a.Enter(context.Background(), guard.Admin)

	var redirect *RedirectError
	require.True(t, errors.As(err, &redirect))
	assert.Equal(t, guard.Unauthorized.Path, redirect.Target)
	assert.Contains(t, a.err.String(), "Access denied")
}

func TestEnter_AdminRouteAsAdmin(t *testing.T) {
	a := newTestApp(t, "")
	loginAs(t, a, true)

	require.NoError(t, a.Enter(context.Background(), guard.Admin))
}

func TestApply_UnauthorizedTearsDownSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	loginAs(t, a, false)
	require.NoError(t, a.Enter(context.Background(), guard.Vote))

	_, err := a.Client.ListCandidates(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.False(t, a.Session.Snapshot().Authenticated())
	assert.Equal(t, guard.Login.Path, a.Location())
	assert.Contains(t, a.err.String(), client.MsgSessionExpired)

	_, ok, _ := a.store.Load(store.KeyToken)
	assert.False(t, ok)
	_, ok, _ = a.store.Load(store.KeyUser)
	assert.False(t, ok)
}

func TestApply_NotifyOnly(t *testing.T) {
	a := newTestApp(t, "")

	a.Apply(context.Background(), []client.Effect{
		client.Notify{Message: client.MsgForbidden, Severity: client.SeverityError},
	})

	assert.Contains(t, a.err.String(), client.MsgForbidden)
	assert.Equal(t, guard.Home.Path, a.Location())
}

func TestContextRoundTrip(t *testing.T) {
	a := newTestApp(t, "")
	ctx := NewContext(context.Background(), a.App)
	assert.Same(t, a.App, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestOpenStore(t *testing.T) {
	cfg := &config.CLIConfig{ConfigDir: t.TempDir(), TokenStore: config.TokenStoreFile}

	s, err := OpenStore(cfg, false)
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)

	cfg.TokenStore = config.TokenStoreKeyring
	s, err = OpenStore(cfg, false)
	require.NoError(t, err)
	assert.IsType(t, &store.Routed{}, s)

	s, err = OpenStore(cfg, true)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, s)
}
