package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/store"
	"github.com/castvote-dev/castvote/internal/cli/tally"
	"github.com/castvote-dev/castvote/internal/cli/ui"
	"github.com/castvote-dev/castvote/internal/config"
	"github.com/castvote-dev/castvote/internal/server"
)

// newLoggedInApp returns an App logged in as the seeded voter
func newLoggedInApp(t *testing.T) (*app.App, *bytes.Buffer) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	srv, err := server.New(&config.ServerConfig{
		Database:  config.DatabaseConfig{URL: "file:" + name + "?mode=memory&cache=shared"},
		JWTSecret: "test-secret",
	}, zerolog.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	s := store.NewMemory()
	require.NoError(t, s.Save(store.KeyBaseURL, ts.URL+"/api"))

	var out bytes.Buffer
	cfg := &config.CLIConfig{Timeout: 5 * time.Second, TokenStore: config.TokenStoreFile}
	a, err := app.New(cfg, zerolog.Nop(), app.WithStore(s), app.WithConsole(&ui.Console{Out: &out, Err: &out}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, guard.Login))
	_, err = a.Session.Login(ctx, "voter@castvote.local", "voter123")
	require.NoError(t, err)
	require.NoError(t, a.Enter(ctx, guard.Vote))

	out.Reset()
	return a, &out
}

func TestRouteOf(t *testing.T) {
	admin := NewAdminCmd()
	var list *cobra.Command
	for _, group := range admin.Commands() {
		for _, sub := range group.Commands() {
			if sub.Name() == "ls" {
				list = sub
			}
		}
	}
	require.NotNil(t, list)

	route, ok := RouteOf(list)
	require.True(t, ok)
	assert.Equal(t, guard.Admin, route)

	_, ok = RouteOf(NewVersionCmd("dev"))
	assert.False(t, ok)

	route, ok = RouteOf(NewResultsCmd())
	require.True(t, ok)
	assert.True(t, route.RequiresAuth)
}

func TestRenderResults(t *testing.T) {
	var out bytes.Buffer
	renderResults(&out, tally.Summarize([]client.Candidate{
		{ID: "1", Name: "Jane Smith", Party: "Progressive Party", VoteCount: 145},
		{ID: "2", Name: "John Doe", Party: "Conservative Party", VoteCount: 120},
	}))

	text := out.String()
	assert.Contains(t, text, "Total votes: 265")
	assert.Contains(t, text, "54.7%")
	assert.Contains(t, text, "45.3%")
	assert.Less(t, strings.Index(text, "Jane Smith"), strings.Index(text, "John Doe"))
}

func TestRenderResults_NoVotes(t *testing.T) {
	var out bytes.Buffer
	renderResults(&out, tally.Summarize([]client.Candidate{{ID: "1", Name: "Jane Smith"}}))

	assert.Contains(t, out.String(), "Total votes: 0")
	assert.Contains(t, out.String(), "0%")
}

func TestRunVote_NonInteractiveNeedsID(t *testing.T) {
	a, out := newLoggedInApp(t)

	err := runVote(context.Background(), a, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate ID is required")
	assert.Contains(t, out.String(), "Jane Smith")
}

// newVoterApp returns an App with a restored session for voter 7 against handler
func newVoterApp(t *testing.T, handler http.Handler) (*app.App, *bytes.Buffer) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	s := store.NewMemory()
	require.NoError(t, s.Save(store.KeyBaseURL, ts.URL+"/api"))
	require.NoError(t, s.Save(store.KeyToken, "voter-token"))
	require.NoError(t, s.Save(store.KeyUser, `{"id":"7","name":"Ada","email":"ada@castvote.local","isAdmin":false}`))

	var out, errOut bytes.Buffer
	cfg := &config.CLIConfig{Timeout: 5 * time.Second, TokenStore: config.TokenStoreFile}
	a, err := app.New(cfg, zerolog.Nop(), app.WithStore(s), app.WithConsole(&ui.Console{Out: &out, Err: &errOut}))
	require.NoError(t, err)
	require.NoError(t, a.Enter(context.Background(), guard.Vote))

	return a, &errOut
}

func TestRunVote_OneFetchFails(t *testing.T) {
	tests := []struct {
		name          string
		candidates    int
		status        int
		kind          client.Kind
		notice        string
		authenticated bool
		location      string
	}{
		{"candidates forbidden", http.StatusForbidden, http.StatusOK, client.KindForbidden, client.MsgForbidden, true, guard.Vote.Path},
		{"vote status unauthorized", http.StatusOK, http.StatusUnauthorized, client.KindUnauthorized, client.MsgSessionExpired, false, guard.Login.Path},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var served atomic.Int32
			mux := http.NewServeMux()
			respond := func(status int, body string) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					// The successful sibling answers late so the failure lands first
					if status == http.StatusOK {
						time.Sleep(150 * time.Millisecond)
					}
					served.Add(1)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(status)
					w.Write([]byte(body))
				}
			}
			mux.HandleFunc("/api/candidates", respond(tt.candidates, `[]`))
			mux.HandleFunc("/api/votes/voter/7", respond(tt.status, `{"hasVoted":false}`))

			a, errOut := newVoterApp(t, mux)

			err := runVote(context.Background(), a, "1", nil)
			require.Error(t, err)

			kind, ok := client.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)

			assert.EqualValues(t, 2, served.Load())
			assert.Equal(t, 1, strings.Count(errOut.String(), tt.notice))
			assert.NotContains(t, errOut.String(), client.MsgNetwork)
			assert.Equal(t, tt.authenticated, a.Session.Snapshot().Authenticated())
			assert.Equal(t, tt.location, a.Location())
		})
	}
}

func TestRunVote_Picker(t *testing.T) {
	a, out := newLoggedInApp(t)

	var offered []client.Candidate
	pick := func(candidates []client.Candidate) (*client.Candidate, error) {
		offered = candidates
		return &candidates[2], nil
	}

	require.NoError(t, runVote(context.Background(), a, "", pick))
	assert.Len(t, offered, 4)
	assert.Contains(t, out.String(), "Voted for: Maria Rodriguez")
	assert.Equal(t, guard.Results.Path, a.Location())
}

func TestWatchResults(t *testing.T) {
	a, out := newLoggedInApp(t)

	ctx, cancel := context.WithTimeout(context.Background(), 1800*time.Millisecond)
	defer cancel()

	require.NoError(t, watchResults(ctx, a, time.Second))
	assert.GreaterOrEqual(t, strings.Count(out.String(), "Election Results"), 2)
}

func TestWatchResults_RejectsShortInterval(t *testing.T) {
	a, _ := newLoggedInApp(t)

	err := watchResults(context.Background(), a, 10*time.Millisecond)
	require.Error(t, err)
}

func TestFormError(t *testing.T) {
	err := formError(validate.Struct(client.NewCandidate{Name: "Ada", ImageURL: "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "party is required")
	assert.Contains(t, err.Error(), "position is required")
	assert.Contains(t, err.Error(), "imageurl must be a valid URL")
}
