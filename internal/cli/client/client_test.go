package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castvote-dev/castvote/internal/cli/store"
)

// recordingEffects collects every effect batch the client applies
type recordingEffects struct {
	mu      sync.Mutex
	batches [][]Effect
}

func (r *recordingEffects) Apply(_ context.Context, effects []Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, effects)
}

func (r *recordingEffects) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// failingStore fails every read
type failingStore struct{ store.Store }

func (failingStore) Load(string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func newTestClient(t *testing.T, s store.Store, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	require.NoError(t, s.Save(store.KeyBaseURL, server.URL+"/api"))
	c, err := New(s, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c, err := New(store.NewMemory())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestNew_BaseURLCapturedOnce(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Save(store.KeyBaseURL, "http://first.example/api/"))

	c, err := New(s)
	require.NoError(t, err)
	require.NoError(t, s.Save(store.KeyBaseURL, "http://second.example/api"))

	assert.Equal(t, "http://first.example/api", c.BaseURL())
}

func TestNew_StoreFailure(t *testing.T) {
	_, err := New(failingStore{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read backend URL")
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth []string
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/candidates", r.URL.Path)
		gotAuth = r.Header.Values("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`[{"id":1,"name":"Jane Smith","party":"Progressive Party","position":"President","imageUrl":"https://x/1.jpg"}]`))
	}))
	defer server.Close()

	s := store.NewMemory()
	require.NoError(t, s.Save(store.KeyToken, "t1"))
	c := newTestClient(t, s, server)

	candidates, err := c.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, ID("1"), candidates[0].ID, "numeric ids are accepted")
	assert.Equal(t, "Jane Smith", candidates[0].Name)
	assert.Equal(t, []string{"Bearer t1"}, gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClient_TokenReadAtDispatch(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	s := store.NewMemory()
	c := newTestClient(t, s, server)

	_, err := c.ListCandidates(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Save(store.KeyToken, "late"))
	_, err = c.ListCandidates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer late"}, seen)
}

func TestClient_PlaceholderTokenNotSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Values("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	s := store.NewMemory()
	require.NoError(t, s.Save(store.KeyToken, "undefined"))
	c := newTestClient(t, s, server)

	_, err := c.Results(context.Background())
	require.NoError(t, err)
}

func TestClient_StorageFailureAbortsBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server, WithEffects(effects))
	c.store = failingStore{}

	_, err := c.ListCandidates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read session token")
	assert.False(t, called)
	assert.Zero(t, effects.count())
}

func TestClient_UnauthorizedAppliesEffectsOnceAndReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server,
		WithEffects(effects),
		WithLocation(func() string { return "/results" }),
	)

	_, err := c.Results(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, 1, effects.count())
	assert.Contains(t, effects.batches[0], Effect(RedirectTo{Route: "/login"}))
	assert.Contains(t, effects.batches[0], Effect(ClearSession{}))
}

func TestClient_LoginFailureHasNoEffects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	}))
	defer server.Close()

	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server, WithEffects(effects))

	_, err := c.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 401, StatusOf(err))
	assert.Zero(t, effects.count())
}

func TestClient_BadRequestMessageSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body CastVoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, ID("u1"), body.VoterID)
		assert.Equal(t, ID("2"), body.CandidateID)

		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"You have already cast your vote"}`))
	}))
	defer server.Close()

	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server, WithEffects(effects))

	_, err := c.CastVote(context.Background(), "u1", "2")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindBadRequest, apiErr.Kind)
	assert.Equal(t, "You have already cast your vote", apiErr.Message)
	require.Equal(t, 1, effects.count())
	assert.Equal(t, []string{"You have already cast your vote"}, notifications(effects.batches[0]))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server, WithEffects(effects), WithTimeout(50*time.Millisecond))

	_, err := c.ListCandidates(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, 1, effects.count())
	assert.Equal(t, []string{MsgTimeout}, notifications(effects.batches[0]))
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server, WithEffects(effects))
	server.Close()

	_, err := c.ListCandidates(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, []string{MsgNetwork}, notifications(effects.batches[0]))
}

func TestClient_CancelledRequestHasNoEffects(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	effects := &recordingEffects{}
	c := newTestClient(t, store.NewMemory(), server, WithEffects(effects))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := c.ListCandidates(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, effects.count())
}

func TestWithHTTPClient_CopiesCallerClient(t *testing.T) {
	s := store.NewMemory()
	supplied := &http.Client{}

	c, err := New(s, WithHTTPClient(supplied), WithTimeout(2*time.Second))
	require.NoError(t, err)

	assert.Zero(t, supplied.Timeout)
	assert.Nil(t, supplied.Jar)
	assert.NotSame(t, supplied, c.httpClient)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.NotNil(t, c.httpClient.Jar)
}

func TestWithHTTPClient_KeepsDefaultsRegardlessOfOrder(t *testing.T) {
	s := store.NewMemory()

	c, err := New(s, WithTimeout(3*time.Second), WithHTTPClient(&http.Client{}))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)

	c, err = New(s, WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.NotNil(t, c.httpClient.Jar)

	c, err = New(s, WithHTTPClient(&http.Client{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestClient_EscapesPathIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/admin/candidates/a%2Fb", r.URL.EscapedPath())
		w.Write([]byte(`{"message":"Candidate deleted"}`))
	}))
	defer server.Close()

	c := newTestClient(t, store.NewMemory(), server)
	ack, err := c.DeleteCandidate(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "Candidate deleted", ack.Message)
}

func TestClient_VoteStatusAndEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/votes/voter/u1":
			w.Write([]byte(`{"hasVoted":true,"candidateId":"3"}`))
		case "/api/admin/candidates/9":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t, store.NewMemory(), server)

	status, err := c.VoteStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, status.HasVoted)
	assert.Equal(t, ID("3"), status.CandidateID)

	ack, err := c.DeleteCandidate(context.Background(), "9")
	require.NoError(t, err)
	assert.Empty(t, ack.Message)
}

func TestCheckHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/actuator/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":"UP"}`))
	}))
	defer healthy.Close()

	h := CheckHealth(context.Background(), nil, healthy.URL+"/api/")
	assert.True(t, h.Connected)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	h = CheckHealth(context.Background(), nil, failing.URL+"/api")
	assert.False(t, h.Connected)
	assert.Equal(t, "Server responded with status 503", h.Detail)

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	h = CheckHealth(context.Background(), nil, closedURL)
	assert.False(t, h.Connected)
	assert.Equal(t, "Cannot connect to the server. Is the backend running?", h.Detail)
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x1","b":42,"c":null}`), &v))
	assert.Equal(t, ID("x1"), v.A)
	assert.Equal(t, ID("42"), v.B)
	assert.Equal(t, ID(""), v.C)
}
