package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeUser(w http.ResponseWriter, status int, token string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"user": map[string]any{
			"id":    "user-1",
			"email": "a@x.com",
			"name":  "A",
			"role":  "user",
			"token": token,
		},
	})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func newTestAgent(t *testing.T, handler http.Handler) (*Agent, *MemoryStorage) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	storage := NewMemoryStorage()
	return New(server.URL, storage, nil), storage
}

func TestInitializeWithoutCredential(t *testing.T) {
	a, _ := newTestAgent(t, http.NewServeMux())

	a.Initialize(context.Background())

	st := a.GetState()
	require.False(t, st.IsAuthenticated)
	require.False(t, st.IsCheckingAuth)
	require.Nil(t, st.Account)
}

func TestInitializeOptimisticThenRevalidates(t *testing.T) {
	release := make(chan struct{})
	var seenAuth atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/check-auth", func(w http.ResponseWriter, r *http.Request) {
		<-release
		seenAuth.Store(r.Header.Get("Authorization"))
		writeUser(w, http.StatusOK, "")
	})

	a, storage := newTestAgent(t, mux)
	require.NoError(t, storage.Set(credentialKey, "stored-token"))
	require.NoError(t, storage.Set(accountKey, `{"id":"user-1","email":"a@x.com","role":"user"}`))

	a.Initialize(context.Background())

	// Optimistic: authenticated from the cached snapshot before the server answers.
	st := a.GetState()
	require.True(t, st.IsAuthenticated)
	require.True(t, st.IsCheckingAuth)
	require.NotNil(t, st.Account)
	require.Equal(t, "user-1", st.Account.ID)

	close(release)
	require.Eventually(t, func() bool {
		st := a.GetState()
		return st.IsAuthenticated && !st.IsCheckingAuth
	}, 2*time.Second, 10*time.Millisecond)

	// The transport attached the stored credential as a bearer header.
	require.Equal(t, "Bearer stored-token", seenAuth.Load())
}

func TestInitializeRevalidationFailureClears(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/check-auth", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "Invalid token")
	})

	a, storage := newTestAgent(t, mux)
	require.NoError(t, storage.Set(credentialKey, "stale-token"))

	a.Initialize(context.Background())

	require.Eventually(t, func() bool {
		return !a.GetState().IsAuthenticated && !a.GetState().IsCheckingAuth
	}, 2*time.Second, 10*time.Millisecond)

	_, err := storage.Get(credentialKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStaleRevalidationDiscarded(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/check-auth", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeUser(w, http.StatusOK, "")
	})
	mux.HandleFunc("POST /api/user/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	a, storage := newTestAgent(t, mux)
	require.NoError(t, storage.Set(credentialKey, "old-token"))

	a.Initialize(context.Background())
	a.Logout(context.Background())
	require.False(t, a.GetState().IsAuthenticated)

	// The re-validation of the old credential completes after logout and must
	// not resurrect the session.
	close(release)
	require.Never(t, func() bool {
		return a.GetState().IsAuthenticated
	}, 300*time.Millisecond, 20*time.Millisecond)
}

func TestLoginPersistsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		writeUser(w, http.StatusOK, "fresh-token")
	})

	a, storage := newTestAgent(t, mux)

	var observed []State
	a.Subscribe(func(st State) { observed = append(observed, st) })

	account, err := a.Login(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", account.Email)

	st := a.GetState()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "user-1", st.Account.ID)

	cred, err := storage.Get(credentialKey)
	require.NoError(t, err)
	require.Equal(t, "fresh-token", cred)

	raw, err := storage.Get(accountKey)
	require.NoError(t, err)
	var snapshot Account
	require.NoError(t, json.Unmarshal([]byte(raw), &snapshot))
	require.Equal(t, "user-1", snapshot.ID)

	// No observer saw a credential without a principal.
	require.NotEmpty(t, observed)
	for _, st := range observed {
		require.True(t, st.Account != nil && st.IsAuthenticated)
	}
}

func TestRepeatedLoginFailuresSuggestReset(t *testing.T) {
	var succeed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		if succeed.Load() {
			writeUser(w, http.StatusOK, "fresh-token")
			return
		}
		writeFailure(w, http.StatusBadRequest, "Invalid credentials")
	})

	a, _ := newTestAgent(t, mux)

	for i := 0; i < suggestResetAfter-1; i++ {
		_, err := a.Login(context.Background(), "a@x.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.False(t, a.GetState().SuggestReset)
	}

	_, err := a.Login(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.True(t, a.GetState().SuggestReset)

	succeed.Store(true)
	_, err = a.Login(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)
	require.False(t, a.GetState().SuggestReset)
}

func TestGlobalUnauthenticatedReaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		writeUser(w, http.StatusOK, "fresh-token")
	})
	mux.HandleFunc("GET /api/user/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "Token expired")
	})

	a, storage := newTestAgent(t, mux)

	var navigated atomic.Bool
	a.OnUnauthenticated = func() { navigated.Store(true) }

	_, err := a.Login(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)

	_, err = a.Notifications(context.Background())
	require.Error(t, err)

	require.False(t, a.GetState().IsAuthenticated)
	require.True(t, navigated.Load())
	_, err = storage.Get(credentialKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLogoutClearsDespiteServerFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		writeUser(w, http.StatusOK, "fresh-token")
	})
	mux.HandleFunc("POST /api/user/logout", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusInternalServerError, "Something went wrong")
	})

	a, storage := newTestAgent(t, mux)

	_, err := a.Login(context.Background(), "a@x.com", "Secret123!")
	require.NoError(t, err)

	a.Logout(context.Background())

	require.False(t, a.GetState().IsAuthenticated)
	_, err = storage.Get(credentialKey)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = storage.Get(accountKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	a, _ := newTestAgent(t, http.NewServeMux())

	var calls atomic.Int32
	unsubscribe := a.Subscribe(func(State) { calls.Add(1) })

	a.setState(func(s *State) { s.SuggestReset = true })
	require.EqualValues(t, 1, calls.Load())

	unsubscribe()
	a.setState(func(s *State) { s.SuggestReset = false })
	require.EqualValues(t, 1, calls.Load())
}

func TestPollerRunsUntilCancelled(t *testing.T) {
	var ticks atomic.Int32
	poller := NewPoller(10*time.Millisecond, func(context.Context) { ticks.Add(1) })

	stop := poller.Start(context.Background())

	require.Eventually(t, func() bool {
		return ticks.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	stop()
	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(t, ticks.Load(), settled+1)
}
