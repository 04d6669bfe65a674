// Package agent implements the client side of the session lifecycle: a
// durable credential mirror, a bearer-attaching transport with a global
// unauthenticated reaction, and an observable in-memory session state.
//
// The agent is an explicit, injectable service. Construct one per client (or
// per test) with its own Storage; there is no package-level singleton.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

const (
	credentialKey = "auth_token"
	accountKey    = "account"

	// Failed logins before the UI is nudged toward the reset flow.
	suggestResetAfter = 3
)

// ErrInvalidCredentials covers wrong password, unknown email, and invalid or
// expired verification/reset tokens. The server keeps these deliberately
// indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ServerError is a non-2xx response that is not a credential failure.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

type Agent struct {
	baseURL string
	storage Storage
	client  *http.Client

	// OnUnauthenticated fires after a global session clear so the routing
	// layer can navigate to the login entry point. Optional.
	OnUnauthenticated func()

	mu            sync.Mutex
	state         State
	subscribers   map[int]func(State)
	nextSub       int
	loginFailures int
}

// New builds an agent talking to baseURL. base is the underlying transport,
// nil means http.DefaultTransport; tests pass a fake.
func New(baseURL string, storage Storage, base http.RoundTripper) *Agent {
	a := &Agent{
		baseURL:     baseURL,
		storage:     storage,
		subscribers: map[int]func(State){},
	}
	a.client = &http.Client{
		Transport: &Transport{
			Base:              base,
			Credential:        a.credential,
			OnUnauthenticated: a.handleUnauthenticated,
		},
	}
	return a
}

func (a *Agent) GetState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subscribe registers fn to run after every state change. The returned
// function unsubscribes.
func (a *Agent) Subscribe(fn func(State)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

// Initialize restores the session from durable storage. With a stored
// credential the agent marks itself authenticated from the cached snapshot
// immediately and re-validates against the server in the background; the UI
// reacts to the state flip, never to the network call.
func (a *Agent) Initialize(ctx context.Context) {
	cred, err := a.storage.Get(credentialKey)
	if err != nil || cred == "" {
		a.setState(func(s *State) { *s = State{} })
		return
	}

	var account *Account
	if raw, rawErr := a.storage.Get(accountKey); rawErr == nil {
		var snapshot Account
		if json.Unmarshal([]byte(raw), &snapshot) == nil {
			account = &snapshot
		}
	}

	a.setState(func(s *State) {
		s.Account = account
		s.IsAuthenticated = true
		s.IsCheckingAuth = true
	})

	go a.revalidate(ctx, cred)
}

// revalidate confirms the stored credential against the server. The result
// is applied only if the credential is still the stored one, so a response
// that arrives after a logout (or a fresh login) cannot resurrect or
// overwrite the newer state.
func (a *Agent) revalidate(ctx context.Context, cred string) {
	env, status, err := a.do(ctx, http.MethodGet, "/api/user/check-auth", nil)
	if err != nil {
		// Network failure: stay optimistic, just stop the checking flag.
		a.setState(func(s *State) { s.IsCheckingAuth = false })
		return
	}

	current, _ := a.storage.Get(credentialKey)
	if current != cred {
		return
	}

	if status == http.StatusOK && env.User != nil {
		account := env.User.Account
		a.persistAccount(&account)
		a.setState(func(s *State) {
			s.Account = &account
			s.IsAuthenticated = true
			s.IsCheckingAuth = false
		})
		return
	}

	a.clearSession()
}

// Login authenticates and stores the returned session atomically. Repeated
// credential failures set SuggestReset once the threshold is reached.
func (a *Agent) Login(ctx context.Context, email, password string) (*Account, error) {
	env, status, err := a.do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || env.User == nil {
		loginErr := apiError(status, env)
		if errors.Is(loginErr, ErrInvalidCredentials) {
			a.recordLoginFailure()
		}
		return nil, loginErr
	}

	account := env.User.Account
	a.applySession(&account, env.User.Token)
	return &account, nil
}

// Signup registers a new account and stores the returned session.
func (a *Agent) Signup(ctx context.Context, name, email, password string) (*Account, error) {
	env, status, err := a.do(ctx, http.MethodPost, "/api/user/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated || env.User == nil {
		return nil, apiError(status, env)
	}

	account := env.User.Account
	a.applySession(&account, env.User.Token)
	return &account, nil
}

// VerifyEmail consumes the emailed verification code and refreshes the
// cached account snapshot. The session credential is unchanged.
func (a *Agent) VerifyEmail(ctx context.Context, code string) (*Account, error) {
	env, status, err := a.do(ctx, http.MethodPost, "/api/user/verify-email", map[string]string{
		"code": code,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || env.User == nil {
		return nil, apiError(status, env)
	}

	account := env.User.Account
	a.applySession(&account, "")
	return &account, nil
}

func (a *Agent) ForgotPassword(ctx context.Context, email string) error {
	env, status, err := a.do(ctx, http.MethodPost, "/api/user/forgot-password", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, env)
	}
	return nil
}

// ResetPassword consumes the emailed reset token. On success the user logs
// in with the new password; no session is minted here.
func (a *Agent) ResetPassword(ctx context.Context, token, password string) error {
	env, status, err := a.do(ctx, http.MethodPost, "/api/user/reset-password/"+token, map[string]string{
		"password": password,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, env)
	}
	return nil
}

// Logout notifies the server best-effort and always clears local state. A
// server failure must not leave the client signed in.
func (a *Agent) Logout(ctx context.Context) {
	_, _, _ = a.do(ctx, http.MethodPost, "/api/user/logout", nil)
	a.clearSession()
}

// Notifications fetches the caller's notification feed. Wired to a Poller
// for periodic refresh, independent of the session re-validation path.
func (a *Agent) Notifications(ctx context.Context) ([]Notification, error) {
	env, status, err := a.do(ctx, http.MethodGet, "/api/user/notifications", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, env)
	}
	return env.Notifications, nil
}

// Notification mirrors the server's audit record as rendered by the client.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

// ---- internals ----

type userPayload struct {
	Account
	Token string `json:"token"`
}

type envelope struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Fields        []string       `json:"fields"`
	User          *userPayload   `json:"user"`
	Notifications []Notification `json:"notifications"`
}

func (a *Agent) do(ctx context.Context, method, path string, body any) (*envelope, int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	env := &envelope{}
	// Non-JSON bodies (proxies, panics) fall through with an empty message.
	_ = json.NewDecoder(resp.Body).Decode(env)
	return env, resp.StatusCode, nil
}

// apiError maps a failure response to the client-side taxonomy. A 400 with
// no field detail is a credential failure; anything else carries the server
// message through.
func apiError(status int, env *envelope) error {
	if status == http.StatusBadRequest && len(env.Fields) == 0 {
		return ErrInvalidCredentials
	}
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return &ServerError{Status: status, Message: message}
}

func (a *Agent) credential() string {
	cred, err := a.storage.Get(credentialKey)
	if err != nil {
		return ""
	}
	return cred
}

// handleUnauthenticated is the transport's global 401 reaction: clear
// everything and let the routing layer send the user to login.
func (a *Agent) handleUnauthenticated() {
	a.clearSession()
	if a.OnUnauthenticated != nil {
		a.OnUnauthenticated()
	}
}

// applySession persists the credential and snapshot and flips the in-memory
// state under one lock, so no observer sees a credential without a
// principal or vice versa. An empty token keeps the stored credential.
func (a *Agent) applySession(account *Account, token string) {
	raw, _ := json.Marshal(account)

	a.mu.Lock()
	if token != "" {
		_ = a.storage.Set(credentialKey, token)
	}
	_ = a.storage.Set(accountKey, string(raw))
	a.loginFailures = 0
	a.state = State{Account: account, IsAuthenticated: true}
	st := a.state
	subs := a.snapshotSubscribers()
	a.mu.Unlock()

	notify(subs, st)
}

func (a *Agent) clearSession() {
	a.mu.Lock()
	_ = a.storage.Delete(credentialKey)
	_ = a.storage.Delete(accountKey)
	a.state = State{}
	st := a.state
	subs := a.snapshotSubscribers()
	a.mu.Unlock()

	notify(subs, st)
}

func (a *Agent) persistAccount(account *Account) {
	raw, err := json.Marshal(account)
	if err != nil {
		return
	}
	_ = a.storage.Set(accountKey, string(raw))
}

func (a *Agent) recordLoginFailure() {
	a.mu.Lock()
	a.loginFailures++
	changed := false
	if a.loginFailures >= suggestResetAfter && !a.state.SuggestReset {
		a.state.SuggestReset = true
		changed = true
	}
	st := a.state
	subs := a.snapshotSubscribers()
	a.mu.Unlock()

	if changed {
		notify(subs, st)
	}
}

func (a *Agent) setState(mutate func(*State)) {
	a.mu.Lock()
	mutate(&a.state)
	st := a.state
	subs := a.snapshotSubscribers()
	a.mu.Unlock()

	notify(subs, st)
}

// snapshotSubscribers must be called with mu held.
func (a *Agent) snapshotSubscribers() []func(State) {
	subs := make([]func(State), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
