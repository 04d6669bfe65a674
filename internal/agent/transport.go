package agent

import "net/http"

// Transport attaches the stored session credential as a bearer header on
// every outgoing request and reacts to an unauthenticated response globally,
// so individual call sites never handle session expiry themselves.
type Transport struct {
	Base              http.RoundTripper
	Credential        func() string
	OnUnauthenticated func()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// Clone before mutating, RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	if cred := t.Credential(); cred != "" && out.Header.Get("Authorization") == "" {
		out.Header.Set("Authorization", "Bearer "+cred)
	}

	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && t.OnUnauthenticated != nil {
		t.OnUnauthenticated()
	}
	return resp, nil
}
