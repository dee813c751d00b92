package federated

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeProvider serves a token endpoint that returns idToken for code "good-code"
func fakeProvider(t *testing.T, idToken string) oauth2.Endpoint {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" || r.Form.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"access_token": "access", "token_type": "Bearer", "expires_in": 3600}
		if idToken != "" {
			body["id_token"] = idToken
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
}

// browser simulates the user approving consent and being redirected back
func browser(t *testing.T, code string, tamperState bool) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		state := q.Get("state")
		if tamperState {
			state = "forged"
		}
		go func() {
			resp, err := http.Get(q.Get("redirect_uri") + "?" + url.Values{"code": {code}, "state": {state}}.Encode())
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func TestCredential_PresetIsForwardedVerbatim(t *testing.T) {
	var f *Flow
	got, err := f.Credential(context.Background(), "  raw.jwt.value ")
	require.NoError(t, err)
	assert.Equal(t, "  raw.jwt.value ", got)
}

func TestCredential_NotConfigured(t *testing.T) {
	f := &Flow{}
	_, err := f.Credential(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRun_ReturnsIDToken(t *testing.T) {
	var shown string
	f := &Flow{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     fakeProvider(t, "header.payload.sig"),
		OpenBrowser:  browser(t, "good-code", false),
		Notify:       func(u string) { shown = u },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := f.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", token)
	assert.Contains(t, shown, "code_challenge=")
	assert.Contains(t, shown, "redirect_uri=http%3A%2F%2F127.0.0.1%3A")
}

func TestRun_ForgedStateIsRejectedAndIgnored(t *testing.T) {
	f := &Flow{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     fakeProvider(t, "id"),
		OpenBrowser:  browser(t, "good-code", true),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := f.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_StrayCallbackDoesNotAbort(t *testing.T) {
	var strayStatus atomic.Int32
	f := &Flow{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     fakeProvider(t, "header.payload.sig"),
		OpenBrowser: func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			q := u.Query()
			redirect := q.Get("redirect_uri")
			go func() {
				if resp, err := http.Get(redirect + "?state=forged&code=stolen"); err == nil {
					strayStatus.Store(int32(resp.StatusCode))
					resp.Body.Close()
				}
				if resp, err := http.Get(redirect + "?" + url.Values{"code": {"good-code"}, "state": {q.Get("state")}}.Encode()); err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := f.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", token)
	assert.Equal(t, int32(http.StatusBadRequest), strayStatus.Load())
}

func TestRun_MissingIDToken(t *testing.T) {
	f := &Flow{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     fakeProvider(t, ""),
		OpenBrowser:  browser(t, "good-code", false),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := f.Run(ctx)
	assert.ErrorIs(t, err, ErrNoIDToken)
}

func TestRun_ContextCanceled(t *testing.T) {
	f := &Flow{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     fakeProvider(t, "id"),
		OpenBrowser:  func(string) error { return errors.New("no browser") },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
