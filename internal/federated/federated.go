// ABOUTME: Acquires a Google identity credential for the backend exchange
// ABOUTME: Either forwards a pre-obtained ID token or runs the OAuth loopback redirect flow

package federated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var (
	// ErrNotConfigured means neither a token nor client credentials were supplied
	ErrNotConfigured = errors.New("google sign-in is not configured: set YTS_GOOGLE_CLIENT_ID and YTS_GOOGLE_CLIENT_SECRET or pass --id-token")

	// ErrNoIDToken means the provider answered without an id_token
	ErrNoIDToken = errors.New("google did not return an ID token")

	// ErrStateMismatch means the redirect did not come from our request
	ErrStateMismatch = errors.New("sign-in response did not match the request")
)

// Flow obtains an ID token through the installed-app loopback redirect
type Flow struct {
	ClientID     string
	ClientSecret string

	// Endpoint defaults to Google's
	Endpoint oauth2.Endpoint
	// OpenBrowser is called with the consent URL; failures are not fatal
	OpenBrowser func(url string) error
	// Notify shows the consent URL so the user can open it by hand
	Notify func(url string)
}

// Configured reports whether the loopback flow can run
func (f *Flow) Configured() bool {
	return f != nil && f.ClientID != "" && f.ClientSecret != ""
}

// Credential returns preset verbatim when set, otherwise runs the flow
func (f *Flow) Credential(ctx context.Context, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	if !f.Configured() {
		return "", ErrNotConfigured
	}
	return f.Run(ctx)
}

type callbackResult struct {
	code string
	err  error
}

// Run listens on 127.0.0.1, sends the user to the consent page, and trades
// the returned code for an ID token. It returns when ctx is done or the
// redirect arrives.
func (f *Flow) Run(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start callback listener: %w", err)
	}

	endpoint := f.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}
	conf := &oauth2.Config{
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  "http://" + ln.Addr().String() + "/callback",
		Scopes:       []string{"openid", "email", "profile"},
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			// not our redirect; keep waiting for the one that is
			http.Error(w, ErrStateMismatch.Error(), http.StatusBadRequest)
			return
		}

		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("google sign-in was not completed: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("google sign-in returned no authorization code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Debug("callback server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	if f.Notify != nil {
		f.Notify(authURL)
	}
	open := f.OpenBrowser
	if open == nil {
		open = openBrowser
	}
	if err := open(authURL); err != nil {
		slog.Debug("could not open browser", "error", err)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("google sign-in: %w", ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return "", res.err
	}

	tok, err := conf.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
