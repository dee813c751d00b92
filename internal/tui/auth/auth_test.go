// ABOUTME: Tests for the login and registration screens
// ABOUTME: Failed submissions clear passwords; local validation never reaches the controller

package auth

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/session"
)

type fakeAuth struct {
	logins     atomic.Int32
	registers  atomic.Int32
	federated  atomic.Int32
	credential string
	result     session.Result
}

func (f *fakeAuth) Login(context.Context, string, string) session.Result {
	f.logins.Add(1)
	return f.result
}

func (f *fakeAuth) Register(context.Context, session.RegistrationForm) session.Result {
	f.registers.Add(1)
	return f.result
}

func (f *fakeAuth) LoginWithFederatedCredential(_ context.Context, credential string) session.Result {
	f.federated.Add(1)
	f.credential = credential
	return f.result
}

func TestLoginFailureClearsPassword(t *testing.T) {
	auth := &fakeAuth{result: session.Result{Error: "Invalid credentials"}}
	l := NewLogin(context.Background(), auth, nil)
	l.SetCredentials("alice", "wrong-password")

	cmd := l.Submit()
	if cmd == nil || !l.Submitting() {
		t.Fatal("expected submission")
	}
	l.Update(cmd())

	if l.Err() != "Invalid credentials" {
		t.Errorf("err = %q", l.Err())
	}
	if l.Password() != "" {
		t.Errorf("password should be cleared, got %q", l.Password())
	}
	if l.Username() != "alice" {
		t.Errorf("username should be kept, got %q", l.Username())
	}
	if l.Submitting() {
		t.Error("should not be submitting after failure")
	}
	if !strings.Contains(l.View(), "Invalid credentials") {
		t.Error("view should show the error")
	}
}

func TestLoginValidatesLocally(t *testing.T) {
	auth := &fakeAuth{}
	l := NewLogin(context.Background(), auth, nil)
	l.SetCredentials("alice", "")

	l.Submit()
	if auth.logins.Load() != 0 {
		t.Error("controller should not be called")
	}
	if l.Err() != "password is required" {
		t.Errorf("err = %q", l.Err())
	}
}

func TestLoginSuccess(t *testing.T) {
	auth := &fakeAuth{result: session.Result{Success: true, Profile: &models.UserProfile{Username: "alice"}}}
	l := NewLogin(context.Background(), auth, nil)
	l.SetCredentials("alice", "secret1")

	l.Update(l.Submit()())
	if l.Err() != "" || l.Submitting() {
		t.Errorf("unexpected state err=%q submitting=%v", l.Err(), l.Submitting())
	}
	if auth.logins.Load() != 1 {
		t.Errorf("logins = %d", auth.logins.Load())
	}
}

func TestGoogleOptionOnlyWhenConfigured(t *testing.T) {
	l := NewLogin(context.Background(), &fakeAuth{}, nil)
	if l.GoogleEnabled() || l.SignInWithGoogle() != nil {
		t.Error("google should be unavailable without a credential source")
	}
	if strings.Contains(l.View(), "Google") {
		t.Error("view should not offer Google")
	}

	l = NewLogin(context.Background(), &fakeAuth{}, func(context.Context) (string, error) { return "id-token", nil })
	if !l.GoogleEnabled() || !strings.Contains(l.View(), "Google") {
		t.Error("google should be offered when configured")
	}
}

func TestGoogleSignInForwardsCredential(t *testing.T) {
	auth := &fakeAuth{result: session.Result{Success: true, IsNewUser: true}}
	l := NewLogin(context.Background(), auth, func(context.Context) (string, error) { return "id-token", nil })

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if cmd == nil {
		t.Fatal("ctrl+g should start the federated flow")
	}
	l.Update(cmd())
	if auth.credential != "id-token" {
		t.Errorf("credential = %q", auth.credential)
	}
}

func TestGoogleAcquisitionFailure(t *testing.T) {
	auth := &fakeAuth{}
	l := NewLogin(context.Background(), auth, func(context.Context) (string, error) {
		return "", errors.New("state mismatch")
	})

	l.Update(l.SignInWithGoogle()())
	if l.Err() != "google sign-in failed: state mismatch" {
		t.Errorf("err = %q", l.Err())
	}
	if auth.federated.Load() != 0 {
		t.Error("controller should not be called without a credential")
	}
}

func TestLoginSwitchesToRegister(t *testing.T) {
	l := NewLogin(context.Background(), &fakeAuth{}, nil)
	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(SwitchToRegisterMsg); !ok {
		t.Error("expected SwitchToRegisterMsg")
	}
}

func TestRegisterShortPasswordNeverCallsController(t *testing.T) {
	auth := &fakeAuth{}
	r := NewRegister(context.Background(), auth)
	r.SetFields(session.RegistrationForm{
		Username: "bob", Email: "bob@example.com", Password: "abc", ConfirmPassword: "abc",
	})

	r.Submit()
	if auth.registers.Load() != 0 {
		t.Error("controller should not be called")
	}
	if r.Err() != "password must be at least 6 characters" {
		t.Errorf("err = %q", r.Err())
	}
	if r.Fields().Password != "" || r.Fields().ConfirmPassword != "" {
		t.Error("passwords should be cleared")
	}
	if r.Fields().Username != "bob" {
		t.Error("username should be kept")
	}
}

func TestRegisterBackendFailure(t *testing.T) {
	auth := &fakeAuth{result: session.Result{Error: "Username is already taken"}}
	r := NewRegister(context.Background(), auth)
	r.SetFields(session.RegistrationForm{
		Username: "bob", Email: "bob@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})

	r.Update(r.Submit()())
	if auth.registers.Load() != 1 {
		t.Errorf("registers = %d", auth.registers.Load())
	}
	if r.Err() != "Username is already taken" {
		t.Errorf("err = %q", r.Err())
	}
}

func TestRegisterEscGoesBack(t *testing.T) {
	r := NewRegister(context.Background(), &fakeAuth{})
	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(SwitchToLoginMsg); !ok {
		t.Error("expected SwitchToLoginMsg")
	}
}
