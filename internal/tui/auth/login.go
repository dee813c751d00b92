// ABOUTME: Login screen as a bubbletea model wrapping a huh form
// ABOUTME: Submits through the session controller and offers optional Google sign-in

package auth

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/yt-summarizer/internal/session"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
)

// Authenticator is the part of the session controller the forms drive
type Authenticator interface {
	Login(ctx context.Context, username, password string) session.Result
	Register(ctx context.Context, form session.RegistrationForm) session.Result
	LoginWithFederatedCredential(ctx context.Context, credential string) session.Result
}

// CredentialFunc obtains a federated identity credential, e.g. via the browser flow
type CredentialFunc func(ctx context.Context) (string, error)

// ResultMsg carries the outcome of a submitted form
type ResultMsg struct {
	Result session.Result
}

// SwitchToRegisterMsg asks the root model to show the registration form
type SwitchToRegisterMsg struct{}

// SwitchToLoginMsg asks the root model to show the login form
type SwitchToLoginMsg struct{}

// Login is the sign-in screen
type Login struct {
	ctx    context.Context
	auth   Authenticator
	google CredentialFunc
	form   *huh.Form
	width  int

	username string
	password string

	submitting bool
	err        string
}

// NewLogin creates the login screen. google may be nil, in which case the
// federated option is not offered.
func NewLogin(ctx context.Context, auth Authenticator, google CredentialFunc) *Login {
	l := &Login{ctx: ctx, auth: auth, google: google, width: 80}
	l.form = l.buildForm()
	return l
}

func (l *Login) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("your username").
				CharLimit(64).
				Value(&l.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&l.password),
		).Title(fmt.Sprintf("%s Sign in", icons.Key.String())).
			Description("Sign in to summarize YouTube videos"),
	).WithTheme(styles.FormTheme()).
		WithWidth(min(60, l.width))
}

// GoogleEnabled reports whether federated sign-in is offered
func (l *Login) GoogleEnabled() bool {
	return l.google != nil
}

// Username returns the entered username
func (l *Login) Username() string {
	return l.username
}

// Password returns the entered password
func (l *Login) Password() string {
	return l.password
}

// Err returns the last failure text
func (l *Login) Err() string {
	return l.err
}

// Submitting reports whether a sign-in is outstanding
func (l *Login) Submitting() bool {
	return l.submitting
}

// SetCredentials fills the form fields
func (l *Login) SetCredentials(username, password string) {
	l.username = username
	l.password = password
	l.form = l.buildForm()
}

// SetWidth sets the form width
func (l *Login) SetWidth(width int) {
	l.width = width
	l.form = l.form.WithWidth(min(60, width))
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Submit signs in with the entered credentials
func (l *Login) Submit() tea.Cmd {
	if l.submitting {
		return nil
	}
	if err := session.ValidateLogin(l.username, l.password); err != nil {
		return l.fail(err.Error())
	}
	l.submitting = true
	l.err = ""
	ctx, auth, username, password := l.ctx, l.auth, strings.TrimSpace(l.username), l.password
	return func() tea.Msg {
		return ResultMsg{Result: auth.Login(ctx, username, password)}
	}
}

// SignInWithGoogle runs the federated flow; a no-op when not configured
func (l *Login) SignInWithGoogle() tea.Cmd {
	if l.submitting || l.google == nil {
		return nil
	}
	l.submitting = true
	l.err = ""
	ctx, auth, google := l.ctx, l.auth, l.google
	return func() tea.Msg {
		credential, err := google(ctx)
		if err != nil {
			return ResultMsg{Result: session.Result{Error: "google sign-in failed: " + err.Error()}}
		}
		return ResultMsg{Result: auth.LoginWithFederatedCredential(ctx, credential)}
	}
}

// fail records an error, clears the password and starts a fresh form
func (l *Login) fail(text string) tea.Cmd {
	l.submitting = false
	l.err = text
	l.password = ""
	l.form = l.buildForm()
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if !msg.Result.Success {
			return l, l.fail(msg.Result.Error)
		}
		l.submitting = false
		l.err = ""
		l.password = ""
		return l, nil

	case tea.KeyMsg:
		if l.submitting {
			return l, nil
		}
		switch msg.String() {
		case "ctrl+n":
			return l, func() tea.Msg { return SwitchToRegisterMsg{} }
		case "ctrl+g":
			return l, l.SignInWithGoogle()
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}
	if l.form.State == huh.StateCompleted {
		return l, l.Submit()
	}
	return l, cmd
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	sb.WriteString(l.form.View())
	sb.WriteString("\n")

	if l.submitting {
		sb.WriteString(styles.MutedText.Render("Signing in..."))
		sb.WriteString("\n")
	} else if l.err != "" {
		sb.WriteString(styles.ErrorText.Render(fmt.Sprintf("%s %s", icons.Critical.String(), l.err)))
		sb.WriteString("\n")
	}

	help := []string{
		styles.KeyStyle.Render("ctrl+n") + " create an account",
	}
	if l.google != nil {
		help = append(help, styles.KeyStyle.Render("ctrl+g")+fmt.Sprintf(" sign in with %s Google", icons.Google.String()))
	}
	sb.WriteString(styles.Help.Render(strings.Join(help, " • ")))
	return sb.String()
}
