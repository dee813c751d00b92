// ABOUTME: Registration screen as a bubbletea model wrapping a huh form
// ABOUTME: Runs local validation before anything reaches the backend

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

// Register is the account creation screen
type Register struct {
	ctx   context.Context
	auth  Authenticator
	form  *huh.Form
	width int

	fields session.RegistrationForm

	submitting bool
	err        string
}

// NewRegister creates the registration screen
func NewRegister(ctx context.Context, auth Authenticator) *Register {
	r := &Register{ctx: ctx, auth: auth, width: 80}
	r.form = r.buildForm()
	return r
}

func (r *Register) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(64).
				Value(&r.fields.Username),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				CharLimit(128).
				Value(&r.fields.Email),
			huh.NewInput().
				Title("Password").
				Description(fmt.Sprintf("At least %d characters", session.MinPasswordLength)).
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&r.fields.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&r.fields.ConfirmPassword),
		).Title(fmt.Sprintf("%s Create an account", icons.User.String())),
	).WithTheme(styles.FormTheme()).
		WithWidth(min(60, r.width))
}

// Fields returns the entered values
func (r *Register) Fields() session.RegistrationForm {
	return r.fields
}

// SetFields fills the form fields
func (r *Register) SetFields(f session.RegistrationForm) {
	r.fields = f
	r.form = r.buildForm()
}

// Err returns the last failure text
func (r *Register) Err() string {
	return r.err
}

// Submitting reports whether registration is outstanding
func (r *Register) Submitting() bool {
	return r.submitting
}

// SetWidth sets the form width
func (r *Register) SetWidth(width int) {
	r.width = width
	r.form = r.form.WithWidth(min(60, width))
}

// Init implements tea.Model
func (r *Register) Init() tea.Cmd {
	return r.form.Init()
}

// Submit validates locally and, if valid, registers through the controller
func (r *Register) Submit() tea.Cmd {
	if r.submitting {
		return nil
	}
	if err := session.ValidateRegistration(r.fields); err != nil {
		return r.fail(err.Error())
	}
	r.submitting = true
	r.err = ""
	ctx, auth, fields := r.ctx, r.auth, r.fields
	return func() tea.Msg {
		return ResultMsg{Result: auth.Register(ctx, fields)}
	}
}

// fail records an error, clears both password fields and starts a fresh form
func (r *Register) fail(text string) tea.Cmd {
	r.submitting = false
	r.err = text
	r.fields.Password = ""
	r.fields.ConfirmPassword = ""
	r.form = r.buildForm()
	return r.form.Init()
}

// Update implements tea.Model
func (r *Register) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if !msg.Result.Success {
			return r, r.fail(msg.Result.Error)
		}
		r.submitting = false
		r.err = ""
		return r, nil

	case tea.KeyMsg:
		if r.submitting {
			return r, nil
		}
		if msg.String() == "esc" {
			return r, func() tea.Msg { return SwitchToLoginMsg{} }
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}
	if r.form.State == huh.StateCompleted {
		return r, r.Submit()
	}
	return r, cmd
}

// View implements tea.Model
func (r *Register) View() string {
	var sb strings.Builder
	sb.WriteString(r.form.View())
	sb.WriteString("\n")

	if r.submitting {
		sb.WriteString(styles.MutedText.Render("Creating account..."))
		sb.WriteString("\n")
	} else if r.err != "" {
		sb.WriteString(styles.ErrorText.Render(fmt.Sprintf("%s %s", icons.Critical.String(), r.err)))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Help.Render(styles.KeyStyle.Render("esc") + " back to sign in"))
	return sb.String()
}
