// ABOUTME: Session commands: login, register, login-google, logout, whoami and status
// ABOUTME: All go through the session controller so the stored session stays consistent

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/markalston/yt-summarizer/internal/federated"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/session"
)

var (
	loginUsername string
	loginPassword string

	registerForm session.RegistrationForm

	googleIDToken string
	logoutYes     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with username and password",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			username, password := loginUsername, loginPassword
			var err error
			if username == "" {
				if username, err = prompt("Username"); err != nil {
					return report(w, err)
				}
			}
			if password == "" {
				if password, err = promptPassword("Password"); err != nil {
					return report(w, err)
				}
			}
			return runLogin(ctx, d, w, username, password)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			form := registerForm
			var err error
			if form.Username == "" {
				if form.Username, err = prompt("Username"); err != nil {
					return report(w, err)
				}
			}
			if form.Email == "" {
				if form.Email, err = prompt("Email"); err != nil {
					return report(w, err)
				}
			}
			if form.Password == "" {
				if form.Password, err = promptPassword("Password"); err != nil {
					return report(w, err)
				}
				if form.ConfirmPassword, err = promptPassword("Confirm password"); err != nil {
					return report(w, err)
				}
			} else {
				form.ConfirmPassword = form.Password
			}
			return runRegister(ctx, d, w, form)
		})
	},
}

var loginGoogleCmd = &cobra.Command{
	Use:   "login-google",
	Short: "Sign in with a Google account",
	Long: `Sign in with Google. With --id-token (or YTS_GOOGLE_ID_TOKEN) the token is
handed to the backend as is. Otherwise a browser window opens for consent,
which needs YTS_GOOGLE_CLIENT_ID and YTS_GOOGLE_CLIENT_SECRET.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			return runLoginGoogle(ctx, d, w, googleIDToken)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			return runLogout(d, w, logoutYes)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runWhoami)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend connectivity and session state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runStatus)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&registerForm.Username, "username", "u", "", "Username (prompted when omitted)")
	registerCmd.Flags().StringVarP(&registerForm.Email, "email", "e", "", "Email (prompted when omitted)")
	registerCmd.Flags().StringVarP(&registerForm.Password, "password", "p", "", "Password (prompted when omitted)")

	loginGoogleCmd.Flags().StringVar(&googleIDToken, "id-token", "", "Google ID token to exchange (overrides YTS_GOOGLE_ID_TOKEN)")

	logoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(loginCmd, registerCmd, loginGoogleCmd, logoutCmd, whoamiCmd, statusCmd)
}

// runLogin signs in and reports the result
func runLogin(ctx context.Context, d *deps, w io.Writer, username, password string) int {
	return printResult(w, d.Session().Login(ctx, username, password))
}

// runRegister creates the account and reports the result
func runRegister(ctx context.Context, d *deps, w io.Writer, form session.RegistrationForm) int {
	return printResult(w, d.Session().Register(ctx, form))
}

// runLoginGoogle acquires a credential and exchanges it with the backend
func runLoginGoogle(ctx context.Context, d *deps, w io.Writer, idToken string) int {
	if idToken == "" {
		idToken = d.cfg.GoogleIDToken
	}
	flow := googleFlow(d, func(url string) {
		fmt.Fprintf(os.Stderr, "Opening your browser to sign in. If it does not open, visit:\n  %s\n", url)
	})

	credential, err := flow.Credential(ctx, idToken)
	if errors.Is(err, federated.ErrNotConfigured) {
		return invalid(w, err)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: google sign-in failed: %v\n", err)
		return exitFailure
	}
	return printResult(w, d.Session().LoginWithFederatedCredential(ctx, credential))
}

// googleFlow builds the loopback flow from configuration
func googleFlow(d *deps, notify func(url string)) *federated.Flow {
	return &federated.Flow{
		ClientID:     d.cfg.GoogleClientID,
		ClientSecret: d.cfg.GoogleClientSecret,
		Notify:       notify,
	}
}

func printResult(w io.Writer, res session.Result) int {
	if !res.Success {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
		return exitFailure
	}
	if IsJSONOutput() {
		return writeJSON(w, struct {
			*models.UserProfile
			IsNewUser bool `json:"isNewUser,omitempty"`
		}{res.Profile, res.IsNewUser})
	}
	verb := "Signed in as"
	if res.IsNewUser {
		verb = "Welcome! Created and signed in as"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", verb, res.Profile.Username, res.Profile.UserType)
	return exitOK
}

// runLogout clears the session locally; the backend is not contacted
func runLogout(d *deps, w io.Writer, yes bool) int {
	ok, err := confirm("Sign out of yts?", yes)
	if err != nil {
		return invalid(w, err)
	}
	if !ok {
		fmt.Fprintln(w, "Cancelled")
		return exitOK
	}
	d.Session().Logout()
	fmt.Fprintln(w, "Signed out")
	return exitOK
}

// runWhoami validates the stored session and prints the user
func runWhoami(ctx context.Context, d *deps, w io.Writer) int {
	snap := d.Session().Restore(ctx)
	if !snap.IsAuthenticated() {
		fmt.Fprintln(w, "Not signed in. Run 'yts login' first.")
		return exitFailure
	}

	if IsJSONOutput() {
		return writeJSON(w, snap.User)
	}
	fmt.Fprintln(w, formatWhoami(snap.User, tokenExpiry(snap.Token)))
	return exitOK
}

func formatWhoami(u *models.UserProfile, expires time.Time) string {
	lines := []string{
		fmt.Sprintf("Username:     %s", u.Username),
		fmt.Sprintf("Email:        %s", u.Email),
		fmt.Sprintf("Plan:         %s", u.UserType),
		fmt.Sprintf("Daily limit:  %d summaries", u.DailyLimit),
		fmt.Sprintf("Max length:   %s", format.MaxLength(u.MaxVideoDurationSeconds)),
	}
	if !u.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Member since: %s", u.CreatedAt.Format("2006-01-02")))
	}
	if !expires.IsZero() {
		lines = append(lines, fmt.Sprintf("Session:      expires %s", format.Ago(expires)))
	}
	return strings.Join(lines, "\n")
}

// tokenExpiry reads the exp claim when the token happens to be a JWT. The
// signature is not checked; the value is only displayed.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

type statusReport struct {
	Backend        string `json:"backend"`
	Reachable      bool   `json:"reachable"`
	StoredSession  bool   `json:"storedSession"`
	Authenticated  bool   `json:"authenticated"`
	Username       string `json:"username,omitempty"`
	SessionBackend string `json:"sessionBackend"`
	ConfigDir      string `json:"configDir"`
	GoogleBackend  string `json:"googleBackend,omitempty"`
	GoogleLocal    bool   `json:"googleLocal"`
	TokenExpires   string `json:"tokenExpires,omitempty"`
	Error          string `json:"error,omitempty"`
}

// runStatus checks connectivity and whether the backend accepts the stored token
func runStatus(ctx context.Context, d *deps, w io.Writer) int {
	token, _, err := d.store.Read()
	if err != nil {
		return report(w, err)
	}

	rep := statusReport{
		Backend:        d.cfg.APIURL,
		StoredSession:  token != "",
		SessionBackend: d.cfg.SessionBackend,
		ConfigDir:      d.cfg.ConfigDir,
		GoogleLocal:    d.cfg.GoogleConfigured() || d.cfg.GoogleIDToken != "",
	}
	if exp := tokenExpiry(token); !exp.IsZero() {
		rep.TokenExpires = exp.UTC().Format(time.RFC3339)
	}

	check, err := d.api.CheckAuth(ctx)
	if err != nil {
		if IsJSONOutput() {
			text, code := describe(err)
			rep.Error = text
			writeJSON(w, rep)
			return code
		}
		return report(w, err)
	}
	rep.Reachable = true
	rep.Authenticated = check.Authenticated
	rep.Username = check.Username

	if g, err := d.api.GoogleStatus(ctx); err == nil {
		rep.GoogleBackend = g.Status
	}

	if IsJSONOutput() {
		return writeJSON(w, rep)
	}
	fmt.Fprintln(w, formatStatusHuman(rep))
	return exitOK
}

func formatStatusHuman(rep statusReport) string {
	signedIn := "no"
	switch {
	case rep.Authenticated:
		signedIn = "yes, as " + rep.Username
	case rep.StoredSession:
		signedIn = "no (stored session was rejected)"
	}
	google := "not configured locally"
	if rep.GoogleLocal {
		google = "configured locally"
	}
	if rep.GoogleBackend != "" {
		google += ", backend: " + rep.GoogleBackend
	}

	lines := []string{
		fmt.Sprintf("Backend:    %s", rep.Backend),
		fmt.Sprintf("Signed in:  %s", signedIn),
		fmt.Sprintf("Session:    %s store in %s", rep.SessionBackend, rep.ConfigDir),
		fmt.Sprintf("Google:     %s", google),
	}
	if rep.TokenExpires != "" {
		lines = append(lines, fmt.Sprintf("Expires:    %s", rep.TokenExpires))
	}
	return strings.Join(lines, "\n")
}
