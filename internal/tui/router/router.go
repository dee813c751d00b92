// ABOUTME: Chooses which top-level view the TUI shows for a session snapshot
// ABOUTME: Pure function of controller state plus the local registering flag

package router

import "github.com/markalston/yt-summarizer/internal/session"

// View is a top-level TUI screen
type View int

const (
	ViewLoading View = iota
	ViewLogin
	ViewRegister
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewDashboard:
		return "dashboard"
	default:
		return "loading"
	}
}

// Route maps a snapshot to a view. Loading wins over everything, then an
// unauthenticated session shows Login or Register depending on isRegistering.
func Route(snap session.Snapshot, isRegistering bool) View {
	switch {
	case snap.Loading:
		return ViewLoading
	case !snap.IsAuthenticated() && isRegistering:
		return ViewRegister
	case !snap.IsAuthenticated():
		return ViewLogin
	default:
		return ViewDashboard
	}
}
