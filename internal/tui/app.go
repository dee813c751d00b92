// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Follows session snapshots to pick a view and routes input to child components

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/session"
	"github.com/markalston/yt-summarizer/internal/tui/auth"
	"github.com/markalston/yt-summarizer/internal/tui/dashboard"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/modal"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
	"github.com/markalston/yt-summarizer/internal/tui/panels/audio"
	"github.com/markalston/yt-summarizer/internal/tui/panels/history"
	"github.com/markalston/yt-summarizer/internal/tui/panels/summarize"
	"github.com/markalston/yt-summarizer/internal/tui/router"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
)

// Tab is a dashboard feature panel
type Tab int

const (
	TabSummarize Tab = iota
	TabHistory
	TabAudio
)

var tabNames = []string{"Summarize", "History", "Audio"}

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	panelPadding     = 6  // ActivePanel border and horizontal padding
)

// Controller is the session surface the TUI drives
type Controller interface {
	auth.Authenticator
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
	Restore(ctx context.Context) session.Snapshot
	Logout()
	UpdateUser(patch models.ProfilePatch) bool
}

// API is the backend surface used by the dashboard
type API interface {
	summarize.API
	history.API
	audio.API
	UserStats(ctx context.Context) (*models.UsageStats, error)
}

// Options configures optional TUI features
type Options struct {
	DownloadDir string
	// Google acquires a federated credential; nil hides the option
	Google auth.CredentialFunc
}

// snapshotMsg delivers a session transition
type snapshotMsg session.Snapshot

// statsLoadedMsg is sent when usage stats are fetched
type statsLoadedMsg struct {
	signIn int
	stats  *models.UsageStats
	err    error
	at     time.Time
}

// App is the root model for the TUI
type App struct {
	ctx         context.Context
	cancel      context.CancelFunc
	ctrl        Controller
	api         API
	opts        Options
	snapshots   <-chan session.Snapshot
	unsubscribe func()

	snap          session.Snapshot
	isRegistering bool
	view          router.View

	width        int
	height       int
	statsUpdated time.Time
	// signIn counts dashboard exits; stats fetched before the last one are stale
	signIn int

	// Child models
	login     *auth.Login
	register  *auth.Register
	overview  *dashboard.Overview
	tab       Tab
	summarize *summarize.Model
	history   *history.Model
	audio     *audio.Model
	confirm   *modal.Confirm
	viewer    *modal.Viewer
}

// New creates the TUI root model subscribed to ctrl
func New(ctx context.Context, ctrl Controller, api API, opts Options) *App {
	ctx, cancel := context.WithCancel(ctx)
	ch, unsubscribe := ctrl.Subscribe()
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}

	a := &App{
		ctx:         ctx,
		cancel:      cancel,
		ctrl:        ctrl,
		api:         api,
		opts:        opts,
		snapshots:   ch,
		unsubscribe: unsubscribe,
		width:       minTerminalWidth,
		height:      24,
		login:       auth.NewLogin(ctx, ctrl, opts.Google),
		register:    auth.NewRegister(ctx, ctrl),
		overview:    dashboard.New(nil, minTerminalWidth),
		summarize:   summarize.New(ctx, api),
		history:     history.New(ctx, api),
		audio:       audio.New(ctx, api, opts.DownloadDir),
		confirm:     modal.NewConfirm(),
		viewer:      modal.NewViewer(),
	}
	a.snap = ctrl.Snapshot()
	a.view = router.Route(a.snap, a.isRegistering)
	return a
}

// CurrentView returns the current top-level view
func (a *App) CurrentView() router.View {
	return a.view
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	ctx, ctrl := a.ctx, a.ctrl
	restore := func() tea.Msg {
		ctrl.Restore(ctx)
		return nil
	}
	return tea.Batch(a.waitForSnapshot(), restore, a.login.Init())
}

func (a *App) waitForSnapshot() tea.Cmd {
	ch := a.snapshots
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case snapshotMsg:
		cmd := a.applySnapshot(session.Snapshot(msg))
		return a, tea.Batch(cmd, a.waitForSnapshot())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
		return a, a.handleKey(msg)

	case auth.SwitchToRegisterMsg:
		a.isRegistering = true
		a.view = router.Route(a.snap, a.isRegistering)
		a.register = auth.NewRegister(a.ctx, a.ctrl)
		a.register.SetWidth(a.contentWidth())
		return a, a.register.Init()

	case auth.SwitchToLoginMsg:
		a.isRegistering = false
		a.view = router.Route(a.snap, a.isRegistering)
		a.login = auth.NewLogin(a.ctx, a.ctrl, a.opts.Google)
		a.login.SetWidth(a.contentWidth())
		return a, a.login.Init()

	case auth.ResultMsg:
		if a.isRegistering {
			_, cmd := a.register.Update(msg)
			return a, cmd
		}
		_, cmd := a.login.Update(msg)
		return a, cmd

	case statsLoadedMsg:
		a.applyStats(msg)
		return a, nil

	case panels.QuotaChangedMsg:
		return a, a.loadStats()

	case panels.ViewSummaryMsg:
		a.viewer.Open(msg.Record)
		return a, nil

	case panels.ConfirmDeleteMsg:
		a.confirm.Request(modal.KindDelete, msg.ID, msg.Title)
		return a, nil

	case panels.SummaryDeletedMsg:
		if a.viewer.RecordID() == msg.ID {
			a.viewer.Close()
		}
		return a, nil

	case panels.SummaryCreatedMsg:
		if a.history.Loaded() {
			return a, a.history.Refresh()
		}
		return a, nil

	case modal.ConfirmedMsg:
		switch msg.Kind {
		case modal.KindDelete:
			return a, a.history.Delete(msg.TargetID)
		case modal.KindLogout:
			a.ctrl.Logout()
		}
		return a, nil

	case modal.CancelledMsg:
		return a, nil
	}

	return a, a.forward(msg)
}

// forward passes results, ticks and form internals to the children that own them
func (a *App) forward(msg tea.Msg) tea.Cmd {
	switch a.view {
	case router.ViewLogin:
		_, cmd := a.login.Update(msg)
		return cmd
	case router.ViewRegister:
		_, cmd := a.register.Update(msg)
		return cmd
	}

	var cmds []tea.Cmd
	for _, p := range []tea.Model{a.summarize, a.history, a.audio} {
		_, cmd := p.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch a.view {
	case router.ViewLoading:
		if msg.String() == "q" {
			return a.quit()
		}
		return nil
	case router.ViewLogin:
		_, cmd := a.login.Update(msg)
		return cmd
	case router.ViewRegister:
		_, cmd := a.register.Update(msg)
		return cmd
	}
	return a.updateDashboard(msg)
}

type panel interface {
	tea.Model
	Capturing() bool
}

func (a *App) activePanel() panel {
	switch a.tab {
	case TabHistory:
		return a.history
	case TabAudio:
		return a.audio
	default:
		return a.summarize
	}
}

func (a *App) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	if a.confirm.IsOpen() {
		return a.confirm.Update(msg)
	}
	if a.viewer.IsOpen() {
		return a.viewer.Update(msg)
	}

	p := a.activePanel()
	if !p.Capturing() {
		switch msg.String() {
		case "q":
			return a.quit()
		case "1":
			return a.switchTab(TabSummarize)
		case "2":
			return a.switchTab(TabHistory)
		case "3":
			return a.switchTab(TabAudio)
		case "]":
			return a.switchTab((a.tab + 1) % Tab(len(tabNames)))
		case "[":
			return a.switchTab((a.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
		case "L":
			a.confirm.Request(modal.KindLogout, 0, "")
			return nil
		case "s":
			return a.loadStats()
		}
	}

	_, cmd := p.Update(msg)
	return cmd
}

func (a *App) switchTab(t Tab) tea.Cmd {
	if t == a.tab {
		return nil
	}
	a.summarize.Blur()
	a.audio.Blur()
	a.tab = t

	switch t {
	case TabSummarize:
		return a.summarize.Focus()
	case TabAudio:
		return a.audio.Focus()
	case TabHistory:
		if !a.history.Loaded() && !a.history.InFlight() {
			return a.history.Refresh()
		}
	}
	return nil
}

// applySnapshot records a session transition and enters or leaves the dashboard
func (a *App) applySnapshot(snap session.Snapshot) tea.Cmd {
	prev := a.view
	a.snap = snap
	if snap.IsAuthenticated() {
		a.isRegistering = false
	}
	a.view = router.Route(snap, a.isRegistering)
	a.overview.SetUser(snap.User)

	switch {
	case a.view == router.ViewDashboard && prev != router.ViewDashboard:
		return a.enterDashboard()
	case a.view != router.ViewDashboard && prev == router.ViewDashboard:
		return a.leaveDashboard()
	}
	return nil
}

func (a *App) enterDashboard() tea.Cmd {
	a.tab = TabSummarize
	return tea.Batch(a.loadStats(), a.history.Refresh(), a.summarize.Focus())
}

// leaveDashboard drops everything belonging to the previous session
func (a *App) leaveDashboard() tea.Cmd {
	a.summarize.Reset()
	a.history.Reset()
	a.audio.Reset()
	a.confirm = modal.NewConfirm()
	a.viewer.Close()
	a.overview.Reset()
	a.statsUpdated = time.Time{}
	a.signIn++

	a.login = auth.NewLogin(a.ctx, a.ctrl, a.opts.Google)
	a.login.SetWidth(a.contentWidth())
	return a.login.Init()
}

func (a *App) loadStats() tea.Cmd {
	ctx, api, signIn := a.ctx, a.api, a.signIn
	return func() tea.Msg {
		stats, err := api.UserStats(ctx)
		return statsLoadedMsg{signIn: signIn, stats: stats, err: err, at: time.Now()}
	}
}

func (a *App) applyStats(msg statsLoadedMsg) {
	if a.view != router.ViewDashboard || msg.signIn != a.signIn {
		return
	}
	if msg.err != nil {
		if text := panels.ErrorText(msg.err); text != "" {
			a.overview.SetError(text)
		}
		return
	}
	a.overview.SetStats(msg.stats)
	a.statsUpdated = msg.at

	// keep the cached profile in step with the tier the backend reports
	user := a.snap.User
	if user == nil {
		return
	}
	var patch models.ProfilePatch
	changed := false
	if msg.stats.UserType != "" && msg.stats.UserType != user.UserType {
		tier := msg.stats.UserType
		patch.UserType = &tier
		changed = true
	}
	if msg.stats.DailyLimit > 0 && msg.stats.DailyLimit != user.DailyLimit {
		limit := msg.stats.DailyLimit
		patch.DailyLimit = &limit
		changed = true
	}
	if changed {
		a.ctrl.UpdateUser(patch)
	}
}

func (a *App) quit() tea.Cmd {
	a.summarize.Reset()
	a.audio.Reset()
	a.unsubscribe()
	a.cancel()
	return tea.Quit
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.login.SetWidth(a.contentWidth())
	a.register.SetWidth(a.contentWidth())
	a.overview.SetWidth(a.contentWidth())
	a.summarize.SetWidth(a.contentWidth())
	a.audio.SetWidth(a.contentWidth())
	a.history.SetSize(a.contentWidth(), a.panelHeight())
	a.viewer.SetSize(a.contentWidth(), a.contentHeight())
}

// frameWidth guards against zero/small width before WindowSizeMsg is received
func (a *App) frameWidth() int {
	return max(a.width, minTerminalWidth)
}

func (a *App) contentWidth() int {
	return a.frameWidth() - panelPadding
}

// contentHeight is what remains after header and footer lines
func (a *App) contentHeight() int {
	return max(10, a.height-4)
}

// panelHeight is what remains for the active panel below the overview and tabs
func (a *App) panelHeight() int {
	overview := 3
	if a.contentWidth() >= 100 {
		overview = 6
	}
	return max(6, a.contentHeight()-overview-6)
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.view {
	case router.ViewLoading:
		content = styles.Panel.Width(a.contentWidth()).Render(
			styles.MutedText.Render(fmt.Sprintf("%s Restoring session...", icons.Refresh.String())))
	case router.ViewLogin:
		content = styles.ActivePanel.Width(a.contentWidth()).Render(a.login.View())
	case router.ViewRegister:
		content = styles.ActivePanel.Width(a.contentWidth()).Render(a.register.View())
	default:
		content = a.viewDashboard()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewDashboard() string {
	var body string
	switch {
	case a.confirm.IsOpen():
		body = a.confirm.View()
	case a.viewer.IsOpen():
		body = a.viewer.View()
	default:
		body = a.activePanel().View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.overview.View(),
		"",
		a.renderTabs(),
		styles.ActivePanel.Width(a.contentWidth()).Render(body),
	)
}

func (a *App) renderTabs() string {
	tabIcons := []icons.Icon{icons.Summary, icons.History, icons.Audio}
	var tabs []string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s %s", i+1, tabIcons[i].String(), name)
		if Tab(i) == a.tab {
			tabs = append(tabs, styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderHeader creates the top frame line with the app title and signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("YouTube Summarizer"))

	right := ""
	if a.view == router.ViewDashboard && a.snap.User != nil {
		right = " " + contextStyle.Render(fmt.Sprintf("%s %s", icons.User.String(), a.snap.User.Username)) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right)) // -4 for ╭─ and ─╮
	header := "╭─" + left + strings.Repeat("─", fillWidth) + right + "─╮"
	return borderStyle.Render(header)
}

// shortcuts lists the keys relevant to what is on screen
func (a *App) shortcuts() []string {
	switch a.view {
	case router.ViewLoading:
		return []string{"q Quit"}
	case router.ViewLogin:
		return []string{"Enter Next", "ctrl+n Register", "ctrl+c Quit"}
	case router.ViewRegister:
		return []string{"Enter Next", "Esc Back", "ctrl+c Quit"}
	}
	switch {
	case a.confirm.IsOpen():
		return []string{"y Confirm", "n Cancel"}
	case a.viewer.IsOpen():
		return []string{"↑↓ Scroll", "d Delete", "Esc Close"}
	case a.activePanel().Capturing():
		return []string{"Enter Submit", "Esc Leave input", "ctrl+c Quit"}
	}
	return []string{"1-3 Tabs", "s Stats", "L Logout", "q Quit"}
}

// renderFooter creates the bottom frame line with keyboard shortcuts and stats age
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var styled []string
	for _, s := range a.shortcuts() {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}
	left := " " + strings.Join(styled, "  ") + " "

	right := ""
	if a.view == router.ViewDashboard && !a.statsUpdated.IsZero() {
		right = " " + statusStyle.Render("Updated "+format.Ago(a.statsUpdated)) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right)) // -4 for ╰─ and ─╯
	footer := "╰─" + left + strings.Repeat("─", fillWidth) + right + "─╯"
	return borderStyle.Render(footer)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, ctrl Controller, api API, opts Options) error {
	app := New(ctx, ctrl, api, opts)
	defer app.cancel()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
