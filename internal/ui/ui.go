package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/services"
	"github.com/desertthunder/camsort/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	PlanningView
	PreviewView
	ConfirmView
	ApplyView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	playlists    services.PlaylistService
	engine       tasks.SortEngine
	width        int
	height       int
	playlistList list.Model
	loaded       bool
	planList     list.Model
	selected     models.Playlist
	plan         *tasks.SortPlan
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	applied      bool
	err          error
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, playlists services.PlaylistService, engine tasks.SortEngine) *Model {
	return &Model{
		ctx:       ctx,
		view:      PlaylistListView,
		playlists: playlists,
		engine:    engine,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title.UnsetMarginBottom())),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

// Init initializes the TUI by fetching playlists from the provider.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPlaylists(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.plan != nil {
			m.planList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsPayload)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.loaded = true
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPlanReady:
		data := msg.data.(planPayload)
		m.progressChan = nil
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.plan = data.plan
		items := make([]list.Item, len(data.plan.Entries))
		for i, e := range data.plan.Entries {
			items[i] = entryItem{entry: e}
		}
		m.planList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.planList.Title = fmt.Sprintf("Harmonic order for '%s'", data.plan.Playlist.Name)
		m.planList.SetSize(m.width-4, m.height-8)
		m.view = PreviewView
		return m, nil

	case MsgApplyComplete:
		m.progressChan = nil
		m.err, _ = msg.data.(error)
		m.applied = m.err == nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case PlanningView:
		return m.renderProgress("Sorting Playlist")
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case ApplyView:
		return m.renderProgress("Reordering Playlist")
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.loaded {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.selected = pl.playlist
			m.view = PlanningView
			return m, m.startPlan()
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.planList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.apply):
		if m.plan.Writable() && m.plan.Moved() > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.view = ApplyView
		return m, m.startApply()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = PreviewView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
	}
	return m, nil
}

func (m *Model) reset() {
	m.view = PlaylistListView
	m.selected = models.Playlist{}
	m.plan = nil
	m.applied = false
	m.progress = tasks.ProgressUpdate{}
	m.err = nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == PlaylistListView && m.loaded:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case m.view == PreviewView && m.plan != nil:
		m.planList, cmd = m.planList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	ctx, svc := m.ctx, m.playlists
	return func() tea.Msg {
		playlists, err := svc.Playlists(ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

// startPlan runs the engine in a command and streams its progress until the plan is ready.
func (m *Model) startPlan() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 64)
	m.progressChan = ch
	m.progress = tasks.ProgressUpdate{}

	ctx, engine, id := m.ctx, m.engine, m.selected.ID
	run := func() tea.Msg {
		defer close(ch)
		plan, err := engine.Plan(ctx, id, ch)
		return planReadyMsg(plan, err)
	}
	return tea.Batch(run, m.waitForProgress())
}

func (m *Model) startApply() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 8)
	m.progressChan = ch
	m.progress = tasks.ProgressUpdate{}

	ctx, engine, plan := m.ctx, m.engine, m.plan
	run := func() tea.Msg {
		defer close(ch)
		return applyCompleteMsg(engine.Apply(ctx, plan, ch))
	}
	return tea.Batch(run, m.waitForProgress())
}

// waitForProgress reads one update. A closed channel yields no message, the run command reports completion.
func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progressChan
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.sort, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderProgress(heading string) string {
	title := styles.title.Render(heading)

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = fmt.Sprintf("Fetching %s...", m.selected.Name)
	case tasks.Enrich:
		phase = fmt.Sprintf("Resolving keys (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Sort:
		phase = "Sorting by key and tempo..."
	case tasks.WriteBack:
		phase = "Writing new order..."
	default:
		phase = "Processing..."
	}

	var pct float64
	if m.progress.Total > 0 {
		pct = float64(m.progress.Step) / float64(m.progress.Total)
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s\n\n%s", title, m.spinner.View(), phase, m.bar.ViewAs(pct), styles.help.Render(m.progress.Message))
}

func (m *Model) renderPreview() string {
	var notes []string
	stats := m.plan.Stats
	notes = append(notes, fmt.Sprintf("Resolved %d/%d (%d local, %d lookup) • %d moved",
		stats.Resolved, stats.Total, stats.FromLocal, stats.FromLookup, m.plan.Moved()))

	switch {
	case !m.plan.Writable():
		notes = append(notes, styles.warn.Render(fmt.Sprintf("%d items cannot be reordered, write-back is disabled", m.plan.Skipped)))
	case m.plan.Moved() == 0:
		notes = append(notes, styles.ok.Render("Already in harmonic order"))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.plan.Writable() && m.plan.Moved() > 0 {
		helpKeys = append([]key.Binding{m.keys.apply}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s\n%s", m.planList.View(), strings.Join(notes, "\n"), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Reorder '%s'?", m.plan.Playlist.Name))
	info := fmt.Sprintf("\nTracks: %d\nMoved: %d\nUnresolved: %d (kept at the end)\n",
		m.plan.Stats.Total, m.plan.Moved(), m.plan.Stats.Total-m.plan.Stats.Resolved)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Sort failed: %v", m.err)), helpView)
	}
	if m.plan == nil || !m.applied {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Playlist Reordered!")
	info := fmt.Sprintf("\nPlaylist: %s\nMoved: %d of %d tracks", m.plan.Playlist.Name, m.plan.Moved(), m.plan.Stats.Total)

	var misses string
	if len(m.plan.Misses) > 0 {
		misses = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("No key found for %d tracks:", len(m.plan.Misses))))
		for _, miss := range m.plan.Misses {
			misses += fmt.Sprintf("\n  • %s", miss.Track)
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, misses, helpView)
}
