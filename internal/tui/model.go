package tui

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/wiki-top/internal/config"
	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/feed"
	"github.com/nixlim/wiki-top/internal/stats"
	"github.com/nixlim/wiki-top/internal/wiki"
)

type ViewState int

const (
	ViewOverview ViewState = iota
	ViewNamespaces
	ViewActivity
	ViewPunchcard
	ViewMonths
	ViewTags
	ViewCode
	ViewMap
	ViewRecent
	viewCount
)

var viewTitles = [viewCount]string{
	"Overview", "Namespaces", "Activity", "Punchcard", "Months", "Tags", "Code", "Map", "Recent",
}

func (v ViewState) String() string {
	if v < 0 || v >= viewCount {
		return "Unknown"
	}
	return viewTitles[v]
}

// ParseView maps a config view name to its ViewState. Unknown names
// select the Overview.
func ParseView(name string) ViewState {
	for i, n := range config.Views {
		if n == name {
			return ViewState(i)
		}
	}
	return ViewOverview
}

// mapTimeout bounds the coordinate lookups behind the Map view.
const mapTimeout = 2 * time.Minute

type mapState int

const (
	mapIdle mapState = iota
	mapLoading
	mapLoaded
	mapFailed
)

// markersMsg delivers the result of an asynchronous coordinate lookup.
type markersMsg struct {
	markers []stats.Marker
	err     error
}

// CoordinateLoader fetches page coordinates for the Map view.
type CoordinateLoader interface {
	LoadCoordinates(ctx context.Context, s *wiki.Session, titles []string) (map[string][]wiki.Coordinate, error)
}

type Model struct {
	view     ViewState
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	session *wiki.Session
	stats   stats.DashboardStats
	feed    *feed.RingBuffer
	recent  []feed.FormattedEdit

	// recentFilter names the namespace or tag narrowing the Recent view.
	recentFilter string

	ctx    context.Context
	coords CoordinateLoader
	now    func() time.Time

	scrollPos int
	nsCursor  int
	tagCursor int

	detailOverlay   bool
	detailContent   string
	detailTitle     string
	detailScrollPos int

	mapState mapState
	markers  []stats.Marker
	mapErr   error

	isPersistent bool

	onShutdown func()
}

// NewModel builds the dashboard for a loaded session. All chart data is
// computed once here.
func NewModel(cfg config.Config, s *wiki.Session, opts ...ModelOption) Model {
	m := Model{
		view:    ParseView(cfg.Display.StartView),
		keys:    DefaultKeyMap(),
		cfg:     cfg,
		session: s,
		ctx:     context.Background(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(&m)
	}

	if m.session == nil {
		m.session = &wiki.Session{Namespaces: contribs.Namespaces{}, Edits: contribs.List{}}
	}
	m.stats = stats.NewCalculator(cfg.NamespaceColors).Compute(m.session, m.now())
	m.feed = feed.Recent(m.session.ScopedEdits(), cfg.Display.RecentEdits)
	m.recent = m.feed.ListNewestFirst()

	if m.view == ViewMap && m.coords != nil {
		m.mapState = mapLoading
	}

	return m
}

type ModelOption func(*Model)

func WithStartView(v ViewState) ModelOption {
	return func(m *Model) { m.view = v }
}

func WithCoordinateLoader(l CoordinateLoader) ModelOption {
	return func(m *Model) { m.coords = l }
}

func WithPersistenceFlag(isPersistent bool) ModelOption {
	return func(m *Model) { m.isPersistent = isPersistent }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// WithContext bounds background work such as coordinate lookups; cancelling
// ctx aborts them.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

func (m Model) Init() tea.Cmd {
	if m.view == ViewMap && m.mapState == mapLoading {
		return m.loadMarkers()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case markersMsg:
		if msg.err != nil {
			m.mapState = mapFailed
			m.mapErr = msg.err
			return m, nil
		}
		m.mapState = mapLoaded
		m.markers = msg.markers
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit
	}

	if m.detailOverlay {
		return m.handleDetailOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		return m.switchView((m.view + 1) % viewCount)
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView((m.view + viewCount - 1) % viewCount)
	case key.Matches(msg, m.keys.Jump):
		return m.switchView(ViewState(msg.Runes[0] - '1'))
	}

	switch m.view {
	case ViewNamespaces:
		return m.handleNamespacesKey(msg)
	case ViewTags:
		return m.handleTagsKey(msg)
	case ViewRecent:
		if key.Matches(msg, m.keys.Escape) && m.recentFilter != "" {
			m.recentFilter = ""
			m.recent = m.feed.ListNewestFirst()
			m.scrollPos = 0
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.scrollPos > 0 {
			m.scrollPos--
		}
	case key.Matches(msg, m.keys.Down):
		m.scrollPos++
	case key.Matches(msg, m.keys.PageUp):
		m.scrollPos -= m.pageSize()
		if m.scrollPos < 0 {
			m.scrollPos = 0
		}
	case key.Matches(msg, m.keys.PageDown):
		m.scrollPos += m.pageSize()
	}
	return m, nil
}

func (m Model) switchView(v ViewState) (tea.Model, tea.Cmd) {
	if v < 0 || v >= viewCount {
		return m, nil
	}
	m.view = v
	m.scrollPos = 0
	if v == ViewMap {
		if cmd := m.startMapLoad(); cmd != nil {
			m.mapState = mapLoading
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleNamespacesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.nsCursor > 0 {
			m.nsCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.nsCursor < len(m.stats.Namespaces)-1 {
			m.nsCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.nsCursor >= 0 && m.nsCursor < len(m.stats.Namespaces) {
			ns := m.stats.Namespaces[m.nsCursor]
			m.detailOverlay = true
			m.detailTitle, m.detailContent = m.formatTopEdited(ns)
			m.detailScrollPos = 0
		}
	case key.Matches(msg, m.keys.Filter):
		if m.nsCursor >= 0 && m.nsCursor < len(m.stats.Namespaces) {
			ns := m.stats.Namespaces[m.nsCursor]
			return m.filterRecent("in "+ns.Label, m.feed.ListByNamespace(ns.ID))
		}
	}
	return m, nil
}

func (m Model) handleTagsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.tagCursor > 0 {
			m.tagCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.tagCursor < len(m.stats.Tags)-1 {
			m.tagCursor++
		}
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Filter):
		if m.tagCursor >= 0 && m.tagCursor < len(m.stats.Tags) {
			tag := m.stats.Tags[m.tagCursor]
			return m.filterRecent("tagged "+tag.Label, m.feed.ListByTag(tag.Key))
		}
	}
	return m, nil
}

// filterRecent narrows the Recent view to edits, given oldest first, and
// switches to it.
func (m Model) filterRecent(label string, edits []feed.FormattedEdit) (tea.Model, tea.Cmd) {
	slices.Reverse(edits)
	if edits == nil {
		edits = []feed.FormattedEdit{}
	}
	m.recent = edits
	m.recentFilter = label
	return m.switchView(ViewRecent)
}

func (m Model) handleDetailOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
		m.detailOverlay = false
		m.detailContent = ""
		m.detailTitle = ""
		m.detailScrollPos = 0
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.detailScrollPos > 0 {
			m.detailScrollPos--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.detailScrollPos++
		return m, nil
	}

	return m, nil
}

// startMapLoad returns the coordinate lookup command, or nil when the
// markers are already loaded, loading, or cannot be loaded.
func (m Model) startMapLoad() tea.Cmd {
	if m.coords == nil || m.mapState == mapLoading || m.mapState == mapLoaded {
		return nil
	}
	return m.loadMarkers()
}

func (m Model) loadMarkers() tea.Cmd {
	loader, s, parent := m.coords, m.session, m.ctx
	return func() tea.Msg {
		activity := contribs.GroupByTitle(stats.GeoEdits(s.ScopedEdits()))
		if len(activity) == 0 {
			return markersMsg{markers: []stats.Marker{}}
		}
		titles := make([]string, len(activity))
		for i, a := range activity {
			titles[i] = a.Title
		}

		ctx, cancel := context.WithTimeout(parent, mapTimeout)
		defer cancel()
		coords, err := loader.LoadCoordinates(ctx, s, titles)
		if err != nil {
			return markersMsg{err: err}
		}
		return markersMsg{markers: stats.GeoMarkers(activity, coords)}
	}
}

func (m Model) pageSize() int {
	if m.height > 4 {
		return m.height - 4
	}
	return 1
}

func (m Model) headerIndicators() string {
	var parts []string
	if m.session.Since != nil {
		parts = append(parts, "[since "+m.session.Since.String()+"]")
	}
	if m.session.FromCache {
		parts = append(parts, "[cached]")
	}
	if !m.isPersistent {
		parts = append(parts, "[No persistence]")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + dimStyle.Render(strings.Join(parts, " "))
}

func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	var body string
	switch m.view {
	case ViewOverview:
		body = m.renderOverview()
	case ViewNamespaces:
		body = m.renderNamespaces()
	case ViewActivity:
		body = m.renderActivity()
	case ViewPunchcard:
		body = m.renderPunchcard()
	case ViewMonths:
		body = m.renderMonths()
	case ViewTags:
		body = m.renderTags()
	case ViewCode:
		body = m.renderSlices("Code", m.stats.Languages, "No edits to code pages.")
	case ViewMap:
		body = m.renderMap()
	case ViewRecent:
		body = m.renderRecent()
	}

	output := m.renderHeader() + "\n" + m.renderTabs() + "\n" + m.scroll(body)

	if m.detailOverlay {
		output = m.overlayDetail(output)
	}

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}

// scroll applies the view's scroll position to body, clamped so the last
// page stays full.
func (m Model) scroll(body string) string {
	if m.height <= 0 || m.view == ViewNamespaces || m.view == ViewTags {
		return body
	}
	lines := strings.Split(body, "\n")
	visibleH := m.height - 2
	if visibleH < 1 {
		visibleH = 1
	}
	start := m.scrollPos
	if start > len(lines)-visibleH {
		start = len(lines) - visibleH
	}
	if start < 0 {
		start = 0
	}
	end := start + visibleH
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
