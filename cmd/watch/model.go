package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-feed/internal/types"
)

const defaultTableRows = 12

// Feed is the orchestrator surface the dashboard drives.
type Feed interface {
	OnFilterChange(ctx context.Context, next types.FilterState) error
	Refresh(ctx context.Context) error
	Subscribe() (<-chan types.Snapshot, func())
}

// Model is the Bubble Tea model of the dashboard. Key presses propose filter
// changes; the displayed filters only change once the orchestrator publishes them.
type Model struct {
	feed        Feed
	updates     <-chan types.Snapshot
	unsubscribe func()

	filters     types.FilterState
	assets      []types.Asset
	snapshot    types.Snapshot
	hasSnapshot bool
	closed      bool
	err         error

	spinner   spinner.Model
	dataTable table.Model
	width     int
	height    int
}

// NewModel subscribes to feed and prepares to apply initial on start.
func NewModel(feed Feed, initial types.FilterState, assets []types.Asset) Model {
	updates, unsubscribe := feed.Subscribe()

	return Model{
		feed:        feed,
		updates:     updates,
		unsubscribe: unsubscribe,
		filters:     initial,
		assets:      assets,
		spinner:     NewSpinner(),
		dataTable:   NewDataTable(defaultTableRows),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.applyFilters(m.filters),
		waitForSnapshot(m.updates),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(max(msg.Height-8, 3))

		return m, nil

	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		m.hasSnapshot = true
		m.filters = msg.Snapshot.Filters
		m.dataTable = UpdateTableRows(m.dataTable, msg.Snapshot.Points)

		return m, waitForSnapshot(m.updates)

	case FeedErrorMsg:
		m.err = msg.Err

		return m, nil

	case FeedClosedMsg:
		m.closed = true

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)

	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next := m.filters

	switch msg.String() {
	case "ctrl+c", "q":
		m.unsubscribe()

		return m, tea.Quit
	case "c":
		next.Currency = toggleCurrency(m.filters.Currency)
	case "t":
		next.Timeframe = toggleTimeframe(m.filters.Timeframe)
	case "a":
		next.Asset = nextAsset(m.assets, m.filters.Asset)
	case "r":
		m.err = nil

		return m, m.refresh()
	default:
		var cmd tea.Cmd
		m.dataTable, cmd = m.dataTable.Update(msg)

		return m, cmd
	}

	m.err = nil

	return m, m.applyFilters(next)
}

func (m Model) applyFilters(next types.FilterState) tea.Cmd {
	feed := m.feed

	return func() tea.Msg {
		if err := feed.OnFilterChange(context.Background(), next); err != nil {
			return FeedErrorMsg{Err: err}
		}

		return nil
	}
}

func (m Model) refresh() tea.Cmd {
	feed := m.feed

	return func() tea.Msg {
		if err := feed.Refresh(context.Background()); err != nil {
			return FeedErrorMsg{Err: err}
		}

		return nil
	}
}

// waitForSnapshot blocks until the orchestrator publishes again.
func waitForSnapshot(updates <-chan types.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return FeedClosedMsg{}
		}

		return SnapshotMsg{Snapshot: snap}
	}
}

func toggleCurrency(c types.Currency) types.Currency {
	if c == types.CurrencyUSD {
		return types.CurrencyEUR
	}

	return types.CurrencyUSD
}

func toggleTimeframe(tf types.Timeframe) types.Timeframe {
	if tf == types.TimeframeOneDay {
		return types.TimeframeOneWeek
	}

	return types.TimeframeOneDay
}

func nextAsset(assets []types.Asset, current types.Asset) types.Asset {
	if len(assets) == 0 {
		return current
	}

	for i, a := range assets {
		if a == current {
			return assets[(i+1)%len(assets)]
		}
	}

	return assets[0]
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Argo Feed"))
	s.WriteString("  ")
	s.WriteString(FilterStyle.Render(fmt.Sprintf("%s / %s / %s", m.filters.Asset, m.filters.Currency, m.filters.Timeframe)))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	switch {
	case m.closed:
		s.WriteString("Feed closed.\n")
	case !m.hasSnapshot || (m.snapshot.Loading && len(m.snapshot.Points) == 0):
		s.WriteString(m.spinner.View())
		s.WriteString(" Loading market data...\n")
	default:
		if m.snapshot.Loading {
			s.WriteString(m.spinner.View())
			s.WriteString(" Refreshing...\n")
		}

		s.WriteString(fmt.Sprintf("Points: %d | Generation: %d\n", len(m.snapshot.Points), m.snapshot.Generation))
		s.WriteString(m.dataTable.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("c: currency | t: timeframe | a: asset | r: refresh | q: quit"))

	return s.String()
}
