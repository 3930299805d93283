package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"vaultsearch/internal/content"
	"vaultsearch/internal/search"
)

// debounce delays searches while the user is still typing; repeated
// prefixes that do fire are absorbed by the engine's result cache.
const debounce = 250 * time.Millisecond

const resultLimit = 8

// Searcher is the TUI-facing subset of the query engine.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
}

// Model is the Bubble Tea model for incremental vault search.
type Model struct {
	engine   Searcher
	input    textinput.Model
	renderer *glamour.TermRenderer

	results  []search.Result
	cursor   int
	filter   content.Type
	status   string
	width    int
	height   int
	searchID int // monotonic; stale responses are dropped
}

type searchMsg struct {
	id      int
	query   string
	results []search.Result
	err     error
}

type debounceMsg struct {
	id int
}

// New creates the search TUI model.
func New(engine Searcher) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search notes, projects, technologies..."
	ti.Focus()
	return Model{
		engine: engine,
		input:  ti,
		status: "Type to search. Tab cycles the type filter.",
	}
}

// Run starts the TUI program.
func Run(engine Searcher) error {
	_, err := tea.NewProgram(New(engine), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(msg.Width-6),
		); err == nil {
			m.renderer = r
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.filter = nextFilter(m.filter)
			m.searchID++
			return m, m.startSearch()
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.searchID++
			id := m.searchID
			return m, tea.Batch(cmd, tea.Tick(debounce, func(time.Time) tea.Msg {
				return debounceMsg{id: id}
			}))
		}
		return m, cmd

	case debounceMsg:
		if msg.id != m.searchID {
			return m, nil // superseded by further typing
		}
		return m, m.startSearch()

	case searchMsg:
		if msg.id != m.searchID {
			return m, nil
		}
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			m.results = nil
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		if msg.query == "" {
			m.status = "Type to search. Tab cycles the type filter."
		} else {
			m.status = fmt.Sprintf("%d results for %q", len(msg.results), msg.query)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startSearch() tea.Cmd {
	id := m.searchID
	query := strings.TrimSpace(m.input.Value())
	engine := m.engine
	filter := m.filter
	return func() tea.Msg {
		if query == "" {
			return searchMsg{id: id}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		results, err := engine.Search(ctx, search.Query{
			Text:  query,
			Limit: resultLimit,
			Type:  filter,
		})
		return searchMsg{id: id, query: query, results: results, err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	header := titleStyle.Render("vaultsearch")
	if m.filter != content.TypeAny {
		header += "  " + typeStyle.Render("["+string(m.filter)+"]")
	}
	sb.WriteString(header + "\n")
	sb.WriteString(m.input.View() + "\n\n")

	if len(m.results) == 0 {
		sb.WriteString(dimStyle.Render("No results.") + "\n")
	}
	for i, r := range m.results {
		line := fmt.Sprintf("%s  %s %s",
			r.Title,
			typeStyle.Render(string(r.Type)),
			scoreStyle.Render(fmt.Sprintf("%.3f", r.Score)))
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString(listItemStyle.Render("  "+line) + "\n")
		}
	}

	if len(m.results) > 0 && m.cursor < len(m.results) {
		sb.WriteString("\n" + m.renderPreview(m.results[m.cursor]) + "\n")
	}

	sb.WriteString("\n" + subtitleStyle.Render(m.status))
	sb.WriteString("\n" + helpStyle.Render("↑/↓ select · tab filter · esc quit"))
	return sb.String()
}

func (m Model) renderPreview(r search.Result) string {
	md := fmt.Sprintf("**%s**\n\n%s", r.Title, r.Snippet)
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			return previewStyle.Render(strings.TrimRight(rendered, "\n"))
		}
	}
	return previewStyle.Render(lipgloss.NewStyle().Width(max(20, m.width-6)).Render(md))
}

// nextFilter cycles any → note → project → technology → any.
func nextFilter(t content.Type) content.Type {
	switch t {
	case content.TypeAny:
		return content.TypeNote
	case content.TypeNote:
		return content.TypeProject
	case content.TypeProject:
		return content.TypeTechnology
	default:
		return content.TypeAny
	}
}
