package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nsanches/depcheck/pkg/scan"
	"github.com/nsanches/depcheck/pkg/vuln"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseFindings opens the interactive findings browser for a report.
func browseFindings(report *scan.Report) error {
	model := NewFindingListModel(report.Findings)
	_, err := tea.NewProgram(model).Run()
	return err
}

// =============================================================================
// FindingListModel - Interactive findings browser
// =============================================================================

// FindingListModel is the bubbletea model for browsing scan findings. The
// list can be narrowed to one ecosystem with the tab key; the selected
// finding's full description is shown below the list.
type FindingListModel struct {
	Findings []vuln.Finding
	Cursor   int
	Height   int
	Offset   int
	Filter   vuln.Ecosystem // zero value shows all ecosystems
}

// NewFindingListModel creates a new finding list model.
func NewFindingListModel(findings []vuln.Finding) FindingListModel {
	return FindingListModel{
		Findings: findings,
		Height:   15,
	}
}

func (m FindingListModel) Init() tea.Cmd {
	return nil
}

func (m FindingListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			m.Filter = nextFilter(m.Filter)
			m.Cursor = 0
			m.Offset = 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m FindingListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Scan Findings"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab filter  q quit"))
	b.WriteString("\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(listDimStyle.Render("  no findings for this filter"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(visible) {
		end = len(visible)
	}

	for i := m.Offset; i < end; i++ {
		f := visible[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-6s %-20s %s", cursor, f.Ecosystem, truncate(f.Package, 20), truncate(f.Description, 60))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.Cursor < len(visible) {
		b.WriteString(StyleDim.Render("  " + visible[m.Cursor].Description))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] filter: %s", m.Cursor+1, len(visible), filterLabel(m.Filter))))

	return b.String()
}

// visible returns the findings matching the current ecosystem filter.
func (m FindingListModel) visible() []vuln.Finding {
	if m.Filter == "" {
		return m.Findings
	}
	var out []vuln.Finding
	for _, f := range m.Findings {
		if f.Ecosystem == m.Filter {
			out = append(out, f)
		}
	}
	return out
}

// nextFilter cycles all -> npm -> pip -> all.
func nextFilter(f vuln.Ecosystem) vuln.Ecosystem {
	switch f {
	case "":
		return vuln.EcosystemNPM
	case vuln.EcosystemNPM:
		return vuln.EcosystemPip
	default:
		return ""
	}
}

func filterLabel(f vuln.Ecosystem) string {
	if f == "" {
		return "all"
	}
	return f.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
