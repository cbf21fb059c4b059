// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/provena/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/provena/internal/core/domain"
)

// Row is one appearance of the traced content.
type Row struct {
	// Original marks the earliest known appearance.
	Original bool

	URL        string
	Platform   string
	Timestamp  time.Time
	Metrics    *domain.EngagementMetrics
	Confidence float64
}

// RowsFromResult flattens a search result into the original source
// followed by its viral moments, in result order.
func RowsFromResult(result *domain.SearchResult) []Row {
	if result == nil {
		return nil
	}

	rows := make([]Row, 0, len(result.ViralMoments)+1)
	if src := result.OriginalSource; src != nil {
		rows = append(rows, Row{
			Original:   true,
			URL:        src.URL,
			Platform:   src.Platform,
			Timestamp:  src.Timestamp,
			Confidence: src.ConfidenceScore,
		})
	}
	for _, m := range result.ViralMoments {
		rows = append(rows, Row{
			URL:       m.URL,
			Platform:  m.Platform,
			Timestamp: m.Timestamp,
			Metrics:   m.Metrics,
		})
	}
	return rows
}

// ResultList displays appearances in a navigable list.
type ResultList struct {
	rows     []Row
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.rows) == 0 {
		return r.styles.Muted.Render("No appearances")
	}

	lines := make([]string, 0, len(r.rows)+2)
	header := r.styles.Subtitle.Render(fmt.Sprintf("Appearances (%d)", len(r.rows)))
	lines = append(lines, header, "")

	// Each row renders as two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.rows) {
		end = len(r.rows)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i, &r.rows[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) renderRow(index int, row *Row) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	tag := row.Platform
	if row.Original {
		tag = "origin · " + tag
	}

	maxURLLen := r.width - len(tag) - 8
	if maxURLLen < 10 {
		maxURLLen = 10
	}
	link := truncate(row.URL, maxURLLen)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxURLLen, link, tag))
	} else {
		label := r.styles.Normal
		if row.Original {
			label = r.styles.Success
		}
		titleLine = label.Render(fmt.Sprintf("%s%-*s  ", indicator, maxURLLen, link)) +
			r.styles.Subtitle.Render(tag)
	}

	return titleLine + "\n" + r.styles.Muted.Render("    "+describe(row))
}

// describe renders the timestamp and engagement of a row.
func describe(row *Row) string {
	parts := make([]string, 0, 4)
	if row.Timestamp.IsZero() {
		parts = append(parts, "date unknown")
	} else {
		parts = append(parts, row.Timestamp.UTC().Format("2006-01-02 15:04"))
	}
	if row.Original {
		parts = append(parts, fmt.Sprintf("confidence %.2f", row.Confidence))
		return strings.Join(parts, "  ")
	}
	if v := row.Metrics.ViewsOrZero(); v > 0 {
		parts = append(parts, fmt.Sprintf("%d views", v))
	}
	if s := row.Metrics.SharesOrZero(); s > 0 {
		parts = append(parts, fmt.Sprintf("%d shares", s))
	}
	if l := row.Metrics.LikesOrZero(); l > 0 {
		parts = append(parts, fmt.Sprintf("%d likes", l))
	}
	return strings.Join(parts, "  ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetRows replaces the list contents and resets the selection.
func (r *ResultList) SetRows(rows []Row) {
	r.rows = rows
	r.selected = 0
}

// Rows returns the current rows.
func (r *ResultList) Rows() []Row {
	return r.rows
}

// Selected returns the index of the selected row.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index. Out of range values are ignored.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.rows) {
		r.selected = index
	}
}

// SelectedRow returns the currently selected row, or nil if none.
func (r *ResultList) SelectedRow() *Row {
	if len(r.rows) == 0 || r.selected < 0 || r.selected >= len(r.rows) {
		return nil
	}
	return &r.rows[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.rows)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of rows.
func (r *ResultList) Count() int {
	return len(r.rows)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.rows) == 0
}
