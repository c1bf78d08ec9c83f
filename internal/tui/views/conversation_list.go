package views

import (
	"fmt"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/tui/model"
	"github.com/AI-ML-Modelor/aa/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ConversationList is the main reconciled chat list view. Rows arrive
// fully resolved from the view model; this view only renders them.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	rows   []model.ChatRow
	total  int
	filter string
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Conversations ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table: table,
		theme: theme,
	}
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "Conversations" }

// Init implements Component.
func (cl *ConversationList) Init() {}

// Start implements Component.
func (cl *ConversationList) Start() {}

// Stop implements Component.
func (cl *ConversationList) Stop() {}

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: ":", Description: "Command"},
		{Key: "p", Description: "Pair"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
		{Key: "0-9", Description: "Jump", Numeric: true},
	}
}

// Update refreshes the list. total is the unfiltered entry count and
// filter the active query, both used for the title line.
func (cl *ConversationList) Update(rows []model.ChatRow, total int, filter string) {
	cl.rows = rows
	cl.total = total
	cl.filter = filter
	cl.render()
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	for i, row := range cl.rows {
		name := row.Name
		if row.Badge != "" {
			name = fmt.Sprintf("(%s) %s", row.Badge, name)
		}

		fg := cl.theme.FgColor
		if row.Pending {
			fg = cl.theme.PendingColor
		}

		r := i + 1
		cl.SetCell(r, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(fg))
		cl.SetCell(r, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(row.Subtitle))).SetExpansion(2).SetTextColor(fg))
		cl.SetCell(r, 2, tview.NewTableCell(formatTimestamp(row.LastAt)).SetExpansion(0).SetTextColor(fg).SetAlign(tview.AlignRight))
	}

	if len(cl.rows) == 0 {
		empty := "No conversations yet. Press p to pair with a contact."
		if cl.filter != "" {
			empty = "No conversations match the filter."
		}
		cl.SetCell(1, 0, tview.NewTableCell(" "+empty).
			SetSelectable(false).
			SetTextColor(cl.theme.PendingColor))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d/%d) filter: %s ", len(cl.rows), cl.total, cl.filter))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d) ", len(cl.rows)))
	}
}

// SelectedRow returns the currently selected row, or nil.
func (cl *ConversationList) SelectedRow() *model.ChatRow {
	r, _ := cl.GetSelection()
	idx := r - 1 // account for header
	if idx >= 0 && idx < len(cl.rows) {
		row := cl.rows[idx]
		return &row
	}
	return nil
}

// RowByIndex returns the Nth visible row (1-based), or nil.
func (cl *ConversationList) RowByIndex(n int) *model.ChatRow {
	if n >= 1 && n <= len(cl.rows) {
		row := cl.rows[n-1]
		return &row
	}
	return nil
}

// RowByName returns the first row whose resolved name matches, or nil.
func (cl *ConversationList) RowByName(name string) *model.ChatRow {
	for _, row := range cl.rows {
		if row.Name == name {
			r := row
			return &r
		}
	}
	return nil
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
