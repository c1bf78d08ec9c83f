package views

import (
	"fmt"

	"github.com/AI-ML-Modelor/aa/internal/store"
	"github.com/AI-ML-Modelor/aa/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationInfo displays detailed information about a conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Init implements Component.
func (ci *ConversationInfo) Init() {}

// Start implements Component.
func (ci *ConversationInfo) Start() {}

// Stop implements Component.
func (ci *ConversationInfo) Stop() {}

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders conversation details. alias is the local nickname for
// the peer, if any.
func (ci *ConversationInfo) Update(chat *store.Chat, alias string) {
	ci.Clear()
	if chat == nil {
		return
	}

	fg := colorHex(ci.theme.FgColor.Hex())
	ct := colorHex(ci.theme.CounterColor.Hex())

	if alias == "" {
		alias = "-"
	}
	lastActive := formatTimestamp(chat.LastMessageAt)
	if lastActive == "" {
		lastActive = "-"
	}
	lastMsg := chat.LastMessageText
	if chat.LastMessageDeleted {
		lastMsg = "(deleted)"
	}

	text := fmt.Sprintf(
		"\n [%s::b]Name:[-:-:-]        [%s]%s[-]\n"+
			" [%s::b]Alias:[-:-:-]       [%s]%s[-]\n"+
			" [%s::b]Peer ID:[-:-:-]     [%s]%s[-]\n"+
			" [%s::b]Chat ID:[-:-:-]     [%s]%s[-]\n"+
			" [%s::b]Unread:[-:-:-]      [%s]%d[-]\n"+
			" [%s::b]Last Active:[-:-:-] [%s]%s[-]\n"+
			" [%s::b]Last Message:[-:-:-] [%s]%s[-]",
		fg, ct, tview.Escape(sanitizeForTerminal(chat.PeerName)),
		fg, ct, tview.Escape(alias),
		fg, ct, chat.PeerID,
		fg, ct, chat.ChatID,
		fg, ct, chat.UnreadCount,
		fg, ct, lastActive,
		fg, ct, tview.Escape(sanitizeForTerminal(lastMsg)),
	)

	_, _ = fmt.Fprint(ci, text)
	ci.SetTitle(fmt.Sprintf(" %s Details ", chat.PeerName))
}

func colorHex(hex int32) string {
	return fmt.Sprintf("#%06x", hex)
}
