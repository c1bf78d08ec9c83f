package chatlist

import "strconv"

// Fixed subtitle texts. The redaction notice always overrides the stored
// message text; the stored text itself is never altered.
const (
	SubtitleInvite     = "Say hi to start the conversation"
	SubtitleDeleted    = "This message was deleted"
	SubtitleNoMessages = "No messages yet"
)

// unreadBadgeCap is the highest count rendered literally; anything above
// shows as "9+".
const unreadBadgeCap = 9

// UnreadBadge returns the textual rendering of an unread count: "" for
// zero (no badge), the count itself up to 9, and "9+" beyond. Only the
// rendering is capped, never the underlying count.
func UnreadBadge(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > unreadBadgeCap:
		return strconv.Itoa(unreadBadgeCap) + "+"
	default:
		return strconv.Itoa(count)
	}
}

// Subtitle returns the secondary line shown under an entry's name:
// an invitation prompt for pending placeholders, a fixed redaction notice
// when the last message was deleted for everyone, otherwise the stored
// message text, or a fixed notice when the conversation has no messages.
func Subtitle(e Entry) string {
	if e.Pending != nil {
		return SubtitleInvite
	}
	lm := e.Real.LastMessage
	switch {
	case lm == nil:
		return SubtitleNoMessages
	case lm.DeletedForEveryone:
		return SubtitleDeleted
	default:
		return lm.Text
	}
}
