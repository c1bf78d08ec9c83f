package chatlist

import "time"

// Profile is the local user's identity for the duration of a session.
type Profile struct {
	UserID      string
	DisplayName string
	Avatar      string
}

// Contact is a peer the local user has paired with, whether or not any
// messages have been exchanged. LocalAlias is a user-assigned nickname
// that overrides the contact's self-reported DisplayName for presentation.
type Contact struct {
	UserID      string
	DisplayName string
	LocalAlias  string
	Avatar      string
}

// ParticipantDetail is the presentation info stored on a conversation for
// one of its participants.
type ParticipantDetail struct {
	DisplayName string
	Avatar      string
}

// LastMessage summarizes the most recent message of a conversation.
type LastMessage struct {
	Text               string
	Timestamp          time.Time
	DeletedForEveryone bool
}

// Conversation is a real (persisted) two-party conversation.
// Participants always holds exactly two distinct user IDs, and Details has
// an entry for each of them.
type Conversation struct {
	ChatID       string
	Participants [2]string
	Details      map[string]ParticipantDetail
	LastMessage  *LastMessage
	UnreadCount  int
}

// Placeholder is a synthesized list entry for a paired contact with no
// conversation yet. It carries no message summary and no unread count;
// that constraint is structural, not a flag.
type Placeholder struct {
	PeerID      string
	DisplayName string
	Avatar      string
}

// Entry is one row of the reconciled conversation list: exactly one of
// Real or Pending is set.
type Entry struct {
	Real    *Conversation
	Pending *Placeholder
}

// IsPending reports whether the entry is a synthesized placeholder.
func (e Entry) IsPending() bool { return e.Pending != nil }

// ChatID returns the entry's conversation identifier. For placeholders the
// canonical id is derived from the pair, so both sides of a future
// conversation agree on it before it exists.
func (e Entry) ChatID(selfID string) string {
	if e.Real != nil {
		return e.Real.ChatID
	}
	return ChatID(selfID, e.Pending.PeerID)
}

// PeerID returns the participant that is not selfID, or "" if selfID is
// not a member of the entry (foreign conversation).
func (e Entry) PeerID(selfID string) string {
	if e.Pending != nil {
		return e.Pending.PeerID
	}
	return e.Real.otherParticipant(selfID)
}

func (c *Conversation) otherParticipant(selfID string) string {
	switch selfID {
	case c.Participants[0]:
		return c.Participants[1]
	case c.Participants[1]:
		return c.Participants[0]
	}
	return ""
}

// involves reports whether the conversation is between the two given users,
// in either order. Membership is tested over Participants, not ChatID:
// participants are the authoritative identity of a conversation.
func (c *Conversation) involves(a, b string) bool {
	return (c.Participants[0] == a && c.Participants[1] == b) ||
		(c.Participants[0] == b && c.Participants[1] == a)
}
