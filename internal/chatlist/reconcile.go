package chatlist

import "strings"

// chatIDSeparator joins the sorted participant pair into a chat id.
const chatIDSeparator = "_"

// ChatID derives the canonical conversation identifier for a pair of
// participants: the lexicographically sorted pair joined with "_". Both
// participants compute the same id independently, without negotiation.
func ChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + chatIDSeparator + b
}

// Reconcile merges the user's real conversations with their paired
// contacts into a single de-duplicated list. Real conversations come
// first, in input order; one placeholder is appended for each paired
// contact that has no conversation with the user yet. The output never
// contains two entries for the same unordered participant pair.
//
// If self has no user id (profile not loaded yet), Reconcile returns nil.
func Reconcile(self Profile, convs []Conversation, contacts []Contact) []Entry {
	if self.UserID == "" {
		return nil
	}

	entries := make([]Entry, 0, len(convs)+len(contacts))
	for i := range convs {
		entries = append(entries, Entry{Real: &convs[i]})
	}

	for _, c := range contacts {
		// A contact record for ourselves is a pairing-layer bug; a
		// conversation needs two distinct participants.
		if c.UserID == self.UserID || c.UserID == "" {
			continue
		}
		if hasConversation(convs, self.UserID, c.UserID) {
			continue
		}
		entries = append(entries, Entry{Pending: &Placeholder{
			PeerID:      c.UserID,
			DisplayName: resolveContactName(c),
			Avatar:      c.Avatar,
		}})
	}
	return entries
}

func hasConversation(convs []Conversation, selfID, peerID string) bool {
	for i := range convs {
		if convs[i].involves(selfID, peerID) {
			return true
		}
	}
	return false
}

// Synthesize builds the full conversation record a placeholder stands for,
// populating participant details from the local profile and the contact.
// It is what a pending entry becomes the moment a chat record is needed.
func Synthesize(self Profile, c Contact) Conversation {
	a, b := self.UserID, c.UserID
	if b < a {
		a, b = b, a
	}
	return Conversation{
		ChatID:       ChatID(self.UserID, c.UserID),
		Participants: [2]string{a, b},
		Details: map[string]ParticipantDetail{
			self.UserID: {DisplayName: self.DisplayName, Avatar: self.Avatar},
			c.UserID:    {DisplayName: resolveContactName(c), Avatar: c.Avatar},
		},
		UnreadCount: 0,
	}
}

// ResolveName returns the display name for the entry's other participant,
// applying the nickname precedence chain: paired-contact local alias, then
// paired-contact reported name, then the conversation-stored detail, then
// the bare peer id. Returns "" when the other participant cannot be
// determined (selfID not a member of the conversation).
func ResolveName(selfID string, e Entry, contacts map[string]Contact) string {
	peerID := e.PeerID(selfID)
	if peerID == "" {
		return ""
	}
	if c, ok := contacts[peerID]; ok {
		if name := resolveContactName(c); name != "" {
			return name
		}
	}
	if e.Real != nil {
		if d, ok := e.Real.Details[peerID]; ok && d.DisplayName != "" {
			return d.DisplayName
		}
	} else if e.Pending.DisplayName != "" {
		return e.Pending.DisplayName
	}
	return peerID
}

// ContactIndex builds a lookup map keyed by user id.
func ContactIndex(contacts []Contact) map[string]Contact {
	idx := make(map[string]Contact, len(contacts))
	for _, c := range contacts {
		idx[c.UserID] = c
	}
	return idx
}

func resolveContactName(c Contact) string {
	if alias := strings.TrimSpace(c.LocalAlias); alias != "" {
		return alias
	}
	return c.DisplayName
}
