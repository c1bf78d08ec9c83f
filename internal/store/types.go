package store

// Profile is the local user's identity row.
type Profile struct {
	UserID      string
	DisplayName string
	Avatar      string
}

// Contact represents a paired peer.
type Contact struct {
	UserID      string
	DisplayName string
	LocalAlias  string
	Avatar      string
	PairedAt    int64
}

// Chat represents a two-party conversation. UserA and UserB hold the
// lexicographically sorted participant pair; Peer* fields are resolved
// relative to the local user at query time.
type Chat struct {
	ChatID             string
	UserA              string
	UserB              string
	PeerID             string
	PeerName           string
	PeerAvatar         string
	UnreadCount        int
	LastMessageID      string
	LastMessageText    string
	LastMessageAt      int64
	LastMessageDeleted bool
}

// Message represents a stored message.
type Message struct {
	ID                 int64
	ChatID             string
	MsgID              string
	SenderID           string
	Body               string
	DeletedForEveryone bool
	FromMe             bool
	Status             string
	Timestamp          int64
}

// OutboxEntry represents a pending outgoing message.
type OutboxEntry struct {
	ID           int64
	ClientMsgID  string
	ChatID       string
	PeerID       string
	Body         string
	Status       string // queued, sending, sent, failed
	ErrorMessage string
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message Message
	Snippet string
}
