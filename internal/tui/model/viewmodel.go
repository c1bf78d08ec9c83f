package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/chatlist"
	"github.com/AI-ML-Modelor/aa/internal/pairing"
	"github.com/AI-ML-Modelor/aa/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatRow is one renderable row of the conversation list, fully resolved
// for display: name precedence, subtitle and unread badge already applied.
type ChatRow struct {
	ChatID   string
	PeerID   string
	Name     string
	Subtitle string
	Badge    string
	LastAt   int64
	Pending  bool
}

// ViewModel caches store state for the UI. All loads hit the local
// database; reconciliation of chats and paired contacts happens here so
// views only ever see resolved rows.
type ViewModel struct {
	mu sync.RWMutex

	db     *store.DB
	reg    *pairing.Registrar
	logger *zap.Logger

	profile  *store.Profile
	entries  []chatlist.Entry
	contacts map[string]chatlist.Contact
	rows     []ChatRow
	messages []store.Message

	activeChatID string
	activePeerID string
	activeName   string
	filter       string

	chatCount int64
	msgCount  int64

	Flash Flash
}

// NewViewModel creates a view model backed by the session store.
func NewViewModel(db *store.DB, reg *pairing.Registrar, logger *zap.Logger) *ViewModel {
	return &ViewModel{
		db:       db,
		reg:      reg,
		logger:   logger,
		contacts: map[string]chatlist.Contact{},
	}
}

// LoadProfile reads the local profile. A nil profile (no error) means
// onboarding has not happened yet.
func (vm *ViewModel) LoadProfile() error {
	p, err := vm.db.GetProfile()
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.profile = p
	vm.mu.Unlock()
	return nil
}

// Profile returns the cached local profile, or nil before onboarding.
func (vm *ViewModel) Profile() *store.Profile {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.profile
}

// CreateProfile creates the local identity with a fresh user id.
func (vm *ViewModel) CreateProfile(displayName string) error {
	p := &store.Profile{
		UserID:      uuid.New().String(),
		DisplayName: displayName,
	}
	if err := vm.db.SaveProfile(p); err != nil {
		return err
	}
	vm.mu.Lock()
	vm.profile = p
	vm.mu.Unlock()
	vm.logger.Info("profile created", zap.String("user_id", p.UserID))
	return nil
}

// Reload refreshes chats, contacts and counters from the store and
// rebuilds the reconciled row list.
func (vm *ViewModel) Reload() error {
	vm.mu.RLock()
	p := vm.profile
	vm.mu.RUnlock()
	if p == nil {
		return nil
	}

	chats, err := vm.db.ListChats(p.UserID, 500, 0)
	if err != nil {
		return err
	}
	contacts, err := vm.db.ListContacts()
	if err != nil {
		return err
	}
	chatCount, err := vm.db.ChatCount()
	if err != nil {
		return err
	}
	msgCount, err := vm.db.MessageCount()
	if err != nil {
		return err
	}

	convs := make([]chatlist.Conversation, len(chats))
	for i := range chats {
		convs[i] = toConversation(&chats[i])
	}
	cl := make([]chatlist.Contact, len(contacts))
	for i, c := range contacts {
		cl[i] = chatlist.Contact{
			UserID:      c.UserID,
			DisplayName: c.DisplayName,
			LocalAlias:  c.LocalAlias,
			Avatar:      c.Avatar,
		}
	}

	self := chatlist.Profile{UserID: p.UserID, DisplayName: p.DisplayName, Avatar: p.Avatar}
	entries := chatlist.Reconcile(self, convs, cl)

	vm.mu.Lock()
	vm.entries = entries
	vm.contacts = chatlist.ContactIndex(cl)
	vm.chatCount = chatCount
	vm.msgCount = msgCount
	vm.rebuildRowsLocked()
	vm.mu.Unlock()
	return nil
}

// toConversation maps a store chat row (peer fields already resolved
// relative to the local user) onto the reconciler's conversation shape.
func toConversation(c *store.Chat) chatlist.Conversation {
	conv := chatlist.Conversation{
		ChatID:       c.ChatID,
		Participants: [2]string{c.UserA, c.UserB},
		Details: map[string]chatlist.ParticipantDetail{
			c.PeerID: {DisplayName: c.PeerName, Avatar: c.PeerAvatar},
		},
		UnreadCount: c.UnreadCount,
	}
	if c.LastMessageID != "" {
		conv.LastMessage = &chatlist.LastMessage{
			Text:               c.LastMessageText,
			Timestamp:          time.UnixMilli(c.LastMessageAt),
			DeletedForEveryone: c.LastMessageDeleted,
		}
	}
	return conv
}

func (vm *ViewModel) rebuildRowsLocked() {
	p := vm.profile
	if p == nil {
		vm.rows = nil
		return
	}
	visible := chatlist.Filter(p.UserID, vm.entries, vm.contacts, vm.filter)
	rows := make([]ChatRow, 0, len(visible))
	for _, e := range visible {
		row := ChatRow{
			ChatID:   e.ChatID(p.UserID),
			PeerID:   e.PeerID(p.UserID),
			Name:     chatlist.ResolveName(p.UserID, e, vm.contacts),
			Subtitle: chatlist.Subtitle(e),
			Pending:  e.IsPending(),
		}
		if e.Real != nil {
			row.Badge = chatlist.UnreadBadge(e.Real.UnreadCount)
			if e.Real.LastMessage != nil {
				row.LastAt = e.Real.LastMessage.Timestamp.UnixMilli()
			}
		}
		rows = append(rows, row)
	}
	vm.rows = rows
}

// Rows returns the reconciled, filtered conversation list.
func (vm *ViewModel) Rows() []ChatRow {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.rows
}

// SetFilter updates the live filter query and rebuilds rows from the
// cached entries; no database round trip.
func (vm *ViewModel) SetFilter(query string) {
	vm.mu.Lock()
	vm.filter = query
	vm.rebuildRowsLocked()
	vm.mu.Unlock()
}

// Filter returns the active filter query.
func (vm *ViewModel) Filter() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

// TotalEntries returns the unfiltered entry count.
func (vm *ViewModel) TotalEntries() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.entries)
}

// OpenChat makes the row the active conversation. Opening a pending
// placeholder materializes the chat record; opening a real chat clears
// its unread count.
func (vm *ViewModel) OpenChat(row ChatRow) error {
	vm.mu.RLock()
	p := vm.profile
	vm.mu.RUnlock()
	if p == nil {
		return fmt.Errorf("no profile")
	}

	chatID := row.ChatID
	if row.Pending {
		c, ok := vm.contact(row.PeerID)
		if !ok {
			return fmt.Errorf("unknown contact %s", row.PeerID)
		}
		chat, err := vm.db.CreateOrGetChat(p.UserID, c.UserID, c.DisplayName, c.Avatar)
		if err != nil {
			return err
		}
		chatID = chat.ChatID
	} else if err := vm.db.MarkChatRead(chatID); err != nil {
		return err
	}

	vm.mu.Lock()
	vm.activeChatID = chatID
	vm.activePeerID = row.PeerID
	vm.activeName = row.Name
	vm.mu.Unlock()

	return vm.LoadMessages(chatID)
}

func (vm *ViewModel) contact(peerID string) (chatlist.Contact, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	c, ok := vm.contacts[peerID]
	return c, ok
}

// LoadMessages fetches the newest messages for a chat.
func (vm *ViewModel) LoadMessages(chatID string) error {
	msgs, err := vm.db.ListMessages(chatID, 0, 200)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.messages = msgs
	vm.mu.Unlock()
	return nil
}

// Messages returns a snapshot of the active chat's messages.
func (vm *ViewModel) Messages() []store.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages
}

// ActiveChatID returns the currently open chat id, or "".
func (vm *ViewModel) ActiveChatID() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.activeChatID
}

// ActiveChatName returns the resolved peer name of the open chat.
func (vm *ViewModel) ActiveChatName() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.activeName
}

// SendText queues a message to the active chat's peer. Delivery and the
// optimistic message insert are the outbox sender's job.
func (vm *ViewModel) SendText(text string) error {
	vm.mu.RLock()
	chatID, peerID := vm.activeChatID, vm.activePeerID
	vm.mu.RUnlock()
	if chatID == "" || peerID == "" {
		return fmt.Errorf("no active chat")
	}
	return vm.db.QueueOutbox(uuid.New().String(), chatID, peerID, text)
}

// Search runs a full-text query over stored messages.
func (vm *ViewModel) Search(query string) ([]store.SearchResult, error) {
	return vm.db.SearchMessages(query, "", 50)
}

// OwnPairCode returns the encoded pairing code identifying the local user.
func (vm *ViewModel) OwnPairCode() (string, error) {
	vm.mu.RLock()
	p := vm.profile
	vm.mu.RUnlock()
	if p == nil {
		return "", fmt.Errorf("no profile")
	}
	return pairing.Encode(pairing.Code{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
	})
}

// RegisterPeer decodes a pasted pairing code and adds the peer as a
// contact. The reconciled list picks it up as a pending entry on the
// next reload.
func (vm *ViewModel) RegisterPeer(raw string) error {
	vm.mu.RLock()
	p := vm.profile
	vm.mu.RUnlock()
	if p == nil {
		return fmt.Errorf("no profile")
	}
	code, err := pairing.Decode(raw)
	if err != nil {
		return err
	}
	return vm.reg.Register(p.UserID, code)
}

// SetAlias assigns a local nickname for a peer.
func (vm *ViewModel) SetAlias(peerID, alias string) error {
	return vm.db.SetLocalAlias(peerID, alias)
}

// GetChat fetches a single chat with peer fields resolved.
func (vm *ViewModel) GetChat(chatID string) (*store.Chat, error) {
	vm.mu.RLock()
	p := vm.profile
	vm.mu.RUnlock()
	if p == nil {
		return nil, fmt.Errorf("no profile")
	}
	return vm.db.GetChat(p.UserID, chatID)
}

// Counters returns the total chat and message counts.
func (vm *ViewModel) Counters() (chats, msgs int64) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.chatCount, vm.msgCount
}
