package outbox

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/chatlist"
	"github.com/AI-ML-Modelor/aa/internal/store"
	"go.uber.org/zap"
)

// mockSender records calls and returns configurable results.
type mockSender struct {
	calls []sendCall
	err   error
	delay time.Duration // artificial delay to observe intermediate states
}

type sendCall struct {
	PeerID string
	MsgID  string
	Text   string
}

func (m *mockSender) SendText(_ context.Context, peerID, msgID, text string) error {
	m.calls = append(m.calls, sendCall{PeerID: peerID, MsgID: msgID, Text: text})
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.err
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SaveProfile(&store.Profile{UserID: "u-self", DisplayName: "Me"}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSenderProcessesPendingMessages(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockSender{}
	logger, _ := zap.NewDevelopment()
	s := NewSender(db, mock, b, logger)

	ch, unsub := b.Subscribe(bus.KindMessageSendAck, 10)
	defer unsub()

	if err := db.QueueOutbox("c1", "", "u-bob", "hello"); err != nil {
		t.Fatal(err)
	}

	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(time.Second)

	if len(mock.calls) != 1 {
		t.Fatalf("got %d send calls, want 1", len(mock.calls))
	}
	if mock.calls[0].PeerID != "u-bob" || mock.calls[0].Text != "hello" {
		t.Errorf("call = %+v, want {u-bob, hello}", mock.calls[0])
	}

	pending, err := db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending, want 0 after send", len(pending))
	}

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindMessageSendAck {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindMessageSendAck)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for send_ack event")
	}
}

// Sending the first message to a paired contact with no chat yet must
// create the chat record with the canonical pair id.
func TestSenderMaterializesPendingChat(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockSender{}
	s := NewSender(db, mock, b, zap.NewNop())

	count, _ := db.ChatCount()
	if count != 0 {
		t.Fatalf("chat count = %d, want 0 before send", count)
	}

	if err := db.QueueOutbox("c1", "", "u-bob", "first message"); err != nil {
		t.Fatal(err)
	}

	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(time.Second)

	wantChatID := chatlist.ChatID("u-self", "u-bob")
	chat, err := db.GetChat("u-self", wantChatID)
	if err != nil {
		t.Fatal(err)
	}
	if chat == nil {
		t.Fatal("chat not created on first send")
	}
	if chat.LastMessageText != "first message" {
		t.Errorf("last message = %q, want first message", chat.LastMessageText)
	}
	if chat.UnreadCount != 0 {
		t.Errorf("unread = %d, want 0 (own message)", chat.UnreadCount)
	}

	// Sending again reuses the same chat.
	if err := db.QueueOutbox("c2", "", "u-bob", "second"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Second)

	count, _ = db.ChatCount()
	if count != 1 {
		t.Errorf("chat count = %d, want 1 (idempotent create-or-get)", count)
	}
}

func TestSenderHandlesFailure(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockSender{err: fmt.Errorf("peer unreachable")}
	s := NewSender(db, mock, b, zap.NewNop())

	ch, unsub := b.Subscribe(bus.KindMessageSendFailed, 10)
	defer unsub()

	if err := db.QueueOutbox("c1", "", "u-bob", "hello"); err != nil {
		t.Fatal(err)
	}

	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(time.Second)

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindMessageSendFailed {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindMessageSendFailed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for send_failed event")
	}

	pending, err := db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending, want 0 (marked failed)", len(pending))
	}
}

// The outbox inserts the message with status "sending" before delivery
// completes, then flips to "sent", so the UI shows it immediately.
func TestSenderOptimisticInsert(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockSender{delay: 500 * time.Millisecond}
	s := NewSender(db, mock, b, zap.NewNop())

	if err := db.QueueOutbox("c1", "", "u-bob", "optimistic"); err != nil {
		t.Fatal(err)
	}

	ch, unsub := b.Subscribe(bus.KindMessageUpserted, 10)
	defer unsub()

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for optimistic message.upserted event")
	}

	chatID := chatlist.ChatID("u-self", "u-bob")
	msgs, err := db.ListMessages(chatID, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (optimistic insert)", len(msgs))
	}
	if msgs[0].Status != "sending" {
		t.Errorf("status = %q, want 'sending' (optimistic)", msgs[0].Status)
	}
	if !msgs[0].FromMe {
		t.Error("from_me = false, want true")
	}

	time.Sleep(time.Second)

	msgs, _ = db.ListMessages(chatID, 0, 10)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Status != "sent" {
		t.Errorf("final status = %q, want 'sent'", msgs[0].Status)
	}
}

func TestSenderOptimisticInsertOnFailure(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	mock := &mockSender{err: fmt.Errorf("timeout"), delay: 200 * time.Millisecond}
	s := NewSender(db, mock, b, zap.NewNop())

	if err := db.QueueOutbox("c1", "", "u-bob", "will-fail"); err != nil {
		t.Fatal(err)
	}

	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(time.Second)

	msgs, err := db.ListMessages(chatlist.ChatID("u-self", "u-bob"), 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Status != "failed" {
		t.Errorf("status = %q, want 'failed'", msgs[0].Status)
	}
}
