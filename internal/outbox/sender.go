package outbox

import (
	"context"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/store"
	"go.uber.org/zap"
)

// PeerSender is the transport interface for delivering a message to a
// peer. Message ids are client-generated; there is no server to assign
// one.
type PeerSender interface {
	SendText(ctx context.Context, peerID, msgID, text string) error
}

// Sender drains the outbox and delivers messages via the peer transport.
// Queueing against a pending placeholder is what turns it into a real
// chat: the chat record is created on first send.
type Sender struct {
	db     *store.DB
	sender PeerSender
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewSender creates a new outbox sender.
func NewSender(db *store.DB, sender PeerSender, b *bus.Bus, logger *zap.Logger) *Sender {
	return &Sender{
		db:     db,
		sender: sender,
		bus:    b,
		logger: logger,
	}
}

// Start begins polling the outbox for pending messages.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop stops the sender loop.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Sender) loop(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sender) processPending(ctx context.Context) {
	self, err := s.db.GetProfile()
	if err != nil || self == nil {
		return
	}

	pending, err := s.db.PendingOutbox()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to read outbox", zap.Error(err))
		}
		return
	}

	for _, entry := range pending {
		if err := s.db.MarkOutboxSending(entry.ClientMsgID); err != nil {
			s.logError("failed to mark sending", err, entry.ClientMsgID)
			continue
		}

		// First message to a pending placeholder: materialize the chat.
		chat, err := s.db.CreateOrGetChat(self.UserID, entry.PeerID, "", "")
		if err != nil {
			s.logError("failed to resolve chat", err, entry.ClientMsgID)
			_ = s.db.MarkOutboxFailed(entry.ClientMsgID, err.Error())
			continue
		}

		// Optimistic insert: show the message in the UI immediately.
		now := time.Now().UnixMilli()
		msg := &store.Message{
			ChatID:    chat.ChatID,
			MsgID:     entry.ClientMsgID,
			SenderID:  self.UserID,
			Body:      entry.Body,
			FromMe:    true,
			Status:    "sending",
			Timestamp: now,
		}
		_ = s.db.UpsertMessage(msg)
		_ = s.db.TouchLastMessage(chat.ChatID, msg)
		s.bus.Publish(bus.Event{
			Kind:      bus.KindMessageUpserted,
			Timestamp: time.Now(),
			Payload:   map[string]string{"chat_id": chat.ChatID, "msg_id": entry.ClientMsgID},
		})

		if err := s.sender.SendText(ctx, entry.PeerID, entry.ClientMsgID, entry.Body); err != nil {
			s.logError("failed to send message", err, entry.ClientMsgID)
			_ = s.db.MarkOutboxFailed(entry.ClientMsgID, err.Error())
			msg.Status = "failed"
			_ = s.db.UpsertMessage(msg)
			s.bus.Publish(bus.Event{
				Kind:      bus.KindMessageSendFailed,
				Timestamp: time.Now(),
				Payload: map[string]string{
					"client_msg_id": entry.ClientMsgID,
					"error":         err.Error(),
				},
			})
			continue
		}

		if err := s.db.MarkOutboxSent(entry.ClientMsgID); err != nil {
			s.logError("failed to mark sent", err, entry.ClientMsgID)
		}
		msg.Status = "sent"
		_ = s.db.UpsertMessage(msg)

		if s.logger != nil {
			s.logger.Info("message sent",
				zap.String("client_msg_id", entry.ClientMsgID),
				zap.String("peer_id", entry.PeerID))
		}
		s.bus.Publish(bus.Event{
			Kind:      bus.KindMessageSendAck,
			Timestamp: time.Now(),
			Payload:   map[string]string{"client_msg_id": entry.ClientMsgID},
		})
	}
}

func (s *Sender) logError(msg string, err error, clientMsgID string) {
	if s.logger != nil {
		s.logger.Error(msg, zap.Error(err), zap.String("client_msg_id", clientMsgID))
	}
}
