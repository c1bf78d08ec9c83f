// Package sync ingests peer events into the local store. It is the
// subsystem that keeps the conversation and contact collections current;
// the list screen only ever reads what this engine has written.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/chatlist"
	"github.com/AI-ML-Modelor/aa/internal/pairing"
	"github.com/AI-ML-Modelor/aa/internal/store"
	"go.uber.org/zap"
)

// InboundMessage is a message received from a peer.
type InboundMessage struct {
	SenderID   string
	SenderName string
	MsgID      string
	Body       string
	Timestamp  int64
}

// Retraction is a peer's request to delete one of their messages for
// everyone.
type Retraction struct {
	SenderID string
	MsgID    string
}

// Engine handles idempotent ingestion of peer events into the store.
// It subscribes to "peer." events on the bus and processes them.
type Engine struct {
	db        *store.DB
	bus       *bus.Bus
	registrar *pairing.Registrar
	logger    *zap.Logger
	cancel    context.CancelFunc
}

// NewEngine creates a new ingestion engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		db:        db,
		bus:       b,
		registrar: pairing.NewRegistrar(db, b, logger),
		logger:    logger,
	}
}

// Start subscribes to inbound peer events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("peer.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindPeerMessage:
		msg, ok := evt.Payload.(*InboundMessage)
		if !ok {
			return
		}
		if err := e.IngestMessage(msg); err != nil && e.logger != nil {
			e.logger.Error("failed to ingest message", zap.Error(err), zap.String("msg_id", msg.MsgID))
		}
	case bus.KindPeerRetract:
		ret, ok := evt.Payload.(*Retraction)
		if !ok {
			return
		}
		if err := e.IngestRetraction(ret); err != nil && e.logger != nil {
			e.logger.Error("failed to ingest retraction", zap.Error(err), zap.String("msg_id", ret.MsgID))
		}
	case bus.KindPeerPairing:
		code, ok := evt.Payload.(pairing.Code)
		if !ok {
			return
		}
		if err := e.ingestPairing(code); err != nil && e.logger != nil {
			e.logger.Error("failed to ingest pairing", zap.Error(err), zap.String("user_id", code.UserID))
		}
	}
}

// IngestMessage processes a single inbound message (idempotent). The chat
// for the sender pair is created on first contact; re-delivery of the same
// message updates it in place instead of duplicating.
func (e *Engine) IngestMessage(msg *InboundMessage) error {
	self, err := e.db.GetProfile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if self == nil {
		return fmt.Errorf("no local profile")
	}

	chat, err := e.db.CreateOrGetChat(self.UserID, msg.SenderID, msg.SenderName, "")
	if err != nil {
		return fmt.Errorf("create-or-get chat: %w", err)
	}

	m := &store.Message{
		ChatID:    chat.ChatID,
		MsgID:     msg.MsgID,
		SenderID:  msg.SenderID,
		Body:      msg.Body,
		Status:    "received",
		Timestamp: msg.Timestamp,
	}
	if err := e.db.UpsertMessage(m); err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}
	if err := e.db.TouchLastMessage(chat.ChatID, m); err != nil {
		return fmt.Errorf("touch chat summary: %w", err)
	}

	e.bus.Publish(bus.Event{
		Kind:      bus.KindMessageUpserted,
		Timestamp: time.Now(),
		Payload: map[string]string{
			"chat_id": chat.ChatID,
			"msg_id":  msg.MsgID,
		},
	})
	e.bus.Publish(bus.Event{
		Kind:      bus.KindChatUpdated,
		Timestamp: time.Now(),
		Payload:   chat.ChatID,
	})
	return nil
}

// IngestBacklog processes a batch of messages delivered after a period
// offline. Each message is ingested with the same idempotent path as live
// delivery, so replays are harmless.
func (e *Engine) IngestBacklog(msgs []*InboundMessage) error {
	for _, m := range msgs {
		if err := e.IngestMessage(m); err != nil {
			return err
		}
	}
	if e.logger != nil {
		e.logger.Info("backlog ingested", zap.Int("messages", len(msgs)))
	}
	return nil
}

// IngestRetraction applies a delete-for-everyone request from a peer.
func (e *Engine) IngestRetraction(ret *Retraction) error {
	self, err := e.db.GetProfile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if self == nil {
		return fmt.Errorf("no local profile")
	}

	chat, err := e.db.GetChat(self.UserID, chatlist.ChatID(self.UserID, ret.SenderID))
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		// Retraction for an unknown chat; nothing to redact.
		return nil
	}
	if err := e.db.MarkDeletedForEveryone(chat.ChatID, ret.MsgID); err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}

	e.bus.Publish(bus.Event{
		Kind:      bus.KindChatUpdated,
		Timestamp: time.Now(),
		Payload:   chat.ChatID,
	})
	return nil
}

func (e *Engine) ingestPairing(code pairing.Code) error {
	self, err := e.db.GetProfile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if self == nil {
		return fmt.Errorf("no local profile")
	}
	return e.registrar.Register(self.UserID, code)
}
