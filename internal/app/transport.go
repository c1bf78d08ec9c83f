package app

import (
	"context"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"go.uber.org/zap"
)

// localDelivery accepts outgoing messages into the local store-and-forward
// layer and announces them on the bus. Wire delivery to the peer's device
// is handled by whatever transport relays peer.* events into this process;
// acceptance here only means the message is durably queued on this side.
type localDelivery struct {
	bus    *bus.Bus
	logger *zap.Logger
}

func newLocalDelivery(b *bus.Bus, logger *zap.Logger) *localDelivery {
	return &localDelivery{bus: b, logger: logger}
}

// OutboundMessage is the payload announced for each accepted message.
type OutboundMessage struct {
	PeerID string
	MsgID  string
	Text   string
}

func (d *localDelivery) SendText(_ context.Context, peerID, msgID, text string) error {
	d.bus.Publish(bus.Event{
		Kind:      bus.KindMessageOutbound,
		Timestamp: time.Now(),
		Payload:   OutboundMessage{PeerID: peerID, MsgID: msgID, Text: text},
	})
	d.logger.Debug("message accepted for delivery",
		zap.String("peer_id", peerID),
		zap.String("msg_id", msgID))
	return nil
}
