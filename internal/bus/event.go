package bus

import "time"

// Event kinds published by the client, grouped by namespace prefix.
// Subscribers filter on a prefix, e.g. "peer." or "message.".
const (
	// peer.* carry inbound data from the transport layer.
	KindPeerMessage = "peer.message"
	KindPeerRetract = "peer.retract"
	KindPeerPairing = "peer.pairing"

	// message.* and chat.* signal store changes to the UI.
	KindMessageUpserted   = "message.upserted"
	KindMessageOutbound   = "message.outbound"
	KindMessageSendAck    = "message.send_ack"
	KindMessageSendFailed = "message.send_failed"
	KindChatUpdated       = "chat.updated"

	// pairing.* and session.* cover contact and lifecycle changes.
	KindPairingAdded        = "pairing.added"
	KindSessionStatusChange = "session.status_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
