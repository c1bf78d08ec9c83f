package pairing

import (
	"fmt"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/store"
	"go.uber.org/zap"
)

// ErrSelfPairing is returned when a user tries to pair with themselves.
var ErrSelfPairing = fmt.Errorf("cannot pair with yourself")

// Registrar ingests decoded pairing codes as contacts.
type Registrar struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
}

// NewRegistrar creates a registrar backed by the store.
func NewRegistrar(db *store.DB, b *bus.Bus, logger *zap.Logger) *Registrar {
	return &Registrar{db: db, bus: b, logger: logger}
}

// Register records the peer identified by the code as a paired contact.
// Registering the same peer twice updates their reported name rather than
// creating a duplicate. Pairing with the local user is refused.
func (r *Registrar) Register(selfID string, c Code) error {
	if c.UserID == selfID {
		return ErrSelfPairing
	}
	if err := r.db.UpsertContact(&store.Contact{
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Avatar:      c.Avatar,
	}); err != nil {
		return fmt.Errorf("store contact: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("contact paired", zap.String("user_id", c.UserID))
	}
	if r.bus != nil {
		r.bus.Publish(bus.Event{
			Kind:      bus.KindPairingAdded,
			Timestamp: time.Now(),
			Payload:   c.UserID,
		})
	}
	return nil
}
