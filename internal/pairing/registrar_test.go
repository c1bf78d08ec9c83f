package pairing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/store"
)

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
	return db
}

func TestRegisterAddsContact(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	r := NewRegistrar(db, b, nil)

	ch, unsub := b.Subscribe("pairing.", 10)
	defer unsub()

	if err := r.Register("u-self", Code{UserID: "u-bob", DisplayName: "Robert"}); err != nil {
		t.Fatal(err)
	}

	c, err := db.GetContact("u-bob")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.DisplayName != "Robert" {
		t.Errorf("contact = %+v, want Robert", c)
	}

	select {
	case evt := <-ch:
		if evt.Kind != bus.KindPairingAdded {
			t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindPairingAdded)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for pairing.added event")
	}
}

func TestRegisterIdempotent(t *testing.T) {
	db := testDB(t)
	r := NewRegistrar(db, bus.New(), nil)

	if err := r.Register("u-self", Code{UserID: "u-bob", DisplayName: "Robert"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("u-self", Code{UserID: "u-bob", DisplayName: "Bobby"}); err != nil {
		t.Fatal(err)
	}

	contacts, err := db.ListContacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	if contacts[0].DisplayName != "Bobby" {
		t.Errorf("display name = %q, want updated Bobby", contacts[0].DisplayName)
	}
}

func TestRegisterRefusesSelf(t *testing.T) {
	db := testDB(t)
	r := NewRegistrar(db, bus.New(), nil)

	if err := r.Register("u-self", Code{UserID: "u-self", DisplayName: "Me"}); err != ErrSelfPairing {
		t.Errorf("err = %v, want ErrSelfPairing", err)
	}

	contacts, _ := db.ListContacts()
	if len(contacts) != 0 {
		t.Errorf("got %d contacts, want 0", len(contacts))
	}
}
