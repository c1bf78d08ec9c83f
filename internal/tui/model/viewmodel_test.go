package model

import (
	"path/filepath"
	"testing"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/pairing"
	"github.com/AI-ML-Modelor/aa/internal/store"
	"go.uber.org/zap"
)

func testVM(t *testing.T) *ViewModel {
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

	reg := pairing.NewRegistrar(db, bus.New(), zap.NewNop())
	return NewViewModel(db, reg, zap.NewNop())
}

func TestCreateProfile(t *testing.T) {
	vm := testVM(t)

	if err := vm.LoadProfile(); err != nil {
		t.Fatal(err)
	}
	if vm.Profile() != nil {
		t.Fatal("fresh session should have no profile")
	}

	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}
	p := vm.Profile()
	if p == nil || p.DisplayName != "Me" || p.UserID == "" {
		t.Errorf("profile = %+v", p)
	}
}

func TestReloadBuildsPendingRows(t *testing.T) {
	vm := testVM(t)
	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}

	code := pairing.Code{UserID: "u-bob", DisplayName: "Bob"}
	if err := vm.reg.Register(vm.Profile().UserID, code); err != nil {
		t.Fatal(err)
	}

	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}
	rows := vm.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !rows[0].Pending {
		t.Error("paired contact without messages should be pending")
	}
	if rows[0].Name != "Bob" {
		t.Errorf("name = %q, want Bob", rows[0].Name)
	}
	if rows[0].Subtitle == "" {
		t.Error("pending row should carry the invite subtitle")
	}
	if rows[0].Badge != "" {
		t.Error("pending row must not show an unread badge")
	}
}

func TestOpenChatMaterializesPending(t *testing.T) {
	vm := testVM(t)
	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}
	if err := vm.reg.Register(vm.Profile().UserID, pairing.Code{UserID: "u-bob", DisplayName: "Bob"}); err != nil {
		t.Fatal(err)
	}
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}

	rows := vm.Rows()
	if len(rows) != 1 || !rows[0].Pending {
		t.Fatalf("rows = %+v", rows)
	}
	if err := vm.OpenChat(rows[0]); err != nil {
		t.Fatal(err)
	}
	if vm.ActiveChatID() == "" {
		t.Fatal("opening a pending row should set the active chat")
	}

	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}
	rows = vm.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (no duplicate pair)", len(rows))
	}
	if rows[0].Pending {
		t.Error("row should be real after materialization")
	}
}

func TestSetFilterNarrowsRows(t *testing.T) {
	vm := testVM(t)
	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}
	self := vm.Profile().UserID
	for _, c := range []pairing.Code{
		{UserID: "u-bob", DisplayName: "Robert"},
		{UserID: "u-carol", DisplayName: "Carol"},
	} {
		if err := vm.reg.Register(self, c); err != nil {
			t.Fatal(err)
		}
	}
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}
	if len(vm.Rows()) != 2 {
		t.Fatalf("rows = %d, want 2", len(vm.Rows()))
	}

	vm.SetFilter("rob")
	if len(vm.Rows()) != 1 || vm.Rows()[0].Name != "Robert" {
		t.Errorf("filtered rows = %+v", vm.Rows())
	}

	vm.SetFilter("")
	if len(vm.Rows()) != 2 {
		t.Errorf("cleared filter rows = %d, want 2", len(vm.Rows()))
	}
}

func TestAliasAffectsRowName(t *testing.T) {
	vm := testVM(t)
	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}
	if err := vm.reg.Register(vm.Profile().UserID, pairing.Code{UserID: "u-bob", DisplayName: "Robert"}); err != nil {
		t.Fatal(err)
	}
	if err := vm.SetAlias("u-bob", "Bob"); err != nil {
		t.Fatal(err)
	}
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}
	if rows := vm.Rows(); len(rows) != 1 || rows[0].Name != "Bob" {
		t.Errorf("rows = %+v, want alias Bob to win", rows)
	}
}

func TestSendTextQueuesOutbox(t *testing.T) {
	vm := testVM(t)
	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}
	if err := vm.reg.Register(vm.Profile().UserID, pairing.Code{UserID: "u-bob", DisplayName: "Bob"}); err != nil {
		t.Fatal(err)
	}
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}

	if err := vm.SendText("hi"); err == nil {
		t.Error("send without an active chat should fail")
	}

	if err := vm.OpenChat(vm.Rows()[0]); err != nil {
		t.Fatal(err)
	}
	if err := vm.SendText("hi"); err != nil {
		t.Fatal(err)
	}

	pending, err := vm.db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Body != "hi" || pending[0].PeerID != "u-bob" {
		t.Errorf("outbox = %+v", pending)
	}
}

func TestOwnPairCodeRoundTrip(t *testing.T) {
	vm := testVM(t)
	if err := vm.CreateProfile("Me"); err != nil {
		t.Fatal(err)
	}

	raw, err := vm.OwnPairCode()
	if err != nil {
		t.Fatal(err)
	}
	code, err := pairing.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if code.UserID != vm.Profile().UserID || code.DisplayName != "Me" {
		t.Errorf("decoded = %+v", code)
	}
}
