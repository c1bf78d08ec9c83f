package chatlist

import (
	"testing"
	"time"
)

var self = Profile{UserID: "u-self", DisplayName: "Me", Avatar: "me.png"}

func conv(a, b string) Conversation {
	if b < a {
		a, b = b, a
	}
	return Conversation{
		ChatID:       ChatID(a, b),
		Participants: [2]string{a, b},
		Details: map[string]ParticipantDetail{
			a: {DisplayName: "name-" + a},
			b: {DisplayName: "name-" + b},
		},
	}
}

func TestChatIDCommutative(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"alice", "bob", "alice_bob"},
		{"bob", "alice", "alice_bob"},
		{"u-9", "u-1", "u-1_u-9"},
	}
	for _, tt := range tests {
		if got := ChatID(tt.a, tt.b); got != tt.want {
			t.Errorf("ChatID(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
		if ChatID(tt.a, tt.b) != ChatID(tt.b, tt.a) {
			t.Errorf("ChatID(%q, %q) not commutative", tt.a, tt.b)
		}
	}
}

func TestReconcileEmptySelf(t *testing.T) {
	got := Reconcile(Profile{}, []Conversation{conv("u-self", "u-bob")}, []Contact{{UserID: "u-bob"}})
	if got != nil {
		t.Errorf("Reconcile with empty self = %d entries, want nil", len(got))
	}
}

func TestReconcileSynthesizesPlaceholders(t *testing.T) {
	convs := []Conversation{conv("u-self", "u-alice")}
	contacts := []Contact{
		{UserID: "u-alice", DisplayName: "Alice"},
		{UserID: "u-bob", DisplayName: "Bob"},
	}

	entries := Reconcile(self, convs, contacts)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].IsPending() {
		t.Error("real conversation should come first")
	}
	if !entries[1].IsPending() {
		t.Fatal("contact without conversation should yield a placeholder")
	}
	if entries[1].Pending.PeerID != "u-bob" {
		t.Errorf("placeholder peer = %q, want u-bob", entries[1].Pending.PeerID)
	}
	if got := entries[1].ChatID(self.UserID); got != ChatID("u-self", "u-bob") {
		t.Errorf("placeholder chat id = %q, want %q", got, ChatID("u-self", "u-bob"))
	}
}

func TestReconcileNoDuplicatePairs(t *testing.T) {
	convs := []Conversation{
		conv("u-self", "u-alice"),
		conv("u-self", "u-bob"),
	}
	contacts := []Contact{
		{UserID: "u-alice", DisplayName: "Alice"},
		{UserID: "u-bob", DisplayName: "Bob"},
		{UserID: "u-carol", DisplayName: "Carol"},
	}

	entries := Reconcile(self, convs, contacts)

	seen := map[string]bool{}
	for _, e := range entries {
		id := e.ChatID(self.UserID)
		if seen[id] {
			t.Errorf("duplicate entry for pair %q", id)
		}
		seen[id] = true
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3 (2 real + 1 placeholder)", len(entries))
	}
}

// A conversation stored with a non-canonical chat id must still block
// placeholder synthesis: membership is decided by participants, not id.
func TestReconcileMembershipByParticipants(t *testing.T) {
	legacy := conv("u-self", "u-alice")
	legacy.ChatID = "legacy-id-42"

	entries := Reconcile(self, []Conversation{legacy}, []Contact{{UserID: "u-alice", DisplayName: "Alice"}})
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (no placeholder for existing pair)", len(entries))
	}
	if entries[0].IsPending() {
		t.Error("existing conversation replaced by placeholder")
	}
}

func TestReconcileRefusesSelfPairing(t *testing.T) {
	entries := Reconcile(self, nil, []Contact{{UserID: self.UserID, DisplayName: "Me"}})
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0 (self-pairing refused)", len(entries))
	}
}

func TestReconcilePreservesConversationOrder(t *testing.T) {
	convs := []Conversation{
		conv("u-self", "u-carol"),
		conv("u-self", "u-alice"),
		conv("u-self", "u-bob"),
	}
	entries := Reconcile(self, convs, nil)
	want := []string{"u-carol", "u-alice", "u-bob"}
	for i, peer := range want {
		if got := entries[i].PeerID(self.UserID); got != peer {
			t.Errorf("entry %d peer = %q, want %q (input order)", i, got, peer)
		}
	}
}

func TestReconcilePlaceholdersAppendedAfterReal(t *testing.T) {
	convs := []Conversation{conv("u-self", "u-alice")}
	contacts := []Contact{
		{UserID: "u-bob", DisplayName: "Bob"},
		{UserID: "u-alice", DisplayName: "Alice"},
		{UserID: "u-carol", DisplayName: "Carol"},
	}
	entries := Reconcile(self, convs, contacts)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		wantPending := i > 0
		if e.IsPending() != wantPending {
			t.Errorf("entry %d pending = %v, want %v", i, e.IsPending(), wantPending)
		}
	}
}

func TestSynthesize(t *testing.T) {
	c := Contact{UserID: "u-bob", DisplayName: "Robert", LocalAlias: "Bob", Avatar: "bob.png"}
	got := Synthesize(self, c)

	if got.ChatID != ChatID("u-self", "u-bob") {
		t.Errorf("chat id = %q, want %q", got.ChatID, ChatID("u-self", "u-bob"))
	}
	if got.Participants != [2]string{"u-bob", "u-self"} {
		t.Errorf("participants = %v, want sorted pair", got.Participants)
	}
	if got.UnreadCount != 0 || got.LastMessage != nil {
		t.Error("synthesized conversation must start empty")
	}
	if d := got.Details[self.UserID]; d.DisplayName != "Me" || d.Avatar != "me.png" {
		t.Errorf("self detail = %+v", d)
	}
	if d := got.Details["u-bob"]; d.DisplayName != "Bob" || d.Avatar != "bob.png" {
		t.Errorf("peer detail = %+v, want alias over reported name", d)
	}
}

func TestResolveNamePrecedence(t *testing.T) {
	c := conv("u-self", "u-bob")
	entry := Entry{Real: &c}

	tests := []struct {
		name     string
		contacts map[string]Contact
		want     string
	}{
		{
			"alias wins over reported name",
			map[string]Contact{"u-bob": {UserID: "u-bob", DisplayName: "Robert", LocalAlias: "Bob"}},
			"Bob",
		},
		{
			"reported name when no alias",
			map[string]Contact{"u-bob": {UserID: "u-bob", DisplayName: "Robert"}},
			"Robert",
		},
		{
			"conversation detail when not a contact",
			map[string]Contact{},
			"name-u-bob",
		},
		{
			"whitespace alias ignored",
			map[string]Contact{"u-bob": {UserID: "u-bob", DisplayName: "Robert", LocalAlias: "   "}},
			"Robert",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveName(self.UserID, entry, tt.contacts); got != tt.want {
				t.Errorf("ResolveName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveNameForeignConversation(t *testing.T) {
	c := conv("u-x", "u-y")
	if got := ResolveName(self.UserID, Entry{Real: &c}, nil); got != "" {
		t.Errorf("ResolveName on foreign conversation = %q, want empty", got)
	}
}

func TestResolveNameFallsBackToPeerID(t *testing.T) {
	c := Conversation{
		ChatID:       ChatID("u-self", "u-bob"),
		Participants: [2]string{"u-bob", "u-self"},
		Details:      map[string]ParticipantDetail{},
	}
	if got := ResolveName(self.UserID, Entry{Real: &c}, nil); got != "u-bob" {
		t.Errorf("ResolveName() = %q, want peer id fallback", got)
	}
}

func TestEntryAccessors(t *testing.T) {
	c := conv("u-self", "u-bob")
	c.LastMessage = &LastMessage{Text: "hi", Timestamp: time.UnixMilli(1000)}
	real := Entry{Real: &c}
	pending := Entry{Pending: &Placeholder{PeerID: "u-carol", DisplayName: "Carol"}}

	if real.IsPending() || !pending.IsPending() {
		t.Error("IsPending mismatch")
	}
	if real.PeerID("u-self") != "u-bob" {
		t.Errorf("real peer = %q", real.PeerID("u-self"))
	}
	if pending.PeerID("u-self") != "u-carol" {
		t.Errorf("pending peer = %q", pending.PeerID("u-self"))
	}
	if real.PeerID("someone-else") != "" {
		t.Error("foreign conversation should have no resolvable peer")
	}
}
