package bot

import (
	"strings"
	"testing"

	"triggerbot/directory"
	"triggerbot/helpers"
)

// calmTopology builds a base channel with one safe room per listed
// owner and puts each owner in their own room.
func calmTopology(b *Bot, owners ...string) *directory.Channel {
	base := b.dir.GetChannel("#calm")
	for _, owner := range owners {
		u := b.dir.GetUser(owner)
		u.HasSafeRooms = true
		room := b.dir.GetChannel(helpers.SafeRoomName("#calm", owner))
		room.AddMember(u)
	}
	return base
}

func TestRelaySafeWithholdsTriggeredRoomOnly(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice", "bob")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)

	alice := b.dir.GetUser("alice")
	alice.TriggerWords[b.st.Stem("spiders")] = struct{}{}

	b.RelaySafe("I saw a spider today", base, carol, StyleChat)

	if got := tr.messagesTo("#calm_bob"); !containsLine(got, "<carol> I saw a spider today") {
		t.Errorf("clean room did not receive the message, got %v", got)
	}
	for _, l := range tr.messagesTo("#calm_alice") {
		if strings.Contains(l, "spider") {
			t.Errorf("triggered room received the message: %q", l)
		}
	}

	// The sender learns what was hidden, from whom, and why.
	explanations := tr.messagesTo("#calm")
	if !containsLine(explanations, "carol: Because your message contained the word spider, it was hidden from alice.") {
		t.Errorf("missing or wrong suppression explanation, got %v", explanations)
	}

	// Suppression leaves an automatic warning on the sender.
	if len(carol.Warnings) != 1 {
		t.Fatalf("expected one automatic warning, got %d", len(carol.Warnings))
	}
	if carol.Warnings[0].By != "" {
		t.Error("automatic warning should not name a warner")
	}
}

func TestRelaySafeCollateralUsers(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)

	alice := b.dir.GetUser("alice")
	alice.TriggerWords[b.st.Stem("spider")] = struct{}{}
	// Zed shares alice's room but has no triggers of their own.
	zed := b.dir.GetUser("zed")
	room := b.dir.GetChannel("#calm_alice")
	room.AddMember(zed)

	b.RelaySafe("a spider", base, carol, StyleChat)

	explanations := tr.messagesTo("#calm")
	if !containsLine(explanations, "it was also hidden from zed") {
		t.Errorf("collateral user not reported, got %v", explanations)
	}
	if len(tr.messagesTo("#calm_alice")) != 0 {
		t.Error("withheld room still received a delivery")
	}
}

func TestRelaySafeAwayUserProtectedAnonymously(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice", "bob")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)

	alice := b.dir.GetUser("alice")
	alice.TriggerWords[b.st.Stem("spider")] = struct{}{}
	alice.Away = true

	b.RelaySafe("a spider", base, carol, StyleChat)

	// With the only triggered user away there is nothing to explain,
	// but the room stays withheld.
	if len(tr.messagesTo("#calm_alice")) != 0 {
		t.Error("away user's room still received the message")
	}
	if containsLine(tr.messagesTo("#calm"), "hidden from alice") {
		t.Error("away user was named in an explanation")
	}
	if !containsLine(tr.messagesTo("#calm_bob"), "spider") {
		t.Error("unrelated room lost the message")
	}
}

func TestRelaySafeIgnoredSender(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)

	alice := b.dir.GetUser("alice")
	alice.Ignores = directory.AddID(alice.Ignores, carol.ID)

	b.RelaySafe("hello there", base, carol, StyleChat)

	if len(tr.messagesTo("#calm_alice")) != 0 {
		t.Error("ignoring user still received the message")
	}
}

func TestRelaySafeEmptyRoomSkipped(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)
	b.dir.GetChannel("#calm_alice").ClearMembers()

	b.RelaySafe("hello", base, carol, StyleChat)

	if len(tr.messagesTo("#calm_alice")) != 0 {
		t.Error("empty room received a delivery")
	}
}

func TestRelayFromSafeRoomReachesBase(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice", "bob")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)
	alice := b.dir.GetUser("alice")
	room := b.dir.GetChannel("#calm_alice")

	b.RelaySafe("good morning", room, alice, StyleChat)

	if !containsLine(tr.messagesTo("#calm"), "<alice> good morning") {
		t.Error("base channel did not receive the safe room message")
	}
	if !containsLine(tr.messagesTo("#calm_bob"), "<alice> good morning") {
		t.Error("sibling room did not receive the safe room message")
	}
}

func TestRelaySilentModeBlocksEverything(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice")
	carol := b.dir.GetUser("carol")
	base.AddMember(carol)
	base.AddMode(directory.ModeSilent)

	b.RelaySafe("hello", base, carol, StyleChat)

	if len(tr.lines) != 0 {
		t.Errorf("silent source still relayed: %v", tr.lines)
	}
}
