package bot

import (
	"strings"
	"testing"

	"triggerbot/auth"
	"triggerbot/directory"
)

// replayExport captures an export command's output and replays it on a
// fresh bot, returning the replica.
func replayExport(t *testing.T, b *Bot, tr *mockTransport, what string) *Bot {
	t.Helper()
	boss := b.dir.GetUser("boss")
	boss.Admin = directory.TierHead
	tr.reset()
	b.Dispatch("admin export "+what, boss, ToUser(boss), false)

	fresh, _ := newTestBot(t)
	replayBoss := fresh.dir.GetUser("boss")
	replayBoss.Admin = directory.TierHead
	for _, line := range tr.messagesTo("boss") {
		if !strings.HasPrefix(line, "!") {
			continue
		}
		fresh.Dispatch(strings.TrimPrefix(line, "!"), replayBoss, ToUser(replayBoss), true)
	}
	return fresh
}

func TestExportTopicsRoundTrip(t *testing.T) {
	b, tr := newTestBot(t)

	spiders := b.dir.GetTopic("spiders")
	spiders.Descriptions[1] = "mention spiders"
	spiders.Descriptions[3] = "talk about spiders"
	spiders.AddWord(1, b.st.Stem("spider"))
	spiders.AddWord(3, b.st.Stem("web"))
	arachnids := b.dir.GetTopic("arachnids")
	arachnids.Descriptions[1] = "talk about arachnids"
	arachnids.AddSupersede("spiders")

	fresh := replayExport(t, b, tr, "topics")

	got, err := fresh.dir.FindTopic("spiders")
	if err != nil {
		t.Fatalf("replayed catalogue misses spiders: %v", err)
	}
	if got.Descriptions[1] != "mention spiders" || got.Descriptions[3] != "talk about spiders" {
		t.Errorf("descriptions = %v", got.Descriptions)
	}
	if !got.HasWordAt(1, b.st.Stem("spider")) || !got.HasWordAt(3, b.st.Stem("web")) {
		t.Errorf("words = %v", got.Words)
	}
	if got.HasWordAt(1, b.st.Stem("web")) {
		t.Error("level 3 word replayed at level 1")
	}
	reply, err := fresh.dir.FindTopic("arachnids")
	if err != nil {
		t.Fatalf("replayed catalogue misses arachnids: %v", err)
	}
	if !reply.SupersedesTopic("spiders") {
		t.Error("supersede relation lost in the round trip")
	}
}

func TestExportUsersRoundTrip(t *testing.T) {
	b, tr := newTestBot(t)

	top := b.dir.GetTopic("spiders")
	top.Descriptions[2] = "talk about spiders"

	alice := b.dir.GetUser("alice")
	alice.Topics["spiders"] = 2
	alice.TriggerWords[b.st.Stem("web")] = struct{}{}
	alice.ListenMode = true
	alice.AwayCheck = false
	hash, err := auth.Hash("secret")
	if err != nil {
		t.Fatal(err)
	}
	alice.PasswordHash = hash

	bob := b.dir.GetUser("bob")
	bob.Friends = directory.AddID(bob.Friends, alice.ID)

	alt := b.dir.GetUser("alice_phone")
	alt.Master = alice.ID
	alice.Alts = directory.AddID(alice.Alts, alt.ID)

	// Topics must exist on the replica before users reference them.
	fresh := replayExport(t, b, tr, "all")

	got, err := fresh.dir.FindUser("alice")
	if err != nil {
		t.Fatalf("replayed registry misses alice: %v", err)
	}
	if got.Topics["spiders"] != 2 {
		t.Errorf("alice topics = %v", got.Topics)
	}
	if _, ok := got.TriggerWords[b.st.Stem("web")]; !ok {
		t.Errorf("alice words = %v", got.TriggerWords)
	}
	if !got.ListenMode {
		t.Error("listenmode flag lost in the round trip")
	}
	if got.AwayCheck {
		t.Error("awaycheck unset was not replayed")
	}
	// Passwords never travel through an export.
	if got.Protected() {
		t.Error("password hash leaked into the export")
	}

	gotBob, err := fresh.dir.FindUser("bob")
	if err != nil {
		t.Fatal(err)
	}
	if !directory.HasID(gotBob.Friends, got.ID) {
		t.Error("friend relation lost in the round trip")
	}

	gotAlt, err := fresh.dir.FindUser("alice_phone")
	if err != nil {
		t.Fatal(err)
	}
	if gotAlt.Master != got.ID {
		t.Error("alt grouping lost in the round trip")
	}

	// No export line may carry the password.
	for _, line := range tr.messagesTo("boss") {
		if strings.Contains(line, "secret") {
			t.Errorf("export line contains a credential: %q", line)
		}
	}
}
