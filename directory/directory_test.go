package directory

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestGetUserCreatesOnce(t *testing.T) {
	d := New()

	u := d.GetUser("Alice")
	if u == nil {
		t.Fatal("GetUser returned nil")
	}
	if u.ID == uuid.Nil {
		t.Error("new user has no ID")
	}
	if !d.Dirty() {
		t.Error("creating a user should mark the directory dirty")
	}

	// Nick lookup is case-insensitive and must not create a second
	// account.
	again := d.GetUser("alice")
	if again != u {
		t.Error("GetUser created a duplicate account for a case variant")
	}
	if len(d.AllUsers()) != 1 {
		t.Errorf("expected 1 user, got %d", len(d.AllUsers()))
	}
}

func TestRenameUserKeepsIdentity(t *testing.T) {
	d := New()
	u := d.GetUser("alice")
	id := u.ID

	if err := d.RenameUser(u, "alicia"); err != nil {
		t.Fatalf("RenameUser: %v", err)
	}
	if _, ok := d.LookupUser("alice"); ok {
		t.Error("old nick still resolves after rename")
	}
	got, ok := d.LookupUser("alicia")
	if !ok || got.ID != id {
		t.Error("new nick does not resolve to the same account")
	}

	d.GetUser("bob")
	if err := d.RenameUser(u, "bob"); err == nil {
		t.Error("rename onto a taken nick should fail")
	}
}

func TestRemoveUserScrubsReferences(t *testing.T) {
	d := New()
	alice := d.GetUser("alice")
	bob := d.GetUser("bob")
	bob.Friends = AddID(bob.Friends, alice.ID)
	bob.Ignores = AddID(bob.Ignores, alice.ID)
	bob.Master = alice.ID

	c := d.GetChannel("#calm")
	c.AddAdmin(alice)
	c.AddMember(alice)

	d.RemoveUser(alice)

	if HasID(bob.Friends, alice.ID) || HasID(bob.Ignores, alice.ID) {
		t.Error("removed user still referenced from another account")
	}
	if bob.Master != uuid.Nil {
		t.Error("removed master still set on alt")
	}
	if HasID(c.Admins, alice.ID) {
		t.Error("removed user still channel admin")
	}
	if _, ok := d.UserByID(alice.ID); ok {
		t.Error("removed user still in registry")
	}
}

func TestResolveFollowsMaster(t *testing.T) {
	d := New()
	master := d.GetUser("alice")
	alt := d.GetUser("alice_phone")
	alt.Master = master.ID

	if d.Resolve(alt) != master {
		t.Error("Resolve did not follow the master reference")
	}
	if d.Resolve(master) != master {
		t.Error("Resolve changed a master account")
	}

	// Dangling master references are cleared rather than followed.
	alt.Master = uuid.New()
	if d.Resolve(alt) != alt {
		t.Error("Resolve followed a dangling master reference")
	}
	if alt.Master != uuid.Nil {
		t.Error("dangling master reference not cleared")
	}
}

func TestRemoveTopicScrubsReferences(t *testing.T) {
	d := New()
	spiders := d.GetTopic("spiders")
	bugs := d.GetTopic("bugs")
	bugs.AddSupersede("spiders")

	u := d.GetUser("alice")
	u.Topics["spiders"] = 2

	c := d.GetChannel("#calm")
	c.BlockedTopics["spiders"] = 1

	d.RemoveTopic(spiders)

	if _, ok := u.Topics["spiders"]; ok {
		t.Error("removed topic still on a user")
	}
	if _, ok := c.BlockedTopics["spiders"]; ok {
		t.Error("removed topic still blocked on a channel")
	}
	if bugs.SupersedesTopic("spiders") {
		t.Error("removed topic still superseded by another")
	}
}

func TestTopicWordsAtLevel(t *testing.T) {
	top := newTopic("spiders")
	top.AddWord(1, "spider")
	top.AddWord(3, "tarantula")

	if !top.HasWordAt(1, "spider") {
		t.Error("level 1 word missing at level 1")
	}
	if top.HasWordAt(1, "tarantula") {
		t.Error("level 3 word should not apply at level 1")
	}
	if !top.HasWordAt(3, "spider") {
		t.Error("lower-level word should apply at a higher level")
	}

	got := top.WordsAt(3)
	if len(got) != 2 || got[0] != "spider" || got[1] != "tarantula" {
		t.Errorf("WordsAt(3) = %v", got)
	}
}

func TestChannelModeExclusion(t *testing.T) {
	c := newChannel("#calm")

	c.AddMode(ModeRant)
	c.AddMode(ModeFilterless)
	c.AddMode(ModeSilent)
	if c.HasMode(ModeRant) || c.HasMode(ModeFilterless) {
		t.Error("silent should clear rant and filterless")
	}

	c.AddMode(ModeRant)
	if c.HasMode(ModeSilent) {
		t.Error("rant should clear silent")
	}
	if !c.AddMode(ModeFilterless) {
		t.Error("filterless should be newly set")
	}
	if !c.HasMode(ModeRant) {
		t.Error("rant and filterless should coexist")
	}
}

func TestCheckConsistencyDemotesDuplicateHeads(t *testing.T) {
	d := New()
	a := d.GetUser("alice")
	b := d.GetUser("bob")
	a.Admin = TierHead
	b.Admin = TierHead

	d.CheckConsistency()

	if a.Admin != TierFull || b.Admin != TierFull {
		t.Error("duplicate head admins were not demoted")
	}
	if _, ok := d.HeadAdmin(); ok {
		t.Error("a head admin survived the demotion")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := New()
	alice := d.GetUser("alice")
	alice.Admin = TierHead
	alice.Topics["spiders"] = 2
	alice.TriggerWords["spider"] = struct{}{}
	alice.LoggedIn = true

	top := d.GetTopic("spiders")
	top.AddWord(1, "spider")
	top.Descriptions[1] = "eight-legged critters"

	c := d.GetChannel("#calm")
	c.AddAdmin(alice)
	c.AddMember(alice)
	c.AddMode(ModeRant)
	c.BlockedTopics["spiders"] = 3
	d.Settings().AddChannel("#calm")
	d.Settings().GlobalMOTD = "be kind"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(d.Snapshot()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var snap Snapshot
	if err := json.NewDecoder(&buf).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}

	restored := New()
	restored.Restore(&snap)

	u, ok := restored.LookupUser("alice")
	if !ok {
		t.Fatal("user lost in round trip")
	}
	if u.ID != alice.ID {
		t.Error("user ID changed in round trip")
	}
	if u.Topics["spiders"] != 2 || !u.HasTriggerWord("spider") {
		t.Error("user sensitivities lost in round trip")
	}
	if u.LoggedIn {
		t.Error("session state must not be persisted")
	}

	rc, ok := restored.LookupChannel("#calm")
	if !ok {
		t.Fatal("channel lost in round trip")
	}
	if !rc.IsChannelAdmin(u) || !rc.HasMode(ModeRant) {
		t.Error("channel state lost in round trip")
	}
	if len(rc.Members()) != 0 {
		t.Error("membership must not be persisted")
	}
	if rc.BlockedTopics["spiders"] != 3 {
		t.Error("blocked topics lost in round trip")
	}

	rt, ok := restored.LookupTopic("spiders")
	if !ok {
		t.Fatal("topic lost in round trip")
	}
	if !rt.HasWordAt(1, "spider") || rt.Describe(2) != "eight-legged critters" {
		t.Error("topic data lost in round trip")
	}

	if !restored.Settings().HasChannel("#calm") || restored.Settings().GlobalMOTD != "be kind" {
		t.Error("settings lost in round trip")
	}
	if restored.Dirty() {
		t.Error("a fresh restore should not be dirty")
	}
}
