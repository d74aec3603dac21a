package bot

import (
	"strings"
	"testing"
)

func TestUpdateRulesAggregatesHighestLevel(t *testing.T) {
	b, _ := newTestBot(t)
	base := calmTopology(b, "alice", "bob")

	top := b.dir.GetTopic("spiders")
	top.Descriptions[1] = "mention spiders"
	top.Descriptions[3] = "talk about spiders"
	b.dir.GetUser("alice").Topics["spiders"] = 1
	b.dir.GetUser("bob").Topics["spiders"] = 3

	changed := b.UpdateRules(base, false)
	if !changed {
		t.Fatal("first aggregation should report a change")
	}
	if base.Rules["spiders"] != 3 {
		t.Errorf("aggregated level = %d, want 3", base.Rules["spiders"])
	}

	// Aggregation is idempotent.
	if b.UpdateRules(base, false) {
		t.Error("second aggregation without membership changes reported a change")
	}
}

func TestUpdateRulesSkipsAwayUsers(t *testing.T) {
	b, _ := newTestBot(t)
	base := calmTopology(b, "alice")

	top := b.dir.GetTopic("spiders")
	top.Descriptions[1] = "mention spiders"
	alice := b.dir.GetUser("alice")
	alice.Topics["spiders"] = 1
	alice.Away = true

	b.UpdateRules(base, false)
	if len(base.Rules) != 0 {
		t.Errorf("away user still contributes rules: %v", base.Rules)
	}

	alice.Away = false
	b.UpdateRules(base, false)
	if base.Rules["spiders"] != 1 {
		t.Error("returned user no longer contributes rules")
	}
}

func TestSupersededTopicEnforcedButNotRendered(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice", "bob")

	spiders := b.dir.GetTopic("spiders")
	spiders.Descriptions[1] = "talk about spiders"
	arachnids := b.dir.GetTopic("arachnids")
	arachnids.Descriptions[1] = "talk about arachnids"
	arachnids.AddSupersede("spiders")

	b.dir.GetUser("alice").Topics["spiders"] = 1
	b.dir.GetUser("bob").Topics["arachnids"] = 1

	b.UpdateRules(base, true)

	// Both rules are live even though only one is announced.
	if base.Rules["spiders"] != 1 || base.Rules["arachnids"] != 1 {
		t.Fatalf("rules = %v, want both topics enforced", base.Rules)
	}
	announced := false
	for _, l := range tr.messagesTo("#calm") {
		if strings.Contains(l, "arachnids") {
			announced = true
		}
		if strings.Contains(l, "talk about spiders") {
			t.Errorf("superseded topic still rendered: %q", l)
		}
	}
	if !announced {
		t.Error("superseding topic missing from the announcement")
	}
}

func TestUpdateRulesEjectsOverBlockedTopic(t *testing.T) {
	b, tr := newTestBot(t)
	base := calmTopology(b, "alice")
	alice := b.dir.GetUser("alice")
	base.AddMember(alice)

	top := b.dir.GetTopic("spiders")
	top.Descriptions[2] = "talk about spiders"
	alice.Topics["spiders"] = 2
	base.BlockedTopics["spiders"] = 2

	b.UpdateRules(base, false)

	kicked := false
	for _, l := range tr.lines {
		if l.kind == "kick" && strings.HasPrefix(l.text, "alice ") {
			kicked = true
		}
	}
	if !kicked {
		t.Error("user with a blocked topic was not ejected")
	}
	if _, ok := base.Rules["spiders"]; ok {
		t.Error("blocked topic still entered the rules")
	}
}

func TestHideOwnOmitsOwnerFromOwnRoom(t *testing.T) {
	b, tr := newTestBot(t)
	calmTopology(b, "alice")
	alice := b.dir.GetUser("alice")
	alice.HideOwn = true

	top := b.dir.GetTopic("spiders")
	top.Descriptions[1] = "talk about spiders"
	alice.Topics["spiders"] = 1

	room := b.dir.GetChannel("#calm_alice")
	b.UpdateRules(room, true)

	if _, ok := room.Rules["spiders"]; ok {
		t.Error("hideown owner's topic entered their own room's rules")
	}
	for _, l := range tr.messagesTo("#calm_alice") {
		if strings.Contains(l, "spiders") {
			t.Errorf("hideown topic leaked into the announcement: %q", l)
		}
	}
}
