package safety

import (
	"reflect"
	"testing"

	"triggerbot/directory"
	"triggerbot/stem"
)

func makeUser(d *directory.Directory, nick string) *directory.User {
	return d.GetUser(nick)
}

func TestClassifyPersonalTriggerWords(t *testing.T) {
	st := stem.New()
	d := directory.New()
	u := makeUser(d, "alice")
	u.TriggerWords[st.Stem("spiders")] = struct{}{}

	msg := Prepare("I saw two SPIDERS, in the attic!", st)
	res := Classify(msg, u, nil)
	if res.Safe {
		t.Fatal("message with a trigger word classified safe")
	}
	if len(res.Words) != 1 || res.Words[0] != st.Stem("spider") {
		t.Errorf("Words = %v", res.Words)
	}

	// Stemming matches inflections of the stored word.
	msg = Prepare("a single spider", st)
	if res := Classify(msg, u, nil); res.Safe {
		t.Error("inflected form of a trigger word classified safe")
	}
}

func TestClassifyTopicLevels(t *testing.T) {
	st := stem.New()
	d := directory.New()
	top := d.GetTopic("spiders")
	top.AddWord(1, st.Stem("spider"))
	top.AddWord(3, st.Stem("web"))
	topics := []*directory.Topic{top}

	mild := makeUser(d, "mild")
	mild.Topics["spiders"] = 1
	severe := makeUser(d, "severe")
	severe.Topics["spiders"] = 3

	msg := Prepare("there is a web in the corner", st)
	if res := Classify(msg, mild, topics); !res.Safe {
		t.Error("level 3 word flagged for a level 1 recipient")
	}
	if res := Classify(msg, severe, topics); res.Safe {
		t.Error("level 3 word not flagged for a level 3 recipient")
	}

	// Lower-level words apply at every level above them.
	msg = Prepare("spider!", st)
	if res := Classify(msg, severe, topics); res.Safe {
		t.Error("level 1 word not flagged for a level 3 recipient")
	}
}

func TestClassifyLevelZeroNeverMatches(t *testing.T) {
	st := stem.New()
	d := directory.New()
	top := d.GetTopic("spiders")
	top.AddWord(1, st.Stem("spider"))

	u := makeUser(d, "alice")
	u.Topics["spiders"] = 0

	msg := Prepare("spider spider spider", st)
	if res := Classify(msg, u, []*directory.Topic{top}); !res.Safe {
		t.Error("level 0 sensitivity produced an unsafe result")
	}
}

func TestClassifyEnumeratesAllMatches(t *testing.T) {
	st := stem.New()
	d := directory.New()
	spiders := d.GetTopic("spiders")
	spiders.AddWord(1, st.Stem("spider"))
	heights := d.GetTopic("heights")
	heights.AddWord(1, st.Stem("cliff"))
	topics := []*directory.Topic{heights, spiders}

	u := makeUser(d, "alice")
	u.Topics["spiders"] = 1
	u.Topics["heights"] = 1
	u.TriggerWords[st.Stem("falling")] = struct{}{}

	msg := Prepare("a spider falling off a cliff", st)
	res := Classify(msg, u, topics)
	if res.Safe {
		t.Fatal("expected unsafe result")
	}
	if !reflect.DeepEqual(res.Topics, []string{"heights", "spiders"}) {
		t.Errorf("Topics = %v", res.Topics)
	}
	if !reflect.DeepEqual(res.Words, []string{st.Stem("falling")}) {
		t.Errorf("Words = %v", res.Words)
	}
}

func TestClassifyNoSensitivities(t *testing.T) {
	st := stem.New()
	d := directory.New()
	top := d.GetTopic("spiders")
	top.AddWord(1, st.Stem("spider"))

	u := makeUser(d, "alice")
	msg := Prepare("spider", st)
	if res := Classify(msg, u, []*directory.Topic{top}); !res.Safe {
		t.Error("recipient without sensitivities got an unsafe result")
	}
}
