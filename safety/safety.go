// Package safety decides whether a message is safe for a given
// recipient. It is purely functional over the recipient's sensitivity
// profile and the topic catalogue; channel modes and relationships are
// the relay engine's business.
package safety

import (
	"sort"
	"strings"

	"triggerbot/directory"
)

// Stemmer reduces a word to its canonical root.
type Stemmer interface {
	Stem(word string) string
}

// Result explains a classification. Topics and Words list every match,
// not just the first, so a withholding notice can name them all.
type Result struct {
	Safe   bool
	Topics []string
	Words  []string
}

// Message is a pre-stemmed message, so that one classification pass
// over a channel's membership stems each word once.
type Message struct {
	stems map[string]struct{}
}

// Prepare splits and stems a message once for repeated classification.
func Prepare(text string, st Stemmer) *Message {
	stems := make(map[string]struct{})
	for _, word := range strings.Fields(text) {
		if s := st.Stem(word); s != "" {
			stems[s] = struct{}{}
		}
	}
	return &Message{stems: stems}
}

// Classify checks a prepared message against one recipient. A recipient
// with no sensitivities always gets a safe result, whatever the
// catalogue holds.
func Classify(msg *Message, u *directory.User, topics []*directory.Topic) Result {
	res := Result{Safe: true}

	for stem := range msg.stems {
		if u.HasTriggerWord(stem) {
			res.Words = append(res.Words, stem)
		}
	}

	for _, top := range topics {
		level := u.Topics[top.Name]
		if level <= 0 {
			continue
		}
		for stem := range msg.stems {
			if top.HasWordAt(level, stem) {
				res.Topics = append(res.Topics, top.Name)
				break
			}
		}
	}

	sort.Strings(res.Words)
	sort.Strings(res.Topics)
	res.Safe = len(res.Words) == 0 && len(res.Topics) == 0
	return res
}
