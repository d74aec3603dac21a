package directory

import "sort"

// Topic is a named sensitivity subject with graded levels. Level 0
// means the topic is of no concern; higher levels are stricter. Each
// level carries its own description and trigger word set, and a word
// at level N also applies at every level above N.
type Topic struct {
	Name         string                      `json:"name"`
	Descriptions map[int]string              `json:"descriptions,omitempty"`
	Words        map[int]map[string]struct{} `json:"words,omitempty"`
	Supersedes   []string                    `json:"supersedes,omitempty"`
}

func newTopic(name string) *Topic {
	return &Topic{
		Name:         name,
		Descriptions: make(map[int]string),
		Words:        make(map[int]map[string]struct{}),
	}
}

func (t *Topic) String() string { return t.Name }

// MaxLevel returns the highest level with a description or any words.
func (t *Topic) MaxLevel() int {
	max := 0
	for lvl := range t.Descriptions {
		if lvl > max {
			max = lvl
		}
	}
	for lvl := range t.Words {
		if lvl > max {
			max = lvl
		}
	}
	return max
}

// Describe returns the description for the highest defined level not
// above the given one.
func (t *Topic) Describe(level int) string {
	best := ""
	bestLvl := -1
	for lvl, desc := range t.Descriptions {
		if lvl <= level && lvl > bestLvl {
			best = desc
			bestLvl = lvl
		}
	}
	return best
}

func (t *Topic) AddWord(level int, word string) bool {
	if t.Words == nil {
		t.Words = make(map[int]map[string]struct{})
	}
	set, ok := t.Words[level]
	if !ok {
		set = make(map[string]struct{})
		t.Words[level] = set
	}
	if _, ok := set[word]; ok {
		return false
	}
	set[word] = struct{}{}
	return true
}

func (t *Topic) RemoveWord(level int, word string) bool {
	set, ok := t.Words[level]
	if !ok {
		return false
	}
	if _, ok := set[word]; !ok {
		return false
	}
	delete(set, word)
	if len(set) == 0 {
		delete(t.Words, level)
	}
	return true
}

// WordsAt returns the trigger words active at the given level, that
// is every word defined at that level or below, sorted.
func (t *Topic) WordsAt(level int) []string {
	seen := make(map[string]struct{})
	for lvl, set := range t.Words {
		if lvl > level {
			continue
		}
		for w := range set {
			seen[w] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// HasWordAt reports whether the word triggers the topic at the given
// level.
func (t *Topic) HasWordAt(level int, word string) bool {
	for lvl, set := range t.Words {
		if lvl > level {
			continue
		}
		if _, ok := set[word]; ok {
			return true
		}
	}
	return false
}

func (t *Topic) SupersedesTopic(name string) bool {
	for _, s := range t.Supersedes {
		if s == name {
			return true
		}
	}
	return false
}

func (t *Topic) AddSupersede(name string) bool {
	if t.SupersedesTopic(name) {
		return false
	}
	t.Supersedes = append(t.Supersedes, name)
	return true
}

func (t *Topic) RemoveSupersede(name string) bool {
	for i, s := range t.Supersedes {
		if s == name {
			t.Supersedes = append(t.Supersedes[:i], t.Supersedes[i+1:]...)
			return true
		}
	}
	return false
}
