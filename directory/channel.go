package directory

import (
	"sort"

	"github.com/google/uuid"

	"triggerbot/helpers"
)

// Channel modes. Silent is mutually exclusive with the other two.
const (
	ModeSilent     = "silent"
	ModeRant       = "rant"
	ModeFilterless = "filterless"
)

// Channel is a room the bot manages. A name with an underscore suffix
// (`#base_owner`) denotes a personal safe room on top of `#base`.
// Membership is runtime state rebuilt from the network; it is not part
// of the snapshot.
type Channel struct {
	Name   string      `json:"name"`
	Admins []uuid.UUID `json:"admins,omitempty"`

	Mode     []string `json:"mode,omitempty"`
	PrevMode []string `json:"-"`

	// Rules is the aggregated obligation map (topic name -> required
	// level). It is recomputed, never independently mutated.
	Rules map[string]int `json:"-"`

	// BlockedTopics ejects any member whose sensitivity for the topic
	// reaches the listed level.
	BlockedTopics map[string]int `json:"blockedTopics,omitempty"`

	// TopicTemplate is the last externally observed topic line, used
	// as the rewrite template. TopicText is the bot's own last-set
	// topic, kept to detect external changes and skip redundant
	// rewrites.
	TopicTemplate string `json:"topicTemplate,omitempty"`
	TopicText     string `json:"-"`

	members map[uuid.UUID]*User
}

func newChannel(name string) *Channel {
	return &Channel{
		Name:          name,
		Rules:         make(map[string]int),
		BlockedTopics: make(map[string]int),
		members:       make(map[uuid.UUID]*User),
	}
}

func (c *Channel) String() string { return c.Name }

// Base returns the main channel name this channel belongs to.
func (c *Channel) Base() string { return helpers.BaseName(c.Name) }

// IsSafeRoom reports whether this is an owner-suffixed safe room.
func (c *Channel) IsSafeRoom() bool { return helpers.OwnerNick(c.Name) != "" }

func (c *Channel) HasMode(mode string) bool {
	for _, m := range c.Mode {
		if m == mode {
			return true
		}
	}
	return false
}

// AddMode sets a channel mode, clearing incompatible ones. It reports
// whether the mode was newly set.
func (c *Channel) AddMode(mode string) bool {
	switch mode {
	case ModeSilent:
		c.removeMode(ModeRant)
		c.removeMode(ModeFilterless)
	case ModeRant, ModeFilterless:
		c.removeMode(ModeSilent)
	}
	if c.HasMode(mode) {
		return false
	}
	c.Mode = append(c.Mode, mode)
	return true
}

// RemoveMode clears a mode, reporting whether it was set.
func (c *Channel) RemoveMode(mode string) bool {
	if !c.HasMode(mode) {
		return false
	}
	c.removeMode(mode)
	return true
}

func (c *Channel) removeMode(mode string) {
	for i, m := range c.Mode {
		if m == mode {
			c.Mode = append(c.Mode[:i], c.Mode[i+1:]...)
			return
		}
	}
}

func (c *Channel) ResetMode() {
	c.Mode = nil
}

func (c *Channel) AddMember(u *User) {
	if c.members == nil {
		c.members = make(map[uuid.UUID]*User)
	}
	c.members[u.ID] = u
}

func (c *Channel) RemoveMember(u *User) bool {
	if _, ok := c.members[u.ID]; !ok {
		return false
	}
	delete(c.members, u.ID)
	return true
}

func (c *Channel) HasMember(u *User) bool {
	_, ok := c.members[u.ID]
	return ok
}

func (c *Channel) ClearMembers() {
	c.members = make(map[uuid.UUID]*User)
}

// Members returns the present users, sorted by nick for deterministic
// iteration.
func (c *Channel) Members() []*User {
	out := make([]*User, 0, len(c.members))
	for _, u := range c.members {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nick < out[j].Nick })
	return out
}

func (c *Channel) IsChannelAdmin(u *User) bool {
	return hasID(c.Admins, u.ID)
}

func (c *Channel) AddAdmin(u *User) {
	c.Admins = addID(c.Admins, u.ID)
}

func (c *Channel) RemoveAdmin(u *User) {
	c.Admins = removeID(c.Admins, u.ID)
}

// RulesEqual compares an aggregation result against the current rule
// map.
func (c *Channel) RulesEqual(other map[string]int) bool {
	if len(c.Rules) != len(other) {
		return false
	}
	for name, level := range other {
		if c.Rules[name] != level {
			return false
		}
	}
	return true
}
