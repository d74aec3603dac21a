package directory

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"triggerbot/helpers"
	"triggerbot/logger"
)

// Directory is the in-memory registry of every persisted entity. It is
// not safe for concurrent use; the bot funnels all access through its
// event loop.
type Directory struct {
	users    map[uuid.UUID]*User
	byNick   map[string]*User
	channels map[string]*Channel
	topics   map[string]*Topic
	settings Settings

	dirty bool
}

func New() *Directory {
	return &Directory{
		users:    make(map[uuid.UUID]*User),
		byNick:   make(map[string]*User),
		channels: make(map[string]*Channel),
		topics:   make(map[string]*Topic),
	}
}

func (d *Directory) Settings() *Settings { return &d.settings }

// MarkDirty flags unsaved changes. Command handlers call it after any
// mutation; the save loop clears it.
func (d *Directory) MarkDirty()  { d.dirty = true }
func (d *Directory) Dirty() bool { return d.dirty }
func (d *Directory) ClearDirty() { d.dirty = false }

func nickKey(nick string) string { return strings.ToLower(nick) }

// GetUser returns the account for nick, creating it on first sight.
func (d *Directory) GetUser(nick string) *User {
	if u, ok := d.byNick[nickKey(nick)]; ok {
		return u
	}
	u := newUser(nick)
	d.users[u.ID] = u
	d.byNick[nickKey(nick)] = u
	d.dirty = true
	return u
}

// LookupUser returns the account for nick without creating one.
func (d *Directory) LookupUser(nick string) (*User, bool) {
	u, ok := d.byNick[nickKey(nick)]
	return u, ok
}

// FindUser is LookupUser with a user-facing error.
func (d *Directory) FindUser(nick string) (*User, error) {
	if u, ok := d.byNick[nickKey(nick)]; ok {
		return u, nil
	}
	return nil, UserNotFoundError{Nick: nick}
}

func (d *Directory) UserByID(id uuid.UUID) (*User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// RenameUser moves an account to a new nick. The new nick must not be
// taken by a different account.
func (d *Directory) RenameUser(u *User, nick string) error {
	if other, ok := d.byNick[nickKey(nick)]; ok && other != u {
		return NewUserError("Sorry, the name %s is already taken.", nick)
	}
	delete(d.byNick, nickKey(u.Nick))
	u.Nick = nick
	d.byNick[nickKey(nick)] = u
	d.dirty = true
	return nil
}

// RemoveUser deletes an account and scrubs every reference to it.
func (d *Directory) RemoveUser(u *User) {
	for _, other := range d.users {
		if other == u {
			continue
		}
		other.Alts = removeID(other.Alts, u.ID)
		other.Friends = removeID(other.Friends, u.ID)
		other.Trusts = removeID(other.Trusts, u.ID)
		other.Ignores = removeID(other.Ignores, u.ID)
		other.IgnoredBy = removeID(other.IgnoredBy, u.ID)
		other.RoomAllow = removeID(other.RoomAllow, u.ID)
		if other.Master == u.ID {
			other.Master = uuid.Nil
		}
	}
	for _, c := range d.channels {
		c.Admins = removeID(c.Admins, u.ID)
		c.RemoveMember(u)
	}
	delete(d.byNick, nickKey(u.Nick))
	delete(d.users, u.ID)
	d.dirty = true
}

// Resolve follows an alt account to its master. Settings, topics and
// relationships live on the master record.
func (d *Directory) Resolve(u *User) *User {
	for u.Master != uuid.Nil {
		master, ok := d.users[u.Master]
		if !ok {
			u.Master = uuid.Nil
			break
		}
		u = master
	}
	return u
}

func (d *Directory) GetChannel(name string) *Channel {
	key := strings.ToLower(name)
	if c, ok := d.channels[key]; ok {
		return c
	}
	c := newChannel(key)
	d.channels[key] = c
	d.dirty = true
	return c
}

func (d *Directory) LookupChannel(name string) (*Channel, bool) {
	c, ok := d.channels[strings.ToLower(name)]
	return c, ok
}

func (d *Directory) FindChannel(name string) (*Channel, error) {
	if c, ok := d.channels[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, ChannelNotFoundError{Name: name}
}

func (d *Directory) RemoveChannel(c *Channel) {
	delete(d.channels, strings.ToLower(c.Name))
	d.dirty = true
}

// ChannelOwner returns the account a safe room belongs to.
func (d *Directory) ChannelOwner(c *Channel) (*User, error) {
	owner := helpers.OwnerNick(c.Name)
	if owner == "" {
		return nil, OwnerNotFoundError{Channel: c.Name}
	}
	u, ok := d.LookupUser(owner)
	if !ok {
		return nil, OwnerNotFoundError{Channel: c.Name}
	}
	return d.Resolve(u), nil
}

func (d *Directory) GetTopic(name string) *Topic {
	key := strings.ToLower(name)
	if t, ok := d.topics[key]; ok {
		return t
	}
	t := newTopic(key)
	d.topics[key] = t
	d.dirty = true
	return t
}

func (d *Directory) LookupTopic(name string) (*Topic, bool) {
	t, ok := d.topics[strings.ToLower(name)]
	return t, ok
}

func (d *Directory) FindTopic(name string) (*Topic, error) {
	if t, ok := d.topics[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, TopicNotFoundError{Name: name}
}

// RemoveTopic deletes a topic and every reference to it.
func (d *Directory) RemoveTopic(t *Topic) {
	for _, u := range d.users {
		delete(u.Topics, t.Name)
	}
	for _, c := range d.channels {
		delete(c.BlockedTopics, t.Name)
		delete(c.Rules, t.Name)
	}
	for _, other := range d.topics {
		other.RemoveSupersede(t.Name)
	}
	delete(d.topics, t.Name)
	d.dirty = true
}

func (d *Directory) AllUsers() []*User {
	out := make([]*User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nick < out[j].Nick })
	return out
}

func (d *Directory) AllChannels() []*Channel {
	out := make([]*Channel, 0, len(d.channels))
	for _, c := range d.channels {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d *Directory) AllTopics() []*Topic {
	out := make([]*Topic, 0, len(d.topics))
	for _, t := range d.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Admins returns the global admin accounts, head admin first.
func (d *Directory) Admins() []*User {
	out := make([]*User, 0, 4)
	for _, u := range d.AllUsers() {
		if u.IsAdmin() {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Admin < out[j].Admin
	})
	return out
}

// HeadAdmin returns the head admin account, if one exists.
func (d *Directory) HeadAdmin() (*User, bool) {
	for _, u := range d.users {
		if u.IsHeadAdmin() {
			return u, true
		}
	}
	return nil, false
}

// CheckConsistency repairs invariants after a restore. There must be
// at most one head admin; several means a corrupt snapshot, so all of
// them are demoted to full admins until someone reclaims the role.
func (d *Directory) CheckConsistency() {
	var heads []*User
	for _, u := range d.users {
		if u.IsHeadAdmin() {
			heads = append(heads, u)
		}
	}
	switch {
	case len(heads) > 1:
		for _, u := range heads {
			u.Admin = TierFull
			logger.Warn("demoted duplicate head admin", "user", u.Nick)
		}
		d.dirty = true
	case len(heads) == 0:
		logger.Warn("no head admin configured")
	}
}

// Snapshot is the persisted form of the registry.
type Snapshot struct {
	Users    []*User    `json:"users"`
	Channels []*Channel `json:"channels"`
	Topics   []*Topic   `json:"topics"`
	Settings Settings   `json:"settings"`
}

func (d *Directory) Snapshot() *Snapshot {
	return &Snapshot{
		Users:    d.AllUsers(),
		Channels: d.AllChannels(),
		Topics:   d.AllTopics(),
		Settings: d.settings,
	}
}

// Restore replaces the registry contents with a snapshot and rebuilds
// the runtime indexes.
func (d *Directory) Restore(snap *Snapshot) {
	d.users = make(map[uuid.UUID]*User, len(snap.Users))
	d.byNick = make(map[string]*User, len(snap.Users))
	d.channels = make(map[string]*Channel, len(snap.Channels))
	d.topics = make(map[string]*Topic, len(snap.Topics))
	d.settings = snap.Settings

	for _, u := range snap.Users {
		if u.Topics == nil {
			u.Topics = make(map[string]int)
		}
		if u.TriggerWords == nil {
			u.TriggerWords = make(map[string]struct{})
		}
		d.users[u.ID] = u
		d.byNick[nickKey(u.Nick)] = u
	}
	for _, c := range snap.Channels {
		c.Rules = make(map[string]int)
		if c.BlockedTopics == nil {
			c.BlockedTopics = make(map[string]int)
		}
		c.members = make(map[uuid.UUID]*User)
		d.channels[strings.ToLower(c.Name)] = c
	}
	for _, t := range snap.Topics {
		if t.Descriptions == nil {
			t.Descriptions = make(map[int]string)
		}
		if t.Words == nil {
			t.Words = make(map[int]map[string]struct{})
		}
		d.topics[strings.ToLower(t.Name)] = t
	}

	d.CheckConsistency()
	d.dirty = false
}
