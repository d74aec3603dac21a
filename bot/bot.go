// Package bot is the moderation engine: command dispatch, safety
// classification fan-out, rule aggregation and the relay topology
// across a base channel and its safe rooms.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"triggerbot/directory"
	"triggerbot/logger"
	"triggerbot/safety"
	"triggerbot/settings"
	"triggerbot/store"
)

const stateKey = "triggerbot:state"

// Transport sends to the chat network. Delivery is best effort; no
// call blocks or reports success.
type Transport interface {
	Message(target, text string)
	Notice(target, text string)
	Action(target, text string)
	Join(channel string)
	Part(channel, reason string)
	Kick(channel, nick, reason string)
	SetMode(target, modes string, args ...string)
	SetTopic(channel, topic string)
	Nick(nick string)
	Who(target string)
	Quit(reason string)
}

// Bot owns the directory and processes one event at a time. All state
// access goes through the event loop; transport handlers post
// closures, they never touch the directory themselves.
type Bot struct {
	cfg *settings.Config
	dir *directory.Directory
	db  *store.Store
	tr  Transport
	st  safety.Stemmer

	nick     string
	commands map[string]*command

	// reconnect tells the owner of the connection whether a
	// disconnect should be followed by a new attempt. An ordered quit
	// clears it.
	reconnect bool

	events chan func()
}

func New(cfg *settings.Config, dir *directory.Directory, db *store.Store, tr Transport, st safety.Stemmer) *Bot {
	b := &Bot{
		cfg:       cfg,
		dir:       dir,
		db:        db,
		tr:        tr,
		st:        st,
		nick:      cfg.Bot.Nick,
		commands:  make(map[string]*command),
		reconnect: true,
		events:    make(chan func(), 256),
	}
	b.registerCommands()
	return b
}

func (b *Bot) Directory() *directory.Directory { return b.dir }

// Nick is the bot's current nickname as seen by the network.
func (b *Bot) Nick() string { return b.nick }

func (b *Bot) SetNick(nick string) { b.nick = nick }

// ShouldReconnect reports whether the connection owner should dial
// again after a disconnect.
func (b *Bot) ShouldReconnect() bool { return b.reconnect }

// Post queues fn for execution on the event loop. It is the only safe
// entry point from transport callbacks and timers.
func (b *Bot) Post(fn func()) {
	select {
	case b.events <- fn:
	default:
		logger.Warn("event queue full, dropping event")
	}
}

// After schedules fn on the event loop after d. Handlers scheduled
// this way must re-validate the entities they captured; the world may
// have moved on by the time they fire.
func (b *Bot) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { b.Post(fn) })
}

// Run consumes events until ctx is cancelled. Housekeeping runs as
// ordinary events, so it never overlaps command processing.
func (b *Bot) Run(ctx context.Context) {
	minutely := time.NewTicker(b.cfg.Bot.SaveInterval())
	defer minutely.Stop()
	daily := time.NewTicker(b.cfg.Bot.PurgeInterval())
	defer daily.Stop()

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case fn := <-b.events:
			fn()
		case <-minutely.C:
			b.minutelyTasks()
		case <-daily.C:
			b.dailyTasks()
		}
	}
}

func (b *Bot) shutdown() {
	for _, u := range b.dir.AllUsers() {
		u.LoggedIn = false
	}
	b.dir.MarkDirty()
	b.Save()
}

// Save checkpoints the directory if it has unsaved changes. A failed
// checkpoint is logged and retried on the next interval.
func (b *Bot) Save() {
	if !b.dir.Dirty() {
		return
	}
	if err := b.db.SaveJSON(stateKey, b.dir.Snapshot()); err != nil {
		logger.Error("state checkpoint failed", "error", err)
		return
	}
	b.dir.ClearDirty()
	logger.Debug("saved state")
}

// Load restores the directory from the last checkpoint, if any.
func (b *Bot) Load() error {
	if !b.db.Has(stateKey) {
		logger.Warn("no saved state, starting fresh; use claimadmin to claim administrator rights")
		return nil
	}
	var snap directory.Snapshot
	if err := b.db.LoadJSON(stateKey, &snap); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	b.dir.Restore(&snap)
	return nil
}

func (b *Bot) master(u *directory.User) *directory.User {
	return b.dir.Resolve(u)
}

// send delivers a reply. Channel-directed replies are prefixed with
// the addressed user's nick.
func (b *Bot) send(to Recipient, u *directory.User, text string) {
	switch {
	case to.IsUser():
		b.tr.Message(to.User.Nick, text)
		logger.User("", to.User.Nick).Debug("reply", "text", text)
	case to.IsChannel():
		if u != nil {
			text = u.Nick + ": " + text
		}
		b.tr.Message(to.Channel.Name, text)
		logger.Channel(to.Channel.Name).Debug("reply", "text", text)
	}
}

// notifyAdmins messages every admin of the channel directly.
func (b *Bot) notifyAdmins(c *directory.Channel, text string) {
	for _, id := range c.Admins {
		if admin, ok := b.dir.UserByID(id); ok {
			b.send(ToUser(admin), nil, text)
		}
	}
}

// joinChannel joins and, for safe rooms, locks the room down to its
// owner, the owner's alts and explicitly allowed users.
func (b *Bot) joinChannel(name string) {
	name = strings.ToLower(name)
	c := b.dir.GetChannel(name)
	if b.dir.Settings().AddChannel(c.Name) {
		b.dir.MarkDirty()
	}
	c.ClearMembers()
	b.tr.Join(c.Name)
	if !c.IsSafeRoom() {
		return
	}
	owner, err := b.dir.ChannelOwner(c)
	if err != nil {
		logger.Channel(c.Name).Warn("safe room without known owner")
		return
	}
	b.tr.SetMode(c.Name, "+s")
	b.tr.SetMode(c.Name, "+i")
	masks := []string{owner.Nick + "!*@*", b.nick + "!*@*"}
	for _, id := range owner.Alts {
		if alt, ok := b.dir.UserByID(id); ok {
			masks = append(masks, alt.Nick+"!*@*")
		}
	}
	for _, id := range owner.RoomAllow {
		if allowed, ok := b.dir.UserByID(id); ok {
			masks = append(masks, allowed.Nick+"!*@*")
		}
	}
	b.tr.SetMode(c.Name, "+"+strings.Repeat("I", len(masks)), masks...)
}

func (b *Bot) leaveChannel(name string, reason string) {
	name = strings.ToLower(name)
	c, ok := b.dir.LookupChannel(name)
	if !ok {
		return
	}
	if b.dir.Settings().RemoveChannel(c.Name) {
		b.dir.MarkDirty()
	}
	b.dir.RemoveChannel(c)
	b.tr.Part(c.Name, reason)
}

// safeRooms returns every safe room sharing the channel's base,
// excluding the channel itself.
func (b *Bot) safeRooms(c *directory.Channel) []*directory.Channel {
	base := c.Base()
	var rooms []*directory.Channel
	for _, other := range b.dir.AllChannels() {
		if other != c && other.IsSafeRoom() && other.Base() == base {
			rooms = append(rooms, other)
		}
	}
	return rooms
}

// linkedUsers returns the distinct users present anywhere in the
// channel's topology (base plus all safe rooms).
func (b *Bot) linkedUsers(c *directory.Channel) []*directory.User {
	base := c.Base()
	seen := make(map[string]*directory.User)
	for _, other := range b.dir.AllChannels() {
		if other.Base() != base {
			continue
		}
		for _, u := range other.Members() {
			seen[u.Nick] = u
		}
	}
	out := make([]*directory.User, 0, len(seen))
	for _, u := range seen {
		out = append(out, u)
	}
	return out
}

// roomOwner returns the resolved owner account of a safe room, nil for
// base channels and unknown owners.
func (b *Bot) roomOwner(c *directory.Channel) *directory.User {
	if !c.IsSafeRoom() {
		return nil
	}
	owner, err := b.dir.ChannelOwner(c)
	if err != nil {
		return nil
	}
	return owner
}

func (b *Bot) isService(nick string) bool {
	switch strings.ToLower(nick) {
	case strings.ToLower(b.nick), "chanserv", "nickserv":
		return true
	}
	return false
}

func (b *Bot) sourceURL() string {
	if b.cfg.Bot.SourceURL != "" {
		return b.cfg.Bot.SourceURL
	}
	return "https://github.com/TheLastProject/triggerbot"
}
