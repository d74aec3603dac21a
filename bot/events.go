package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"triggerbot/directory"
	"triggerbot/helpers"
	"triggerbot/logger"
)

// HandleConnected runs once per connection after registration.
func (b *Bot) HandleConnected() {
	logger.Info("connected", "nick", b.nick)
	b.tr.SetMode(b.nick, "+B")
	b.identify()
	channels := b.dir.Settings().Channels
	if len(channels) == 0 {
		channels = b.cfg.Bot.Channels
	}
	for _, name := range channels {
		b.joinChannel(name)
	}
}

func (b *Bot) identify() {
	if b.cfg.Bot.Identify {
		b.tr.Message("NickServ", "IDENTIFY "+b.cfg.Bot.IdentifyPassword)
	}
}

// HandleDisconnected invalidates every session and checkpoints.
func (b *Bot) HandleDisconnected() {
	logger.Info("disconnected")
	for _, u := range b.dir.AllUsers() {
		u.LoggedIn = false
	}
	b.dir.MarkDirty()
	b.Save()
}

// HandleMessage processes an inbound chat line.
func (b *Bot) HandleMessage(nick, target, text string) {
	u := b.dir.GetUser(nick)
	b.master(u).Touch()

	// Keep credentials out of the log.
	check := strings.TrimLeft(text, "!")
	if !strings.HasPrefix(check, "identify") && !strings.HasPrefix(check, "set password") {
		logger.User(target, nick).Debug("message", "text", text)
	}

	if !helpers.IsChannelName(target) {
		b.handlePrivateMessage(u, text)
		return
	}
	c := b.dir.GetChannel(target)
	for _, prefix := range []string{"!", b.nick + ": ", b.nick + ", "} {
		if strings.HasPrefix(text, prefix) {
			if u.Blocked {
				logger.User(target, nick).Debug("dropped command from blocked user")
			} else {
				b.Dispatch(text[len(prefix):], u, ToChannel(c), false)
			}
			return
		}
	}
	if c.HasMode(directory.ModeSilent) {
		master := b.master(u)
		how := "executing '!mode remove silent'"
		if u.Away && master.AwayCheck && master.AutoSilence {
			how = "removing your away status"
		}
		b.send(ToChannel(c), u, "Your channel is currently in silent mode and therefore not relaying. Please unset silent mode by "+how+".")
		return
	}
	if !c.IsSafeRoom() && b.dir.Settings().MainDisabled {
		b.mainDisabledNotice(c, u)
		return
	}
	b.RelaySafe(text, c, u, StyleChat)
}

// HandleAction processes an inbound /me line.
func (b *Bot) HandleAction(nick, target, text string) {
	u := b.dir.GetUser(nick)
	b.master(u).Touch()
	logger.User(target, nick).Debug("action", "text", text)

	// Hug back when hugged.
	words := strings.Fields(text)
	if len(words) >= 2 && words[0] == "hugs" && words[1] == b.nick {
		b.Dispatch("hug", u, b.recipientFor(target), false)
	}
	if !helpers.IsChannelName(target) {
		return
	}
	c := b.dir.GetChannel(target)
	if c.HasMode(directory.ModeSilent) {
		master := b.master(u)
		how := "executing '!mode remove silent'"
		if u.Away && master.AwayCheck && master.AutoSilence {
			how = "removing your away status"
		}
		b.send(ToChannel(c), u, "Your channel is currently in silent mode and therefore not relaying. Please unset silent mode by "+how+".")
		return
	}
	if !c.IsSafeRoom() && b.dir.Settings().MainDisabled {
		b.mainDisabledNotice(c, u)
		return
	}
	b.RelaySafe(text, c, u, StyleAction)
}

func (b *Bot) recipientFor(target string) Recipient {
	if helpers.IsChannelName(target) {
		return ToChannel(b.dir.GetChannel(target))
	}
	return ToUser(b.dir.GetUser(target))
}

func (b *Bot) mainDisabledNotice(c *directory.Channel, u *directory.User) {
	if !b.master(u).HasSafeRooms {
		b.Dispatch("set channel", u, ToChannel(c), true)
	}
	b.send(ToChannel(c), u, fmt.Sprintf("The main channel has been disabled. Please join %s to chat in this channel.",
		helpers.SafeRoomName(c.Name, u.Nick)))
}

func (b *Bot) handlePrivateMessage(u *directory.User, text string) {
	check := strings.TrimLeft(text, "!")
	if !b.master(u).ListenMode || strings.HasPrefix(check, "unset listenmode") {
		b.Dispatch(check, u, ToUser(u), false)
		return
	}
	// Listen mode: the bot just sits with them, occasionally nodding.
	if rand.Intn(3) == 0 {
		reactions := []string{"nods calmly.", "nods."}
		reaction := reactions[rand.Intn(len(reactions))]
		nick := u.Nick
		b.After(time.Duration(2+rand.Intn(3))*time.Second, func() {
			if _, ok := b.dir.LookupUser(nick); ok {
				b.tr.Action(nick, reaction)
			}
		})
	}
}

// HandleSelfJoin runs when the bot itself enters a channel: set the
// default topic template and pull up safe rooms for everyone who owns
// one.
func (b *Bot) HandleSelfJoin(name string) {
	logger.Channel(name).Info("joined")
	c := b.dir.GetChannel(name)
	if c.IsSafeRoom() {
		owner, err := b.dir.ChannelOwner(c)
		if err != nil {
			logger.Channel(name).Warn("safe room without known owner")
			return
		}
		motd := "[globalmotd]"
		if owner.MOTDRead {
			motd = ""
		}
		if c.TopicTemplate == "" {
			c.TopicTemplate = fmt.Sprintf("%s's triggersafe channel. | %s[rules][mode]", owner.Nick, motd)
		}
		b.UpdateRules(c, true)
		return
	}
	if c.TopicTemplate == "" {
		c.TopicTemplate = "[globalmotd][rules]"
	}
	for _, u := range b.dir.AllUsers() {
		if u.HasSafeRooms {
			b.joinChannel(helpers.SafeRoomName(c.Name, u.Nick))
		}
	}
}

// HandleJoin processes another user entering a channel.
func (b *Bot) HandleJoin(nick, name string) {
	logger.Channel(name).Debug("join", "nick", nick)
	c := b.dir.GetChannel(name)
	known, existed := b.dir.LookupUser(nick)

	alreadyPresent := false
	for _, u := range b.linkedUsers(c) {
		if strings.EqualFold(u.Nick, nick) {
			alreadyPresent = true
			break
		}
	}

	u := b.dir.GetUser(nick)
	switch {
	case !existed:
		b.send(ToChannel(c), u, fmt.Sprintf("Hello, %s! I haven't seen you before. If you want, you can take a tutorial on how to best use %s by typing '!tutorial'.", u.Nick, b.nick))
	case strings.EqualFold(nick, "NickServ") || strings.EqualFold(nick, "ChanServ"):
		// Services recovered from a crash; identify again.
		b.identify()
	case known.UnreadMail() > 0:
		b.send(ToChannel(c), u, "You have unread messages. Please check them using '!mail inbox unread'.")
	}

	switch {
	case (!c.IsSafeRoom() && !b.dir.Settings().MainDisabled) || (c.IsSafeRoom() && !c.HasMode(directory.ModeSilent)):
		if !alreadyPresent && !b.isService(nick) {
			b.Relay(fmt.Sprintf("%s has joined.", nick), c, relayOpts{related: u, info: true, notifyFriends: true})
		}
		c.AddMember(u)
	case b.dir.Settings().MainDisabled && !c.IsSafeRoom():
		b.mainDisabledNotice(c, u)
	default:
		c.AddMember(u)
	}

	if c.IsSafeRoom() && !b.isService(nick) {
		b.Dispatch("names", nil, ToChannel(c), false)
	}
	b.master(u).Touch()
	b.tr.Who(nick)
}

// HandlePart processes a user leaving one channel.
func (b *Bot) HandlePart(nick, name string) {
	logger.Channel(name).Debug("part", "nick", nick)
	u, ok := b.dir.LookupUser(nick)
	if !ok {
		return
	}
	master := b.master(u)
	c := b.dir.GetChannel(name)
	if !c.RemoveMember(u) {
		return
	}
	stillOnline := false
	hideLeave := false
	for _, other := range b.dir.AllChannels() {
		if other.HasMember(u) {
			if other.HasMode(directory.ModeSilent) {
				hideLeave = true
			} else {
				stillOnline = true
			}
		}
	}
	if !stillOnline {
		if !hideLeave {
			b.Relay(fmt.Sprintf("%s has left.", nick), c, relayOpts{related: u, info: true})
		}
		if master.AutoLogout {
			u.LoggedIn = false
		}
	}
	b.UpdateRules(c, true)
	master.Touch()
	u.LastLogout = time.Now()
	b.dir.MarkDirty()
}

// HandleQuit processes a network-wide disappearance.
func (b *Bot) HandleQuit(nick, reason string) {
	logger.Debug("quit", "nick", nick, "reason", reason)
	u, ok := b.dir.LookupUser(nick)
	if !ok {
		return
	}
	var exclude []*directory.Channel
	var last *directory.Channel
	for _, c := range b.dir.AllChannels() {
		if c.RemoveMember(u) {
			last = c
		}
		if c.IsSafeRoom() && c.HasMode(directory.ModeSilent) {
			exclude = append(exclude, c)
		}
	}
	if last != nil {
		line := fmt.Sprintf("%s has quit (%s).", nick, reason)
		if strings.HasPrefix(reason, "Quit: ") || reason == "" {
			line = fmt.Sprintf("%s has quit.", nick)
		}
		b.RelayGlobal(line, relayOpts{related: u, info: true, exclude: exclude})
		b.UpdateRules(last, true)
	}
	master := b.master(u)
	master.Touch()
	u.LastLogout = time.Now()
	if master.AutoLogout {
		u.LoggedIn = false
	}
	b.dir.MarkDirty()
}

// HandleKick processes someone getting kicked. Kicks issued through
// the bot carry the real kicker in the reason ("kicker: reason").
func (b *Bot) HandleKick(kicked, name, kicker, reason string) {
	if head, rest, found := strings.Cut(reason, ": "); found {
		kicker, reason = head, rest
	}
	logger.Channel(name).Debug("kick", "nick", kicked, "by", kicker, "reason", reason)
	c := b.dir.GetChannel(name)
	u, ok := b.dir.LookupUser(kicked)
	if !ok || !c.RemoveMember(u) {
		return
	}
	stillPresent := false
	for _, other := range b.dir.AllChannels() {
		if other.Base() == c.Base() && other.HasMember(u) {
			stillPresent = true
			break
		}
	}
	if stillPresent {
		b.Relay(fmt.Sprintf("%s was kicked by %s.", kicked, kicker), c, relayOpts{related: u, info: true})
	} else {
		b.Relay(fmt.Sprintf("%s has left (kicked by %s).", kicked, kicker), c, relayOpts{related: u, info: true})
	}
	b.UpdateRules(c, true)
	b.master(u).Touch()
	u.LastLogout = time.Now()
	b.dir.MarkDirty()
}

// HandleRename processes a nick change. When the new nick is free the
// account simply follows; when it names another known account the
// person switched identities and the membership moves over.
func (b *Bot) HandleRename(oldNick, newNick string) {
	logger.Debug("rename", "from", oldNick, "to", newNick)
	old := b.dir.GetUser(oldNick)
	b.master(old).Touch()

	target, exists := b.dir.LookupUser(newNick)
	if !exists {
		if err := b.dir.RenameUser(old, newNick); err != nil {
			logger.Warn("rename failed", "from", oldNick, "to", newNick, "error", err)
			return
		}
		target = old
	} else if target != old {
		b.master(target).Touch()
		for _, c := range b.dir.AllChannels() {
			if c.RemoveMember(old) {
				c.AddMember(target)
			}
		}
	}

	announced := make(map[string]struct{})
	for _, c := range b.dir.AllChannels() {
		if !c.HasMember(target) {
			continue
		}
		if _, done := announced[c.Base()]; done {
			continue
		}
		announced[c.Base()] = struct{}{}
		b.Relay(fmt.Sprintf("%s is now known as %s.", oldNick, newNick), c, relayOpts{related: target, info: true})
	}
	b.dir.MarkDirty()
}

// HandleTopic tracks topic changes: our own sets confirm TopicText,
// anyone else's becomes the new rewrite template.
func (b *Bot) HandleTopic(name, topic, setter string) {
	c := b.dir.GetChannel(name)
	if strings.EqualFold(setter, b.nick) {
		c.TopicText = topic
	} else {
		c.TopicTemplate = topic
		b.dir.MarkDirty()
	}
}

// HandleWhoReply processes one WHO response line, tracking host, away
// state and services login, and auto-silencing abandoned safe rooms.
func (b *Bot) HandleWhoReply(nick, host, flags string) {
	if b.isService(nick) {
		return
	}
	u := b.dir.GetUser(nick)
	master := b.master(u)
	u.Host = host
	if strings.Contains(flags, "r") && master.NickServLogin {
		u.LoggedIn = true
	}
	switch {
	case strings.Contains(flags, "H"):
		u.Away = false
		if master.HasSafeRooms && master.AutoSilence {
			for _, c := range b.ownedRooms(master) {
				if c.HasMode(directory.ModeSilent) {
					b.Dispatch("mode remove silent auto", u, ToChannel(c), true)
				}
			}
		}
	case strings.Contains(flags, "G"):
		if !master.AwayCheck {
			return
		}
		u.Away = true
		if master.HasSafeRooms && len(master.Topics) > 0 && master.AutoSilence {
			for _, c := range b.ownedRooms(master) {
				if c.HasMode(directory.ModeSilent) {
					continue
				}
				allAway := true
				for _, member := range c.Members() {
					if !member.Away {
						allAway = false
						break
					}
				}
				if allAway {
					b.Dispatch("mode add silent auto", u, ToChannel(c), true)
				}
			}
		}
	}
}

// HandleEndOfWho recomputes all rules once away states are fresh.
func (b *Bot) HandleEndOfWho() {
	b.UpdateAllRules(true)
}

// ownedRooms returns the safe rooms whose owner resolves to the user.
func (b *Bot) ownedRooms(master *directory.User) []*directory.Channel {
	var rooms []*directory.Channel
	for _, c := range b.dir.AllChannels() {
		if b.roomOwner(c) == master {
			rooms = append(rooms, c)
		}
	}
	return rooms
}

// HandleNames records a NAMES chunk for a channel.
func (b *Bot) HandleNames(name string, nicks []string) {
	c := b.dir.GetChannel(name)
	for _, nick := range nicks {
		nick = strings.TrimLeft(nick, "~&@%+")
		if nick == "" || strings.EqualFold(nick, b.nick) {
			continue
		}
		c.AddMember(b.dir.GetUser(nick))
	}
}

// HandleEndOfNames schedules a rule recomputation once the membership
// has settled.
func (b *Bot) HandleEndOfNames(name string) {
	c := b.dir.GetChannel(name)
	names := make([]string, 0, len(c.Members()))
	for _, u := range c.Members() {
		names = append(names, u.Nick)
	}
	logger.Channel(c.Name).Debug("names", "members", strings.Join(names, " "))
	b.After(10*time.Second, func() {
		if still, ok := b.dir.LookupChannel(c.Name); ok {
			b.UpdateRules(still, true)
		}
	})
}

// HandleAway marks a user away from an RPL_AWAY numeric.
func (b *Bot) HandleAway(nick string) {
	b.dir.GetUser(nick).Away = true
	b.UpdateAllRules(true)
}
