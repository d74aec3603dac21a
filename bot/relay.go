package bot

import (
	"fmt"

	"triggerbot/directory"
	"triggerbot/helpers"
	"triggerbot/safety"
)

// Style selects how a relayed line is rendered.
type Style int

const (
	StyleChat   Style = iota // <nick> text
	StyleAction              // * nick text
)

// relayOpts carries the optional relay parameters.
type relayOpts struct {
	// sender is the speaking user, nil for bot announcements.
	sender *directory.User
	// related ties an announcement to a user for ignore filtering and
	// friend notification.
	related *directory.User
	style   Style
	// info wraps the rendering in an [INFO] marker (non-chat events
	// like joins and renames).
	info          bool
	exclude       []*directory.Channel
	notifyFriends bool
}

// RelaySafe classifies a message against every reachable recipient and
// relays it with the unsafe channels excluded. The full exclusion set
// is known before the first delivery; a channel holding even one
// triggered user is withheld entirely, and the sender learns what was
// hidden and from whom.
func (b *Bot) RelaySafe(message string, source *directory.Channel, sender *directory.User, style Style) {
	if source.HasMode(directory.ModeSilent) {
		return
	}
	base, ok := b.dir.LookupChannel(source.Base())
	if !ok {
		base = source
	}

	var (
		badTopics  []string
		badWords   []string
		triggered  []string
		ignoring   []string
		collateral []string
		hidden     []*directory.Channel
	)
	isHidden := func(c *directory.Channel) bool {
		for _, h := range hidden {
			if h == c {
				return true
			}
		}
		return false
	}
	addString := func(list []string, s string) []string {
		for _, have := range list {
			if have == s {
				return list
			}
		}
		return append(list, s)
	}

	msg := safety.Prepare(message, b.st)
	topics := b.dir.AllTopics()

	for _, room := range b.safeRooms(source) {
		members := room.Members()
		if len(members) == 0 {
			// Nobody there, nothing to protect; skip delivery too.
			hidden = append(hidden, room)
			continue
		}
		for _, member := range members {
			if isHidden(room) {
				collateral = addString(collateral, member.Nick)
				continue
			}
			master := b.master(member)
			sensitive := len(master.Topics) > 0 || len(master.TriggerWords) > 0
			switch {
			case room.HasMode(directory.ModeSilent),
				source.HasMode(directory.ModeRant) && sensitive && !room.HasMode(directory.ModeFilterless),
				sender != nil && directory.HasID(master.Ignores, b.master(sender).ID):
				ignoring = addString(ignoring, master.Nick)
				hidden = append(hidden, room)
				continue
			}
			if room.HasMode(directory.ModeFilterless) {
				continue
			}
			res := safety.Classify(msg, master, topics)
			if res.Safe {
				continue
			}
			hidden = append(hidden, room)
			if member.Away && master.AwayCheck {
				// Away users are protected without being named.
				continue
			}
			for _, t := range res.Topics {
				badTopics = addString(badTopics, t)
			}
			for _, w := range res.Words {
				badWords = addString(badWords, w)
			}
			triggered = addString(triggered, master.Nick)
		}
	}

	// A protected or ignoring user is not collateral damage.
	for _, nick := range append(append([]string(nil), ignoring...), triggered...) {
		for i, c := range collateral {
			if c == nick {
				collateral = append(collateral[:i], collateral[i+1:]...)
				break
			}
		}
	}

	if sender != nil && (len(badTopics) > 0 || len(badWords) > 0) {
		b.explainSuppression(source, base, sender, message, badTopics, badWords, triggered, collateral)
	}

	b.Relay(message, source, relayOpts{sender: sender, style: style, exclude: hidden})
}

// explainSuppression tells the sender what was hidden and why, records
// a warning and alerts the channel admins.
func (b *Bot) explainSuppression(source, base *directory.Channel, sender *directory.User, message string, badTopics, badWords, triggered, collateral []string) {
	collateralNote := ""
	if len(collateral) > 0 {
		collateralNote = " Due to user location, it was also hidden from " + helpers.JoinAnd(", ", " and ", collateral) + "."
	}
	var because, warning string
	switch {
	case len(badTopics) > 0 && len(badWords) > 0:
		because = fmt.Sprintf("Because your message was possibly about the %s %s and contained the %s %s,",
			plural("subject", len(badTopics)), helpers.JoinAnd(", ", " and ", badTopics),
			plural("word", len(badWords)), helpers.JoinAnd(", ", " and ", badWords))
		warning = fmt.Sprintf("Said %q, containing %s %s and %s %s, being unsafe for %s.",
			message, plural("subject", len(badTopics)), helpers.JoinAnd(", ", " and ", badTopics),
			plural("word", len(badWords)), helpers.JoinAnd(", ", " and ", badWords),
			helpers.JoinAnd(", ", " and ", triggered))
	case len(badTopics) > 0:
		because = fmt.Sprintf("Because your message was possibly about the %s %s,",
			plural("subject", len(badTopics)), helpers.JoinAnd(", ", " and ", badTopics))
		warning = fmt.Sprintf("Said %q, containing %s %s, being unsafe for %s.",
			message, plural("subject", len(badTopics)), helpers.JoinAnd(", ", " and ", badTopics),
			helpers.JoinAnd(", ", " and ", triggered))
	default:
		because = fmt.Sprintf("Because your message contained the %s %s,",
			plural("word", len(badWords)), helpers.JoinAnd(", ", " and ", badWords))
		warning = fmt.Sprintf("Said %q, containing %s %s, being unsafe for %s.",
			message, plural("word", len(badWords)), helpers.JoinAnd(", ", " and ", badWords),
			helpers.JoinAnd(", ", " and ", triggered))
	}
	b.send(ToChannel(source), sender, fmt.Sprintf("%s it was hidden from %s.%s",
		because, helpers.JoinAnd(", ", " and ", triggered), collateralNote))
	master := b.master(sender)
	master.AddWarning(base.Name, "", warning)
	b.dir.MarkDirty()
	b.notifyAdmins(base, fmt.Sprintf("%s was prevented from triggering %s in %s. Type '!channel %s warnings list %s verbose 1' for more info.",
		sender.Nick, helpers.JoinAnd(", ", " and ", triggered), source.Name, base.Name, sender.Nick))
}

func plural(noun string, n int) string {
	if n > 1 {
		return noun + "s"
	}
	return noun
}

// Relay delivers a rendered line across the channel's topology: from
// the base to every safe room, or from a safe room to the base and its
// siblings. Excluded channels, silent channels, rooms whose owner
// ignores the related user, and a disabled base channel receive
// nothing.
func (b *Bot) Relay(message string, source *directory.Channel, opts relayOpts) {
	excluded := func(c *directory.Channel) bool {
		for _, e := range opts.exclude {
			if e == c {
				return true
			}
		}
		return false
	}
	related := opts.related
	if related == nil {
		related = opts.sender
	}

	deliver := func(c *directory.Channel) {
		if c.HasMode(directory.ModeSilent) {
			return
		}
		if related != nil && b.allIgnoring(c, related) {
			return
		}
		text := message
		if opts.notifyFriends && related != nil {
			if friends := b.presentFriends(c, related); len(friends) > 0 {
				text = fmt.Sprintf("%s (This is a friend of you, %s)", message, helpers.JoinAnd(", ", " and ", friends))
			}
		}
		b.tr.Message(c.Name, renderLine(text, opts.sender, opts.style, opts.info))
	}

	for _, room := range b.safeRooms(source) {
		if !excluded(room) {
			deliver(room)
		}
	}
	if source.IsSafeRoom() {
		if b.dir.Settings().MainDisabled {
			return
		}
		if base, ok := b.dir.LookupChannel(source.Base()); ok && !excluded(base) {
			deliver(base)
		}
	}
}

// RelayGlobal fans a bot announcement out from every base channel.
func (b *Bot) RelayGlobal(message string, opts relayOpts) {
	for _, c := range b.dir.AllChannels() {
		if c.IsSafeRoom() {
			continue
		}
		b.Relay(message, c, opts)
		excluded := false
		for _, e := range opts.exclude {
			if e == c {
				excluded = true
			}
		}
		if !excluded && !b.dir.Settings().MainDisabled && !c.HasMode(directory.ModeSilent) {
			b.tr.Message(c.Name, renderLine(message, opts.sender, opts.style, opts.info))
		}
	}
}

// allIgnoring reports whether every present member of the channel
// ignores the user. An empty channel is not ignoring anyone.
func (b *Bot) allIgnoring(c *directory.Channel, u *directory.User) bool {
	members := c.Members()
	if len(members) == 0 {
		return false
	}
	target := b.master(u)
	for _, member := range members {
		if !directory.HasID(b.master(member).Ignores, target.ID) {
			return false
		}
	}
	return true
}

// presentFriends lists members of the channel who have the user on
// their friend list.
func (b *Bot) presentFriends(c *directory.Channel, u *directory.User) []string {
	target := b.master(u)
	var friends []string
	for _, member := range c.Members() {
		if directory.HasID(b.master(member).Friends, target.ID) {
			friends = append(friends, member.Nick)
		}
	}
	return friends
}

func renderLine(text string, sender *directory.User, style Style, info bool) string {
	var line string
	switch {
	case style == StyleAction && sender != nil:
		line = "* " + sender.Nick + " " + text
	case sender != nil:
		line = "<" + sender.Nick + "> " + text
	default:
		line = text
	}
	if info {
		line = "[INFO] " + line
	}
	return line
}
