package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"triggerbot/directory"
	"triggerbot/helpers"
)

func (b *Bot) registerChannelCommands() {
	b.register(&command{path: "channel", help: "Channel administration commands.", fn: showSub})
	b.register(&command{
		path:         "channel add",
		help:         "Give one or more user(s) channel administrator status.\nchannel add <user>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelAdd,
	})
	b.register(&command{
		path:         "channel remove",
		help:         "Take channel administrator status from one or more user(s).\nchannel remove <user>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelRemove,
	})
	b.register(&command{
		path:         "channel announce",
		help:         "Send an announcement to the channel and all its trigger-safe channels.\nchannel announce <message>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelAnnounce,
	})
	b.register(&command{
		path:         "channel kick",
		help:         "Kick one or more user(s) from the channel.\nchannel kick <user> [<reason>]",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelKick,
	})
	b.register(&command{
		path:         "channel ban",
		help:         "Ban one or more user(s) from the channel.\nchannel ban <user>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelBan,
	})
	b.register(&command{
		path:         "channel unban",
		help:         "Unban one or more user(s) from the channel.\nchannel unban <user>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelUnban,
	})
	b.register(&command{
		path:         "channel kickban",
		help:         "Kick and ban one or more user(s) from the channel.\nchannel kickban <user> [<reason>]",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelKickban,
	})
	b.register(&command{
		path: "channel logs",
		help: "Show the entries in this channel's command log.\n" +
			"Count takes either a number or the value 'all'.\n" +
			"channel logs [<user>] [<count>]",
		channelAdmin: true,
		protected:    true,
		fn:           cmdChannelLogs,
	})
	b.register(&command{path: "channel topicblock", help: "Manage topics blocked in this channel.", fn: showSub})
	b.register(&command{
		path:         "channel topicblock add",
		help:         "Block one or more topic(s) at a level in this channel.\nchannel topicblock add <topic> <level>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdTopicblockAdd,
	})
	b.register(&command{
		path:         "channel topicblock remove",
		help:         "Unblock one or more topic(s) in this channel.\nchannel topicblock remove <topic>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdTopicblockRemove,
	})
	b.register(&command{
		path:         "channel topicblock list",
		help:         "List the topics blocked in this channel.\nchannel topicblock list",
		channelAdmin: true,
		protected:    true,
		fn:           cmdTopicblockList,
	})
	b.register(&command{
		path:         "channel warn",
		help:         "Warn an user.\nchannel warn <user> [<reason>]",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelWarn,
	})
	b.register(&command{path: "channel warnings", help: "Manage the warnings of an user.", fn: showSub})
	b.register(&command{
		path: "channel warnings list",
		help: "List the warnings an user has received in this channel.\n" +
			"channel warnings list <user> [verbose]",
		channelAdmin: true,
		protected:    true,
		fn:           cmdChannelWarningsList,
	})
	b.register(&command{
		path:         "channel warnings reset",
		help:         "Reset the warnings an user has received in this channel.\nchannel warnings reset <user>",
		channelAdmin: true,
		protected:    true,
		logged:       true,
		fn:           cmdChannelWarningsReset,
	})
}

func cmdChannelAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		c.AddAdmin(b.master(u))
	}
	b.dir.MarkDirty()
	inv.reply(b, "Requested user(s) now have channel administrator status.")
	return nil
}

func cmdChannelRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		c.RemoveAdmin(b.master(u))
	}
	b.dir.MarkDirty()
	inv.reply(b, "Requested user(s) no longer have channel administrator status.")
	return nil
}

// announce delivers a notice to the base channel and every safe room
// attached to it.
func (b *Bot) announce(c *directory.Channel, from, message string) {
	text := fmt.Sprintf("Announcement from %s: %s", from, message)
	b.tr.Notice(c.Base(), text)
	for _, room := range b.safeRooms(c) {
		b.tr.Notice(room.Name, text)
	}
}

func cmdChannelAnnounce(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	b.announce(c, inv.User.Nick, strings.Join(inv.Params, " "))
	return nil
}

// kickFrom removes the user's nick from the base channel and all its
// safe rooms. The kicker is embedded in the reason so the target knows
// who acted even though the bot performs the kick.
func (b *Bot) kickFrom(c *directory.Channel, kicker, nick, reason string) {
	if reason == "" {
		reason = "no reason specified."
	}
	full := fmt.Sprintf("%s: %s", kicker, reason)
	b.tr.Kick(c.Base(), nick, full)
	for _, room := range b.safeRooms(c) {
		b.tr.Kick(room.Name, nick, full)
	}
}

func cmdChannelKick(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	b.kickFrom(c, inv.User.Nick, inv.Params[0], strings.Join(inv.Params[1:], " "))
	return nil
}

// banMasks returns the host masks to ban for a nick, falling back to a
// nick mask when the host was never seen.
func (b *Bot) banMasks(nick string) []string {
	if u, ok := b.dir.LookupUser(nick); ok && u.Host != "" {
		return []string{"*!*@" + u.Host}
	}
	return []string{nick + "!*@*"}
}

func (b *Bot) setBan(c *directory.Channel, nick string, banned bool) {
	mode := "+b"
	if !banned {
		mode = "-b"
	}
	for _, mask := range b.banMasks(nick) {
		b.tr.SetMode(c.Base(), mode, mask)
		for _, room := range b.safeRooms(c) {
			b.tr.SetMode(room.Name, mode, mask)
		}
	}
}

func cmdChannelBan(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	for _, nick := range inv.Params {
		b.setBan(c, nick, true)
	}
	return nil
}

func cmdChannelUnban(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	for _, nick := range inv.Params {
		b.setBan(c, nick, false)
	}
	return nil
}

func cmdChannelKickban(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	b.setBan(c, inv.Params[0], true)
	b.kickFrom(c, inv.User.Nick, inv.Params[0], strings.Join(inv.Params[1:], " "))
	return nil
}

// logEntry is one audit row annotated with the acting user, collected
// across accounts for rendering.
type logEntry struct {
	user  string
	entry directory.AuditEntry
}

// collectLogs gathers audit entries, optionally restricted to a
// channel scope and to a set of nicks. Entries come back oldest first.
func (b *Bot) collectLogs(channel string, nicks []string) ([]logEntry, error) {
	var users []*directory.User
	if len(nicks) > 0 {
		for _, nick := range nicks {
			u, err := b.dir.FindUser(nick)
			if err != nil {
				return nil, err
			}
			users = append(users, b.master(u))
		}
	} else {
		users = b.dir.AllUsers()
	}

	var out []logEntry
	for _, u := range users {
		for _, entry := range u.AuditLog {
			if channel != "" && entry.Channel != channel {
				continue
			}
			out = append(out, logEntry{user: u.Nick, entry: entry})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].entry.When.Before(out[j].entry.When)
	})
	return out, nil
}

// renderLogs formats collected audit rows as a table, limited to the
// most recent count entries (0 means everything).
func (b *Bot) renderLogs(inv *Invocation, entries []logEntry, count int, withChannel bool) {
	if len(entries) == 0 {
		inv.reply(b, "No log entries found.")
		return
	}
	if count > 0 && count < len(entries) {
		inv.reply(b, fmt.Sprintf("Limiting output to the most recent %d of %d entries.", count, len(entries)))
		entries = entries[len(entries)-count:]
	} else {
		inv.reply(b, fmt.Sprintf("Showing all %d entries.", len(entries)))
	}

	timeLength := len(timeLayout)
	userLength, channelLength := len("user"), len("channel")
	for _, e := range entries {
		if len(e.user) > userLength {
			userLength = len(e.user)
		}
		if len(e.entry.Channel) > channelLength {
			channelLength = len(e.entry.Channel)
		}
	}
	if withChannel {
		inv.reply(b, fmt.Sprintf("%s | %s | %s | command",
			center("channel", channelLength), center("time", timeLength), center("user", userLength)))
	} else {
		inv.reply(b, fmt.Sprintf("%s | %s | command", center("time", timeLength), center("user", userLength)))
	}
	for _, e := range entries {
		if withChannel {
			inv.reply(b, fmt.Sprintf("%s | %s | %s | %s",
				center(e.entry.Channel, channelLength), center(e.entry.When.Format(timeLayout), timeLength),
				center(e.user, userLength), e.entry.Command))
		} else {
			inv.reply(b, fmt.Sprintf("%s | %s | %s",
				center(e.entry.When.Format(timeLayout), timeLength), center(e.user, userLength), e.entry.Command))
		}
	}
}

// splitLogParams separates a trailing count ("all" or a number) from
// the nick list.
func splitLogParams(params []string) (nicks []string, count int) {
	count = 10
	if len(params) == 0 {
		return nil, count
	}
	last := params[len(params)-1]
	if strings.EqualFold(last, "all") {
		return params[:len(params)-1], 0
	}
	if n, err := strconv.Atoi(last); err == nil {
		return params[:len(params)-1], n
	}
	return params, count
}

func cmdChannelLogs(b *Bot, inv *Invocation) error {
	c, err := scope(inv)
	if err != nil {
		return err
	}
	nicks, count := splitLogParams(inv.Params)
	entries, err := b.collectLogs(c.Name, nicks)
	if err != nil {
		return err
	}
	b.renderLogs(inv, entries, count, false)
	return nil
}

func cmdTopicblockAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	if len(inv.Params)%2 != 0 {
		return directory.ErrWrongParamCount
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	for i := 0; i < len(inv.Params); i += 2 {
		topic, err := b.dir.FindTopic(inv.Params[i])
		if err != nil {
			return err
		}
		level, err := strconv.Atoi(inv.Params[i+1])
		if err != nil {
			inv.reply(b, "Please enter a number for topic level")
			return nil
		}
		if _, ok := topic.Descriptions[level]; !ok {
			return directory.NewUserError(fmt.Sprintf("Topic %q does not have a level %d", topic.Name, level))
		}
		if c.BlockedTopics == nil {
			c.BlockedTopics = make(map[string]int)
		}
		c.BlockedTopics[topic.Name] = level
	}
	b.dir.MarkDirty()
	inv.reply(b, "The requested topics are now blocked")
	b.UpdateRules(c, true)
	return nil
}

func cmdTopicblockRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	for _, name := range inv.Params {
		topic, err := b.dir.FindTopic(name)
		if err != nil {
			return err
		}
		delete(c.BlockedTopics, topic.Name)
	}
	b.dir.MarkDirty()
	inv.reply(b, "The requested topics are no longer blocked")
	b.UpdateRules(c, true)
	return nil
}

func cmdTopicblockList(b *Bot, inv *Invocation) error {
	c, err := scope(inv)
	if err != nil {
		return err
	}
	if len(c.BlockedTopics) == 0 {
		inv.reply(b, "No topics are blocked in this channel.")
		return nil
	}
	parts := make([]string, 0, len(c.BlockedTopics))
	for name, level := range c.BlockedTopics {
		parts = append(parts, fmt.Sprintf("%s (level %d)", name, level))
	}
	sort.Strings(parts)
	inv.reply(b, fmt.Sprintf("The following topics are blocked in this channel: %s.",
		helpers.JoinAnd(", ", " and ", parts)))
	return nil
}

// warnUser records a warning against the user's master account and
// notifies them privately. An empty channel records a global warning.
func (b *Bot) warnUser(target *directory.User, channel, by, reason string) {
	master := b.master(target)
	master.AddWarning(channel, by, reason)
	b.dir.MarkDirty()

	if reason == "" {
		b.send(ToUser(target), nil, fmt.Sprintf("%s has sent you a warning.", by))
	} else {
		b.send(ToUser(target), nil, fmt.Sprintf("%s has sent you a warning with the following reason: %s.", by, reason))
	}
	b.send(ToUser(target), nil, "Please think about your behaviour and try to improve it.")
	auto := 0
	for _, w := range master.Warnings {
		if w.By == "" {
			auto++
		}
	}
	b.send(ToUser(target), nil, fmt.Sprintf("For your information, you currently have %d warning(s), of which %d were automatically sent to you by %s.",
		len(master.Warnings), auto, b.nick))
}

func cmdChannelWarn(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	b.warnUser(target, c.Name, inv.User.Nick, strings.Join(inv.Params[1:], " "))
	return nil
}

// listWarnings renders the warnings of a user, optionally restricted
// to a channel scope. An empty scope lists every warning.
func (b *Bot) listWarnings(inv *Invocation, target *directory.User, channel string, verbose bool) {
	master := b.master(target)
	var scoped []directory.Warning
	for _, w := range master.Warnings {
		if channel != "" && w.Channel != channel {
			continue
		}
		scoped = append(scoped, w)
	}
	if len(scoped) == 0 {
		suffix := ""
		if channel != "" && len(master.Warnings) > 0 {
			suffix = " in this channel"
		}
		inv.reply(b, fmt.Sprintf("%s has not received any warnings%s.", target.Nick, suffix))
		return
	}
	sort.SliceStable(scoped, func(i, j int) bool { return scoped[i].When.Before(scoped[j].When) })

	if verbose {
		for _, w := range scoped {
			by := w.By
			if by == "" {
				by = b.nick
			}
			reason := w.Reason
			if reason == "" {
				reason = "No reason specified."
			}
			inv.reply(b, fmt.Sprintf("%s - warned by %s: %s", w.When.Format(timeLayout), by, reason))
		}
		return
	}

	byWarner := make(map[string]int)
	var order []string
	for _, w := range scoped {
		by := w.By
		if by == "" {
			by = b.nick
		}
		if _, seen := byWarner[by]; !seen {
			order = append(order, by)
		}
		byWarner[by]++
	}
	counts := make([]string, 0, len(order))
	for _, by := range order {
		counts = append(counts, fmt.Sprintf("%d by %s", byWarner[by], by))
	}
	if channel != "" {
		inv.reply(b, fmt.Sprintf("Since %s, %s has received %d warning(s) in this channel (%d total). %s.",
			scoped[0].When.Format(timeLayout), target.Nick, len(scoped), len(master.Warnings),
			helpers.JoinAnd(", ", " and ", counts)))
	} else {
		inv.reply(b, fmt.Sprintf("Since %s, %s has received %d warning(s). %s.",
			scoped[0].When.Format(timeLayout), target.Nick, len(scoped),
			helpers.JoinAnd(", ", " and ", counts)))
	}
}

func cmdChannelWarningsList(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	verbose := len(inv.Params) > 1 && strings.EqualFold(inv.Params[1], "verbose")
	b.listWarnings(inv, target, c.Name, verbose)
	return nil
}

func cmdChannelWarningsReset(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	c, err := scope(inv)
	if err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	master := b.master(target)
	kept := master.Warnings[:0]
	for _, w := range master.Warnings {
		if w.Channel != c.Name {
			kept = append(kept, w)
		}
	}
	master.Warnings = kept
	b.dir.MarkDirty()
	inv.reply(b, "Warnings reset.")
	return nil
}
