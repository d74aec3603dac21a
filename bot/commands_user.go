package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"triggerbot/auth"
	"triggerbot/helpers"
)

func (b *Bot) registerUserCommands() {
	b.register(&command{
		path: "identify",
		help: "Log in to a password-protected account.\n" +
			"Required to make changes to the account trigger topics, trigger words or settings if protected.\n" +
			"identify <password>",
		toggleable: true,
		fn:         cmdIdentify,
	})
	b.register(&command{
		path:       "logout",
		help:       "Log out of your account.\nlogout",
		protected:  true,
		toggleable: true,
		fn:         cmdLogout,
	})
	b.register(&command{path: "set", help: "Sets various settings for you.", toggleable: true, fn: showSub})
	b.register(&command{path: "unset", help: "Disables a setting for you.", toggleable: true, fn: showSub})

	type toggle struct {
		name      string
		setHelp   string
		unsetHelp string
		setFn     Handler
		unsetFn   Handler
	}
	toggles := []toggle{
		{
			name:      "awaycheck",
			setHelp:   "When set, your trigger topics and words are not applied while you are marked away.\nset awaycheck",
			unsetHelp: "When unset, your trigger topics and words are applied even while you are marked away.\nunset awaycheck",
			setFn:     cmdSetAwayCheck,
			unsetFn:   cmdUnsetAwayCheck,
		},
		{
			name:      "autosilence",
			setHelp:   "When set, your channel is silenced when you go away (requires awaycheck to be set).\nset autosilence",
			unsetHelp: "When unset, your channel is not silenced when you go away.\nunset autosilence",
			setFn:     cmdSetAutoSilence,
			unsetFn:   cmdUnsetAutoSilence,
		},
		{
			name:      "autologout",
			setHelp:   "When set, you are automatically logged out when you quit or leave all channels the bot is in.\nset autologout",
			unsetHelp: "When unset, you stay logged in even if you quit or leave all channels the bot is in.\nunset autologout",
			setFn:     cmdSetAutoLogout,
			unsetFn:   cmdUnsetAutoLogout,
		},
		{
			name:      "hideown",
			setHelp:   "When set, your own triggers are not reported in your own triggersafe channels.\nset hideown",
			unsetHelp: "When unset, your own triggers are also reported in your triggersafe channels.\nunset hideown",
			setFn:     cmdSetHideOwn,
			unsetFn:   cmdUnsetHideOwn,
		},
		{
			name:      "listenmode",
			setHelp:   "When set, your sentences in a private chat are not treated as commands; the bot listens to you like a therapist would.\nset listenmode",
			unsetHelp: "When unset, your messages in a private chat are treated as commands.\nunset listenmode",
			setFn:     cmdSetListenMode,
			unsetFn:   cmdUnsetListenMode,
		},
		{
			name:      "motdread",
			setHelp:   "When set, the MOTD is not displayed in your channel.\nset motdread",
			unsetHelp: "When unset, the MOTD is displayed in your channel.\nunset motdread",
			setFn:     cmdSetMOTDRead,
			unsetFn:   cmdUnsetMOTDRead,
		},
		{
			name:      "nickservlogin",
			setHelp:   "When set, being logged in with NickServ will log you in with the bot.\nset nickservlogin",
			unsetHelp: "When unset, being logged in with NickServ will not log you in with the bot.\nunset nickservlogin",
			setFn:     cmdSetNickServLogin,
			unsetFn:   cmdUnsetNickServLogin,
		},
	}
	for _, t := range toggles {
		b.register(&command{path: "set " + t.name, help: t.setHelp, protected: true, toggleable: true, fn: t.setFn})
		b.register(&command{path: "unset " + t.name, help: t.unsetHelp, protected: true, toggleable: true, fn: t.unsetFn})
	}

	b.register(&command{
		path: "set password",
		help: "When set, your account becomes password protected and trigger topics, trigger words and settings cannot be changed without logging in first.\n" +
			"set password <password>",
		protected:  true,
		toggleable: true,
		fn:         cmdSetPassword,
	})
	b.register(&command{
		path:       "unset password",
		help:       "When unset, your account will not be password protected.\nunset password",
		protected:  true,
		toggleable: true,
		fn:         cmdUnsetPassword,
	})
	b.register(&command{
		path: "set channel",
		help: "When set, a trigger-safe copy of each channel is kept available for you, in which all messages without triggerwords are relayed.\n" +
			"This channel name will be like #channelname_yournickname. So, if your nickname is example, a filtered version of #examplechannel is available for you at #examplechannel_example.\n" +
			"set channel",
		protected:  true,
		toggleable: true,
		fn:         cmdSetChannel,
	})
	b.register(&command{
		path:       "unset channel",
		help:       "When unset, the trigger-safe copies of the channels are no longer kept available for you.\nunset channel",
		protected:  true,
		toggleable: true,
		fn:         cmdUnsetChannel,
	})

	b.register(&command{path: "word", help: "Manage words which can trigger you.", toggleable: true, fn: showSub})
	b.register(&command{
		path: "word add",
		help: "Adds one or more trigger word(s) for you. Users will be warned when they use this word while you are present.\n" +
			"word add <word>",
		protected:  true,
		toggleable: true,
		fn:         cmdWordAdd,
	})
	b.register(&command{
		path:       "word remove",
		help:       "Removes one or more of your trigger words.\nword remove <word>",
		protected:  true,
		toggleable: true,
		fn:         cmdWordRemove,
	})
	b.register(&command{
		path: "word list",
		help: "Lists trigger words.\n" +
			"word list - Lists your own trigger words.\n" +
			"word list <nick> - Lists nick's trigger words.",
		toggleable: true,
		fn:         cmdWordList,
	})
	b.register(&command{
		path:       "word who",
		help:       "Shows who has the given trigger word set.\nword who <word>",
		toggleable: true,
		fn:         cmdWordWho,
	})

	b.register(&command{path: "topic", help: "Manage topics which make you feel uncomfortable.", toggleable: true, fn: showSub})
	b.register(&command{
		path:       "topic add",
		help:       "Adds one or more trigger topic(s) for you.\ntopic add <topic> <level>",
		protected:  true,
		toggleable: true,
		fn:         cmdTopicAdd,
	})
	b.register(&command{
		path:       "topic remove",
		help:       "Removes one or more trigger topic(s) for you.\ntopic remove <topic>",
		protected:  true,
		toggleable: true,
		fn:         cmdTopicRemove,
	})
	b.register(&command{
		path: "topic list",
		help: "Lists trigger topics.\n" +
			"topic list - Lists your own triggers.\n" +
			"topic list <nick> - Lists nick's triggers.",
		toggleable: true,
		fn:         cmdTopicList,
	})
	b.register(&command{
		path: "topic info",
		help: "Shows information about trigger topics.\n" +
			"topic info - Lists all the available trigger topics.\n" +
			"topic info <topic> - Shows information about a particular trigger topic.",
		toggleable: true,
		fn:         cmdTopicInfo,
	})

	b.register(&command{
		path: "clone",
		help: "Copy someone else's trigger topics and trigger words.\n" +
			"clone <nick> - Copies nick's trigger topics and trigger words to your nick.",
		protected:  true,
		toggleable: true,
		fn:         cmdClone,
	})
	b.register(&command{
		path:       "wipe",
		help:       "Deletes all your trigger topics and trigger words.\nwipe",
		protected:  true,
		toggleable: true,
		fn:         cmdWipe,
	})
}

func cmdIdentify(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	if !master.Protected() {
		inv.reply(b, "This username is not protected.")
		return nil
	}
	if auth.Verify(strings.Join(inv.Params, " "), master.PasswordHash) {
		inv.User.LoggedIn = true
		inv.reply(b, "You are now logged in.")
	} else {
		inv.reply(b, "Sorry, but the password you entered is incorrect. Please try again.")
	}
	return nil
}

func cmdLogout(b *Bot, inv *Invocation) error {
	inv.User.LoggedIn = false
	inv.reply(b, "You are now logged out.")
	return nil
}

func cmdSetAwayCheck(b *Bot, inv *Invocation) error {
	b.master(inv.User).AwayCheck = true
	inv.reply(b, "Awaycheck set.")
	b.dir.MarkDirty()
	b.UpdateAllRules(true)
	return nil
}

func cmdUnsetAwayCheck(b *Bot, inv *Invocation) error {
	b.master(inv.User).AwayCheck = false
	inv.reply(b, "Awaycheck unset.")
	b.dir.MarkDirty()
	b.UpdateAllRules(true)
	return nil
}

func cmdSetAutoSilence(b *Bot, inv *Invocation) error {
	b.master(inv.User).AutoSilence = true
	inv.reply(b, "Autosilence set.")
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetAutoSilence(b *Bot, inv *Invocation) error {
	b.master(inv.User).AutoSilence = false
	inv.reply(b, "Autosilence unset.")
	b.dir.MarkDirty()
	return nil
}

func cmdSetAutoLogout(b *Bot, inv *Invocation) error {
	b.master(inv.User).AutoLogout = true
	inv.reply(b, "Autologout set.")
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetAutoLogout(b *Bot, inv *Invocation) error {
	b.master(inv.User).AutoLogout = false
	inv.reply(b, "Autologout unset.")
	b.dir.MarkDirty()
	return nil
}

func cmdSetHideOwn(b *Bot, inv *Invocation) error {
	b.master(inv.User).HideOwn = true
	inv.reply(b, "Your triggers will no longer be displayed in your own channel(s).")
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetHideOwn(b *Bot, inv *Invocation) error {
	b.master(inv.User).HideOwn = false
	inv.reply(b, "Your triggers will be displayed in your own channel(s).")
	b.dir.MarkDirty()
	return nil
}

func cmdSetListenMode(b *Bot, inv *Invocation) error {
	b.master(inv.User).ListenMode = true
	inv.reply(b, "Listenmode set.")
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetListenMode(b *Bot, inv *Invocation) error {
	b.master(inv.User).ListenMode = false
	inv.reply(b, "Listenmode unset.")
	b.dir.MarkDirty()
	return nil
}

func cmdSetMOTDRead(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.MOTDRead = true
	inv.reply(b, "MOTD marked as read. The channel topic for your triggersafe channel(s) will be updated soon.")
	for _, c := range b.ownedRooms(master) {
		c.TopicTemplate = fmt.Sprintf("%s's triggersafe channel. | [rules][mode]", master.Nick)
	}
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetMOTDRead(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.MOTDRead = false
	inv.reply(b, "MOTD marked as unread. The channel topic for your triggersafe channel(s) will be updated soon.")
	for _, c := range b.ownedRooms(master) {
		c.TopicTemplate = fmt.Sprintf("%s's triggersafe channel. | [globalmotd][rules][mode]", master.Nick)
	}
	b.dir.MarkDirty()
	return nil
}

func cmdSetNickServLogin(b *Bot, inv *Invocation) error {
	b.master(inv.User).NickServLogin = true
	inv.reply(b, fmt.Sprintf("NickServ logins will now cause %s logins.", b.nick))
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetNickServLogin(b *Bot, inv *Invocation) error {
	b.master(inv.User).NickServLogin = false
	inv.reply(b, fmt.Sprintf("NickServ logins will no longer cause %s logins.", b.nick))
	b.dir.MarkDirty()
	return nil
}

func cmdSetPassword(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	hash, err := auth.Hash(strings.Join(inv.Params, " "))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	master := b.master(inv.User)
	master.PasswordHash = hash
	inv.User.LoggedIn = true
	inv.reply(b, "Password set.")
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetPassword(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.PasswordHash = nil
	master.LoggedIn = false
	for _, id := range master.Alts {
		if alt, ok := b.dir.UserByID(id); ok {
			alt.LoggedIn = false
		}
	}
	inv.reply(b, "Password protection removed.")
	b.dir.MarkDirty()
	return nil
}

func cmdSetChannel(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.HasSafeRooms = true
	for _, c := range b.dir.AllChannels() {
		if c.IsSafeRoom() {
			continue
		}
		name := helpers.SafeRoomName(c.Name, master.Nick)
		if _, exists := b.dir.LookupChannel(name); !exists {
			b.joinChannel(name)
		}
	}
	inv.reply(b, "Trigger-safe channels are now available for you.")
	b.dir.MarkDirty()
	return nil
}

func cmdUnsetChannel(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.HasSafeRooms = false
	for _, c := range b.dir.AllChannels() {
		if c.IsSafeRoom() {
			continue
		}
		name := helpers.SafeRoomName(c.Name, master.Nick)
		if _, exists := b.dir.LookupChannel(name); exists {
			b.leaveChannel(name, "Channel owner disabled trigger-safe channels")
		}
	}
	inv.reply(b, "Trigger-safe channels are no longer available for you.")
	b.dir.MarkDirty()
	return nil
}

func cmdWordAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, entry := range inv.Params {
		master.TriggerWords[b.st.Stem(entry)] = struct{}{}
	}
	b.dir.MarkDirty()
	inv.reply(b, "Trigger word(s) added.")
	return nil
}

func cmdWordRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, entry := range inv.Params {
		delete(master.TriggerWords, b.st.Stem(entry))
	}
	b.dir.MarkDirty()
	inv.reply(b, "Trigger word(s) removed.")
	return nil
}

func cmdWordList(b *Bot, inv *Invocation) error {
	queried := b.master(inv.User)
	name := inv.User.Nick
	if len(inv.Params) > 0 {
		u, err := b.dir.FindUser(inv.Params[0])
		if err != nil {
			return err
		}
		queried = b.master(u)
		name = inv.Params[0]
	}
	if len(queried.TriggerWords) == 0 {
		inv.reply(b, fmt.Sprintf("%s has no trigger words set.", name))
		return nil
	}
	words := make([]string, 0, len(queried.TriggerWords))
	for w := range queried.TriggerWords {
		words = append(words, w)
	}
	sort.Strings(words)
	inv.reply(b, fmt.Sprintf("%s has the following trigger words set: %s.", name, helpers.JoinAnd(", ", " and ", words)))
	return nil
}

func cmdWordWho(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	word := b.st.Stem(inv.Params[0])
	seen := make(map[string]struct{})
	var nicks []string
	for _, c := range b.dir.AllChannels() {
		for _, member := range c.Members() {
			master := b.master(member)
			if !master.HasTriggerWord(word) {
				continue
			}
			if _, dup := seen[master.Nick]; !dup {
				seen[master.Nick] = struct{}{}
				nicks = append(nicks, master.Nick)
			}
		}
	}
	if len(nicks) == 0 {
		inv.reply(b, "Nobody present seems to have that trigger word.")
		return nil
	}
	sort.Strings(nicks)
	inv.reply(b, fmt.Sprintf("The following users have that trigger word: %s.", helpers.JoinAnd(", ", " and ", nicks)))
	return nil
}

func cmdTopicAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	master := b.master(inv.User)
	for i := 0; i+1 < len(inv.Params); i += 2 {
		top, err := b.dir.FindTopic(inv.Params[i])
		if err != nil {
			return err
		}
		level, err := strconv.Atoi(inv.Params[i+1])
		if err != nil {
			inv.reply(b, "Sorry, but that syntax is incorrect. Correct syntax: \"topic add <topic> <level>...\"")
			continue
		}
		if _, ok := top.Descriptions[level]; !ok {
			inv.reply(b, fmt.Sprintf("Topic %q doesn't have level %d.", top.Name, level))
			continue
		}
		master.Topics[top.Name] = level
	}
	inv.reply(b, "Topic(s) added.")
	b.UpdateAllRules(true)
	b.dir.MarkDirty()
	return nil
}

func cmdTopicRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, name := range inv.Params {
		top, err := b.dir.FindTopic(name)
		if err != nil {
			return err
		}
		if _, ok := master.Topics[top.Name]; !ok {
			inv.reply(b, fmt.Sprintf("Could not find topic %q", strings.ToLower(name)))
			continue
		}
		delete(master.Topics, top.Name)
	}
	inv.reply(b, "Topic(s) removed.")
	b.UpdateAllRules(true)
	b.dir.MarkDirty()
	return nil
}

func cmdTopicList(b *Bot, inv *Invocation) error {
	queried := b.master(inv.User)
	name := inv.User.Nick
	if len(inv.Params) > 0 {
		u, err := b.dir.FindUser(inv.Params[0])
		if err != nil {
			return err
		}
		queried = b.master(u)
		name = inv.Params[0]
	}
	if len(queried.Topics) == 0 {
		inv.reply(b, fmt.Sprintf("%q has no trigger topics set.", name))
		return nil
	}
	entries := make([]string, 0, len(queried.Topics))
	for topic, level := range queried.Topics {
		entries = append(entries, fmt.Sprintf("%s (level %d)", topic, level))
	}
	sort.Strings(entries)
	inv.reply(b, fmt.Sprintf("%q has the following trigger topics set: %s.", name, helpers.JoinAnd(", ", " and ", entries)))
	return nil
}

func cmdTopicInfo(b *Bot, inv *Invocation) error {
	if len(inv.Params) > 0 {
		top, err := b.dir.FindTopic(inv.Params[0])
		if err != nil {
			return err
		}
		levels := make([]int, 0, len(top.Descriptions))
		for level := range top.Descriptions {
			levels = append(levels, level)
		}
		sort.Ints(levels)
		for _, level := range levels {
			inv.reply(b, fmt.Sprintf("%s (level %d) - %s.", top.Name, level, top.Descriptions[level]))
		}
		return nil
	}
	topics := b.dir.AllTopics()
	if len(topics) == 0 {
		inv.reply(b, "There are no trigger topics available. Please contact a bot admin and ask them to add some.")
		return nil
	}
	names := make([]string, 0, len(topics))
	for _, top := range topics {
		names = append(names, top.Name)
	}
	inv.reply(b, fmt.Sprintf("The following trigger topics are available: %s.", helpers.JoinAnd(", ", " and ", names)))
	return nil
}

func cmdClone(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	u, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	source := b.master(u)
	master := b.master(inv.User)
	for w := range source.TriggerWords {
		master.TriggerWords[w] = struct{}{}
	}
	for topic, level := range source.Topics {
		if level > master.Topics[topic] {
			master.Topics[topic] = level
		}
	}
	b.dir.MarkDirty()
	inv.reply(b, "It is done.")
	b.UpdateAllRules(true)
	return nil
}

func cmdWipe(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.TriggerWords = make(map[string]struct{})
	master.Topics = make(map[string]int)
	b.dir.MarkDirty()
	inv.reply(b, "All your data are gone. I hope it's what you wanted.")
	b.UpdateAllRules(true)
	return nil
}
