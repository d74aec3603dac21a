package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"triggerbot/directory"
	"triggerbot/helpers"
)

func (b *Bot) registerAdminCommands() {
	b.register(&command{path: "admin", help: "Bot administration commands.", fn: showSub})
	b.register(&command{
		path:      "admin add",
		help:      "Give one or more user(s) administrator status.\nadmin add <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminAdd,
	})
	b.register(&command{
		path:      "admin remove",
		help:      "Take administrator status from one or more user(s).\nadmin remove <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminRemove,
	})
	b.register(&command{
		path:      "admin announce",
		help:      "Send an announcement to all channels.\nadmin announce <message>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminAnnounce,
	})

	b.register(&command{path: "admin channel", help: "Manage the channels the bot sits in.", fn: showSub})
	b.register(&command{path: "admin channel admin", help: "Manage channel administrators.", fn: showSub})
	b.register(&command{
		path:      "admin channel admin add",
		help:      "Give one or more user(s) channel administrator status for the given channel(s).\nadmin channel admin add <channel> <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminChannelAdminAdd,
	})
	b.register(&command{
		path:      "admin channel admin remove",
		help:      "Take channel administrator status for the given channel(s) from one or more user(s).\nadmin channel admin remove <channel> <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminChannelAdminRemove,
	})
	b.register(&command{
		path:      "admin channel join",
		help:      "Make the bot join one or more channel(s).\nadmin channel join <channel>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminChannelJoin,
	})
	b.register(&command{
		path:      "admin channel leave",
		help:      "Make the bot leave one or more channel(s).\nadmin channel leave <channel>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminChannelLeave,
	})
	b.register(&command{
		path:      "admin channel list",
		help:      "List the channels the bot manages.\nadmin channel list",
		admin:     true,
		protected: true,
		fn:        cmdAdminChannelList,
	})

	b.register(&command{
		path:      "admin create",
		help:      "Create one or more empty user entries.\nadmin create <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminCreate,
	})

	b.register(&command{path: "admin check", help: "Run integrity checks.", fn: showSub})
	b.register(&command{
		path:      "admin check database",
		help:      "Check the database for inconsistencies and repair them.\nadmin check database",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminCheckDatabase,
	})

	b.register(&command{path: "admin export", help: "Export state as replayable commands.", fn: showSub})
	b.register(&command{
		path:      "admin export all",
		help:      "Export all topics and users as replayable commands.\nadmin export all",
		admin:     true,
		protected: true,
		fn:        cmdAdminExportAll,
	})
	b.register(&command{
		path:      "admin export topics",
		help:      "Export all topics as replayable commands.\nadmin export topics",
		admin:     true,
		protected: true,
		fn:        cmdAdminExportTopics,
	})
	b.register(&command{
		path:      "admin export users",
		help:      "Export all users as replayable commands. Passwords are not exported.\nadmin export users",
		admin:     true,
		protected: true,
		fn:        cmdAdminExportUsers,
	})

	b.register(&command{path: "admin ignore", help: "Manage the bot's ignore list.", admin: true, fn: showSub})
	b.register(&command{
		path:      "admin ignore add",
		help:      "Make the bot ignore one or more user(s) completely.\nadmin ignore add <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminIgnoreAdd,
	})
	b.register(&command{
		path:      "admin ignore remove",
		help:      "Remove one or more user(s) from the bot's ignore list.\nadmin ignore remove <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminIgnoreRemove,
	})
	b.register(&command{
		path:      "admin ignore list",
		help:      "List the users the bot ignores.\nadmin ignore list",
		admin:     true,
		protected: true,
		fn:        cmdAdminIgnoreList,
	})

	b.register(&command{
		path:      "admin kick",
		help:      "Kick one or more user(s) from the given channel(s), or all channels.\nadmin kick [<channel>] <user> [<reason>]",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminKick,
	})
	b.register(&command{
		path:      "admin ban",
		help:      "Ban one or more user(s) from the given channel(s), or all channels.\nadmin ban [<channel>] <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminBan,
	})
	b.register(&command{
		path:      "admin unban",
		help:      "Unban one or more user(s) from the given channel(s), or all channels.\nadmin unban [<channel>] <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminUnban,
	})
	b.register(&command{
		path:      "admin kickban",
		help:      "Kick and ban one or more user(s) from the given channel(s), or all channels.\nadmin kickban [<channel>] <user> [<reason>]",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminKickban,
	})
	b.register(&command{
		path: "admin logs",
		help: "Show the entries in the command log of all channels.\n" +
			"Count takes either a number or the value 'all'.\n" +
			"admin logs [<user>] [<count>]",
		admin:     true,
		protected: true,
		fn:        cmdAdminLogs,
	})

	b.register(&command{path: "admin permission", help: "Manage per-user admin command grants.", fn: showSub})
	b.register(&command{
		path:      "admin permission add",
		help:      "Allow an user to run a single admin command.\nadmin permission add <user> <command>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminPermissionAdd,
	})
	b.register(&command{
		path:      "admin permission remove",
		help:      "Disallow an user from running a single admin command.\nadmin permission remove <user> <command>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminPermissionRemove,
	})

	b.register(&command{
		path:      "admin quit",
		help:      "Shut the bot down.\nadmin quit [<message>]",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminQuit,
	})
	b.register(&command{
		path:      "admin reconnect",
		help:      "Make the bot reconnect to the network.\nadmin reconnect [<message>]",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminReconnect,
	})

	b.register(&command{path: "admin set", help: "Set a network-wide option.", fn: showSub})
	b.register(&command{path: "admin unset", help: "Unset a network-wide option.", fn: showSub})
	b.register(&command{
		path:      "admin set globalmotd",
		help:      "Set the global message of the day.\nadmin set globalmotd <message>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminSetGlobalMOTD,
	})
	b.register(&command{
		path:      "admin unset globalmotd",
		help:      "Remove the global message of the day.\nadmin unset globalmotd",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminUnsetGlobalMOTD,
	})
	b.register(&command{
		path:      "admin set maindisabled",
		help:      "Suspend relaying and filtering in main channels.\nadmin set maindisabled",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminSetMainDisabled,
	})
	b.register(&command{
		path:      "admin unset maindisabled",
		help:      "Resume relaying and filtering in main channels.\nadmin unset maindisabled",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminUnsetMainDisabled,
	})

	b.register(&command{path: "admin togglecommand", help: "Enable or disable commands.", fn: showSub})
	b.register(&command{
		path:      "admin togglecommand enable",
		help:      "Re-enable a disabled command.\nadmin togglecommand enable <command>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminToggleEnable,
	})
	b.register(&command{
		path:      "admin togglecommand disable",
		help:      "Disable a command and all its subcommands.\nadmin togglecommand disable <command>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminToggleDisable,
	})
	b.register(&command{
		path:      "admin togglecommand list",
		help:      "List the disabled commands.\nadmin togglecommand list",
		admin:     true,
		protected: true,
		fn:        cmdAdminToggleList,
	})

	b.register(&command{path: "admin topic", help: "Manage the topic catalogue.", fn: showSub})
	b.register(&command{
		path:      "admin topic add",
		help:      "Add a topic level with a description, creating the topic if needed.\nadmin topic add <topic> <level> <description>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminTopicAdd,
	})
	b.register(&command{
		path: "admin topic remove",
		help: "Remove a topic level, or the whole topic when no level is given.\n" +
			"admin topic remove <topic> [<level>]",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminTopicRemove,
	})
	b.register(&command{path: "admin topic word", help: "Manage the trigger words of a topic.", fn: showSub})
	b.register(&command{
		path:      "admin topic word add",
		help:      "Add one or more trigger word(s) to a topic level.\nadmin topic word add <topic> <level> <word>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminTopicWordAdd,
	})
	b.register(&command{
		path:      "admin topic word remove",
		help:      "Remove one or more trigger word(s) from a topic level.\nadmin topic word remove <topic> <level> <word>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminTopicWordRemove,
	})
	b.register(&command{
		path:      "admin topic word list",
		help:      "List the trigger words of a topic.\nadmin topic word list <topic>",
		admin:     true,
		protected: true,
		fn:        cmdAdminTopicWordList,
	})
	b.register(&command{path: "admin topic supersede", help: "Manage topic supersedes.", fn: showSub})
	b.register(&command{
		path: "admin topic supersede add",
		help: "Make a topic supersede one or more other topic(s).\n" +
			"When an user has both topics set, only the superseding topic is shown in the rules.\n" +
			"admin topic supersede add <topic> <superseded topic>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminSupersedeAdd,
	})
	b.register(&command{
		path:      "admin topic supersede remove",
		help:      "Stop a topic from superseding one or more other topic(s).\nadmin topic supersede remove <topic> <superseded topic>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminSupersedeRemove,
	})
	b.register(&command{
		path:      "admin topic supersede list",
		help:      "List the topics a topic supersedes.\nadmin topic supersede list <topic>",
		admin:     true,
		protected: true,
		fn:        cmdAdminSupersedeList,
	})

	b.register(&command{
		path:      "admin user",
		help:      "Execute commands as another user.\nadmin user <nickname> <command>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminUser,
	})
	b.register(&command{
		path:      "admin warn",
		help:      "Warn an user globally.\nadmin warn <user> [<reason>]",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminWarn,
	})
	b.register(&command{path: "admin warnings", help: "Manage the warnings of an user.", fn: showSub})
	b.register(&command{
		path:      "admin warnings list",
		help:      "List all warnings an user has received.\nadmin warnings list <user> [verbose]",
		admin:     true,
		protected: true,
		fn:        cmdAdminWarningsList,
	})
	b.register(&command{
		path:      "admin warnings reset",
		help:      "Reset all warnings an user has received.\nadmin warnings reset <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminWarningsReset,
	})
	b.register(&command{
		path:      "admin wipe",
		help:      "Wipe the trigger data of an user.\nadmin wipe <user>",
		admin:     true,
		protected: true,
		logged:    true,
		fn:        cmdAdminWipe,
	})
}

func cmdAdminAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		master := b.master(u)
		if master.Admin == directory.TierNone {
			master.Admin = directory.TierFull
		}
	}
	b.dir.MarkDirty()
	inv.reply(b, "Requested user(s) now have administrator status.")
	return nil
}

func cmdAdminRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		master := b.master(u)
		if master.IsHeadAdmin() {
			inv.reply(b, fmt.Sprintf("Could not remove admin status from %s: The main admin can only resign, not have their power taken away", master.Nick))
			continue
		}
		master.Admin = directory.TierNone
	}
	b.dir.MarkDirty()
	inv.reply(b, "Requested user(s) no longer have administrator status.")
	return nil
}

func cmdAdminAnnounce(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	message := strings.Join(inv.Params, " ")
	for _, name := range b.dir.Settings().Channels {
		if c, ok := b.dir.LookupChannel(name); ok {
			b.announce(c, inv.User.Nick, message)
		}
	}
	return nil
}

// splitChannels peels leading channel names off an admin command's
// parameters. No channels means every managed base channel.
func (b *Bot) splitChannels(params []string) ([]*directory.Channel, []string, error) {
	var channels []*directory.Channel
	for len(params) > 0 && helpers.IsChannelName(params[0]) {
		c, err := b.dir.FindChannel(params[0])
		if err != nil {
			return nil, nil, err
		}
		channels = append(channels, c)
		params = params[1:]
	}
	if len(channels) == 0 {
		for _, name := range b.dir.Settings().Channels {
			if c, ok := b.dir.LookupChannel(name); ok {
				channels = append(channels, c)
			}
		}
	}
	return channels, params, nil
}

func cmdAdminChannelAdminAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	channels, nicks, err := b.splitChannels(inv.Params)
	if err != nil {
		return err
	}
	if len(nicks) == 0 {
		return directory.ErrMissingParams
	}
	for _, nick := range nicks {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		for _, c := range channels {
			c.AddAdmin(b.master(u))
		}
	}
	b.dir.MarkDirty()
	inv.reply(b, "Added the requested user(s) as channel admin for the requested channel(s).")
	return nil
}

func cmdAdminChannelAdminRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	channels, nicks, err := b.splitChannels(inv.Params)
	if err != nil {
		return err
	}
	if len(nicks) == 0 {
		return directory.ErrMissingParams
	}
	for _, nick := range nicks {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		for _, c := range channels {
			c.RemoveAdmin(b.master(u))
		}
	}
	b.dir.MarkDirty()
	inv.reply(b, "Removed the requested user(s) as channel admin for the requested channel(s).")
	return nil
}

func cmdAdminChannelJoin(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, name := range inv.Params {
		if !helpers.IsChannelName(name) {
			return directory.BadValueError{Value: name}
		}
		b.dir.Settings().AddChannel(name)
		b.joinChannel(name)
	}
	b.dir.MarkDirty()
	inv.reply(b, "Joined the requested channel(s).")
	return nil
}

func cmdAdminChannelLeave(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, name := range inv.Params {
		b.dir.Settings().RemoveChannel(name)
		if c, ok := b.dir.LookupChannel(name); ok {
			for _, room := range b.safeRooms(c) {
				b.leaveChannel(room.Name, "Channel no longer managed")
			}
		}
		b.leaveChannel(name, "Channel no longer managed")
	}
	b.dir.MarkDirty()
	inv.reply(b, "Left the requested channel(s).")
	return nil
}

func cmdAdminChannelList(b *Bot, inv *Invocation) error {
	channels := b.dir.Settings().Channels
	if len(channels) == 0 {
		inv.reply(b, "I'm not managing any channels.")
		return nil
	}
	inv.reply(b, fmt.Sprintf("I'm managing %s", helpers.JoinAnd(", ", " and ", channels)))
	return nil
}

func cmdAdminCreate(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, nick := range inv.Params {
		b.dir.GetUser(nick)
	}
	b.dir.MarkDirty()
	if len(inv.Params) > 1 {
		inv.reply(b, "Entries created.")
	} else {
		inv.reply(b, "Entry created.")
	}
	return nil
}

func cmdAdminCheckDatabase(b *Bot, inv *Invocation) error {
	b.dir.CheckConsistency()
	inv.reply(b, "Check complete.")
	return nil
}

// exportTopics emits the command lines that rebuild the topic
// catalogue when replayed through the dispatcher.
func (b *Bot) exportTopics(inv *Invocation) {
	topics := b.dir.AllTopics()
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	for _, t := range topics {
		levels := make([]int, 0, len(t.Descriptions))
		for lvl := range t.Descriptions {
			levels = append(levels, lvl)
		}
		sort.Ints(levels)
		for _, lvl := range levels {
			inv.reply(b, fmt.Sprintf("!admin topic add %s %d %s", t.Name, lvl, t.Descriptions[lvl]))
		}
		wordLevels := make([]int, 0, len(t.Words))
		for lvl := range t.Words {
			wordLevels = append(wordLevels, lvl)
		}
		sort.Ints(wordLevels)
		for _, lvl := range wordLevels {
			words := make([]string, 0, len(t.Words[lvl]))
			for w := range t.Words[lvl] {
				words = append(words, w)
			}
			sort.Strings(words)
			for _, w := range words {
				inv.reply(b, fmt.Sprintf("!admin topic word add %s %d %s", t.Name, lvl, w))
			}
		}
	}
	// Supersedes last, all topics exist by then.
	for _, t := range topics {
		for _, name := range t.Supersedes {
			inv.reply(b, fmt.Sprintf("!admin topic supersede add %s %s", t.Name, name))
		}
	}
}

// exportUsers emits the command lines that rebuild the user registry.
// Password hashes cannot be replayed and are deliberately left out.
func (b *Bot) exportUsers(inv *Invocation) {
	users := b.dir.AllUsers()
	sort.Slice(users, func(i, j int) bool { return users[i].Nick < users[j].Nick })
	for _, u := range users {
		inv.reply(b, fmt.Sprintf("!admin create %s", u.Nick))
	}
	for _, u := range users {
		if u.IsAlt() {
			if master, ok := b.dir.UserByID(u.Master); ok {
				inv.reply(b, fmt.Sprintf("!admin user %s group add %s", u.Nick, master.Nick))
			}
			continue
		}
		if u.Admin == directory.TierFull {
			inv.reply(b, fmt.Sprintf("!admin add %s", u.Nick))
		}
		topics := make([]string, 0, len(u.Topics))
		for name := range u.Topics {
			topics = append(topics, name)
		}
		sort.Strings(topics)
		for _, name := range topics {
			inv.reply(b, fmt.Sprintf("!admin user %s topic add %s %d", u.Nick, name, u.Topics[name]))
		}
		words := make([]string, 0, len(u.TriggerWords))
		for w := range u.TriggerWords {
			words = append(words, w)
		}
		sort.Strings(words)
		for _, w := range words {
			inv.reply(b, fmt.Sprintf("!admin user %s word add %s", u.Nick, w))
		}
		for _, nick := range b.nicknames(u.Ignores) {
			inv.reply(b, fmt.Sprintf("!admin user %s ignore add %s", u.Nick, nick))
		}
		for _, nick := range b.nicknames(u.Friends) {
			inv.reply(b, fmt.Sprintf("!admin user %s friend add %s", u.Nick, nick))
		}
		for _, nick := range b.nicknames(u.RoomAllow) {
			inv.reply(b, fmt.Sprintf("!admin user %s channelallow add %s", u.Nick, nick))
		}
		// Only settings that differ from a fresh account are emitted.
		type option struct {
			name  string
			value bool
			fresh bool
		}
		for _, opt := range []option{
			{"listenmode", u.ListenMode, false},
			{"channel", u.HasSafeRooms, false},
			{"awaycheck", u.AwayCheck, true},
			{"autologout", u.AutoLogout, true},
			{"autosilence", u.AutoSilence, true},
			{"hideown", u.HideOwn, false},
			{"motdread", u.MOTDRead, false},
		} {
			if opt.value == opt.fresh {
				continue
			}
			verb := "set"
			if !opt.value {
				verb = "unset"
			}
			inv.reply(b, fmt.Sprintf("!admin user %s %s %s", u.Nick, verb, opt.name))
		}
	}
}

func cmdAdminExportAll(b *Bot, inv *Invocation) error {
	b.exportTopics(inv)
	b.exportUsers(inv)
	inv.reply(b, "Export complete.")
	return nil
}

func cmdAdminExportTopics(b *Bot, inv *Invocation) error {
	b.exportTopics(inv)
	inv.reply(b, "All topics have been exported.")
	return nil
}

func cmdAdminExportUsers(b *Bot, inv *Invocation) error {
	b.exportUsers(inv)
	inv.reply(b, "All users have been exported.")
	return nil
}

func cmdAdminIgnoreAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		b.master(u).Blocked = true
	}
	b.dir.MarkDirty()
	inv.reply(b, "Requested user(s) added to the bot's ignore list.")
	return nil
}

func cmdAdminIgnoreRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		b.master(u).Blocked = false
	}
	b.dir.MarkDirty()
	inv.reply(b, "Requested user(s) removed from the bot's ignore list.")
	return nil
}

func cmdAdminIgnoreList(b *Bot, inv *Invocation) error {
	var blocked []string
	for _, u := range b.dir.AllUsers() {
		if u.Blocked {
			blocked = append(blocked, u.Nick)
		}
	}
	if len(blocked) == 0 {
		inv.reply(b, "The bot's ignore list is empty.")
		return nil
	}
	sort.Strings(blocked)
	inv.reply(b, fmt.Sprintf("The following users are on the bot's ignore list: %s.",
		helpers.JoinAnd(", ", " and ", blocked)))
	return nil
}

func cmdAdminKick(b *Bot, inv *Invocation) error {
	channels, params, err := b.splitChannels(inv.Params)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return directory.ErrMissingParams
	}
	for _, c := range channels {
		b.kickFrom(c, inv.User.Nick, params[0], strings.Join(params[1:], " "))
	}
	return nil
}

func cmdAdminBan(b *Bot, inv *Invocation) error {
	channels, nicks, err := b.splitChannels(inv.Params)
	if err != nil {
		return err
	}
	if len(nicks) == 0 {
		return directory.ErrMissingParams
	}
	for _, c := range channels {
		for _, nick := range nicks {
			b.setBan(c, nick, true)
		}
	}
	return nil
}

func cmdAdminUnban(b *Bot, inv *Invocation) error {
	channels, nicks, err := b.splitChannels(inv.Params)
	if err != nil {
		return err
	}
	if len(nicks) == 0 {
		return directory.ErrMissingParams
	}
	for _, c := range channels {
		for _, nick := range nicks {
			b.setBan(c, nick, false)
		}
	}
	return nil
}

func cmdAdminKickban(b *Bot, inv *Invocation) error {
	channels, params, err := b.splitChannels(inv.Params)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return directory.ErrMissingParams
	}
	for _, c := range channels {
		b.setBan(c, params[0], true)
		b.kickFrom(c, inv.User.Nick, params[0], strings.Join(params[1:], " "))
	}
	return nil
}

func cmdAdminLogs(b *Bot, inv *Invocation) error {
	nicks, count := splitLogParams(inv.Params)
	entries, err := b.collectLogs("", nicks)
	if err != nil {
		return err
	}
	b.renderLogs(inv, entries, count, true)
	return nil
}

// permissionPath normalizes and validates the command path of a
// permission grant. Grants only make sense for admin commands, so a
// missing leading "admin" is assumed.
func (b *Bot) permissionPath(params []string) (string, error) {
	if params[0] != "admin" {
		params = append([]string{"admin"}, params...)
	}
	path := strings.Join(params, " ")
	if _, ok := b.commands[path]; !ok {
		return "", directory.CommandNotFoundError{Command: path}
	}
	return path, nil
}

func cmdAdminPermissionAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	u, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	master := b.master(u)
	path, err := b.permissionPath(inv.Params[1:])
	if err != nil {
		return err
	}
	for _, allowed := range master.AllowedAdminCommands {
		if allowed == path {
			inv.reply(b, fmt.Sprintf("%s was already allowed to run the command %q", u.Nick, path))
			return nil
		}
	}
	master.AllowedAdminCommands = append(master.AllowedAdminCommands, path)
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("%s is now allowed to run the command %q", u.Nick, path))
	return nil
}

func cmdAdminPermissionRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	u, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	master := b.master(u)
	path, err := b.permissionPath(inv.Params[1:])
	if err != nil {
		return err
	}
	for i, allowed := range master.AllowedAdminCommands {
		if allowed == path {
			master.AllowedAdminCommands = append(master.AllowedAdminCommands[:i], master.AllowedAdminCommands[i+1:]...)
			b.dir.MarkDirty()
			inv.reply(b, fmt.Sprintf("%s is no longer allowed to run the command %q", u.Nick, path))
			return nil
		}
	}
	inv.reply(b, fmt.Sprintf("%s was already not allowed to run the command %q", u.Nick, path))
	return nil
}

func cmdAdminQuit(b *Bot, inv *Invocation) error {
	reason := strings.Join(inv.Params, " ")
	if reason == "" {
		reason = fmt.Sprintf("%s told me to quit. Goodbye.", inv.User.Nick)
	}
	b.reconnect = false
	b.tr.Quit(reason)
	return nil
}

func cmdAdminReconnect(b *Bot, inv *Invocation) error {
	reason := strings.Join(inv.Params, " ")
	if reason == "" {
		reason = "Reconnecting, back in a moment."
	}
	b.reconnect = true
	b.tr.Quit(reason)
	return nil
}

func cmdAdminSetGlobalMOTD(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	b.dir.Settings().GlobalMOTD = strings.Join(inv.Params, " ")
	b.dir.MarkDirty()
	inv.reply(b, "Global MOTD set.")
	// Everyone gets to see the new text.
	for _, u := range b.dir.AllUsers() {
		if u.MOTDRead {
			b.Dispatch("unset motdread", u, Recipient{}, true)
		}
	}
	return nil
}

func cmdAdminUnsetGlobalMOTD(b *Bot, inv *Invocation) error {
	b.dir.Settings().GlobalMOTD = ""
	b.dir.MarkDirty()
	inv.reply(b, "Global MOTD disabled.")
	return nil
}

func cmdAdminSetMainDisabled(b *Bot, inv *Invocation) error {
	s := b.dir.Settings()
	if s.MainDisabled {
		inv.reply(b, "Main channels are already disabled.")
		return nil
	}
	s.MainDisabled = true
	b.dir.MarkDirty()
	inv.reply(b, "Main channels disabled.")
	b.UpdateAllRules(true)
	return nil
}

func cmdAdminUnsetMainDisabled(b *Bot, inv *Invocation) error {
	s := b.dir.Settings()
	if !s.MainDisabled {
		inv.reply(b, "Main channels are already enabled.")
		return nil
	}
	s.MainDisabled = false
	b.dir.MarkDirty()
	inv.reply(b, "Main channels enabled.")
	b.UpdateAllRules(true)
	return nil
}

func cmdAdminToggleEnable(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	path := strings.Join(inv.Params, " ")
	s := b.dir.Settings()
	for i, d := range s.DisabledCommands {
		if d == path {
			s.DisabledCommands = append(s.DisabledCommands[:i], s.DisabledCommands[i+1:]...)
			b.dir.MarkDirty()
			inv.reply(b, fmt.Sprintf("Command %q is no longer disabled.", path))
			return nil
		}
	}
	inv.reply(b, fmt.Sprintf("Command %q has not been disabled.", path))
	return nil
}

func cmdAdminToggleDisable(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	path := strings.Join(inv.Params, " ")
	if _, ok := b.commands[path]; !ok {
		return directory.CommandNotFoundError{Command: path}
	}
	s := b.dir.Settings()
	if s.CommandDisabled(path) {
		inv.reply(b, fmt.Sprintf("Command %q and all its subcommands were already disabled.", path))
		return nil
	}
	s.DisabledCommands = append(s.DisabledCommands, path)
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("Command %q and all its subcommands are now disabled.", path))
	return nil
}

func cmdAdminToggleList(b *Bot, inv *Invocation) error {
	disabled := b.dir.Settings().DisabledCommands
	if len(disabled) == 0 {
		inv.reply(b, "No commands have been disabled.")
		return nil
	}
	quoted := make([]string, 0, len(disabled))
	for _, d := range disabled {
		quoted = append(quoted, fmt.Sprintf("%q", d))
	}
	sort.Strings(quoted)
	inv.reply(b, fmt.Sprintf("The following commands are disabled: %s.",
		helpers.JoinAnd(", ", " and ", quoted)))
	return nil
}

func cmdAdminTopicAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 3); err != nil {
		return err
	}
	level, err := strconv.Atoi(inv.Params[1])
	if err != nil {
		return directory.BadValueError{Value: inv.Params[1]}
	}
	t := b.dir.GetTopic(inv.Params[0])
	t.Descriptions[level] = strings.Join(inv.Params[2:], " ")
	b.dir.MarkDirty()
	inv.reply(b, "It is done.")
	b.UpdateAllRules(true)
	return nil
}

func cmdAdminTopicRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	if len(inv.Params) > 1 {
		level, err := strconv.Atoi(inv.Params[1])
		if err != nil {
			return directory.BadValueError{Value: inv.Params[1]}
		}
		delete(t.Descriptions, level)
		delete(t.Words, level)
	} else {
		b.dir.RemoveTopic(t)
	}
	b.dir.MarkDirty()
	inv.reply(b, "Topic removed.")
	b.UpdateAllRules(true)
	return nil
}

func cmdAdminTopicWordAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 3); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	level, err := strconv.Atoi(inv.Params[1])
	if err != nil {
		return directory.BadValueError{Value: inv.Params[1]}
	}
	for _, word := range inv.Params[2:] {
		t.AddWord(level, b.st.Stem(word))
	}
	b.dir.MarkDirty()
	inv.reply(b, "Words added")
	return nil
}

func cmdAdminTopicWordRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 3); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	level, err := strconv.Atoi(inv.Params[1])
	if err != nil {
		return directory.BadValueError{Value: inv.Params[1]}
	}
	for _, word := range inv.Params[2:] {
		t.RemoveWord(level, b.st.Stem(word))
	}
	b.dir.MarkDirty()
	inv.reply(b, "Words removed")
	return nil
}

func cmdAdminTopicWordList(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	if len(t.Words) == 0 {
		inv.reply(b, fmt.Sprintf("%s has no trigger words set.", t.Name))
		return nil
	}
	levels := make([]int, 0, len(t.Words))
	for lvl := range t.Words {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	for _, lvl := range levels {
		words := make([]string, 0, len(t.Words[lvl]))
		for w := range t.Words[lvl] {
			words = append(words, w)
		}
		sort.Strings(words)
		inv.reply(b, fmt.Sprintf("Level %d: %s", lvl, strings.Join(words, ", ")))
	}
	return nil
}

// supersedesTransitively reports whether from reaches to by following
// supersede edges. Used to keep the supersede graph acyclic.
func (b *Bot) supersedesTransitively(from *directory.Topic, to string) bool {
	seen := make(map[string]struct{})
	stack := []*directory.Topic{from}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		for _, name := range t.Supersedes {
			if name == to {
				return true
			}
			if next, ok := b.dir.LookupTopic(name); ok {
				stack = append(stack, next)
			}
		}
	}
	return false
}

func cmdAdminSupersedeAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	for _, name := range inv.Params[1:] {
		other, err := b.dir.FindTopic(name)
		if err != nil {
			return err
		}
		if other.Name == t.Name || b.supersedesTransitively(other, t.Name) {
			return directory.NewUserError(fmt.Sprintf("Topic %q cannot be superseded by %q, that would create a cycle.", other.Name, t.Name))
		}
		t.AddSupersede(other.Name)
	}
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("Requested topic(s) will now be superseded by %s.", t.Name))
	b.UpdateAllRules(true)
	return nil
}

func cmdAdminSupersedeRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	for _, name := range inv.Params[1:] {
		other, err := b.dir.FindTopic(name)
		if err != nil {
			return err
		}
		t.RemoveSupersede(other.Name)
	}
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("Requested topic(s) will no longer be superseded by %s.", t.Name))
	b.UpdateAllRules(true)
	return nil
}

func cmdAdminSupersedeList(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	t, err := b.dir.FindTopic(inv.Params[0])
	if err != nil {
		return err
	}
	if len(t.Supersedes) == 0 {
		inv.reply(b, fmt.Sprintf("%s does not supersede any topics.", t.Name))
		return nil
	}
	inv.reply(b, fmt.Sprintf("%s supersedes the following topics: %s",
		t.Name, helpers.JoinAnd(", ", " and ", t.Supersedes)))
	return nil
}

func cmdAdminUser(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	b.Dispatch(strings.Join(inv.Params[1:], " "), target, ToUser(inv.User), true)
	return nil
}

func cmdAdminWarn(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	b.warnUser(target, "", inv.User.Nick, strings.Join(inv.Params[1:], " "))
	return nil
}

func cmdAdminWarningsList(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	verbose := len(inv.Params) > 1 && strings.EqualFold(inv.Params[1], "verbose")
	b.listWarnings(inv, target, "", verbose)
	return nil
}

func cmdAdminWarningsReset(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	b.master(target).Warnings = nil
	b.dir.MarkDirty()
	inv.reply(b, "Warnings reset.")
	return nil
}

func cmdAdminWipe(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	master := b.master(target)
	master.TriggerWords = make(map[string]struct{})
	master.Topics = make(map[string]int)
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("All data for %s are gone. I hope it's what you wanted.", target.Nick))
	b.UpdateAllRules(true)
	return nil
}
