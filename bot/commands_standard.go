package bot

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"triggerbot/directory"
	"triggerbot/helpers"
)

func (b *Bot) registerStandardCommands() {
	b.register(&command{
		path:       "admins",
		help:       "Lists the bot admins that are currently online.\nadmins",
		toggleable: true,
		fn:         cmdAdmins,
	})
	b.register(&command{
		path:       "change",
		help:       "Anonymously request a topic change.\nchange [<channel>]",
		toggleable: true,
		fn:         cmdChange,
	})
	b.register(&command{
		path: "rules",
		help: "Lists the current rules.\n" +
			"The rules change automatically according to the trigger topics of the people present. Use this command if you are ever unsure about the current rules.\n" +
			"rules [<channel>]",
		toggleable: true,
		fn:         cmdRules,
	})
	b.register(&command{
		path:       "names",
		help:       "Get a list of users in channels.\nnames",
		toggleable: true,
		fn:         cmdNames,
	})
	b.register(&command{
		path:       "seen",
		help:       "Get info on when the bot last saw a specific person.\nseen <nickname>",
		toggleable: true,
		fn:         cmdSeen,
	})
	b.register(&command{
		path: "source",
		help: "Display a link to the bot's source code.\nsource",
		fn:   cmdSource,
	})
	b.register(&command{
		path:       "status",
		help:       "Check the status of an account option.\nstatus <option>",
		toggleable: true,
		fn:         cmdStatus,
	})
	b.register(&command{
		path:       "whois",
		help:       "Retrieve information about an user.\nwhois <nick>",
		toggleable: true,
		fn:         cmdWhois,
	})
	b.register(&command{
		path:       "help",
		help:       "Lists the available commands.\nhelp",
		toggleable: true,
		fn:         cmdHelp,
	})
	b.register(&command{
		path:       "tutorial",
		help:       "Take a tutorial.\ntutorial [<step>]",
		toggleable: true,
		fn:         cmdTutorial,
	})
	b.register(&command{
		path: "hug",
		help: "Gives someone a hug!\nhug",
		fn:   cmdHug,
	})
	b.register(&command{
		path: "panic",
		help: "Ask if someone is available to comfort you.\npanic",
		fn:   cmdPanic,
	})
	b.register(&command{
		path: "helped",
		help: "Tell the bot you're being helped.\nhelped",
		fn:   cmdHelped,
	})
	b.register(&command{
		path: "permission",
		help: "Lists user permissions.\n" +
			"permission - List which admin commands you can execute.\n" +
			"permission <nick> - Lists the admin commands nick can execute.",
		toggleable: true,
		fn:         cmdPermission,
	})
	b.register(&command{
		path: "claimadmin",
		help: "Claim administrative powers if no admin has been registered yet.\nclaimadmin",
		fn:   cmdClaimAdmin,
	})
}

func adminLabel(u *directory.User) string {
	switch u.Admin {
	case directory.TierHead:
		return "head admin"
	case directory.TierFull:
		return "admin"
	}
	return "channel admin"
}

func cmdAdmins(b *Bot, inv *Invocation) error {
	isRelevant := func(u *directory.User) bool {
		if u.IsAdmin() {
			return true
		}
		return inv.Channel != nil && inv.Channel.IsChannelAdmin(u)
	}

	online := make(map[string]struct{})
	for _, c := range b.dir.AllChannels() {
		for _, member := range c.Members() {
			if !member.Away {
				online[member.Nick] = struct{}{}
			}
		}
	}

	var available, unavailable []string
	for _, u := range b.dir.AllUsers() {
		master := b.master(u)
		if !isRelevant(master) {
			continue
		}
		entry := fmt.Sprintf("%s (%s)", u.Nick, adminLabel(master))
		if _, ok := online[u.Nick]; ok {
			available = append(available, entry)
		} else if u == master {
			unavailable = append(unavailable, entry)
		}
	}

	if len(available) > 0 {
		inv.reply(b, "The following people are currently available: "+strings.Join(available, ", "))
	} else {
		inv.reply(b, "Nobody is currently available.")
	}
	if len(unavailable) > 0 {
		inv.reply(b, "The following people are currently unavailable: "+strings.Join(unavailable, ", "))
	}
	return nil
}

func cmdChange(b *Bot, inv *Invocation) error {
	var c *directory.Channel
	if len(inv.Params) > 0 {
		name := strings.ToLower(inv.Params[0])
		if !helpers.IsChannelName(name) {
			name = "#" + name
		}
		c = b.dir.GetChannel(name)
	} else {
		var err error
		if c, err = room(inv); err != nil {
			inv.reply(b, "Please specify a channel to request a topic change for.")
			return nil
		}
	}
	message := "Someone is feeling uncomfortable with this discussion. Could we talk about something else?"
	b.tr.Message(c.Name, message)
	b.RelaySafe(message, c, nil, StyleChat)
	if base, ok := b.dir.LookupChannel(c.Base()); ok {
		b.notifyAdmins(base, fmt.Sprintf("%s issued !change for %s. Please ensure everyone is sticking to the rules.", inv.User.Nick, c.Name))
	}
	return nil
}

func cmdRules(b *Bot, inv *Invocation) error {
	var c *directory.Channel
	if len(inv.Params) > 0 {
		name := strings.ToLower(inv.Params[0])
		if !helpers.IsChannelName(name) {
			name = "#" + name
		}
		c = b.dir.GetChannel(name)
	} else {
		var err error
		if c, err = room(inv); err != nil {
			inv.reply(b, "Please specify a channel to see the rules for.")
			return nil
		}
	}
	b.reportRules(c, inv.ReplyTo, inv.User, true)
	return nil
}

func cmdNames(b *Bot, inv *Invocation) error {
	var c *directory.Channel
	if len(inv.Params) > 0 {
		name := strings.ToLower(inv.Params[0])
		if !helpers.IsChannelName(name) {
			name = "#" + name
		}
		c = b.dir.GetChannel(name)
	} else {
		var err error
		if c, err = room(inv); err != nil {
			inv.reply(b, "Please specify a channel to see the users for.")
			return nil
		}
	}
	base := c.Base()
	seen := make(map[string]struct{})
	var nicks []string
	for _, check := range b.dir.AllChannels() {
		if check.Base() != base || check.HasMode(directory.ModeSilent) {
			continue
		}
		for _, member := range check.Members() {
			if b.isService(member.Nick) {
				continue
			}
			if _, dup := seen[member.Nick]; !dup {
				seen[member.Nick] = struct{}{}
				nicks = append(nicks, member.Nick)
			}
		}
	}
	sort.Strings(nicks)
	b.send(inv.ReplyTo, nil, fmt.Sprintf("Nicks %s: [%s]", inv.ReplyTo.String(), strings.Join(nicks, " ")))
	return nil
}

func cmdSeen(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	nick := inv.Params[0]
	if strings.EqualFold(nick, b.nick) {
		inv.reply(b, fmt.Sprintf("I have last seen %s now, forever ago and forever in the future.", nick))
		return nil
	}
	u, err := b.dir.FindUser(nick)
	if err != nil {
		return err
	}
	inv.reply(b, fmt.Sprintf("I have last seen %s %s.", nick, helpers.Ago(b.master(u).Seen)))
	return nil
}

func cmdSource(b *Bot, inv *Invocation) error {
	inv.reply(b, fmt.Sprintf("%s's source code is available on %s", b.nick, b.sourceURL()))
	return nil
}

func cmdStatus(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	option := strings.ToLower(inv.Params[0])
	options := map[string]bool{
		"awaycheck":     master.AwayCheck,
		"autosilence":   master.AutoSilence,
		"autologout":    master.AutoLogout,
		"autopurge":     master.AutoPurge,
		"hideown":       master.HideOwn,
		"listenmode":    master.ListenMode,
		"motdread":      master.MOTDRead,
		"nickservlogin": master.NickServLogin,
		"channel":       master.HasSafeRooms,
		"password":      master.Protected(),
	}
	set, ok := options[option]
	switch {
	case !ok:
		inv.reply(b, fmt.Sprintf("Sorry, but I could not find the option %s.", option))
	case set:
		inv.reply(b, fmt.Sprintf("The option %s is currently set.", option))
	default:
		inv.reply(b, fmt.Sprintf("The option %s is currently unset.", option))
	}
	return nil
}

func cmdWhois(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	u, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	master := b.master(u)
	inv.reply(b, fmt.Sprintf("%s is a %s user", u.Nick, b.nick))
	if u != master {
		inv.reply(b, fmt.Sprintf("%s is an alt of %s", u.Nick, master.Nick))
	} else if len(u.Alts) > 0 {
		inv.reply(b, fmt.Sprintf("%s is also known as %s", u.Nick, helpers.JoinAnd(", ", " and ", b.nicknames(u.Alts))))
	}
	if master.IsAdmin() {
		kind := "an"
		if master.IsHeadAdmin() {
			kind = "the head"
		}
		inv.reply(b, fmt.Sprintf("%s is %s administrator", u.Nick, kind))
	}
	var adminOf []string
	for _, c := range b.dir.AllChannels() {
		if c.IsChannelAdmin(master) {
			adminOf = append(adminOf, c.Name)
		}
	}
	if len(adminOf) > 0 {
		inv.reply(b, fmt.Sprintf("%s is a channel administrator on %s", u.Nick, helpers.JoinAnd(", ", " and ", adminOf)))
	}
	return nil
}

func cmdHelp(b *Bot, inv *Invocation) error {
	settings := b.dir.Settings()
	path := strings.ToLower(strings.Join(inv.Params, " "))

	subDoc := func(parent string) []string {
		var doc []string
		for _, sub := range b.subcommands(parent) {
			full := sub
			if parent != "" {
				full = parent + " " + sub
			}
			if settings.CommandDisabled(full) {
				continue
			}
			description := "(no description)"
			if c := b.commands[full]; c != nil && c.help != "" {
				description = strings.SplitN(c.help, "\n", 2)[0]
			}
			doc = append(doc, fmt.Sprintf("    %s - %s", sub, description))
		}
		return doc
	}

	var lines []string
	if path == "" {
		lines = append(lines, "The following commands are available:")
		lines = append(lines, subDoc("")...)
		lines = append(lines, "Use 'help <command>' to show information about a particular command.")
	} else {
		c, ok := b.commands[path]
		if !ok || settings.CommandDisabled(path) {
			return directory.CommandNotFoundError{Command: path}
		}
		lines = append(lines, strings.Split(path+" - "+c.help, "\n")...)
		if doc := subDoc(path); len(doc) > 0 {
			lines = append(lines, fmt.Sprintf("'%s' has the following sub-commands:", path))
			lines = append(lines, doc...)
			lines = append(lines, fmt.Sprintf("Use 'help %s <sub-command>' for more information about a particular sub-command.", path))
		}
	}
	for _, line := range lines {
		b.send(ToUser(inv.User), nil, line)
	}
	return nil
}

var hugTemplates = []string{
	"slowly and softly puts its arms around %s and hugs them.",
	"glomps %s.",
	"wraps %s in bot arms and squeezes gently.",
	"cuddles %s like a plushie.",
}

func cmdHug(b *Bot, inv *Invocation) error {
	huggee := inv.User.Nick
	if len(inv.Params) > 0 {
		huggee = strings.Join(inv.Params, " ")
		if strings.EqualFold(huggee, "me") {
			huggee = inv.User.Nick
		}
	}
	b.tr.Action(inv.ReplyTo.String(), fmt.Sprintf(hugTemplates[rand.Intn(len(hugTemplates))], huggee))
	return nil
}

func cmdPanic(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	if len(master.Friends) == 0 {
		b.panicEscalate(inv.User, inv.ReplyTo)
		return nil
	}

	notified := make(map[string]struct{})
	for _, c := range b.dir.AllChannels() {
		for _, member := range c.Members() {
			if !directory.HasID(master.Friends, b.master(member).ID) {
				continue
			}
			if _, done := notified[member.Nick]; done {
				continue
			}
			notified[member.Nick] = struct{}{}
			b.send(ToUser(member), nil, fmt.Sprintf("%s isn't feeling so well and would like you to comfort them.", inv.User.Nick))
			b.send(ToUser(member), nil, fmt.Sprintf("If you can hear them out, please type '/query %s' to start a private conversation with them.", inv.User.Nick))
		}
	}
	if len(notified) == 0 {
		b.panicEscalate(inv.User, inv.ReplyTo)
		return nil
	}

	inv.reply(b, fmt.Sprintf("Please type '!helped' if you're being helped. If nobody is there to help you in 2 minutes, I will search for more help. Everything will be fine, %s.", inv.User.Nick))
	nick := inv.User.Nick
	replyTo := inv.ReplyTo
	b.After(2*time.Minute, func() {
		u, ok := b.dir.LookupUser(nick)
		if !ok || b.master(u).Helped {
			return
		}
		b.panicEscalate(u, replyTo)
	})
	return nil
}

// panicEscalate widens the search for help to every channel.
func (b *Bot) panicEscalate(u *directory.User, replyTo Recipient) {
	if b.master(u).Helped {
		return
	}
	b.send(replyTo, u, fmt.Sprintf("I'm searching for more help for you. Please try to hold on, %s.", u.Nick))
	for _, c := range b.dir.AllChannels() {
		b.send(ToChannel(c), nil, fmt.Sprintf("%s isn't feeling so well and would like someone to comfort them.", u.Nick))
		b.send(ToChannel(c), nil, fmt.Sprintf("If you can hear them out, please type '/query %s' to start a private conversation with them.", u.Nick))
	}
}

func cmdHelped(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	master.Helped = true
	inv.reply(b, "I'm glad you're being helped. Please, feel better soon!")
	nick := master.Nick
	b.After(2*time.Minute, func() {
		if u, ok := b.dir.LookupUser(nick); ok {
			b.master(u).Helped = false
		}
	})
	return nil
}

func cmdPermission(b *Bot, inv *Invocation) error {
	queried := b.master(inv.User)
	if len(inv.Params) > 0 {
		u, err := b.dir.FindUser(inv.Params[0])
		if err != nil {
			return err
		}
		queried = u
	}
	switch {
	case queried.IsAdmin():
		inv.reply(b, fmt.Sprintf("%s can execute all admin commands.", queried.Nick))
	case len(queried.AllowedAdminCommands) > 0:
		quoted := make([]string, 0, len(queried.AllowedAdminCommands))
		for _, path := range queried.AllowedAdminCommands {
			quoted = append(quoted, strconv.Quote(path))
		}
		inv.reply(b, fmt.Sprintf("%s can execute the following admin commands: %s.",
			queried.Nick, helpers.JoinAnd(", ", " and ", quoted)))
	default:
		inv.reply(b, fmt.Sprintf("%s can not execute any admin commands.", queried.Nick))
	}
	return nil
}

func cmdClaimAdmin(b *Bot, inv *Invocation) error {
	if _, exists := b.dir.HeadAdmin(); exists {
		inv.reply(b, "A head admin already exists. Therefore, you cannot claim administrative power.")
		return nil
	}
	b.master(inv.User).Admin = directory.TierHead
	b.dir.MarkDirty()
	inv.reply(b, "You have claimed administrative powers.")
	return nil
}

var tutorialSteps = [][]string{
	1: {
		"%BOT% allows you to define your triggers by defining trigger topics and trigger words. We will start off by explaining how to use trigger topics.",
		"The trigger topic system allows you to set one or more trigger topics, that is, one or more topics you are sensitive to and which can trigger you.",
		"To get a list of trigger topics you can choose from, use the 'topic info' command. To get more information about a certain trigger topic, use the 'topic info' command, followed by a topic.",
		"For example, if there would be a topic named 'example', you could get more info about the levels of this topic by typing 'topic info example'.",
		"The list which is shown will list a level and a description. Please note that a higher level means a higher sensitivity to a specific topic.",
		"Please try to get used to the 'topic info' command. If you feel that you are ready to add actual trigger topics to your profile, please type 'tutorial 2' to continue.",
	},
	2: {
		"Good, time for part 2!",
		"Adding a trigger topic to your profile is fairly easy. First, use 'topic info' to decide which topic and which level you want to add.",
		"Now, say you want to add level 2 of 'example' to your personal trigger topic list. All you have to do is type 'topic add example 2'.",
		"The 'topic add' command is also used to change the level of a trigger topic already in your list. If you, for example, want to change your sensitivity level for the topic 'example' to 1, you would type 'topic add example 1'.",
		"Getting rid of a trigger topic is possible using the 'topic remove' command. If you feel strong enough to take discussions about 'example', just type 'topic remove example'.",
		"You can have as many trigger topics in your personal list as you want, so do not feel afraid to add as much as you feel is necessary.",
		"Whenever you join a channel, the rules will be updated to disallow discussions about subjects in your trigger topic list.",
		"If you think you are ready to learn about trigger words, please type 'tutorial 3'.",
	},
	3: {
		"You're a fast learner, cool!",
		"Trigger words are words which you know make you feel uncomfortable and have a tendency to trigger you.",
		"Adding and removing trigger words goes similar to adding and removing a trigger topic, with the exceptions that trigger words have no level and can be any word you want. There is no list limiting your choices.",
		"If, for example, the word 'meow' makes you feel uncomfortable, you can add it to your personal trigger word list by typing 'word add meow'.",
		"Please note that you do not have to add variations of a trigger word, as %BOT% contains support for so-called 'stemming', which means that it will recognise words such as 'meowing' to be the same as 'meow'.",
		"To remove a trigger word from your list, type 'word remove', followed by the word you want to remove.",
		"It is possible to add or remove multiple trigger words from your list at once. In case you would want to add 'meow', 'woof' and 'bark', you would type 'word add meow woof bark'.",
		"Trigger words are useful because they will warn someone if they use a word that may trigger you, teaching them to avoid the usage of certain words.",
		"If you are ready to learn about account grouping, please type 'tutorial 4'.",
	},
	4: {
		"In our IRC life, we often use more than one nickname. It would be quite inconvenient if we would have to redo everything for every nickname we use. Therefore, %BOT% supports a mechanism we call 'grouping'.",
		"Grouping, as you may expect, groups one or more nicknames together. The idea behind grouping is that you choose a 'main' nickname, and group your alternative nicknames with the main one.",
		"To group, switch to one of your alternative nicknames and type 'group add', followed by your 'main' nickname. For example, if your main nickname is cutefox, you would type 'group add cutefox' using all of your alternative nicknames.",
		"After nicknames are grouped, you may execute a %BOT% command from any of your nicknames, and they will be updated for all of your nicknames.",
		"To remove an alternative nickname from a group, switch to this nickname and run 'group remove'. Please note that, if you run 'group remove' from your main nickname, %BOT% will ungroup all your alternative nicknames as well.",
		"Please note that, after ungrouping a nickname returns to the state it was in before it was grouped.",
		"You're making great progress with the tutorial. If you're ready to learn about the friend list system, please type 'tutorial 5'.",
	},
	5: {
		"Sometimes, we end up feeling quite terrible. Either we end up panicky, or just quite sad. For that case, we have the 'panic' function. The panic function, when executed, will search for someone who can help you.",
		"However, most of us would have priorities. We trust some people more than others, and we would like to be helped by those we trust, whenever possible. For that, we have the friend list feature.",
		"Whenever you use the panic feature, %BOT% will first look for people on your friend list and if they are unavailable, look for further help.",
		"To add someone to your friend list, type 'friend add', followed by the nickname of this person. Removing a friend is similar, just type 'friend remove', followed by the nickname of this person.",
		"If you're ready to learn about checking profile information, please type 'tutorial 6'.",
	},
	6: {
		"With all this modifying of our profiles, we sometimes get confused. That's okay, though, because checking profile information is generally very easy.",
		"First, we must think of what we want to get info about. Trigger topics? Trigger words? Group info? Friend info?",
		"Once we've decided what we want to check, we use the command for that group, followed by the word 'list'.",
		"For example, to check what trigger topics you have, you type 'topic list'. 'word list', 'group list' and 'friend list' are similar examples.",
		"You can also get the information about someone else. In that case, just type the command followed by their nickname. As an example, to get cutefox's friendlist, you would type 'friend list cutefox'.",
		"If you're ready to learn about profile settings, please type 'tutorial 7'.",
	},
	7: {
		"Each profile has settings. Most settings can be turned on and off, and others take a specific value.",
		"To get a list of settings you can set, use the 'set' command.",
		"To enable a setting, type 'set', followed by the setting name. For some settings, you can set a specific value. For example, to set your password to cookies, type 'set password cookies'.",
		"To disable a setting, type 'unset', followed by the setting name.",
		"To check if an option is set or unset, type 'status', followed by the setting names.",
		"Congratulations, this concludes the tutorial.",
		"To learn more about specific commands, use the 'help' command. Feel free to ask people for help if you get stuck!",
		"Thank you for taking the time to go through this tutorial. I wish you a trigger-free time!",
	},
}

func cmdTutorial(b *Bot, inv *Invocation) error {
	if len(inv.Params) == 0 {
		b.send(ToUser(inv.User), nil, fmt.Sprintf("Welcome to the tutorial. This tutorial will teach you everything you need to know to use %s properly.", b.nick))
		b.send(ToUser(inv.User), nil, fmt.Sprintf("To start learning more about %s, type 'tutorial 1'.", b.nick))
		return nil
	}
	step, err := strconv.Atoi(inv.Params[0])
	if err != nil {
		inv.reply(b, "I'm sorry, but you need to enter a number.")
		return nil
	}
	if step < 1 || step >= len(tutorialSteps) {
		inv.reply(b, fmt.Sprintf("I'm sorry, but I could not find a tutorial for that number. Currently, the tutorial has %d steps.", len(tutorialSteps)-1))
		return nil
	}
	for _, line := range tutorialSteps[step] {
		b.send(ToUser(inv.User), nil, strings.ReplaceAll(line, "%BOT%", b.nick))
	}
	return nil
}
