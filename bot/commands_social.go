package bot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"triggerbot/auth"
	"triggerbot/directory"
	"triggerbot/helpers"
	"triggerbot/safety"
)

func (b *Bot) registerSocialCommands() {
	b.register(&command{
		path: "friend",
		help: "Manage your friends.\n" +
			"When someone on your friend list joins, you will get a notification. They will also be the first to be alerted by the 'panic' feature.",
		toggleable: true,
		fn:         showSub,
	})
	b.register(&command{
		path:       "friend add",
		help:       "Add one or more user(s) to your friend list.\nfriend add <user>",
		protected:  true,
		toggleable: true,
		fn:         cmdFriendAdd,
	})
	b.register(&command{
		path:       "friend remove",
		help:       "Remove one or more user(s) from your friend list.\nfriend remove <user>",
		protected:  true,
		toggleable: true,
		fn:         cmdFriendRemove,
	})
	b.register(&command{
		path:       "friend list",
		help:       "List your own or someone else's friend list.\nfriend list [<user>]",
		toggleable: true,
		fn:         cmdFriendList,
	})

	b.register(&command{path: "ignore", help: "Manage your ignore list.", fn: showSub})
	b.register(&command{
		path: "ignore add",
		help: "Add one or more users to your ignore list.\nignore add <user>",
		fn:   cmdIgnoreAdd,
	})
	b.register(&command{
		path: "ignore remove",
		help: "Remove one or more users from your ignore list.\nignore remove <user>",
		fn:   cmdIgnoreRemove,
	})
	b.register(&command{
		path: "ignore list",
		help: "List your ignore list.\nignore list",
		fn:   cmdIgnoreList,
	})

	b.register(&command{
		path: "trust",
		help: "Manage your trust list.\n" +
			"People on your trust list have complete control over your account.",
		toggleable: true,
		fn:         showSub,
	})
	b.register(&command{
		path:       "trust add",
		help:       "Add one or more user(s) to your trust list.\ntrust add <user>",
		protected:  true,
		toggleable: true,
		fn:         cmdTrustAdd,
	})
	b.register(&command{
		path:       "trust remove",
		help:       "Remove one or more user(s) from your trust list.\ntrust remove <user>",
		protected:  true,
		toggleable: true,
		fn:         cmdTrustRemove,
	})
	b.register(&command{
		path:       "trust list",
		help:       "List your trust list.\ntrust list",
		protected:  true,
		toggleable: true,
		fn:         cmdTrustList,
	})

	b.register(&command{
		path: "channelallow",
		help: "Manage nicks allowed in your channel.\n" +
			"Nicks on this list will not be kicked from your channel, even if they are not in your alt list.",
		toggleable: true,
		fn:         showSub,
	})
	b.register(&command{
		path:       "channelallow add",
		help:       "Add one or more user(s) to your channelallow list.\nchannelallow add <user>",
		protected:  true,
		toggleable: true,
		fn:         cmdChannelAllowAdd,
	})
	b.register(&command{
		path:       "channelallow remove",
		help:       "Remove one or more user(s) from your channelallow list.\nchannelallow remove <user>",
		protected:  true,
		toggleable: true,
		fn:         cmdChannelAllowRemove,
	})
	b.register(&command{
		path:       "channelallow list",
		help:       "List your channelallow list.\nchannelallow list",
		toggleable: true,
		fn:         cmdChannelAllowList,
	})

	b.register(&command{path: "group", help: "Group usernames together.", toggleable: true, fn: showSub})
	b.register(&command{
		path: "group add",
		help: "Set the main username this account should belong to. A password needs to be specified if the main username is protected.\n" +
			"group add <accountname> <password>",
		protected:  true,
		toggleable: true,
		fn:         cmdGroupAdd,
	})
	b.register(&command{
		path:       "group remove",
		help:       "Remove the alt status from this account.\ngroup remove",
		protected:  true,
		toggleable: true,
		fn:         cmdGroupRemove,
	})
	b.register(&command{
		path:       "group list",
		help:       "List alts and master data.\ngroup list [<accountname>]",
		toggleable: true,
		fn:         cmdGroupList,
	})

	b.register(&command{path: "mail", help: "Manage or send mail.", protected: true, toggleable: true, fn: showSub})
	b.register(&command{
		path: "mail inbox",
		help: "List messages in your inbox.\n" +
			"Filter will take either 'read', 'unread' or 'all'.\n" +
			"mail inbox [<filter>]",
		protected:  true,
		toggleable: true,
		fn:         cmdMailInbox,
	})
	b.register(&command{
		path: "mail mark",
		help: "Mark one or more mails as read or unread.\nmail mark <read/unread> [<id>]",
		fn:   showSub,
	})
	b.register(&command{
		path: "mail mark read",
		help: "Mark one or more mails as read.\n" +
			"By default, all mails are marked as read.\n" +
			"mail mark read [<id>]",
		protected:  true,
		toggleable: true,
		fn:         cmdMailMarkRead,
	})
	b.register(&command{
		path: "mail mark unread",
		help: "Mark one or more mails as unread.\n" +
			"By default, all mails are marked as unread.\n" +
			"mail mark unread [<id>]",
		protected:  true,
		toggleable: true,
		fn:         cmdMailMarkUnread,
	})
	b.register(&command{
		path: "mail read",
		help: "Read a message.\n" +
			"By default, all unread messages are shown.\n" +
			"mail read [<id>]",
		protected:  true,
		toggleable: true,
		fn:         cmdMailRead,
	})
	b.register(&command{
		path: "mail remove",
		help: "Remove a message from your inbox.\n" +
			"The id parameter also takes the value 'all', which purges all messages.\n" +
			"mail remove <id>",
		protected:  true,
		toggleable: true,
		fn:         cmdMailRemove,
	})
	b.register(&command{
		path:       "mail send",
		help:       "Send a mail to an user for when they log in.\nmail send <user> <message>",
		protected:  true,
		toggleable: true,
		fn:         cmdMailSend,
	})

	b.register(&command{
		path: "user",
		help: "Execute commands as another user who has you on their trust list.\n" +
			"user <nickname> <command>",
		protected:  true,
		logged:     true,
		toggleable: true,
		fn:         cmdUser,
	})
}

func cmdFriendAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		target := b.master(u)
		if target.ID == master.ID || directory.HasID(master.Alts, target.ID) {
			continue
		}
		master.Friends = directory.AddID(master.Friends, target.ID)
	}
	inv.reply(b, "The requested users were added to your friend list.")
	b.dir.MarkDirty()
	return nil
}

func cmdFriendRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		if u, ok := b.dir.LookupUser(nick); ok {
			master.Friends = directory.RemoveID(master.Friends, b.master(u).ID)
		}
	}
	inv.reply(b, "The requested users are no longer on your friend list.")
	b.dir.MarkDirty()
	return nil
}

func cmdFriendList(b *Bot, inv *Invocation) error {
	queried := inv.User
	if len(inv.Params) > 0 {
		u, err := b.dir.FindUser(inv.Params[0])
		if err != nil {
			return err
		}
		queried = u
	}
	master := b.master(queried)
	if len(master.Friends) == 0 {
		inv.reply(b, fmt.Sprintf("%s has no friends set.", queried.Nick))
		return nil
	}
	inv.reply(b, fmt.Sprintf("%s has the following friends set: %s.",
		queried.Nick, helpers.JoinAnd(", ", " and ", b.nicknames(master.Friends))))
	return nil
}

func cmdIgnoreAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		ignored := b.master(u)
		master.Ignores = directory.AddID(master.Ignores, ignored.ID)
		ignored.IgnoredBy = directory.AddID(ignored.IgnoredBy, master.ID)
	}
	who := "user was"
	if len(inv.Params) > 1 {
		who = "users were"
	}
	inv.reply(b, fmt.Sprintf("The requested %s added to your ignore list", who))
	b.dir.MarkDirty()
	return nil
}

func cmdIgnoreRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		ignored := b.master(u)
		master.Ignores = directory.RemoveID(master.Ignores, ignored.ID)
		ignored.IgnoredBy = directory.RemoveID(ignored.IgnoredBy, master.ID)
	}
	who := "user was"
	if len(inv.Params) > 1 {
		who = "users were"
	}
	inv.reply(b, fmt.Sprintf("The requested %s removed from your ignore list", who))
	b.dir.MarkDirty()
	return nil
}

func cmdIgnoreList(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	if len(master.Ignores) == 0 {
		inv.reply(b, "Your ignore list is currently empty.")
		return nil
	}
	inv.reply(b, fmt.Sprintf("The following users are on your ignore list: %s",
		strings.Join(b.nicknames(master.Ignores), ", ")))
	return nil
}

func cmdTrustAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		target := b.master(u)
		if target.ID == master.ID || directory.HasID(master.Alts, target.ID) {
			continue
		}
		master.Trusts = directory.AddID(master.Trusts, target.ID)
	}
	inv.reply(b, "The requested users were added to your trust list.")
	b.dir.MarkDirty()
	return nil
}

func cmdTrustRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		if u, ok := b.dir.LookupUser(nick); ok {
			master.Trusts = directory.RemoveID(master.Trusts, b.master(u).ID)
		}
	}
	inv.reply(b, "The requested users are no longer on your trust list.")
	b.dir.MarkDirty()
	return nil
}

func cmdTrustList(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	if len(master.Trusts) == 0 {
		inv.reply(b, "You don't have anyone on your trust list.")
		return nil
	}
	inv.reply(b, fmt.Sprintf("You trust the following users: %s.",
		helpers.JoinAnd(", ", " and ", b.nicknames(master.Trusts))))
	return nil
}

func cmdChannelAllowAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		u, err := b.dir.FindUser(nick)
		if err != nil {
			return err
		}
		target := b.master(u)
		if target.ID == master.ID || directory.HasID(master.Alts, target.ID) {
			continue
		}
		if directory.HasID(master.RoomAllow, target.ID) {
			continue
		}
		master.RoomAllow = directory.AddID(master.RoomAllow, target.ID)
		for _, c := range b.ownedRooms(master) {
			b.tr.SetMode(c.Name, "+I", target.Nick+"!*@*")
		}
	}
	inv.reply(b, "The requested users were added to your channelallow list.")
	b.dir.MarkDirty()
	return nil
}

func cmdChannelAllowRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	for _, nick := range inv.Params {
		u, ok := b.dir.LookupUser(nick)
		if !ok {
			continue
		}
		target := b.master(u)
		if !directory.HasID(master.RoomAllow, target.ID) {
			continue
		}
		master.RoomAllow = directory.RemoveID(master.RoomAllow, target.ID)
		for _, c := range b.ownedRooms(master) {
			b.tr.SetMode(c.Name, "-I", target.Nick+"!*@*")
		}
	}
	inv.reply(b, "The requested users are no longer on your channelallow list.")
	b.dir.MarkDirty()
	return nil
}

func cmdChannelAllowList(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	if len(master.RoomAllow) == 0 {
		inv.reply(b, "You don't allow any additional nicks on your channel.")
		return nil
	}
	inv.reply(b, fmt.Sprintf("You allow the following nicks on your channel: %s.",
		helpers.JoinAnd(", ", " and ", b.nicknames(master.RoomAllow))))
	return nil
}

func cmdGroupAdd(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	u := inv.User
	if target == u {
		inv.reply(b, "You cannot link yourself with yourself.")
		return nil
	}
	if len(u.Alts) > 0 {
		inv.reply(b, "This account already has alts. It cannot become an alt itself.")
		return nil
	}
	if target.IsAlt() {
		inv.reply(b, fmt.Sprintf("%s is already an alt. You can only link an alt to an account which is not an alt itself.", target.Nick))
		return nil
	}
	if directory.HasID(target.Alts, u.ID) {
		inv.reply(b, fmt.Sprintf("This account is already an alt of %s.", target.Nick))
		return nil
	}
	if !inv.Bypass && target.Protected() && !auth.Verify(strings.Join(inv.Params[1:], " "), target.PasswordHash) {
		inv.reply(b, "The account you wanted to group with is password protected, and the password entered did not match.")
		return nil
	}
	if u.Master != uuid.Nil && u.Master != target.ID {
		if old, ok := b.dir.UserByID(u.Master); ok {
			old.Alts = directory.RemoveID(old.Alts, u.ID)
		}
	}
	target.Alts = directory.AddID(target.Alts, u.ID)
	u.Master = target.ID
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("You are now registered as an alt of %s.", target.Nick))
	return nil
}

func cmdGroupRemove(b *Bot, inv *Invocation) error {
	u := inv.User
	if u.IsAlt() {
		if master, ok := b.dir.UserByID(u.Master); ok {
			master.Alts = directory.RemoveID(master.Alts, u.ID)
		}
		u.Master = uuid.Nil
	} else {
		for _, id := range u.Alts {
			if alt, ok := b.dir.UserByID(id); ok {
				alt.Master = uuid.Nil
			}
		}
		u.Alts = nil
	}
	b.dir.MarkDirty()
	inv.reply(b, "This account is no longer grouped.")
	return nil
}

func cmdGroupList(b *Bot, inv *Invocation) error {
	queried := inv.User
	if len(inv.Params) > 0 {
		u, err := b.dir.FindUser(inv.Params[0])
		if err != nil {
			return err
		}
		queried = u
	}
	master := b.master(queried)
	group := b.nicknames(master.Alts)
	for i, nick := range group {
		if nick == queried.Nick {
			group = append(group[:i], group[i+1:]...)
			break
		}
	}
	switch {
	case master != queried && len(group) > 0:
		inv.reply(b, fmt.Sprintf("%s belongs to a group owned by %s, together with %s.",
			queried.Nick, master.Nick, helpers.JoinAnd(", ", " and ", group)))
	case master != queried:
		inv.reply(b, fmt.Sprintf("%s is the only alt of %s.", queried.Nick, master.Nick))
	case len(group) > 0:
		inv.reply(b, fmt.Sprintf("%s is the leader of a group containing %s.",
			queried.Nick, helpers.JoinAnd(", ", " and ", group)))
	default:
		inv.reply(b, fmt.Sprintf("%s is not in any group.", queried.Nick))
	}
	return nil
}

// sortedMail returns the master's mail ordered oldest first, the order
// the 1-based mail ids refer to.
func sortedMail(master *directory.User) []*directory.Mail {
	out := make([]*directory.Mail, len(master.Mail))
	for i := range master.Mail {
		out[i] = &master.Mail[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

func cmdMailInbox(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	mail := sortedMail(master)
	if len(mail) == 0 {
		inv.reply(b, "There are no messages for you.")
		return nil
	}
	filter := ""
	if len(inv.Params) > 0 {
		filter = strings.ToLower(inv.Params[0])
	}

	type row struct {
		id       string
		received string
		sender   string
		read     string
	}
	timeLength, senderLength := len("received"), len("sender")
	var rows []row
	for i, m := range mail {
		switch filter {
		case "", "all":
		case "read":
			if !m.Read {
				continue
			}
		case "unread":
			if m.Read {
				continue
			}
		default:
			continue
		}
		read := "no"
		if m.Read {
			read = "yes"
		}
		r := row{
			id:       fmt.Sprintf("%2d", i+1),
			received: m.When.Format(timeLayout),
			sender:   m.From,
			read:     read,
		}
		if len(r.received) > timeLength {
			timeLength = len(r.received)
		}
		if len(r.sender) > senderLength {
			senderLength = len(r.sender)
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		inv.reply(b, fmt.Sprintf("There are no messages matching your filter: 'only messages marked as %s'.", filter))
		return nil
	}
	inv.reply(b, "Tip: To read a message, type 'mail read', followed by the message id.")
	inv.reply(b, fmt.Sprintf("id | %s | %s | read", center("received", timeLength), center("sender", senderLength)))
	for _, r := range rows {
		inv.reply(b, fmt.Sprintf("%s | %s | %s | %s", r.id, center(r.received, timeLength), center(r.sender, senderLength), r.read))
	}
	return nil
}

func markMail(b *Bot, inv *Invocation, read bool) error {
	master := b.master(inv.User)
	mail := sortedMail(master)
	if len(inv.Params) == 0 {
		for _, m := range mail {
			m.Read = read
		}
	} else {
		for _, param := range inv.Params {
			number, err := strconv.Atoi(param)
			if err != nil {
				inv.reply(b, "When set, this parameter needs to be a number.")
				return nil
			}
			if number < 1 || number > len(mail) {
				return directory.MessageNotFoundError{ID: number}
			}
			mail[number-1].Read = read
		}
	}
	count := "all"
	noun := "messages"
	if len(inv.Params) == 1 {
		noun = "message"
	}
	if len(inv.Params) > 0 {
		count = strconv.Itoa(len(inv.Params))
	}
	state := "read"
	if !read {
		state = "unread"
	}
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("Marked %s %s as %s", count, noun, state))
	return nil
}

func cmdMailMarkRead(b *Bot, inv *Invocation) error {
	return markMail(b, inv, true)
}

func cmdMailMarkUnread(b *Bot, inv *Invocation) error {
	return markMail(b, inv, false)
}

func cmdMailRead(b *Bot, inv *Invocation) error {
	master := b.master(inv.User)
	mail := sortedMail(master)
	if len(inv.Params) > 0 {
		number, err := strconv.Atoi(inv.Params[0])
		if err != nil {
			inv.reply(b, "When set, this parameter needs to be a number.")
			return nil
		}
		if number < 1 || number > len(mail) {
			return directory.MessageNotFoundError{ID: number}
		}
		m := mail[number-1]
		inv.reply(b, fmt.Sprintf("[%d] %s: %s", number, m.From, m.Body))
		m.Read = true
		b.dir.MarkDirty()
		return nil
	}
	if len(mail) == 0 {
		inv.reply(b, "Sorry, I could not find any messages.")
		return nil
	}
	found := false
	for i, m := range mail {
		if m.Read {
			continue
		}
		found = true
		m.Read = true
		inv.reply(b, fmt.Sprintf("[%d] %s: %s", i+1, m.From, m.Body))
	}
	if !found {
		inv.reply(b, "Sorry, I could not find any unread messages.")
		return nil
	}
	b.dir.MarkDirty()
	return nil
}

func cmdMailRemove(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 1); err != nil {
		return err
	}
	master := b.master(inv.User)
	if strings.EqualFold(inv.Params[0], "all") {
		master.Mail = nil
		b.dir.MarkDirty()
		inv.reply(b, "All your mail has been removed.")
		return nil
	}
	number, err := strconv.Atoi(inv.Params[0])
	if err != nil {
		inv.reply(b, "This parameter needs to be a number or the value 'all'.")
		return nil
	}
	mail := sortedMail(master)
	if number < 1 || number > len(mail) {
		return directory.MessageNotFoundError{ID: number}
	}
	victim := mail[number-1]
	for i := range master.Mail {
		if &master.Mail[i] == victim {
			master.Mail = append(master.Mail[:i], master.Mail[i+1:]...)
			break
		}
	}
	b.dir.MarkDirty()
	inv.reply(b, "Message removed.")
	return nil
}

func cmdMailSend(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	u, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	target := b.master(u)
	body := strings.Join(inv.Params[1:], " ")
	msg := safety.Prepare(body, b.st)
	if res := safety.Classify(msg, target, b.dir.AllTopics()); !res.Safe {
		inv.reply(b, fmt.Sprintf("Sorry, but your message to %s was not sent due to it possibly being unsafe", inv.Params[0]))
		return nil
	}
	target.Mail = append(target.Mail, directory.Mail{
		When: time.Now(),
		From: inv.User.Nick,
		Body: body,
	})
	b.dir.MarkDirty()
	inv.reply(b, fmt.Sprintf("Your message to %s was sent succesfully.", inv.Params[0]))

	// Tell them right away if they are around.
	receivers := []*directory.User{target}
	for _, id := range target.Alts {
		if alt, ok := b.dir.UserByID(id); ok {
			receivers = append(receivers, alt)
		}
	}
	for _, receiver := range receivers {
		online := false
		for _, c := range b.dir.AllChannels() {
			if c.HasMember(receiver) {
				online = true
				break
			}
		}
		if online {
			b.send(ToUser(receiver), nil, "You have received a new message. Please check your unread messages using '!mail inbox unread'.")
		}
	}
	return nil
}

func cmdUser(b *Bot, inv *Invocation) error {
	if err := requireParams(inv, 2); err != nil {
		return err
	}
	target, err := b.dir.FindUser(inv.Params[0])
	if err != nil {
		return err
	}
	if !directory.HasID(b.master(target).Trusts, b.master(inv.User).ID) {
		inv.reply(b, fmt.Sprintf("%s does not have you on their trust list.", target.Nick))
		return nil
	}
	b.Dispatch(strings.Join(inv.Params[1:], " "), target, ToUser(inv.User), true)
	return nil
}
