package main

import (
	"strings"

	"github.com/lrstanley/girc"

	"triggerbot/bot"
)

// ircTransport adapts a girc client to the bot's transport interface.
// girc queues outbound lines itself, so every call is fire and forget.
type ircTransport struct {
	c *girc.Client
}

func (t *ircTransport) Message(target, text string) { t.c.Cmd.Message(target, text) }
func (t *ircTransport) Notice(target, text string)  { t.c.Cmd.Notice(target, text) }
func (t *ircTransport) Action(target, text string)  { t.c.Cmd.Action(target, text) }
func (t *ircTransport) Join(channel string)         { t.c.Cmd.Join(channel) }

func (t *ircTransport) Part(channel, reason string) {
	if reason == "" {
		t.c.Cmd.Part(channel)
		return
	}
	t.c.Cmd.PartMessage(channel, reason)
}

func (t *ircTransport) Kick(channel, nick, reason string) { t.c.Cmd.Kick(channel, nick, reason) }

func (t *ircTransport) SetMode(target, modes string, args ...string) {
	t.c.Cmd.Mode(target, modes, args...)
}

func (t *ircTransport) SetTopic(channel, topic string) { t.c.Cmd.Topic(channel, topic) }
func (t *ircTransport) Nick(nick string)               { t.c.Cmd.Nick(nick) }
func (t *ircTransport) Who(target string)              { t.c.Cmd.Who(target) }
func (t *ircTransport) Quit(reason string)             { t.c.Quit(reason) }

// bindHandlers routes girc events onto the bot's event loop. Handlers
// only parse the event and post a closure; all state lives behind the
// loop.
func bindHandlers(c *girc.Client, b *bot.Bot) {
	c.Handlers.Add(girc.CONNECTED, func(c *girc.Client, e girc.Event) {
		b.Post(func() { b.HandleConnected() })
	})

	c.Handlers.Add(girc.DISCONNECTED, func(c *girc.Client, e girc.Event) {
		b.Post(func() { b.HandleDisconnected() })
	})

	c.Handlers.Add(girc.PRIVMSG, func(c *girc.Client, e girc.Event) {
		if e.Source == nil {
			return
		}
		nick := e.Source.Name
		target := e.Params[0]
		if !e.IsFromChannel() {
			target = nick
		}
		if e.IsAction() {
			text := e.StripAction()
			b.Post(func() { b.HandleAction(nick, target, text) })
			return
		}
		text := e.Last()
		b.Post(func() { b.HandleMessage(nick, target, text) })
	})

	c.Handlers.Add(girc.JOIN, func(c *girc.Client, e girc.Event) {
		if e.Source == nil || len(e.Params) == 0 {
			return
		}
		nick := e.Source.Name
		name := e.Params[0]
		if strings.EqualFold(nick, c.GetNick()) {
			b.Post(func() { b.HandleSelfJoin(name) })
			return
		}
		b.Post(func() { b.HandleJoin(nick, name) })
	})

	c.Handlers.Add(girc.PART, func(c *girc.Client, e girc.Event) {
		if e.Source == nil || len(e.Params) == 0 {
			return
		}
		nick := e.Source.Name
		name := e.Params[0]
		if strings.EqualFold(nick, c.GetNick()) {
			return
		}
		b.Post(func() { b.HandlePart(nick, name) })
	})

	c.Handlers.Add(girc.QUIT, func(c *girc.Client, e girc.Event) {
		if e.Source == nil {
			return
		}
		nick := e.Source.Name
		reason := e.Last()
		b.Post(func() { b.HandleQuit(nick, reason) })
	})

	c.Handlers.Add(girc.KICK, func(c *girc.Client, e girc.Event) {
		if e.Source == nil || len(e.Params) < 2 {
			return
		}
		name := e.Params[0]
		kicked := e.Params[1]
		kicker := e.Source.Name
		reason := e.Last()
		b.Post(func() { b.HandleKick(kicked, name, kicker, reason) })
	})

	c.Handlers.Add(girc.NICK, func(c *girc.Client, e girc.Event) {
		if e.Source == nil {
			return
		}
		oldNick := e.Source.Name
		newNick := e.Last()
		if strings.EqualFold(newNick, c.GetNick()) {
			b.Post(func() { b.SetNick(newNick) })
			return
		}
		b.Post(func() { b.HandleRename(oldNick, newNick) })
	})

	c.Handlers.Add(girc.TOPIC, func(c *girc.Client, e girc.Event) {
		if e.Source == nil || len(e.Params) == 0 {
			return
		}
		name := e.Params[0]
		topic := e.Last()
		setter := e.Source.Name
		b.Post(func() { b.HandleTopic(name, topic, setter) })
	})

	// WHO reply: <client> <channel> <ident> <host> <server> <nick> <flags>
	c.Handlers.Add(girc.RPL_WHOREPLY, func(c *girc.Client, e girc.Event) {
		if len(e.Params) < 7 {
			return
		}
		host := e.Params[3]
		nick := e.Params[5]
		flags := e.Params[6]
		b.Post(func() { b.HandleWhoReply(nick, host, flags) })
	})

	c.Handlers.Add(girc.RPL_ENDOFWHO, func(c *girc.Client, e girc.Event) {
		b.Post(func() { b.HandleEndOfWho() })
	})

	// NAMES reply: <client> <symbol> <channel> :<nicks>
	c.Handlers.Add(girc.RPL_NAMREPLY, func(c *girc.Client, e girc.Event) {
		if len(e.Params) < 4 {
			return
		}
		name := e.Params[2]
		nicks := strings.Fields(e.Last())
		b.Post(func() { b.HandleNames(name, nicks) })
	})

	c.Handlers.Add(girc.RPL_ENDOFNAMES, func(c *girc.Client, e girc.Event) {
		if len(e.Params) < 2 {
			return
		}
		name := e.Params[1]
		b.Post(func() { b.HandleEndOfNames(name) })
	})

	// RPL_AWAY arrives when messaging someone who is marked away.
	c.Handlers.Add(girc.RPL_AWAY, func(c *girc.Client, e girc.Event) {
		if len(e.Params) < 2 {
			return
		}
		nick := e.Params[1]
		b.Post(func() { b.HandleAway(nick) })
	})
}
