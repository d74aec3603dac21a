package bot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"triggerbot/directory"
	"triggerbot/helpers"
	"triggerbot/logger"
)

// Handler executes one command. Returning a user-facing error produces
// exactly one reply; handlers validate their parameters before
// mutating anything.
type Handler func(b *Bot, inv *Invocation) error

// Invocation is the context a handler runs with.
type Invocation struct {
	Params []string
	// User is the invoking account, nil for internal dispatches.
	User    *directory.User
	ReplyTo Recipient
	// Channel is the base-channel scope in effect: the explicit
	// `channel #name` override, or the base of the reply target, or
	// nil.
	Channel *directory.Channel
	Bypass  bool
}

// Reply sends text back to the invoker.
func (inv *Invocation) reply(b *Bot, text string) {
	b.send(inv.ReplyTo, inv.User, text)
}

type command struct {
	path string // space-joined lowercase words
	help string

	admin        bool // global admin (or per-user permission grant)
	channelAdmin bool // channel admin; requires a channel scope
	toggleable   bool // may be disabled at runtime
	protected    bool // requires identify when the account has a password
	logged       bool // appended to the invoker's audit log

	fn Handler
}

func (c *command) words() []string { return strings.Split(c.path, " ") }

func (b *Bot) register(c *command) {
	if _, dup := b.commands[c.path]; dup {
		panic("duplicate command " + c.path)
	}
	b.commands[c.path] = c
}

// subcommands returns the immediate child verbs under path, sorted.
func (b *Bot) subcommands(path string) []string {
	prefix := ""
	depth := 0
	if path != "" {
		prefix = path + " "
		depth = len(strings.Split(path, " "))
	}
	var out []string
	for p := range b.commands {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		words := strings.Split(p, " ")
		if len(words) == depth+1 {
			out = append(out, words[depth])
		}
	}
	sort.Strings(out)
	return out
}

// Dispatch resolves and runs a command line. Unambiguous word prefixes
// are expanded against the registered paths, so `ch k` reaches
// `channel kick`. Failures produce exactly one reply to the invoker.
func (b *Bot) Dispatch(line string, user *directory.User, replyTo Recipient, bypass bool) {
	params := strings.Fields(line)
	if len(params) == 0 {
		return
	}

	if err := b.expand(params); err != nil {
		b.reportError(err, user, replyTo)
		return
	}

	// `channel #name ...` names the channel scope explicitly instead
	// of a sub-verb.
	var scope *directory.Channel
	scopeKnown := false
	if len(params) > 1 && params[0] == "channel" && helpers.IsChannelName(strings.ToLower(params[1])) {
		scope = b.dir.GetChannel(helpers.BaseName(strings.ToLower(params[1])))
		params = append(params[:1], params[2:]...)
		scopeKnown = true
	}

	// Greedily consume the deepest registered path.
	path := ""
	for len(params) > 0 {
		next := path
		if next != "" {
			next += " "
		}
		next += strings.ToLower(params[0])
		if _, ok := b.commands[next]; !ok {
			break
		}
		path = next
		params = params[1:]
	}
	if path == "" {
		b.send(replyTo, user, fmt.Sprintf("Sorry, I don't know what you mean by %q. Please use the help command to find out the correct command for what you want to do.", params[0]))
		return
	}

	if !scopeKnown {
		if c, ok := b.dir.LookupChannel(helpers.BaseName(replyTo.String())); ok {
			scope = c
		}
	}

	inv := &Invocation{
		Params:  params,
		User:    user,
		ReplyTo: replyTo,
		Channel: scope,
		Bypass:  bypass,
	}
	if err := b.invoke(b.commands[path], inv); err != nil {
		if errors.Is(err, directory.ErrShowSubcommands) {
			b.send(replyTo, user, "Please use one of the following sub-commands: "+
				helpers.JoinAnd(", ", " or ", b.subcommands(path))+".")
			return
		}
		b.reportError(err, user, replyTo)
	}
}

// invoke applies the middleware pipeline in its one fixed order:
// admin authorization, channel-admin authorization, disabled check,
// authentication, audit log, execution. An authorization or
// authentication failure never reaches the audit log.
func (b *Bot) invoke(c *command, inv *Invocation) error {
	var master *directory.User
	if inv.User != nil {
		master = b.master(inv.User)
	}

	if c.admin && !inv.Bypass {
		if master == nil || (!master.IsAdmin() && !master.MayRunAdminCommand(c.path)) {
			return directory.NewUserError("You are not authorized to use this command.")
		}
	}
	if c.channelAdmin && !inv.Bypass {
		if inv.Channel == nil {
			return directory.NewUserError("This command needs to be executed in-channel, or given the channel name as first parameter. Please run it in either a main or triggersafe channel, or give the channel name.")
		}
		if master == nil || (!inv.Channel.IsChannelAdmin(master) && !master.IsAdmin()) {
			return directory.NewUserError("You are not authorized to use this command.")
		}
	}
	if c.toggleable && b.dir.Settings().CommandDisabled(c.path) {
		return directory.NewUserError("This command has been disabled by an administrator.")
	}
	if c.protected && !inv.Bypass && master != nil && master.Protected() && !inv.User.LoggedIn {
		return directory.ErrNotAuthenticated
	}
	if c.logged && master != nil {
		channel := ""
		if inv.Channel != nil {
			channel = inv.Channel.Name
		}
		master.AddAudit(channel, strings.TrimSpace(c.path+" "+strings.Join(inv.Params, " ")))
		b.dir.MarkDirty()
	}
	return c.fn(b, inv)
}

// expand grows abbreviated words in place against the registered
// paths, failing on genuine ambiguity.
func (b *Bot) expand(params []string) error {
	for i := range params {
		word := strings.ToLower(params[i])
		var candidates []string
		seen := make(map[string]struct{})
		for _, c := range b.commands {
			words := c.words()
			if len(words) <= i {
				continue
			}
			match := true
			for x := 0; x < i; x++ {
				if words[x] != params[x] {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			if _, dup := seen[words[i]]; !dup {
				seen[words[i]] = struct{}{}
				candidates = append(candidates, words[i])
			}
		}
		exact := false
		found := 0
		for _, cand := range candidates {
			if cand == word {
				params[i] = cand
				exact = true
				break
			}
			if strings.HasPrefix(cand, word) {
				params[i] = cand
				found++
			}
		}
		if !exact && found > 1 {
			return directory.AmbiguousCommandError{Position: i, Word: word}
		}
	}
	return nil
}

// reportError translates a handler failure into at most one reply.
// Anything not user-facing is an internal error: logged, event
// abandoned.
func (b *Bot) reportError(err error, user *directory.User, replyTo Recipient) {
	if directory.IsUserError(err) {
		b.send(replyTo, user, err.Error())
		return
	}
	logger.Error("command failed", "error", err, "target", replyTo.String())
}
