package bot

import (
	"strings"

	"github.com/google/uuid"

	"triggerbot/directory"
)

const timeLayout = "2006-01-02 15:04:05"

// registerCommands builds the full catalogue. Parent verbs list their
// children; the leaves carry the capability flags.
func (b *Bot) registerCommands() {
	b.registerStandardCommands()
	b.registerUserCommands()
	b.registerSocialCommands()
	b.registerModeCommands()
	b.registerChannelCommands()
	b.registerAdminCommands()
}

// showSub is the handler of every parent verb.
func showSub(*Bot, *Invocation) error {
	return directory.ErrShowSubcommands
}

func requireParams(inv *Invocation, n int) error {
	if len(inv.Params) < n {
		return directory.ErrMissingParams
	}
	return nil
}

// room returns the channel a command was typed in. Commands that act
// on "this channel" (modes, rule queries) need one.
func room(inv *Invocation) (*directory.Channel, error) {
	if inv.ReplyTo.IsChannel() {
		return inv.ReplyTo.Channel, nil
	}
	return nil, directory.NewUserError("Please run this command in the channel you want it to apply to.")
}

// scope returns the base-channel scope of the invocation.
func scope(inv *Invocation) (*directory.Channel, error) {
	if inv.Channel == nil {
		return nil, directory.NewUserError("This command needs to be executed in-channel, or given the channel name as first parameter.")
	}
	return inv.Channel, nil
}

// nicknames maps an ID reference list to the current nicks, dropping
// dangling entries.
func (b *Bot) nicknames(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := b.dir.UserByID(id); ok {
			out = append(out, u.Nick)
		}
	}
	return out
}

// center pads s to width for the table renderers.
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
