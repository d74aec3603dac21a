package bot

import (
	"fmt"
	"strings"

	"triggerbot/directory"
)

func (b *Bot) registerModeCommands() {
	b.register(&command{path: "mode", help: "Manage channel modes.", toggleable: true, fn: showSub})
	b.register(&command{
		path:       "mode list",
		help:       "List the modes currently set on this channel.\nmode list",
		toggleable: true,
		fn:         cmdModeList,
	})
	b.register(&command{path: "mode add", help: "Set a mode on this channel.", fn: showSub})
	b.register(&command{path: "mode remove", help: "Remove a mode from this channel.", fn: showSub})

	for _, mode := range []string{directory.ModeFilterless, directory.ModeRant, directory.ModeSilent} {
		mode := mode
		b.register(&command{
			path:       "mode add " + mode,
			help:       modeHelp[mode],
			protected:  true,
			toggleable: true,
			fn: func(b *Bot, inv *Invocation) error {
				return modeAdd(b, inv, mode)
			},
		})
		b.register(&command{
			path:       "mode remove " + mode,
			help:       fmt.Sprintf("Remove %s mode from this channel.\nmode remove %s", mode, mode),
			protected:  true,
			toggleable: true,
			fn: func(b *Bot, inv *Invocation) error {
				return modeRemove(b, inv, mode)
			},
		})
	}

	b.register(&command{
		path:       "mode reset",
		help:       "Reset this channel to the default mode.\nmode reset",
		protected:  true,
		toggleable: true,
		fn:         cmdModeReset,
	})
}

var modeHelp = map[string]string{
	directory.ModeFilterless: "Set this channel to filterless mode.\n" +
		"In filterless mode, messages are relayed without any safety filtering.\n" +
		"mode add filterless",
	directory.ModeRant: "Set this channel to rant mode.\n" +
		"In rant mode, messages said in this channel are not relayed anywhere, but messages from elsewhere still arrive.\n" +
		"mode add rant",
	directory.ModeSilent: "Set this channel to silent mode.\n" +
		"In silent mode, no messages are relayed to or from this channel.\n" +
		"mode add silent",
}

// auto is passed by the bot itself when a mode follows from some other
// event, in which case rule reports and redundancy chatter are skipped.
func isAuto(inv *Invocation) bool {
	return len(inv.Params) > 0 && inv.Params[0] == "auto"
}

func cmdModeList(b *Bot, inv *Invocation) error {
	c, err := room(inv)
	if err != nil {
		return err
	}
	if len(c.Mode) == 0 {
		inv.reply(b, "This channel is in the default mode.")
		return nil
	}
	noun := "mode"
	if len(c.Mode) > 1 {
		noun = "modes"
	}
	inv.reply(b, fmt.Sprintf("This channel has the following %s set: %s", noun, strings.Join(c.Mode, ", ")))
	return nil
}

func modeAdd(b *Bot, inv *Invocation, mode string) error {
	c, err := room(inv)
	if err != nil {
		return err
	}
	auto := isAuto(inv)
	if !c.AddMode(mode) {
		if !auto {
			switch mode {
			case directory.ModeFilterless:
				inv.reply(b, "This channel is already in filterless mode.")
			case directory.ModeRant:
				inv.reply(b, "This channel is already in rant mode.")
			case directory.ModeSilent:
				inv.reply(b, "This channel is already in silent mode.")
			}
		}
		return nil
	}
	b.dir.MarkDirty()
	switch mode {
	case directory.ModeFilterless:
		inv.reply(b, "Mode filterless added.")
	case directory.ModeRant:
		inv.reply(b, "Mode rant added.")
	case directory.ModeSilent:
		b.send(ToChannel(c), nil, "Relaying disabled.")
		for _, u := range b.linkedUsers(c) {
			b.Relay(fmt.Sprintf("%s has left (Relaying disabled).", u.Nick), c,
				relayOpts{related: u, info: true})
		}
	}
	if !auto {
		b.UpdateRules(c, true)
	}
	return nil
}

func modeRemove(b *Bot, inv *Invocation, mode string) error {
	c, err := room(inv)
	if err != nil {
		return err
	}
	auto := isAuto(inv)
	if !c.RemoveMode(mode) {
		if !auto {
			switch mode {
			case directory.ModeFilterless:
				inv.reply(b, "This channel was not in filterless mode.")
			case directory.ModeRant:
				inv.reply(b, "This channel is not in rant mode.")
			case directory.ModeSilent:
				inv.reply(b, "This channel is not in silent mode.")
			}
		}
		return nil
	}
	b.dir.MarkDirty()
	switch mode {
	case directory.ModeFilterless:
		inv.reply(b, "Mode filterless removed.")
	case directory.ModeRant:
		inv.reply(b, "Mode rant removed.")
	case directory.ModeSilent:
		b.send(ToChannel(c), nil, "Relaying enabled.")
		for _, u := range b.linkedUsers(c) {
			b.Relay(fmt.Sprintf("%s has joined (Relaying enabled).", u.Nick), c,
				relayOpts{related: u, info: true, notifyFriends: true})
		}
	}
	if !auto {
		b.UpdateRules(c, true)
	}
	return nil
}

func cmdModeReset(b *Bot, inv *Invocation) error {
	c, err := room(inv)
	if err != nil {
		return err
	}
	wasSilent := c.HasMode(directory.ModeSilent)
	c.ResetMode()
	b.dir.MarkDirty()
	inv.reply(b, "Channel mode reset.")
	if wasSilent {
		b.send(ToChannel(c), nil, "Relaying enabled.")
		for _, u := range b.linkedUsers(c) {
			b.Relay(fmt.Sprintf("%s has joined (Relaying enabled).", u.Nick), c,
				relayOpts{related: u, info: true, notifyFriends: true})
		}
	}
	b.UpdateRules(c, true)
	return nil
}
