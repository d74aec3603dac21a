package bot

import (
	"fmt"
	"sort"
	"strings"

	"triggerbot/directory"
	"triggerbot/helpers"
)

const noRulesBesidesOwn = "There are currently no additional rules besides yours"

// UpdateAllRules recomputes every channel.
func (b *Bot) UpdateAllRules(report bool) {
	for _, c := range b.dir.AllChannels() {
		b.UpdateRules(c, report)
	}
}

// UpdateRules recomputes a channel's aggregate obligations from
// everyone present across its topology and reports whether the result
// differs from the previous one. Aggregation is idempotent; ejecting
// users over a topic block is its side effect, not the relay's.
func (b *Bot) UpdateRules(c *directory.Channel, report bool) bool {
	owner := b.roomOwner(c)
	base := b.dir.GetChannel(c.Base())

	newRules := make(map[string]int)
	for _, present := range b.linkedUsers(c) {
		master := b.master(present)
		if owner != nil && master == owner && owner.HideOwn {
			// Owner wants their own triggers invisible in their room.
			continue
		}
		if present.Away && master.AwayCheck {
			continue
		}
		for name, level := range master.Topics {
			if level <= 0 {
				continue
			}
			if block, ok := base.BlockedTopics[name]; ok && block <= level {
				b.ejectUser(base, present, "The topic you have set is not allowed in this channel")
				continue
			}
			if level > newRules[name] {
				newRules[name] = level
			}
		}
	}

	wasSilent := false
	for _, m := range c.PrevMode {
		if m == directory.ModeSilent {
			wasSilent = true
		}
	}
	changed := !c.RulesEqual(newRules) || (owner != nil && wasSilent != c.HasMode(directory.ModeSilent))
	c.Rules = newRules
	c.PrevMode = append([]string(nil), c.Mode...)
	if report {
		b.reportRules(c, ToChannel(c), nil, changed)
	}
	return changed
}

// ejectUser kicks a user from the channel and all its safe rooms.
func (b *Bot) ejectUser(base *directory.Channel, u *directory.User, reason string) {
	for _, c := range b.dir.AllChannels() {
		if c.Base() == base.Name && c.RemoveMember(u) {
			b.tr.Kick(c.Name, u.Nick, reason)
		}
	}
}

// reportRules renders the rule sentence, rewrites the channel topic
// and, when the rules changed, announces the sentence.
func (b *Bot) reportRules(c *directory.Channel, recipient Recipient, u *directory.User, changed bool) {
	if !helpers.IsChannelName(c.Name) {
		return
	}
	owner := b.roomOwner(c)

	var sentence string
	if len(c.Rules) > 0 {
		descriptions, hidden := b.activeRuleDescriptions(c, owner)
		if len(descriptions) > 0 {
			sentence = "Current rules: do not " + helpers.JoinAnd("; ", " or ", compressDescriptions(descriptions)) + "."
		} else {
			sentence = "Current rules: " + noRulesBesidesOwn + "."
		}
		if hidden >= 1 {
			plural := ""
			if hidden >= 2 {
				plural = "(s)"
			}
			sentence += fmt.Sprintf(" | %d trigger%s set by others have been hidden.", hidden, plural)
		}
	} else if owner != nil && len(owner.Topics) > 0 && owner.HideOwn && !c.HasMode(directory.ModeSilent) {
		sentence = noRulesBesidesOwn + "."
	} else {
		sentence = "There are currently no additional rules."
	}

	b.updateTopic(c, map[string]string{"rules": sentence})
	if changed {
		b.send(recipient, u, sentence)
	}
}

// activeRuleDescriptions returns the level descriptions to announce,
// dropping superseded topics (still enforced, just not mentioned) and
// counting the hideown owner's topics instead of naming them.
func (b *Bot) activeRuleDescriptions(c *directory.Channel, owner *directory.User) (descriptions []string, hidden int) {
	superseded := make(map[string]struct{})
	for name := range c.Rules {
		if top, ok := b.dir.LookupTopic(name); ok {
			for _, s := range top.Supersedes {
				superseded[s] = struct{}{}
			}
		}
	}
	for name, level := range c.Rules {
		if _, ok := superseded[name]; ok {
			continue
		}
		if owner != nil && owner.HideOwn {
			if _, ok := owner.Topics[name]; ok {
				hidden++
				continue
			}
		}
		if top, ok := b.dir.LookupTopic(name); ok {
			if desc := top.Describe(level); desc != "" {
				descriptions = append(descriptions, desc)
			}
		}
	}
	sort.Strings(descriptions)
	return descriptions, hidden
}

// compressDescriptions shortens sorted descriptions sharing a leading
// word run: "talk about spiders; talk about snakes" reads as
// "talk about spiders; about snakes". The input must be sorted.
func compressDescriptions(descriptions []string) []string {
	out := make([]string, 0, len(descriptions))
	prev := []string{}
	for _, desc := range descriptions {
		words := strings.Split(desc, " ")
		kept := desc
		for i, word := range words {
			if i >= len(prev) || word != prev[i] {
				if i > 1 {
					kept = strings.Join(words[i-1:], " ")
				}
				break
			}
		}
		out = append(out, kept)
		prev = words
	}
	return out
}

// updateTopic rewrites the channel topic from its externally set
// template. Placeholders ([rules], [mode], [globalmotd]) expand to
// labelled segments; unfilled ones are dropped. The topic is only sent
// when it differs from the bot's own last-set text.
func (b *Bot) updateTopic(c *directory.Channel, replace map[string]string) {
	text := c.TopicTemplate
	if text == "" {
		return
	}
	if _, ok := replace["mode"]; !ok && len(c.Mode) > 0 {
		replace["mode"] = "Current mode: " + strings.Join(c.Mode, " ")
	}
	if motd := b.dir.Settings().GlobalMOTD; motd != "" {
		replace["globalmotd"] = "MOTD: " + motd
	}
	for key, value := range replace {
		placeholder := "[" + key + "]"
		if value == "" || !strings.Contains(text, placeholder) {
			continue
		}
		if key != "globalmotd" && !strings.HasPrefix(value, "Current "+key+":") {
			value = "Current " + key + ": " + value
		}
		text = strings.Replace(text, placeholder, value+" | ", 1)
	}
	// Drop placeholders nothing filled in.
	for {
		open := strings.Index(text, "[")
		end := strings.Index(text, "]")
		if open == -1 || end == -1 || end < open {
			break
		}
		text = text[:open] + text[end+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "|")
	text = strings.TrimSpace(text)
	if c.TopicText != text {
		c.TopicText = text
		b.tr.SetTopic(c.Name, text)
	}
}
