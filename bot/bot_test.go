package bot

import (
	"strings"
	"testing"

	"triggerbot/directory"
	"triggerbot/settings"
	"triggerbot/stem"
)

type sentLine struct {
	kind   string
	target string
	text   string
}

// mockTransport records every outbound line.
type mockTransport struct {
	lines []sentLine
}

func (m *mockTransport) add(kind, target, text string) {
	m.lines = append(m.lines, sentLine{kind: kind, target: target, text: text})
}

func (m *mockTransport) Message(target, text string) { m.add("message", target, text) }
func (m *mockTransport) Notice(target, text string)  { m.add("notice", target, text) }
func (m *mockTransport) Action(target, text string)  { m.add("action", target, text) }
func (m *mockTransport) Join(channel string)         { m.add("join", channel, "") }
func (m *mockTransport) Part(channel, reason string) { m.add("part", channel, reason) }
func (m *mockTransport) Kick(channel, nick, reason string) {
	m.add("kick", channel, nick+" "+reason)
}
func (m *mockTransport) SetMode(target, modes string, args ...string) {
	m.add("mode", target, modes+" "+strings.Join(args, " "))
}
func (m *mockTransport) SetTopic(channel, topic string) { m.add("topic", channel, topic) }
func (m *mockTransport) Nick(nick string)               { m.add("nick", nick, "") }
func (m *mockTransport) Who(target string)              { m.add("who", target, "") }
func (m *mockTransport) Quit(reason string)             { m.add("quit", "", reason) }

// messagesTo returns the chat messages sent to a target so far.
func (m *mockTransport) messagesTo(target string) []string {
	var out []string
	for _, l := range m.lines {
		if l.kind == "message" && l.target == target {
			out = append(out, l.text)
		}
	}
	return out
}

func (m *mockTransport) reset() { m.lines = nil }

func newTestBot(t *testing.T) (*Bot, *mockTransport) {
	t.Helper()
	cfg := &settings.Config{Bot: settings.Bot{Nick: "triggerbot"}}
	tr := &mockTransport{}
	b := New(cfg, directory.New(), nil, tr, stem.New())
	return b, tr
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestShouldReconnectClearedByQuit(t *testing.T) {
	b, tr := newTestBot(t)
	if !b.ShouldReconnect() {
		t.Fatal("new bot should want to reconnect")
	}

	admin := b.dir.GetUser("boss")
	admin.Admin = directory.TierHead
	b.Dispatch("admin quit", admin, ToUser(admin), false)

	if b.ShouldReconnect() {
		t.Error("ordered quit should clear the reconnect flag")
	}
	quit := false
	for _, l := range tr.lines {
		if l.kind == "quit" {
			quit = true
		}
	}
	if !quit {
		t.Error("no QUIT was sent")
	}

	b.Dispatch("admin reconnect", admin, ToUser(admin), false)
	if !b.ShouldReconnect() {
		t.Error("reconnect command should restore the reconnect flag")
	}
}
