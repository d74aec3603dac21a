package directory

import "strings"

// Settings holds network-wide state the bot persists alongside users,
// channels and topics.
type Settings struct {
	// Channels the bot should sit in. Safe rooms are joined on demand
	// and never listed here.
	Channels []string `json:"channels,omitempty"`

	// GlobalMOTD is announced once to each user who has not yet seen
	// the current text.
	GlobalMOTD string `json:"globalMotd,omitempty"`

	// MainDisabled suspends relay and classification in main channels
	// while leaving safe rooms working.
	MainDisabled bool `json:"mainDisabled,omitempty"`

	// DisabledCommands holds space-joined command paths toggled off by
	// an admin, e.g. "channel kick".
	DisabledCommands []string `json:"disabledCommands,omitempty"`
}

func (s *Settings) HasChannel(name string) bool {
	name = strings.ToLower(name)
	for _, c := range s.Channels {
		if strings.ToLower(c) == name {
			return true
		}
	}
	return false
}

func (s *Settings) AddChannel(name string) bool {
	if s.HasChannel(name) {
		return false
	}
	s.Channels = append(s.Channels, name)
	return true
}

func (s *Settings) RemoveChannel(name string) bool {
	name = strings.ToLower(name)
	for i, c := range s.Channels {
		if strings.ToLower(c) == name {
			s.Channels = append(s.Channels[:i], s.Channels[i+1:]...)
			return true
		}
	}
	return false
}

// CommandDisabled reports whether the command path or any of its
// ancestors has been toggled off.
func (s *Settings) CommandDisabled(path string) bool {
	for _, d := range s.DisabledCommands {
		if path == d || strings.HasPrefix(path, d+" ") {
			return true
		}
	}
	return false
}

// ToggleCommand flips the disabled state of a command path and reports
// whether it is now disabled.
func (s *Settings) ToggleCommand(path string) bool {
	for i, d := range s.DisabledCommands {
		if d == path {
			s.DisabledCommands = append(s.DisabledCommands[:i], s.DisabledCommands[i+1:]...)
			return false
		}
	}
	s.DisabledCommands = append(s.DisabledCommands, path)
	return true
}
