package bot

import "triggerbot/directory"

// Recipient is a closed reply target: either a user or a channel,
// resolved once at the transport boundary.
type Recipient struct {
	User    *directory.User
	Channel *directory.Channel
}

func ToUser(u *directory.User) Recipient       { return Recipient{User: u} }
func ToChannel(c *directory.Channel) Recipient { return Recipient{Channel: c} }

func (r Recipient) IsUser() bool    { return r.User != nil }
func (r Recipient) IsChannel() bool { return r.Channel != nil }

func (r Recipient) String() string {
	switch {
	case r.User != nil:
		return r.User.Nick
	case r.Channel != nil:
		return r.Channel.Name
	}
	return ""
}
