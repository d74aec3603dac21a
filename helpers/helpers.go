package helpers

import (
	"strings"
	"time"

	"github.com/hako/durafmt"
)

// JoinAnd joins items with delim, using lastDelim before the final item.
// JoinAnd(", ", " and ", []string{"one", "two", "three"}) == "one, two and three"
func JoinAnd(delim, lastDelim string, items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], delim) + lastDelim + items[len(items)-1]
	}
}

// ParseBool reads a human-friendly boolean value. The second return is
// false when the value is not recognised.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "y", "yes", "on", "enabled", "true":
		return true, true
	case "n", "no", "off", "disabled", "false":
		return false, true
	}
	return false, false
}

// Ago renders how long ago t was, e.g. "2 hours ago".
func Ago(t time.Time) string {
	d := time.Since(t)
	if d < 10*time.Second {
		return "just now"
	}
	return durafmt.Parse(d).LimitFirstN(1).String() + " ago"
}

// IsChannelName reports whether name looks like an IRC channel.
func IsChannelName(name string) bool {
	return name != "" && strings.ContainsRune("#&+!", rune(name[0]))
}

// BaseName truncates a channel name at the first underscore, giving the
// main channel a safe room belongs to. For main channels it is the name
// itself.
func BaseName(channel string) string {
	if i := strings.IndexByte(channel, '_'); i >= 0 {
		return channel[:i]
	}
	return channel
}

// OwnerNick returns the nick suffix of a safe room name, or "" for a
// main channel.
func OwnerNick(channel string) string {
	if i := strings.IndexByte(channel, '_'); i >= 0 {
		return channel[i+1:]
	}
	return ""
}

// SafeRoomName builds the safe room name for owner on the given base
// channel.
func SafeRoomName(base, owner string) string {
	return strings.ToLower(base + "_" + owner)
}
