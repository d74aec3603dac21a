package directory

import (
	"time"

	"github.com/google/uuid"
)

// AdminTier is the global admin level of an account. Channel admin is
// a separate, per-channel grant on the Channel record.
type AdminTier int

const (
	TierNone AdminTier = 0
	TierHead AdminTier = 1
	TierFull AdminTier = 2
)

type Mail struct {
	When time.Time `json:"when"`
	From string    `json:"from"`
	Body string    `json:"body"`
	Read bool      `json:"read"`
}

type Warning struct {
	When    time.Time `json:"when"`
	Channel string    `json:"channel"` // base channel, "" for global warnings
	By      string    `json:"by"`      // warner nick, "" when issued by the bot
	Reason  string    `json:"reason"`
}

type AuditEntry struct {
	When    time.Time `json:"when"`
	Channel string    `json:"channel"` // channel scope in effect, "" if none
	Command string    `json:"command"`
}

// User is an account record. Identity is the stable ID; the nickname
// is a mutable indexed attribute, and every cross-user reference
// (ignore, friend, trust, alt, admin grant) stores the ID.
type User struct {
	ID   uuid.UUID `json:"id"`
	Nick string    `json:"nick"`
	Host string    `json:"host"`

	Admin                AdminTier `json:"admin"`
	AllowedAdminCommands []string  `json:"allowedAdminCommands,omitempty"`

	Master uuid.UUID   `json:"master,omitempty"`
	Alts   []uuid.UUID `json:"alts,omitempty"`

	Friends   []uuid.UUID `json:"friends,omitempty"`
	Trusts    []uuid.UUID `json:"trusts,omitempty"`
	Ignores   []uuid.UUID `json:"ignores,omitempty"`
	IgnoredBy []uuid.UUID `json:"ignoredBy,omitempty"`
	RoomAllow []uuid.UUID `json:"roomAllow,omitempty"`

	Topics       map[string]int      `json:"topics,omitempty"`       // topic name -> sensitivity level
	TriggerWords map[string]struct{} `json:"triggerWords,omitempty"` // stemmed

	Helped       bool `json:"helped"`
	ListenMode   bool `json:"listenMode"`
	HasSafeRooms bool `json:"hasSafeRooms"`
	Away         bool `json:"away"`
	Blocked      bool `json:"blocked"` // the bot ignores all commands of this user

	AwayCheck     bool `json:"awayCheck"`
	AutoLogout    bool `json:"autoLogout"`
	AutoSilence   bool `json:"autoSilence"`
	HideOwn       bool `json:"hideOwn"`
	NickServLogin bool `json:"nickservLogin"`
	MOTDRead      bool `json:"motdRead"`
	AutoPurge     bool `json:"autoPurge"`

	PasswordHash []byte `json:"passwordHash,omitempty"`
	LoggedIn     bool   `json:"-"`

	Seen       time.Time `json:"seen"`
	LastLogout time.Time `json:"lastLogout"`

	Mail              []Mail `json:"mail,omitempty"`
	MailRetentionDays int    `json:"mailRetentionDays"`

	Warnings []Warning    `json:"warnings,omitempty"`
	AuditLog []AuditEntry `json:"auditLog,omitempty"`
}

func newUser(nick string) *User {
	now := time.Now()
	return &User{
		ID:                uuid.New(),
		Nick:              nick,
		Topics:            make(map[string]int),
		TriggerWords:      make(map[string]struct{}),
		AwayCheck:         true,
		AutoLogout:        true,
		AutoSilence:       true,
		NickServLogin:     true,
		AutoPurge:         true,
		Seen:              now,
		LastLogout:        now,
		MailRetentionDays: 7,
	}
}

func (u *User) String() string { return u.Nick }

func (u *User) IsAdmin() bool     { return u.Admin != TierNone }
func (u *User) IsHeadAdmin() bool { return u.Admin == TierHead }
func (u *User) IsAlt() bool       { return u.Master != uuid.Nil }
func (u *User) Protected() bool   { return len(u.PasswordHash) > 0 }

// Touch records account activity.
func (u *User) Touch() {
	u.Seen = time.Now()
}

func (u *User) HasTriggerWord(stemmed string) bool {
	_, ok := u.TriggerWords[stemmed]
	return ok
}

func (u *User) UnreadMail() int {
	n := 0
	for _, m := range u.Mail {
		if !m.Read {
			n++
		}
	}
	return n
}

func (u *User) AddWarning(channel, by, reason string) {
	u.Warnings = append(u.Warnings, Warning{
		When:    time.Now(),
		Channel: channel,
		By:      by,
		Reason:  reason,
	})
}

func (u *User) AddAudit(channel, command string) {
	u.AuditLog = append(u.AuditLog, AuditEntry{
		When:    time.Now(),
		Channel: channel,
		Command: command,
	})
}

// MayRunAdminCommand reports whether the account was granted the given
// admin command path or any of its ancestors.
func (u *User) MayRunAdminCommand(path string) bool {
	for _, allowed := range u.AllowedAdminCommands {
		if path == allowed || hasPathPrefix(path, allowed) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == ' '
}

func hasID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}

func addID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	if hasID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, have := range ids {
		if have == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// HasID, AddID and RemoveID manipulate ID reference lists
// (friend/ignore/trust/alt sets).
func HasID(ids []uuid.UUID, id uuid.UUID) bool       { return hasID(ids, id) }
func AddID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID { return addID(ids, id) }
func RemoveID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return removeID(ids, id)
}
