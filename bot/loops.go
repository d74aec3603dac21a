package bot

import (
	"time"

	"triggerbot/logger"
)

const (
	userRetention  = 30 * 24 * time.Hour
	auditRetention = 30 * 24 * time.Hour
)

// minutelyTasks keeps the session healthy: reclaim the configured
// nick, refresh away states and checkpoint the directory.
func (b *Bot) minutelyTasks() {
	b.claimNick()
	b.tr.Who("0")
	b.Save()
}

// claimNick makes sure the bot eventually gets the nickname it wants.
func (b *Bot) claimNick() {
	wanted := b.cfg.Bot.Nick
	if b.nick == wanted {
		return
	}
	if b.cfg.Bot.Identify {
		b.tr.Message("NickServ", "GHOST "+wanted+" "+b.cfg.Bot.IdentifyPassword)
	}
	b.tr.Nick(wanted)
	b.identify()
}

// dailyTasks runs the retention sweeps.
func (b *Bot) dailyTasks() {
	b.purgeInactiveUsers()
	b.purgeOldAuditLogs()
	b.purgeOldMail()
}

// purgeInactiveUsers drops accounts idle past the retention window.
// Admins and accounts that opted out of purging are kept, as is anyone
// still present in a channel.
func (b *Bot) purgeInactiveUsers() {
	for _, u := range b.dir.AllUsers() {
		if u.IsAdmin() || !u.AutoPurge {
			continue
		}
		if time.Since(u.LastLogout) < userRetention {
			continue
		}
		online := false
		for _, c := range b.dir.AllChannels() {
			if c.HasMember(u) {
				online = true
				break
			}
		}
		if online {
			continue
		}
		if u.HasSafeRooms {
			b.Dispatch("unset channel", u, ToUser(u), true)
		}
		logger.Info("purging inactive user", "nick", u.Nick)
		b.dir.RemoveUser(u)
	}
}

func (b *Bot) purgeOldAuditLogs() {
	cutoff := time.Now().Add(-auditRetention)
	for _, u := range b.dir.AllUsers() {
		kept := u.AuditLog[:0]
		for _, entry := range u.AuditLog {
			if entry.When.After(cutoff) {
				kept = append(kept, entry)
			}
		}
		if len(kept) != len(u.AuditLog) {
			u.AuditLog = kept
			b.dir.MarkDirty()
		}
	}
}

// purgeOldMail honors each account's own mail retention.
func (b *Bot) purgeOldMail() {
	for _, u := range b.dir.AllUsers() {
		retention := time.Duration(u.MailRetentionDays) * 24 * time.Hour
		cutoff := time.Now().Add(-retention)
		kept := u.Mail[:0]
		for _, m := range u.Mail {
			if m.When.After(cutoff) {
				kept = append(kept, m)
			}
		}
		if len(kept) != len(u.Mail) {
			u.Mail = kept
			b.dir.MarkDirty()
		}
	}
}
