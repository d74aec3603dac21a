package bot

import (
	"strings"
	"testing"

	"triggerbot/auth"
	"triggerbot/directory"
)

func TestDispatchExpandsUniquePrefix(t *testing.T) {
	b, tr := newTestBot(t)
	u := b.dir.GetUser("alice")

	// "so" can only mean "source".
	b.Dispatch("so", u, ToUser(u), false)

	replies := tr.messagesTo("alice")
	if !containsLine(replies, "source code") {
		t.Errorf("prefix was not expanded to the source command, got %v", replies)
	}
}

func TestDispatchRejectsAmbiguousPrefix(t *testing.T) {
	b, tr := newTestBot(t)
	u := b.dir.GetUser("alice")

	// "s" matches seen, set, source and status.
	b.Dispatch("s", u, ToUser(u), false)

	replies := tr.messagesTo("alice")
	if !containsLine(replies, "too ambiguous") {
		t.Errorf("ambiguous prefix was not rejected, got %v", replies)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	b, tr := newTestBot(t)
	u := b.dir.GetUser("alice")

	b.Dispatch("frobnicate", u, ToUser(u), false)

	replies := tr.messagesTo("alice")
	if !containsLine(replies, "help command") {
		t.Errorf("unknown command did not point at help, got %v", replies)
	}
}

func TestDispatchParentVerbListsSubcommands(t *testing.T) {
	b, tr := newTestBot(t)
	u := b.dir.GetUser("alice")

	b.Dispatch("word", u, ToUser(u), false)

	replies := tr.messagesTo("alice")
	if !containsLine(replies, "sub-commands") {
		t.Errorf("parent verb did not list sub-commands, got %v", replies)
	}
}

func TestProtectedCommandRequiresLogin(t *testing.T) {
	b, tr := newTestBot(t)
	admin := b.dir.GetUser("boss")
	admin.Admin = directory.TierHead
	hash, err := auth.Hash("secret")
	if err != nil {
		t.Fatal(err)
	}
	admin.PasswordHash = hash

	b.Dispatch("admin create newbie", admin, ToUser(admin), false)

	replies := tr.messagesTo("boss")
	if !containsLine(replies, "need to be logged in") {
		t.Errorf("protected command ran without a login, got %v", replies)
	}
	if _, ok := b.dir.LookupUser("newbie"); ok {
		t.Error("command side effect happened despite failed authentication")
	}
	// A refused command never reaches the audit log.
	if len(admin.AuditLog) != 0 {
		t.Errorf("audit log written on auth failure: %v", admin.AuditLog)
	}
}

func TestLoggedCommandAudited(t *testing.T) {
	b, _ := newTestBot(t)
	admin := b.dir.GetUser("boss")
	admin.Admin = directory.TierHead

	b.Dispatch("admin create newbie", admin, ToUser(admin), false)

	if _, ok := b.dir.LookupUser("newbie"); !ok {
		t.Fatal("admin create did not create the account")
	}
	if len(admin.AuditLog) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(admin.AuditLog))
	}
	if got := admin.AuditLog[0].Command; !strings.Contains(got, "admin create newbie") {
		t.Errorf("audit entry records %q", got)
	}
}

func TestNonAdminCannotRunAdminCommands(t *testing.T) {
	b, tr := newTestBot(t)
	u := b.dir.GetUser("alice")

	b.Dispatch("admin create newbie", u, ToUser(u), false)

	replies := tr.messagesTo("alice")
	if !containsLine(replies, "not authorized") {
		t.Errorf("non-admin was not refused, got %v", replies)
	}
	if _, ok := b.dir.LookupUser("newbie"); ok {
		t.Error("unauthorized command still ran")
	}
}

func TestPermissionGrantAllowsSingleAdminCommand(t *testing.T) {
	b, _ := newTestBot(t)
	boss := b.dir.GetUser("boss")
	boss.Admin = directory.TierHead
	helper := b.dir.GetUser("helper")

	b.Dispatch("admin permission add helper create", boss, ToUser(boss), false)
	if !helper.MayRunAdminCommand("admin create") {
		t.Fatal("grant did not register")
	}

	b.Dispatch("admin create newbie", helper, ToUser(helper), false)
	if _, ok := b.dir.LookupUser("newbie"); !ok {
		t.Error("granted command was refused")
	}

	b.Dispatch("admin add helper2", helper, ToUser(helper), false)
	if u, ok := b.dir.LookupUser("helper2"); ok && u.IsAdmin() {
		t.Error("ungranted admin command still ran")
	}
}

func TestDisabledCommandRefused(t *testing.T) {
	b, tr := newTestBot(t)
	boss := b.dir.GetUser("boss")
	boss.Admin = directory.TierHead
	u := b.dir.GetUser("alice")

	b.Dispatch("admin togglecommand disable seen", boss, ToUser(boss), false)
	tr.reset()

	b.Dispatch("seen boss", u, ToUser(u), false)
	replies := tr.messagesTo("alice")
	if !containsLine(replies, "disabled by an administrator") {
		t.Errorf("disabled command still answered, got %v", replies)
	}
}
