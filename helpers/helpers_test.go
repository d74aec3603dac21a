package helpers

import (
	"testing"
	"time"
)

func TestJoinAnd(t *testing.T) {
	if got := JoinAnd(", ", " and ", nil); got != "" {
		t.Errorf("empty list = %q", got)
	}
	if got := JoinAnd(", ", " and ", []string{"one"}); got != "one" {
		t.Errorf("single item = %q", got)
	}
	if got := JoinAnd(", ", " and ", []string{"one", "two"}); got != "one and two" {
		t.Errorf("two items = %q", got)
	}
	if got := JoinAnd(", ", " and ", []string{"one", "two", "three"}); got != "one, two and three" {
		t.Errorf("three items = %q", got)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"y", "YES", "on", "Enabled", "true"} {
		v, ok := ParseBool(s)
		if !ok || !v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, ok)
		}
	}
	for _, s := range []string{"n", "No", "off", "disabled", "FALSE"} {
		v, ok := ParseBool(s)
		if !ok || v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, ok)
		}
	}
	if _, ok := ParseBool("maybe"); ok {
		t.Error("unrecognised value reported as parsed")
	}
}

func TestAgo(t *testing.T) {
	if got := Ago(time.Now()); got != "just now" {
		t.Errorf("fresh timestamp = %q", got)
	}
	if got := Ago(time.Now().Add(-2 * time.Hour)); got != "2 hours ago" {
		t.Errorf("two hours = %q", got)
	}
}

func TestChannelNames(t *testing.T) {
	if !IsChannelName("#calm") || IsChannelName("alice") || IsChannelName("") {
		t.Error("IsChannelName misclassifies")
	}
	if got := BaseName("#calm_alice"); got != "#calm" {
		t.Errorf("BaseName = %q", got)
	}
	if got := BaseName("#calm"); got != "#calm" {
		t.Errorf("BaseName of a main channel = %q", got)
	}
	if got := OwnerNick("#calm_alice"); got != "alice" {
		t.Errorf("OwnerNick = %q", got)
	}
	if got := OwnerNick("#calm"); got != "" {
		t.Errorf("OwnerNick of a main channel = %q", got)
	}
	if got := SafeRoomName("#Calm", "Alice"); got != "#calm_alice" {
		t.Errorf("SafeRoomName = %q", got)
	}
}
