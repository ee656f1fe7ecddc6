package addressing

import (
	"bytes"
	"math/rand"
	"regexp"
	"testing"
	"time"
)

var uidPattern = regexp.MustCompile(`^group1_user1_[0-9a-f]{12}$`)

func fixedClock() time.Time {
	return time.Date(2024, 7, 9, 13, 5, 42, 0, time.Local)
}

func TestNewFormatsIdentifiers(t *testing.T) {
	a := &Addresser{Now: fixedClock, Rand: rand.New(rand.NewSource(42))}

	ids := a.New("group1", "user1")
	if ids.DateFolder != "2024070913" {
		t.Fatalf("DateFolder = %q, want 2024070913", ids.DateFolder)
	}
	if ids.Timestamp != "20240709130542" {
		t.Fatalf("Timestamp = %q, want 20240709130542", ids.Timestamp)
	}
	if !uidPattern.MatchString(ids.UID) {
		t.Fatalf("UID %q does not match %s", ids.UID, uidPattern)
	}
}

func TestNewProducesDistinctUIDs(t *testing.T) {
	a := &Addresser{Now: fixedClock, Rand: rand.New(rand.NewSource(42))}

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		uid := a.New("group1", "user1").UID
		if _, dup := seen[uid]; dup {
			t.Fatalf("duplicate uid %q after %d calls", uid, i)
		}
		seen[uid] = struct{}{}
	}
}

func TestNewDefaultsWork(t *testing.T) {
	ids := New().New("group1", "user1")
	if !uidPattern.MatchString(ids.UID) {
		t.Fatalf("UID %q does not match %s", ids.UID, uidPattern)
	}
	var zero *Addresser
	if !uidPattern.MatchString(zero.New("group1", "user1").UID) {
		t.Fatalf("nil addresser should fall back to defaults")
	}
}

func TestNewShortRandomSourceFallsBack(t *testing.T) {
	a := &Addresser{Now: fixedClock, Rand: bytes.NewReader([]byte{0x01})}
	if !uidPattern.MatchString(a.New("group1", "user1").UID) {
		t.Fatalf("short random source should still yield a full suffix")
	}
}

func TestSuffixFollowsInjectedSource(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{0xab}, 16))
	if got := suffix(src); got != "abababababab" {
		t.Fatalf("suffix = %q, want abababababab", got)
	}
}
