package models

import (
	"testing"
	"time"
)

func sessionAt(hash string, expiry time.Time) RefreshSession {
	return RefreshSession{TokenHash: hash, ExpiresAt: expiry}
}

func TestPruneExpiredSessions(t *testing.T) {
	now := time.Now()
	sessions := []RefreshSession{
		sessionAt("live-1", now.Add(time.Hour)),
		sessionAt("dead-1", now.Add(-time.Minute)),
		sessionAt("live-2", now.Add(24*time.Hour)),
		sessionAt("dead-2", now),
	}

	kept := PruneExpiredSessions(sessions, now)
	if len(kept) != 2 {
		t.Fatalf("expected 2 live sessions, got %d", len(kept))
	}
	for _, s := range kept {
		if s.Expired(now) {
			t.Fatalf("expired session %q survived pruning", s.TokenHash)
		}
	}
}

func TestCapSessionsKeepsLatestExpiry(t *testing.T) {
	now := time.Now()
	sessions := []RefreshSession{
		sessionAt("oldest", now.Add(time.Hour)),
		sessionAt("newest", now.Add(3*time.Hour)),
		sessionAt("middle", now.Add(2*time.Hour)),
	}

	capped := CapSessions(sessions, 2)
	if len(capped) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(capped))
	}
	if capped[0].TokenHash != "newest" || capped[1].TokenHash != "middle" {
		t.Fatalf("expected the earliest-expiring session to be evicted, got %+v", capped)
	}
}

func TestCapSessionsUnderLimit(t *testing.T) {
	now := time.Now()
	sessions := []RefreshSession{sessionAt("only", now.Add(time.Hour))}
	if got := CapSessions(sessions, 5); len(got) != 1 {
		t.Fatalf("expected no eviction under the limit, got %d", len(got))
	}
}
