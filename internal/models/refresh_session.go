package models

import (
	"sort"
	"time"
)

// RefreshSession is one logged-in device/browser. Only the sha256 hash of the
// raw refresh token is stored; the raw token never touches the database.
type RefreshSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null;size:64"`
	TokenHash string    `json:"-" gorm:"uniqueIndex;not null;size:64"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (RefreshSession) TableName() string {
	return "refresh_sessions"
}

func (s *RefreshSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// PruneExpiredSessions drops sessions whose expiry has passed.
func PruneExpiredSessions(sessions []RefreshSession, now time.Time) []RefreshSession {
	kept := sessions[:0]
	for _, s := range sessions {
		if !s.Expired(now) {
			kept = append(kept, s)
		}
	}
	return kept
}

// CapSessions bounds the session list to max entries, keeping those with the
// latest expiry. The returned slice is sorted by expiry descending.
func CapSessions(sessions []RefreshSession, max int) []RefreshSession {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ExpiresAt.After(sessions[j].ExpiresAt)
	})
	if max > 0 && len(sessions) > max {
		sessions = sessions[:max]
	}
	return sessions
}
