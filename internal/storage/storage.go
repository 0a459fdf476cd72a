// Package storage defines the persisted chat and principal records and the
// store contracts implemented by database backends.
package storage

import (
	"context"
	"errors"
	"time"
)

// BotPrincipalID is the reserved author id for bot-authored messages.
const BotPrincipalID int64 = 0

// BotDisplayName is the display name resolved for the bot author sentinel.
const BotDisplayName = "TorcidaBot"

// ErrNotFound reports a lookup or update against a missing principal.
var ErrNotFound = errors.New("principal not found")

// Principal is an authenticated member of the community.
//
// Points never decrease and badges are unique by name; both are mutated only
// through the gamification engine.
type Principal struct {
	ID          int64
	DisplayName string
	IsAdmin     bool
	Points      int64
	Badges      []string
}

// HasBadge reports whether badge is already a member of the badge set.
func (p Principal) HasBadge(badge string) bool {
	for _, existing := range p.Badges {
		if existing == badge {
			return true
		}
	}
	return false
}

// ChatMessage is one immutable row of the chat history log.
//
// AuthorName is resolved at read time from the principals table, or the bot
// display name when AuthorID is the bot sentinel.
type ChatMessage struct {
	ID         int64
	AuthorID   int64
	AuthorName string
	Body       string
	IsBot      bool
	CreatedAt  time.Time
}

// ActionEntry records one gamification trigger for auditing.
type ActionEntry struct {
	ID          int64
	PrincipalID int64
	Action      string
	CreatedAt   time.Time
}

// MessageStore is the append-only chat history log.
type MessageStore interface {
	// AppendMessage durably appends a message and returns the stored row
	// with its assigned id, timestamp, and resolved author name.
	AppendMessage(ctx context.Context, authorID int64, body string, isBot bool) (ChatMessage, error)

	// RecentMessages returns at most limit messages in ascending id order.
	RecentMessages(ctx context.Context, limit int) ([]ChatMessage, error)
}

// PrincipalStore persists principals and their gamification state.
type PrincipalStore interface {
	GetPrincipal(ctx context.Context, id int64) (Principal, error)

	// PutPrincipal inserts or replaces a principal row.
	PutPrincipal(ctx context.Context, principal Principal) error

	// AddPoints atomically increments a principal's point total in a single
	// statement. Returns ErrNotFound when the principal does not exist.
	AddPoints(ctx context.Context, id int64, amount int64) error

	// SetBadges replaces the stored badge set.
	SetBadges(ctx context.Context, id int64, badges []string) error

	// LogAction records a gamification trigger for the principal.
	LogAction(ctx context.Context, principalID int64, action string) error

	// RecentActions returns at most limit action entries, newest first.
	RecentActions(ctx context.Context, limit int) ([]ActionEntry, error)
}

// Store combines the message and principal stores backed by one database.
type Store interface {
	MessageStore
	PrincipalStore
}
