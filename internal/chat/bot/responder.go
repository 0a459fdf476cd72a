// Package bot derives automated chat replies through ordered keyword and
// command matching.
package bot

import (
	"context"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/torcida/fanhub/internal/storage"
)

// PrincipalReader resolves live principal state for computed responses.
type PrincipalReader interface {
	GetPrincipal(ctx context.Context, id int64) (storage.Principal, error)
}

// Responder maps message text to a reply using an immutable ordered rule list.
//
// The list is built once at construction and never mutated, so concurrent
// handlers can share one responder without coordination.
type Responder struct {
	rules    []rule
	fallback string
	reader   PrincipalReader
	intn     func(n int) int
}

// rule pairs a trigger set with a response variant. The first rule in list
// order with any trigger contained in the normalized text wins.
type rule struct {
	triggers []string
	response response
}

// response is the tagged variant behind each rule: fixed text, a uniform
// random pick, or a value computed from the principal's live state.
type response interface {
	reply(ctx context.Context, r *Responder, principalID int64) string
}

type fixedResponse string

func (f fixedResponse) reply(context.Context, *Responder, int64) string {
	return string(f)
}

type randomOfResponse []string

func (v randomOfResponse) reply(_ context.Context, r *Responder, _ int64) string {
	return v[r.intn(len(v))]
}

type computedResponse func(principal storage.Principal) string

func (c computedResponse) reply(ctx context.Context, r *Responder, principalID int64) string {
	principal, err := r.reader.GetPrincipal(ctx, principalID)
	if err != nil {
		// Deterministic degradation: a missing or unreadable principal
		// yields a fixed apology instead of an error event.
		log.Printf("bot: resolve principal %d for computed reply: %v", principalID, err)
		return lookupFallbackReply
	}
	return c(principal)
}

// NewResponder builds a responder over the default rule table.
func NewResponder(reader PrincipalReader) *Responder {
	return &Responder{
		rules:    defaultRules(),
		fallback: fallbackReply,
		reader:   reader,
		intn:     rand.IntN,
	}
}

// Respond returns the reply for text submitted by principalID.
//
// Text is normalized (trim, lowercase) and matched by substring containment
// against each rule's triggers in list order. Respond never fails: unmatched
// text and unresolvable computed lookups both degrade to fixed fallbacks.
func (r *Responder) Respond(ctx context.Context, text string, principalID int64) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return invalidMessageReply
	}

	for _, candidate := range r.rules {
		for _, trigger := range candidate.triggers {
			if strings.Contains(normalized, trigger) {
				return candidate.response.reply(ctx, r, principalID)
			}
		}
	}
	return r.fallback
}
