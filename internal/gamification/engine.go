// Package gamification awards points and badges to principals.
//
// The engine has no knowledge of why it is called; chat ingestion and the
// account boundaries (social links, esports links, documents) are its callers
// and decide when a trigger fires.
package gamification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/torcida/fanhub/internal/storage"
)

// Point increments per trigger, matching the community reward table.
const (
	ChatMessagePoints  int64 = 5
	SocialLinkPoints   int64 = 10
	EsportsLinkPoints  int64 = 10
	ProfilePhotoPoints int64 = 15
)

// Badge names awarded by the account boundaries.
const (
	BadgeSocialLink   = "Rede Social Vinculada"
	BadgeEsportsLink  = "Link de E-sports"
	BadgeProfilePhoto = "Foto do Perfil"
)

// ErrNegativeAmount reports a rejected negative point award.
var ErrNegativeAmount = errors.New("point amount must be non-negative")

// Engine mutates principal gamification state through a PrincipalStore.
type Engine struct {
	store storage.PrincipalStore
}

// NewEngine returns an engine backed by store.
func NewEngine(store storage.PrincipalStore) *Engine {
	return &Engine{store: store}
}

// AwardPoints increases the principal's point total by amount.
//
// The increment is delegated to the store as a single atomic statement so
// concurrent awards accumulate without lost updates. Negative amounts are
// rejected; storage.ErrNotFound passes through for missing principals.
func (e *Engine) AwardPoints(ctx context.Context, principalID int64, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if err := e.store.AddPoints(ctx, principalID, amount); err != nil {
		return fmt.Errorf("award %d points to principal %d: %w", amount, principalID, err)
	}
	return nil
}

// AwardBadge adds badge to the principal's badge set.
//
// The award is idempotent: when the badge is already a member no persistence
// write occurs.
func (e *Engine) AwardBadge(ctx context.Context, principalID int64, badge string) error {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return errors.New("badge name is required")
	}

	principal, err := e.store.GetPrincipal(ctx, principalID)
	if err != nil {
		return fmt.Errorf("load principal %d for badge: %w", principalID, err)
	}
	if principal.HasBadge(badge) {
		return nil
	}

	badges := append(append([]string(nil), principal.Badges...), badge)
	if err := e.store.SetBadges(ctx, principalID, badges); err != nil {
		return fmt.Errorf("award badge %q to principal %d: %w", badge, principalID, err)
	}
	return nil
}

// MessageSent rewards a human chat message.
func (e *Engine) MessageSent(ctx context.Context, principalID int64) error {
	if err := e.AwardPoints(ctx, principalID, ChatMessagePoints); err != nil {
		return err
	}
	return e.logAction(ctx, principalID, "Enviou mensagem no chat")
}

// SocialLinkAdded rewards linking a social network profile.
func (e *Engine) SocialLinkAdded(ctx context.Context, principalID int64, platform string) error {
	if err := e.AwardBadge(ctx, principalID, BadgeSocialLink); err != nil {
		return err
	}
	if err := e.AwardPoints(ctx, principalID, SocialLinkPoints); err != nil {
		return err
	}
	return e.logAction(ctx, principalID, "Rede social adicionada: "+platform)
}

// EsportsLinkAdded rewards linking an esports platform profile.
func (e *Engine) EsportsLinkAdded(ctx context.Context, principalID int64, platform string) error {
	if err := e.AwardBadge(ctx, principalID, BadgeEsportsLink); err != nil {
		return err
	}
	if err := e.AwardPoints(ctx, principalID, EsportsLinkPoints); err != nil {
		return err
	}
	return e.logAction(ctx, principalID, "Link de e-sports adicionado: "+platform)
}

// ProfilePhotoUpdated rewards uploading a profile photo.
func (e *Engine) ProfilePhotoUpdated(ctx context.Context, principalID int64) error {
	if err := e.AwardBadge(ctx, principalID, BadgeProfilePhoto); err != nil {
		return err
	}
	if err := e.AwardPoints(ctx, principalID, ProfilePhotoPoints); err != nil {
		return err
	}
	return e.logAction(ctx, principalID, "Foto de perfil atualizada")
}

func (e *Engine) logAction(ctx context.Context, principalID int64, action string) error {
	if err := e.store.LogAction(ctx, principalID, action); err != nil {
		return fmt.Errorf("log action for principal %d: %w", principalID, err)
	}
	return nil
}
