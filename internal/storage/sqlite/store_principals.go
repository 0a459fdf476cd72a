package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"database/sql"

	"github.com/torcida/fanhub/internal/storage"
)

// GetPrincipal loads a principal by id.
func (s *Store) GetPrincipal(ctx context.Context, id int64) (storage.Principal, error) {
	if err := s.ready(); err != nil {
		return storage.Principal{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, display_name, is_admin, points, badges FROM principals WHERE id = ?`,
		id,
	)

	var principal storage.Principal
	var isAdminInt int64
	var badgesJSON string
	if err := row.Scan(&principal.ID, &principal.DisplayName, &isAdminInt, &principal.Points, &badgesJSON); err != nil {
		if err == sql.ErrNoRows {
			return storage.Principal{}, storage.ErrNotFound
		}
		return storage.Principal{}, fmt.Errorf("get principal: %w", err)
	}
	principal.IsAdmin = isAdminInt != 0

	badges, err := decodeBadges(badgesJSON)
	if err != nil {
		return storage.Principal{}, fmt.Errorf("decode badges for principal %d: %w", id, err)
	}
	principal.Badges = badges
	return principal, nil
}

// PutPrincipal inserts or replaces a principal row.
func (s *Store) PutPrincipal(ctx context.Context, principal storage.Principal) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(principal.DisplayName) == "" {
		return fmt.Errorf("principal display name is required")
	}

	badgesJSON, err := encodeBadges(principal.Badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}

	isAdminInt := 0
	if principal.IsAdmin {
		isAdminInt = 1
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO principals (id, display_name, is_admin, points, badges)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    display_name = excluded.display_name,
		    is_admin = excluded.is_admin,
		    points = excluded.points,
		    badges = excluded.badges`,
		principal.ID,
		principal.DisplayName,
		isAdminInt,
		principal.Points,
		badgesJSON,
	)
	if err != nil {
		return fmt.Errorf("put principal: %w", err)
	}
	return nil
}

// AddPoints increments a principal's point total in a single statement so
// concurrent awards never lose an increment.
func (s *Store) AddPoints(ctx context.Context, id int64, amount int64) error {
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE principals SET points = points + ? WHERE id = ?`,
		amount,
		id,
	)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add points rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetBadges replaces the stored badge set for a principal.
func (s *Store) SetBadges(ctx context.Context, id int64, badges []string) error {
	if err := s.ready(); err != nil {
		return err
	}

	badgesJSON, err := encodeBadges(badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE principals SET badges = ? WHERE id = ?`,
		badgesJSON,
		id,
	)
	if err != nil {
		return fmt.Errorf("set badges: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set badges rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// LogAction records a gamification trigger for the principal.
func (s *Store) LogAction(ctx context.Context, principalID int64, action string) error {
	if err := s.ready(); err != nil {
		return err
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return fmt.Errorf("action is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO action_log (principal_id, action, created_at) VALUES (?, ?, ?)`,
		principalID,
		action,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	return nil
}

// RecentActions returns at most limit action entries, newest first.
func (s *Store) RecentActions(ctx context.Context, limit int) ([]storage.ActionEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, principal_id, action, created_at
		 FROM action_log
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent actions: %w", err)
	}
	defer rows.Close()

	var entries []storage.ActionEntry
	for rows.Next() {
		var entry storage.ActionEntry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.PrincipalID, &entry.Action, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action entry: %w", err)
		}
		entry.CreatedAt = unixMillisToTime(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action entries: %w", err)
	}
	return entries, nil
}

// Badge sets live as JSON arrays in a single column; encode/decode stays
// confined to this storage boundary.
func encodeBadges(badges []string) (string, error) {
	if badges == nil {
		badges = []string{}
	}
	encoded, err := json.Marshal(badges)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeBadges(badgesJSON string) ([]string, error) {
	if strings.TrimSpace(badgesJSON) == "" {
		return nil, nil
	}
	var badges []string
	if err := json.Unmarshal([]byte(badgesJSON), &badges); err != nil {
		return nil, err
	}
	return badges, nil
}
