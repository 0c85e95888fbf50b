package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anagh/homeledger/internal/models"
)

// AddMember persists a household member.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, household_id, display_name, role, created_at) VALUES (?, ?, ?, ?, ?)",
		member.ID, member.HouseholdID, member.DisplayName, string(member.Role), member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// ListMembers returns a household's members, owner first and then by
// creation time, so the caller gets a stable owner-first ordering.
func (s *SQLiteStore) ListMembers(ctx context.Context, householdID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, display_name, role, created_at
		 FROM members WHERE household_id = ?
		 ORDER BY CASE role WHEN 'owner' THEN 0 ELSE 1 END, created_at`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var role string
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.DisplayName, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
