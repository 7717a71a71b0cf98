// Package repository handles data persistence.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/database"
	"github.com/samplecodes/testkata/internal/metrics"
	"github.com/samplecodes/testkata/internal/users"
)

// ErrMemberNotFound is returned when no member has the requested id.
var ErrMemberNotFound = apperr.New(apperr.KindNotFound, "user not found")

// MemberRepository defines the interface for member persistence operations.
type MemberRepository interface {
	users.Directory

	// GetMember retrieves a member by id.
	GetMember(ctx context.Context, id string) (*users.Member, error)

	// GetUserName returns the display name of a member.
	GetUserName(ctx context.Context, id string) (string, error)

	// SaveMember inserts or replaces a member.
	SaveMember(ctx context.Context, m users.Member) error

	// DeleteMember removes a member by id.
	DeleteMember(ctx context.Context, id string) error

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}

// PostgresMemberRepository implements MemberRepository using PostgreSQL.
type PostgresMemberRepository struct {
	pool *database.Pool
}

var _ MemberRepository = (*PostgresMemberRepository)(nil)

// NewPostgresMemberRepository creates a new PostgreSQL-backed member repository.
func NewPostgresMemberRepository(pool *database.Pool) *PostgresMemberRepository {
	return &PostgresMemberRepository{pool: pool}
}

// ListMembers returns all members ordered by id.
func (r *PostgresMemberRepository) ListMembers(ctx context.Context) ([]users.Member, error) {
	defer observe("list_members", time.Now())

	rows, err := r.pool.Query(ctx, `SELECT id, name, age, is_active FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []users.Member
	for rows.Next() {
		var m users.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Age, &m.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// GetMember retrieves a member by id.
func (r *PostgresMemberRepository) GetMember(ctx context.Context, id string) (*users.Member, error) {
	defer observe("get_member", time.Now())

	query := `SELECT id, name, age, is_active FROM members WHERE id = $1`

	var m users.Member
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Age, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &m, nil
}

// GetUserName returns the display name of a member.
func (r *PostgresMemberRepository) GetUserName(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", users.ErrMissingUserID
	}
	m, err := r.GetMember(ctx, id)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

// SaveMember inserts or replaces a member.
func (r *PostgresMemberRepository) SaveMember(ctx context.Context, m users.Member) error {
	defer observe("save_member", time.Now())

	query := `
		INSERT INTO members (id, name, age, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, age = EXCLUDED.age, is_active = EXCLUDED.is_active
	`
	if _, err := r.pool.Exec(ctx, query, m.ID, m.Name, m.Age, m.IsActive); err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

// DeleteMember removes a member by id.
func (r *PostgresMemberRepository) DeleteMember(ctx context.Context, id string) error {
	defer observe("delete_member", time.Now())

	result, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresMemberRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}
