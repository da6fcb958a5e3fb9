package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"absensi/internal/models"
)

type LeaveRepository interface {
	Create(ctx context.Context, leave *models.Leave) error
	GetByID(ctx context.Context, id int64) (*models.Leave, error)
	ListByUser(ctx context.Context, userID int) ([]models.Leave, error)
	ListAll(ctx context.Context) ([]models.Leave, error)
	// Decide moves a pending leave to approved/rejected. A leave that is no
	// longer pending yields ErrStateConflict.
	Decide(ctx context.Context, id int64, status models.LeaveStatus, processedBy int, at time.Time) error
}

type leaveRepository struct {
	db *sql.DB
}

func NewLeaveRepository(db *sql.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

const leaveSelect = `
	SELECT l.id, l.user_id, l.start_date, l.end_date, l.reason, l.type, l.status,
	       l.applied_at, l.processed_at, l.processed_by,
	       u.name, u.email, u.position, p.name
	FROM leaves l
	JOIN users u ON u.id = l.user_id
	LEFT JOIN users p ON p.id = l.processed_by`

func scanLeave(row rowScanner) (*models.Leave, error) {
	var (
		l             models.Leave
		processedAt   sql.NullTime
		processedBy   sql.NullInt64
		processorName sql.NullString
	)
	err := row.Scan(
		&l.ID, &l.UserID, &l.StartDate, &l.EndDate, &l.Reason, &l.Type, &l.Status,
		&l.AppliedAt, &processedAt, &processedBy,
		&l.UserName, &l.UserEmail, &l.UserPosition, &processorName,
	)
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		t := processedAt.Time
		l.ProcessedAt = &t
	}
	if processedBy.Valid {
		id := int(processedBy.Int64)
		l.ProcessedBy = &id
	}
	if processorName.Valid {
		s := processorName.String
		l.ProcessedByName = &s
	}
	return &l, nil
}

func (r *leaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	const q = `
		INSERT INTO leaves (user_id, start_date, end_date, reason, type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, applied_at
	`
	err := r.db.QueryRowContext(ctx, q,
		leave.UserID, leave.StartDate, leave.EndDate, leave.Reason, leave.Type, leave.Status,
	).Scan(&leave.ID, &leave.AppliedAt)
	if err != nil {
		return fmt.Errorf("leave create: %w", err)
	}
	return nil
}

func (r *leaveRepository) GetByID(ctx context.Context, id int64) (*models.Leave, error) {
	l, err := scanLeave(r.db.QueryRowContext(ctx, leaveSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leave get: %w", err)
	}
	return l, nil
}

func (r *leaveRepository) list(ctx context.Context, q string, args ...interface{}) ([]models.Leave, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("leave list: %w", err)
	}
	defer rows.Close()

	out := []models.Leave{}
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *leaveRepository) ListByUser(ctx context.Context, userID int) ([]models.Leave, error) {
	return r.list(ctx, leaveSelect+` WHERE l.user_id = $1 ORDER BY l.applied_at DESC`, userID)
}

func (r *leaveRepository) ListAll(ctx context.Context) ([]models.Leave, error) {
	return r.list(ctx, leaveSelect+` ORDER BY l.applied_at DESC`)
}

func (r *leaveRepository) Decide(ctx context.Context, id int64, status models.LeaveStatus, processedBy int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leaves
		SET status=$1, processed_by=$2, processed_at=$3
		WHERE id=$4 AND status='pending'
	`, status, processedBy, at, id)
	if err != nil {
		return fmt.Errorf("leave decide: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM leaves WHERE id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStateConflict
	}
	return nil
}
