package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"absensi/internal/models"
)

// SettingsRepository keeps the single settings row (id = 1).
type SettingsRepository interface {
	// Get returns the stored settings, inserting the defaults on first use.
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	s, err := r.selectRow(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		if err := r.insertDefaults(ctx); err != nil {
			return nil, err
		}
		s, err = r.selectRow(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("settings get: %w", err)
	}
	return s, nil
}

func (r *settingsRepository) selectRow(ctx context.Context) (*models.Settings, error) {
	const q = `
		SELECT company_name, work_start, work_end, max_check_in_time, min_working_hours, allow_remote,
		       office_lat, office_lng, office_radius, office_address, updated_at
		FROM settings WHERE id = 1
	`
	var s models.Settings
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.CompanyName, &s.WorkingHours.Start, &s.WorkingHours.End,
		&s.AttendanceRules.MaxCheckInTime, &s.AttendanceRules.MinWorkingHours, &s.AttendanceRules.AllowRemote,
		&s.OfficeLocation.Latitude, &s.OfficeLocation.Longitude, &s.OfficeLocation.Radius, &s.OfficeLocation.Address,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// insertDefaults creates the row only if nobody else has; a concurrent Save
// always wins.
func (r *settingsRepository) insertDefaults(ctx context.Context) error {
	const q = `
		INSERT INTO settings (
			id, company_name, work_start, work_end, max_check_in_time, min_working_hours, allow_remote,
			office_lat, office_lng, office_radius, office_address, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO NOTHING
	`
	d := models.DefaultSettings()
	_, err := r.db.ExecContext(ctx, q,
		d.CompanyName, d.WorkingHours.Start, d.WorkingHours.End,
		d.AttendanceRules.MaxCheckInTime, d.AttendanceRules.MinWorkingHours, d.AttendanceRules.AllowRemote,
		d.OfficeLocation.Latitude, d.OfficeLocation.Longitude, d.OfficeLocation.Radius, d.OfficeLocation.Address,
	)
	if err != nil {
		return fmt.Errorf("settings defaults: %w", err)
	}
	return nil
}

func (r *settingsRepository) Save(ctx context.Context, s *models.Settings) error {
	const q = `
		INSERT INTO settings (
			id, company_name, work_start, work_end, max_check_in_time, min_working_hours, allow_remote,
			office_lat, office_lng, office_radius, office_address, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			max_check_in_time = EXCLUDED.max_check_in_time,
			min_working_hours = EXCLUDED.min_working_hours,
			allow_remote = EXCLUDED.allow_remote,
			office_lat = EXCLUDED.office_lat,
			office_lng = EXCLUDED.office_lng,
			office_radius = EXCLUDED.office_radius,
			office_address = EXCLUDED.office_address,
			updated_at = NOW()
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, q,
		s.CompanyName, s.WorkingHours.Start, s.WorkingHours.End,
		s.AttendanceRules.MaxCheckInTime, s.AttendanceRules.MinWorkingHours, s.AttendanceRules.AllowRemote,
		s.OfficeLocation.Latitude, s.OfficeLocation.Longitude, s.OfficeLocation.Radius, s.OfficeLocation.Address,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("settings save: %w", err)
	}
	return nil
}
