package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"absensi/internal/models"
)

// AttendanceRepository stores one record per (user, day).
type AttendanceRepository interface {
	FindByUserAndDate(ctx context.Context, userID int, date string) (*models.AttendanceRecord, error)
	CreateWithCheckIn(ctx context.Context, userID int, date string, in *models.Punch) (*models.AttendanceRecord, error)
	SetCheckIn(ctx context.Context, id int64, in *models.Punch) (*models.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, id int64, out *models.Punch) (*models.AttendanceRecord, error)

	ListByUser(ctx context.Context, userID int, from, to string) ([]models.AttendanceRecord, error)
	ListAll(ctx context.Context, from, to string) ([]models.AttendanceWithUser, error)
}

type attendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, to_char(a.date, 'YYYY-MM-DD'),
	a.check_in_at, a.check_in_lat, a.check_in_lng, a.check_in_method, a.check_in_confidence, a.check_in_face_image,
	a.check_out_at, a.check_out_lat, a.check_out_lng, a.check_out_method, a.check_out_confidence, a.check_out_face_image,
	a.created_at, a.updated_at`

// attendanceListColumns matches attendanceColumns but reports only whether a
// capture is stored instead of reading it.
const attendanceListColumns = `
	a.id, a.user_id, to_char(a.date, 'YYYY-MM-DD'),
	a.check_in_at, a.check_in_lat, a.check_in_lng, a.check_in_method, a.check_in_confidence, a.check_in_face_image IS NOT NULL,
	a.check_out_at, a.check_out_lat, a.check_out_lng, a.check_out_method, a.check_out_confidence, a.check_out_face_image IS NOT NULL,
	a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type punchColumns struct {
	at         sql.NullTime
	lat        sql.NullFloat64
	lng        sql.NullFloat64
	method     sql.NullString
	confidence sql.NullFloat64
	image      []byte
	hasImage   bool
}

func (p *punchColumns) targets(listing bool) []interface{} {
	if listing {
		return []interface{}{&p.at, &p.lat, &p.lng, &p.method, &p.confidence, &p.hasImage}
	}
	return []interface{}{&p.at, &p.lat, &p.lng, &p.method, &p.confidence, &p.image}
}

func (p *punchColumns) punch() *models.Punch {
	if !p.at.Valid && !p.method.Valid {
		return nil
	}
	out := &models.Punch{
		VerificationMethod: models.VerificationMethod(p.method.String),
		FaceImage:          p.image,
		HasFaceImage:       p.hasImage || len(p.image) > 0,
	}
	if p.at.Valid {
		t := p.at.Time
		out.Timestamp = &t
	}
	if p.lat.Valid {
		v := p.lat.Float64
		out.Latitude = &v
	}
	if p.lng.Valid {
		v := p.lng.Float64
		out.Longitude = &v
	}
	if p.confidence.Valid {
		v := p.confidence.Float64
		out.Confidence = &v
	}
	return out
}

func scanAttendance(row rowScanner, extra ...interface{}) (*models.AttendanceRecord, error) {
	return scanAttendanceRow(row, false, extra...)
}

func scanAttendanceRow(row rowScanner, listing bool, extra ...interface{}) (*models.AttendanceRecord, error) {
	var (
		rec     models.AttendanceRecord
		in, out punchColumns
	)
	dest := []interface{}{&rec.ID, &rec.UserID, &rec.Date}
	dest = append(dest, in.targets(listing)...)
	dest = append(dest, out.targets(listing)...)
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.CheckIn = in.punch()
	rec.CheckOut = out.punch()
	return &rec, nil
}

// punchArgs returns nullable column values for a punch in schema order.
func punchArgs(p *models.Punch) []interface{} {
	var image interface{}
	if len(p.FaceImage) > 0 {
		image = p.FaceImage
	}
	return []interface{}{p.Timestamp, p.Latitude, p.Longitude, string(p.VerificationMethod), p.Confidence, image}
}

func (r *attendanceRepository) FindByUserAndDate(ctx context.Context, userID int, date string) (*models.AttendanceRecord, error) {
	q := `SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.user_id = $1 AND a.date = $2`
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, q, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("attendance find: %w", err)
	}
	return rec, nil
}

func (r *attendanceRepository) CreateWithCheckIn(ctx context.Context, userID int, date string, in *models.Punch) (*models.AttendanceRecord, error) {
	q := `
		WITH a AS (
			INSERT INTO attendance (
				user_id, date,
				check_in_at, check_in_lat, check_in_lng, check_in_method, check_in_confidence, check_in_face_image
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		)
		SELECT ` + attendanceColumns + ` FROM a`
	args := append([]interface{}{userID, date}, punchArgs(in)...)
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("attendance create: %w", err)
	}
	return rec, nil
}

// SetCheckIn fills the check-in of a record that has none. The condition is
// part of the UPDATE so concurrent writers cannot both succeed.
func (r *attendanceRepository) SetCheckIn(ctx context.Context, id int64, in *models.Punch) (*models.AttendanceRecord, error) {
	q := `
		WITH a AS (
			UPDATE attendance SET
				check_in_at = $2, check_in_lat = $3, check_in_lng = $4,
				check_in_method = $5, check_in_confidence = $6, check_in_face_image = $7,
				updated_at = NOW()
			WHERE id = $1 AND check_in_at IS NULL
			RETURNING *
		)
		SELECT ` + attendanceColumns + ` FROM a`
	args := append([]interface{}{id}, punchArgs(in)...)
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateConflict
		}
		return nil, fmt.Errorf("attendance set check-in: %w", err)
	}
	return rec, nil
}

// SetCheckOut fills the check-out of a record that is checked in and not yet
// checked out.
func (r *attendanceRepository) SetCheckOut(ctx context.Context, id int64, out *models.Punch) (*models.AttendanceRecord, error) {
	q := `
		WITH a AS (
			UPDATE attendance SET
				check_out_at = $2, check_out_lat = $3, check_out_lng = $4,
				check_out_method = $5, check_out_confidence = $6, check_out_face_image = $7,
				updated_at = NOW()
			WHERE id = $1 AND check_in_at IS NOT NULL AND check_out_at IS NULL
			RETURNING *
		)
		SELECT ` + attendanceColumns + ` FROM a`
	args := append([]interface{}{id}, punchArgs(out)...)
	rec, err := scanAttendance(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateConflict
		}
		return nil, fmt.Errorf("attendance set check-out: %w", err)
	}
	return rec, nil
}

func dateRange(conditions []string, args []interface{}, from, to string) ([]string, []interface{}) {
	if from != "" {
		args = append(args, from)
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if to != "" {
		args = append(args, to)
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)))
	}
	return conditions, args
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID int, from, to string) ([]models.AttendanceRecord, error) {
	conditions, args := dateRange([]string{"a.user_id = $1"}, []interface{}{userID}, from, to)
	q := `SELECT ` + attendanceListColumns + ` FROM attendance a WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY a.date DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("attendance list by user: %w", err)
	}
	defer rows.Close()

	out := []models.AttendanceRecord{}
	for rows.Next() {
		rec, err := scanAttendanceRow(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *attendanceRepository) ListAll(ctx context.Context, from, to string) ([]models.AttendanceWithUser, error) {
	conditions, args := dateRange(nil, nil, from, to)
	q := `SELECT ` + attendanceListColumns + `, u.name, u.email, u.position
		FROM attendance a JOIN users u ON u.id = a.user_id`
	if len(conditions) > 0 {
		q += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	q += ` ORDER BY a.date DESC, u.name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("attendance list all: %w", err)
	}
	defer rows.Close()

	out := []models.AttendanceWithUser{}
	for rows.Next() {
		var name, email, position string
		rec, err := scanAttendanceRow(rows, true, &name, &email, &position)
		if err != nil {
			return nil, err
		}
		out = append(out, models.AttendanceWithUser{
			AttendanceRecord: *rec,
			UserName:         name,
			UserEmail:        email,
			UserPosition:     position,
		})
	}
	return out, rows.Err()
}
