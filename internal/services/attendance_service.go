package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"absensi/internal/faceverify"
	"absensi/internal/geo"
	"absensi/internal/models"
	"absensi/internal/repositories"
)

const dateLayout = "2006-01-02"

// SettingsProvider supplies the office location and attendance rules.
type SettingsProvider interface {
	Get(ctx context.Context) (*models.Settings, error)
}

type ImageNormalizer interface {
	Normalize(payload string) ([]byte, error)
}

// EventPublisher receives an event after every stored punch.
type EventPublisher interface {
	Publish(ev models.AttendanceEvent)
}

type PunchRequest struct {
	UserID    int
	Latitude  *float64
	Longitude *float64
	Method    models.VerificationMethod
	FaceImage string // base64 or data URI, only for face
	Timestamp *time.Time
}

type AttendanceService struct {
	repo          repositories.AttendanceRepository
	settings      SettingsProvider
	verifier      faceverify.Verifier
	images        ImageNormalizer
	events        EventPublisher
	loc           *time.Location
	verifyTimeout time.Duration
	now           func() time.Time
}

func NewAttendanceService(
	repo repositories.AttendanceRepository,
	settings SettingsProvider,
	verifier faceverify.Verifier,
	images ImageNormalizer,
	events EventPublisher,
	loc *time.Location,
	verifyTimeout time.Duration,
) *AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	if verifyTimeout <= 0 {
		verifyTimeout = 10 * time.Second
	}
	return &AttendanceService{
		repo:          repo,
		settings:      settings,
		verifier:      verifier,
		images:        images,
		events:        events,
		loc:           loc,
		verifyTimeout: verifyTimeout,
		now:           time.Now,
	}
}

// Today is the attendance date for "now" in the configured zone.
func (s *AttendanceService) Today() string {
	return s.now().In(s.loc).Format(dateLayout)
}

func (s *AttendanceService) CheckIn(ctx context.Context, req PunchRequest) (*models.PunchView, error) {
	image, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkGeofence(ctx, req); err != nil {
		return nil, err
	}

	date := s.Today()
	rec, err := s.repo.FindByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("check-in: %w", err)
	}
	if rec != nil && rec.CheckIn.IsSet() {
		return nil, ErrAlreadyCheckedIn
	}

	punch, err := s.buildPunch(ctx, req, image)
	if err != nil {
		return nil, err
	}

	var saved *models.AttendanceRecord
	if rec == nil {
		saved, err = s.repo.CreateWithCheckIn(ctx, req.UserID, date, punch)
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrAlreadyCheckedIn
		case errors.Is(err, repositories.ErrNotFound):
			// нет такого сотрудника
			return nil, ErrNotFound
		}
	} else {
		saved, err = s.repo.SetCheckIn(ctx, rec.ID, punch)
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrAlreadyCheckedIn
		}
	}
	if err != nil {
		return nil, fmt.Errorf("check-in: %w", err)
	}

	log.Printf("[attendance][check-in] user=%d date=%s method=%s", req.UserID, date, punch.VerificationMethod)
	s.publish("check_in", saved, saved.CheckIn)
	return models.NewPunchView(saved.CheckIn), nil
}

func (s *AttendanceService) CheckOut(ctx context.Context, req PunchRequest) (*models.PunchView, error) {
	image, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkGeofence(ctx, req); err != nil {
		return nil, err
	}

	date := s.Today()
	rec, err := s.repo.FindByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("check-out: %w", err)
	}
	if rec == nil || !rec.CheckIn.IsSet() {
		return nil, ErrNotCheckedIn
	}
	if rec.CheckOut.IsSet() {
		return nil, ErrAlreadyCheckedOut
	}
	if req.Timestamp != nil && req.Timestamp.Before(*rec.CheckIn.Timestamp) {
		return nil, validationf("check-out time cannot be earlier than check-in time")
	}

	punch, err := s.buildPunch(ctx, req, image)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.SetCheckOut(ctx, rec.ID, punch)
	if errors.Is(err, repositories.ErrStateConflict) {
		return nil, ErrAlreadyCheckedOut
	}
	if err != nil {
		return nil, fmt.Errorf("check-out: %w", err)
	}

	log.Printf("[attendance][check-out] user=%d date=%s method=%s", req.UserID, date, punch.VerificationMethod)
	s.publish("check_out", saved, saved.CheckOut)
	return models.NewPunchView(saved.CheckOut), nil
}

// validate checks the request shape and returns the normalized face image
// for the face method.
func (s *AttendanceService) validate(req PunchRequest) ([]byte, error) {
	if req.UserID <= 0 {
		return nil, validationf("user id is required")
	}
	if !req.Method.Valid() {
		return nil, validationf("verification method must be one of face, location, manual")
	}
	if req.Method != models.MethodManual && (req.Latitude == nil || req.Longitude == nil) {
		return nil, validationf("latitude and longitude are required")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return nil, validationf("latitude out of range")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return nil, validationf("longitude out of range")
	}
	if req.Method != models.MethodFace {
		return nil, nil
	}
	if req.FaceImage == "" {
		return nil, validationf("face image required")
	}
	if s.images == nil {
		return []byte(req.FaceImage), nil
	}
	image, err := s.images.Normalize(req.FaceImage)
	if err != nil {
		return nil, validationf("invalid face image: %v", err)
	}
	return image, nil
}

func (s *AttendanceService) checkGeofence(ctx context.Context, req PunchRequest) error {
	if req.Method == models.MethodManual {
		return nil
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: settings: %v", ErrCollaboratorUnavailable, err)
	}
	if st.AttendanceRules.AllowRemote {
		return nil
	}
	office := st.OfficeLocation
	inside, distance := geo.Within(*req.Latitude, *req.Longitude, office.Latitude, office.Longitude, office.Radius)
	if !inside {
		log.Printf("[attendance][geofence] user=%d distance=%.1f radius=%.1f", req.UserID, distance, office.Radius)
		return &OutOfRangeError{Distance: distance, Radius: office.Radius}
	}
	return nil
}

func (s *AttendanceService) buildPunch(ctx context.Context, req PunchRequest, image []byte) (*models.Punch, error) {
	ts := s.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	punch := &models.Punch{
		Timestamp:          &ts,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		VerificationMethod: req.Method,
	}
	if req.Method != models.MethodFace {
		return punch, nil
	}

	vctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()
	res, err := s.verifier.Verify(vctx, image, req.UserID)
	if err != nil {
		log.Printf("[attendance][verify] user=%d err=%v", req.UserID, err)
		return nil, fmt.Errorf("%w: face verifier: %v", ErrCollaboratorUnavailable, err)
	}
	if !res.Success {
		return nil, &VerificationFailedError{Confidence: res.Confidence, Message: res.Message}
	}
	confidence := res.Confidence
	punch.Confidence = &confidence
	punch.FaceImage = image
	return punch, nil
}

func (s *AttendanceService) publish(kind string, rec *models.AttendanceRecord, p *models.Punch) {
	if s.events == nil || rec == nil || !p.IsSet() {
		return
	}
	s.events.Publish(models.AttendanceEvent{
		ID:                 uuid.NewString(),
		Type:               kind,
		UserID:             rec.UserID,
		Date:               rec.Date,
		Timestamp:          *p.Timestamp,
		VerificationMethod: p.VerificationMethod,
	})
}

func (s *AttendanceService) GetToday(ctx context.Context, userID int) (*models.TodayAttendance, error) {
	date := s.Today()
	rec, err := s.repo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}
	out := &models.TodayAttendance{Date: date, UserID: userID}
	if rec != nil {
		out.CheckIn = models.NewPunchView(rec.CheckIn)
		out.CheckOut = models.NewPunchView(rec.CheckOut)
	}
	return out, nil
}

func validateRange(from, to string) error {
	var f, t time.Time
	var err error
	if from != "" {
		if f, err = time.Parse(dateLayout, from); err != nil {
			return validationf("startDate must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if t, err = time.Parse(dateLayout, to); err != nil {
			return validationf("endDate must be YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && t.Before(f) {
		return validationf("endDate must not be before startDate")
	}
	return nil
}

func (s *AttendanceService) History(ctx context.Context, userID int, from, to string) ([]models.AttendanceView, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out := make([]models.AttendanceView, 0, len(recs))
	for i := range recs {
		out = append(out, models.NewAttendanceView(&recs[i]))
	}
	return out, nil
}

func (s *AttendanceService) All(ctx context.Context, from, to string) ([]models.AttendanceView, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListAll(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("all attendance: %w", err)
	}
	out := make([]models.AttendanceView, 0, len(recs))
	for i := range recs {
		v := models.NewAttendanceView(&recs[i].AttendanceRecord)
		v.UserName = recs[i].UserName
		v.UserEmail = recs[i].UserEmail
		v.UserPosition = recs[i].UserPosition
		out = append(out, v)
	}
	return out, nil
}

func (s *AttendanceService) Stats(ctx context.Context, userID int, from, to string) (*models.AttendanceStats, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: settings: %v", ErrCollaboratorUnavailable, err)
	}
	limit, err := ParseClock(st.AttendanceRules.MaxCheckInTime)
	if err != nil {
		return nil, fmt.Errorf("stats: max check-in time: %w", err)
	}
	recs, err := s.repo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	stats := &models.AttendanceStats{UserID: userID, From: from, To: to}
	var worked time.Duration
	for _, r := range recs {
		if !r.CheckIn.IsSet() {
			continue
		}
		stats.TotalDays++
		in := r.CheckIn.Timestamp.In(s.loc)
		if in.Hour()*60+in.Minute() > limit {
			stats.LateDays++
		}
		if r.CheckOut.IsSet() {
			stats.CompleteDays++
			worked += r.CheckOut.Timestamp.Sub(*r.CheckIn.Timestamp)
		} else {
			stats.IncompleteDays++
		}
	}
	if stats.CompleteDays > 0 {
		avg := worked.Hours() / float64(stats.CompleteDays)
		stats.AverageWorkHours = float64(int(avg*100+0.5)) / 100
	}
	return stats, nil
}
