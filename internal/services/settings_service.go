package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"absensi/internal/models"
	"absensi/internal/repositories"
)

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	return h*60 + m, nil
}

func clockBefore(a, b string) (bool, error) {
	am, err := ParseClock(a)
	if err != nil {
		return false, validationf("%v", err)
	}
	bm, err := ParseClock(b)
	if err != nil {
		return false, validationf("%v", err)
	}
	return am < bm, nil
}

type GeneralSettingsInput struct {
	CompanyName  string
	WorkingHours *models.WorkingHours
}

type OfficeLocationInput struct {
	Latitude  *float64
	Longitude *float64
	Radius    *float64
	Address   string
}

type AttendanceRulesInput struct {
	MinWorkingHours *float64
	AllowRemote     *bool
}

type SettingsService struct {
	repo  repositories.SettingsRepository
	users repositories.UserRepository

	// serializes read-modify-write of the singleton row
	mu sync.Mutex
}

func NewSettingsService(repo repositories.SettingsRepository, users repositories.UserRepository) *SettingsService {
	return &SettingsService{repo: repo, users: users}
}

func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return st, nil
}

func (s *SettingsService) update(ctx context.Context, apply func(st *models.Settings) error) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := apply(st); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return st, nil
}

func (s *SettingsService) UpdateGeneral(ctx context.Context, in GeneralSettingsInput) (*models.Settings, error) {
	if in.WorkingHours != nil {
		ok, err := clockBefore(in.WorkingHours.Start, in.WorkingHours.End)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, validationf("working hours start must be earlier than end")
		}
	}
	return s.update(ctx, func(st *models.Settings) error {
		if name := strings.TrimSpace(in.CompanyName); name != "" {
			st.CompanyName = name
		}
		if in.WorkingHours != nil {
			st.WorkingHours = *in.WorkingHours
		}
		return nil
	})
}

func (s *SettingsService) OfficeLocation(ctx context.Context) (*models.OfficeLocation, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &st.OfficeLocation, nil
}

func (s *SettingsService) UpdateOfficeLocation(ctx context.Context, in OfficeLocationInput) (*models.OfficeLocation, error) {
	if in.Latitude == nil || in.Longitude == nil || in.Radius == nil {
		return nil, validationf("latitude, longitude and radius are required")
	}
	if *in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180 {
		return nil, validationf("coordinates out of range")
	}
	if *in.Radius <= 0 {
		return nil, validationf("radius must be positive")
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		address = "Office Location"
	}
	st, err := s.update(ctx, func(st *models.Settings) error {
		st.OfficeLocation = models.OfficeLocation{
			Latitude:  *in.Latitude,
			Longitude: *in.Longitude,
			Radius:    *in.Radius,
			Address:   address,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st.OfficeLocation, nil
}

func (s *SettingsService) AttendanceHours(ctx context.Context) (*models.AttendanceHours, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &models.AttendanceHours{
		CheckIn:  st.AttendanceRules.MaxCheckInTime,
		CheckOut: st.WorkingHours.End,
	}, nil
}

// UpdateAttendanceHours sets the latest on-time check-in and the end of the
// working day.
func (s *SettingsService) UpdateAttendanceHours(ctx context.Context, in models.AttendanceHours) (*models.AttendanceHours, error) {
	ok, err := clockBefore(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationf("check-in time must be earlier than check-out time")
	}
	st, err := s.update(ctx, func(st *models.Settings) error {
		ok, err := clockBefore(st.WorkingHours.Start, in.CheckOut)
		if err != nil {
			return err
		}
		if !ok {
			return validationf("check-out time must be later than the working day start %s", st.WorkingHours.Start)
		}
		st.AttendanceRules.MaxCheckInTime = in.CheckIn
		st.WorkingHours.End = in.CheckOut
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.AttendanceHours{
		CheckIn:  st.AttendanceRules.MaxCheckInTime,
		CheckOut: st.WorkingHours.End,
	}, nil
}

func (s *SettingsService) UpdateAttendanceRules(ctx context.Context, in AttendanceRulesInput) (*models.AttendanceRules, error) {
	if in.MinWorkingHours != nil && (*in.MinWorkingHours < 0 || *in.MinWorkingHours > 24) {
		return nil, validationf("minWorkingHours must be between 0 and 24")
	}
	st, err := s.update(ctx, func(st *models.Settings) error {
		if in.MinWorkingHours != nil {
			st.AttendanceRules.MinWorkingHours = *in.MinWorkingHours
		}
		if in.AllowRemote != nil {
			st.AttendanceRules.AllowRemote = *in.AllowRemote
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st.AttendanceRules, nil
}

func (s *SettingsService) EmployeeWorkingHours(ctx context.Context) ([]models.EmployeeWorkingHours, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("employee working hours: %w", err)
	}
	out := make([]models.EmployeeWorkingHours, 0, len(users))
	for _, u := range users {
		out = append(out, models.EmployeeWorkingHours{
			ID:           u.ID,
			Name:         u.Name,
			Position:     u.Position,
			WorkingHours: st.WorkingHours,
		})
	}
	return out, nil
}
