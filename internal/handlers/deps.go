package handlers

import (
	"context"

	"absensi/internal/models"
	"absensi/internal/services"
)

// Consumer-side views of the services, so handlers can be exercised with stubs.

type AttendanceService interface {
	CheckIn(ctx context.Context, req services.PunchRequest) (*models.PunchView, error)
	CheckOut(ctx context.Context, req services.PunchRequest) (*models.PunchView, error)
	GetToday(ctx context.Context, userID int) (*models.TodayAttendance, error)
	History(ctx context.Context, userID int, from, to string) ([]models.AttendanceView, error)
	All(ctx context.Context, from, to string) ([]models.AttendanceView, error)
	Stats(ctx context.Context, userID int, from, to string) (*models.AttendanceStats, error)
}

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type UserService interface {
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id int) (*models.User, error)
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id int, in services.UpdateUserInput) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, in services.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id int) error
	ResetPassword(ctx context.Context, id int, newPassword string) error
	ChangePassword(ctx context.Context, id int, current, newPassword string) error
}

type LeaveService interface {
	Apply(ctx context.Context, in services.ApplyLeaveInput) (*models.Leave, error)
	ListByUser(ctx context.Context, userID int) ([]models.Leave, error)
	ListAll(ctx context.Context) ([]models.Leave, error)
	Decide(ctx context.Context, id int64, status models.LeaveStatus, adminID int) (*models.Leave, error)
	Stats(ctx context.Context, userID int) (*models.LeaveStats, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	UpdateGeneral(ctx context.Context, in services.GeneralSettingsInput) (*models.Settings, error)
	OfficeLocation(ctx context.Context) (*models.OfficeLocation, error)
	UpdateOfficeLocation(ctx context.Context, in services.OfficeLocationInput) (*models.OfficeLocation, error)
	AttendanceHours(ctx context.Context) (*models.AttendanceHours, error)
	UpdateAttendanceHours(ctx context.Context, in models.AttendanceHours) (*models.AttendanceHours, error)
	UpdateAttendanceRules(ctx context.Context, in services.AttendanceRulesInput) (*models.AttendanceRules, error)
	EmployeeWorkingHours(ctx context.Context) ([]models.EmployeeWorkingHours, error)
}
