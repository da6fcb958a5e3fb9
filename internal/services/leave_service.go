package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"absensi/internal/models"
	"absensi/internal/repositories"
)

type ApplyLeaveInput struct {
	UserID    int
	StartDate string // YYYY-MM-DD
	EndDate   string
	Reason    string
	Type      string
}

type LeaveService struct {
	repo     repositories.LeaveRepository
	users    repositories.UserRepository
	notifier LeaveNotifier
	emails   EmailService
	loc      *time.Location
	now      func() time.Time
}

func NewLeaveService(repo repositories.LeaveRepository, users repositories.UserRepository, notifier LeaveNotifier, emails EmailService, loc *time.Location) *LeaveService {
	if loc == nil {
		loc = time.Local
	}
	return &LeaveService{repo: repo, users: users, notifier: notifier, emails: emails, loc: loc, now: time.Now}
}

func (s *LeaveService) Apply(ctx context.Context, in ApplyLeaveInput) (*models.Leave, error) {
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(in.StartDate), s.loc)
	if err != nil {
		return nil, validationf("startDate must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(in.EndDate), s.loc)
	if err != nil {
		return nil, validationf("endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, validationf("endDate must not be before startDate")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, validationf("reason is required")
	}
	typ := models.LeaveType(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = models.LeaveAnnual
	}
	if !typ.Valid() {
		return nil, validationf("type must be one of annual, sick, permission, other")
	}

	leave := &models.Leave{
		UserID:    in.UserID,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		Type:      typ,
		Status:    models.LeavePending,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, fmt.Errorf("apply leave: %w", err)
	}
	log.Printf("[leaves][apply] leaveID=%d userID=%d type=%s", leave.ID, leave.UserID, leave.Type)

	if s.notifier != nil {
		applicant, _ := s.users.GetByID(ctx, in.UserID)
		if err := s.notifier.LeaveApplied(leave, applicant); err != nil {
			log.Printf("[leaves][apply] warning: notify admins failed leaveID=%d: %v", leave.ID, err)
		}
	}
	return leave, nil
}

func (s *LeaveService) ListByUser(ctx context.Context, userID int) ([]models.Leave, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return out, nil
}

func (s *LeaveService) ListAll(ctx context.Context) ([]models.Leave, error) {
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	return out, nil
}

// Decide approves or rejects a pending leave on behalf of adminID.
func (s *LeaveService) Decide(ctx context.Context, id int64, status models.LeaveStatus, adminID int) (*models.Leave, error) {
	if !canTransition(models.LeavePending, status, LeaveTransitions) {
		return nil, validationf("status must be approved or rejected")
	}
	err := s.repo.Decide(ctx, id, status, adminID, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repositories.ErrStateConflict):
		return nil, ErrLeaveProcessed
	case err != nil:
		return nil, fmt.Errorf("decide leave: %w", err)
	}

	leave, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("decide leave: %w", err)
	}
	log.Printf("[leaves][decide] leaveID=%d status=%s by=%d", id, status, adminID)

	if s.emails != nil && leave.UserEmail != "" {
		if err := s.emails.SendLeaveDecisionEmail(leave.UserEmail, leave.UserName, leave); err != nil {
			log.Printf("[leaves][decide] warning: decision email failed leaveID=%d: %v", id, err)
		}
	}
	return leave, nil
}

func (s *LeaveService) Stats(ctx context.Context, userID int) (*models.LeaveStats, error) {
	leaves, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("leave stats: %w", err)
	}
	year := s.now().In(s.loc).Year()
	st := &models.LeaveStats{Total: len(leaves)}
	for _, l := range leaves {
		switch l.Status {
		case models.LeaveApproved:
			st.Approved++
			if l.AppliedAt.In(s.loc).Year() == year {
				st.ThisYear++
			}
		case models.LeavePending:
			st.Pending++
		case models.LeaveRejected:
			st.Rejected++
		}
	}
	return st, nil
}
