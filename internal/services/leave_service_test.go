package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"absensi/internal/models"
	"absensi/internal/repositories"
)

type memLeaves struct {
	mu     sync.Mutex
	nextID int64
	leaves map[int64]*models.Leave
	users  *memUsers
}

func (m *memLeaves) Create(_ context.Context, l *models.Leave) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	l.AppliedAt = time.Now()
	cp := *l
	m.leaves[l.ID] = &cp
	return nil
}

func (m *memLeaves) GetByID(ctx context.Context, id int64) (*models.Leave, error) {
	m.mu.Lock()
	l, ok := m.leaves[id]
	m.mu.Unlock()
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *l
	if u, err := m.users.GetByID(ctx, l.UserID); err == nil {
		cp.UserName, cp.UserEmail = u.Name, u.Email
	}
	return &cp, nil
}

func (m *memLeaves) list(userID int) []models.Leave {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Leave{}
	for _, l := range m.leaves {
		if userID == 0 || l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memLeaves) ListByUser(_ context.Context, userID int) ([]models.Leave, error) {
	return m.list(userID), nil
}

func (m *memLeaves) ListAll(context.Context) ([]models.Leave, error) { return m.list(0), nil }

func (m *memLeaves) Decide(_ context.Context, id int64, status models.LeaveStatus, by int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if l.Status != models.LeavePending {
		return repositories.ErrStateConflict
	}
	l.Status, l.ProcessedBy, l.ProcessedAt = status, &by, &at
	return nil
}

type notifyRecorder struct {
	calls int
	err   error
}

func (n *notifyRecorder) LeaveApplied(*models.Leave, *models.User) error {
	n.calls++
	return n.err
}

func newLeaveFixture(t *testing.T) (*LeaveService, *notifyRecorder, *mailRecorder, int) {
	t.Helper()
	users := newMemUsers()
	u := &models.User{Name: "Siti", Email: "siti@example.com", Role: models.RoleEmployee}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	notifier := &notifyRecorder{err: errors.New("telegram down")}
	mails := &mailRecorder{}
	repo := &memLeaves{leaves: map[int64]*models.Leave{}, users: users}
	return NewLeaveService(repo, users, notifier, mails, time.UTC), notifier, mails, u.ID
}

func TestApplyLeave(t *testing.T) {
	svc, notifier, _, uid := newLeaveFixture(t)
	ctx := context.Background()

	l, err := svc.Apply(ctx, ApplyLeaveInput{UserID: uid, StartDate: "2024-05-01", EndDate: "2024-05-03", Reason: "family"})
	if err != nil {
		t.Fatalf("notification failure must not fail apply: %v", err)
	}
	if l.Type != models.LeaveAnnual || l.Status != models.LeavePending {
		t.Fatalf("unexpected leave %+v", l)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected admin notification")
	}

	bad := []ApplyLeaveInput{
		{UserID: uid, StartDate: "2024-05-03", EndDate: "2024-05-01", Reason: "x"},
		{UserID: uid, StartDate: "2024-05-01", EndDate: "2024-05-01", Reason: " "},
		{UserID: uid, StartDate: "2024-05-01", EndDate: "2024-05-01", Reason: "x", Type: "cuti"},
		{UserID: uid, StartDate: "May 1", EndDate: "2024-05-01", Reason: "x"},
	}
	for _, in := range bad {
		if _, err := svc.Apply(ctx, in); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", in, err)
		}
	}
}

func TestDecideLeave(t *testing.T) {
	svc, _, mails, uid := newLeaveFixture(t)
	ctx := context.Background()
	l, err := svc.Apply(ctx, ApplyLeaveInput{UserID: uid, StartDate: "2024-05-01", EndDate: "2024-05-01", Reason: "sick", Type: "sick"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Decide(ctx, l.ID, models.LeavePending, 99); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, err := svc.Decide(ctx, l.ID, models.LeaveApproved, 99)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.LeaveApproved || got.ProcessedBy == nil || *got.ProcessedBy != 99 {
		t.Fatalf("unexpected decided leave %+v", got)
	}
	if len(mails.sent) != 1 || mails.sent[0].kind != "leave:approved" || mails.sent[0].to != "siti@example.com" {
		t.Fatalf("expected decision mail, got %+v", mails.sent)
	}
	if _, err := svc.Decide(ctx, l.ID, models.LeaveRejected, 99); !errors.Is(err, ErrLeaveProcessed) {
		t.Fatalf("expected ErrLeaveProcessed, got %v", err)
	}
	if _, err := svc.Decide(ctx, 404, models.LeaveRejected, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaveStats(t *testing.T) {
	svc, _, _, uid := newLeaveFixture(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		l, err := svc.Apply(ctx, ApplyLeaveInput{UserID: uid, StartDate: "2024-05-01", EndDate: "2024-05-01", Reason: "r"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, l.ID)
	}
	svc.Decide(ctx, ids[0], models.LeaveApproved, 1)
	svc.Decide(ctx, ids[1], models.LeaveRejected, 1)

	st, err := svc.Stats(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	want := models.LeaveStats{Total: 3, Approved: 1, Pending: 1, Rejected: 1, ThisYear: 1}
	if *st != want {
		t.Fatalf("got %+v, want %+v", *st, want)
	}
}

func TestLeaveTransitions(t *testing.T) {
	cases := []struct {
		from, to models.LeaveStatus
		want     bool
	}{
		{models.LeavePending, models.LeaveApproved, true},
		{models.LeavePending, models.LeaveRejected, true},
		{models.LeavePending, models.LeavePending, false},
		{models.LeaveApproved, models.LeaveRejected, false},
		{models.LeaveRejected, models.LeaveApproved, false},
		{"unknown", models.LeaveApproved, false},
	}
	for _, tc := range cases {
		if got := canTransition(tc.from, tc.to, LeaveTransitions); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
