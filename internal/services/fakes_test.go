package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"absensi/internal/faceverify"
	"absensi/internal/models"
	"absensi/internal/repositories"
)

// memAttendance mimics the UNIQUE(user_id, date) constraint and the
// conditional updates of the SQL store.
type memAttendance struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*models.AttendanceRecord
	creates int
	// users, when set, plays the users foreign key
	users map[int]bool
}

func newMemAttendance() *memAttendance {
	return &memAttendance{records: map[int64]*models.AttendanceRecord{}}
}

func clonePunch(p *models.Punch) *models.Punch {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneRecord(r *models.AttendanceRecord) *models.AttendanceRecord {
	cp := *r
	cp.CheckIn = clonePunch(r.CheckIn)
	cp.CheckOut = clonePunch(r.CheckOut)
	return &cp
}

func (m *memAttendance) find(userID int, date string) *models.AttendanceRecord {
	for _, r := range m.records {
		if r.UserID == userID && r.Date == date {
			return r
		}
	}
	return nil
}

func (m *memAttendance) FindByUserAndDate(_ context.Context, userID int, date string) (*models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r := m.find(userID, date); r != nil {
		return cloneRecord(r), nil
	}
	return nil, nil
}

func (m *memAttendance) CreateWithCheckIn(_ context.Context, userID int, date string, in *models.Punch) (*models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(userID, date) != nil {
		return nil, repositories.ErrDuplicateKey
	}
	if m.users != nil && !m.users[userID] {
		return nil, repositories.ErrNotFound
	}
	m.nextID++
	m.creates++
	now := time.Now()
	r := &models.AttendanceRecord{
		ID: m.nextID, UserID: userID, Date: date,
		CheckIn: clonePunch(in), CreatedAt: now, UpdatedAt: now,
	}
	m.records[r.ID] = r
	return cloneRecord(r), nil
}

// insertBlank stores a record without punches, which only external writers create.
func (m *memAttendance) insertBlank(userID int, date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.records[m.nextID] = &models.AttendanceRecord{ID: m.nextID, UserID: userID, Date: date}
}

func (m *memAttendance) SetCheckIn(_ context.Context, id int64, in *models.Punch) (*models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.CheckIn.IsSet() {
		return nil, repositories.ErrStateConflict
	}
	r.CheckIn = clonePunch(in)
	return cloneRecord(r), nil
}

func (m *memAttendance) SetCheckOut(_ context.Context, id int64, out *models.Punch) (*models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || !r.CheckIn.IsSet() || r.CheckOut.IsSet() {
		return nil, repositories.ErrStateConflict
	}
	r.CheckOut = clonePunch(out)
	return cloneRecord(r), nil
}

func (m *memAttendance) ListByUser(_ context.Context, userID int, from, to string) ([]models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AttendanceRecord{}
	for _, r := range m.records {
		if r.UserID != userID || (from != "" && r.Date < from) || (to != "" && r.Date > to) {
			continue
		}
		out = append(out, *cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memAttendance) ListAll(ctx context.Context, from, to string) ([]models.AttendanceWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AttendanceWithUser{}
	for _, r := range m.records {
		if (from != "" && r.Date < from) || (to != "" && r.Date > to) {
			continue
		}
		out = append(out, models.AttendanceWithUser{AttendanceRecord: *cloneRecord(r), UserName: "user"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

type memSettings struct {
	mu  sync.Mutex
	st  *models.Settings
	err error
}

func newMemSettings() *memSettings {
	d := models.DefaultSettings()
	return &memSettings{st: &d}
}

func (m *memSettings) Get(context.Context) (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cp := *m.st
	return &cp, nil
}

func (m *memSettings) Save(_ context.Context, s *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.st = &cp
	return nil
}

type stubVerifier struct {
	mu     sync.Mutex
	result faceverify.Result
	err    error
	calls  int
	delay  time.Duration
}

func (v *stubVerifier) Verify(ctx context.Context, image []byte, userID int) (faceverify.Result, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	if v.delay > 0 {
		select {
		case <-time.After(v.delay):
		case <-ctx.Done():
			return faceverify.Result{}, ctx.Err()
		}
	}
	return v.result, v.err
}

type passthroughImages struct{}

func (passthroughImages) Normalize(payload string) ([]byte, error) { return []byte(payload), nil }

type eventRecorder struct {
	mu     sync.Mutex
	events []models.AttendanceEvent
}

func (r *eventRecorder) Publish(ev models.AttendanceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type memUsers struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[int]*models.User{}} }

func (m *memUsers) byEmail(email string) *models.User {
	for _, u := range m.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byEmail(u.Email) != nil {
		return repositories.ErrDuplicateKey
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail(email)
	if u == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if other := m.byEmail(u.Email); other != nil && other.ID != u.ID {
		return repositories.ErrDuplicateKey
	}
	cur.Name, cur.Email, cur.Position, cur.Role = u.Name, u.Email, u.Position, u.Role
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	u.RefreshToken, u.RefreshExpiresAt, u.RefreshRevoked = nil, nil, true
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(ctx context.Context) ([]*models.User, error) {
	return m.ListByRole(ctx, "")
}

func (m *memUsers) ListByRole(_ context.Context, role string) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.User{}
	for _, u := range m.users {
		if role == "" || u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) CountByRole(ctx context.Context, role string) (int, error) {
	l, _ := m.ListByRole(ctx, role)
	return len(l), nil
}

func (m *memUsers) EmailTaken(_ context.Context, email string, exceptID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail(email)
	return u != nil && u.ID != exceptID, nil
}

func (m *memUsers) UpdateRefresh(_ context.Context, id int, token string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.RefreshToken, u.RefreshExpiresAt, u.RefreshRevoked = &token, &exp, false
	return nil
}

func (m *memUsers) RotateRefresh(_ context.Context, old, newToken string, exp time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken != nil && *u.RefreshToken == old && !u.RefreshRevoked && u.RefreshExpiresAt.After(time.Now()) {
			u.RefreshToken, u.RefreshExpiresAt = &newToken, &exp
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type sentMail struct {
	kind, to string
}

type mailRecorder struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mailRecorder) SendWelcomeEmail(email, name, company string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{"welcome", email})
	return m.err
}

func (m *mailRecorder) SendLeaveDecisionEmail(email, name string, leave *models.Leave) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{"leave:" + string(leave.Status), email})
	return m.err
}
