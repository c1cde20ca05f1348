package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"congregationhub/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	updateErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.StartsAt != nil {
		e.StartsAt = *upd.StartsAt
	}
	if upd.EndsAt != nil {
		e.EndsAt = *upd.EndsAt
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeSessionRepo is an in-memory SessionRepository for tests. Start/stop
// results are preloaded rather than computed; the transactional behavior
// itself is covered by the postgres tests.
type fakeSessionRepo struct {
	startEvent   *domain.Event
	startSession *domain.EventSession
	startErr     error
	startCalls   int
	lastGen      domain.SessionCodeGenerator
	lastAttempts int

	stopErr   error
	stopCalls int

	byCode map[string]*domain.EventSession

	activeSession *domain.EventSession
	activeEvent   *domain.Event
	activeErr     error

	latestByEvent map[string]*domain.EventSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		byCode:        make(map[string]*domain.EventSession),
		latestByEvent: make(map[string]*domain.EventSession),
	}
}

func (f *fakeSessionRepo) StartSession(ctx context.Context, eventID, startedBy string, gen domain.SessionCodeGenerator, maxAttempts int) (*domain.Event, *domain.EventSession, error) {
	f.startCalls++
	f.lastGen = gen
	f.lastAttempts = maxAttempts
	if f.startErr != nil {
		return nil, nil, f.startErr
	}
	return f.startEvent, f.startSession, nil
}

func (f *fakeSessionRepo) StopSession(ctx context.Context, eventID string) error {
	f.stopCalls++
	return f.stopErr
}

func (f *fakeSessionRepo) GetActiveByCode(ctx context.Context, code string) (*domain.EventSession, error) {
	if s, ok := f.byCode[strings.TrimSpace(code)]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSessionRepo) GetActive(ctx context.Context) (*domain.EventSession, *domain.Event, error) {
	if f.activeErr != nil {
		return nil, nil, f.activeErr
	}
	if f.activeSession == nil {
		return nil, nil, domain.ErrNotFound
	}
	return f.activeSession, f.activeEvent, nil
}

func (f *fakeSessionRepo) GetLatestByEventID(ctx context.Context, eventID string) (*domain.EventSession, error) {
	if s, ok := f.latestByEvent[eventID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

// fakeCheckInRepo is an in-memory CheckInRepository for tests.
type fakeCheckInRepo struct {
	created   []*domain.CheckIn
	nextID    int
	createErr error

	memberCheckIns map[string]*domain.CheckIn // key: sessionID + "/" + memberID

	rosterRows []*domain.RosterRow
	rosterErr  error
	lastFilter domain.CheckInType
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{
		nextID:         1,
		memberCheckIns: make(map[string]*domain.CheckIn),
	}
}

func (f *fakeCheckInRepo) Create(ctx context.Context, ci *domain.CheckIn) error {
	if f.createErr != nil {
		return f.createErr
	}
	if ci.Type == domain.CheckInTypeMember && ci.MemberID != nil {
		key := ci.SessionID + "/" + *ci.MemberID
		if _, ok := f.memberCheckIns[key]; ok {
			return domain.ErrAlreadyCheckedIn
		}
		f.memberCheckIns[key] = ci
	}
	ci.ID = fmt.Sprintf("ci-%d", f.nextID)
	ci.CreatedAt = time.Now()
	f.nextID++
	f.created = append(f.created, ci)
	return nil
}

func (f *fakeCheckInRepo) GetMemberCheckIn(ctx context.Context, sessionID, memberID string) (*domain.CheckIn, error) {
	if ci, ok := f.memberCheckIns[sessionID+"/"+memberID]; ok {
		return ci, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCheckInRepo) ListRoster(ctx context.Context, sessionID string, typeFilter domain.CheckInType) ([]*domain.RosterRow, error) {
	f.lastFilter = typeFilter
	if f.rosterErr != nil {
		return nil, f.rosterErr
	}
	if typeFilter == "" {
		return f.rosterRows, nil
	}
	var out []*domain.RosterRow
	for _, r := range f.rosterRows {
		if r.Type == typeFilter {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeMemberRepo is an in-memory MemberRepository for tests.
type fakeMemberRepo struct {
	byUserID  map[string]*domain.Member
	createErr error
	nextID    int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		byUserID: make(map[string]*domain.Member),
		nextID:   1,
	}
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = fmt.Sprintf("mem-%d", f.nextID)
	f.nextID++
	f.byUserID[m.UserID] = m
	return nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	for _, m := range f.byUserID {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberRepo) GetByUserID(ctx context.Context, userID string) (*domain.Member, error) {
	if m, ok := f.byUserID[userID]; ok {
		return m, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records follow-up sends.
type fakeEmailService struct {
	sent []*domain.GuestFollowUpEmailData
	err  error
}

func (f *fakeEmailService) SendGuestFollowUp(ctx context.Context, data *domain.GuestFollowUpEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	roles     map[string][]string // userID -> roleIDs
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*domain.User),
		roles:   make(map[string][]string),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

// fakeRoleRepo serves the seeded role set.
type fakeRoleRepo struct {
	userRepo *fakeUserRepo
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	switch code {
	case domain.RoleAdmin, domain.RolePastor, domain.RoleMember:
		return &domain.Role{ID: "role-" + code, Code: code}, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	var out []*domain.Role
	for _, roleID := range f.userRepo.roles[userID] {
		code := strings.TrimPrefix(roleID, "role-")
		out = append(out, &domain.Role{ID: roleID, Code: code})
	}
	return out, nil
}

// fakeTokenIssuer returns a predictable token.
type fakeTokenIssuer struct {
	lastUserID string
	lastRoles  []string
	err        error
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastUserID = userID
	f.lastRoles = roles
	return "token-" + userID, nil
}
