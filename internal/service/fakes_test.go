package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

// fakeStore là bộ repository in-memory dùng chung cho test service. Toàn bộ
// dữ liệu nằm sau một mutex; TxRunner giả chỉ serialize các lần gọi, đủ để
// mô phỏng advisory lock theo spot.
type fakeStore struct {
	mu sync.Mutex

	users        map[int]*domain.User
	zones        map[int]*domain.ParkingZone
	spots        map[int]*domain.ParkingSpot
	reservations map[int]*domain.Reservation
	sessions     map[int]*domain.ParkingSession
	reports      map[int]*domain.Report
	events       map[int]*domain.Event

	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[int]*domain.User),
		zones:        make(map[int]*domain.ParkingZone),
		spots:        make(map[int]*domain.ParkingSpot),
		reservations: make(map[int]*domain.Reservation),
		sessions:     make(map[int]*domain.ParkingSession),
		reports:      make(map[int]*domain.Report),
		events:       make(map[int]*domain.Event),
		nextID:       1,
	}
}

func (s *fakeStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:        &fakeUserRepo{s},
		Zones:        &fakeZoneRepo{s},
		Spots:        &fakeSpotRepo{s},
		Reservations: &fakeReservationRepo{s},
		Sessions:     &fakeSessionRepo{s},
		Reports:      &fakeReportRepo{s},
		Events:       &fakeEventRepo{s},
	}
}

type fakeTxRunner struct {
	store *fakeStore
	mu    sync.Mutex
}

func (t *fakeTxRunner) WithSpotLock(ctx context.Context, spotID int, fn func(r *repository.Repositories) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.store.repositories())
}

// recordingNotifier ghi lại các broadcast để test kiểm tra.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.SpotStatusNotification
}

func (n *recordingNotifier) BroadcastSpotStatus(notification domain.SpotStatusNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

// recordingPublisher ghi lại các report đã publish.
type recordingPublisher struct {
	mu        sync.Mutex
	published []*domain.Report
}

func (p *recordingPublisher) PublishReport(ctx context.Context, report *domain.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, report)
}

// --- UserRepository ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.LicensePlate == user.LicensePlate || u.PhoneNumber == user.PhoneNumber {
			return nil, repository.ErrDuplicateEntry
		}
	}
	user.ID = r.s.id()
	cp := *user
	r.s.users[user.ID] = &cp
	return user, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByLicensePlate(ctx context.Context, plate string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.LicensePlate == plate {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return user, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}

// --- ParkingZoneRepository ---

type fakeZoneRepo struct{ s *fakeStore }

func (r *fakeZoneRepo) Create(ctx context.Context, zone *domain.ParkingZone) (*domain.ParkingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, z := range r.s.zones {
		if z.Name == zone.Name {
			return nil, repository.ErrDuplicateEntry
		}
	}
	zone.ID = r.s.id()
	cp := *zone
	r.s.zones[zone.ID] = &cp
	return zone, nil
}

func (r *fakeZoneRepo) FindByID(ctx context.Context, id int) (*domain.ParkingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	z, ok := r.s.zones[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *z
	return &cp, nil
}

func (r *fakeZoneRepo) FindByName(ctx context.Context, name string) (*domain.ParkingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, z := range r.s.zones {
		if z.Name == name {
			cp := *z
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeZoneRepo) FindAll(ctx context.Context) ([]domain.ParkingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ParkingZone
	for _, z := range r.s.zones {
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeZoneRepo) Update(ctx context.Context, zone *domain.ParkingZone) (*domain.ParkingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.zones[zone.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *zone
	r.s.zones[zone.ID] = &cp
	return zone, nil
}

func (r *fakeZoneRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.zones[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.zones, id)
	return nil
}

func (r *fakeZoneRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.zones), nil
}

// --- ParkingSpotRepository ---

type fakeSpotRepo struct{ s *fakeStore }

func (r *fakeSpotRepo) Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.spots {
		if sp.ZoneID == spot.ZoneID && sp.SpotNumber == spot.SpotNumber {
			return nil, repository.ErrDuplicateEntry
		}
	}
	spot.ID = r.s.id()
	cp := *spot
	r.s.spots[spot.ID] = &cp
	return spot, nil
}

func (r *fakeSpotRepo) FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sp
	return &cp, nil
}

func (r *fakeSpotRepo) FindByZoneID(ctx context.Context, zoneID int) ([]domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ParkingSpot
	for _, sp := range r.s.spots {
		if sp.ZoneID == zoneID {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSpotRepo) FindAll(ctx context.Context) ([]domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ParkingSpot
	for _, sp := range r.s.spots {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSpotRepo) Update(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.spots[spot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *spot
	r.s.spots[spot.ID] = &cp
	return spot, nil
}

func (r *fakeSpotRepo) UpdateStatus(ctx context.Context, id int, status domain.SpotStatus, source string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spots[id]
	if !ok {
		return repository.ErrNotFound
	}
	sp.Status = status
	return nil
}

func (r *fakeSpotRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.spots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.spots, id)
	return nil
}

func (r *fakeSpotRepo) FindAvailable(ctx context.Context, at time.Time) ([]domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ParkingSpot
	for _, sp := range r.s.spots {
		if r.s.spotAvailableLocked(sp, at) {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSpotRepo) CountAvailable(ctx context.Context, at time.Time) (int, error) {
	spots, err := r.FindAvailable(ctx, at)
	if err != nil {
		return 0, err
	}
	return len(spots), nil
}

func (s *fakeStore) spotAvailableLocked(sp *domain.ParkingSpot, at time.Time) bool {
	if sp.Status == domain.SpotOccupied || sp.Status == domain.SpotUnderMaintenance {
		return false
	}
	for _, sess := range s.sessions {
		if sess.SpotID == sp.ID && !sess.CheckOutTime.Valid {
			return false
		}
	}
	for _, res := range s.reservations {
		if res.SpotID != sp.ID {
			continue
		}
		if res.Status != domain.ReservationActive && res.Status != domain.ReservationPending {
			continue
		}
		if res.Covers(at) {
			return false
		}
	}
	return true
}

// --- ReservationRepository ---

type fakeReservationRepo struct{ s *fakeStore }

func (r *fakeReservationRepo) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.ID = r.s.id()
	cp := *res
	r.s.reservations[res.ID] = &cp
	return res, nil
}

func (r *fakeReservationRepo) FindByID(ctx context.Context, id int) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *fakeReservationRepo) FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.s.reservations {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReservationRepo) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.s.reservations {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReservationRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.reservations), nil
}

func isLive(res *domain.Reservation) bool {
	return res.Status == domain.ReservationActive || res.Status == domain.ReservationPending
}

func (r *fakeReservationRepo) FindOverlapping(ctx context.Context, spotID int, start, end time.Time) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.SpotID == spotID && isLive(res) && res.StartTime.Before(end) && res.EndTime.After(start) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReservationRepo) FindLiveByUser(ctx context.Context, userID int) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.UserID == userID && isLive(res) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReservationRepo) FindActiveForUserAndSpot(ctx context.Context, userID, spotID int, at time.Time) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.UserID == userID && res.SpotID == spotID && res.Status == domain.ReservationActive && res.Covers(at) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReservationRepo) FindActiveCovering(ctx context.Context, spotID int, at time.Time) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.SpotID == spotID && res.Status == domain.ReservationActive && res.Covers(at) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReservationRepo) FindOtherLive(ctx context.Context, spotID, excludeID int, after time.Time) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.SpotID == spotID && res.ID != excludeID && isLive(res) && res.EndTime.After(after) {
			cp := *res
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReservationRepo) UpdateStatus(ctx context.Context, id int, status domain.ReservationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	res.Status = status
	return nil
}

func (r *fakeReservationRepo) ActivateDue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.s.reservations {
		if res.Status == domain.ReservationPending && !res.StartTime.After(now) && res.EndTime.After(now) {
			res.Status = domain.ReservationActive
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) CompleteExpired(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.s.reservations {
		if isLive(res) && !res.EndTime.After(now) {
			res.Status = domain.ReservationCompleted
			out = append(out, *res)
		}
	}
	return out, nil
}

// --- ParkingSessionRepository ---

type fakeSessionRepo struct{ s *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, sess *domain.ParkingSession) (*domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess.ID = r.s.id()
	cp := *sess
	r.s.sessions[sess.ID] = &cp
	return sess, nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (r *fakeSessionRepo) FindOpenByUser(ctx context.Context, userID int) (*domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.UserID == userID && !sess.CheckOutTime.Valid {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, repository.ErrNoOpenSession
}

func (r *fakeSessionRepo) FindOpenBySpot(ctx context.Context, spotID int) (*domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.SpotID == spotID && !sess.CheckOutTime.Valid {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, repository.ErrNoOpenSession
}

func (r *fakeSessionRepo) Update(ctx context.Context, sess *domain.ParkingSession) (*domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[sess.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sess
	r.s.sessions[sess.ID] = &cp
	return sess, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context) ([]domain.ParkingSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ParkingSession
	for _, sess := range r.s.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- ReportRepository ---

type fakeReportRepo struct{ s *fakeStore }

func (r *fakeReportRepo) Create(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report.ID = r.s.id()
	cp := *report
	r.s.reports[report.ID] = &cp
	return report, nil
}

func (r *fakeReportRepo) FindAll(ctx context.Context) ([]domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Report
	for _, rep := range r.s.reports {
		out = append(out, *rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeReportRepo) FindByID(ctx context.Context, id int) (*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (r *fakeReportRepo) Update(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reports[report.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *report
	r.s.reports[report.ID] = &cp
	return report, nil
}

// --- EventRepository ---

type fakeEventRepo struct{ s *fakeStore }

func (r *fakeEventRepo) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = r.s.id()
	cp := *event
	r.s.events[event.ID] = &cp
	return event, nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id int) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ev, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (r *fakeEventRepo) FindAll(ctx context.Context) ([]domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.s.events {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEventRepo) FindByDate(ctx context.Context, day time.Time) ([]domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.s.events {
		if ev.Date.UTC().Truncate(24 * time.Hour).Equal(day.UTC().Truncate(24 * time.Hour)) {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEventRepo) CountByDate(ctx context.Context, day time.Time) (int, error) {
	events, err := r.FindByDate(ctx, day)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}
