package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/pkg/botpress"
)

// fakeReservationRepo держит бронирования в памяти и повторяет семантику
// SQL-слоя, включая SET NULL для зеркальных ссылок при удалении.
type fakeReservationRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*entity.Reservation

	failCreate error
	mirrorRepo *fakeBotpressRepo
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{items: make(map[int64]*entity.Reservation)}
}

func (f *fakeReservationRepo) Create(ctx context.Context, reservation *entity.Reservation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate != nil {
		return 0, f.failCreate
	}

	f.nextID++
	reservation.ID = f.nextID
	stored := *reservation
	f.items[f.nextID] = &stored
	return f.nextID, nil
}

func (f *fakeReservationRepo) GetByID(ctx context.Context, id int64) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return nil, entity.ErrReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) Update(ctx context.Context, id int64, date, timeOfDay string, partySize int, specialRequests string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return entity.ErrReservationNotFound
	}
	r.Date, r.Time, r.PartySize, r.SpecialRequests = date, timeOfDay, partySize, specialRequests
	return nil
}

func (f *fakeReservationRepo) UpdateAdmin(ctx context.Context, id int64, reservation *entity.Reservation, includeUserID bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return entity.ErrReservationNotFound
	}
	r.CustomerName = reservation.CustomerName
	r.Phone = reservation.Phone
	r.Email = reservation.Email
	r.Date = reservation.Date
	r.Time = reservation.Time
	r.PartySize = reservation.PartySize
	r.SpecialRequests = reservation.SpecialRequests
	r.Status = reservation.Status
	if includeUserID {
		r.UserID = reservation.UserID
	}
	return nil
}

func (f *fakeReservationRepo) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return entity.ErrReservationNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeReservationRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return entity.ErrReservationNotFound
	}
	delete(f.items, id)

	// FK ON DELETE SET NULL
	if f.mirrorRepo != nil {
		f.mirrorRepo.nullReservationRef(id)
	}
	return nil
}

func (f *fakeReservationRepo) GetByUserID(ctx context.Context, userID string) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Reservation
	for _, r := range f.items {
		if r.UserID == userID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) GetAll(ctx context.Context, filter *entity.ReservationFilter) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Reservation
	for _, r := range f.items {
		if filter != nil {
			if filter.Status != "" && r.Status != filter.Status {
				continue
			}
			if filter.Date != "" && r.Date != filter.Date {
				continue
			}
			if filter.Email != "" && !strings.Contains(r.Email, filter.Email) {
				continue
			}
			if filter.CustomerName != "" && !strings.Contains(r.CustomerName, filter.CustomerName) {
				continue
			}
		}
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeReservationRepo) GetWithEmail(ctx context.Context) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Reservation
	for _, r := range f.items {
		if r.Email != "" {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) CountByDateTime(ctx context.Context, date, timeOfDay string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, r := range f.items {
		if r.Date == date && r.Time == timeOfDay {
			count++
		}
	}
	return count, nil
}

func (f *fakeReservationRepo) AddReview(ctx context.Context, id int64, rating int, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return entity.ErrReservationNotFound
	}
	r.Review = &entity.Review{Rating: rating, Comment: comment}
	return nil
}

func (f *fakeReservationRepo) UpdateCustomerNameByUser(ctx context.Context, userID, customerName string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var affected int64
	for _, r := range f.items {
		if r.UserID == userID && r.CustomerName != customerName {
			r.CustomerName = customerName
			affected++
		}
	}
	return affected, nil
}

func (f *fakeReservationRepo) GetStats(ctx context.Context) ([]*entity.ReservationStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]*entity.ReservationStat)
	for _, r := range f.items {
		key := string(r.Status) + "|" + r.Date
		if _, ok := counts[key]; !ok {
			counts[key] = &entity.ReservationStat{Status: r.Status, Date: r.Date}
		}
		counts[key].Count++
	}

	var out []*entity.ReservationStat
	for _, stat := range counts {
		out = append(out, stat)
	}
	return out, nil
}

// fakeBotpressRepo — зеркальное хранилище в памяти.
type fakeBotpressRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*entity.BotpressReservation

	failCreate error
}

func newFakeBotpressRepo() *fakeBotpressRepo {
	return &fakeBotpressRepo{items: make(map[int64]*entity.BotpressReservation)}
}

func (f *fakeBotpressRepo) Create(ctx context.Context, reservation *entity.BotpressReservation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate != nil {
		return 0, f.failCreate
	}

	f.nextID++
	reservation.ID = f.nextID
	if reservation.Status == "" {
		reservation.Status = entity.ReservationStatusPending
	}
	stored := *reservation
	f.items[f.nextID] = &stored
	return f.nextID, nil
}

func (f *fakeBotpressRepo) GetByID(ctx context.Context, id int64) (*entity.BotpressReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return nil, entity.ErrBotpressReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeBotpressRepo) FindByEmailAndDatetime(ctx context.Context, email, datetime string) (*entity.BotpressReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.items {
		if r.Email == email && r.Datetime == datetime {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBotpressRepo) GetAll(ctx context.Context) ([]*entity.BotpressReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.BotpressReservation
	for _, r := range f.items {
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBotpressRepo) Update(ctx context.Context, id int64, datetime string, partySize int, status entity.ReservationStatus, confNumber *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return entity.ErrBotpressReservationNotFound
	}
	r.Datetime, r.PartySize, r.Status = datetime, partySize, status
	if confNumber != nil {
		r.ConfNumber = confNumber
	}
	return nil
}

func (f *fakeBotpressRepo) UpdateStatus(ctx context.Context, id int64, status entity.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.items[id]
	if !ok {
		return entity.ErrBotpressReservationNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeBotpressRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return entity.ErrBotpressReservationNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeBotpressRepo) nullReservationRef(reservationID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.items {
		if r.ReservationID != nil && *r.ReservationID == reservationID {
			r.ReservationID = nil
		}
	}
}

// fakeUserRepo — хранилище пользователей в памяти.
type fakeUserRepo struct {
	mu    sync.Mutex
	items map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.items {
		if u.Email == user.Email {
			return entity.ErrUserAlreadyExists
		}
	}
	stored := *user
	f.items[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.items[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.items {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (f *fakeUserRepo) GetAll(ctx context.Context) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.User
	for _, u := range f.items {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return entity.ErrUserNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeBotpressClient подменяет внешнюю таблицу Botpress.
type fakeBotpressClient struct {
	mu   sync.Mutex
	rows []botpress.TableRow

	failList   error
	failCreate error
	created    int
}

func (f *fakeBotpressClient) ListRows(ctx context.Context) ([]botpress.TableRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]botpress.TableRow, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeBotpressClient) CreateRow(ctx context.Context, row botpress.TableRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate != nil {
		return f.failCreate
	}
	f.rows = append(f.rows, row)
	f.created++
	return nil
}

// fakePublisher записывает опубликованные задачи.
type fakePublisher struct {
	mu    sync.Mutex
	tasks []*Task
	fail  error
}

func (f *fakePublisher) Publish(ctx context.Context, task *Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail != nil {
		return f.fail
	}
	f.tasks = append(f.tasks, task)
	return nil
}

var errStoreDown = errors.New("store is down")
