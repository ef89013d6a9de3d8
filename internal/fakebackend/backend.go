// fakebackend — in-memory реализация REST-бэкенда бронирования билетов.
//
// Повторяет контракт настоящего сервера ровно настолько, насколько он
// виден клиенту: JWT access-токены с коротким TTL и ответом
// 401 {"code":"TOKEN_EXPIRED"} по истечении, непрозрачные refresh-токены
// (хранится только sha256), ошибки в формате {code, message}, текстовые
// ответы на создание/подтверждение пополнений. Используется в
// end-to-end тестах и как локальный стенд (cmd/fake-backend).
//
// Backend безопасен для конкурентного использования.
package fakebackend

import (
	"sort"
	"sync"
	"time"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

const (
	BookingPending  = "pending"
	BookingCanceled = "canceled"

	lastDepositsLimit = 10
)

// Config — параметры стенда.
type Config struct {
	// Secret — ключ подписи HS256.
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

func (c Config) withDefaults() Config {
	if c.Secret == "" {
		c.Secret = "fake-backend-secret"
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.Issuer == "" {
		c.Issuer = "ticket-booking-fake"
	}

	return c
}

type user struct {
	models.UserProfile
	passwordHash string
}

type refreshEntry struct {
	userID    int64
	expiresAt time.Time
}

// Backend — состояние стенда.
type Backend struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	users    map[int64]*user
	byEmail  map[string]int64
	refresh  map[string]refreshEntry // sha256(token) -> владелец
	deposits map[int64]*depositRow
	tickets  map[int64]*models.Ticket
	bookings map[int64]*models.Booking
	seq      int64
}

type depositRow struct {
	models.Deposit
	userID int64
}

// Option настраивает Backend.
type Option func(*Backend)

// WithClock подменяет часы: так тесты «дожидаются» истечения токенов.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

func New(cfg Config, opts ...Option) *Backend {
	b := &Backend{
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		users:    make(map[int64]*user),
		byEmail:  make(map[string]int64),
		refresh:  make(map[string]refreshEntry),
		deposits: make(map[int64]*depositRow),
		tickets:  make(map[int64]*models.Ticket),
		bookings: make(map[int64]*models.Booking),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// nextID — общий счётчик идентификаторов; вызывается под b.mu.
func (b *Backend) nextID() int64 {
	b.seq++
	return b.seq
}

// AddTicket добавляет билет в каталог и возвращает его с присвоенным id.
func (b *Backend) AddTicket(t models.Ticket) models.Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()

	t.ID = b.nextID()
	b.tickets[t.ID] = &t

	return t
}

// Ticket возвращает билет каталога по id.
func (b *Backend) Ticket(id int64) (models.Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tickets[id]
	if !ok {
		return models.Ticket{}, false
	}

	return *t, true
}

// SeedDemo наполняет каталог несколькими рейсами от now.
func (b *Backend) SeedDemo(now time.Time) {
	day := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	routes := []struct {
		from, to string
		typ      models.TransportType
		hours    int
		price    int
	}{
		{"Москва", "Казань", models.TransportTrain, 12, 2500},
		{"Москва", "Казань", models.TransportAvia, 2, 6400},
		{"Москва", "Казань", models.TransportBus, 14, 1800},
		{"Москва", "Санкт-Петербург", models.TransportTrain, 4, 3900},
		{"Санкт-Петербург", "Москва", models.TransportAvia, 1, 5200},
	}

	for i, r := range routes {
		for d := range 3 {
			dep := day.Add(time.Duration(d*24+i*2+8) * time.Hour)
			b.AddTicket(models.Ticket{
				TransportType:    r.typ,
				DepartureCity:    r.from,
				ArrivalCity:      r.to,
				DepartureTime:    models.Timestamp{Time: dep},
				ArrivalTime:      models.Timestamp{Time: dep.Add(time.Duration(r.hours) * time.Hour)},
				Price:            r.price,
				AvailableTickets: 20,
			})
		}
	}
}

// userDeposits — последние пополнения пользователя, новые первыми;
// вызывается под b.mu.
func (b *Backend) userDeposits(userID int64) []models.Deposit {
	out := make([]models.Deposit, 0)
	for _, d := range b.deposits {
		if d.userID == userID {
			out = append(out, d.Deposit)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		}
		return out[i].ID > out[j].ID
	})

	if len(out) > lastDepositsLimit {
		out = out[:lastDepositsLimit]
	}

	return out
}
