package fakebackend

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
	"github.com/pribylovaa/ticket-booking-client/pkg/redact"
)

const birthDateLayout = "2006-01-02"

// Register создаёт пользователя с нулевым балансом и выдаёт пару токенов.
func (b *Backend) Register(ctx context.Context, in models.RegisterRequest) (models.TokenPair, error) {
	const op = "fakebackend.Register"

	var v validation
	v.check(strings.TrimSpace(in.Firstname) != "", "firstname", "must not be blank")
	v.check(strings.TrimSpace(in.Lastname) != "", "lastname", "must not be blank")
	_, err := mail.ParseAddress(in.Email)
	v.check(err == nil, "email", "must be a well-formed email address")
	v.check(in.Password != "", "password", "must not be blank")
	_, err = time.Parse(birthDateLayout, in.BirthDate)
	v.check(err == nil, "birthDate", "must be a date in format yyyy-MM-dd")
	if err := v.err(); err != nil {
		return models.TokenPair{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, ok := b.byEmail[email]; ok {
		return models.TokenPair{}, ErrUserExists
	}

	u := &user{
		UserProfile: models.UserProfile{
			ID:        b.nextID(),
			Email:     email,
			Firstname: in.Firstname,
			Lastname:  in.Lastname,
			BirthDate: in.BirthDate,
		},
		passwordHash: string(hash),
	}
	b.users[u.ID] = u
	b.byEmail[email] = u.ID

	log.From(ctx).Info("fake_user_registered",
		slog.String("op", op),
		slog.Int64("user_id", u.ID),
		slog.String("email", redact.Email(email)),
	)

	return b.issuePair(u)
}

// Login проверяет пароль, отзывает прежние refresh-токены пользователя
// и выдаёт новую пару.
func (b *Backend) Login(ctx context.Context, in models.LoginRequest) (models.TokenPair, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.byEmail[strings.ToLower(strings.TrimSpace(in.Email))]
	if !ok {
		return models.TokenPair{}, ErrInvalidCredentials
	}

	u := b.users[id]
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(in.Password)) != nil {
		return models.TokenPair{}, ErrInvalidCredentials
	}

	for h, e := range b.refresh {
		if e.userID == id {
			delete(b.refresh, h)
		}
	}

	return b.issuePair(u)
}

// Refresh выдаёт новый access-токен. Refresh-токен не ротируется:
// в ответе только accessToken.
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "fakebackend.Refresh"

	b.mu.Lock()
	defer b.mu.Unlock()

	h := hashToken(refreshToken)
	e, ok := b.refresh[h]
	if !ok {
		return models.TokenPair{}, ErrInvalidRefresh
	}

	if b.now().After(e.expiresAt) {
		for hh, ee := range b.refresh {
			if ee.userID == e.userID {
				delete(b.refresh, hh)
			}
		}
		return models.TokenPair{}, ErrRefreshExpired
	}

	u, ok := b.users[e.userID]
	if !ok {
		return models.TokenPair{}, ErrInvalidRefresh
	}

	access, err := b.signAccess(u)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("fake_token_refreshed", slog.String("op", op), slog.Int64("user_id", u.ID))
	return models.TokenPair{AccessToken: access}, nil
}

// RevokeRefresh делает refresh-токен недействительным (для тестов
// «сессия истекла»).
func (b *Backend) RevokeRefresh(refreshToken string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.refresh, hashToken(refreshToken))
}

func (b *Backend) UserInfo(userID int64) (models.UserProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[userID]
	if !ok {
		return models.UserProfile{}, ErrInvalidToken
	}

	return u.UserProfile, nil
}

// ChangePassword меняет пароль при верном старом.
func (b *Backend) ChangePassword(userID int64, in models.ChangePasswordRequest) error {
	const op = "fakebackend.ChangePassword"

	var v validation
	v.check(in.NewPassword != "", "newPassword", "must not be blank")
	v.check(in.OldPassword != "", "oldPassword", "must not be blank")
	if err := v.err(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[userID]
	if !ok {
		return ErrInvalidToken
	}

	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(in.OldPassword)) != nil {
		return ErrOldPassword
	}

	u.passwordHash = string(hash)
	return nil
}

// CreateDeposit создаёт ожидающий запрос на пополнение.
func (b *Backend) CreateDeposit(userID int64, amount int) (models.Deposit, error) {
	var v validation
	v.check(amount > 0, "amount", "must be greater than 0")
	if err := v.err(); err != nil {
		return models.Deposit{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	d := &depositRow{
		Deposit: models.Deposit{
			ID:        b.nextID(),
			Amount:    amount,
			Status:    models.DepositPending,
			CreatedAt: models.Timestamp{Time: b.now()},
		},
		userID: userID,
	}
	b.deposits[d.ID] = d

	return d.Deposit, nil
}

// ConfirmDeposit завершает ожидающий депозит; completed пополняет баланс.
func (b *Backend) ConfirmDeposit(userID, depositID int64, status models.DepositStatus) error {
	var v validation
	v.check(status == models.DepositCompleted || status == models.DepositFailed, "status", "must be completed or failed")
	if err := v.err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.deposits[depositID]
	if !ok || d.userID != userID {
		return ErrDepositNotFound
	}

	if !d.Pending() {
		return ErrDepositProcessed
	}

	if status == models.DepositCompleted {
		b.users[userID].Balance += int64(d.Amount)
	}
	d.Status = status

	return nil
}

func (b *Backend) LastDeposits(userID int64) []models.Deposit {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.userDeposits(userID)
}

// SearchTickets — курсорный поиск по маршруту, упорядоченный по
// (departureTime, id).
func (b *Backend) SearchTickets(q models.TicketSearch) (models.TicketPage, error) {
	var v validation
	v.check(strings.TrimSpace(q.From) != "", "from", "must not be blank")
	v.check(strings.TrimSpace(q.To) != "", "to", "must not be blank")
	v.check(q.PageSize == 0 || (q.PageSize >= 5 && q.PageSize <= 15), "pageSize", "must be between 5 and 15")
	if err := v.err(); err != nil {
		return models.TicketPage{}, err
	}

	if q.PageSize == 0 {
		q.PageSize = 10
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	route := false
	var found []models.Ticket
	for _, t := range b.tickets {
		if t.DepartureCity != q.From || t.ArrivalCity != q.To {
			continue
		}
		route = true

		if q.Type != "" && t.TransportType != q.Type {
			continue
		}
		if q.StartTime != nil && t.DepartureTime.Before(q.StartTime.Time) {
			continue
		}
		if q.EndTime != nil && t.DepartureTime.After(q.EndTime.Time) {
			continue
		}
		if q.LastDepartureTime != nil && !after(*t, q.LastDepartureTime.Time, q.LastID) {
			continue
		}

		found = append(found, *t)
	}

	if !route {
		return models.TicketPage{}, ErrRouteNotFound
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].DepartureTime.Equal(found[j].DepartureTime.Time) {
			return found[i].DepartureTime.Before(found[j].DepartureTime.Time)
		}
		return found[i].ID < found[j].ID
	})

	if len(found) > q.PageSize {
		found = found[:q.PageSize]
	}

	page := models.TicketPage{Tickets: found}
	if page.Tickets == nil {
		page.Tickets = []models.Ticket{}
	}

	if n := len(found); n > 0 {
		last := found[n-1]
		cursor := last.DepartureTime
		id := last.ID
		page.NextCursor = &cursor
		page.NextID = &id
	}

	return page, nil
}

// after — билет строго после курсора (time, id).
func after(t models.Ticket, at time.Time, id int64) bool {
	if t.DepartureTime.Equal(at) {
		return t.ID > id
	}

	return t.DepartureTime.After(at)
}

// CreateBooking списывает стоимость с баланса и резервирует билеты.
func (b *Backend) CreateBooking(userID int64, in models.BookingCreateRequest) (models.Booking, error) {
	var v validation
	v.check(in.TicketID > 0, "ticketId", "must not be null")
	v.check(in.TicketQuantity >= 1, "ticketQuantity", "must be greater than or equal to 1")
	if err := v.err(); err != nil {
		return models.Booking{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tickets[in.TicketID]
	if !ok {
		return models.Booking{}, ErrTicketNotFound
	}

	if t.AvailableTickets < in.TicketQuantity {
		return models.Booking{}, ErrNotEnoughTickets
	}

	u := b.users[userID]
	cost := int64(t.Price) * int64(in.TicketQuantity)
	if u.Balance < cost {
		return models.Booking{}, ErrInsufficientFunds
	}

	u.Balance -= cost
	t.AvailableTickets -= in.TicketQuantity

	bk := &models.Booking{
		ID:             b.nextID(),
		UserID:         userID,
		TicketID:       t.ID,
		BookingTime:    models.Timestamp{Time: b.now()},
		Status:         BookingPending,
		TicketQuantity: in.TicketQuantity,
	}
	b.bookings[bk.ID] = bk

	return *bk, nil
}

func (b *Backend) ListBookings(userID int64) []models.Booking {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, bk := range b.bookings {
		if bk.UserID == userID {
			out = append(out, *bk)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CancelBooking отменяет бронь и возвращает билеты в продажу.
// Стоимость не возвращается.
func (b *Backend) CancelBooking(userID, bookingID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bk, ok := b.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}

	if bk.UserID != userID {
		return ErrForeignBooking
	}

	if bk.Status == BookingCanceled {
		return ErrBookingCanceled
	}

	bk.Status = BookingCanceled
	if t, ok := b.tickets[bk.TicketID]; ok {
		t.AvailableTickets += bk.TicketQuantity
	}

	return nil
}
