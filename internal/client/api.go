package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

// Эндпойнты бэкенда.
const (
	PathRegister       = "/auth/register"
	PathLogin          = "/auth/login"
	PathUserInfo       = "/users/info"
	PathChangePassword = "/users/change-password"
	PathDepositCreate  = "/deposits/create"
	PathDepositsLast   = "/deposits/last"
	PathDepositConfirm = "/deposits/confirm"
	PathTicketsSearch  = "/tickets/search"
	PathBookingCreate  = "/bookings/create"
	PathBookingsList   = "/bookings/list"
	PathBookingCancel  = "/bookings/cancel"
)

// API — типизированные вызовы бэкенда поверх Executor.
//
// Не-2xx ответ возвращается как *APIError; ErrTransport и
// ErrSessionExpired пробрасываются из Executor без изменений.
type API struct {
	exec *Executor
}

// NewAPI создаёт API поверх исполнителя.
func NewAPI(exec *Executor) *API {
	return &API{exec: exec}
}

// Executor — исполнитель, через который ходит API.
func (a *API) Executor() *Executor { return a.exec }

// Register регистрирует пользователя и возвращает выданную пару токенов.
// Токены НЕ сохраняются: это решает вызывающий.
func (a *API) Register(ctx context.Context, in models.RegisterRequest) (models.TokenPair, error) {
	const op = "client.API.Register"

	var out models.TokenPair
	if err := a.anonymous(ctx, PathRegister, in, &out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Login обменивает учётные данные на пару токенов.
func (a *API) Login(ctx context.Context, in models.LoginRequest) (models.TokenPair, error) {
	const op = "client.API.Login"

	var out models.TokenPair
	if err := a.anonymous(ctx, PathLogin, in, &out); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *API) UserInfo(ctx context.Context) (models.UserProfile, error) {
	const op = "client.API.UserInfo"

	var out models.UserProfile
	if err := a.call(ctx, http.MethodGet, PathUserInfo, nil, &out); err != nil {
		return models.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ChangePassword возвращает текстовое подтверждение сервера.
func (a *API) ChangePassword(ctx context.Context, in models.ChangePasswordRequest) (string, error) {
	const op = "client.API.ChangePassword"

	msg, err := a.message(ctx, http.MethodPut, PathChangePassword, in)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

// CreateDeposit создаёт запрос на пополнение на amount.
func (a *API) CreateDeposit(ctx context.Context, amount int) (string, error) {
	const op = "client.API.CreateDeposit"

	msg, err := a.message(ctx, http.MethodPost, PathDepositCreate, models.DepositCreateRequest{Amount: amount})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

// LastDeposits — последние запросы на пополнение пользователя.
func (a *API) LastDeposits(ctx context.Context) ([]models.Deposit, error) {
	const op = "client.API.LastDeposits"

	var out []models.Deposit
	if err := a.call(ctx, http.MethodGet, PathDepositsLast, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ConfirmDeposit переводит депозит в completed или failed.
func (a *API) ConfirmDeposit(ctx context.Context, id int64, status models.DepositStatus) (string, error) {
	const op = "client.API.ConfirmDeposit"

	msg, err := a.message(ctx, http.MethodPost, PathDepositConfirm, models.DepositConfirmRequest{DepositID: id, Status: status})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (a *API) SearchTickets(ctx context.Context, q models.TicketSearch) (models.TicketPage, error) {
	const op = "client.API.SearchTickets"

	var out models.TicketPage
	if err := a.call(ctx, http.MethodPost, PathTicketsSearch, q, &out); err != nil {
		return models.TicketPage{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *API) CreateBooking(ctx context.Context, in models.BookingCreateRequest) (models.Booking, error) {
	const op = "client.API.CreateBooking"

	var out models.Booking
	if err := a.call(ctx, http.MethodPost, PathBookingCreate, in, &out); err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *API) ListBookings(ctx context.Context) ([]models.Booking, error) {
	const op = "client.API.ListBookings"

	var out []models.Booking
	if err := a.call(ctx, http.MethodGet, PathBookingsList, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (a *API) CancelBooking(ctx context.Context, id int64) (string, error) {
	const op = "client.API.CancelBooking"

	msg, err := a.message(ctx, http.MethodPost, PathBookingCancel, models.BookingCancelRequest{BookingID: id})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

// anonymous — POST без bearer-токена и без обновления.
func (a *API) anonymous(ctx context.Context, path string, in, out any) error {
	res, err := a.exec.Execute(ctx, Request{Method: http.MethodPost, Path: path, Body: in, Anonymous: true})
	if err != nil {
		return err
	}

	if !res.OK() {
		return res.apiError()
	}

	return res.Decode(out)
}

// call выполняет запрос и декодирует успешный ответ в out (если не nil).
func (a *API) call(ctx context.Context, method, path string, in, out any) error {
	res, err := a.exec.Execute(ctx, Request{Method: method, Path: path, Body: in})
	if err != nil {
		return err
	}

	if !res.OK() {
		return res.apiError()
	}

	if out == nil {
		return nil
	}

	return res.Decode(out)
}

// message — вызов эндпойнта, отвечающего произвольным текстом.
func (a *API) message(ctx context.Context, method, path string, in any) (string, error) {
	res, err := a.exec.Execute(ctx, Request{Method: method, Path: path, Body: in})
	if err != nil {
		return "", err
	}

	if !res.OK() {
		return "", res.apiError()
	}

	return res.Message(), nil
}
