package pages

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/fakebackend"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
)

const (
	testEmail    = "ivan@mail.ru"
	testPassword = "Passw0rd!"
)

// env — стенд: fake-бэкенд за httptest, клиент и хранилище токенов.
type env struct {
	be    *fakebackend.Backend
	clock *fakebackend.Clock
	srv   *httptest.Server
	hits  atomic.Int32
	api   *client.API
	store tokens.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{clock: fakebackend.NewClock(time.Now())}
	e.be = fakebackend.New(fakebackend.Config{AccessTTL: time.Minute, RefreshTTL: time.Hour}, fakebackend.WithClock(e.clock.Now))

	h := e.be.Handler(nil)
	e.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.hits.Add(1)
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(e.srv.Close)

	e.store = tokens.NewMemory()
	e.api = client.NewAPI(client.NewExecutor(e.srv.URL, e.store))

	return e
}

func (e *env) auth() (*AuthController, *Recorder) {
	v := NewRecorder()
	return NewAuthController(e.api, e.store, v), v
}

func (e *env) account() (*AccountController, *Recorder) {
	v := NewRecorder()
	return NewAccountController(e.api, e.store, v), v
}

func (e *env) booking() (*BookingController, *Recorder) {
	v := NewRecorder()
	return NewBookingController(e.api, e.store, v), v
}

func registration(email, password string) models.RegisterRequest {
	return models.RegisterRequest{
		Firstname: "Иван",
		Lastname:  "Петров",
		Email:     email,
		Password:  password,
		BirthDate: "1990-01-01",
	}
}

// signUp регистрирует тестового пользователя через контроллер.
func (e *env) signUp(t *testing.T) {
	t.Helper()

	c, _ := e.auth()
	require.NoError(t, c.Register(context.Background(), registration(testEmail, testPassword)))
}

// fund зачисляет amount на баланс пользователя через подтверждённый депозит.
func (e *env) fund(t *testing.T, amount int) {
	t.Helper()

	c, _ := e.account()
	ctx := context.Background()
	require.NoError(t, c.CreateDeposit(ctx, fmt.Sprint(amount)))

	ds, err := e.api.LastDeposits(ctx)
	require.NoError(t, err)
	require.NoError(t, c.ChangeDepositStatus(ctx, ds[0].ID, "completed"))
}

func TestRegister_InvalidPasswordMakesNoNetworkCall(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	c, v := e.auth()

	err := c.Register(context.Background(), registration(testEmail, "short1!"))
	require.Error(t, err)

	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, validate.MsgPassword, v.Snapshot().Errors[FormRegister])
	require.Zero(t, e.hits.Load())
}

func TestRegister_AllValidationMessagesJoined(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	c, v := e.auth()

	require.Error(t, c.Register(context.Background(), registration("bad-email", "short")))
	require.Equal(t, validate.MsgPassword+"\n"+validate.MsgEmail, v.Snapshot().Errors[FormRegister])
	require.Zero(t, e.hits.Load())
}

func TestRegister_SuccessStoresTokensAndNavigatesHome(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	c, v := e.auth()

	require.NoError(t, c.Register(context.Background(), registration(testEmail, testPassword)))

	snap := v.Snapshot()
	require.Equal(t, PageHome, snap.Navigate)
	require.Empty(t, snap.Errors)

	pair, err := tokens.LoadPair(context.Background(), e.store)
	require.NoError(t, err)
	require.True(t, pair.Complete())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)

	c, v := e.auth()
	err := c.Register(context.Background(), registration(testEmail, testPassword))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, MsgUserExists, v.Snapshot().Errors[FormRegister])
	require.Empty(t, v.Snapshot().Navigate)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	require.NoError(t, e.store.Clear(context.Background()))

	c, v := e.auth()
	require.Error(t, c.Login(context.Background(), testEmail, "Wr0ngPass!"))
	require.Equal(t, MsgInvalidCredentials, v.Snapshot().Errors[FormLogin])

	ok, err := tokens.Authenticated(context.Background(), e.store)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	require.NoError(t, e.store.Clear(context.Background()))

	c, v := e.auth()
	require.NoError(t, c.Login(context.Background(), testEmail, testPassword))
	require.Equal(t, PageHome, v.Snapshot().Navigate)

	ok, err := tokens.Authenticated(context.Background(), e.store)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLogin_ServerUnreachable(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.srv.Close()

	c, v := e.auth()
	err := c.Login(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, client.ErrTransport)
	require.Equal(t, MsgConnection, v.Snapshot().Errors[FormLogin])
}

func TestAccountLoad_RequiresBothTokens(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	require.NoError(t, e.store.Set(context.Background(), tokens.KeyAccess, "only-access"))

	c, v := e.account()
	err := c.Load(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)

	snap := v.Snapshot()
	require.Equal(t, []string{MsgNotAuthorized}, snap.Notices)
	require.Equal(t, PageLogin, snap.Navigate)
	require.Zero(t, e.hits.Load())
}

func TestAccountLoad_RendersProfileAndDeposits(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)

	c, v := e.account()
	require.NoError(t, c.Load(context.Background()))

	snap := v.Snapshot()
	require.NotNil(t, snap.Profile)
	require.Equal(t, testEmail, snap.Profile.Email)
	require.Equal(t, int64(0), snap.Profile.Balance)
	require.Empty(t, snap.Deposits)
	require.Empty(t, snap.Notices)
}

func TestCreateDeposit_EndToEnd(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)

	c, v := e.account()
	require.NoError(t, c.CreateDeposit(context.Background(), "100"))

	snap := v.Snapshot()
	require.Equal(t, []string{MsgDepositCreated}, snap.Notices)
	require.Len(t, snap.Deposits, 1)
	require.Equal(t, 100, snap.Deposits[0].Amount)
	require.Equal(t, models.DepositPending, snap.Deposits[0].Status)
}

func TestCreateDeposit_RejectsBadAmountLocally(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	before := e.hits.Load()

	for _, raw := range []string{"", "abc", "0", "-5", "10abc", "1.5"} {
		c, v := e.account()
		require.Error(t, c.CreateDeposit(context.Background(), raw), raw)
		require.Equal(t, []string{validate.MsgAmount}, v.Snapshot().Notices, raw)
	}

	require.Equal(t, before, e.hits.Load())
}

func TestChangeDepositStatus_CompletedUpdatesBalance(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)

	c, v := e.account()
	ctx := context.Background()
	require.NoError(t, c.CreateDeposit(ctx, "250"))
	id := v.Snapshot().Deposits[0].ID

	require.NoError(t, c.ChangeDepositStatus(ctx, id, "completed"))

	snap := v.Snapshot()
	require.Contains(t, snap.Notices, "Статус депозита изменен на completed")
	require.Equal(t, int64(250), snap.Profile.Balance)
	require.Equal(t, models.DepositCompleted, snap.Deposits[0].Status)

	c2, v2 := e.account()
	require.Error(t, c2.ChangeDepositStatus(ctx, id, "failed"))
	require.Equal(t, []string{"deposit is already processed"}, v2.Snapshot().Notices)
}

func TestChangeDepositStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	before := e.hits.Load()

	c, v := e.account()
	require.Error(t, c.ChangeDepositStatus(context.Background(), 1, "pending"))
	require.Equal(t, []string{validate.MsgDepositStatus}, v.Snapshot().Notices)
	require.Equal(t, before, e.hits.Load())
}

func TestAccount_ExpiredAccessTokenRefreshedTransparently(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	ctx := context.Background()

	before, err := tokens.LoadPair(ctx, e.store)
	require.NoError(t, err)

	e.clock.Advance(2 * time.Minute)

	c, v := e.account()
	require.NoError(t, c.Load(ctx))
	require.NotNil(t, v.Snapshot().Profile)
	require.Empty(t, v.Snapshot().Notices)

	after, err := tokens.LoadPair(ctx, e.store)
	require.NoError(t, err)
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.Equal(t, before.RefreshToken, after.RefreshToken)
}

func TestAccount_SessionExpiredNotifiesOnce(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	e.clock.Advance(2 * time.Hour)

	c, v := e.account()
	err := c.Load(context.Background())
	require.ErrorIs(t, err, client.ErrSessionExpired)

	snap := v.Snapshot()
	require.Equal(t, []string{MsgSessionExpired}, snap.Notices)
	require.Equal(t, PageAuth, snap.Navigate)

	ok, err := tokens.Authenticated(context.Background(), e.store)
	require.NoError(t, err)
	require.False(t, ok)
}

// 401 без TOKEN_EXPIRED не трогает токены и не запускает refresh.
func TestAccount_UnauthorizedWithoutExpiryKeepsTokens(t *testing.T) {
	t.Parallel()

	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == client.PathRefresh {
			refreshes.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"AUTH_ERROR","message":"Доступ запрещён"}`))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	store := tokens.NewMemory()
	require.NoError(t, tokens.SavePair(ctx, store, models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}))

	v := NewRecorder()
	c := NewAccountController(client.NewAPI(client.NewExecutor(srv.URL, store)), store, v)

	err := c.Load(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, client.ErrSessionExpired)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "AUTH_ERROR", apiErr.Code)

	require.Zero(t, refreshes.Load())

	snap := v.Snapshot()
	require.Empty(t, snap.Navigate)
	require.NotContains(t, snap.Notices, MsgSessionExpired)
	require.Contains(t, snap.Notices, "Доступ запрещён")

	pair, err := tokens.LoadPair(ctx, store)
	require.NoError(t, err)
	require.Equal(t, models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, pair)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	ctx := context.Background()

	c, v := e.account()
	require.Error(t, c.ChangePassword(ctx, testPassword, "weak"))
	require.Equal(t, validate.MsgNewPassword, v.Snapshot().Errors[FormPassword])

	c, v = e.account()
	require.Error(t, c.ChangePassword(ctx, "Wr0ngOld!", "N3wPass!x"))
	require.Equal(t, []string{"Old password does not match"}, v.Snapshot().Notices)

	c, v = e.account()
	require.NoError(t, c.ChangePassword(ctx, testPassword, "N3wPass!x"))
	require.Equal(t, []string{MsgPasswordChanged}, v.Snapshot().Notices)

	a, _ := e.auth()
	require.NoError(t, a.Login(ctx, testEmail, "N3wPass!x"))
}

func TestLogout(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)

	c, v := e.account()
	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, PageAuth, v.Snapshot().Navigate)

	ok, err := tokens.Authenticated(context.Background(), e.store)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBooking_SearchBookCancel(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	ctx := context.Background()

	dep := e.clock.Now().Add(48 * time.Hour)
	ticket := e.be.AddTicket(models.Ticket{
		TransportType:    models.TransportTrain,
		DepartureCity:    "Москва",
		ArrivalCity:      "Казань",
		DepartureTime:    models.Timestamp{Time: dep},
		ArrivalTime:      models.Timestamp{Time: dep.Add(12 * time.Hour)},
		Price:            500,
		AvailableTickets: 10,
	})

	c, v := e.booking()
	require.NoError(t, c.Search(ctx, models.TicketSearch{From: " Москва ", To: "Казань"}))
	require.NotNil(t, v.Snapshot().Tickets)
	require.Len(t, v.Snapshot().Tickets.Tickets, 1)

	c, v = e.booking()
	require.Error(t, c.Book(ctx, ticket.ID, 2))
	require.Equal(t, []string{"Insufficient balance"}, v.Snapshot().Notices)

	e.fund(t, 1000)

	c, v = e.booking()
	require.NoError(t, c.Book(ctx, ticket.ID, 2))
	snap := v.Snapshot()
	require.Equal(t, []string{MsgBooked}, snap.Notices)
	require.Len(t, snap.Bookings, 1)

	c, v = e.booking()
	require.NoError(t, c.Cancel(ctx, snap.Bookings[0].ID))
	require.Equal(t, fakebackend.BookingCanceled, v.Snapshot().Bookings[0].Status)

	left, ok := e.be.Ticket(ticket.ID)
	require.True(t, ok)
	require.Equal(t, 10, left.AvailableTickets)
}

func TestBooking_ValidationBeforeNetwork(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.signUp(t)
	before := e.hits.Load()

	c, v := e.booking()
	require.Error(t, c.Search(context.Background(), models.TicketSearch{From: "Москва"}))
	require.Equal(t, validate.MsgTo, v.Snapshot().Errors[FormTickets])

	require.Error(t, c.Book(context.Background(), 1, 0))
	require.Equal(t, validate.MsgQuantity, v.Snapshot().Errors[FormBooking])

	require.Equal(t, before, e.hits.Load())
}
