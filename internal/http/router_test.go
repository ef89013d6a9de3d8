package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/fakebackend"
	apierrors "github.com/pribylovaa/ticket-booking-client/internal/http/errors"
	"github.com/pribylovaa/ticket-booking-client/internal/http/handlers"
	"github.com/pribylovaa/ticket-booking-client/internal/http/middleware"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
)

const (
	testEmail    = "anna@mail.ru"
	testPassword = "Passw0rd!"
)

type gatewayResponse struct {
	pages.Snapshot
	Error *apierrors.APIError `json:"error"`
}

// stand — fake-бэкенд и шлюз поверх него, оба за httptest.
type stand struct {
	be      *fakebackend.Backend
	backend *httptest.Server
	gateway *httptest.Server
}

func newStand(t *testing.T, opts Options) *stand {
	t.Helper()

	s := &stand{be: fakebackend.New(fakebackend.Config{AccessTTL: time.Minute, RefreshTTL: time.Hour})}
	s.be.SeedDemo(time.Now())
	s.backend = httptest.NewServer(s.be.Handler(nil))
	t.Cleanup(s.backend.Close)

	h := handlers.New(tokens.NewMemoryProvider(time.Hour), func(store tokens.Store) *client.API {
		return client.NewAPI(client.NewExecutor(s.backend.URL, store))
	})

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.gateway = httptest.NewServer(NewRouter(h, opts))
	t.Cleanup(s.gateway.Close)

	return s
}

// browser — клиент с собственной cookie-банкой: отдельная сессия.
func (s *stand) browser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func (s *stand) call(t *testing.T, c *http.Client, method, path string, body any) (int, gatewayResponse) {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.gateway.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	var out gatewayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (s *stand) signUp(t *testing.T, c *http.Client) {
	t.Helper()

	status, out := s.call(t, c, http.MethodPost, "/auth/register", models.RegisterRequest{
		Firstname: "Анна",
		Lastname:  "Смирнова",
		Email:     testEmail,
		Password:  testPassword,
		BirthDate: "1995-05-05",
	})
	require.Equal(t, http.StatusOK, status, out)
	require.Equal(t, pages.PageHome, out.Navigate)
}

func TestGateway_AccountWithoutSession(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	status, out := s.call(t, s.browser(t), http.MethodGet, "/account", nil)

	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, pages.PageLogin, out.Navigate)
	require.Equal(t, []string{pages.MsgNotAuthorized}, out.Notices)
	require.NotNil(t, out.Error)
	require.Equal(t, "unauthenticated", out.Error.Code)
	require.NotEmpty(t, out.Error.RequestID)
}

func TestGateway_RegisterThenAccount(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	b := s.browser(t)
	s.signUp(t, b)

	status, out := s.call(t, b, http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, out.Error)
	require.NotNil(t, out.Profile)
	require.Equal(t, testEmail, out.Profile.Email)
	require.Zero(t, out.Profile.Balance)
	require.Empty(t, out.Deposits)
}

func TestGateway_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	s.signUp(t, s.browser(t))

	status, _ := s.call(t, s.browser(t), http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestGateway_RegisterValidationAndDuplicate(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	b := s.browser(t)

	status, out := s.call(t, b, http.MethodPost, "/auth/register", models.RegisterRequest{
		Firstname: "Анна", Lastname: "Смирнова", Email: "bad", Password: "short", BirthDate: "1995-05-05",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_argument", out.Error.Code)
	require.Equal(t, validate.MsgPassword+"\n"+validate.MsgEmail, out.Errors[pages.FormRegister])

	s.signUp(t, b)

	status, out = s.call(t, s.browser(t), http.MethodPost, "/auth/register", models.RegisterRequest{
		Firstname: "Анна", Lastname: "Смирнова", Email: testEmail, Password: testPassword, BirthDate: "1995-05-05",
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, pages.MsgUserExists, out.Errors[pages.FormRegister])
}

func TestGateway_Login(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	s.signUp(t, s.browser(t))

	b := s.browser(t)
	status, out := s.call(t, b, http.MethodPost, "/auth/login", models.LoginRequest{Email: testEmail, Password: "Wrong123!"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, pages.MsgInvalidCredentials, out.Errors[pages.FormLogin])

	status, out = s.call(t, b, http.MethodPost, "/auth/login", models.LoginRequest{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, pages.PageHome, out.Navigate)

	status, _ = s.call(t, b, http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusOK, status)
}

func TestGateway_Deposits(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	b := s.browser(t)
	s.signUp(t, b)

	status, out := s.call(t, b, http.MethodPost, "/account/deposits", `{"amount":"abc"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, []string{validate.MsgAmount}, out.Notices)

	status, out = s.call(t, b, http.MethodPost, "/account/deposits", `{"amount":300}`)
	require.Equal(t, http.StatusOK, status, out)
	require.Contains(t, out.Notices, pages.MsgDepositCreated)
	require.Len(t, out.Deposits, 1)
	require.Equal(t, 300, out.Deposits[0].Amount)
	require.Equal(t, models.DepositPending, out.Deposits[0].Status)

	path := fmt.Sprintf("/account/deposits/%d/status", out.Deposits[0].ID)
	status, out = s.call(t, b, http.MethodPost, path, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, status, out)
	require.Contains(t, out.Notices, fmt.Sprintf(pages.MsgDepositStatusChanged, "completed"))
	require.NotNil(t, out.Profile)
	require.EqualValues(t, 300, out.Profile.Balance)

	status, out = s.call(t, b, http.MethodPost, path, `{"status":"failed"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.NotEmpty(t, out.Notices)
}

func TestGateway_BadRequests(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	b := s.browser(t)

	status, out := s.call(t, b, http.MethodPost, "/auth/login", `{"email":`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_argument", out.Error.Code)

	status, _ = s.call(t, b, http.MethodPost, "/auth/login", `{"email":"a@b.c","password":"x","extra":1}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = s.call(t, b, http.MethodPost, "/account/deposits/abc/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestGateway_TicketsAndBookings(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{BasePath: "/api"})
	b := s.browser(t)

	status, _ := s.call(t, b, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Firstname: "Анна", Lastname: "Смирнова", Email: testEmail, Password: testPassword, BirthDate: "1995-05-05",
	})
	require.Equal(t, http.StatusOK, status)

	_, out := s.call(t, b, http.MethodPost, "/api/account/deposits", `{"amount":"50000"}`)
	require.Len(t, out.Deposits, 1)
	status, _ = s.call(t, b, http.MethodPost, fmt.Sprintf("/api/account/deposits/%d/status", out.Deposits[0].ID), `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, status)

	status, out = s.call(t, b, http.MethodPost, "/api/tickets/search", models.TicketSearch{From: "Москва", To: "Казань", Type: models.TransportTrain})
	require.Equal(t, http.StatusOK, status, out)
	require.NotNil(t, out.Tickets)
	require.Len(t, out.Tickets.Tickets, 3)
	ticket := out.Tickets.Tickets[0]

	status, out = s.call(t, b, http.MethodPost, "/api/bookings", models.BookingCreateRequest{TicketID: ticket.ID, TicketQuantity: 2})
	require.Equal(t, http.StatusOK, status, out)
	require.Contains(t, out.Notices, pages.MsgBooked)
	require.Len(t, out.Bookings, 1)
	bookingID := out.Bookings[0].ID

	status, out = s.call(t, b, http.MethodPost, "/api/bookings", models.BookingCreateRequest{TicketID: ticket.ID, TicketQuantity: 0})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, validate.MsgQuantity, out.Errors[pages.FormBooking])

	status, out = s.call(t, b, http.MethodPost, fmt.Sprintf("/api/bookings/%d/cancel", bookingID), nil)
	require.Equal(t, http.StatusOK, status, out)
	require.Contains(t, out.Notices, pages.MsgBookingCancelled)

	status, out = s.call(t, b, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, out.Bookings, 1)
	require.Equal(t, fakebackend.BookingCanceled, out.Bookings[0].Status)
}

func TestGateway_Logout(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	b := s.browser(t)
	s.signUp(t, b)

	status, out := s.call(t, b, http.MethodPost, "/account/logout", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, pages.PageAuth, out.Navigate)

	status, _ = s.call(t, b, http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestGateway_BackendDown(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	b := s.browser(t)
	s.signUp(t, b)
	s.backend.Close()

	status, out := s.call(t, b, http.MethodGet, "/account", nil)
	require.Equal(t, http.StatusBadGateway, status)
	require.Equal(t, "unavailable", out.Error.Code)
	require.Contains(t, out.Notices, pages.MsgConnection)
}

func TestGateway_UnknownRoute(t *testing.T) {
	t.Parallel()

	s := newStand(t, Options{})
	resp, err := s.browser(t).Get(s.gateway.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
