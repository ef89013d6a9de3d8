package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
	"github.com/pribylovaa/ticket-booking-client/pkg/redact"
)

// AuthController — страница регистрации и входа.
type AuthController struct {
	api   *client.API
	store tokens.Store
	view  View
	now   func() time.Time
}

func NewAuthController(api *client.API, store tokens.Store, view View) *AuthController {
	return &AuthController{api: api, store: store, view: view, now: time.Now}
}

// WithClock подменяет часы (проверка возраста при регистрации).
func (c *AuthController) WithClock(now func() time.Time) *AuthController {
	c.now = now
	return c
}

// Register валидирует форму, регистрирует пользователя, сохраняет выданные
// токены и уводит на главную. Невалидная форма до сети не доходит.
func (c *AuthController) Register(ctx context.Context, in models.RegisterRequest) error {
	const op = "pages.AuthController.Register"

	if err := validate.Registration(in, c.now()).Err(); err != nil {
		c.view.ShowError(FormRegister, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	pair, err := c.api.Register(ctx, in)
	if err != nil {
		c.fail(ctx, op, FormRegister, err, MsgRegisterFailed, true)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.signIn(ctx, op, FormRegister, pair); err != nil {
		return err
	}

	log.From(ctx).Info("user_registered", slog.String("op", op), slog.String("email", redact.Email(in.Email)))
	return nil
}

// Login проверяет учётные данные и входит; ветки 409 нет.
func (c *AuthController) Login(ctx context.Context, email, password string) error {
	const op = "pages.AuthController.Login"

	if err := validate.Credentials(email, password).Err(); err != nil {
		c.view.ShowError(FormLogin, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	pair, err := c.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		c.fail(ctx, op, FormLogin, err, MsgLoginFailed, false)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.signIn(ctx, op, FormLogin, pair); err != nil {
		return err
	}

	log.From(ctx).Info("user_logged_in", slog.String("op", op), slog.String("email", redact.Email(email)))
	return nil
}

func (c *AuthController) signIn(ctx context.Context, op string, form Form, pair models.TokenPair) error {
	if !pair.Complete() {
		err := errors.New("backend returned incomplete token pair")
		c.view.ShowError(form, MsgConnection)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tokens.SavePair(ctx, c.store, pair); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.view.Navigate(PageHome)
	return nil
}

// fail показывает под формой сообщение для ошибки бэкенда.
func (c *AuthController) fail(ctx context.Context, op string, form Form, err error, fallback string, register bool) {
	lg := log.From(ctx)

	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message(fallback)
		switch {
		case register && apiErr.Status == http.StatusConflict:
			msg = MsgUserExists
		case apiErr.Status == http.StatusUnauthorized && register:
			msg = MsgUnauthorized
		case apiErr.Status == http.StatusUnauthorized:
			msg = MsgInvalidCredentials
		}
		c.view.ShowError(form, msg)
		lg.Warn("auth_rejected", slog.String("op", op), slog.Int("status", apiErr.Status), slog.String("code", apiErr.Code))

	default:
		c.view.ShowError(form, MsgConnection)
		lg.Error("auth_request_failed", slog.String("op", op), slog.String("err", err.Error()))
	}
}
