package pages

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

// AccountController — личный кабинет: профиль, баланс, пополнения, пароль.
type AccountController struct {
	session
}

func NewAccountController(api *client.API, store tokens.Store, view View) *AccountController {
	return &AccountController{session: session{api: api, store: store, view: view}}
}

// Load открывает кабинет: без пары токенов уводит на логин, иначе
// параллельно загружает профиль и последние пополнения.
// Порядок отрисовки не определён.
func (c *AccountController) Load(ctx context.Context) error {
	const op = "pages.AccountController.Load"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	return c.refresh(ctx)
}

// CreateDeposit создаёт запрос на пополнение на сумму raw
// (строго положительное целое) и перерисовывает список пополнений.
func (c *AccountController) CreateDeposit(ctx context.Context, raw string) error {
	const op = "pages.AccountController.CreateDeposit"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	amount, err := validate.Amount(raw)
	if err != nil {
		c.view.Notify(validate.MsgAmount)
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := c.api.CreateDeposit(ctx, amount); err != nil {
		return c.report(ctx, op, err, MsgDepositFailed)
	}

	log.From(ctx).Info("deposit_created", slog.String("op", op), slog.Int("amount", amount))
	c.view.Notify(MsgDepositCreated)

	return c.loadDeposits(ctx)
}

// ChangeDepositStatus переводит ожидающий депозит в completed или failed
// и перерисовывает профиль (баланс) и список пополнений.
func (c *AccountController) ChangeDepositStatus(ctx context.Context, id int64, status string) error {
	const op = "pages.AccountController.ChangeDepositStatus"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	st, err := validate.DepositStatus(status)
	if err != nil {
		c.view.Notify(validate.MsgDepositStatus)
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := c.api.ConfirmDeposit(ctx, id, st); err != nil {
		return c.report(ctx, op, err, MsgDepositStatusFailed)
	}

	log.From(ctx).Info("deposit_status_changed",
		slog.String("op", op),
		slog.Int64("deposit_id", id),
		slog.String("status", string(st)),
	)
	c.view.Notify(fmt.Sprintf(MsgDepositStatusChanged, st))

	return c.refresh(ctx)
}

// ChangePassword меняет пароль. Токены остаются прежними.
func (c *AccountController) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	const op = "pages.AccountController.ChangePassword"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	if err := validate.ChangePassword(oldPassword, newPassword).Err(); err != nil {
		c.view.ShowError(FormPassword, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := c.api.ChangePassword(ctx, models.ChangePasswordRequest{
		NewPassword: newPassword,
		OldPassword: oldPassword,
	})
	if err != nil {
		return c.report(ctx, op, err, MsgPasswordFailed)
	}

	c.view.Notify(MsgPasswordChanged)
	return nil
}

// Logout забывает токены и уводит на страницу аутентификации.
func (c *AccountController) Logout(ctx context.Context) error {
	const op = "pages.AccountController.Logout"

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_logged_out", slog.String("op", op))
	c.view.Navigate(PageAuth)
	return nil
}

// refresh загружает профиль и пополнения параллельно; ошибка одной
// загрузки не отменяет другую.
func (c *AccountController) refresh(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error { return c.loadProfile(ctx) })
	g.Go(func() error { return c.loadDeposits(ctx) })

	return g.Wait()
}

func (c *AccountController) loadProfile(ctx context.Context) error {
	const op = "pages.AccountController.loadProfile"

	p, err := c.api.UserInfo(ctx)
	if err != nil {
		return c.report(ctx, op, err, MsgProfileFailed)
	}

	c.view.RenderProfile(p)
	return nil
}

func (c *AccountController) loadDeposits(ctx context.Context) error {
	const op = "pages.AccountController.loadDeposits"

	ds, err := c.api.LastDeposits(ctx)
	if err != nil {
		return c.report(ctx, op, err, MsgDepositsFailed)
	}

	c.view.RenderDeposits(ds)
	return nil
}
