// cli — команды терминального клиента поверх контроллеров страниц.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
)

// ErrUsage — неверный вызов команды; справка уже напечатана.
var ErrUsage = errors.New("usage")

// App — зависимости команд.
type App struct {
	API   *client.API
	Store tokens.Store
	View  pages.View
	// Out — справка и служебный вывод.
	Out io.Writer
	Now func() time.Time
}

// usages — синтаксис команд для справки.
var usages = map[string]string{
	"register": "register -first <имя> -last <фамилия> -email <email> -password <пароль> -birth <ГГГГ-ММ-ДД>",
	"login":    "login -email <email> -password <пароль>",
	"logout":   "logout",
	"status":   "status",
	"account":  "account",
	"deposit":  "deposit <сумма>",
	"confirm":  "confirm <id> <completed|failed>",
	"password": "password -old <пароль> -new <пароль>",
	"search":   "search -from <город> -to <город> [-type bus|avia|train] [-start t] [-end t] [-page-size n] [-after t -after-id n]",
	"book":     "book <ticket-id> <количество>",
	"bookings": "bookings",
	"cancel":   "cancel <booking-id>",
}

type runFunc func(ctx context.Context, a *App, args []string) error

var commands = map[string]runFunc{
	"register": runRegister,
	"login":    runLogin,
	"logout":   runLogout,
	"status":   runStatus,
	"account":  runAccount,
	"deposit":  runDeposit,
	"confirm":  runConfirm,
	"password": runPassword,
	"search":   runSearch,
	"book":     runBook,
	"bookings": runBookings,
	"cancel":   runCancel,
}

// Run выполняет команду args[0] с аргументами args[1:].
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Now == nil {
		a.Now = time.Now
	}

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.Usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	run, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.Out, "неизвестная команда %q\n\n", args[0])
		a.Usage()
		return ErrUsage
	}

	return run(ctx, a, args[1:])
}

// Usage печатает список команд.
func (a *App) Usage() {
	names := make([]string, 0, len(usages))
	for name := range usages {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(a.Out, "Использование: ticket-client [-config путь] [-v] <команда> [аргументы]\n\nКоманды:\n")
	for _, name := range names {
		fmt.Fprintf(a.Out, "  %s\n", usages[name])
	}
}

func (a *App) auth() *pages.AuthController {
	return pages.NewAuthController(a.API, a.Store, a.View).WithClock(a.Now)
}

func (a *App) account() *pages.AccountController {
	return pages.NewAccountController(a.API, a.Store, a.View)
}

func (a *App) booking() *pages.BookingController {
	return pages.NewBookingController(a.API, a.Store, a.View)
}

// flags — набор флагов команды с выводом ошибок в a.Out.
func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	fs.Usage = func() { fmt.Fprintf(a.Out, "Использование: ticket-client %s\n", usages[name]) }
	return fs
}

func (a *App) usage(name string) error {
	fmt.Fprintf(a.Out, "Использование: ticket-client %s\n", usages[name])
	return ErrUsage
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrUsage
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func runRegister(ctx context.Context, a *App, args []string) error {
	fs := a.flags("register")
	var in models.RegisterRequest
	fs.StringVar(&in.Firstname, "first", "", "имя")
	fs.StringVar(&in.Lastname, "last", "", "фамилия")
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Password, "password", "", "пароль")
	fs.StringVar(&in.BirthDate, "birth", "", "дата рождения ГГГГ-ММ-ДД")
	if err := parse(fs, args); err != nil {
		return err
	}

	return a.auth().Register(ctx, in)
}

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "пароль")
	if err := parse(fs, args); err != nil {
		return err
	}

	return a.auth().Login(ctx, *email, *password)
}

func runLogout(ctx context.Context, a *App, _ []string) error {
	return a.account().Logout(ctx)
}

func runStatus(ctx context.Context, a *App, _ []string) error {
	ok, err := tokens.Authenticated(ctx, a.Store)
	if err != nil {
		return err
	}

	if ok {
		a.View.Notify("Вы вошли в систему")
	} else {
		a.View.Notify(pages.MsgNotAuthorized)
	}

	return nil
}

func runAccount(ctx context.Context, a *App, _ []string) error {
	return a.account().Load(ctx)
}

func runDeposit(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return a.usage("deposit")
	}

	return a.account().CreateDeposit(ctx, args[0])
}

func runConfirm(ctx context.Context, a *App, args []string) error {
	if len(args) != 2 {
		return a.usage("confirm")
	}

	id, err := validate.ID(args[0], "депозит")
	if err != nil {
		a.View.Notify(err.Error())
		return err
	}

	return a.account().ChangeDepositStatus(ctx, id, args[1])
}

func runPassword(ctx context.Context, a *App, args []string) error {
	fs := a.flags("password")
	oldPassword := fs.String("old", "", "текущий пароль")
	newPassword := fs.String("new", "", "новый пароль")
	if err := parse(fs, args); err != nil {
		return err
	}

	return a.account().ChangePassword(ctx, *oldPassword, *newPassword)
}

func runSearch(ctx context.Context, a *App, args []string) error {
	fs := a.flags("search")
	var (
		q                  models.TicketSearch
		typ                string
		start, end, cursor string
	)
	fs.StringVar(&q.From, "from", "", "город отправления")
	fs.StringVar(&q.To, "to", "", "город прибытия")
	fs.StringVar(&typ, "type", "", "bus, avia или train")
	fs.StringVar(&start, "start", "", "начало периода (RFC 3339 или ГГГГ-ММ-ДДTчч:мм)")
	fs.StringVar(&end, "end", "", "конец периода")
	fs.IntVar(&q.PageSize, "page-size", validate.DefaultPageSize, "размер страницы 5..15")
	fs.StringVar(&cursor, "after", "", "курсор: время отправления последнего билета")
	fs.Int64Var(&q.LastID, "after-id", 0, "курсор: id последнего билета")
	if err := parse(fs, args); err != nil {
		return err
	}

	q.Type = models.TransportType(strings.ToLower(typ))

	for _, f := range []struct {
		raw string
		dst **models.Timestamp
	}{
		{start, &q.StartTime},
		{end, &q.EndTime},
		{cursor, &q.LastDepartureTime},
	} {
		if f.raw == "" {
			continue
		}

		ts, err := models.ParseTimestamp(f.raw)
		if err != nil {
			a.View.ShowError(pages.FormTickets, err.Error())
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		*f.dst = &ts
	}

	return a.booking().Search(ctx, q)
}

func runBook(ctx context.Context, a *App, args []string) error {
	if len(args) != 2 {
		return a.usage("book")
	}

	ticketID, err := validate.ID(args[0], "билет")
	if err != nil {
		a.View.ShowError(pages.FormBooking, err.Error())
		return err
	}

	qty, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil {
		a.View.ShowError(pages.FormBooking, validate.MsgQuantity)
		return validate.Errors{validate.MsgQuantity}
	}

	return a.booking().Book(ctx, ticketID, qty)
}

func runBookings(ctx context.Context, a *App, _ []string) error {
	return a.booking().List(ctx)
}

func runCancel(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return a.usage("cancel")
	}

	id, err := validate.ID(args[0], "бронирование")
	if err != nil {
		a.View.ShowError(pages.FormBooking, err.Error())
		return err
	}

	return a.booking().Cancel(ctx, id)
}
