package cli

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/pages"
)

// TextView печатает результат действий контроллера в терминал.
// Потокобезопасен: профиль и пополнения рисуются из разных горутин.
type TextView struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTextView(out io.Writer) *TextView {
	return &TextView{out: out}
}

func (v *TextView) ShowError(form pages.Form, msg string) {
	v.printf("Ошибка (%s):\n%s\n", form, msg)
}

func (v *TextView) Notify(msg string) {
	v.printf("%s\n", msg)
}

// Navigate переводит переход страницы в подсказку следующей команды.
func (v *TextView) Navigate(page string) {
	switch page {
	case pages.PageHome:
		v.printf("Готово. Личный кабинет: ticket-client account\n")
	case pages.PageLogin, pages.PageAuth:
		v.printf("Войдите: ticket-client login -email <email> -password <пароль>\n")
	default:
		v.printf("-> %s\n", page)
	}
}

func (v *TextView) RenderProfile(p models.UserProfile) {
	v.mu.Lock()
	defer v.mu.Unlock()

	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Профиль\n")
	fmt.Fprintf(tw, "  ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "  Email:\t%s\n", p.Email)
	fmt.Fprintf(tw, "  Имя:\t%s %s\n", p.Firstname, p.Lastname)
	fmt.Fprintf(tw, "  Дата рождения:\t%s\n", p.BirthDate)
	fmt.Fprintf(tw, "  Баланс:\t%d\n", p.Balance)
	_ = tw.Flush()
}

func (v *TextView) RenderDeposits(ds []models.Deposit) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(ds) == 0 {
		fmt.Fprintf(v.out, "Пополнений пока нет\n")
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tСУММА\tСТАТУС\tСОЗДАН\n")
	for _, d := range ds {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", d.ID, d.Amount, d.Status, d.CreatedAt)
	}
	_ = tw.Flush()
}

func (v *TextView) RenderTickets(page models.TicketPage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(page.Tickets) == 0 {
		fmt.Fprintf(v.out, "Билетов не найдено\n")
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tТИП\tОТКУДА\tКУДА\tОТПРАВЛЕНИЕ\tПРИБЫТИЕ\tЦЕНА\tМЕСТ\n")
	for _, t := range page.Tickets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			t.ID, t.TransportType, t.DepartureCity, t.ArrivalCity,
			t.DepartureTime, t.ArrivalTime, t.Price, t.AvailableTickets)
	}
	_ = tw.Flush()

	if page.NextCursor != nil && page.NextID != nil {
		fmt.Fprintf(v.out, "Следующая страница: -after %s -after-id %d\n",
			page.NextCursor.Format("2006-01-02T15:04:05Z07:00"), *page.NextID)
	}
}

func (v *TextView) RenderBookings(bs []models.Booking) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(bs) == 0 {
		fmt.Fprintf(v.out, "Бронирований нет\n")
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tБИЛЕТ\tКОЛ-ВО\tСТАТУС\tСОЗДАНО\n")
	for _, b := range bs {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", b.ID, b.TicketID, b.TicketQuantity, b.Status, b.BookingTime)
	}
	_ = tw.Flush()
}

func (v *TextView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, format, args...)
}
