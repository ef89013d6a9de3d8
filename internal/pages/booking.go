package pages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/pribylovaa/ticket-booking-client/internal/tokens"
	"github.com/pribylovaa/ticket-booking-client/internal/validate"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

// BookingController — поиск билетов и бронирования пользователя.
type BookingController struct {
	session
}

func NewBookingController(api *client.API, store tokens.Store, view View) *BookingController {
	return &BookingController{session: session{api: api, store: store, view: view}}
}

// Search ищет билеты; следующая страница запрашивается с курсором
// (LastDepartureTime, LastID) из предыдущего ответа.
func (c *BookingController) Search(ctx context.Context, q models.TicketSearch) error {
	const op = "pages.BookingController.Search"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	q, errs := validate.TicketSearch(q)
	if err := errs.Err(); err != nil {
		c.view.ShowError(FormTickets, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	page, err := c.api.SearchTickets(ctx, q)
	if err != nil {
		return c.report(ctx, op, err, MsgTicketsFailed)
	}

	c.view.RenderTickets(page)
	return nil
}

// Book бронирует qty билетов и перерисовывает список бронирований.
func (c *BookingController) Book(ctx context.Context, ticketID int64, qty int) error {
	const op = "pages.BookingController.Book"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	if err := validate.Quantity(qty); err != nil {
		c.view.ShowError(FormBooking, err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	b, err := c.api.CreateBooking(ctx, models.BookingCreateRequest{TicketID: ticketID, TicketQuantity: qty})
	if err != nil {
		return c.report(ctx, op, err, MsgBookingFailed)
	}

	log.From(ctx).Info("booking_created",
		slog.String("op", op),
		slog.Int64("booking_id", b.ID),
		slog.Int64("ticket_id", ticketID),
		slog.Int("quantity", qty),
	)
	c.view.Notify(MsgBooked)

	return c.list(ctx)
}

// List показывает бронирования пользователя.
func (c *BookingController) List(ctx context.Context) error {
	const op = "pages.BookingController.List"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	return c.list(ctx)
}

// Cancel отменяет бронирование и перерисовывает список.
func (c *BookingController) Cancel(ctx context.Context, bookingID int64) error {
	const op = "pages.BookingController.Cancel"

	if err := c.requireAuth(ctx, op); err != nil {
		return err
	}

	if _, err := c.api.CancelBooking(ctx, bookingID); err != nil {
		return c.report(ctx, op, err, MsgCancelFailed)
	}

	log.From(ctx).Info("booking_cancelled", slog.String("op", op), slog.Int64("booking_id", bookingID))
	c.view.Notify(MsgBookingCancelled)

	return c.list(ctx)
}

func (c *BookingController) list(ctx context.Context) error {
	const op = "pages.BookingController.list"

	bs, err := c.api.ListBookings(ctx)
	if err != nil {
		return c.report(ctx, op, err, MsgBookingsFailed)
	}

	c.view.RenderBookings(bs)
	return nil
}
