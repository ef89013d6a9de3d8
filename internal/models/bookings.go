package models

type Booking struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	TicketID       int64     `json:"ticketId"`
	BookingTime    Timestamp `json:"bookingTime"`
	Status         string    `json:"status"`
	TicketQuantity int       `json:"ticketQuantity"`
}

type BookingCreateRequest struct {
	TicketID       int64 `json:"ticketId"`
	TicketQuantity int   `json:"ticketQuantity"`
}

type BookingCancelRequest struct {
	BookingID int64 `json:"bookingId"`
}
