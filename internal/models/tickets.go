package models

// TransportType — вид транспорта билета.
type TransportType string

const (
	TransportBus   TransportType = "bus"
	TransportAvia  TransportType = "avia"
	TransportTrain TransportType = "train"
)

type Ticket struct {
	ID               int64         `json:"id"`
	TransportType    TransportType `json:"transportType"`
	DepartureCity    string        `json:"departureCity"`
	ArrivalCity      string        `json:"arrivalCity"`
	DepartureTime    Timestamp     `json:"departureTime"`
	ArrivalTime      Timestamp     `json:"arrivalTime"`
	Price            int           `json:"price"`
	AvailableTickets int           `json:"availableTickets"`
}

// TicketSearch — запрос POST /tickets/search с курсорной пагинацией
// по (departureTime, id).
type TicketSearch struct {
	Type              TransportType `json:"type,omitempty"`
	From              string        `json:"from"`
	To                string        `json:"to"`
	StartTime         *Timestamp    `json:"startTime,omitempty"`
	EndTime           *Timestamp    `json:"endTime,omitempty"`
	LastDepartureTime *Timestamp    `json:"lastDepartureTime,omitempty"`
	LastID            int64         `json:"lastId,omitempty"`
	PageSize          int           `json:"pageSize,omitempty"`
}

// TicketPage — порция результатов поиска и курсор на следующую.
type TicketPage struct {
	Tickets    []Ticket   `json:"tickets"`
	NextCursor *Timestamp `json:"nextCursor,omitempty"`
	NextID     *int64     `json:"nextId,omitempty"`
}

// HasNext сообщает, вернул ли сервер курсор следующей страницы.
func (p TicketPage) HasNext() bool { return p.NextCursor != nil && p.NextID != nil }
