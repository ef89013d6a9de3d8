package pages

import (
	"slices"
	"sync"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

// Snapshot — накопленный результат действий контроллера.
// Веб-шлюз отдаёт его телом ответа.
type Snapshot struct {
	Navigate string              `json:"navigate,omitempty"`
	Errors   map[Form]string     `json:"errors,omitempty"`
	Notices  []string            `json:"notices,omitempty"`
	Profile  *models.UserProfile `json:"profile,omitempty"`
	Deposits []models.Deposit    `json:"deposits,omitempty"`
	Tickets  *models.TicketPage  `json:"tickets,omitempty"`
	Bookings []models.Booking    `json:"bookings,omitempty"`
}

// Recorder — View, запоминающий всё показанное. Потокобезопасен.
type Recorder struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) ShowError(form Form, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snap.Errors == nil {
		r.snap.Errors = make(map[Form]string)
	}
	r.snap.Errors[form] = msg
}

func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Notices = append(r.snap.Notices, msg)
}

// Navigate запоминает последний переход.
func (r *Recorder) Navigate(page string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Navigate = page
}

func (r *Recorder) RenderProfile(p models.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Profile = &p
}

func (r *Recorder) RenderDeposits(ds []models.Deposit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Deposits = slices.Clone(ds)
}

func (r *Recorder) RenderTickets(page models.TicketPage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Tickets = &page
}

func (r *Recorder) RenderBookings(bs []models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Bookings = slices.Clone(bs)
}

// Snapshot возвращает копию накопленного состояния.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.snap
	if r.snap.Errors != nil {
		out.Errors = make(map[Form]string, len(r.snap.Errors))
		for k, v := range r.snap.Errors {
			out.Errors[k] = v
		}
	}
	out.Notices = slices.Clone(r.snap.Notices)
	out.Deposits = slices.Clone(r.snap.Deposits)
	out.Bookings = slices.Clone(r.snap.Bookings)

	return out
}
