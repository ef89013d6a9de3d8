// pages — контроллеры страниц клиента: аутентификация, личный кабинет,
// билеты и бронирования.
//
// Контроллер валидирует ввод, ходит в бэкенд через client.API, обновляет
// хранилище токенов и сообщает результат через View. Как именно View
// показывает результат (терминал, JSON шлюза), контроллеру безразлично.
package pages

import (
	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

// Страницы, между которыми переключается пользователь.
const (
	PageHome  = "/"
	PageLogin = "/login"
	PageAuth  = "/auth"
)

// Form — форма, к которой относится ошибка ввода.
type Form string

const (
	FormRegister Form = "register"
	FormLogin    Form = "login"
	FormDeposit  Form = "deposit"
	FormPassword Form = "password"
	FormTickets  Form = "tickets"
	FormBooking  Form = "booking"
)

// View — всё, что контроллер умеет показать пользователю.
// Реализации, используемые из нескольких горутин, должны быть потокобезопасны:
// профиль и депозиты загружаются параллельно.
type View interface {
	// ShowError — ошибка под формой.
	ShowError(form Form, msg string)
	// Notify — модальное уведомление.
	Notify(msg string)
	// Navigate — переход на страницу.
	Navigate(page string)

	RenderProfile(p models.UserProfile)
	RenderDeposits(ds []models.Deposit)
	RenderTickets(page models.TicketPage)
	RenderBookings(bs []models.Booking)
}
