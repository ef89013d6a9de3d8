package pages

// Тексты, которые видит пользователь.
const (
	MsgConnection = "Ошибка соединения с сервером"

	MsgUserExists         = "Пользователь с таким email уже зарегистрирован"
	MsgUnauthorized       = "Неавторизованный доступ"
	MsgRegisterFailed     = "Ошибка регистрации"
	MsgInvalidCredentials = "Неверные учетные данные"
	MsgLoginFailed        = "Ошибка авторизации"

	MsgNotAuthorized  = "Вы не авторизованы!"
	MsgSessionExpired = "Сессия истекла. Пожалуйста, войдите заново."

	MsgProfileFailed        = "Не удалось загрузить профиль"
	MsgDepositsFailed       = "Не удалось загрузить запросы на пополнение"
	MsgDepositCreated       = "Запрос на пополнение создан!"
	MsgDepositFailed        = "Не удалось создать запрос на пополнение"
	MsgDepositStatusChanged = "Статус депозита изменен на %s"
	MsgDepositStatusFailed  = "Не удалось изменить статус депозита"
	MsgPasswordChanged      = "Пароль успешно изменен"
	MsgPasswordFailed       = "Не удалось изменить пароль"

	MsgTicketsFailed    = "Не удалось выполнить поиск билетов"
	MsgBooked           = "Билеты забронированы!"
	MsgBookingFailed    = "Не удалось забронировать билеты"
	MsgBookingsFailed   = "Не удалось загрузить бронирования"
	MsgBookingCancelled = "Бронирование отменено"
	MsgCancelFailed     = "Не удалось отменить бронирование"
)
