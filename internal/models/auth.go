// models — REST-модели бэкенда бронирования билетов: тела запросов/ответов
// в том виде, в каком их принимает и отдаёт сервер (camelCase JSON).
package models

// TokenPair — пара токенов, выдаваемая при регистрации/логине/обновлении.
//
// Оба токена непрозрачны для клиента. Хранятся и читаются вместе;
// отсутствие любого из них означает «не аутентифицирован».
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete сообщает, присутствуют ли оба токена.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

type RegisterRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
	OldPassword string `json:"oldPassword"`
}
