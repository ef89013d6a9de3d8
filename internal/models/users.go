package models

// UserProfile — профиль текущего пользователя (GET /users/info).
// Клиент его только читает.
type UserProfile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	BirthDate string `json:"birthDate"`
	Balance   int64  `json:"balance"`
}
