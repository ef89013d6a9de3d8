// tokens — хранилище пары токенов клиента (accessToken/refreshToken).
//
// Store — аналог localStorage браузера: долговечное key-value хранилище,
// общее для всех «страниц» одного источника (origin). Контроллеры и
// исполнитель запросов получают Store явно, без глобального состояния.
//
// Все реализации безопасны для конкурентного использования.
package tokens

import (
	"context"
	"fmt"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

// Имена ключей пары токенов.
const (
	KeyAccess  = "accessToken"
	KeyRefresh = "refreshToken"
)

// Store — минимальный контракт хранилища.
type Store interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, name string) (string, bool, error)
	// Set сохраняет значение. Пустое значение удаляет ключ.
	Set(ctx context.Context, name, value string) error
	// Clear удаляет все ключи хранилища.
	Clear(ctx context.Context) error
}

// Provider выдаёт отдельное хранилище на каждую браузерную сессию
// (используется веб-шлюзом).
type Provider interface {
	ForSession(id string) Store
}

// LoadPair читает оба токена. Отсутствующий токен даёт пустую строку.
func LoadPair(ctx context.Context, s Store) (models.TokenPair, error) {
	const op = "tokens.LoadPair"

	access, _, err := s.Get(ctx, KeyAccess)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: access: %w", op, err)
	}

	refresh, _, err := s.Get(ctx, KeyRefresh)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: refresh: %w", op, err)
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SavePair записывает оба токена. Сначала refresh, затем access:
// при сбое между записями в хранилище не окажется нового access-токена
// без соответствующего ему refresh.
func SavePair(ctx context.Context, s Store, p models.TokenPair) error {
	const op = "tokens.SavePair"

	if err := s.Set(ctx, KeyRefresh, p.RefreshToken); err != nil {
		return fmt.Errorf("%s: refresh: %w", op, err)
	}

	if err := s.Set(ctx, KeyAccess, p.AccessToken); err != nil {
		return fmt.Errorf("%s: access: %w", op, err)
	}

	return nil
}

// Authenticated сообщает, лежат ли в хранилище оба токена.
func Authenticated(ctx context.Context, s Store) (bool, error) {
	p, err := LoadPair(ctx, s)
	if err != nil {
		return false, err
	}

	return p.Complete(), nil
}
