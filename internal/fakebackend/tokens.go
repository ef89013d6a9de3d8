package fakebackend

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

type accessClaims struct {
	UserID int64  `json:"id"`
	RoleID int    `json:"roleId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

const roleUser = 2

// issuePair выпускает access + refresh; вызывается под b.mu.
func (b *Backend) issuePair(u *user) (models.TokenPair, error) {
	const op = "fakebackend.issuePair"

	access, err := b.signAccess(u)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	refresh := hex.EncodeToString(raw)

	b.refresh[hashToken(refresh)] = refreshEntry{
		userID:    u.ID,
		expiresAt: b.now().Add(b.cfg.RefreshTTL),
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (b *Backend) signAccess(u *user) (string, error) {
	now := b.now()
	claims := accessClaims{
		UserID: u.ID,
		RoleID: roleUser,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			Issuer:    b.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.cfg.AccessTTL)),
			ID:        strconv.FormatInt(now.UnixNano(), 36),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.cfg.Secret))
}

// parseAccess проверяет подпись и срок access-токена по часам стенда.
func (b *Backend) parseAccess(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{},
		func(t *jwt.Token) (any, error) {
			return []byte(b.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(b.cfg.Issuer),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}

		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
