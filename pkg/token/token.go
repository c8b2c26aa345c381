package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/modlrn/go-backend/pkg/e"
	"github.com/golang-jwt/jwt/v5"
)

// Claims — полезная нагрузка access-токена. Subject содержит ID пользователя.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет HS256 access-токены.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue выпускает токен для пользователя.
func (m *Manager) Issue(userID, email string) (string, error) {
	const op = "TokenManager.Issue"

	now := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return signed, nil
}

// Verify проверяет подпись и срок действия, возвращает ID пользователя.
func (m *Manager) Verify(raw string) (string, error) {
	const op = "TokenManager.Verify"

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", e.Wrap(op, errors.Join(e.ErrInvalidToken, err))
	}

	if claims.Subject == "" {
		return "", e.Wrap(op, e.ErrInvalidToken)
	}

	return claims.Subject, nil
}
