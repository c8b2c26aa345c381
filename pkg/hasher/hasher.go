package hasher

import (
	"errors"

	"github.com/modlrn/go-backend/pkg/e"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher хэширует и проверяет пароли через bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

// Hash возвращает bcrypt-хэш пароля.
func (h *BcryptHasher) Hash(password string) (string, error) {
	const op = "BcryptHasher.Hash"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return string(hash), nil
}

// Compare возвращает true, если пароль соответствует хэшу.
// Несовпадение не является ошибкой, ошибка возвращается только для поврежденного хэша.
func (h *BcryptHasher) Compare(hash, password string) (bool, error) {
	const op = "BcryptHasher.Compare"

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, e.Wrap(op, err)
}
