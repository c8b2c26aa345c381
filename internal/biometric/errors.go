package biometric

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProbe — дескриптор из запроса не 128 конечных чисел. Ошибка клиента.
	ErrInvalidProbe = errors.New("invalid face descriptor format")
	// ErrNoEnrollments — ни один пользователь еще не зарегистрировал лицо.
	ErrNoEnrollments = errors.New("no registered faces found")
	// ErrNoMatch — ближайший кандидат не прошел порог.
	ErrNoMatch = errors.New("face recognition failed")
	// ErrStorageUnavailable — не удалось прочитать кандидатов из хранилища. Можно повторить.
	ErrStorageUnavailable = errors.New("enrollment storage unavailable")
	// ErrCorruptCandidate — поврежденная запись кандидата. Наружу не отдается, кандидат пропускается.
	ErrCorruptCandidate = errors.New("corrupt candidate record")
)

// NoMatchError несет лучшее найденное расстояние для диагностических логов.
// Error() не содержит расстояния, чтобы его нельзя было вывести клиенту по ошибке.
type NoMatchError struct {
	BestDistance float64
}

func (e *NoMatchError) Error() string {
	return ErrNoMatch.Error()
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// CorruptCandidateError указывает, какая запись была пропущена.
type CorruptCandidateError struct {
	Identity string
	Length   int
}

func (e *CorruptCandidateError) Error() string {
	return fmt.Sprintf("%s: identity=%s length=%d", ErrCorruptCandidate, e.Identity, e.Length)
}

func (e *CorruptCandidateError) Unwrap() error {
	return ErrCorruptCandidate
}
