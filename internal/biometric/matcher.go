package biometric

import (
	"context"
	"fmt"

	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

const (
	// DescriptorSize — длина дескриптора лица.
	DescriptorSize = 128
	// Threshold — максимальное (невключительно) расстояние, при котором лицо считается совпавшим.
	Threshold = 0.8
)

// Candidate — зарегистрированная пара (пользователь, дескриптор).
type Candidate struct {
	Identity string
	Vector   []float64
}

// Match — успешный результат сопоставления.
type Match struct {
	Identity string
	Distance float64
}

// CandidateSource отдает снимок всех зарегистрированных дескрипторов.
// Записи без дескриптора в снимок не попадают.
type CandidateSource interface {
	ListEnrolled(ctx context.Context) ([]Candidate, error)
}

// Matcher ищет ближайшего зарегистрированного пользователя для дескриптора из запроса.
type Matcher struct {
	source    CandidateSource
	threshold float64
	logger    logger.Logger
}

func NewMatcher(source CandidateSource, logger logger.Logger) *Matcher {
	return &Matcher{
		source:    source,
		threshold: Threshold,
		logger:    logger,
	}
}

// ValidateDescriptor проверяет длину и конечность всех компонент дескриптора.
func ValidateDescriptor(v []float64) error {
	if len(v) != DescriptorSize {
		return ErrInvalidProbe
	}
	for _, x := range v {
		if !isFinite(x) {
			return ErrInvalidProbe
		}
	}
	return nil
}

// Match сопоставляет probe со всеми зарегистрированными дескрипторами.
//
// Ошибки: ErrInvalidProbe (до обращения к хранилищу), ErrStorageUnavailable,
// ErrNoEnrollments, *NoMatchError (errors.Is(err, ErrNoMatch)).
func (m *Matcher) Match(ctx context.Context, probe []float64) (*Match, error) {
	const op = "Matcher.Match"

	if err := ValidateDescriptor(probe); err != nil {
		return nil, e.Wrap(op, err)
	}

	candidates, err := m.source.ListEnrolled(ctx)
	if err != nil {
		return nil, e.Wrap(op, joinStorage(err))
	}

	if len(candidates) == 0 {
		return nil, e.Wrap(op, ErrNoEnrollments)
	}

	best := m.selectBest(probe, candidates)
	if best.skipped > 0 {
		m.logger.Warnf("%s: skipped %d corrupt candidate record(s) out of %d", op, best.skipped, len(candidates))
	}

	if !best.found || best.distance >= m.threshold {
		m.logger.Debugf("%s: no match, best distance %.4f (threshold %.2f)", op, best.distance, m.threshold)
		return nil, &NoMatchError{BestDistance: best.distance}
	}

	return &Match{Identity: best.identity, Distance: best.distance}, nil
}

// bestSoFar — аккумулятор свертки по кандидатам.
type bestSoFar struct {
	identity string
	distance float64
	found    bool
	skipped  int
}

// selectBest сворачивает кандидатов в ближайшего. Побеждает первый кандидат со строго меньшим
// расстоянием, поэтому при равенстве выигрывает встреченный раньше.
func (m *Matcher) selectBest(probe []float64, candidates []Candidate) bestSoFar {
	acc := bestSoFar{distance: MaxDistance}
	for _, c := range candidates {
		acc = m.step(acc, probe, c)
	}
	return acc
}

func (m *Matcher) step(acc bestSoFar, probe []float64, c Candidate) bestSoFar {
	if err := ValidateDescriptor(c.Vector); err != nil {
		m.logger.Warnf("%v", &CorruptCandidateError{Identity: c.Identity, Length: len(c.Vector)})
		acc.skipped++
		return acc
	}

	d := Euclidean(probe, c.Vector)
	if d < acc.distance {
		acc.identity = c.Identity
		acc.distance = d
		acc.found = true
	}

	return acc
}

func joinStorage(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
