package pgdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanDescriptor разбирает текстовое представление DOUBLE PRECISION[] так же, как это делает pgx.
func scanDescriptor(t *testing.T, literal string) pgtype.Array[pgtype.Float8] {
	t.Helper()

	var raw pgtype.Array[pgtype.Float8]
	err := pgtype.NewMap().Scan(pgtype.Float8ArrayOID, pgtype.TextFormatCode, []byte(literal), &raw)
	require.NoError(t, err)
	return raw
}

// arrayLiteral строит литерал массива из n элементов, i-й элемент задает elem.
func arrayLiteral(n int, elem func(i int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = elem(i)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func constElem(v string) func(int) string {
	return func(int) string { return v }
}

func TestDescriptorFromArray(t *testing.T) {
	full := arrayLiteral(biometric.DescriptorSize, constElem("0.25"))
	withNull := arrayLiteral(biometric.DescriptorSize, func(i int) string {
		if i == 5 {
			return "NULL"
		}
		return "0.25"
	})
	half := arrayLiteral(biometric.DescriptorSize/2, constElem("0.25"))
	twoDim := "{" + half + "," + half + "}"

	tests := []struct {
		name    string
		literal string
		wantOK  bool
		wantLen int
	}{
		{name: "valid descriptor", literal: full, wantOK: true, wantLen: biometric.DescriptorSize},
		{name: "short descriptor is returned as is", literal: "{0.1,0.2,0.3}", wantOK: true, wantLen: 3},
		{name: "null element", literal: withNull, wantOK: false},
		{name: "two dimensional array", literal: twoDim, wantOK: false},
		{name: "empty array", literal: "{}", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vector, ok := descriptorFromArray(scanDescriptor(t, tt.literal))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Len(t, vector, tt.wantLen)
			} else {
				assert.Nil(t, vector)
			}
		})
	}
}

func TestDescriptorFromArray_NullArray(t *testing.T) {
	vector, ok := descriptorFromArray(pgtype.Array[pgtype.Float8]{})
	assert.False(t, ok)
	assert.Nil(t, vector)
}

func TestDescriptorFromArray_KeepsValues(t *testing.T) {
	vector, ok := descriptorFromArray(scanDescriptor(t, "{0.1,-2.5,3}"))
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, -2.5, 3}, vector)
}

type staticCandidates []biometric.Candidate

func (s staticCandidates) ListEnrolled(context.Context) ([]biometric.Candidate, error) {
	return s, nil
}

func TestCandidateFromRow_CorruptRowDoesNotBreakMatching(t *testing.T) {
	login := arrayLiteral(biometric.DescriptorSize, constElem("0.1"))
	corrupt := arrayLiteral(biometric.DescriptorSize, func(i int) string {
		if i == 0 {
			return "NULL"
		}
		return "0.1"
	})
	half := arrayLiteral(biometric.DescriptorSize/2, constElem("0.1"))

	rows := staticCandidates{
		candidateFromRow("corrupt-null", scanDescriptor(t, corrupt)),
		candidateFromRow("corrupt-2d", scanDescriptor(t, "{"+half+","+half+"}")),
		candidateFromRow("alice", scanDescriptor(t, login)),
	}

	loginVector, ok := descriptorFromArray(scanDescriptor(t, login))
	require.True(t, ok)

	match, err := biometric.NewMatcher(rows, logger.NewNopLogger()).Match(context.Background(), loginVector)
	require.NoError(t, err)
	assert.Equal(t, "alice", match.Identity)
	assert.InDelta(t, 0, match.Distance, 1e-12)
}

func TestCandidateFromRow_OnlyCorruptRowsIsNoMatch(t *testing.T) {
	corrupt := arrayLiteral(biometric.DescriptorSize, func(i int) string {
		if i == biometric.DescriptorSize-1 {
			return "NULL"
		}
		return fmt.Sprintf("%d", i)
	})
	rows := staticCandidates{candidateFromRow("bob", scanDescriptor(t, corrupt))}

	login := make([]float64, biometric.DescriptorSize)
	_, err := biometric.NewMatcher(rows, logger.NewNopLogger()).Match(context.Background(), login)
	assert.ErrorIs(t, err, biometric.ErrNoMatch)
	assert.NotErrorIs(t, err, biometric.ErrStorageUnavailable)
}
