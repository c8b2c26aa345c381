package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/hasher"
	"github.com/modlrn/go-backend/pkg/logger"
	"github.com/modlrn/go-backend/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	uc         *AuthUseCase
	users      *fakeUserRepo
	enrollment *fakeEnrollmentRepo
	tokens     *token.Manager
	oauth      *fakeOAuth
}

func newAuthFixture() *authFixture {
	log := logger.NewNopLogger()
	users := newFakeUserRepo()
	enrollment := newFakeEnrollmentRepo()
	tokens := token.NewManager("test-secret", 30*time.Minute)
	oauth := &fakeOAuth{profile: &domain.GoogleProfile{
		GoogleID: "g-1",
		Email:    "Ada@Example.com",
		Name:     "Ada",
		Picture:  "https://lh3.googleusercontent.com/ada",
	}}

	uc := NewAuthUC(users, enrollment, biometric.NewMatcher(enrollment, log), tokens,
		hasher.NewBcryptHasher(bcrypt.MinCost), oauth, log)

	return &authFixture{uc: uc, users: users, enrollment: enrollment, tokens: tokens, oauth: oauth}
}

func descriptor(delta float64) []float64 {
	v := make([]float64, biometric.DescriptorSize)
	for i := range v {
		v[i] = 0.01 * float64(i%10)
	}
	v[0] += delta
	return v
}

func (f *authFixture) register(t *testing.T, email string) *AuthRes {
	t.Helper()
	res, err := f.uc.Register(context.Background(), &RegisterReq{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	reg := f.register(t, " Ada@Example.com ")
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.NotEqual(t, "secret1", *reg.User.PasswordHash)

	sub, err := f.tokens.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sub)

	login, err := f.uc.Login(ctx, &LoginReq{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestAuth_RegisterValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.register(t, "ada@example.com")

	tests := []struct {
		name string
		req  RegisterReq
		want error
	}{
		{"empty email", RegisterReq{Password: "secret1"}, e.ErrMissingFields},
		{"bad email", RegisterReq{Email: "not-an-email", Password: "secret1"}, e.ErrInvalidEmail},
		{"short password", RegisterReq{Email: "bob@example.com", Password: "123"}, e.ErrPasswordTooShort},
		{"duplicate", RegisterReq{Email: "ADA@example.com", Password: "secret1"}, e.ErrUserAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Register(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuth_LoginFailuresAreUniform(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.register(t, "ada@example.com")

	_, err := f.users.UpsertGoogle(ctx, &domain.GoogleProfile{GoogleID: "g-2", Email: "google@example.com"})
	require.NoError(t, err)

	for _, req := range []LoginReq{
		{Email: "ada@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "google@example.com", Password: "secret1"},
		{Email: "", Password: ""},
	} {
		_, err := f.uc.Login(ctx, &req)
		assert.ErrorIs(t, err, e.ErrInvalidCredentials, req.Email)
	}
}

func TestAuth_FaceLoginMatchesNearestEnrolled(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	ada := f.register(t, "ada@example.com")
	bob := f.register(t, "bob@example.com")
	require.NoError(t, f.uc.RegisterFace(ctx, ada.User.ID, descriptor(0)))
	require.NoError(t, f.uc.RegisterFace(ctx, bob.User.ID, descriptor(0.5)))

	res, err := f.uc.FaceLogin(ctx, descriptor(0.45))
	require.NoError(t, err)
	assert.Equal(t, bob.User.ID, res.User.ID)

	sub, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, bob.User.ID, sub)
}

func TestAuth_FaceLoginErrors(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.uc.FaceLogin(ctx, descriptor(0))
	assert.ErrorIs(t, err, biometric.ErrNoEnrollments)

	ada := f.register(t, "ada@example.com")
	require.NoError(t, f.uc.RegisterFace(ctx, ada.User.ID, descriptor(0)))

	_, err = f.uc.FaceLogin(ctx, descriptor(0.9))
	assert.ErrorIs(t, err, biometric.ErrNoMatch)
	assert.NotContains(t, err.Error(), "0.9")

	_, err = f.uc.FaceLogin(ctx, descriptor(0)[:64])
	assert.ErrorIs(t, err, biometric.ErrInvalidProbe)

	f.enrollment.listErr = context.DeadlineExceeded
	_, err = f.uc.FaceLogin(ctx, descriptor(0))
	assert.ErrorIs(t, err, biometric.ErrStorageUnavailable)
}

func TestAuth_FaceLoginOrphanedEnrollment(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.enrollment.Upsert(ctx, "ghost", descriptor(0)))

	_, err := f.uc.FaceLogin(ctx, descriptor(0))
	assert.ErrorIs(t, err, biometric.ErrNoMatch)
}

func TestAuth_RegisterFace(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	ada := f.register(t, "ada@example.com")

	has, err := f.uc.FaceStatus(ctx, ada.User.ID)
	require.NoError(t, err)
	assert.False(t, has)

	bad := descriptor(0)
	bad[5] = math.NaN()
	assert.ErrorIs(t, f.uc.RegisterFace(ctx, ada.User.ID, bad), biometric.ErrInvalidProbe)
	assert.ErrorIs(t, f.uc.RegisterFace(ctx, "missing", descriptor(0)), e.ErrUserNotFound)

	first := descriptor(0)
	require.NoError(t, f.uc.RegisterFace(ctx, ada.User.ID, first))
	first[0] = 42
	stored, err := f.enrollment.Get(ctx, ada.User.ID)
	require.NoError(t, err)
	assert.Zero(t, stored[0])

	require.NoError(t, f.uc.RegisterFace(ctx, ada.User.ID, descriptor(0.3)))
	stored, err = f.enrollment.Get(ctx, ada.User.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, stored[0], 1e-9)

	has, err = f.uc.FaceStatus(ctx, ada.User.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, f.uc.RemoveFace(ctx, ada.User.ID))
	has, err = f.uc.FaceStatus(ctx, ada.User.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestAuth_GoogleCallback(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	existing := f.register(t, "ada@example.com")

	res, err := f.uc.GoogleCallback(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, existing.User.ID, res.User.ID)
	require.NotNil(t, res.User.GoogleID)
	assert.Equal(t, "g-1", *res.User.GoogleID)

	_, err = f.uc.GoogleCallback(ctx, "")
	assert.ErrorIs(t, err, e.ErrMissingOAuthCode)

	f.oauth.err = e.ErrOAuthExchangeFailed
	_, err = f.uc.GoogleCallback(ctx, "code-2")
	assert.True(t, errors.Is(err, e.ErrOAuthExchangeFailed))
}

func TestAuth_GoogleAuthURLNotConfigured(t *testing.T) {
	f := newAuthFixture()
	f.oauth.err = e.ErrGoogleOAuthNotConfigured

	_, err := f.uc.GoogleAuthURL("state")
	assert.ErrorIs(t, err, e.ErrGoogleOAuthNotConfigured)
}
