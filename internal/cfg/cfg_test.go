package cfg

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_USER", "modlrn")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "modlrn")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "5001", c.Http.Port)
	assert.Equal(t, 30*time.Minute, c.Auth.TokenTTL)
	assert.Equal(t, FaceStorePostgres, c.Face.Store)
	assert.False(t, c.Kafka.Enabled)
	assert.False(t, c.GenAI.Enabled())
	assert.False(t, c.Auth.GoogleEnabled())
	assert.Equal(t, uint64(128), c.Qdrant.VectorSize)
	assert.Equal(t, "gemini-2.0-flash", c.GenAI.Model)
	assert.Len(t, c.Http.AllowedOrigins, 3)
	assert.Equal(t, 20, c.Http.AuthRateLimit)
	assert.Empty(t, c.Http.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("FACE_STORE", "Qdrant")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("FRONTEND_URL", "https://modlrn.example.com/")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("HTTP_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "assessment-results", c.Kafka.Topic)
	assert.Equal(t, FaceStoreQdrant, c.Face.Store)
	assert.True(t, c.GenAI.Enabled())
	assert.Equal(t, time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, "https://modlrn.example.com", c.Auth.FrontendURL)
	assert.True(t, c.Auth.GoogleEnabled())
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
	}, c.Http.TrustedProxies)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"missing postgres user", map[string]string{"POSTGRES_USER": ""}},
		{"bad face store", map[string]string{"FACE_STORE": "bolt"}},
		{"bad duration", map[string]string{"HTTP_READ_TIMEOUT": "soon"}},
		{"bad bcrypt cost", map[string]string{"BCRYPT_COST": "ten"}},
		{"negative auth rate limit", map[string]string{"AUTH_RATE_LIMIT": "-1"}},
		{"bad trusted proxy", map[string]string{"HTTP_TRUSTED_PROXIES": "10.0.0.0/8,proxy.local"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("SOME_INT", "abc")

	v, err := parseIntEnv("SOME_INT", 7)
	assert.Equal(t, 7, v)
	assert.True(t, errors.Is(err, e.ErrIncorrectEnvVariable))
}

func TestMinIOCfg_AvatarBaseURL(t *testing.T) {
	c := &MinIOCfg{MinioEndpoint: "minio:9000", BucketName: "avatars"}
	assert.Equal(t, "http://minio:9000/avatars", c.AvatarBaseURL())

	c.MinioUseSSL = true
	assert.Equal(t, "https://minio:9000/avatars", c.AvatarBaseURL())

	c.PublicURL = "https://cdn.example.com/avatars/"
	assert.Equal(t, "https://cdn.example.com/avatars", c.AvatarBaseURL())
}
