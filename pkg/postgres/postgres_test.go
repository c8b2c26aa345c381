package postgres

import (
	"testing"

	"github.com/modlrn/go-backend/internal/cfg"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&cfg.PGDBCfg{
		Host:     "db",
		Port:     "5432",
		User:     "modlrn",
		Password: "secret",
		DBName:   "modlrn",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5432 user=modlrn password=secret dbname=modlrn sslmode=disable", dsn)
}
