package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timeclock.service/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "timeclock_db"}
	assert.Equal(t, "postgres://u:p@db:5432/timeclock_db?sslmode=disable", DSN(cfg))
}
