package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/uni-timetable-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "pw", Name: "timetable"})

	assert.Contains(t, dsn, "host=db port=5432 user=app password=pw dbname=timetable")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "application_name=timetable-api")
	assert.Contains(t, dsn, "connect_timeout=5")
}

func TestDSNKeepsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, SSLMode: "require"})

	assert.Contains(t, dsn, "sslmode=require")
}
