package database

import (
	"testing"

	"learnhub_backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p",
		DBName: "learnhub", Charset: "utf8mb4", ParseTime: true,
	}
	assert.Equal(t, "u:p@tcp(db:3306)/learnhub?charset=utf8mb4&parseTime=true&loc=Local", DSN(cfg))

	cfg.Driver = "postgres"
	cfg.Port = 5432
	cfg.SSLMode = "disable"
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=learnhub sslmode=disable", DSN(cfg))
}
