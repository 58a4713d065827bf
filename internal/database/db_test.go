package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := dsn("api", "s3cret", "db.internal", "3306", "poi")
	assert.Equal(t, "api:s3cret@tcp(db.internal:3306)/poi?charset=utf8mb4&parseTime=true&loc=UTC", got)
}

func TestDSNEmptyPassword(t *testing.T) {
	got := dsn("api", "", "localhost", "3306", "poi")
	assert.Equal(t, "api@tcp(localhost:3306)/poi?charset=utf8mb4&parseTime=true&loc=UTC", got)
}

func TestDSNEscapesPassword(t *testing.T) {
	got := dsn("api", "p@ss/word", "localhost", "3306", "poi")
	assert.Contains(t, got, "api:p%40ss%2Fword@tcp(")
}
