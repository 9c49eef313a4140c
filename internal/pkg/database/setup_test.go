package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNReportsMatchedRows(t *testing.T) {
	dsn := DSN()
	assert.Contains(t, dsn, "parseTime=True")
	assert.Contains(t, dsn, "clientFoundRows=true")
}
