package db

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgLogger "github.com/wyfcoding/storefront/pkg/logger"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	d, err := Dialector("mysql", "user:pass@tcp(localhost:3306)/shop")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = Dialector("postgres", "host=localhost dbname=shop")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector("sqlite", "")
	require.Error(t, err)
}

func TestGormLogger_RecordNotFoundIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	restore := pkgLogger.SetForTest(pkgLogger.New(&buf, pkgLogger.Config{Level: "debug"}))
	defer restore()

	l := NewGormLogger(false, time.Second)
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, assert.AnError)
	assert.Contains(t, buf.String(), "SQL execution failed")
}
