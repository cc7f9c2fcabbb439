package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/qtplanner/internal/apperr"
)

func TestParseDateTime(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	got, err := ParseDateTime(" 2024-03-10 19:00 ", seoul)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), got.UTC())

	got, err = ParseDateTime("", seoul)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDateTime("10/03/2024", seoul)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "invalid date, use YYYY-MM-DD HH:MM", apperr.Message(err))
}

func TestValidateDateTime(t *testing.T) {
	assert.NoError(t, ValidateDateTime(""))
	assert.NoError(t, ValidateDateTime("2024-03-10 07:30"))
	assert.Error(t, ValidateDateTime("2024-03-10"))
}
