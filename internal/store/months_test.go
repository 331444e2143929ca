package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthRange(t *testing.T) {
	got, err := monthRange("October", "December")
	require.NoError(t, err)
	assert.Equal(t, []string{"October", "November", "December"}, got)

	got, err = monthRange("March", "January")
	require.NoError(t, err)
	assert.Equal(t, []string{"January", "February", "March"}, got)

	_, err = monthRange("Oct", "December")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
