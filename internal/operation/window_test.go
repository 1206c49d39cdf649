package operation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/operation"
)

func TestParseValidityTimestamp(t *testing.T) {
	ts, err := operation.ParseValidityTimestamp("")
	require.NoError(t, err)
	assert.Nil(t, ts)

	ts, err = operation.ParseValidityTimestamp("1735689600")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, int64(1735689600), ts.Int64())

	ts, err = operation.ParseValidityTimestamp("2025-01-01T00:00:00Z")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, int64(1735689600), ts.Int64())
}

// Malformed bounds are a configuration error, never a silent "no bound".
func TestParseValidityTimestampMalformedIsFatal(t *testing.T) {
	_, err := operation.ParseValidityTimestamp("soon")
	require.Error(t, err)

	_, err = operation.ParseValidityTimestamp("-5")
	require.Error(t, err)

	_, err = operation.ParseValidityTimestamp("2025-13-45")
	require.Error(t, err)
}

func TestParseValidityWindow(t *testing.T) {
	after, until, err := operation.ParseValidityWindow("100", "200")
	require.NoError(t, err)
	assert.Equal(t, int64(100), after.Int64())
	assert.Equal(t, int64(200), until.Int64())

	after, until, err = operation.ParseValidityWindow("", "")
	require.NoError(t, err)
	assert.Nil(t, after)
	assert.Nil(t, until)

	_, _, err = operation.ParseValidityWindow("200", "100")
	require.Error(t, err)

	_, _, err = operation.ParseValidityWindow("bogus", "100")
	require.Error(t, err)
}
