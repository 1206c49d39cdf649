package operation

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ParseValidityTimestamp converts a validity-window bound into seconds.
// Accepted inputs are an empty string (no bound), a decimal unix-seconds
// value or an RFC 3339 timestamp. A malformed value is a fatal configuration
// error; it is never silently treated as "no bound".
func ParseValidityTimestamp(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return nil, errors.Errorf("validity timestamp %q is negative", value)
		}
		return big.NewInt(seconds), nil
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errors.Errorf("invalid validity timestamp %q", value)
	}

	return big.NewInt(ts.Unix()), nil
}

// ParseValidityWindow parses both bounds of a validity window.
func ParseValidityWindow(validAfter, validUntil string) (*big.Int, *big.Int, error) {
	after, err := ParseValidityTimestamp(validAfter)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid validAfter")
	}

	until, err := ParseValidityTimestamp(validUntil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid validUntil")
	}

	if after != nil && until != nil && after.Cmp(until) >= 0 {
		return nil, nil, errors.Errorf("validity window is empty: validAfter %s >= validUntil %s", after, until)
	}

	return after, until, nil
}
