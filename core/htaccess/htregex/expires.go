package htregex

import (
	"fmt"
	"strconv"
	"strings"
)

var unitSeconds = map[string]int64{
	"second": 1, "seconds": 1,
	"minute": 60, "minutes": 60,
	"hour": 3600, "hours": 3600,
	"day": 86400, "days": 86400,
	"month": 2592000, "months": 2592000,
	"year": 31536000, "years": 31536000,
}

// ParseExpires parses a duration string of the form
// "access plus <N> <unit> [<N> <unit> ...]" (case-insensitive on the
// "access plus" prefix and unit names) and returns the total seconds.
func ParseExpires(s string) (int64, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 3 {
		return 0, fmt.Errorf("expires: too few tokens in %q", s)
	}
	if !strings.EqualFold(fields[0], "access") || !strings.EqualFold(fields[1], "plus") {
		return 0, fmt.Errorf("expires: expected \"access plus\" prefix in %q", s)
	}

	rest := fields[2:]
	if len(rest)%2 != 0 {
		return 0, fmt.Errorf("expires: dangling token in %q", s)
	}

	var total int64
	for i := 0; i < len(rest); i += 2 {
		n, err := strconv.ParseInt(rest[i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expires: bad count %q: %w", rest[i], err)
		}
		factor, ok := unitSeconds[strings.ToLower(rest[i+1])]
		if !ok {
			return 0, fmt.Errorf("expires: unknown unit %q", rest[i+1])
		}
		total += n * factor
	}
	return total, nil
}
