package attrs

import (
	"regexp"
	"strconv"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// ParseSpeedLimit extracts the speed limit from a free-text token such as
// "50", "50 km/h" or "50-70". When several numbers appear the highest one
// wins, so a posted range is stored as its upper bound. ok is false when the
// token holds no digits or a digit run does not fit in an int.
func ParseSpeedLimit(raw string) (limit int, ok bool) {
	runs := digitRun.FindAllString(raw, -1)
	if len(runs) == 0 {
		return 0, false
	}
	for _, r := range runs {
		n, err := strconv.Atoi(r)
		if err != nil {
			return 0, false
		}
		if n > limit {
			limit = n
		}
	}
	return limit, true
}
