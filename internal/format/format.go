// Package format renders durations, dates, and ratings for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	isoLayout     = "2006-01-02"
	displayLayout = "January 2, 2006"
)

// Duration formats seconds as "m:ss", or "h:mm:ss" from one hour up.
// Non-positive and non-finite durations render as "".
//
//	Duration(342)  == "5:42"
//	Duration(3661) == "1:01:01"
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return ""
	}

	hrs := int(math.Floor(seconds / 3600))
	mins := int(math.Floor(math.Mod(seconds, 3600) / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))

	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// Date formats an ISO date as "May 8, 1977". Unparseable input is returned as is.
func Date(iso string) string {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayLayout)
}

// Rating formats a 0-10 rating to one decimal place: 9.570934 -> "9.6".
func Rating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', 1, 64)
}
