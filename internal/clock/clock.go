// Package clock implements the engine's fixed-epoch decimal-day date
// encoding and the millisecond arithmetic the routing loop runs on.
//
// Dates are encoded as fractional days since a fixed epoch: floor(d) is
// the calendar date and d-floor(d) is the time-of-day fraction. Encoding
// and decoding is pure arithmetic — no calendar library is used, matching
// the teacher repo's preference for zero-allocation, dependency-free
// value types in hot paths (internal/core.IPHeader and friends).
package clock

import "math"

// epochDay is the day 0 reference point: 1899-12-30, the same fixed
// epoch used by the legacy spreadsheet/engineering date convention this
// simulator's binary output format is wire-compatible with.
const (
	epochYear  = 1899
	epochMonth = 12
	epochDay   = 30
)

// MillisecondsPerDay is the conversion factor between the routing loop's
// millisecond clock and decimal-day Date values.
const MillisecondsPerDay = 86_400_000.0

// Date is a decimal-day encoded instant: an integer part (days since the
// epoch) plus a fractional part (time of day, in [0,1)).
type Date float64

// CalendarDate is the decoded, human-readable representation of a Date.
type CalendarDate struct {
	Year, Month, Day                   int
	Hour, Minute, Second, Millisecond int
}

// Encode packs a calendar date and time into a decimal-day Date.
func Encode(cal CalendarDate) Date {
	days := daysSinceEpoch(cal.Year, cal.Month, cal.Day)
	frac := (float64(cal.Hour)*3600_000 +
		float64(cal.Minute)*60_000 +
		float64(cal.Second)*1_000 +
		float64(cal.Millisecond)) / MillisecondsPerDay
	return Date(float64(days) + frac)
}

// Decode splits a Date back into its calendar parts.
func Decode(d Date) CalendarDate {
	dayNum := math.Floor(float64(d))
	frac := float64(d) - dayNum

	y, m, day := civilFromDays(int64(dayNum))

	msOfDay := int64(math.Round(frac * MillisecondsPerDay))
	hour := msOfDay / 3_600_000
	msOfDay -= hour * 3_600_000
	minute := msOfDay / 60_000
	msOfDay -= minute * 60_000
	second := msOfDay / 1_000
	msOfDay -= second * 1_000

	return CalendarDate{
		Year: y, Month: m, Day: day,
		Hour: int(hour), Minute: int(minute), Second: int(second), Millisecond: int(msOfDay),
	}
}

// DateOnly returns the calendar-date portion of d, dropping time of day.
func DateOnly(d Date) Date {
	return Date(math.Floor(float64(d)))
}

// TimeOfDay returns the [0,1) fractional part of d.
func TimeOfDay(d Date) float64 {
	return float64(d) - math.Floor(float64(d))
}

// AddMilliseconds returns d advanced by ms milliseconds (ms may be negative).
func AddMilliseconds(d Date, ms float64) Date {
	return Date(float64(d) + ms/MillisecondsPerDay)
}

// DiffMilliseconds returns (b - a) expressed in milliseconds, rounded to
// the nearest whole millisecond (the resolution Encode and Decode carry),
// so the decimal-day rounding error does not leak into the result.
func DiffMilliseconds(a, b Date) float64 {
	return math.Round((float64(b) - float64(a)) * MillisecondsPerDay)
}

// daysSinceEpoch converts a calendar date to an integer day count using
// the civil_from_days/days_from_civil algorithm (Howard Hinnant's
// proleptic-Gregorian scheme), then rebases it onto this engine's epoch.
func daysSinceEpoch(y, m, d int) int64 {
	return daysFromCivil(y, m, d) - daysFromCivil(epochYear, epochMonth, epochDay)
}

func civilFromDays(z int64) (year, month, day int) {
	z += daysFromCivil(epochYear, epochMonth, epochDay)
	z += 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	var m int64
	if mp >= 10 {
		m = mp - 9
		y++
	} else {
		m = mp + 3
	}
	return int(y), int(m), int(d)
}

func daysFromCivil(y, m, d int) int64 {
	yy := int64(y)
	if m <= 2 {
		yy--
	}
	era := yy
	if yy < 0 {
		era -= 399
	}
	era /= 400
	yoe := yy - era*400
	mp := (int64(m) + 9) % 12
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
