package clock

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []CalendarDate{
		{Year: 1899, Month: 12, Day: 30, Hour: 0, Minute: 0, Second: 0},
		{Year: 2004, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 2004, Month: 1, Day: 1, Hour: 12, Minute: 30, Second: 15},
		{Year: 2024, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 59},
		{Year: 1800, Month: 7, Day: 4, Hour: 6, Minute: 0, Second: 0},
	}
	for _, c := range cases {
		d := Encode(c)
		got := Decode(d)
		if got.Year != c.Year || got.Month != c.Month || got.Day != c.Day ||
			got.Hour != c.Hour || got.Minute != c.Minute || got.Second != c.Second {
			t.Errorf("round trip mismatch: want %+v got %+v (date=%v)", c, got, d)
		}
	}
}

func TestEpochIsZero(t *testing.T) {
	d := Encode(CalendarDate{Year: 1899, Month: 12, Day: 30})
	if d != 0 {
		t.Errorf("expected epoch date to encode as 0, got %v", d)
	}
}

func TestAddMillisecondsAdvancesReportPeriod(t *testing.T) {
	start := Encode(CalendarDate{Year: 2004, Month: 1, Day: 1})
	reportStepS := 600.0
	for p := 1; p <= 6; p++ {
		got := AddMilliseconds(start, float64(p)*reportStepS*1000)
		want := float64(start) + float64(p)*reportStepS/86400.0
		if diff := float64(got) - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("period %d: got %v want %v", p, got, want)
		}
	}
}

func TestDiffMillisecondsInverseOfAdd(t *testing.T) {
	start := Encode(CalendarDate{Year: 2010, Month: 6, Day: 15, Hour: 8})
	advanced := AddMilliseconds(start, 3_600_000)
	if diff := DiffMilliseconds(start, advanced); diff < 3_600_000-1e-6 || diff > 3_600_000+1e-6 {
		t.Errorf("expected diff of 3600000ms, got %v", diff)
	}
}

func TestDateOnlyAndTimeOfDay(t *testing.T) {
	d := Encode(CalendarDate{Year: 2004, Month: 1, Day: 1, Hour: 6, Minute: 0, Second: 0})
	if DateOnly(d) != Encode(CalendarDate{Year: 2004, Month: 1, Day: 1}) {
		t.Errorf("DateOnly dropped time incorrectly: %v", DateOnly(d))
	}
	if tod := TimeOfDay(d); tod < 0.25-1e-9 || tod > 0.25+1e-9 {
		t.Errorf("expected time-of-day fraction 0.25, got %v", tod)
	}
}
