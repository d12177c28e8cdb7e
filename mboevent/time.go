package mboevent

import "strconv"

// EventTimeToMicros normalizes an event-time string of the form
// "YYYY-MM-DDTHH:MM:SS[.fraction]" (UTC, no timezone suffix expected beyond
// an optional trailing 'Z') into microseconds since the Unix epoch. Fractional
// seconds beyond nanosecond resolution are truncated to microseconds. A
// string that fails to parse returns 0, meaning "timestamp unknown" to callers.
func EventTimeToMicros(ts string) int64 {
	if len(ts) < len("2006-01-02T15:04:05") {
		return 0
	}

	year, ok1 := atoiN(ts[0:4])
	month, ok2 := atoiN(ts[5:7])
	day, ok3 := atoiN(ts[8:10])
	hour, ok4 := atoiN(ts[11:13])
	minute, ok5 := atoiN(ts[14:16])
	sec, ok6 := atoiN(ts[17:19])
	if ts[4] != '-' || ts[7] != '-' || ts[10] != 'T' || ts[13] != ':' || ts[16] != ':' {
		return 0
	}
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return 0
	}

	var nanos int64
	if len(ts) > 19 && ts[19] == '.' {
		end := len(ts)
		if ts[end-1] == 'Z' {
			end--
		}
		frac := ts[20:end]
		for len(frac) < 9 {
			frac += "0"
		}
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, err := strconv.ParseInt(frac, 10, 64)
		if err == nil {
			nanos = n
		}
	}

	sinceEpochSec := daysFromCivil(year, month, day)*86400 + int64(hour)*3600 + int64(minute)*60 + int64(sec)
	return sinceEpochSec*1_000_000 + nanos/1000
}

func atoiN(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// daysFromCivil converts a UTC civil date to days since the Unix epoch using
// Howard Hinnant's algorithm, avoiding any dependency on the time package's
// local-timezone-sensitive parsing for what must be a pure UTC calculation.
func daysFromCivil(y, m, d int) int64 {
	yy := int64(y)
	if m <= 2 {
		yy--
	}
	era := yy
	if era < 0 {
		era -= 399
	}
	era /= 400
	yoe := yy - era*400
	var mp int64
	if int64(m) > 2 {
		mp = int64(m) - 3
	} else {
		mp = int64(m) + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
