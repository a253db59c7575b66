package period

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var quarters = map[string][2]time.Month{
	"q1": {time.January, time.March},
	"q2": {time.April, time.June},
	"q3": {time.July, time.September},
	"q4": {time.October, time.December},
}

var (
	reDayRange  = regexp.MustCompile(`del?\s*(\d{1,2})\s*al?\s*(\d{1,2})\s*de?\s*([a-záéíóú]+)(?:\s*de?\s*(\d{4}))?`)
	reQuarter   = regexp.MustCompile(`(q[1-4])\s*(\d{4})`)
	reMonthYear = regexp.MustCompile(`([a-záéíóú]+)\s+(\d{4})`)
	reBareMonth = regexp.MustCompile(`\b(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\b`)
)

// Natural recognises a Spanish period phrase. ok is false when nothing in text
// looks like a period; err is set when a phrase matched but names an impossible
// date (e.g. "del 30 al 31 de febrero").
func (r *Resolver) Natural(text string) (w Window, ok bool, err error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Window{}, false, nil
	}
	now := r.Now()

	if m := reDayRange.FindStringSubmatch(t); m != nil {
		if month, known := spanishMonths[m[3]]; known {
			return r.dayRange(m, month, now)
		}
	}

	if m := reQuarter.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[2])
		q := quarters[m[1]]
		return Window{
			Text:        m[0],
			Start:       r.startOfMonth(year, q[0]),
			End:         r.endOfMonth(year, q[1]),
			Granularity: GranularityQuarter,
			Source:      SourceNatural,
		}, true, nil
	}

	if m := reMonthYear.FindStringSubmatch(t); m != nil {
		if month, known := spanishMonths[m[1]]; known {
			year, _ := strconv.Atoi(m[2])
			return r.naturalMonth(m[0], year, month), true, nil
		}
	}

	if m := reBareMonth.FindStringSubmatch(t); m != nil {
		month := spanishMonths[m[1]]
		year := now.Year()
		// a month well ahead of today refers to last year
		if int(month) > int(now.Month())+1 {
			year--
		}
		return r.naturalMonth(m[1], year, month), true, nil
	}

	switch {
	case strings.Contains(t, "esta semana"):
		offset := (int(now.Weekday()) + 6) % 7 // Monday = 0
		start := r.startOfDay(now.AddDate(0, 0, -offset))
		return Window{
			Text:        "esta semana",
			Start:       start,
			End:         r.endOfDay(start.AddDate(0, 0, 6)),
			Granularity: GranularityWeek,
			Source:      SourceNatural,
		}, true, nil
	case strings.Contains(t, "este mes"):
		return r.naturalMonth("este mes", now.Year(), now.Month()), true, nil
	case strings.Contains(t, "mes pasado"):
		prev := r.startOfMonth(now.Year(), now.Month()).AddDate(0, -1, 0)
		return r.naturalMonth("mes pasado", prev.Year(), prev.Month()), true, nil
	case strings.Contains(t, "hoy"):
		return Window{
			Text:        "hoy",
			Start:       r.startOfDay(now),
			End:         r.endOfDay(now),
			Granularity: GranularityDay,
			Source:      SourceNatural,
		}, true, nil
	case strings.Contains(t, "últimos 30 días"), strings.Contains(t, "ultimos 30 dias"):
		return Window{
			Text:        "últimos 30 días",
			Start:       r.startOfDay(now.AddDate(0, 0, -29)),
			End:         r.endOfDay(now),
			Granularity: GranularityRolling30,
			Source:      SourceNatural,
		}, true, nil
	}

	return Window{}, false, nil
}

func (r *Resolver) dayRange(m []string, month time.Month, now time.Time) (Window, bool, error) {
	d1, _ := strconv.Atoi(m[1])
	d2, _ := strconv.Atoi(m[2])
	year := now.Year()
	if m[4] != "" {
		year, _ = strconv.Atoi(m[4])
	}

	last := r.endOfMonth(year, month).Day()
	if d1 < 1 || d2 < 1 || d1 > last || d2 > last {
		return Window{}, false, NewValidationError("period", m[0], "day outside of month")
	}
	if d1 > d2 {
		return Window{}, false, NewValidationError("period", m[0], "range start is after range end")
	}

	return Window{
		Text:        m[0],
		Start:       time.Date(year, month, d1, 0, 0, 0, 0, r.loc),
		End:         time.Date(year, month, d2, 23, 59, 59, 0, r.loc),
		Granularity: GranularityRange,
		Source:      SourceNatural,
	}, true, nil
}

func (r *Resolver) naturalMonth(text string, year int, month time.Month) Window {
	return Window{
		Text:        text,
		Start:       r.startOfMonth(year, month),
		End:         r.endOfMonth(year, month),
		Granularity: GranularityMonth,
		Source:      SourceNatural,
	}
}
