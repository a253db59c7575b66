// Package period resolves reporting windows for the aging and KPI engine.
//
// A Window is an inclusive [Start, End] interval expressed in one fixed time zone.
// By convention End doubles as the aging reference date. Resolution precedence is:
//   - explicit start/end timestamps
//   - a "YYYY-MM" month
//   - a Spanish natural-language phrase ("agosto 2025", "mes pasado", "q3 2025")
//   - the current month
//
// Malformed input is reported as a *ValidationError and never silently corrected.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	// Windows must resolve identically on hosts without a zone database
	_ "time/tzdata"
)

// DefaultTimezone is the zone every window is expressed in unless configured otherwise.
const DefaultTimezone = "America/Costa_Rica"

const (
	GranularityMonth     = "month"
	GranularityCustom    = "custom"
	GranularityRange     = "range"
	GranularityQuarter   = "quarter"
	GranularityWeek      = "week"
	GranularityDay       = "day"
	GranularityRolling30 = "rolling_30d"
)

const (
	SourceParam   = "param"
	SourceMonth   = "month"
	SourceNatural = "nlp"
	SourceDefault = "default"
)

var reYearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Layouts accepted for explicit start/end values without zone information.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Window is a resolved reporting period
type Window struct {
	Text        string    `json:"text"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Granularity string    `json:"granularity"`
	Source      string    `json:"source"`

	// AsOf overrides End as the aging reference date when set.
	AsOf *time.Time `json:"as_of,omitempty"`
}

// ReferenceDate returns the calendar date of AsOf when set, otherwise of End.
func (w Window) ReferenceDate() time.Time {
	ref := w.End
	if w.AsOf != nil {
		ref = *w.AsOf
	}
	y, m, d := ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
}

// ContainsDate reports whether the calendar date of d, read in d's own zone,
// falls between the calendar dates of Start and End.
func (w Window) ContainsDate(d time.Time) bool {
	key := dateKey(d)
	return key >= dateKey(w.Start) && key <= dateKey(w.End)
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// YearMonth returns the "YYYY-MM" label of the window start.
func (w Window) YearMonth() string {
	return w.Start.Format("2006-01")
}

// Request carries whatever period hints a caller has. All fields are optional.
type Request struct {
	Start   string // explicit start timestamp
	End     string // explicit end timestamp
	Text    string // label for an explicit window
	Month   string // "YYYY-MM"
	Natural string // free text, e.g. "ventas de agosto 2025"
	AsOf    string // aging reference date, defaults to the window end
}

// IsZero reports whether the request carries no period hint. AsOf is not one.
func (r Request) IsZero() bool {
	return r.Start == "" && r.End == "" && r.Month == "" && strings.TrimSpace(r.Natural) == ""
}

// Resolver turns requests into windows in a single fixed zone.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver creates a resolver for loc. A nil loc means DefaultTimezone.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = LoadLocation(DefaultTimezone)
	}
	return &Resolver{
		loc: loc,
		now: time.Now,
	}
}

// LoadLocation loads a zone by name. Costa Rica has had no DST since 1992, so a
// fixed UTC-6 offset is an exact fallback when the tz database is unavailable.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

// WithClock replaces the clock used for "current month" and relative phrases.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Location returns the zone windows are expressed in
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant in the resolver zone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Resolve produces a canonical window following the documented precedence.
func (r *Resolver) Resolve(req Request) (Window, error) {
	w, err := r.resolve(req)
	if err != nil {
		return Window{}, err
	}

	if strings.TrimSpace(req.AsOf) != "" {
		asOf, err := r.parseTimestamp(req.AsOf)
		if err != nil {
			return Window{}, NewValidationError("as_of", req.AsOf, err.Error())
		}
		w.AsOf = &asOf
	}
	return w, nil
}

func (r *Resolver) resolve(req Request) (Window, error) {
	if req.IsZero() {
		return r.CurrentMonth(), nil
	}

	if req.Start != "" || req.End != "" {
		return r.Explicit(req.Start, req.End, req.Text)
	}

	if req.Month != "" {
		return r.Month(req.Month)
	}

	if strings.TrimSpace(req.Natural) != "" {
		w, ok, err := r.Natural(req.Natural)
		if err != nil {
			return Window{}, err
		}
		if ok {
			return w, nil
		}
	}

	return r.CurrentMonth(), nil
}

// ResolveOrCurrent resolves req and falls back to the current month on a
// validation failure. The swallowed error is returned alongside the window so the
// caller can surface it.
func (r *Resolver) ResolveOrCurrent(req Request) (Window, error) {
	w, err := r.Resolve(req)
	if err != nil {
		return r.CurrentMonth(), err
	}
	return w, nil
}

// Explicit builds a window from two timestamps.
func (r *Resolver) Explicit(start, end, text string) (Window, error) {
	if start == "" {
		return Window{}, NewValidationError("start", start, "start is required when end is given")
	}
	if end == "" {
		return Window{}, NewValidationError("end", end, "end is required when start is given")
	}

	s, err := r.parseTimestamp(start)
	if err != nil {
		return Window{}, NewValidationError("start", start, err.Error())
	}
	e, err := r.parseTimestamp(end)
	if err != nil {
		return Window{}, NewValidationError("end", end, err.Error())
	}
	if s.After(e) {
		return Window{}, NewValidationError("start", start, fmt.Sprintf("start is after end (%s)", end))
	}

	if strings.TrimSpace(text) == "" {
		text = s.Format("2006-01")
	}

	return Window{
		Text:        text,
		Start:       s,
		End:         e,
		Granularity: GranularityCustom,
		Source:      SourceParam,
	}, nil
}

// Month expands "YYYY-MM" to the full calendar month.
func (r *Resolver) Month(yearMonth string) (Window, error) {
	ym := strings.TrimSpace(yearMonth)
	if !reYearMonth.MatchString(ym) {
		return Window{}, NewValidationError("month", yearMonth, "expected format YYYY-MM")
	}

	year, _ := strconv.Atoi(ym[:4])
	month, _ := strconv.Atoi(ym[5:])
	if month < 1 || month > 12 {
		return Window{}, NewValidationError("month", yearMonth, "month must be between 01 and 12")
	}

	return Window{
		Text:        ym,
		Start:       r.startOfMonth(year, time.Month(month)),
		End:         r.endOfMonth(year, time.Month(month)),
		Granularity: GranularityMonth,
		Source:      SourceMonth,
	}, nil
}

// CurrentMonth returns the window of the month containing now.
func (r *Resolver) CurrentMonth() Window {
	now := r.Now()
	return Window{
		Text:        now.Format("2006-01"),
		Start:       r.startOfMonth(now.Year(), now.Month()),
		End:         r.endOfMonth(now.Year(), now.Month()),
		Granularity: GranularityMonth,
		Source:      SourceDefault,
	}
}

func (r *Resolver) parseTimestamp(value string) (time.Time, error) {
	v := strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.In(r.loc), nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, r.loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp")
}

func (r *Resolver) startOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, r.loc)
}

func (r *Resolver) endOfMonth(year int, month time.Month) time.Time {
	return r.startOfMonth(year, month).AddDate(0, 1, 0).Add(-time.Second)
}

func (r *Resolver) startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc)
}

func (r *Resolver) endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, r.loc)
}
