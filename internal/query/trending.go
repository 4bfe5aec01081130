package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timeframe selects the trending window and scoring weights
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"

	DefaultTimeframe = TimeframeWeek
)

// ErrInvalidTimeframe is returned by ParseTimeframe for unknown values
var ErrInvalidTimeframe = errors.New("timeframe must be one of: day, week, month")

// ParseTimeframe accepts day, week or month (case-insensitive); empty means week
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return DefaultTimeframe, nil
	case TimeframeDay, TimeframeWeek, TimeframeMonth:
		return tf, nil
	default:
		return "", ErrInvalidTimeframe
	}
}

// publishedAt is the instant an article's age is measured from
const publishedAt = "COALESCE(a.publish_date, a.created_at)"

// RecencyBucket multiplies views by Weight when the article is at most Within old.
// Buckets are ordered innermost first; only the first matching bucket applies.
type RecencyBucket struct {
	Within time.Duration
	Weight float64
}

// Formula is the trending score definition for one timeframe:
//
//	score = views*Base
//	      + views/max(ageUnits, 1)*Velocity
//	      + views*bucketWeight(age)
//	      + views/ageUnits*TailWeight   (only when ageUnits >= TailMinUnits)
//
// where ageUnits = floor(age / Unit).
type Formula struct {
	Timeframe    Timeframe
	Window       time.Duration // ignored when WindowMonths is set
	WindowMonths int
	Unit         time.Duration
	Base         float64
	Velocity     float64
	Buckets      []RecencyBucket
	TailMinUnits int64
	TailWeight   float64
}

const (
	hour = time.Hour
	day  = 24 * time.Hour
	week = 7 * day
)

var formulas = map[Timeframe]Formula{
	TimeframeDay: {
		Timeframe: TimeframeDay,
		Window:    day,
		Unit:      hour,
		Base:      0.9,
		Velocity:  50,
		Buckets: []RecencyBucket{
			{Within: 1 * hour, Weight: 0.6},
			{Within: 3 * hour, Weight: 0.5},
			{Within: 6 * hour, Weight: 0.4},
			{Within: 12 * hour, Weight: 0.3},
		},
		TailMinUnits: 1,
		TailWeight:   10,
	},
	TimeframeWeek: {
		Timeframe: TimeframeWeek,
		Window:    week,
		Unit:      day,
		Base:      0.8,
		Velocity:  20,
		Buckets: []RecencyBucket{
			{Within: 1 * day, Weight: 0.4},
			{Within: 2 * day, Weight: 0.3},
			{Within: 3 * day, Weight: 0.2},
			{Within: 5 * day, Weight: 0.1},
		},
		TailMinUnits: 2,
		TailWeight:   5,
	},
	TimeframeMonth: {
		Timeframe:    TimeframeMonth,
		WindowMonths: 1,
		Unit:         week,
		Base:         0.6,
		Velocity:     10,
		Buckets: []RecencyBucket{
			{Within: 3 * day, Weight: 0.2},
			{Within: 1 * week, Weight: 0.15},
			{Within: 2 * week, Weight: 0.1},
		},
		TailMinUnits: 1,
		TailWeight:   3,
	},
}

// FormulaFor returns the scoring formula of a timeframe. Unknown timeframes
// get the default (week) formula; callers validate with ParseTimeframe first.
func FormulaFor(tf Timeframe) Formula {
	if f, ok := formulas[tf]; ok {
		return f
	}
	return formulas[DefaultTimeframe]
}

// Cutoff is the oldest publish instant still eligible at now
func (f Formula) Cutoff(now time.Time) time.Time {
	if f.WindowMonths > 0 {
		return now.AddDate(0, -f.WindowMonths, 0)
	}
	return now.Add(-f.Window)
}

// ageUnits truncates age to whole units, matching FLOOR in SQL
func (f Formula) ageUnits(age time.Duration) float64 {
	return math.Floor(age.Seconds() / f.Unit.Seconds())
}

// Score evaluates the formula for an article with the given views and age.
// It is the in-process mirror of Expression.
func (f Formula) Score(views int64, age time.Duration) float64 {
	v := float64(views)
	units := f.ageUnits(age)

	score := v*f.Base + v/math.Max(units, 1)*f.Velocity
	for _, b := range f.Buckets {
		if age <= b.Within {
			score += v * b.Weight
			break
		}
	}
	if units >= float64(f.TailMinUnits) {
		score += v / units * f.TailWeight
	}
	return score
}

// Expression renders the score as SQL. now and the bucket boundaries are
// bound as parameters; weights are package constants.
func (f Formula) Expression(now time.Time, args *Args) string {
	nowPH := args.Bind(now) + "::timestamptz"
	views := "a.views_count::float8"
	units := fmt.Sprintf("FLOOR(EXTRACT(EPOCH FROM (%s - %s)) / %d)", nowPH, publishedAt, int64(f.Unit.Seconds()))

	var b strings.Builder
	b.WriteString("(")
	fmt.Fprintf(&b, "(%s * %s)", views, num(f.Base))
	fmt.Fprintf(&b, " + (%s / GREATEST(%s, 1) * %s)", views, units, num(f.Velocity))

	if len(f.Buckets) > 0 {
		b.WriteString(" + (CASE")
		for _, bucket := range f.Buckets {
			fmt.Fprintf(&b, " WHEN %s >= %s THEN %s * %s", publishedAt, args.Bind(now.Add(-bucket.Within)), views, num(bucket.Weight))
		}
		b.WriteString(" ELSE 0 END)")
	}

	fmt.Fprintf(&b, " + (CASE WHEN %s >= %d THEN %s / %s * %s ELSE 0 END)", units, f.TailMinUnits, views, units, num(f.TailWeight))
	b.WriteString(")")
	return b.String()
}

// Diagnostics renders views_per_hour and hours_since_publish
func Diagnostics(now time.Time, args *Args) (viewsPerHour, hoursSince string) {
	hours := fmt.Sprintf("FLOOR(EXTRACT(EPOCH FROM (%s::timestamptz - %s)) / 3600)", args.Bind(now), publishedAt)
	return fmt.Sprintf("(a.views_count::float8 / GREATEST(%s, 1))", hours), hours
}

// Eligibility is the trending candidate set: approved, viewed at least once,
// published within the window and optionally written by one author.
func (f Formula) Eligibility(now time.Time, authorID *int64) Predicates {
	ps := Predicates{
		Eq{Column: "a.status", Value: "approved"},
		Gt{Column: "a.views_count", Value: 0},
		AtLeast{Column: publishedAt, Value: f.Cutoff(now)},
	}
	if authorID != nil {
		ps = append(ps, Eq{Column: "a.author_id", Value: *authorID})
	}
	return ps
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
