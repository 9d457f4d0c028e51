package weather

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// dayGroup accumulates the samples of one calendar date in input order.
type dayGroup struct {
	date    string
	samples []RawSample
}

// Summarize collapses a forecast series into one DailySummary per calendar date.
// Dates are derived in loc (UTC if nil) and keep the order in which they first
// appear in samples. Icon and description are picked by majority, first
// encountered wins on ties.
func Summarize(samples []RawSample, loc *time.Location) []DailySummary {
	var (
		groups []*dayGroup
		index  = make(map[string]*dayGroup)
	)

	for _, s := range samples {
		key := s.Time(loc).Format(dateLayout)
		g, ok := index[key]
		if !ok {
			g = &dayGroup{date: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.samples = append(g.samples, s)
	}

	summaries := make([]DailySummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, summarizeDay(g))
	}
	return summaries
}

func summarizeDay(g *dayGroup) DailySummary {
	var (
		sumTemp     float64
		sumHumidity int
		sumWind     float64
		maxTemp     = math.Inf(-1)
		minTemp     = math.Inf(1)
	)

	icons := make([]string, 0, len(g.samples))
	descriptions := make([]string, 0, len(g.samples))

	for _, s := range g.samples {
		sumTemp += s.Temperature
		sumHumidity += s.Humidity
		sumWind += s.WindSpeed
		maxTemp = math.Max(maxTemp, s.Temperature)
		minTemp = math.Min(minTemp, s.Temperature)

		icons = append(icons, s.Icon)
		descriptions = append(descriptions, s.Description)
	}

	n := float64(len(g.samples))
	icon := mostCommon(icons)

	// The condition code follows the chosen icon, not the chosen description.
	code := 0
	for _, s := range g.samples {
		if s.Icon == icon {
			code = s.ConditionCode
			break
		}
	}

	return DailySummary{
		Date:        g.date,
		TempMax:     RoundHalfUp(maxTemp),
		TempMin:     RoundHalfUp(minTemp),
		TempAvg:     RoundHalfUp(sumTemp / n),
		Icon:        icon,
		Description: mostCommon(descriptions),
		WeatherCode: code,
		Humidity:    RoundHalfUp(float64(sumHumidity) / n),
		WindSpeed:   roundTo(sumWind/n, 1),
	}
}

// mostCommon returns the most frequent value; ties go to the value seen first.
func mostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// RoundHalfUp rounds to the nearest integer with halves going up, so -2.5 becomes -2.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}
