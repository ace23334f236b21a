package certscore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Component is one weighted sub-score of a scoring pass. Multiplier is only
// set by the farm-size component on the generic path; the effect of farm size
// on the final score is carried by the multiplier, not by the component score.
type Component struct {
	Weight     float64 `json:"weight"`
	Score      int     `json:"score"`
	Reason     string  `json:"reason"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// gradeBand maps a minimum final score to a letter grade. Bands are checked
// in order, so tables must be sorted highest first and end with a zero band.
type gradeBand struct {
	min   float64
	grade string
}

func gradeFor(bands []gradeBand, score float64) string {
	for _, b := range bands {
		if score >= b.min {
			return b.grade
		}
	}
	return bands[len(bands)-1].grade
}

// componentFunc scores one aspect of a feature record at an evaluation
// instant. A non-zero multiplier is applied once to the aggregated score.
type componentFunc[F any] func(f F, now time.Time) Component

type weightedComponent[F any] struct {
	name   string
	weight float64
	score  componentFunc[F]
}

// scoreWeighted evaluates a component table against a feature record:
// weighted mean of the component scores, adjusted by any recorded multiplier,
// capped at 100. Grading uses the post-multiplier capped value. Component
// weights in a table always sum to 1.0.
func scoreWeighted[F any](table []weightedComponent[F], bands []gradeBand, f F, now time.Time) (int, string, map[string]Component) {
	components := make(map[string]Component, len(table))

	var weightedScore, totalWeight, multiplier float64
	for _, wc := range table {
		c := wc.score(f, now)
		c.Weight = wc.weight
		components[wc.name] = c

		weightedScore += wc.weight * float64(c.Score)
		totalWeight += wc.weight
		if c.Multiplier != 0 {
			multiplier = c.Multiplier
		}
	}

	finalScore := weightedScore / totalWeight
	if multiplier != 0 {
		finalScore *= multiplier
	}
	finalScore = math.Min(100, finalScore)

	return int(math.Round(finalScore)), gradeFor(bands, finalScore), components
}

var genericGradeBands = []gradeBand{
	{min: 90, grade: "A+"},
	{min: 80, grade: "A"},
	{min: 70, grade: "B"},
	{min: 0, grade: "C"},
}

func (e *Engine) genericComponents() []weightedComponent[Features] {
	return []weightedComponent[Features]{
		{name: "certificateType", weight: 0.4, score: scoreCertificateType},
		{name: "validity", weight: 0.25, score: scoreValidity},
		{name: "completeness", weight: 0.2, score: scoreCompleteness},
		{name: "farmSize", weight: 0.1, score: e.scoreFarmSize},
		{name: "organicStatus", weight: 0.05, score: scoreOrganicStatus},
	}
}

// ScoreFeatures converts a generic feature record into a final score, grade
// and component breakdown at the given evaluation instant.
func (e *Engine) ScoreFeatures(f Features, now time.Time) (int, string, map[string]Component) {
	return scoreWeighted(e.genericComponents(), genericGradeBands, f, now)
}

func scoreCertificateType(f Features, _ time.Time) Component {
	if f.CertificateType != nil {
		if ct, ok := lookupCertificateType(*f.CertificateType); ok {
			return Component{Score: ct.Score, Reason: fmt.Sprintf("%s issued by %s", ct.Name, ct.Authority)}
		}
	}
	if f.Issuer != nil {
		// Unrecognized scheme but a named issuer still earns partial credit.
		return Component{Score: 50, Reason: fmt.Sprintf("Unrecognized certificate issued by %s", *f.Issuer)}
	}
	return Component{Score: 0, Reason: "Certificate type not recognized"}
}

func scoreValidity(f Features, now time.Time) Component {
	if f.ValidityDate == nil {
		return Component{Score: 50, Reason: "Unknown validity"}
	}

	var expiry time.Time
	var reason string

	if years, err := strconv.Atoi(*f.ValidityDate); err == nil {
		// Bare integer: N years from the evaluation instant.
		expiry = now.AddDate(years, 0, 0)
		reason = fmt.Sprintf("Valid for %d years", years)
	} else {
		parsed, ok := parseDelimitedDate(*f.ValidityDate)
		if !ok {
			return Component{Score: 50, Reason: "Invalid date format"}
		}
		expiry = parsed
		reason = fmt.Sprintf("Valid until %02d/%02d/%04d", expiry.Day(), int(expiry.Month()), expiry.Year())
	}

	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return Component{Score: 0, Reason: "Expired"}
	}

	daysRemaining := math.Floor(remaining.Hours() / 24)
	monthsRemaining := daysRemaining / 30

	score := 50
	switch {
	case monthsRemaining >= 12:
		score = 100
	case monthsRemaining >= 9:
		score = 90
	case monthsRemaining >= 6:
		score = 80
	case monthsRemaining >= 3:
		score = 70
	case monthsRemaining >= 1:
		score = 60
	}
	return Component{Score: score, Reason: reason}
}

// parseDelimitedDate resolves a 3-part delimited date by field length: a
// 4-digit leading part means YYYY-first, otherwise DD-first with 2-digit
// years split at 50 between the 2000s and 1900s.
func parseDelimitedDate(value string) (time.Time, bool) {
	parts := dateSeparator.Split(value, -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	var day, month, year int
	switch {
	case len(parts[0]) == 4:
		year, month, day = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4 || len(parts[2]) == 2:
		day, month, year = nums[0], nums[1], nums[2]
		if year < 100 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
	default:
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

func scoreCompleteness(f Features, _ time.Time) Component {
	required := []*string{f.CertificateNumber, f.Issuer, f.FarmerName, f.ValidityDate}
	present := 0
	for _, field := range required {
		if field != nil {
			present++
		}
	}
	score := int(math.Floor(float64(present) / float64(len(required)) * 100))
	return Component{Score: score, Reason: fmt.Sprintf("%d of %d required fields present", present, len(required))}
}

func (e *Engine) scoreFarmSize(f Features, _ time.Time) Component {
	if f.FarmSize == nil || *f.FarmSize == 0 {
		return Component{Score: 0, Reason: "Farm size unknown"}
	}

	unit := ""
	if f.FarmSizeUnit != nil {
		unit = *f.FarmSizeUnit
	}
	category := categoryFor(e.farmSizes, hectares(*f.FarmSize, unit))

	return Component{
		Score:      100,
		Reason:     fmt.Sprintf("%s farm (%s %s)", category, formatFloat(*f.FarmSize), unit),
		Multiplier: multiplierFor(e.farmSizes, category),
	}
}

func scoreOrganicStatus(f Features, _ time.Time) Component {
	if f.OrganicStatus {
		return Component{Score: 100, Reason: "Organic certification detected"}
	}
	return Component{Score: 0, Reason: "Not organic"}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
