package certscore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var authorizationGradeBands = []gradeBand{
	{min: 90, grade: "A+"},
	{min: 80, grade: "A"},
	{min: 70, grade: "B"},
	{min: 60, grade: "C"},
	{min: 0, grade: "D"},
}

func authorizationComponents() []weightedComponent[AuthorizationFeatures] {
	return []weightedComponent[AuthorizationFeatures]{
		{name: "certificateType", weight: 0.25, score: scoreAuthCertificateType},
		{name: "validity", weight: 0.30, score: scoreAuthValidity},
		{name: "authenticity", weight: 0.25, score: scoreAuthenticity},
		{name: "completeness", weight: 0.20, score: scoreAuthCompleteness},
	}
}

// ScoreAuthorizationFeatures converts a PGS authorization feature record into
// a final score, grade and component breakdown at the given evaluation
// instant.
func (e *Engine) ScoreAuthorizationFeatures(f AuthorizationFeatures, now time.Time) (int, string, map[string]Component) {
	return scoreWeighted(authorizationComponents(), authorizationGradeBands, f, now)
}

func scoreAuthCertificateType(f AuthorizationFeatures, _ time.Time) Component {
	if f.CertificateType == nil || *f.CertificateType != "PGS" {
		return Component{Score: 0, Reason: "Invalid certificate type"}
	}
	if f.IsGovernmentIssued {
		return Component{Score: 95, Reason: "PGS-India Government Authorization"}
	}
	return Component{Score: 85, Reason: "PGS-India Authorization"}
}

func scoreAuthValidity(f AuthorizationFeatures, now time.Time) Component {
	if f.ExpiryDate != nil {
		expiry, ok := parseExpiryDate(*f.ExpiryDate)
		if !ok {
			return Component{Score: 40, Reason: "Could not parse expiry date"}
		}
		if expiry.Before(now) {
			return Component{Score: 0, Reason: "Certificate expired"}
		}
		monthsRemaining := expiry.Sub(now).Hours() / 24 / 30
		switch {
		case monthsRemaining < 3:
			return Component{Score: 60, Reason: "Expiring within 3 months"}
		case monthsRemaining < 6:
			return Component{Score: 75, Reason: "Expiring within 6 months"}
		case monthsRemaining < 12:
			return Component{Score: 85, Reason: "Valid for less than a year"}
		default:
			return Component{Score: 100, Reason: fmt.Sprintf("Valid until %s", *f.ExpiryDate)}
		}
	}

	if f.ValidityPeriod != nil && f.AuthorizationDate != nil {
		return Component{Score: 70, Reason: fmt.Sprintf("%d-year validity period from %s", *f.ValidityPeriod, *f.AuthorizationDate)}
	}
	if f.ValidityPeriod != nil {
		return Component{Score: 50, Reason: fmt.Sprintf("%d-year validity period", *f.ValidityPeriod)}
	}
	return Component{Score: 30, Reason: "No clear validity information"}
}

// parseExpiryDate parses the DD-MM-YYYY shape the extractor produces.
func parseExpiryDate(value string) (time.Time, bool) {
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return time.Date(nums[2], time.Month(nums[1]), nums[0], 0, 0, 0, 0, time.Local), true
}

func scoreAuthenticity(f AuthorizationFeatures, _ time.Time) Component {
	hasNumber := f.AuthorizationNumber != nil
	hasIssuer := f.Issuer != nil

	switch {
	case f.IsGovernmentIssued && hasNumber && hasIssuer:
		return Component{Score: 100, Reason: "Government-issued with authorization number"}
	case hasNumber && hasIssuer:
		return Component{Score: 85, Reason: "Has authorization number and issuer details"}
	case hasNumber || hasIssuer:
		return Component{Score: 70, Reason: "Has limited verification details"}
	default:
		return Component{Score: 40, Reason: "Missing verification details"}
	}
}

func scoreAuthCompleteness(f AuthorizationFeatures, _ time.Time) Component {
	required := []*string{f.AuthorizationType, f.AuthorizationNumber, f.Organization, f.Issuer}
	present := 0
	for _, field := range required {
		if field != nil {
			present++
		}
	}
	score := int(math.Floor(float64(present) / float64(len(required)) * 100))
	return Component{Score: score, Reason: fmt.Sprintf("%d of %d required fields present", present, len(required))}
}
