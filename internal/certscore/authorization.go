package certscore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Defaulted issuer for government-issued authorizations with no explicit
// issuer line.
const pgsSecretariatIssuer = "PGS-India Secretariat, Government of India"

var authNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)AUTHORIZATION\s+NO\.?:?\s*(?:—|:|-)?\s*([A-Z0-9/()\-]+)`),
	regexp.MustCompile(`(?i)AUTHORIZATION\s+NO(?:\.|\s)+:?\s*(?:—|:|-)?\s*([A-Z0-9/()\-]+)`),
	regexp.MustCompile(`(?i)CERTIFICATE\s+ID:?\s*(?:—|:|-)?\s*([A-Z0-9/()\-]+)`),
	regexp.MustCompile(`(?i)AUTH(?:\.|ORIZATION)?\s*(?:NO|NUMBER):?\s*(?:—|:|-)?\s*([A-Z0-9/()\-]+)`),
	regexp.MustCompile(`(?i)AUTHORIZATION\s*NO\s*(?:—|:|-)?\s*([A-Z0-9/()\-]+)`),
	regexp.MustCompile(`(?i)NO\.?:?\s*(?:—|:|-)?\s*([A-Z0-9/()\-]+)`),
}

var authDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:AUTHORIZATION|ISSUED)\s+DATE:?\s*(?:—|:|-)?\s*(\d{1,2}[-./]\d{1,2}[-./]\d{2,4})`),
	regexp.MustCompile(`(?i)DATE\s+OF\s+(?:AUTHORIZATION|ISSUE):?\s*(?:—|:|-)?\s*(\d{1,2}[-./]\d{1,2}[-./]\d{2,4})`),
	regexp.MustCompile(`(?i)DATE:?\s*(?:—|:|-)?\s*(\d{1,2}[-./]\d{1,2}[-./]\d{2,4})`),
	regexp.MustCompile(`(?i)AUTHORIZATION\s*DATE\s*(?:—|:|-)?\s*(\d{1,2}[-./]\d{1,2}[-./]\d{2,4})`),
}

var authValidityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)VALID(?:ITY)?\s+(?:FOR|PERIOD)\s+(?:A\s+PERIOD\s+OF)?\s+(\d+)\s+YEAR`),
	regexp.MustCompile(`(?i)REMAIN\s+VALID\s+FOR\s+(?:A\s+PERIOD\s+OF)?\s+(\d+)\s+YEAR`),
	regexp.MustCompile(`(?i)PERIOD\s+OF\s+(\d+)\s+YEAR`),
	regexp.MustCompile(`(?i)VALID\s+FOR\s+(?:A\s+PERIOD\s+OF)?\s+(\d+)\s+YEAR`),
	regexp.MustCompile(`(?i)VALID\s+(?:FOR\s+)?(?:A\s+PERIOD\s+OF)?\s+(\d+)\s+YEAR`),
}

var authOrgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)AUTHORIZE\s+([^.]+?)(?:\s+AS|$)`),
	regexp.MustCompile(`(?i)ISSUED\s+TO:?\s+([^.]+)`),
	regexp.MustCompile(`(?i)(?:FARMER|NAME):?\s+([^.]+?)(?:\s+VILLAGE|$)`),
}

var authRegionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:FOR|UNDER)\s+([^.]+?)(?:\s+PROGRAMME|$)`),
	regexp.MustCompile(`(?i)(?:IN|AT|FROM)\s+([^.]+?)(?:\s+AS\s+PER|$)`),
	regexp.MustCompile(`(?i)DISTRICT:?\s+([^.]+)`),
}

var authScopePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)SCOPE\s+OF\s+CERTIFICATION:?\s+([^.]+)`),
	regexp.MustCompile(`(?i)CERTIFICATION\s+SCOPE:?\s+([^.]+)`),
}

var authIssuerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)EXECUTIVE\s+SECRETARY[,\s]*(PGS-INDIA)`),
	regexp.MustCompile(`(?i)DIRECTOR[,\s]*([^.]+)`),
	regexp.MustCompile(`(?i)ISSUED\s+BY:?\s+([^.]+)`),
	regexp.MustCompile(`(?i)CERTIFIED\s+BY:?\s+([^.]+)`),
}

var (
	wordThreeYears = []string{
		"valid for a period of three years",
		"remain valid for a period of three years",
		"shall remain valid for a period of three years",
	}
	whitespaceRun = regexp.MustCompile(`\s+`)
	parenSpacing  = regexp.MustCompile(`\(\s*([^)]+?)\s*\)`)
	dateSeparator = regexp.MustCompile(`[-./]`)
)

// containsPGSMarker reports whether the uppercased text names the PGS-India
// scheme, tolerating OCR spacing around the hyphen.
func containsPGSMarker(upper string) bool {
	return strings.Contains(upper, "PGS-INDIA") ||
		strings.Contains(upper, "PGS INDIA") ||
		strings.Contains(upper, "PGS- INDIA") ||
		strings.Contains(upper, "PGS - INDIA")
}

// ExtractAuthorizationFeatures populates an AuthorizationFeatures record from
// the OCR text of a PGS Certificate of Authorization. If the text does not
// name the PGS scheme at all, the record comes back empty.
func (e *Engine) ExtractAuthorizationFeatures(text string) AuthorizationFeatures {
	upper := strings.ToUpper(text)

	var features AuthorizationFeatures
	if !containsPGSMarker(upper) {
		return features
	}

	features.CertificateType = strPtr("PGS")
	features.IsGovernmentIssued = strings.Contains(upper, "GOVERNMENT OF INDIA")

	switch {
	case strings.Contains(upper, "REGIONAL COUNCIL"):
		features.AuthorizationType = strPtr("Regional Council")
	case strings.Contains(upper, "LOCAL GROUP"):
		features.AuthorizationType = strPtr("Local Group")
	default:
		features.AuthorizationType = strPtr("Authorization")
	}

	if v, ok := firstMatch(authNumberPatterns, text); ok {
		features.AuthorizationNumber = strPtr(strings.TrimSpace(v))
	}
	if v, ok := firstMatch(authDatePatterns, text); ok {
		features.AuthorizationDate = strPtr(strings.TrimSpace(v))
	}

	features.ValidityPeriod = extractValidityPeriod(text)

	if features.AuthorizationDate != nil && features.ValidityPeriod != nil {
		if expiry, ok := computeExpiryDate(*features.AuthorizationDate, *features.ValidityPeriod); ok {
			features.ExpiryDate = strPtr(expiry)
		}
	}

	if v, ok := firstMatch(authOrgPatterns, text); ok {
		org := whitespaceRun.ReplaceAllString(strings.TrimSpace(v), " ")
		org = parenSpacing.ReplaceAllString(org, "($1)")
		features.Organization = strPtr(org)
	}
	if v, ok := firstMatch(authRegionPatterns, text); ok {
		features.Region = strPtr(strings.TrimSpace(v))
	}

	if v, ok := firstMatch(authScopePatterns, text); ok {
		for _, s := range strings.FieldsFunc(strings.TrimSpace(v), func(r rune) bool { return r == ',' || r == '&' }) {
			if s = strings.TrimSpace(s); s != "" {
				features.Scope = append(features.Scope, s)
			}
		}
	}

	if v, ok := firstMatch(authIssuerPatterns, text); ok {
		features.Issuer = strPtr(strings.TrimSpace(v))
	}
	if features.Issuer == nil && features.IsGovernmentIssued {
		features.Issuer = strPtr(pgsSecretariatIssuer)
	}

	return features
}

func extractValidityPeriod(text string) *int {
	lower := strings.ToLower(text)
	for _, phrase := range wordThreeYears {
		if strings.Contains(lower, phrase) {
			years := 3
			return &years
		}
	}
	for _, p := range authValidityPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil || m[1] == "" {
			continue
		}
		years, err := strconv.Atoi(strings.TrimSpace(m[1]))
		if err != nil {
			continue
		}
		return &years
	}
	return nil
}

// computeExpiryDate adds the validity period to the authorization date and
// formats the result as DD-MM-YYYY. Dates are accepted YYYY-first or DD-first;
// two-digit years are normalized into the 2000s.
func computeExpiryDate(authDate string, validityYears int) (string, bool) {
	parts := dateSeparator.Split(authDate, -1)
	if len(parts) != 3 {
		return "", false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", false
		}
		nums[i] = n
	}

	var day, month, year int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		day, month, year = nums[0], nums[1], nums[2]
		if year < 100 {
			year += 2000
		}
	}

	expiry := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local).AddDate(validityYears, 0, 0)
	return fmt.Sprintf("%02d-%02d-%04d", expiry.Day(), int(expiry.Month()), expiry.Year()), true
}
