package certscore

import (
	"regexp"
	"strconv"
	"strings"
)

// Per-field pattern lists, most specific first. Extraction takes the first
// pattern that matches and ignores the rest, so the order here is load-bearing:
// the bare code shape at the end of certificateNumberPatterns would happily
// match half the document if tried first.

var certificateNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)certificate\s*no\s*[:\-]?\s*([A-Za-z0-9/\-_]+)`),
	regexp.MustCompile(`(?i)certificate\s*number\s*[:\-]?\s*([A-Za-z0-9/\-_]+)`),
	regexp.MustCompile(`(?i)cert[.]?\s*no\s*[:\-]?\s*([A-Za-z0-9/\-_]+)`),
	regexp.MustCompile(`(?i)registration\s*no\s*[:\-]?\s*([A-Za-z0-9/\-_]+)`),
	regexp.MustCompile(`\b([A-Z]{2,}/[A-Z0-9]{2,}/\d{2,}/[A-Z0-9]{2,}/\d{2,})\b`),
}

const dateShapes = `\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}\s*[A-Za-z]{3,}\s*\d{2,4}`

var validityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)valid\s*(?:until|till|upto|up\s*to)\s*[:\-]?\s*(` + dateShapes + `)`),
	regexp.MustCompile(`(?i)expiry\s*date\s*[:\-]?\s*(` + dateShapes + `)`),
	regexp.MustCompile(`(?i)valid\s*from\s*[:\-]?\s*[^\n\r]*?\s*(?:to|till|until)\s*[:\-]?\s*(` + dateShapes + `)`),
	regexp.MustCompile(`(?i)valid\s*for\s*[:\-]?\s*(\d+)\s*years?`),
}

var issuerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)issued\s*by\s*[:\-]?\s*([^,\n\r]+)`),
	regexp.MustCompile(`(?i)certifying\s*agency\s*[:\-]?\s*([^,\n\r]+)`),
	regexp.MustCompile(`(?i)certification\s*body\s*[:\-]?\s*([^,\n\r]+)`),
}

var farmerNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)farmer\s*name\s*[:\-]?\s*([^,\n\r]+)`),
	regexp.MustCompile(`(?i)name\s*[:\-]?\s*([^,\n\r]+)`),
	regexp.MustCompile(`(?i)producer\s*[:\-]?\s*([^,\n\r]+)`),
}

var farmSizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)farm\s*(?:size|area)\s*[:\-]?\s*(\d+\.?\d*)\s*(hectares?|acres?|bigha|katha)`),
	regexp.MustCompile(`(?i)area\s*[:\-]?\s*(\d+\.?\d*)\s*(hectares?|acres?|bigha|katha)`),
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)location\s*[:\-]?\s*([^\n\r]+)`),
	regexp.MustCompile(`(?i)address\s*[:\-]?\s*([^\n\r]+)`),
	regexp.MustCompile(`(?i)district\s*[:\-]?\s*([^\n\r]+)`),
}

// The crop capture stops before trailing labels like "and area(s) of" so the
// next field's text is not swallowed into the crop list.
const cropStop = `(?:\s*(?:and\s+area\(s\)\s+of|and\s+area\s+of|area\(s\)\s+of|area\s+of|area)\b|\z)`

var cropPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)crop[s]?\s*[:\-]?\s*([^\n\r]*?)` + cropStop),
	regexp.MustCompile(`(?i)product[s]?\s*[:\-]?\s*([^\n\r]*?)` + cropStop),
}

var (
	trailingOf  = regexp.MustCompile(`(?i)\bof\b.*$`)
	pluralMark  = regexp.MustCompile(`\(s\)`)
	multiSpace  = regexp.MustCompile(`\s{2,}`)
	cropSplit   = regexp.MustCompile(`[,&/]`)
	trailingEss = regexp.MustCompile(`s$`)
)

// firstMatch runs the patterns in order and returns the first capture group of
// the first pattern that matches.
func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// ExtractFeatures converts raw OCR text from a generic farmer certificate into
// a Features record. It is a pure function of the text.
func (e *Engine) ExtractFeatures(text string) Features {
	lower := strings.ToLower(text)

	var features Features

	for _, ct := range certificateTypes {
		if strings.Contains(lower, strings.ToLower(ct.Code)) || strings.Contains(lower, strings.ToLower(ct.Name)) {
			features.CertificateType = strPtr(ct.Code)
			features.DetectedKeywords = append(features.DetectedKeywords, ct.Code)
			break
		}
	}

	if v, ok := firstMatch(certificateNumberPatterns, text); ok {
		features.CertificateNumber = strPtr(v)
	}
	if v, ok := firstMatch(validityPatterns, text); ok {
		features.ValidityDate = strPtr(v)
	}
	if v, ok := firstMatch(issuerPatterns, text); ok {
		features.Issuer = strPtr(strings.TrimSpace(v))
	}
	if v, ok := firstMatch(farmerNamePatterns, text); ok {
		features.FarmerName = strPtr(strings.TrimSpace(v))
	}

	for _, p := range farmSizePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil || m[1] == "" || m[2] == "" {
			continue
		}
		size, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		unit := trailingEss.ReplaceAllString(strings.ToLower(m[2]), "")
		features.FarmSize = &size
		features.FarmSizeUnit = strPtr(unit)
		break
	}

	features.OrganicStatus = strings.Contains(lower, "organic")

	if v, ok := firstMatch(locationPatterns, text); ok {
		features.Location = strPtr(strings.TrimSpace(v))
	}

	for _, p := range cropPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil || m[1] == "" {
			continue
		}
		cleaned := trailingOf.ReplaceAllString(m[1], "")
		cleaned = pluralMark.ReplaceAllString(cleaned, "")
		cleaned = multiSpace.ReplaceAllString(cleaned, " ")
		cleaned = strings.TrimSpace(cleaned)
		for _, crop := range cropSplit.Split(cleaned, -1) {
			if crop = strings.TrimSpace(crop); crop != "" {
				features.Crops = append(features.Crops, crop)
			}
		}
		break
	}

	return features
}
