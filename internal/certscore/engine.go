// Package certscore turns raw OCR text from an uploaded certification
// document into a deterministic trust score, letter grade and human-readable
// recommendations. The engine is pure computation: read-only tables, no I/O,
// safe for concurrent use.
package certscore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinTextLength is the minimum viable OCR text length. Anything shorter is
// rejected before classification.
const MinTextLength = 20

// ErrTextTooShort is returned when the OCR text is too short to attempt
// extraction. It is the engine's only hard failure mode.
var ErrTextTooShort = errors.New("extracted text too short to process")

// Family identifies which extractor/scorer pair handles a document.
type Family string

const (
	FamilyGeneric       Family = "generic"
	FamilyAuthorization Family = "authorization"
)

// Engine processes certificate OCR text. The registry is compiled in; the
// farm-size table is fixed at construction. An Engine is immutable after New.
type Engine struct {
	farmSizes []FarmSizeCategory
}

// Option configures an Engine.
type Option func(*Engine)

// WithFarmSizeCategories replaces the built-in farm-size table, typically
// with one loaded from LoadFarmSizeCategories.
func WithFarmSizeCategories(categories []FarmSizeCategory) Option {
	return func(e *Engine) {
		if len(categories) > 0 {
			e.farmSizes = categories
		}
	}
}

// New builds an Engine with the default farm-size table.
func New(opts ...Option) *Engine {
	e := &Engine{farmSizes: defaultFarmSizeCategories}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the full outcome of one processing pass, ready for persistence.
type Result struct {
	Score             int                  `json:"score"`
	Grade             string               `json:"grade"`
	Family            Family               `json:"family"`
	Components        map[string]Component `json:"components"`
	Features          map[string]any       `json:"features"`
	Details           map[string]any       `json:"details"`
	Recommendations   []string             `json:"recommendations,omitempty"`
	AuthorizationInfo map[string]any       `json:"authorizationInfo,omitempty"`
}

// Classify decides which extractor/scorer pair runs. A document naming both
// the "Certificate of Authorization" title and the PGS-India scheme goes to
// the authorization path; everything else is a generic farmer certificate.
// When both family markers are present, authorization deliberately wins.
func Classify(text string) Family {
	if strings.Contains(text, "Certificate of Authorization") &&
		(strings.Contains(text, "PGS-India") || strings.Contains(text, "PGS India")) {
		return FamilyAuthorization
	}
	return FamilyGeneric
}

// Process runs the whole pipeline at the current wall clock.
func (e *Engine) Process(text string) (*Result, error) {
	return e.ProcessAt(text, time.Now())
}

// ProcessAt runs the whole pipeline at a fixed evaluation instant. Validity
// scoring is time-dependent, so reprocessing the same text later may yield a
// lower score; everything else is a pure function of the text.
func (e *Engine) ProcessAt(text string, now time.Time) (*Result, error) {
	if len(text) < MinTextLength {
		return nil, fmt.Errorf("%w: got %d characters, need %d", ErrTextTooShort, len(text), MinTextLength)
	}

	if Classify(text) == FamilyAuthorization {
		return e.processAuthorization(text, now), nil
	}
	return e.processGeneric(text, now), nil
}

func (e *Engine) processGeneric(text string, now time.Time) *Result {
	f := e.ExtractFeatures(text)
	score, grade, components := e.ScoreFeatures(f, now)

	certTypeName := unknownValue
	if f.CertificateType != nil {
		if ct, ok := lookupCertificateType(*f.CertificateType); ok {
			certTypeName = ct.Name
		}
	}

	farmSize := unknownValue
	if f.FarmSize != nil && f.FarmSizeUnit != nil {
		farmSize = formatFloat(*f.FarmSize) + " " + *f.FarmSizeUnit
	}

	crops := unknownValue
	if len(f.Crops) > 0 {
		crops = strings.Join(f.Crops, ", ")
	}

	features := map[string]any{
		"certificateNumber": orUnknown(f.CertificateNumber),
		"certificateType":   certTypeName,
		"issuer":            orUnknown(f.Issuer),
		"validUntil":        orUnknown(f.ValidityDate),
		"farmerName":        orUnknown(f.FarmerName),
		"farmSize":          farmSize,
		"location":          orUnknown(f.Location),
		"crops":             crops,
		"isOrganic":         f.OrganicStatus,
	}

	details := cleanMap(map[string]any{
		"certificateType": nilIfUnknown(certTypeName),
		"issuer":          valueOrNil(f.Issuer),
		"validUntil":      valueOrNil(f.ValidityDate),
		"farmerName":      valueOrNil(f.FarmerName),
		"farmLocation":    valueOrNil(f.Location),
		"farmSize":        nilIfUnknown(farmSize),
		"isOrganic":       f.OrganicStatus,
	})

	return &Result{
		Score:           score,
		Grade:           grade,
		Family:          FamilyGeneric,
		Components:      components,
		Features:        features,
		Details:         details,
		Recommendations: e.GenerateRecommendations(f, score, components),
	}
}

func (e *Engine) processAuthorization(text string, now time.Time) *Result {
	f := e.ExtractAuthorizationFeatures(text)
	score, grade, components := e.ScoreAuthorizationFeatures(f, now)

	certTypeName := "PGS-India Authorization"
	if f.AuthorizationType != nil {
		certTypeName = "PGS-India " + *f.AuthorizationType
	}

	validUntil := unknownValue
	switch {
	case f.ExpiryDate != nil:
		validUntil = *f.ExpiryDate
	case f.ValidityPeriod != nil:
		validUntil = fmt.Sprintf("%d years from issue date", *f.ValidityPeriod)
	}

	maskedNumber := unknownValue
	if f.AuthorizationNumber != nil {
		maskedNumber = MaskIdentifier(*f.AuthorizationNumber)
	}

	scope := "General"
	if len(f.Scope) > 0 {
		scope = strings.Join(f.Scope, ", ")
	}

	features := map[string]any{
		"certificateType":     certTypeName,
		"authorizationNumber": orUnknown(f.AuthorizationNumber),
		"maskedAuthNumber":    maskedNumber,
		"issuer":              orUnknown(f.Issuer),
		"validFrom":           orUnknown(f.AuthorizationDate),
		"validUntil":          validUntil,
		"organization":        orUnknown(f.Organization),
		"region":              orUnknown(f.Region),
		"scope":               scope,
		"isGovernmentIssued":  f.IsGovernmentIssued,
	}

	details := cleanMap(map[string]any{
		"certificateType": certTypeName,
		"issuer":          valueOrNil(f.Issuer),
		"validUntil":      nilIfUnknown(validUntil),
		"farmerName":      valueOrNil(f.Organization),
		"farmLocation":    valueOrNil(f.Region),
		"isOrganic":       true,
	})

	authInfo := cleanMap(map[string]any{
		"authorizationType":   valueOrNil(f.AuthorizationType),
		"authorizationNumber": valueOrNil(f.AuthorizationNumber),
		"maskedAuthNumber":    nilIfUnknown(maskedNumber),
		"validityPeriod":      intValueOrNil(f.ValidityPeriod),
	})

	return &Result{
		Score:             score,
		Grade:             grade,
		Family:            FamilyAuthorization,
		Components:        components,
		Features:          features,
		Details:           details,
		AuthorizationInfo: authInfo,
	}
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return unknownValue
	}
	return *s
}

func valueOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intValueOrNil(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func nilIfUnknown(s string) any {
	if s == unknownValue {
		return nil
	}
	return s
}

// cleanMap strips nil and empty-string values so stored detail maps only
// carry fields the document actually yielded.
func cleanMap(m map[string]any) map[string]any {
	for k, v := range m {
		if v == nil {
			delete(m, k)
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			delete(m, k)
		}
	}
	return m
}
