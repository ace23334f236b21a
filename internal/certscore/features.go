package certscore

// Features is the structured record extracted from a generic farmer
// certificate. Pointer fields are nil when the text yielded no match;
// FarmSize and FarmSizeUnit are always set together or not at all.
type Features struct {
	CertificateType   *string
	CertificateNumber *string
	Issuer            *string
	ValidityDate      *string
	FarmerName        *string
	FarmSize          *float64
	FarmSizeUnit      *string
	Location          *string
	Crops             []string
	OrganicStatus     bool
	DetectedKeywords  []string
}

// AuthorizationFeatures is the record extracted from a PGS Certificate of
// Authorization. It has its own field set; the generic patterns do not apply.
type AuthorizationFeatures struct {
	CertificateType     *string
	AuthorizationType   *string
	AuthorizationNumber *string
	AuthorizationDate   *string
	ValidityPeriod      *int
	ExpiryDate          *string
	Organization        *string
	Region              *string
	Scope               []string
	Issuer              *string
	IsGovernmentIssued  bool
}

func strPtr(s string) *string { return &s }
