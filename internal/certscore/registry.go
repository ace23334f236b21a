package certscore

// CertificateType describes one recognized certification scheme.
type CertificateType struct {
	Code      string
	Name      string
	Score     int
	Authority string
}

// certificateTypes is the registry of recognized schemes. Order matters:
// type detection scans linearly and the first code whose code or display name
// appears in the text wins.
var certificateTypes = []CertificateType{
	{Code: "NPOP", Name: "NPOP Organic", Score: 95, Authority: "Government"},
	{Code: "APEDA", Name: "APEDA Organic", Score: 95, Authority: "Government"},
	{Code: "PGS", Name: "PGS Organic", Score: 85, Authority: "Community"},
	{Code: "TNOCD", Name: "TNOCD Organic", Score: 90, Authority: "State Agency"},
	{Code: "AGMARK", Name: "Agmark", Score: 80, Authority: "Government"},
	{Code: "INDGAP", Name: "IndGAP", Score: 85, Authority: "Accredited Private"},
	{Code: "GLOBALGAP", Name: "Global GAP", Score: 90, Authority: "International"},
	{Code: "BHARATGAP", Name: "Bharat GAP", Score: 80, Authority: "Government"},
	{Code: "FCAC", Name: "Farmer Capacity Assessment", Score: 70, Authority: "Government"},
	{Code: "SEED", Name: "Seed Certification", Score: 75, Authority: "Government"},
	{Code: "FAIRTRADE", Name: "Fair Trade", Score: 70, Authority: "International"},
	{Code: "RAINFOREST", Name: "Rainforest Alliance", Score: 80, Authority: "International"},
	{Code: "ISO", Name: "ISO Certified", Score: 90, Authority: "International"},
}

// lookupCertificateType returns the registry entry for a code.
func lookupCertificateType(code string) (CertificateType, bool) {
	for _, ct := range certificateTypes {
		if ct.Code == code {
			return ct, true
		}
	}
	return CertificateType{}, false
}
