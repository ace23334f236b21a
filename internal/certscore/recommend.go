package certscore

import "fmt"

// GenerateRecommendations produces advisory text for a scored generic
// certificate. The ladder keys on the final score band, then on which fields
// or component scores drag the certificate down.
func (e *Engine) GenerateRecommendations(f Features, score int, components map[string]Component) []string {
	var recommendations []string

	switch {
	case score < 50:
		recommendations = append(recommendations, "Certificate reliability is low. Consider obtaining a government-recognized certification.")
		if f.CertificateType == nil {
			recommendations = append(recommendations, "The certificate type is not recognized. Pursue nationally recognized certifications like NPOP or Agmark.")
		}
		if f.ValidityDate == nil {
			recommendations = append(recommendations, "Certificate validity date is missing or expired. Renew your certification.")
		}
	case score < 70:
		if f.CertificateType != nil {
			if ct, ok := lookupCertificateType(*f.CertificateType); ok && ct.Score < 80 {
				recommendations = append(recommendations, fmt.Sprintf("Consider upgrading from %s to a higher-value certification like NPOP or Global GAP.", *f.CertificateType))
			}
		}
		if c, ok := components["completeness"]; ok && c.Score < 70 {
			recommendations = append(recommendations, "Ensure your certificate includes all required information including certificate number, issuer details, and validity dates.")
		}
	default:
		if !f.OrganicStatus {
			recommendations = append(recommendations, "Consider obtaining organic certification to increase your market value and access premium markets.")
		}
		if f.FarmSize != nil {
			unit := ""
			if f.FarmSizeUnit != nil {
				unit = *f.FarmSizeUnit
			}
			category := categoryFor(e.farmSizes, hectares(*f.FarmSize, unit))
			if category == "Medium" || category == "Large" {
				recommendations = append(recommendations, "Consider applying for export-oriented certifications to maximize the potential of your larger farm.")
			}
		}
	}

	recommendations = append(recommendations, "Maintain digital records of all your certifications and renew them before expiry.")
	return recommendations
}
