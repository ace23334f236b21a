package certscore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const npopCertificateText = `Organic Farming Certificate
Certificate No: NPOP/ORG/2024/MH/0042
Farmer Name: Ramesh Kulkarni
Issued by: Maharashtra Organic Certification Agency
Valid until: 31/12/2030
Farm Size: 1.5 hectares
Location: Pune, Maharashtra
Crops: Rice, Wheat`

const pgsAuthorizationText = `Certificate of Authorization
PGS-India Participatory Guarantee System for India
Government of India, Ministry of Agriculture
Authorization No: PGSI/N(PU)-1728
Authorization Date: 09-06-2016
This authorization shall remain valid for a period of three years`

func TestProcessRejectsShortText(t *testing.T) {
	engine := New()

	result, err := engine.Process("too short")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTextTooShort)
	assert.Nil(t, result)
}

func TestClassify(t *testing.T) {
	t.Run("plain certificate is generic", func(t *testing.T) {
		assert.Equal(t, FamilyGeneric, Classify("NPOP Organic Certificate No: 123"))
	})

	t.Run("authorization title alone is generic", func(t *testing.T) {
		assert.Equal(t, FamilyGeneric, Classify("Certificate of Authorization issued by the state board"))
	})

	t.Run("PGS marker alone is generic", func(t *testing.T) {
		assert.Equal(t, FamilyGeneric, Classify("PGS-India certified organic produce"))
	})

	t.Run("title plus PGS marker is authorization", func(t *testing.T) {
		assert.Equal(t, FamilyAuthorization, Classify("Certificate of Authorization under PGS-India"))
		assert.Equal(t, FamilyAuthorization, Classify("Certificate of Authorization under PGS India"))
	})

	t.Run("both family markers resolve to authorization", func(t *testing.T) {
		assert.Equal(t, FamilyAuthorization, Classify("NPOP Certificate of Authorization under PGS-India"))
	})
}

func TestProcessGenericCertificate(t *testing.T) {
	engine := New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	result, err := engine.ProcessAt(npopCertificateText, now)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, "A+", result.Grade)
	assert.Equal(t, FamilyGeneric, result.Family)

	assert.Equal(t, 95, result.Components["certificateType"].Score)
	assert.Equal(t, "NPOP Organic issued by Government", result.Components["certificateType"].Reason)
	assert.Equal(t, 100, result.Components["validity"].Score)
	assert.Equal(t, 100, result.Components["completeness"].Score)
	assert.Equal(t, 100, result.Components["farmSize"].Score)
	assert.Equal(t, 1.05, result.Components["farmSize"].Multiplier)
	assert.Equal(t, 100, result.Components["organicStatus"].Score)

	assert.Equal(t, "NPOP Organic", result.Features["certificateType"])
	assert.Equal(t, "NPOP/ORG/2024/MH/0042", result.Features["certificateNumber"])
	assert.Equal(t, "Ramesh Kulkarni", result.Features["farmerName"])
	assert.Equal(t, "1.5 hectare", result.Features["farmSize"])
	assert.Equal(t, "Rice, Wheat", result.Features["crops"])
	assert.Equal(t, true, result.Features["isOrganic"])

	assert.Equal(t, "NPOP Organic", result.Details["certificateType"])
	assert.Equal(t, "31/12/2030", result.Details["validUntil"])
	assert.Equal(t, "Pune, Maharashtra", result.Details["farmLocation"])

	// Nothing to fix, so only the standing advice remains.
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "Maintain digital records of all your certifications and renew them before expiry.", result.Recommendations[0])
}

func TestProcessGenericSemiMediumFarm(t *testing.T) {
	engine := New()
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)

	text := `Certificate No: NPOP/APEDA/2023/1234
Issued by: APEDA Regional Office
Farmer Name: S Kumar
Valid until: 30/04/2025
Farm Size: 2.5 hectares
Certified organic produce`

	result, err := engine.ProcessAt(text, now)
	require.NoError(t, err)

	assert.Equal(t, 98, result.Score)
	assert.Equal(t, "A+", result.Grade)
	assert.Equal(t, 100, result.Components["validity"].Score)
	assert.Equal(t, "SemiMedium farm (2.5 hectare)", result.Components["farmSize"].Reason)
	assert.Equal(t, 1.0, result.Components["farmSize"].Multiplier)
}

func TestProcessAuthorizationExpired(t *testing.T) {
	engine := New()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)

	result, err := engine.ProcessAt(pgsAuthorizationText, now)
	require.NoError(t, err)

	assert.Equal(t, FamilyAuthorization, result.Family)
	assert.Equal(t, 64, result.Score)
	assert.Equal(t, "C", result.Grade)

	assert.Equal(t, 95, result.Components["certificateType"].Score)
	assert.Equal(t, 0, result.Components["validity"].Score)
	assert.Equal(t, "Certificate expired", result.Components["validity"].Reason)
	assert.Equal(t, 100, result.Components["authenticity"].Score)
	assert.Equal(t, 75, result.Components["completeness"].Score)

	assert.Equal(t, "PGS-India Authorization", result.Features["certificateType"])
	assert.Equal(t, "PGSI/N(PU)-1728", result.Features["authorizationNumber"])
	assert.Equal(t, "PGS******728", result.Features["maskedAuthNumber"])
	assert.Equal(t, "09-06-2016", result.Features["validFrom"])
	assert.Equal(t, "09-06-2019", result.Features["validUntil"])
	assert.Equal(t, "PGS-India Secretariat, Government of India", result.Features["issuer"])
	assert.Equal(t, "General", result.Features["scope"])
	assert.Equal(t, true, result.Features["isGovernmentIssued"])

	require.NotNil(t, result.AuthorizationInfo)
	assert.Equal(t, "Authorization", result.AuthorizationInfo["authorizationType"])
	assert.Equal(t, "PGSI/N(PU)-1728", result.AuthorizationInfo["authorizationNumber"])
	assert.Equal(t, "PGS******728", result.AuthorizationInfo["maskedAuthNumber"])
	assert.Equal(t, 3, result.AuthorizationInfo["validityPeriod"])

	assert.Equal(t, true, result.Details["isOrganic"])
	assert.Empty(t, result.Recommendations)
}

func TestProcessIsDeterministic(t *testing.T) {
	engine := New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	texts := []string{
		npopCertificateText,
		pgsAuthorizationText,
		"asdkjh qwlekjh zxlckjh laskdjh qweoiu",
		"Certificate No: GRN-2024-552 issued to somebody",
	}
	for _, text := range texts {
		first, err := engine.ProcessAt(text, now)
		require.NoError(t, err)
		second, err := engine.ProcessAt(text, now)
		require.NoError(t, err)

		assert.Equal(t, first.Score, second.Score)
		assert.Equal(t, first.Grade, second.Grade)
		assert.Equal(t, first.Components, second.Components)
		assert.Equal(t, first.Features, second.Features)
	}
}

func TestProcessScoreBounds(t *testing.T) {
	engine := New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	texts := []string{
		npopCertificateText,
		pgsAuthorizationText,
		"nothing useful in this text at all",
		"Valid until: 31/12/1999 Issued by: Nobody In Particular",
	}
	for _, text := range texts {
		result, err := engine.ProcessAt(text, now)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
		assert.NotEmpty(t, result.Grade)

		totalWeight := 0.0
		for _, c := range result.Components {
			totalWeight += c.Weight
		}
		assert.InDelta(t, 1.0, totalWeight, 1e-9)
	}
}
