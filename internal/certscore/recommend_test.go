package certscore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecommendations(t *testing.T) {
	engine := New()

	t.Run("low score with nothing recognized", func(t *testing.T) {
		recs := engine.GenerateRecommendations(Features{}, 30, nil)
		require.Len(t, recs, 4)
		assert.Contains(t, recs[0], "reliability is low")
		assert.Contains(t, recs[1], "not recognized")
		assert.Contains(t, recs[2], "validity date is missing")
	})

	t.Run("mid score suggests upgrading a low-value scheme", func(t *testing.T) {
		f := Features{CertificateType: strPtr("FCAC"), ValidityDate: strPtr("31/12/2030")}
		components := map[string]Component{"completeness": {Score: 50}}

		recs := engine.GenerateRecommendations(f, 60, components)
		require.Len(t, recs, 3)
		assert.Contains(t, recs[0], "upgrading from FCAC")
		assert.Contains(t, recs[1], "all required information")
	})

	t.Run("mid score keeps quiet about high-value schemes", func(t *testing.T) {
		f := Features{CertificateType: strPtr("NPOP")}
		components := map[string]Component{"completeness": {Score: 100}}

		recs := engine.GenerateRecommendations(f, 65, components)
		require.Len(t, recs, 1)
	})

	t.Run("high score non-organic large farm", func(t *testing.T) {
		size := 12.0
		f := Features{FarmSize: &size, FarmSizeUnit: strPtr("hectare")}

		recs := engine.GenerateRecommendations(f, 85, nil)
		require.Len(t, recs, 3)
		assert.Contains(t, recs[0], "organic certification")
		assert.Contains(t, recs[1], "export-oriented")
	})

	t.Run("high score organic small farm gets only the standing advice", func(t *testing.T) {
		size := 0.8
		f := Features{FarmSize: &size, FarmSizeUnit: strPtr("hectare"), OrganicStatus: true}

		recs := engine.GenerateRecommendations(f, 95, nil)
		require.Len(t, recs, 1)
	})

	t.Run("standing advice always closes the list", func(t *testing.T) {
		for _, score := range []int{10, 60, 90} {
			recs := engine.GenerateRecommendations(Features{OrganicStatus: true}, score, nil)
			require.NotEmpty(t, recs)
			assert.True(t, strings.HasPrefix(recs[len(recs)-1], "Maintain digital records"))
		}
	})
}
