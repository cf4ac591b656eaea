package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCampaignCode(t *testing.T) {
	codePattern := regexp.MustCompile(`^[A-Z2-7]{5}$`)

	t.Run("Format", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			code, err := GenerateCampaignCode()
			require.NoError(t, err)
			assert.Regexp(t, codePattern, code)
			assert.True(t, ValidCampaignCode(code))
		}
	})

	t.Run("Distribution", func(t *testing.T) {
		// 10k draws from a 2^24 space: the expected number of pairwise
		// collisions is ~3 (birthday bound), so anything above 50
		// indicates a broken generator rather than bad luck.
		const draws = 10000
		seen := make(map[string]int, draws)
		for i := 0; i < draws; i++ {
			code, err := GenerateCampaignCode()
			require.NoError(t, err)
			seen[code]++
		}
		collisions := draws - len(seen)
		assert.Less(t, collisions, 50)
	})
}

func TestValidCampaignCode(t *testing.T) {
	assert.True(t, ValidCampaignCode("ABCDE"))
	assert.True(t, ValidCampaignCode("A2347"))
	assert.False(t, ValidCampaignCode("ABCD"))   // too short
	assert.False(t, ValidCampaignCode("ABCDEF")) // too long
	assert.False(t, ValidCampaignCode("ABCD0"))  // ambiguous digit
	assert.False(t, ValidCampaignCode("ABCD1"))  // ambiguous digit
	assert.False(t, ValidCampaignCode("abcde"))  // lowercase
}
