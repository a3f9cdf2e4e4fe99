package ruledraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPriceFloor(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   float64
		ok     bool
	}{
		{"dollar amount with commas", "homes above $500,000 in Miami", 500000, true},
		{"k suffix without dollar sign", "listings over 750k", 750000, true},
		{"m suffix", "luxury homes above $1.2m", 1200000, true},
		{"dollar sign with space", "above $ 300000", 300000, true},
		{"bare number is not a price", "route leads over 65 to the senior team", 0, false},
		{"no amount at all", "spanish speaking leads", 0, false},
		{"zero amount ignored", "$0 down payment leads", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractPriceFloor(tt.prompt)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHeuristicDraftAgeExtraction(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   *int
	}{
		{"over", "route leads over 65", intPtr(65)},
		{"older than", "clients older than 55 years", intPtr(55)},
		{"age", "age 60 and up", intPtr(60)},
		{"no age", "hispanic leads in Florida", nil},
		{"implausible age", "over 500 listings", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := heuristicDraft(tt.prompt)
			if tt.want == nil {
				if cfg.Conditions.Demographics != nil {
					assert.Nil(t, cfg.Conditions.Demographics.MinAge)
				}
				return
			}
			require.NotNil(t, cfg.Conditions.Demographics)
			require.NotNil(t, cfg.Conditions.Demographics.MinAge)
			assert.Equal(t, *tt.want, *cfg.Conditions.Demographics.MinAge)
		})
	}
}

func TestHeuristicDraftKeywordHints(t *testing.T) {
	t.Run("ethnicity aliases map to canonical value", func(t *testing.T) {
		for _, prompt := range []string{
			"Hispanic leads",
			"latino families looking to buy",
			"Latina professionals",
		} {
			cfg := heuristicDraft(prompt)
			require.NotNil(t, cfg.Conditions.Demographics, prompt)
			require.NotNil(t, cfg.Conditions.Demographics.Ethnicities, prompt)
			assert.Equal(t, []string{"hispanic"}, cfg.Conditions.Demographics.Ethnicities.Include)
		}
	})

	t.Run("language aliases", func(t *testing.T) {
		for _, prompt := range []string{
			"Spanish speaking leads",
			"leads who prefer español",
		} {
			cfg := heuristicDraft(prompt)
			require.NotNil(t, cfg.Conditions.Demographics, prompt)
			require.NotNil(t, cfg.Conditions.Demographics.Languages, prompt)
			assert.Equal(t, []string{"spanish"}, cfg.Conditions.Demographics.Languages.Include)
		}
	})

	t.Run("no hints leaves demographics absent", func(t *testing.T) {
		cfg := heuristicDraft("expensive waterfront listings")
		assert.Nil(t, cfg.Conditions.Demographics)
	})
}

func TestHeuristicDraftCombined(t *testing.T) {
	cfg := heuristicDraft("route Spanish speaking hispanic leads over 65 with homes above $500k")

	require.NotNil(t, cfg.Conditions.PriceBand)
	require.NotNil(t, cfg.Conditions.PriceBand.Min)
	assert.Equal(t, "500000", cfg.Conditions.PriceBand.Min.String())

	demo := cfg.Conditions.Demographics
	require.NotNil(t, demo)
	require.NotNil(t, demo.MinAge)
	assert.Equal(t, 65, *demo.MinAge)
	require.NotNil(t, demo.Ethnicities)
	require.NotNil(t, demo.Languages)

	// Targets and fallback are anchored later by the drafter
	assert.Empty(t, cfg.Targets)
	assert.Nil(t, cfg.Fallback)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json untouched", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func intPtr(v int) *int { return &v }
