package brand

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/brand-studio/internal/types"
	"github.com/stretchr/testify/require"
)

func sampleProfile() types.BrandProfile {
	return types.BrandProfile{
		BrandVoice:     []string{"friendly", "expert", "calm"},
		ColorPalette:   []string{"#0A3D62", "#3C6382", "#F6B93B", "#222222", "#FAFAFA"},
		Typography:     types.StringPtr("Humanist sans-serif"),
		ContentThemes:  []string{"care tips", "product spotlights", "customer stories", "seasonal advice", "team"},
		TargetAudience: "Homeowners aged 30-55",
		PostingStyle:   "professional",
		Industry:       types.StringPtr("Home services"),
	}
}

func profileJSON(t *testing.T, p types.BrandProfile) string {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return string(data)
}
