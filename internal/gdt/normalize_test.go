package gdt

import (
	"testing"

	"ballooner/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FeatureList(t *testing.T) {
	raw := []byte(`{"features":[
		{"characteristic":"Position","value":0.050,"datums":["A","B"],"modifiers":["MMC"]},
		{"characteristic":"Flatness","value":"0.01"},
		"skipped"
	]}`)
	res, err := Normalize(raw)
	require.NoError(t, err)
	assert.False(t, res.Single)
	require.Len(t, res.Features, 2)

	assert.Equal(t, types.GdtFeature{
		Characteristic: "Position",
		Value:          "0.050",
		Datums:         []string{"A", "B"},
		Modifiers:      []string{"MMC"},
	}, res.Features[0])
	assert.Equal(t, "Flatness", res.Features[1].Characteristic)
	assert.Nil(t, res.Features[1].Datums)
}

func TestNormalize_SingleSymbol(t *testing.T) {
	raw := []byte(`{
		"gdt_symbol_name":"Position",
		"tolerance_value":0.1,
		"diameter_symbol":true,
		"material_condition_modifier":"MMC",
		"datums":[{"datum_letter":"A","datum_material_condition":"None"},{"datum_letter":"B","datum_material_condition":"LMC"}]
	}`)
	res, err := Normalize(raw)
	require.NoError(t, err)
	assert.True(t, res.Single)
	require.Len(t, res.Features, 1)

	f := res.Features[0]
	assert.Equal(t, "Position", f.Characteristic)
	assert.Equal(t, "0.1", f.Value)
	assert.True(t, f.Diameter)
	assert.Equal(t, []string{"A", "B (LMC)"}, f.Datums)
	assert.Equal(t, []string{"MMC"}, f.Modifiers)

	row := f.Row()
	assert.Equal(t, "Ø0.1", row.Value)
	assert.Equal(t, "A, B (LMC)", row.Datums)
}

func TestNormalize_Fallbacks(t *testing.T) {
	res, err := Normalize([]byte(`{"features":[{}]}`))
	require.NoError(t, err)
	require.Len(t, res.Features, 1)
	row := res.Features[0].Row()
	assert.Equal(t, types.GdtRow{Characteristic: "Unknown", Value: "N/A", Datums: "None", Modifiers: "None"}, row)
}

func TestNormalize_EmptyOrMissingList(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":     `{"features":[]}`,
		"missing":   `{"status":"ok"}`,
		"not array": `{"features":"none"}`,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Normalize([]byte(raw))
			require.NoError(t, err)
			assert.False(t, res.Single)
			assert.Empty(t, res.Features)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	_, err := Normalize([]byte(`not json`))
	assert.Error(t, err)
	_, err = Normalize([]byte(`[1,2]`))
	assert.Error(t, err)
}
