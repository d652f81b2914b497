package gdt

import (
	"fmt"
	"strings"

	"ballooner/internal/types"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	unknownText = "Unknown"
	naText      = "N/A"
	noneText    = "None"
)

// Normalize maps an analysis response onto GdtResult. Two payload shapes are
// accepted: {"features": [...]} and a single symbol object carrying
// gdt_symbol_name / tolerance_value / datums / material_condition_modifier.
// Missing or mistyped fields degrade to placeholder text instead of failing.
func Normalize(raw []byte) (types.GdtResult, error) {
	if !gjson.ValidBytes(raw) {
		return types.GdtResult{}, fmt.Errorf("analysis response is not valid JSON")
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return types.GdtResult{}, fmt.Errorf("analysis response must be a JSON object")
	}
	if isSingleSymbol(parsed) {
		return types.GdtResult{Single: true, Features: []types.GdtFeature{mapFeature(parsed)}}, nil
	}
	features := parsed.Get("features")
	if !features.IsArray() {
		return types.GdtResult{Features: []types.GdtFeature{}}, nil
	}
	out := make([]types.GdtFeature, 0, len(features.Array()))
	features.ForEach(func(_, f gjson.Result) bool {
		if f.IsObject() {
			out = append(out, mapFeature(f))
		}
		return true
	})
	return types.GdtResult{Features: out}, nil
}

func isSingleSymbol(r gjson.Result) bool {
	if r.Get("features").Exists() {
		return false
	}
	return r.Get("gdt_symbol_name").Exists() || r.Get("tolerance_value").Exists()
}

// mapFeature reads either key vocabulary, preferring the features-list names.
func mapFeature(f gjson.Result) types.GdtFeature {
	return types.GdtFeature{
		Characteristic: firstString(unknownText, f.Get("characteristic"), f.Get("gdt_symbol_name")),
		Value:          toleranceText(f),
		Diameter:       f.Get("diameter_symbol").Bool(),
		Datums:         datumList(f.Get("datums")),
		Modifiers:      modifierList(f),
	}
}

func firstString(fallback string, candidates ...gjson.Result) string {
	for _, c := range candidates {
		if s := scalarText(c); s != "" {
			return s
		}
	}
	return fallback
}

func toleranceText(f gjson.Result) string {
	for _, key := range []string{"value", "tolerance_value"} {
		if s := scalarText(f.Get(key)); s != "" {
			return s
		}
	}
	return naText
}

// scalarText renders strings and numbers. Numbers keep the precision they
// were written with, so 0.050 stays 0.050 and 1e-2 becomes 0.01.
func scalarText(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number:
		d, err := decimal.NewFromString(r.Raw)
		if err != nil {
			return r.Raw
		}
		if exp := d.Exponent(); exp < 0 {
			return d.StringFixed(-exp)
		}
		return d.String()
	default:
		return ""
	}
}

// datumList accepts ["A","B"] as well as [{"datum_letter":"A","datum_material_condition":"MMC"}].
func datumList(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	var out []string
	r.ForEach(func(_, d gjson.Result) bool {
		var label string
		if d.IsObject() {
			label = scalarText(d.Get("datum_letter"))
			if label == "" {
				return true
			}
			if mc := scalarText(d.Get("datum_material_condition")); mc != "" && !isNone(mc) {
				label = fmt.Sprintf("%s (%s)", label, mc)
			}
		} else {
			label = scalarText(d)
		}
		if label != "" {
			out = append(out, label)
		}
		return true
	})
	return out
}

func modifierList(f gjson.Result) []string {
	var out []string
	if mods := f.Get("modifiers"); mods.IsArray() {
		mods.ForEach(func(_, m gjson.Result) bool {
			if s := scalarText(m); s != "" {
				out = append(out, s)
			}
			return true
		})
	}
	if mc := scalarText(f.Get("material_condition_modifier")); mc != "" && !isNone(mc) {
		out = append(out, mc)
	}
	return out
}

func isNone(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null", "n/a":
		return true
	}
	return false
}
