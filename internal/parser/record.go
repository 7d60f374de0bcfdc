// Package parser implements RecordParser (spec.md §4.3): it decodes one
// line of the feed into a typed intermediate Record. All fields are
// optional at this stage; the validator (internal/normalize) enforces
// which combinations are acceptable.
package parser

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chartlydata/offimport/internal/ingesterr"
)

// Languages is the fixed set of `product_name_<lang>` suffixes spec.md §3
// enumerates.
var Languages = []string{
	"ar", "bg", "ca", "ch", "cs", "da", "de", "el", "en", "es", "et", "fi",
	"fr", "he", "hr", "hu", "id", "it", "ja", "la", "lc", "lt", "lv", "nb",
	"nl", "no", "pl", "pt", "ro", "ru", "sk", "sl", "sr", "sv", "th", "tr",
	"uk", "vi", "zh",
}

// NutrientTriple is one nutrient's {value, unit, value_100g} as read from
// the upstream `nutriments`/`nutriments_estimated` maps.
type NutrientTriple struct {
	Value     *float64
	Unit      *string
	Value100g *float64
}

// Record is the parsed, alias-resolved intermediate form of one feed line.
type Record struct {
	ID             *string
	Code           *string
	CreatedT       *int64
	LastUpdatedT   *int64
	ProductName    *string
	LocalizedNames map[string]string // lang -> product_name_<lang>

	ProductQuantity     *float64
	ProductQuantityUnit *string
	ServingQuantity     *float64
	ServingQuantityUnit *string

	NutritionDataPer *string
	CodesTags        []string
	NoNutritionData  *string
	Obsolete         *string
	Brands           *string

	Nutriments          map[string]NutrientTriple
	NutrimentsEstimated map[string]NutrientTriple
}

// Parse decodes one NDJSON line into a Record. A UTF-8 or JSON decode
// failure is returned as an *ingesterr.InvalidDataError carrying the
// underlying message verbatim, matching spec.md §4.3/§7.
func Parse(line []byte) (Record, error) {
	if !utf8.Valid(line) {
		return Record{}, ingesterr.NewInvalidData("invalid utf-8 sequence")
	}

	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Record{}, ingesterr.NewInvalidData(err.Error())
	}

	rec := Record{
		LocalizedNames: map[string]string{},
	}

	rec.ID = getString(raw, "id")
	rec.Code = getString(raw, "code")
	rec.CreatedT = getInt64(raw, "created_t")
	rec.LastUpdatedT = getInt64(raw, "last_updated_t")
	rec.ProductName = getString(raw, "product_name")

	for _, lang := range Languages {
		key := "product_name_" + lang
		if v := getString(raw, key); v != nil {
			rec.LocalizedNames[lang] = *v
		}
	}

	rec.ProductQuantity = getFloat(raw, "product_quantity")
	rec.ProductQuantityUnit = getString(raw, "product_quantity_unit")
	rec.ServingQuantity = getFloat(raw, "serving_quantity")
	rec.ServingQuantityUnit = getString(raw, "serving_quantity_unit")

	rec.NutritionDataPer = getString(raw, "nutrition_data_per")
	rec.CodesTags = getStringSlice(raw, "codes_tags")
	rec.NoNutritionData = getString(raw, "no_nutrition_data")
	rec.Obsolete = getString(raw, "obsolete")
	rec.Brands = getString(raw, "brands")

	if m, ok := raw["nutriments"].(map[string]any); ok {
		rec.Nutriments = parseNutriments(m)
	}
	if m, ok := raw["nutriments_estimated"].(map[string]any); ok {
		rec.NutrimentsEstimated = parseNutriments(m)
	}

	return rec, nil
}

// parseNutriments groups a flat {name, name_unit, name_100g, ...} map into
// per-nutrient triples, resolving every upstream key (including the
// hyphenated aliases) through nutrientAliases. Unknown keys are ignored.
func parseNutriments(m map[string]any) map[string]NutrientTriple {
	out := make(map[string]NutrientTriple)

	ensure := func(name string) *NutrientTriple {
		t := out[name]
		return &t
	}
	store := func(name string, t NutrientTriple) { out[name] = t }

	for key, v := range m {
		base, kind := splitNutrientKey(key)
		canonical, ok := nutrientAliases[base]
		if !ok {
			continue
		}

		t := ensure(canonical)
		switch kind {
		case "value":
			if f, ok := asFloat(v); ok {
				t.Value = &f
			}
		case "unit":
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(s)
				t.Unit = &s
			}
		case "value100g":
			if f, ok := asFloat(v); ok {
				t.Value100g = &f
			}
		}
		store(canonical, *t)
	}

	return out
}

func splitNutrientKey(key string) (base string, kind string) {
	if strings.HasSuffix(key, "_100g") {
		return strings.TrimSuffix(key, "_100g"), "value100g"
	}
	if strings.HasSuffix(key, "_unit") {
		return strings.TrimSuffix(key, "_unit"), "unit"
	}
	return key, "value"
}

func getString(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	default:
		return nil
	}
}

func getStringSlice(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getFloat(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}

func getInt64(m map[string]any, key string) *int64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		n := int64(t)
		return &n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
