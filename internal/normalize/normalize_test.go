package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/chartlydata/offimport/internal/ingesterr"
	"github.com/chartlydata/offimport/internal/parser"
)

func mustParse(t *testing.T, line string) parser.Record {
	t.Helper()
	rec, err := parser.Parse([]byte(line))
	if err != nil {
		t.Fatalf("parser.Parse: %v", err)
	}
	return rec
}

func approxEqual(t *testing.T, got, want *float64, label string) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("%s: want nil, got %v", label, *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("%s: want %v, got nil", label, *want)
	}
	if math.Abs(*got-*want) > 1e-9 {
		t.Fatalf("%s: want %v, got %v", label, *want, *got)
	}
}

func f(v float64) *float64 { return &v }

// Seed 1: alcohol in "% vol" is scaled by ethanol density.
func TestNormalize_Seed1_AlcoholPercentVol(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"4017100290008","created_t":1234567890,"product_name":"Banana","codes_tags":["code-13"],"nutriments":{"alcohol":5.0,"alcohol_unit":"% vol"}}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if entry.Code != "4017100290008" || entry.Name != "Banana" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	approxEqual(t, entry.Alcohol, f(5*0.789), "alcohol")
}

// Seed 2: alcohol in grams passes through unscaled (factor=1).
func TestNormalize_Seed2_AlcoholGrams(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"4017100290008","created_t":1234567890,"product_name":"Banana","codes_tags":["code-13"],"nutriments":{"alcohol":3.0,"alcohol_unit":"g"}}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.Alcohol, f(3.0), "alcohol")
}

// Seed 3: energy-kj conversion and a milligram nutrient.
func TestNormalize_Seed3_EnergyKjAndMilligrams(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"calcium":1,"calcium_unit":"mg"}}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.Energy, f(123*0.23900574), "energy")
	approxEqual(t, entry.Calcium, f(0.001), "calcium")
}

// Seed 4: resolved serving_quantity in grams carries through unchanged
// (factor stays 1 because nutrition_data_per is not "serving").
func TestNormalize_Seed4_ServingQuantityGrams(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"calcium":1,"calcium_unit":"mg"},"serving_quantity":50,"serving_quantity_unit":"g"}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.ServingQuantity, f(50.0), "serving_quantity")
	approxEqual(t, entry.Calcium, f(0.001), "calcium")
}

// Seed 5: percent-based serving_quantity resolves against product_quantity.
func TestNormalize_Seed5_ServingQuantityPercent(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"calcium":1,"calcium_unit":"mg"},"product_quantity":200,"serving_quantity":50,"serving_quantity_unit":"%"}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.Quantity, f(200.0), "quantity")
	approxEqual(t, entry.ServingQuantity, f(100.0), "serving_quantity")
}

// Seed 6: nutrition_data_per "serving" rescales nutrients by 100/serving_quantity.
func TestNormalize_Seed6_PerServingScaling(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"calcium":1,"calcium_unit":"mg"},"serving_quantity":50,"nutrition_data_per":"serving"}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.Energy, f(246*0.23900574), "energy")
	approxEqual(t, entry.Calcium, f(0.002), "calcium")
}

// Seed 7: vitamin-pp alone resolves to vitamin_b3.
func TestNormalize_Seed7_VitaminPPAlone(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"vitamin-pp":1,"vitamin-pp_unit":"mg"}}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.VitaminB3, f(0.001), "vitamin_b3")
}

// Seed 8: vitamin-pp and vitamin-b3 both present sum (not prefer-one).
func TestNormalize_Seed8_VitaminB3Sum(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"vitamin-pp":1,"vitamin-pp_unit":"mg","vitamin-b3":1,"vitamin-b3_unit":"mg"}}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry.VitaminB3, f(0.002), "vitamin_b3")
}

// Seed 9: folates/vitamin-b9 sum-if-both, same as vitamin_b3.
func TestNormalize_Seed9_VitaminB9Sum(t *testing.T) {
	rec1 := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"folates":1,"folates_unit":"mg"}}`)
	entry1, err := Normalize(rec1)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry1.VitaminB9, f(0.001), "vitamin_b9 (folates only)")

	rec2 := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123,"folates":1,"folates_unit":"mg","vitamin-b9":1,"vitamin-b9_unit":"mg"}}`)
	entry2, err := Normalize(rec2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	approxEqual(t, entry2.VitaminB9, f(0.002), "vitamin_b9 (both)")
}

// Seed 10: brand list whitespace normalization.
func TestNormalize_Seed10_BrandsNormalized(t *testing.T) {
	rec := mustParse(t, `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123},"brands":"brand1,    brand2,brand3"}`)
	entry, err := Normalize(rec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if entry.Brands == nil || *entry.Brands != "brand1,brand2,brand3" {
		t.Fatalf("Brands = %v", entry.Brands)
	}
}

func wantReason(t *testing.T, err error, reason string) {
	t.Helper()
	if !ingesterr.IsInvalidData(err) {
		t.Fatalf("expected InvalidDataError, got %v", err)
	}
	if err.Error() != reason {
		t.Fatalf("reason = %q, want %q", err.Error(), reason)
	}
}

func TestNormalize_RejectReasons(t *testing.T) {
	base := func(extra string) string {
		return `{"id":"1","code":"44000271","created_t":1234567890,"product_name":"X","codes_tags":["code-8"],"nutriments":{"energy-kj":123}` + extra + `}`
	}

	cases := []struct {
		name   string
		line   string
		reason string
	}{
		{"no nutrition data", `{"no_nutrition_data":"on","id":"1"}`, "no nutrition data"},
		{"no identifier", `{"created_t":1,"product_name":"X","codes_tags":["code-8"]}`, "no identifier"},
		{"invalid identifier", `{"id":"0","created_t":1,"product_name":"X","codes_tags":["code-8"]}`, "invalid identifier (0)"},
		{"no creation date", `{"id":"1","product_name":"X","codes_tags":["code-8"]}`, "no creation date"},
		{"no product name", `{"id":"1","created_t":1,"codes_tags":["code-8"]}`, "no product name"},
		{"no codes tags", `{"id":"1","created_t":1,"product_name":"X"}`, "no codes tags"},
		{"obsolete entry", `{"id":"1","created_t":1,"product_name":"X","codes_tags":["code-8"],"obsolete":"on"}`, "obsolete entry"},
		{"no supported code tag", `{"id":"1","created_t":1,"product_name":"X","codes_tags":["other"]}`, "no supported code tag found"},
		{"invalid EAN-8", `{"id":"1","code":"12345678","created_t":1,"product_name":"X","codes_tags":["code-8"]}`, "invalid EAN-8 code"},
		{"invalid EAN-13", `{"id":"1","code":"0000000000000","created_t":1,"product_name":"X","codes_tags":["code-13"]}`, "invalid EAN-13 code"},
		{"no nutriments present", `{"id":"1","code":"44000271","created_t":1,"product_name":"X","codes_tags":["code-8"]}`, "no nutriments present"},
		{"serving percent no quantity", base(`,"serving_quantity":10,"serving_quantity_unit":"%"`), "serving_quantity in percent, but no product_quantity"},
		{"unsupported serving unit", base(`,"serving_quantity":10,"serving_quantity_unit":"lb"`), "unsupported serving quantity unit: lb"},
		{"per serving no serving quantity", base(`,"nutrition_data_per":"serving"`), "nutrition data per serving, but no serving quantity"},
		{"alcohol no unit", `{"id":"1","code":"44000271","created_t":1,"product_name":"X","codes_tags":["code-8"],"nutriments":{"alcohol":5}}`, "alcohol has no unit"},
		{"invalid alcohol unit", `{"id":"1","code":"44000271","created_t":1,"product_name":"X","codes_tags":["code-8"],"nutriments":{"alcohol":5,"alcohol_unit":"oz"}}`, "invalid alcohol unit: oz"},
		{"all nutrition zero", `{"id":"1","code":"44000271","created_t":1,"product_name":"X","codes_tags":["code-8"],"nutriments":{"sugars":0}}`, "all nutrition data is zero"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := mustParse(t, c.line)
			_, err := Normalize(rec)
			wantReason(t, err, c.reason)
		})
	}
}

func TestNormalize_MalformedJSONPassesThroughVerbatim(t *testing.T) {
	_, err := parser.Parse([]byte(`not json`))
	if !ingesterr.IsInvalidData(err) {
		t.Fatalf("expected InvalidDataError, got %v", err)
	}
	var v map[string]any
	jerr := json.Unmarshal([]byte(`not json`), &v)
	if jerr == nil || err.Error() != jerr.Error() {
		t.Fatalf("reason = %q, want JSON decode message %v", err.Error(), jerr)
	}
}
