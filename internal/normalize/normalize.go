package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chartlydata/offimport/internal/ingesterr"
	"github.com/chartlydata/offimport/internal/parser"
)

// Normalize runs the full pre-filter, barcode, quantity/serving, and
// nutrient pipeline of spec.md §4.4 against one parsed record, returning
// either a ProductEntry or an *ingesterr.InvalidDataError with one of the
// reason strings enumerated in spec.md §7.
func Normalize(rec parser.Record) (ProductEntry, error) {
	if onOrTrue(rec.NoNutritionData) {
		return ProductEntry{}, ingesterr.NewInvalidData("no nutrition data")
	}
	if rec.ID == nil {
		return ProductEntry{}, ingesterr.NewInvalidData("no identifier")
	}
	id, err := strconv.Atoi(strings.TrimSpace(*rec.ID))
	if err == nil && id == 0 {
		return ProductEntry{}, ingesterr.NewInvalidDataf("invalid identifier (%s)", *rec.ID)
	}
	if rec.CreatedT == nil {
		return ProductEntry{}, ingesterr.NewInvalidData("no creation date")
	}
	if rec.ProductName == nil {
		return ProductEntry{}, ingesterr.NewInvalidData("no product name")
	}
	if len(rec.CodesTags) == 0 {
		return ProductEntry{}, ingesterr.NewInvalidData("no codes tags")
	}
	if strings.EqualFold(strVal(rec.Obsolete), "on") {
		return ProductEntry{}, ingesterr.NewInvalidData("obsolete entry")
	}

	code, err := selectBarcode(rec)
	if err != nil {
		return ProductEntry{}, err
	}

	nutriments := rec.Nutriments
	if nutriments == nil {
		nutriments = rec.NutrimentsEstimated
	}
	if nutriments == nil {
		return ProductEntry{}, ingesterr.NewInvalidData("no nutriments present")
	}

	quantity := truthyFloat(rec.ProductQuantity)
	unit := resolveUnit(rec.ProductQuantityUnit)

	servingQuantity, err := resolveServingQuantity(rec, quantity)
	if err != nil {
		return ProductEntry{}, err
	}

	factor := 1.0
	if rec.NutritionDataPer != nil && *rec.NutritionDataPer == "serving" {
		if servingQuantity == nil {
			return ProductEntry{}, ingesterr.NewInvalidData("nutrition data per serving, but no serving quantity")
		}
		factor = 100.0 / *servingQuantity
	}

	entry := ProductEntry{
		Code:            code,
		Name:            *rec.ProductName,
		Quantity:        quantity,
		Unit:            unit,
		ServingQuantity: servingQuantity,
	}

	alcohol, err := convertAlcohol(nutriments, factor)
	if err != nil {
		return ProductEntry{}, err
	}
	entry.Alcohol = alcohol
	entry.Energy = convertEnergy(nutriments, factor)
	entry.VitaminB3 = aggregateSynonyms(
		convertNutrient(nutriments["vitamin_b3"], factor, "vitamin_b3"),
		convertNutrient(nutriments["vitamin_pp"], factor, "vitamin_pp"),
	)
	entry.VitaminB9 = aggregateSynonyms(
		convertNutrient(nutriments["vitamin_b9"], factor, "vitamin_b9"),
		convertNutrient(nutriments["folates"], factor, "folates"),
	)

	for _, name := range parser.RegularNutrients {
		v := convertNutrient(nutriments[name], factor, name)
		setRegularNutrient(&entry, name, v)
	}

	collapseZeros(&entry)
	if allNutrientsNil(entry) {
		return ProductEntry{}, ingesterr.NewInvalidData("all nutrition data is zero")
	}

	entry.LocalizedNames = buildLocalizedNames(rec)
	entry.Brands = buildBrands(rec.Brands)
	entry.Created = epochDate(*rec.CreatedT)
	if rec.LastUpdatedT != nil {
		entry.LastUpdated = epochDate(*rec.LastUpdatedT)
	} else {
		entry.LastUpdated = entry.Created
	}

	return entry, nil
}

func onOrTrue(s *string) bool {
	if s == nil {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return v == "on" || v == "true"
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truthyFloat(f *float64) *float64 {
	if f == nil || *f == 0 {
		return nil
	}
	v := *f
	return &v
}

func resolveUnit(u *string) Unit {
	if u == nil {
		return UnitGrams
	}
	switch strings.ToLower(strings.TrimSpace(*u)) {
	case "g", "":
		return UnitGrams
	case "ml":
		return UnitMilliliters
	default:
		return UnitGrams
	}
}

// selectBarcode picks EAN-8 or EAN-13 by codes_tags priority and validates
// the checksum, per spec.md §4.4.
func selectBarcode(rec parser.Record) (string, error) {
	code := strVal(rec.Code)
	hasTag := func(tag string) bool {
		for _, t := range rec.CodesTags {
			if t == tag {
				return true
			}
		}
		return false
	}

	switch {
	case hasTag("code-8"):
		padded := padLeft(code, 8)
		if !validEAN8(padded) {
			return "", ingesterr.NewInvalidData("invalid EAN-8 code")
		}
		return padded, nil
	case hasTag("code-13"):
		padded := padLeft(code, 13)
		if !validEAN13(padded) {
			return "", ingesterr.NewInvalidData("invalid EAN-13 code")
		}
		return padded, nil
	default:
		return "", ingesterr.NewInvalidData("no supported code tag found")
	}
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

// resolveServingQuantity implements spec.md §4.4's serving-quantity
// resolution: grams/unset pass through, percent requires product_quantity,
// anything else is rejected.
func resolveServingQuantity(rec parser.Record, quantity *float64) (*float64, error) {
	if rec.ServingQuantity == nil {
		return nil, nil
	}
	unit := ""
	if rec.ServingQuantityUnit != nil {
		unit = strings.ToLower(strings.TrimSpace(*rec.ServingQuantityUnit))
	}
	switch unit {
	case "g", "":
		v := *rec.ServingQuantity
		return &v, nil
	case "%":
		if quantity == nil {
			return nil, ingesterr.NewInvalidData("serving_quantity in percent, but no product_quantity")
		}
		v := *rec.ServingQuantity / 100 * *quantity
		return &v, nil
	default:
		return nil, ingesterr.NewInvalidDataf("unsupported serving quantity unit: %s", unit)
	}
}

// convertAlcohol implements the alcohol special rule: the triple's bare
// value (not value_100g) drives the unit dispatch, since alcohol carries no
// value_100g sibling upstream.
func convertAlcohol(nutriments map[string]parser.NutrientTriple, factor float64) (*float64, error) {
	t, ok := nutriments["alcohol"]
	if !ok || t.Value == nil {
		return nil, nil
	}
	if t.Unit == nil {
		return nil, ingesterr.NewInvalidData("alcohol has no unit")
	}
	switch *t.Unit {
	case "% vol", "% vol / *", "vol", "%":
		v := factor * *t.Value * ethanolDensityGPerML
		return &v, nil
	case "g":
		v := factor * *t.Value
		return &v, nil
	default:
		return nil, ingesterr.NewInvalidDataf("invalid alcohol unit: %s", *t.Unit)
	}
}

// convertEnergy implements the energy special rule: energy_kcal wins if
// present, else energy_kj is converted.
func convertEnergy(nutriments map[string]parser.NutrientTriple, factor float64) *float64 {
	if t, ok := nutriments["energy_kcal"]; ok && t.Value != nil {
		v := factor * *t.Value
		return &v
	}
	if t, ok := nutriments["energy_kj"]; ok && t.Value != nil {
		v := factor * *t.Value * kjToKcal
		return &v
	}
	return nil
}

func buildLocalizedNames(rec parser.Record) *string {
	var parts []string
	for _, lang := range parser.Languages {
		name, ok := rec.LocalizedNames[lang]
		if !ok {
			continue
		}
		if rec.ProductName != nil && name == *rec.ProductName {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", lang, name))
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, ",")
	return &joined
}

func buildBrands(brands *string) *string {
	if brands == nil {
		return nil
	}
	parts := strings.Split(*brands, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	joined := strings.Join(parts, ",")
	return &joined
}

func epochDate(epochSeconds int64) time.Time {
	return time.Unix(epochSeconds, 0).UTC()
}
