package normalize

import "github.com/chartlydata/offimport/internal/parser"

const (
	ethanolDensityGPerML = 0.789
	kjToKcal             = 0.23900574

	iuVitaminA = 3e-7
	iuVitaminD = 2.5e-8
	iuVitaminE = 6.7e-7
)

// convertNutrient implements spec.md §4.4's convert_nutrient: resolve one
// (value, unit, value_100g) triple into grams per 100 g of product, or nil
// if the triple carries no usable data.
func convertNutrient(t parser.NutrientTriple, factor float64, name string) *float64 {
	if t.Value100g != nil && *t.Value100g != 0 {
		v := *t.Value100g
		return &v
	}
	if t.Value == nil || t.Unit == nil {
		return nil
	}
	if *t.Value == 0 {
		return nil
	}

	switch *t.Unit {
	case "µg", "μg", "&#181;g":
		v := factor * *t.Value / 1_000_000
		return &v
	case "mg", "mcg":
		v := factor * *t.Value / 1_000
		return &v
	case "g", "g/100mL", "g/100g", "":
		v := factor * *t.Value
		return &v
	case "IU":
		switch name {
		case "vitamin_a":
			v := factor * *t.Value * iuVitaminA
			return &v
		case "vitamin_d":
			v := factor * *t.Value * iuVitaminD
			return &v
		case "vitamin_e":
			v := factor * *t.Value * iuVitaminE
			return &v
		default:
			return nil
		}
	default:
		return nil
	}
}

// aggregateSynonyms implements the sum-if-both rule spec.md §4.4/§9
// requires for vitamin_b3/vitamin_pp and vitamin_b9/folates: both are
// converted independently, then summed if both yielded a value, else
// whichever one did (if any) is used.
func aggregateSynonyms(a, b *float64) *float64 {
	switch {
	case a != nil && b != nil:
		sum := *a + *b
		return &sum
	case a != nil:
		v := *a
		return &v
	case b != nil:
		v := *b
		return &v
	default:
		return nil
	}
}

func zeroToNil(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
