// Package entrycols gives both relational backends (postgres, sqlite) a
// single, shared column order and argument list for ProductEntry, so the
// two drivers can't silently drift out of sync on column count or order.
package entrycols

import "github.com/chartlydata/offimport/internal/normalize"

// Columns is the fixed column order every backend writes ProductEntry in.
var Columns = []string{
	"code", "created", "last_updated", "name", "localized_names", "brands",
	"quantity", "unit", "serving_quantity",
	"alcohol", "energy",
	"bicarbonate", "caffeine", "calcium", "carbohydrates", "chloride",
	"cholesterol", "chromium", "copper", "fat", "fiber", "fluoride",
	"iodine", "iron", "lactose", "magnesium", "manganese", "molybdenum",
	"monounsaturated_fat", "omega_3_fat", "omega_6_fat", "phosphorus",
	"polyunsaturated_fat", "potassium", "proteins", "salt", "saturated_fat",
	"selenium", "sodium", "starch", "sugars", "taurine", "trans_fat",
	"vitamin_a", "vitamin_b1", "vitamin_b2", "vitamin_b3", "vitamin_b5",
	"vitamin_b6", "vitamin_b7", "vitamin_b9", "vitamin_b12", "vitamin_c",
	"vitamin_d", "vitamin_e", "vitamin_k", "vitamin_k1", "zinc",
}

// Args returns one value per Columns entry, in order, ready to pass to a
// parameterized INSERT/UPSERT.
func Args(e normalize.ProductEntry) []any {
	return []any{
		e.Code, e.Created, e.LastUpdated, e.Name, nilIfEmpty(e.LocalizedNames), nilIfEmpty(e.Brands),
		nilFloat(e.Quantity), string(e.Unit), nilFloat(e.ServingQuantity),
		nilFloat(e.Alcohol), nilFloat(e.Energy),
		nilFloat(e.Bicarbonate), nilFloat(e.Caffeine), nilFloat(e.Calcium), nilFloat(e.Carbohydrates), nilFloat(e.Chloride),
		nilFloat(e.Cholesterol), nilFloat(e.Chromium), nilFloat(e.Copper), nilFloat(e.Fat), nilFloat(e.Fiber), nilFloat(e.Fluoride),
		nilFloat(e.Iodine), nilFloat(e.Iron), nilFloat(e.Lactose), nilFloat(e.Magnesium), nilFloat(e.Manganese), nilFloat(e.Molybdenum),
		nilFloat(e.MonounsaturatedFat), nilFloat(e.Omega3Fat), nilFloat(e.Omega6Fat), nilFloat(e.Phosphorus),
		nilFloat(e.PolyunsaturatedFat), nilFloat(e.Potassium), nilFloat(e.Proteins), nilFloat(e.Salt), nilFloat(e.SaturatedFat),
		nilFloat(e.Selenium), nilFloat(e.Sodium), nilFloat(e.Starch), nilFloat(e.Sugars), nilFloat(e.Taurine), nilFloat(e.TransFat),
		nilFloat(e.VitaminA), nilFloat(e.VitaminB1), nilFloat(e.VitaminB2), nilFloat(e.VitaminB3), nilFloat(e.VitaminB5),
		nilFloat(e.VitaminB6), nilFloat(e.VitaminB7), nilFloat(e.VitaminB9), nilFloat(e.VitaminB12), nilFloat(e.VitaminC),
		nilFloat(e.VitaminD), nilFloat(e.VitaminE), nilFloat(e.VitaminK), nilFloat(e.VitaminK1), nilFloat(e.Zinc),
	}
}

func nilFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nilIfEmpty(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
