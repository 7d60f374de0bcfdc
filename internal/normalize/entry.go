// Package normalize implements the Validator/Normalizer (spec.md §4.4): it
// takes a parser.Record and either rejects it with an
// *ingesterr.InvalidDataError carrying one of the stable reason strings in
// spec.md §7, or produces a canonical ProductEntry ready for the sink.
package normalize

import "time"

// Unit is the resolved quantity unit of a ProductEntry.
type Unit string

const (
	UnitGrams        Unit = "G"
	UnitMilliliters Unit = "ML"
)

// ProductEntry is the canonical output record, keyed by Code.
type ProductEntry struct {
	Code          string
	Created       time.Time
	LastUpdated   time.Time
	Name          string
	LocalizedNames *string
	Brands         *string

	Quantity        *float64
	Unit            Unit
	ServingQuantity *float64

	Alcohol            *float64
	Bicarbonate        *float64
	Caffeine           *float64
	Calcium            *float64
	Carbohydrates      *float64
	Chloride           *float64
	Cholesterol        *float64
	Chromium           *float64
	Copper             *float64
	Energy             *float64
	Fat                *float64
	Fiber              *float64
	Fluoride           *float64
	Iodine             *float64
	Iron               *float64
	Lactose            *float64
	Magnesium          *float64
	Manganese          *float64
	Molybdenum         *float64
	MonounsaturatedFat *float64
	Omega3Fat          *float64
	Omega6Fat          *float64
	Phosphorus         *float64
	PolyunsaturatedFat *float64
	Potassium          *float64
	Proteins           *float64
	Salt               *float64
	SaturatedFat       *float64
	Selenium           *float64
	Sodium             *float64
	Starch             *float64
	Sugars             *float64
	Taurine            *float64
	TransFat           *float64
	VitaminA           *float64
	VitaminB1          *float64
	VitaminB2          *float64
	VitaminB3          *float64
	VitaminB5          *float64
	VitaminB6          *float64
	VitaminB7          *float64
	VitaminB9          *float64
	VitaminB12         *float64
	VitaminC           *float64
	VitaminD           *float64
	VitaminE           *float64
	VitaminK           *float64
	VitaminK1          *float64
	Zinc               *float64
}
