package normalize

// setRegularNutrient assigns a converted value to its ProductEntry field by
// canonical name. Implemented as an explicit switch rather than reflection:
// the mapping is small and fixed, and a typo in a field name is a compile
// error. A name that matches no case is ignored (there is no default case).
func setRegularNutrient(e *ProductEntry, name string, v *float64) {
	switch name {
	case "bicarbonate":
		e.Bicarbonate = v
	case "caffeine":
		e.Caffeine = v
	case "calcium":
		e.Calcium = v
	case "carbohydrates":
		e.Carbohydrates = v
	case "chloride":
		e.Chloride = v
	case "cholesterol":
		e.Cholesterol = v
	case "chromium":
		e.Chromium = v
	case "copper":
		e.Copper = v
	case "fat":
		e.Fat = v
	case "fiber":
		e.Fiber = v
	case "fluoride":
		e.Fluoride = v
	case "iodine":
		e.Iodine = v
	case "iron":
		e.Iron = v
	case "lactose":
		e.Lactose = v
	case "magnesium":
		e.Magnesium = v
	case "manganese":
		e.Manganese = v
	case "molybdenum":
		e.Molybdenum = v
	case "monounsaturated_fat":
		e.MonounsaturatedFat = v
	case "omega_3_fat":
		e.Omega3Fat = v
	case "omega_6_fat":
		e.Omega6Fat = v
	case "phosphorus":
		e.Phosphorus = v
	case "polyunsaturated_fat":
		e.PolyunsaturatedFat = v
	case "potassium":
		e.Potassium = v
	case "proteins":
		e.Proteins = v
	case "salt":
		e.Salt = v
	case "saturated_fat":
		e.SaturatedFat = v
	case "selenium":
		e.Selenium = v
	case "sodium":
		e.Sodium = v
	case "starch":
		e.Starch = v
	case "sugars":
		e.Sugars = v
	case "taurine":
		e.Taurine = v
	case "trans_fat":
		e.TransFat = v
	case "vitamin_a":
		e.VitaminA = v
	case "vitamin_b1":
		e.VitaminB1 = v
	case "vitamin_b2":
		e.VitaminB2 = v
	case "vitamin_b5":
		e.VitaminB5 = v
	case "vitamin_b6":
		e.VitaminB6 = v
	case "vitamin_b7":
		e.VitaminB7 = v
	case "vitamin_b12":
		e.VitaminB12 = v
	case "vitamin_c":
		e.VitaminC = v
	case "vitamin_d":
		e.VitaminD = v
	case "vitamin_e":
		e.VitaminE = v
	case "vitamin_k":
		e.VitaminK = v
	case "vitamin_k1":
		e.VitaminK1 = v
	case "zinc":
		e.Zinc = v
	}
}

// collapseZeros implements the final gate's "every 0.0 nutrient becomes
// null" rule across all nutrient fields, including the specially-handled
// ones (alcohol, energy, vitamin_b3, vitamin_b9).
func collapseZeros(e *ProductEntry) {
	e.Alcohol = zeroToNil(e.Alcohol)
	e.Energy = zeroToNil(e.Energy)
	e.VitaminB3 = zeroToNil(e.VitaminB3)
	e.VitaminB9 = zeroToNil(e.VitaminB9)
	e.Bicarbonate = zeroToNil(e.Bicarbonate)
	e.Caffeine = zeroToNil(e.Caffeine)
	e.Calcium = zeroToNil(e.Calcium)
	e.Carbohydrates = zeroToNil(e.Carbohydrates)
	e.Chloride = zeroToNil(e.Chloride)
	e.Cholesterol = zeroToNil(e.Cholesterol)
	e.Chromium = zeroToNil(e.Chromium)
	e.Copper = zeroToNil(e.Copper)
	e.Fat = zeroToNil(e.Fat)
	e.Fiber = zeroToNil(e.Fiber)
	e.Fluoride = zeroToNil(e.Fluoride)
	e.Iodine = zeroToNil(e.Iodine)
	e.Iron = zeroToNil(e.Iron)
	e.Lactose = zeroToNil(e.Lactose)
	e.Magnesium = zeroToNil(e.Magnesium)
	e.Manganese = zeroToNil(e.Manganese)
	e.Molybdenum = zeroToNil(e.Molybdenum)
	e.MonounsaturatedFat = zeroToNil(e.MonounsaturatedFat)
	e.Omega3Fat = zeroToNil(e.Omega3Fat)
	e.Omega6Fat = zeroToNil(e.Omega6Fat)
	e.Phosphorus = zeroToNil(e.Phosphorus)
	e.PolyunsaturatedFat = zeroToNil(e.PolyunsaturatedFat)
	e.Potassium = zeroToNil(e.Potassium)
	e.Proteins = zeroToNil(e.Proteins)
	e.Salt = zeroToNil(e.Salt)
	e.SaturatedFat = zeroToNil(e.SaturatedFat)
	e.Selenium = zeroToNil(e.Selenium)
	e.Sodium = zeroToNil(e.Sodium)
	e.Starch = zeroToNil(e.Starch)
	e.Sugars = zeroToNil(e.Sugars)
	e.Taurine = zeroToNil(e.Taurine)
	e.TransFat = zeroToNil(e.TransFat)
	e.VitaminA = zeroToNil(e.VitaminA)
	e.VitaminB1 = zeroToNil(e.VitaminB1)
	e.VitaminB2 = zeroToNil(e.VitaminB2)
	e.VitaminB5 = zeroToNil(e.VitaminB5)
	e.VitaminB6 = zeroToNil(e.VitaminB6)
	e.VitaminB7 = zeroToNil(e.VitaminB7)
	e.VitaminB12 = zeroToNil(e.VitaminB12)
	e.VitaminC = zeroToNil(e.VitaminC)
	e.VitaminD = zeroToNil(e.VitaminD)
	e.VitaminE = zeroToNil(e.VitaminE)
	e.VitaminK = zeroToNil(e.VitaminK)
	e.VitaminK1 = zeroToNil(e.VitaminK1)
	e.Zinc = zeroToNil(e.Zinc)
}

// allNutrientsNil reports whether every nutrient field is null, which
// triggers the "all nutrition data is zero" reject.
func allNutrientsNil(e ProductEntry) bool {
	fields := []*float64{
		e.Alcohol, e.Energy, e.VitaminB3, e.VitaminB9,
		e.Bicarbonate, e.Caffeine, e.Calcium, e.Carbohydrates, e.Chloride,
		e.Cholesterol, e.Chromium, e.Copper, e.Fat, e.Fiber, e.Fluoride,
		e.Iodine, e.Iron, e.Lactose, e.Magnesium, e.Manganese, e.Molybdenum,
		e.MonounsaturatedFat, e.Omega3Fat, e.Omega6Fat, e.Phosphorus,
		e.PolyunsaturatedFat, e.Potassium, e.Proteins, e.Salt,
		e.SaturatedFat, e.Selenium, e.Sodium, e.Starch, e.Sugars, e.Taurine,
		e.TransFat, e.VitaminA, e.VitaminB1, e.VitaminB2, e.VitaminB5,
		e.VitaminB6, e.VitaminB7, e.VitaminB12, e.VitaminC, e.VitaminD,
		e.VitaminE, e.VitaminK, e.VitaminK1, e.Zinc,
	}
	for _, f := range fields {
		if f != nil {
			return false
		}
	}
	return true
}
