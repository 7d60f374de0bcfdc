package parser

// nutrientAliases maps every upstream nutriment base key this pipeline
// recognizes — both its canonical underscored form and the hyphenated
// form OpenFoodFacts actually emits for multi-word nutrients — to the
// canonical name the normalizer (internal/normalize) looks up. Per
// spec.md §9's Design Notes, hyphenated keys are enumerated explicitly
// rather than derived by replacing "-" with "_", so a future rename of a
// canonical field can't silently break alias resolution.
var nutrientAliases = map[string]string{
	"bicarbonate":   "bicarbonate",
	"caffeine":      "caffeine",
	"calcium":       "calcium",
	"carbohydrates": "carbohydrates",
	"chloride":      "chloride",
	"cholesterol":   "cholesterol",
	"chromium":      "chromium",
	"copper":        "copper",
	"fat":           "fat",
	"fiber":         "fiber",
	"fluoride":      "fluoride",
	"iodine":        "iodine",
	"iron":          "iron",
	"lactose":       "lactose",
	"magnesium":     "magnesium",
	"manganese":     "manganese",
	"molybdenum":    "molybdenum",

	"monounsaturated-fat": "monounsaturated_fat",
	"monounsaturated_fat": "monounsaturated_fat",

	"omega-3-fat": "omega_3_fat",
	"omega_3_fat": "omega_3_fat",
	"omega-6-fat": "omega_6_fat",
	"omega_6_fat": "omega_6_fat",

	"phosphorus": "phosphorus",

	"polyunsaturated-fat": "polyunsaturated_fat",
	"polyunsaturated_fat": "polyunsaturated_fat",

	"potassium": "potassium",
	"proteins":  "proteins",
	"salt":      "salt",

	"saturated-fat": "saturated_fat",
	"saturated_fat": "saturated_fat",

	"selenium": "selenium",
	"sodium":   "sodium",
	"starch":   "starch",
	"sugars":   "sugars",
	"taurine":  "taurine",

	"trans-fat": "trans_fat",
	"trans_fat": "trans_fat",

	"vitamin-a": "vitamin_a",
	"vitamin_a": "vitamin_a",

	"vitamin-b1": "vitamin_b1",
	"vitamin_b1": "vitamin_b1",
	"vitamin-b2": "vitamin_b2",
	"vitamin_b2": "vitamin_b2",

	"vitamin-b3": "vitamin_b3",
	"vitamin_b3": "vitamin_b3",
	"vitamin-pp": "vitamin_pp",
	"vitamin_pp": "vitamin_pp",

	"pantothenic-acid": "vitamin_b5",
	"vitamin-b5":        "vitamin_b5",
	"vitamin_b5":        "vitamin_b5",

	"vitamin-b6": "vitamin_b6",
	"vitamin_b6": "vitamin_b6",

	"biotin":     "vitamin_b7",
	"vitamin-b7": "vitamin_b7",
	"vitamin_b7": "vitamin_b7",

	"vitamin-b9": "vitamin_b9",
	"vitamin_b9": "vitamin_b9",
	"folates":    "folates",

	"vitamin-b12": "vitamin_b12",
	"vitamin_b12": "vitamin_b12",

	"vitamin-c": "vitamin_c",
	"vitamin_c": "vitamin_c",
	"vitamin-d": "vitamin_d",
	"vitamin_d": "vitamin_d",
	"vitamin-e": "vitamin_e",
	"vitamin_e": "vitamin_e",
	"vitamin-k": "vitamin_k",
	"vitamin_k": "vitamin_k",

	"phylloquinone": "vitamin_k1",
	"vitamin-k1":    "vitamin_k1",
	"vitamin_k1":    "vitamin_k1",

	"zinc": "zinc",

	"alcohol": "alcohol",

	"energy-kcal": "energy_kcal",
	"energy_kcal": "energy_kcal",
	"energy-kj":   "energy_kj",
	"energy_kj":   "energy_kj",
}

// RegularNutrients is the Glossary's "Regular nutrients" list: every
// canonical nutrient name driven through the generic convertNutrient path
// rather than a special rule (alcohol, energy, vitamin_b3/b9 aggregation).
var RegularNutrients = []string{
	"bicarbonate", "caffeine", "calcium", "carbohydrates", "chloride",
	"cholesterol", "chromium", "copper", "fat", "fiber", "fluoride",
	"iodine", "iron", "lactose", "magnesium", "manganese", "molybdenum",
	"monounsaturated_fat", "omega_3_fat", "omega_6_fat", "phosphorus",
	"polyunsaturated_fat", "potassium", "proteins", "salt",
	"saturated_fat", "selenium", "sodium", "starch", "sugars", "taurine",
	"trans_fat", "vitamin_a", "vitamin_b1", "vitamin_b2", "vitamin_b5",
	"vitamin_b6", "vitamin_b7", "vitamin_c", "vitamin_d", "vitamin_e",
	"vitamin_k", "vitamin_k1", "vitamin_b12", "zinc",
}
