package classifier

// Category describes one advanced waste category.
type Category struct {
	Name                  string   `json:"name"`
	Subcategories         []string `json:"subcategories"`
	DisposalInstructions  string   `json:"disposal_instructions"`
	RecyclingCode         string   `json:"recycling_code"`
	Tips                  []string `json:"tips"`
	ContaminationWarnings []string `json:"contamination_warnings"`
}

var advancedCategories = map[string]Category{
	"recyclable_plastic": {
		Name:                 "Recyclable Plastic",
		Subcategories:        []string{"PET", "HDPE", "PP"},
		DisposalInstructions: "Rinse and place in the recycling bin",
		RecyclingCode:        "1",
		Tips: []string{
			"Remove cap and rinse before recycling",
			"Carry a reusable water bottle to cut plastic use",
		},
		ContaminationWarnings: []string{"Food residue prevents recycling"},
	},
	"recyclable_paper": {
		Name:                 "Recyclable Paper",
		Subcategories:        []string{"Cardboard", "Newspaper", "Office paper"},
		DisposalInstructions: "Flatten boxes and keep paper dry",
		RecyclingCode:        "20",
		Tips: []string{
			"Use both sides of paper before recycling",
			"Go digital where possible to save trees",
		},
		ContaminationWarnings: []string{"Greasy or wet paper belongs in general waste"},
	},
	"recyclable_glass": {
		Name:                 "Recyclable Glass",
		Subcategories:        []string{"Bottles", "Jars"},
		DisposalInstructions: "Rinse and drop in the glass container",
		RecyclingCode:        "70",
		Tips:                 []string{"Remove metal lids before recycling"},
		ContaminationWarnings: []string{
			"Ceramics and window glass are not container glass",
		},
	},
	"recyclable_metal": {
		Name:                 "Recyclable Metal",
		Subcategories:        []string{"Aluminum cans", "Tin cans", "Foil"},
		DisposalInstructions: "Rinse cans and place in the recycling bin",
		RecyclingCode:        "41",
		Tips:                 []string{"Crush cans to save bin space"},
		ContaminationWarnings: []string{
			"Aerosol cans need to be fully empty",
		},
	},
	"organic_food": {
		Name:                 "Organic Food Waste",
		Subcategories:        []string{"Fruit", "Vegetables", "Coffee grounds"},
		DisposalInstructions: "Compost in the green bin or backyard compost",
		RecyclingCode:        "",
		Tips: []string{
			"Save vegetable scraps for homemade stock",
			"Plan meals to reduce food waste",
		},
		ContaminationWarnings: []string{"No plastic bags in the compost bin"},
	},
	"organic_yard": {
		Name:                 "Organic Yard Waste",
		Subcategories:        []string{"Leaves", "Grass clippings", "Branches"},
		DisposalInstructions: "Use the yard waste collection or compost on site",
		RecyclingCode:        "",
		Tips:                 []string{"Mulch grass clippings back into the lawn"},
		ContaminationWarnings: []string{
			"Treated wood does not belong in yard waste",
		},
	},
	"e_waste": {
		Name:                 "Electronic Waste",
		Subcategories:        []string{"Phones", "Batteries", "Cables"},
		DisposalInstructions: "Take to an e-waste collection point",
		RecyclingCode:        "",
		Tips:                 []string{"Wipe personal data before recycling devices"},
		ContaminationWarnings: []string{
			"Batteries in household bins are a fire hazard",
		},
	},
	"hazardous": {
		Name:                 "Hazardous Waste",
		Subcategories:        []string{"Paint", "Chemicals", "Fluorescent bulbs"},
		DisposalInstructions: "Use the municipal hazardous waste drop-off",
		RecyclingCode:        "",
		Tips:                 []string{"Never pour chemicals down the drain"},
		ContaminationWarnings: []string{
			"Keep hazardous materials in their original containers",
		},
	},
	"landfill_general": {
		Name:                 "General Waste",
		Subcategories:        []string{"Mixed waste"},
		DisposalInstructions: "Place in the general waste bin",
		RecyclingCode:        "",
		Tips: []string{
			"Reduce single-use items",
			"Consider repair before disposal",
		},
		ContaminationWarnings: []string{},
	},
}

var simpleTips = map[string][]string{
	"recyclable": {"Rinse containers", "Check local guidelines"},
	"organic":    {"Compost food scraps", "Use compost bin"},
	"landfill":   {"Reduce single-use items", "Consider repair"},
}

// simpleClass collapses an advanced waste type into the simple taxonomy.
func simpleClass(wasteType string) string {
	switch {
	case wasteType == "organic_food" || wasteType == "organic_yard":
		return "organic"
	case wasteType == "landfill_general" || wasteType == "hazardous":
		return "landfill"
	default:
		return "recyclable"
	}
}

// Categories returns the advanced classification catalog.
func Categories() map[string]Category {
	return advancedCategories
}
