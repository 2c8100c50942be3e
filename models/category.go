package models

// Category is one of the fixed award categories. The set is closed: every
// component validates membership here before accepting a write, and an
// unknown category is always rejected, never coerced.
type Category string

const (
	CategoryAcademicExcellence    Category = "Academic Excellence"
	CategorySportsExcellence      Category = "Sports Excellence"
	CategoryArtsCreativity        Category = "Arts & Creativity"
	CategoryCommunityService      Category = "Community Service"
	CategoryLeadership            Category = "Leadership"
	CategoryInnovationTechnology  Category = "Innovation & Technology"
	CategoryEntrepreneurship      Category = "Entrepreneurship"
	CategoryEnvironmentalChampion Category = "Environmental Champion"
	CategoryCulturalAmbassador    Category = "Cultural Ambassador"
	CategoryRisingStar            Category = "Rising Star"
)

// AwardCategories lists every category in display order.
var AwardCategories = []Category{
	CategoryAcademicExcellence,
	CategorySportsExcellence,
	CategoryArtsCreativity,
	CategoryCommunityService,
	CategoryLeadership,
	CategoryInnovationTechnology,
	CategoryEntrepreneurship,
	CategoryEnvironmentalChampion,
	CategoryCulturalAmbassador,
	CategoryRisingStar,
}

// Valid reports whether c is a member of the registry.
func (c Category) Valid() bool {
	for _, cat := range AwardCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// ValidCategories returns the names in cats that are not registry members,
// for error reporting.
func ValidCategories(cats []Category) (invalid []string) {
	for _, c := range cats {
		if !c.Valid() {
			invalid = append(invalid, string(c))
		}
	}
	return invalid
}
