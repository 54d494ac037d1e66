package enums

import "fmt"

// ProductCategory represents the canonical catalog categories.
type ProductCategory string

const (
	ProductCategoryMen    ProductCategory = "Men"
	ProductCategoryWomen  ProductCategory = "Women"
	ProductCategoryUnisex ProductCategory = "Unisex"
)

var validProductCategories = []ProductCategory{
	ProductCategoryMen,
	ProductCategoryWomen,
	ProductCategoryUnisex,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductCondition describes the physical condition of a marketplace listing.
type ProductCondition string

const (
	ProductConditionNew     ProductCondition = "New"
	ProductConditionLikeNew ProductCondition = "Like New"
	ProductConditionGood    ProductCondition = "Good"
	ProductConditionFair    ProductCondition = "Fair"
)

var validProductConditions = []ProductCondition{
	ProductConditionNew,
	ProductConditionLikeNew,
	ProductConditionGood,
	ProductConditionFair,
}

// String implements fmt.Stringer.
func (c ProductCondition) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known ProductCondition.
func (c ProductCondition) IsValid() bool {
	for _, candidate := range validProductConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCondition converts raw input into a ProductCondition.
func ParseProductCondition(value string) (ProductCondition, error) {
	for _, candidate := range validProductConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product condition %q", value)
}

// Concentration captures fragrance concentration values.
type Concentration string

const (
	ConcentrationEauDeParfum   Concentration = "Eau de Parfum"
	ConcentrationEauDeToilette Concentration = "Eau de Toilette"
	ConcentrationEauDeCologne  Concentration = "Eau de Cologne"
	ConcentrationParfum        Concentration = "Parfum"
	ConcentrationExtrait       Concentration = "Extrait"
)

var validConcentrations = []Concentration{
	ConcentrationEauDeParfum,
	ConcentrationEauDeToilette,
	ConcentrationEauDeCologne,
	ConcentrationParfum,
	ConcentrationExtrait,
}

// String implements fmt.Stringer.
func (c Concentration) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known Concentration.
func (c Concentration) IsValid() bool {
	for _, candidate := range validConcentrations {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConcentration converts raw input into a Concentration.
func ParseConcentration(value string) (Concentration, error) {
	for _, candidate := range validConcentrations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid concentration %q", value)
}
