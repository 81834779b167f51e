package model

// Category is the closed set of listing categories.
type Category string

const (
	CategoryUtility       Category = "Utility"
	CategoryEntertainment Category = "Entertainment"
	CategoryProductivity  Category = "Productivity"
	CategorySocial        Category = "Social"
	CategoryGaming        Category = "Gaming"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryUtility,
		CategoryEntertainment,
		CategoryProductivity,
		CategorySocial,
		CategoryGaming,
		CategoryOther,
	}
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}
