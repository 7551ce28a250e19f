package classifier

import "fmt"

// Category is the ordinal health-severity label produced by the classifier.
type Category string

const (
	CategoryNotSick         Category = "NOT_SICK"
	CategoryMildIllness     Category = "MILD_ILLNESS"
	CategoryAcuteIllness    Category = "ACUTE_ILLNESS"
	CategoryChronicIllness  Category = "CHRONIC_ILLNESS"
	CategoryTerminalIllness Category = "TERMINAL_ILLNESS"
)

// Categories lists every category from least to most severe.
func Categories() []Category {
	return []Category{
		CategoryNotSick,
		CategoryMildIllness,
		CategoryAcuteIllness,
		CategoryChronicIllness,
		CategoryTerminalIllness,
	}
}

// Severity returns the ordinal rank of the category (0 = NOT_SICK).
// Unknown categories rank -1.
func (c Category) Severity() int {
	for i, known := range Categories() {
		if c == known {
			return i
		}
	}
	return -1
}

// IsValid reports whether c is one of the five fixed labels.
func (c Category) IsValid() bool {
	return c.Severity() >= 0
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a label into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
