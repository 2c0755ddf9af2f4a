package normalizer

import (
	"scrubber/internal/models"
)

// Classification says how a field is cleaned.
type Classification int

// Field classifications, in resolution order.
const (
	// ClassDefault fields are cleaned as text when the value is a string and
	// passed through otherwise.
	ClassDefault Classification = iota
	ClassText
	ClassDate
	ClassCustom
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassDate:
		return "date"
	case ClassCustom:
		return "custom"
	default:
		return "default"
	}
}

// Classify resolves a field name against the configured sets. A custom
// transform registered under the exact name wins, then date fields, then
// text fields; set membership is exact or case-insensitive.
func Classify(field string, textFields, dateFields models.FieldSet, transforms TransformSet) Classification {
	if _, ok := transforms[field]; ok {
		return ClassCustom
	}

	if dateFields.Contains(field) {
		return ClassDate
	}

	if textFields.Contains(field) {
		return ClassText
	}

	return ClassDefault
}

// classifyAliased classifies key, falling back to the canonical name key is
// an alias for so that aliased fields are cleaned like their canonical field.
func classifyAliased(key string, textFields, dateFields models.FieldSet, transforms TransformSet, aliases models.FieldAliases) (Classification, string) {
	class := Classify(key, textFields, dateFields, transforms)
	if class != ClassDefault {
		return class, key
	}

	canonical, ok := aliases.CanonicalFor(key)
	if !ok {
		return class, key
	}

	return Classify(canonical, textFields, dateFields, transforms), canonical
}
