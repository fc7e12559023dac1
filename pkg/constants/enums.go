package constants

// FieldType represents the type of a field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCurrency FieldType = "currency"
	FieldTypeDate     FieldType = "date"
	FieldTypePicklist FieldType = "picklist"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeLookup   FieldType = "lookup"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeURL      FieldType = "url"
	FieldTypeTextArea FieldType = "textarea"
)

// GetAllFieldTypes returns all valid field types as a slice of strings
func GetAllFieldTypes() []string {
	return []string{
		string(FieldTypeText),
		string(FieldTypeNumber),
		string(FieldTypeCurrency),
		string(FieldTypeDate),
		string(FieldTypePicklist),
		string(FieldTypeCheckbox),
		string(FieldTypeLookup),
		string(FieldTypeEmail),
		string(FieldTypePhone),
		string(FieldTypeURL),
		string(FieldTypeTextArea),
	}
}

// IsValidFieldType checks whether t is a member of the field type enumeration
func IsValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeCurrency, FieldTypeDate,
		FieldTypePicklist, FieldTypeCheckbox, FieldTypeLookup, FieldTypeEmail,
		FieldTypePhone, FieldTypeURL, FieldTypeTextArea:
		return true
	}
	return false
}
