package types

// Item carries the free-text attributes of a library entry that the
// categorization engine inspects. Fields may be empty; classification
// degrades to zero scores rather than failing.
type Item struct {
	Name        string
	HumanName   string
	MachineName string
	Description string
}

// MatchFields is the fixed field list scanned by required and exclusion
// pattern checks. It is deliberately independent of a rule's FieldWeights:
// a rule may weight only human_name yet still gate on text found in the
// description.
var MatchFields = []string{"name", "human_name", "description", "machine_name"}

// Field returns the named field's text, or "" for an unknown name.
func (it *Item) Field(name string) string {
	switch name {
	case "name":
		return it.Name
	case "human_name":
		return it.HumanName
	case "machine_name":
		return it.MachineName
	case "description":
		return it.Description
	default:
		return ""
	}
}

// DisplayName returns the name used for subcategory keyword matching:
// Name when present, otherwise HumanName.
func (it *Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.HumanName
}
