package types

// SearchRecord is the fixed projection returned by every search entry
// point. The column set mirrors the store's search view; search providers
// never invent columns beyond these.
type SearchRecord struct {
	ProductID       string   `json:"product_id"`
	HumanName       string   `json:"human_name"`
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	Developer       string   `json:"developer"`
	Publisher       string   `json:"publisher"`
	Tags            string   `json:"tags"`
	Rating          float64  `json:"rating"`
	ReleaseDate     string   `json:"release_date"`
	SourceName      string   `json:"source_name"`
	BundleName      string   `json:"bundle_name"`
	Platform        string   `json:"platform"`
	DownloadType    string   `json:"download_type"`
	FileSizeDisplay string   `json:"file_size_display"`
	Description     string   `json:"-"` // fetched for regex matching, not rendered
}

// SearchableFields is the fixed set of fields callers may target with
// field-scoped queries, in the order exposed by introspection.
var SearchableFields = []string{
	"human_name", "description", "category", "subcategory",
	"developer", "publisher", "tags", "bundle_name",
}

// IsSearchableField reports whether name is a member of SearchableFields.
func IsSearchableField(name string) bool {
	for _, f := range SearchableFields {
		if f == name {
			return true
		}
	}
	return false
}

// FieldValue returns the record's value for a searchable field name.
// Unknown names return "".
func (r *SearchRecord) FieldValue(name string) string {
	switch name {
	case "human_name":
		return r.HumanName
	case "description":
		return r.Description
	case "category":
		return r.Category
	case "subcategory":
		return r.Subcategory
	case "developer":
		return r.Developer
	case "publisher":
		return r.Publisher
	case "tags":
		return r.Tags
	case "bundle_name":
		return r.BundleName
	default:
		return ""
	}
}
