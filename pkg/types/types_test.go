package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValid(t *testing.T) {
	for _, cat := range AllCategories {
		assert.True(t, cat.Valid(), "category %s", cat)
	}
	assert.False(t, Category("movie").Valid())
	assert.False(t, Category("").Valid())
}

func TestItemField(t *testing.T) {
	item := &Item{
		Name:        "n",
		HumanName:   "h",
		MachineName: "m",
		Description: "d",
	}
	assert.Equal(t, "n", item.Field("name"))
	assert.Equal(t, "h", item.Field("human_name"))
	assert.Equal(t, "m", item.Field("machine_name"))
	assert.Equal(t, "d", item.Field("description"))
	assert.Equal(t, "", item.Field("rating"))
}

func TestItemDisplayName(t *testing.T) {
	assert.Equal(t, "n", (&Item{Name: "n", HumanName: "h"}).DisplayName())
	assert.Equal(t, "h", (&Item{HumanName: "h"}).DisplayName())
	assert.Equal(t, "", (&Item{}).DisplayName())
}

func TestIsSearchableField(t *testing.T) {
	for _, f := range SearchableFields {
		assert.True(t, IsSearchableField(f), "field %s", f)
	}
	assert.False(t, IsSearchableField("machine_name"))
	assert.False(t, IsSearchableField(""))
}

func TestSearchRecordFieldValue(t *testing.T) {
	rec := &SearchRecord{
		HumanName:   "Python Crash Course",
		Description: "learn python",
		Category:    "ebook",
		Subcategory: "programming",
		Developer:   "dev",
		Publisher:   "pub",
		Tags:        "coding",
		BundleName:  "Book Bundle",
	}
	for _, f := range SearchableFields {
		assert.NotEmpty(t, rec.FieldValue(f), "field %s", f)
	}
	assert.Equal(t, "Python Crash Course", rec.FieldValue("human_name"))
	assert.Equal(t, "", rec.FieldValue("product_id"))
}
