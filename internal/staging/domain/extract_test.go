package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateHeader vérifie l'acceptation d'un en-tête exact
func TestValidateHeader(t *testing.T) {
	extract := Extract{
		Table:    "raw_sellers",
		FileName: "olist_sellers_dataset.csv",
		Columns:  []string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"},
	}

	err := extract.ValidateHeader([]string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"})
	assert.NoError(t, err)
}

// TestValidateHeaderWrongLength vérifie le rejet d'un nombre de colonnes inattendu
func TestValidateHeaderWrongLength(t *testing.T) {
	extract := Extract{
		Table:    "raw_category_translation",
		FileName: "product_category_name_translation.csv",
		Columns:  []string{"product_category_name", "product_category_name_english"},
	}

	err := extract.ValidateHeader([]string{"product_category_name"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedHeader))
}

// TestValidateHeaderWrongColumn vérifie le rejet d'un ordre ou nom de colonne différent
func TestValidateHeaderWrongColumn(t *testing.T) {
	extract := Extract{
		Table:    "raw_category_translation",
		FileName: "product_category_name_translation.csv",
		Columns:  []string{"product_category_name", "product_category_name_english"},
	}

	err := extract.ValidateHeader([]string{"product_category_name_english", "product_category_name"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedHeader))
	assert.Contains(t, err.Error(), "colonne 0")
}

// TestCatalog vérifie que le catalogue couvre les huit extracts sans collision
func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 8)

	tables := map[string]bool{}
	files := map[string]bool{}
	for _, extract := range catalog {
		assert.False(t, tables[extract.Table], "duplicate table %s", extract.Table)
		assert.False(t, files[extract.FileName], "duplicate file %s", extract.FileName)
		assert.NotEmpty(t, extract.Columns)
		tables[extract.Table] = true
		files[extract.FileName] = true
	}
}
