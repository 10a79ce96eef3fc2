package infrastructure

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistdw/internal/staging/domain"
)

// TestExtractGeneratorProducesValidCatalog vérifie que chaque fichier généré
// existe et porte l'en-tête attendu par le pipeline
func TestExtractGeneratorProducesValidCatalog(t *testing.T) {
	dir := t.TempDir()
	generator := NewExtractGenerator(dir, 42)
	require.NoError(t, generator.GenerateAll(50))

	for _, extract := range domain.Catalog() {
		rows := readCSV(t, filepath.Join(dir, extract.FileName))
		require.NotEmpty(t, rows, "%s should at least contain a header", extract.FileName)
		assert.NoError(t, extract.ValidateHeader(rows[0]))
		if extract.Table != "raw_reviews" {
			assert.Greater(t, len(rows), 1, "%s should contain data rows", extract.FileName)
		}
	}
}

// TestExtractGeneratorPaymentsMatchItems vérifie la cohérence générée: le
// total des paiements d'une commande égale la somme prix + fret de ses lignes
func TestExtractGeneratorPaymentsMatchItems(t *testing.T) {
	dir := t.TempDir()
	generator := NewExtractGenerator(dir, 7)
	require.NoError(t, generator.GenerateAll(100))

	itemTotals := map[string]float64{}
	for _, row := range readCSV(t, filepath.Join(dir, "olist_order_items_dataset.csv"))[1:] {
		price, err := strconv.ParseFloat(row[5], 64)
		require.NoError(t, err)
		freight, err := strconv.ParseFloat(row[6], 64)
		require.NoError(t, err)
		itemTotals[row[0]] += price + freight
	}

	paymentTotals := map[string]float64{}
	for _, row := range readCSV(t, filepath.Join(dir, "olist_order_payments_dataset.csv"))[1:] {
		value, err := strconv.ParseFloat(row[4], 64)
		require.NoError(t, err)
		paymentTotals[row[0]] += value
	}

	require.Equal(t, len(itemTotals), len(paymentTotals))
	for orderID, total := range itemTotals {
		assert.LessOrEqual(t, math.Abs(paymentTotals[orderID]-total), 0.01,
			"order %s: payments %.2f vs items %.2f", orderID, paymentTotals[orderID], total)
	}
}

// TestExtractGeneratorDeterministic vérifie la reproductibilité à graine fixe
func TestExtractGeneratorDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	require.NoError(t, NewExtractGenerator(dirA, 99).GenerateAll(20))
	require.NoError(t, NewExtractGenerator(dirB, 99).GenerateAll(20))

	for _, extract := range domain.Catalog() {
		a, err := os.ReadFile(filepath.Join(dirA, extract.FileName))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, extract.FileName))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s should be identical for the same seed", extract.FileName)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
