package testhelpers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"olistdw/database"
	stagingdomain "olistdw/internal/staging/domain"
)

// stageTables tables landing remises à zéro entre les tests
var stageTables = []string{
	"raw_customers", "raw_orders", "raw_order_items", "raw_products",
	"raw_sellers", "raw_payments", "raw_reviews", "raw_category_translation",
}

// SetupTestDB initialise la connexion de test et garantit que le schéma
// (staging + entrepôt) existe. Les tests ferment via database.Close.
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	// Charger les variables d'environnement
	_ = godotenv.Load("../../../.env")

	if err := database.Init(testConnString()); err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}
	if err := database.EnsureSchema(); err != nil {
		tb.Fatalf("Failed to ensure schema: %v", err)
	}

	return database.DB
}

// SkipIfNoDatabase skip le test si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	_ = godotenv.Load("../../../.env")

	db, err := sql.Open("postgres", testConnString())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		tb.Skip("Database not available:", err)
	}
}

// ResetWarehouse vide le staging et l'entrepôt pour repartir d'un état connu.
// Les tables de faits d'abord (contraintes de clés étrangères).
func ResetWarehouse(tb testing.TB, db *sql.DB) {
	tb.Helper()

	statements := []string{
		"TRUNCATE olist_dw.fact_order_item",
		"TRUNCATE olist_dw.fact_payment",
		"TRUNCATE olist_dw.dim_customer CASCADE",
		"TRUNCATE olist_dw.dim_seller CASCADE",
		"TRUNCATE olist_dw.dim_product CASCADE",
		"TRUNCATE olist_dw.dim_date CASCADE",
	}
	for _, table := range stageTables {
		statements = append(statements, "TRUNCATE olist_stage."+table)
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			tb.Fatalf("Failed to reset warehouse (%s): %v", stmt, err)
		}
	}
}

// WriteExtracts écrit un jeu d'extracts CSV dans dir, indexé par nom de
// fichier. Les fichiers du catalogue absents de rows sont écrits avec leur
// seule ligne d'en-tête (extract vide mais présent et valide).
func WriteExtracts(tb testing.TB, dir string, rows map[string][][]string) {
	tb.Helper()

	for _, extract := range stagingdomain.Catalog() {
		WriteExtract(tb, dir, extract.FileName, extract.Columns, rows[extract.FileName])
	}
}

// WriteExtract écrit un fichier CSV avec son en-tête et ses lignes
func WriteExtract(tb testing.TB, dir, fileName string, header []string, rows [][]string) {
	tb.Helper()

	f, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		tb.Fatalf("Failed to create extract %s: %v", fileName, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		tb.Fatalf("Failed to write header %s: %v", fileName, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		tb.Fatalf("Failed to write rows %s: %v", fileName, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tb.Fatalf("Failed to flush %s: %v", fileName, err)
	}
}

// testConnString construit la connection string de test
func testConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "olist"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
