package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"olistdw/database"
	qualityapp "olistdw/internal/quality/application"
	qualitydomain "olistdw/internal/quality/domain"
	qualityinfra "olistdw/internal/quality/infrastructure"
	shareddomain "olistdw/internal/shared/domain"
)

// Moniteur de qualité autonome: évalue les règles contre un entrepôt déjà
// chargé, sans relancer le pipeline.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	if err := database.Init(database.ConnStringFromEnv()); err != nil {
		log.Fatal("❌ Erreur connexion DB:", err)
	}
	defer database.Close()

	fmt.Println("✅ Connexion PostgreSQL établie")

	thresholds := qualitydomain.DefaultThresholds()
	if raw := os.Getenv("DQ_TOLERANCE"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Fatal("❌ DQ_TOLERANCE invalide:", err)
		}
		tolerance, err := shareddomain.NewTolerance(amount)
		if err != nil {
			log.Fatal("❌ DQ_TOLERANCE invalide:", err)
		}
		thresholds.Reconciliation = tolerance
	}

	fmt.Println("🔬 Évaluation des règles de qualité...")
	service := qualityapp.NewQualityService(
		qualityinfra.NewQualityQueryRepository(database.DB),
		thresholds,
	)
	report := service.RunChecks(uuid.New())
	fmt.Println(service.Summary(report))

	for _, m := range report.Failures() {
		if m.Err != "" {
			fmt.Printf("   ⚠️ [%s] %s: non évaluée (%s)\n", m.Family, m.Rule, m.Err)
		} else {
			fmt.Printf("   ⚠️ [%s] %s: %.2f (seuil %.2f)\n", m.Family, m.Rule, m.Value, m.Threshold)
		}
	}

	data, err := service.ExportCSV(report)
	if err != nil {
		log.Fatal("❌ Erreur export métriques:", err)
	}

	csvDir := filepath.Join(getEnv("DQ_OUTPUT_DIR", "monitoring"), "csv")
	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		log.Fatal("❌ Erreur création répertoire:", err)
	}
	path := filepath.Join(csvDir, "quality_metrics.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatal("❌ Erreur écriture métriques:", err)
	}
	fmt.Println("📄 Métriques exportées:", path)
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
