package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"olistdw/database"
	qualityapp "olistdw/internal/quality/application"
	qualitydomain "olistdw/internal/quality/domain"
	qualityinfra "olistdw/internal/quality/infrastructure"
	warehouseapp "olistdw/internal/warehouse/application"
)

func main() {
	// Charge .env
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	if err := database.Init(database.ConnStringFromEnv()); err != nil {
		log.Fatal("❌ Erreur connexion DB:", err)
	}
	defer database.Close()

	fmt.Println("✅ Connexion PostgreSQL établie")

	if err := database.EnsureSchema(); err != nil {
		log.Fatal("❌ Erreur création schéma:", err)
	}

	dataDir := getEnv("DATA_DIR", "data/raw")
	outputDir := getEnv("DQ_OUTPUT_DIR", "monitoring")

	// 1. Pipeline de chargement: staging -> dimensions -> faits
	fmt.Println("🚀 Démarrage du pipeline Olist DW...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	loadService := warehouseapp.NewLoadService(database.DB, dataDir)
	result, err := loadService.RunLoad()
	if err != nil {
		log.Fatal("❌ Erreur pipeline:", err)
	}

	// 2. Moniteur de qualité sur l'état chargé
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("🔬 Évaluation des règles de qualité...")
	qualityService := qualityapp.NewQualityService(
		qualityinfra.NewQualityQueryRepository(database.DB),
		qualitydomain.DefaultThresholds(),
	)
	report := qualityService.RunChecks(result.RunID)
	fmt.Println(qualityService.Summary(report))

	for _, m := range report.Failures() {
		if m.Err != "" {
			fmt.Printf("   ⚠️ [%s] %s: non évaluée (%s)\n", m.Family, m.Rule, m.Err)
		} else {
			fmt.Printf("   ⚠️ [%s] %s: %.2f (seuil %.2f)\n", m.Family, m.Rule, m.Value, m.Threshold)
		}
	}

	// 3. Export tabulaire des métriques
	if err := writeMetricsCSV(qualityService, report, outputDir); err != nil {
		log.Fatal("❌ Erreur export métriques:", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("✅ Run terminé:", result.RunID)
}

// writeMetricsCSV écrit le rapport de qualité dans <outputDir>/csv/
func writeMetricsCSV(service *qualityapp.QualityService, report *qualitydomain.Report, outputDir string) error {
	data, err := service.ExportCSV(report)
	if err != nil {
		return err
	}

	csvDir := filepath.Join(outputDir, "csv")
	if err := os.MkdirAll(csvDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(csvDir, "quality_metrics.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Println("📄 Métriques exportées:", path)
	return nil
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
