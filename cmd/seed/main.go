package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	staginginfra "olistdw/internal/staging/infrastructure"
)

// Générateur d'extracts CSV synthétiques au format Olist, pour alimenter le
// pipeline sans le dataset public.
func main() {
	// Charge .env
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	dataDir := getEnv("DATA_DIR", "data/raw")
	orders, err := strconv.Atoi(getEnv("SEED_ORDERS", "2000"))
	if err != nil || orders <= 0 {
		log.Fatal("❌ SEED_ORDERS invalide")
	}

	fmt.Println("🌱 Démarrage de la génération des extracts...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	generator := staginginfra.NewExtractGenerator(dataDir, time.Now().UnixNano())
	if err := generator.GenerateAll(orders); err != nil {
		log.Fatal("❌ Erreur lors de la génération:", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("✅ Extracts générés dans", dataDir)
	fmt.Println()
	fmt.Println("Vous pouvez maintenant lancer le pipeline avec:")
	fmt.Println("  go run main.go")
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
