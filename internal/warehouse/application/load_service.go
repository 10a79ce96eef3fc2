package application

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	sharedinfra "olistdw/internal/shared/infrastructure"
	stagingapp "olistdw/internal/staging/application"
	"olistdw/internal/warehouse/infrastructure"
)

// LoadResult résume un run complet du pipeline
type LoadResult struct {
	RunID             uuid.UUID        `json:"run_id"`
	StagingRows       map[string]int64 `json:"staging_rows"`
	DimensionRows     map[string]int64 `json:"dimension_rows"`
	FactOrderItemRows int64            `json:"fact_order_item_rows"`
	FactPaymentRows   int64            `json:"fact_payment_rows"`
	SkippedOrderItems int64            `json:"skipped_order_items"`
	SkippedPayments   int64            `json:"skipped_payments"`
	Duration          time.Duration    `json:"duration"`
}

// LoadService orchestre le pipeline: Raw Store -> Dimensions -> Faits.
// Chaque étape doit se terminer avant la suivante (les faits référencent les
// dimensions); un échec interrompt les étapes restantes et l'entrepôt reste
// dans l'état de la dernière étape validée. Rejouable: deux runs sur les mêmes
// extracts laissent l'entrepôt dans le même état final.
type LoadService struct {
	db             *sql.DB
	stagingService *stagingapp.StagingService
	dimensionRepo  *infrastructure.DimensionRepository
	factRepo       *infrastructure.FactRepository
}

// NewLoadService crée une nouvelle instance de LoadService
func NewLoadService(db *sql.DB, dataDir string) *LoadService {
	return &LoadService{
		db:             db,
		stagingService: stagingapp.NewStagingService(db, dataDir),
		dimensionRepo:  infrastructure.NewDimensionRepository(db),
		factRepo:       infrastructure.NewFactRepository(db),
	}
}

// RunLoad exécute le chargement complet
func (s *LoadService) RunLoad() (*LoadResult, error) {
	result := &LoadResult{
		RunID:         uuid.New(),
		DimensionRows: make(map[string]int64),
	}
	start := time.Now()

	// 1. Validation des extracts avant toute mutation
	fmt.Println("🔎 Validation des extracts...")
	if err := s.stagingService.ValidateExtracts(); err != nil {
		return nil, fmt.Errorf("erreur validation extracts: %w", err)
	}

	// 2. Rechargement du Raw Store (truncate + COPY par table)
	fmt.Println("📥 Chargement du staging...")
	counts, err := s.stagingService.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("erreur chargement staging: %w", classify(err))
	}
	result.StagingRows = counts
	for table, n := range counts {
		fmt.Printf("   ✅ %s: %d lignes\n", table, n)
	}

	// 3. Dimensions (une transaction pour l'étape entière)
	fmt.Println("🧱 Construction des dimensions...")
	if err := s.buildDimensions(result); err != nil {
		return nil, fmt.Errorf("erreur construction dimensions: %w", classify(err))
	}

	// 4. Faits (les dimensions existent désormais)
	fmt.Println("📊 Assemblage des faits...")
	if err := s.buildFacts(result); err != nil {
		return nil, fmt.Errorf("erreur assemblage faits: %w", classify(err))
	}

	if result.SkippedOrderItems > 0 || result.SkippedPayments > 0 {
		fmt.Printf("   ⚠️ Références non résolues: %d lignes de commande, %d paiements (exclus)\n",
			result.SkippedOrderItems, result.SkippedPayments)
	}

	result.Duration = time.Since(start)
	fmt.Printf("✅ Pipeline terminé en %v (run %s)\n", result.Duration, result.RunID)
	return result, nil
}

// buildDimensions exécute les quatre upserts de dimensions dans une transaction
func (s *LoadService) buildDimensions(result *LoadResult) error {
	uow := sharedinfra.NewUnitOfWork(s.db)
	return uow.Execute(func(tx *sql.Tx) error {
		repo := s.dimensionRepo.WithTx(tx)

		// dim_date en premier: les faits référencent toutes les dates vues
		n, err := repo.InsertDates()
		if err != nil {
			return fmt.Errorf("dim_date: %w", err)
		}
		result.DimensionRows["dim_date"] = n

		if n, err = repo.UpsertCustomers(); err != nil {
			return fmt.Errorf("dim_customer: %w", err)
		}
		result.DimensionRows["dim_customer"] = n

		if n, err = repo.UpsertSellers(); err != nil {
			return fmt.Errorf("dim_seller: %w", err)
		}
		result.DimensionRows["dim_seller"] = n

		if n, err = repo.UpsertProducts(); err != nil {
			return fmt.Errorf("dim_product: %w", err)
		}
		result.DimensionRows["dim_product"] = n

		return nil
	})
}

// buildFacts exécute les upserts de faits et compte les lignes exclues
func (s *LoadService) buildFacts(result *LoadResult) error {
	uow := sharedinfra.NewUnitOfWork(s.db)
	return uow.Execute(func(tx *sql.Tx) error {
		repo := s.factRepo.WithTx(tx)

		n, err := repo.UpsertOrderItems()
		if err != nil {
			return fmt.Errorf("fact_order_item: %w", err)
		}
		result.FactOrderItemRows = n

		if result.SkippedOrderItems, err = repo.CountUnresolvedOrderItems(); err != nil {
			return fmt.Errorf("comptage lignes non résolues: %w", err)
		}

		if n, err = repo.UpsertPayments(); err != nil {
			return fmt.Errorf("fact_payment: %w", err)
		}
		result.FactPaymentRows = n

		if result.SkippedPayments, err = repo.CountUnresolvedPayments(); err != nil {
			return fmt.Errorf("comptage paiements non résolus: %w", err)
		}

		return nil
	})
}

// classify annote les violations de contrainte d'unicité: un doublon de clé
// naturelle qui aurait dû passer par l'upsert est un défaut de logique, pas
// une condition récupérable.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("violation de contrainte (défaut de logique d'upsert): %w", err)
	}
	return err
}
