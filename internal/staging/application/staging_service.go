package application

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sharedinfra "olistdw/internal/shared/infrastructure"
	"olistdw/internal/staging/domain"
	"olistdw/internal/staging/infrastructure"
)

// StagingService orchestre le rechargement du Raw Store.
// Les tables landing sont indépendantes: elles sont rechargées en parallèle
// par le worker pool, chacune dans sa propre transaction (truncate + COPY).
type StagingService struct {
	db          *sql.DB
	stagingRepo *infrastructure.StagingRepository
	dataDir     string
	workerCount int
}

// NewStagingService crée une nouvelle instance de StagingService
func NewStagingService(db *sql.DB, dataDir string) *StagingService {
	return &StagingService{
		db:          db,
		stagingRepo: infrastructure.NewStagingRepository(db),
		dataDir:     dataDir,
		workerCount: 4,
	}
}

// ValidateExtracts vérifie que chaque fichier attendu existe et porte le bon
// en-tête. Appelé avant toute mutation: une erreur d'entrée est fatale et
// l'entrepôt n'est pas touché.
func (s *StagingService) ValidateExtracts() error {
	for _, extract := range domain.Catalog() {
		path := filepath.Join(s.dataDir, extract.FileName)

		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", domain.ErrMissingFile, path)
			}
			return fmt.Errorf("ouverture %s: %w", path, err)
		}

		header, err := csv.NewReader(f).Read()
		f.Close()
		if err != nil {
			return fmt.Errorf("lecture en-tête %s: %w", extract.FileName, err)
		}
		if err := extract.ValidateHeader(header); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll recharge toutes les tables landing et retourne le nombre de lignes
// chargées par table. Une table en échec fait échouer l'étape entière, mais sa
// transaction est annulée: seule cette table reste dans son état antérieur.
func (s *StagingService) LoadAll() (map[string]int64, error) {
	pool := sharedinfra.NewWorkerPool(s.workerCount)
	pool.Start()

	counts := make(map[string]int64)
	var mu sync.Mutex

	for _, extract := range domain.Catalog() {
		extract := extract
		path := filepath.Join(s.dataDir, extract.FileName)

		err := pool.Submit(func() error {
			uow := sharedinfra.NewUnitOfWork(s.db)
			return uow.Execute(func(tx *sql.Tx) error {
				repo := s.stagingRepo.WithTx(tx)
				if err := repo.Truncate(extract.Table); err != nil {
					return fmt.Errorf("truncate %s: %w", extract.Table, err)
				}
				n, err := repo.CopyExtract(extract, path)
				if err != nil {
					return err
				}
				mu.Lock()
				counts[extract.Table] = n
				mu.Unlock()
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	pool.Wait()

	// Première erreur rencontrée = échec de l'étape staging
	select {
	case err := <-pool.Errors():
		return nil, err
	default:
	}

	return counts, nil
}
