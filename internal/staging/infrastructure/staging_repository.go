package infrastructure

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/lib/pq"

	"olistdw/internal/shared/infrastructure"
	"olistdw/internal/staging/domain"
)

const stageSchema = "olist_stage"

// StagingRepository repository pour les tables landing.
// Chaque table est rechargée en deux phases (TRUNCATE puis COPY) dans la même
// transaction, fournie via WithTx.
type StagingRepository struct {
	infrastructure.BaseRepository
}

// NewStagingRepository crée un nouveau repository de staging
func NewStagingRepository(db *sql.DB) *StagingRepository {
	return &StagingRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository liée à la transaction
func (r *StagingRepository) WithTx(tx *sql.Tx) *StagingRepository {
	return &StagingRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// Truncate vide une table landing
func (r *StagingRepository) Truncate(table string) error {
	_, err := r.Exec(fmt.Sprintf("TRUNCATE %s.%s", stageSchema, pq.QuoteIdentifier(table)))
	return err
}

// CopyExtract charge un fichier CSV dans sa table landing via COPY FROM STDIN.
// L'en-tête est revalidé, puis chaque ligne est streamée; les champs vides
// deviennent NULL (les colonnes typées du staging refuseraient la chaîne vide).
func (r *StagingRepository) CopyExtract(extract domain.Extract, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", domain.ErrMissingFile, path)
		}
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(extract.Columns)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("lecture en-tête %s: %w", extract.FileName, err)
	}
	if err := extract.ValidateHeader(header); err != nil {
		return 0, err
	}

	stmt, err := r.Prepare(pq.CopyInSchema(stageSchema, extract.Table, extract.Columns...))
	if err != nil {
		return 0, fmt.Errorf("préparation COPY %s: %w", extract.Table, err)
	}
	defer stmt.Close()

	var count int64
	args := make([]interface{}, len(extract.Columns))

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("lecture %s ligne %d: %w", extract.FileName, count+2, err)
		}

		for i, field := range record {
			args[i] = nullIfEmpty(field)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return 0, fmt.Errorf("COPY %s ligne %d: %w", extract.Table, count+2, err)
		}
		count++
	}

	// Exec sans argument flush le buffer COPY côté serveur
	if _, err := stmt.Exec(); err != nil {
		return 0, fmt.Errorf("finalisation COPY %s: %w", extract.Table, err)
	}

	return count, nil
}

// Count retourne le nombre de lignes d'une table landing
func (r *StagingRepository) Count(table string) (int64, error) {
	var count int64
	err := r.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s.%s",
		stageSchema, pq.QuoteIdentifier(table))).Scan(&count)
	return count, err
}

// nullIfEmpty convertit un champ CSV vide en NULL SQL
func nullIfEmpty(field string) interface{} {
	if field == "" {
		return nil
	}
	return field
}
