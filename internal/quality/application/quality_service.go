package application

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"olistdw/internal/quality/domain"
	"olistdw/internal/quality/infrastructure"
	shareddomain "olistdw/internal/shared/domain"
)

// QualityService évalue les cinq familles de règles contre l'état courant de
// l'entrepôt. Chaque famille est indépendante et sans état: les cinq requêtes
// partent en parallèle et une famille en erreur n'empêche pas les autres de
// produire leurs métriques (rapport best-effort, règle annotée).
type QualityService struct {
	qualityRepo *infrastructure.QualityQueryRepository
	thresholds  domain.Thresholds
}

// NewQualityService crée une nouvelle instance de QualityService
func NewQualityService(qualityRepo *infrastructure.QualityQueryRepository, thresholds domain.Thresholds) *QualityService {
	return &QualityService{
		qualityRepo: qualityRepo,
		thresholds:  thresholds,
	}
}

// RunChecks évalue toutes les règles et retourne le rapport complet
func (s *QualityService) RunChecks(runID uuid.UUID) *domain.Report {
	report := domain.NewReport(runID)

	var wg sync.WaitGroup
	var mu sync.Mutex

	collect := func(metrics ...domain.Metric) {
		mu.Lock()
		report.Add(metrics...)
		mu.Unlock()
	}

	families := []func() []domain.Metric{
		s.checkCompleteness,
		s.checkUniqueness,
		s.checkValidity,
		s.checkConsistency,
		s.checkTimeliness,
	}

	for _, family := range families {
		wg.Add(1)
		go func(run func() []domain.Metric) {
			defer wg.Done()
			collect(run()...)
		}(family)
	}

	wg.Wait()
	return report
}

// checkCompleteness mesure le % non-null des colonnes critiques de l'entrepôt
func (s *QualityService) checkCompleteness() []domain.Metric {
	rates, err := s.qualityRepo.CompletenessRates()
	if err != nil {
		return []domain.Metric{domain.FailedMetric("completeness", domain.FamilyCompleteness, err)}
	}

	metrics := make([]domain.Metric, 0, len(rates))
	for _, r := range rates {
		metrics = append(metrics, domain.NewRateMetric(
			r.Rule, domain.FamilyCompleteness, toPercentage(r.Rate), s.thresholds.Completeness))
	}
	return metrics
}

// checkUniqueness compte les doublons par clé naturelle du staging
func (s *QualityService) checkUniqueness() []domain.Metric {
	counts, err := s.qualityRepo.DuplicateCounts()
	if err != nil {
		return []domain.Metric{domain.FailedMetric("uniqueness", domain.FamilyUniqueness, err)}
	}

	metrics := make([]domain.Metric, 0, len(counts))
	for _, c := range counts {
		metrics = append(metrics, domain.NewCountMetric(c.Rule, domain.FamilyUniqueness, c.Duplicates))
	}
	return metrics
}

// checkValidity évalue les prédicats de domaine
func (s *QualityService) checkValidity() []domain.Metric {
	rates, err := s.qualityRepo.ValidityRates()
	if err != nil {
		return []domain.Metric{domain.FailedMetric("validity", domain.FamilyValidity, err)}
	}

	metrics := make([]domain.Metric, 0, len(rates))
	for _, r := range rates {
		metrics = append(metrics, domain.NewRateMetric(
			r.Rule, domain.FamilyValidity, toPercentage(r.Rate), s.thresholds.Validity))
	}
	return metrics
}

// checkConsistency évalue les règles croisées et le rapprochement paiements/lignes
func (s *QualityService) checkConsistency() []domain.Metric {
	rates, err := s.qualityRepo.ConsistencyRates(s.thresholds.Reconciliation.Amount())
	if err != nil {
		return []domain.Metric{domain.FailedMetric("consistency", domain.FamilyConsistency, err)}
	}

	metrics := make([]domain.Metric, 0, len(rates))
	for _, r := range rates {
		metrics = append(metrics, domain.NewRateMetric(
			r.Rule, domain.FamilyConsistency, toPercentage(r.Rate), s.thresholds.Consistency))
	}
	return metrics
}

// checkTimeliness évalue le taux de livraison dans les temps et la
// distribution du lead time (métriques informatives, sans seuil)
func (s *QualityService) checkTimeliness() []domain.Metric {
	var metrics []domain.Metric

	onTime, err := s.qualityRepo.OnTimeRate()
	if err != nil {
		metrics = append(metrics, domain.FailedMetric("on_time_delivery_rate", domain.FamilyTimeliness, err))
	} else {
		metrics = append(metrics, domain.NewRateMetric(
			"on_time_delivery_rate", domain.FamilyTimeliness, toPercentage(onTime), s.thresholds.OnTimeRate))
	}

	stats, err := s.qualityRepo.LeadTimes()
	if err != nil {
		metrics = append(metrics, domain.FailedMetric("lead_time_days", domain.FamilyTimeliness, err))
		return metrics
	}
	metrics = append(metrics,
		domain.NewInfoMetric("lead_time_avg_days", domain.FamilyTimeliness, stats.AvgDays.Float64, stats.AvgDays.Valid),
		domain.NewInfoMetric("lead_time_p50_days", domain.FamilyTimeliness, stats.P50Days.Float64, stats.P50Days.Valid),
		domain.NewInfoMetric("lead_time_p95_days", domain.FamilyTimeliness, stats.P95Days.Float64, stats.P95Days.Valid),
	)
	return metrics
}

// ExportCSV génère l'export tabulaire du rapport (une ligne par évaluation)
func (s *QualityService) ExportCSV(report *domain.Report) ([]byte, error) {
	buffer := bytes.NewBuffer(make([]byte, 0, 16*1024))
	writer := csv.NewWriter(buffer)

	if err := writer.Write(domain.CSVHeaders()); err != nil {
		return nil, err
	}
	for _, m := range report.Metrics {
		if err := writer.Write(m.ToCSVRow(report.RunID)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// toPercentage convertit un taux SQL nullable en Percentage.
// NULL (aucune ligne) ou valeur hors bornes => indéfini.
func toPercentage(rate sql.NullFloat64) shareddomain.Percentage {
	if !rate.Valid {
		return shareddomain.UndefinedPercentage()
	}
	p, err := shareddomain.NewPercentage(rate.Float64)
	if err != nil {
		return shareddomain.UndefinedPercentage()
	}
	return p
}

// Summary imprime un résumé console du rapport
func (s *QualityService) Summary(report *domain.Report) string {
	failures := report.Failures()
	if len(failures) == 0 {
		return fmt.Sprintf("✅ %d règles évaluées, aucune en échec", len(report.Metrics))
	}
	return fmt.Sprintf("⚠️ %d règles évaluées, %d en échec", len(report.Metrics), len(failures))
}
