package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	shareddomain "olistdw/internal/shared/domain"
)

// Family représente une famille de règles de qualité
type Family string

const (
	FamilyCompleteness Family = "completeness"
	FamilyUniqueness   Family = "uniqueness"
	FamilyValidity     Family = "validity"
	FamilyConsistency  Family = "consistency"
	FamilyTimeliness   Family = "timeliness"
)

// Metric représente une évaluation de règle: une ligne du rapport de qualité.
// Defined=false signifie "aucune donnée à mesurer" (jeu vide), jamais une
// division par zéro. Err est renseigné quand la règle n'a pas pu être évaluée.
type Metric struct {
	Rule        string    `json:"rule"`
	Family      Family    `json:"family"`
	Value       float64   `json:"value"`
	Defined     bool      `json:"defined"`
	Threshold   float64   `json:"threshold"`
	Passed      bool      `json:"passed"`
	Err         string    `json:"error,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// NewRateMetric crée une métrique en pourcentage comparée à un seuil minimal.
// Un seuil malformé (hors 0-100) fait échouer cette règle seulement.
func NewRateMetric(rule string, family Family, rate shareddomain.Percentage, threshold float64) Metric {
	m := Metric{
		Rule:        rule,
		Family:      family,
		Threshold:   threshold,
		EvaluatedAt: time.Now(),
	}
	if threshold < 0 || threshold > 100 {
		m.Err = "malformed threshold: must be within 0-100"
		return m
	}
	if !rate.IsDefined() {
		return m
	}
	m.Value = rate.Value()
	m.Defined = true
	m.Passed = rate.AtLeast(threshold)
	return m
}

// NewCountMetric crée une métrique de comptage de doublons: tout comptage
// strictement positif échoue.
func NewCountMetric(rule string, family Family, duplicates int64) Metric {
	return Metric{
		Rule:        rule,
		Family:      family,
		Value:       float64(duplicates),
		Defined:     true,
		Threshold:   0,
		Passed:      duplicates == 0,
		EvaluatedAt: time.Now(),
	}
}

// NewInfoMetric crée une métrique informative sans seuil (distributions)
func NewInfoMetric(rule string, family Family, value float64, defined bool) Metric {
	return Metric{
		Rule:        rule,
		Family:      family,
		Value:       value,
		Defined:     defined,
		Passed:      true,
		EvaluatedAt: time.Now(),
	}
}

// FailedMetric crée une métrique annotée d'une erreur d'évaluation.
// Les autres règles continuent indépendamment.
func FailedMetric(rule string, family Family, err error) Metric {
	return Metric{
		Rule:        rule,
		Family:      family,
		Err:         err.Error(),
		EvaluatedAt: time.Now(),
	}
}

// Report rapport de qualité: une ligne par évaluation de règle
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Metrics     []Metric  `json:"metrics"`
}

// NewReport crée un nouveau rapport pour un run donné
func NewReport(runID uuid.UUID) *Report {
	return &Report{
		RunID:       runID,
		GeneratedAt: time.Now(),
		Metrics:     make([]Metric, 0, 24),
	}
}

// Add ajoute des métriques au rapport
func (r *Report) Add(metrics ...Metric) {
	r.Metrics = append(r.Metrics, metrics...)
}

// Failures retourne les règles en échec (seuil non atteint ou erreur d'évaluation)
func (r *Report) Failures() []Metric {
	var failures []Metric
	for _, m := range r.Metrics {
		if m.Err != "" || (m.Defined && !m.Passed) {
			failures = append(failures, m)
		}
	}
	return failures
}

// Passed vérifie qu'aucune règle n'est en échec
func (r *Report) Passed() bool {
	return len(r.Failures()) == 0
}

// CSVHeaders retourne l'en-tête de l'export tabulaire
func CSVHeaders() []string {
	return []string{"run_id", "rule", "family", "value", "threshold", "passed", "error", "evaluated_at"}
}

// ToCSVRow convertit une métrique en ligne d'export.
// Valeur vide pour une métrique indéfinie (pas de donnée mesurable).
func (m Metric) ToCSVRow(runID uuid.UUID) []string {
	value := ""
	if m.Defined {
		value = strconv.FormatFloat(m.Value, 'f', 2, 64)
	}
	return []string{
		runID.String(),
		m.Rule,
		string(m.Family),
		value,
		strconv.FormatFloat(m.Threshold, 'f', 2, 64),
		strconv.FormatBool(m.Passed),
		m.Err,
		m.EvaluatedAt.Format("2006-01-02 15:04:05"),
	}
}
