package domain

import (
	shareddomain "olistdw/internal/shared/domain"
)

// Thresholds seuils minimaux par famille de règles.
// Le jeu de règles est fixe et spécifique au domaine; seuls les seuils et la
// tolérance de rapprochement sont ajustables par l'appelant.
type Thresholds struct {
	Completeness   float64
	Validity       float64
	Consistency    float64
	OnTimeRate     float64
	Reconciliation shareddomain.Tolerance
}

// DefaultThresholds retourne les seuils par défaut du moniteur.
// Tolérance de rapprochement à 1.00: absorbe les arrondis entre somme des
// paiements et somme des lignes d'une commande.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Completeness:   95,
		Validity:       99,
		Consistency:    95,
		OnTimeRate:     90,
		Reconciliation: shareddomain.MustNewTolerance(1.00),
	}
}
