package domain

import (
	"errors"
	"math"
)

// Tolerance représente un écart monétaire absolu accepté lors d'un rapprochement.
// Sert à absorber les arrondis entre somme des paiements et somme des lignes.
type Tolerance struct {
	amount float64
}

// NewTolerance crée une nouvelle instance de Tolerance avec validation
func NewTolerance(amount float64) (Tolerance, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Tolerance{}, errors.New("tolerance must be a finite number")
	}
	if amount < 0 {
		return Tolerance{}, errors.New("tolerance cannot be negative")
	}
	return Tolerance{amount: amount}, nil
}

// MustNewTolerance crée une Tolerance en paniquant si invalide
func MustNewTolerance(amount float64) Tolerance {
	t, err := NewTolerance(amount)
	if err != nil {
		panic("invalid tolerance: " + err.Error())
	}
	return t
}

// Amount retourne l'écart accepté
func (t Tolerance) Amount() float64 {
	return t.amount
}

// Accepts vérifie si un écart absolu reste dans la tolérance
func (t Tolerance) Accepts(delta float64) bool {
	return math.Abs(delta) <= t.amount
}
