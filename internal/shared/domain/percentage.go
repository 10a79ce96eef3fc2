package domain

import (
	"errors"
	"fmt"
	"math"
)

// Percentage représente un taux 0-100 avec un état "indéfini" explicite.
// Un jeu de données vide produit un Percentage indéfini, jamais une division par zéro.
type Percentage struct {
	value   float64
	defined bool
}

// NewPercentage crée une nouvelle instance de Percentage avec validation
func NewPercentage(value float64) (Percentage, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Percentage{}, errors.New("percentage must be a finite number")
	}
	if value < 0 || value > 100 {
		return Percentage{}, fmt.Errorf("percentage out of range: %.4f", value)
	}
	return Percentage{value: value, defined: true}, nil
}

// UndefinedPercentage crée un Percentage indéfini (aucune donnée à mesurer)
func UndefinedPercentage() Percentage {
	return Percentage{}
}

// Value retourne le taux; valide uniquement si IsDefined
func (p Percentage) Value() float64 {
	return p.value
}

// IsDefined vérifie si le taux a pu être calculé
func (p Percentage) IsDefined() bool {
	return p.defined
}

// AtLeast vérifie que le taux atteint un seuil (indéfini = jamais atteint)
func (p Percentage) AtLeast(threshold float64) bool {
	return p.defined && p.value >= threshold
}
