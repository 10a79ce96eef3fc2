package infrastructure

import (
	"database/sql"
	"fmt"
	"strings"

	"olistdw/internal/shared/infrastructure"
)

// RateRow résultat d'une règle en pourcentage (NULL = aucune ligne à mesurer)
type RateRow struct {
	Rule string
	Rate sql.NullFloat64
}

// CountRow résultat d'une règle de comptage de doublons
type CountRow struct {
	Rule       string
	Duplicates int64
}

// LeadTimeStats distribution du délai achat -> livraison, en jours
type LeadTimeStats struct {
	Deliveries int64
	AvgDays    sql.NullFloat64
	P50Days    sql.NullFloat64
	P95Days    sql.NullFloat64
}

// completenessChecks colonnes critiques mesurées (table entrepôt, colonne).
// Jeu fixe: le moniteur n'est pas un framework de règles configurable.
var completenessChecks = []struct {
	Table  string
	Column string
}{
	{"olist_dw.fact_order_item", "price"},
	{"olist_dw.fact_order_item", "freight_value"},
	{"olist_dw.fact_order_item", "purchase_date_id"},
	{"olist_dw.dim_customer", "city"},
	{"olist_dw.dim_customer", "state"},
	{"olist_dw.dim_product", "category_name"},
}

// validStates codes UF brésiliens admis pour customer_state / seller_state
const validStates = `'AC','AL','AP','AM','BA','CE','DF','ES','GO','MA','MT','MS','MG','PA','PB','PR','PE','PI','RJ','RN','RS','RO','RR','SC','SP','SE','TO'`

// QualityQueryRepository repository de lecture du moteur de qualité.
// Chaque règle est une requête ensembliste pure contre l'état courant du
// staging/entrepôt; la forme AVG(CASE ...) retourne NULL sur un jeu vide,
// jamais une division par zéro.
type QualityQueryRepository struct {
	infrastructure.BaseRepository
}

// NewQualityQueryRepository crée un nouveau repository de qualité
func NewQualityQueryRepository(db *sql.DB) *QualityQueryRepository {
	return &QualityQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// CompletenessRates calcule le % non-null de chaque colonne critique
func (r *QualityQueryRepository) CompletenessRates() ([]RateRow, error) {
	var parts []string
	for _, c := range completenessChecks {
		parts = append(parts, fmt.Sprintf(
			`SELECT '%s.%s' AS rule, 100.0*AVG(CASE WHEN %s IS NOT NULL THEN 1 ELSE 0 END) AS rate FROM %s`,
			c.Table, c.Column, c.Column, c.Table))
	}
	query := strings.Join(parts, "\nUNION ALL\n") + "\nORDER BY rule"
	return r.queryRates(query)
}

// DuplicateCounts calcule lignes - clés distinctes par clé naturelle du staging
func (r *QualityQueryRepository) DuplicateCounts() ([]CountRow, error) {
	rows, err := r.Query(`
		SELECT 'raw_orders.order_id' AS rule, COUNT(*) - COUNT(DISTINCT order_id) AS duplicates
		FROM olist_stage.raw_orders
		UNION ALL
		SELECT 'raw_customers.customer_id', COUNT(*) - COUNT(DISTINCT customer_id)
		FROM olist_stage.raw_customers
		UNION ALL
		SELECT 'raw_sellers.seller_id', COUNT(*) - COUNT(DISTINCT seller_id)
		FROM olist_stage.raw_sellers
		UNION ALL
		SELECT 'raw_products.product_id', COUNT(*) - COUNT(DISTINCT product_id)
		FROM olist_stage.raw_products
		UNION ALL
		SELECT 'raw_order_items(order_id,order_item_id)',
		       COUNT(*) - COUNT(DISTINCT (order_id, order_item_id))
		FROM olist_stage.raw_order_items
		UNION ALL
		SELECT 'raw_payments(order_id,payment_sequential)',
		       COUNT(*) - COUNT(DISTINCT (order_id, payment_sequential))
		FROM olist_stage.raw_payments
		ORDER BY rule
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []CountRow
	for rows.Next() {
		var c CountRow
		if err := rows.Scan(&c.Rule, &c.Duplicates); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ValidityRates évalue les prédicats métier (% de lignes conformes)
func (r *QualityQueryRepository) ValidityRates() ([]RateRow, error) {
	return r.queryRates(fmt.Sprintf(`
		SELECT 'price>0' AS rule, 100.0*AVG(CASE WHEN price > 0 THEN 1 ELSE 0 END) AS rate
		FROM olist_stage.raw_order_items
		UNION ALL
		SELECT 'freight>=0', 100.0*AVG(CASE WHEN freight_value >= 0 THEN 1 ELSE 0 END)
		FROM olist_stage.raw_order_items
		UNION ALL
		SELECT 'seller_state in UF', 100.0*AVG(CASE WHEN seller_state IN (%s) THEN 1 ELSE 0 END)
		FROM olist_stage.raw_sellers
		UNION ALL
		SELECT 'customer_state in UF', 100.0*AVG(CASE WHEN customer_state IN (%s) THEN 1 ELSE 0 END)
		FROM olist_stage.raw_customers
		UNION ALL
		SELECT 'product dims>0', 100.0*AVG(CASE WHEN COALESCE(product_weight_g, 1) > 0
		                                         AND COALESCE(product_length_cm, 1) > 0
		                                         AND COALESCE(product_height_cm, 1) > 0
		                                         AND COALESCE(product_width_cm, 1) > 0
		                                    THEN 1 ELSE 0 END)
		FROM olist_stage.raw_products
		ORDER BY rule
	`, validStates, validStates))
}

// ConsistencyRates évalue les règles croisées, dont le rapprochement par
// commande entre somme des paiements et somme des lignes (prix + fret),
// accepté dans la tolérance absolue passée en paramètre.
func (r *QualityQueryRepository) ConsistencyRates(tolerance float64) ([]RateRow, error) {
	rows, err := r.Query(`
		SELECT 'delivered_has_date' AS rule,
		       100.0*AVG(CASE WHEN order_status = 'delivered'
		                      THEN CASE WHEN order_delivered_customer_date IS NOT NULL THEN 1 ELSE 0 END
		                      ELSE 1 END) AS rate
		FROM olist_stage.raw_orders
		UNION ALL
		SELECT 'delivered_after_purchase',
		       100.0*AVG(CASE WHEN order_status = 'delivered'
		                      THEN CASE WHEN order_delivered_customer_date >= order_purchase_timestamp THEN 1 ELSE 0 END
		                      ELSE 1 END)
		FROM olist_stage.raw_orders
		UNION ALL
		SELECT 'shipping_limit_after_purchase',
		       100.0*AVG(CASE WHEN i.shipping_limit_date >= o.order_purchase_timestamp THEN 1 ELSE 0 END)
		FROM olist_stage.raw_order_items i
		JOIN olist_stage.raw_orders o ON o.order_id = i.order_id
		UNION ALL
		SELECT 'payments_match_items',
		       100.0*AVG(CASE WHEN ABS(payments.total - items.total) <= $1 THEN 1 ELSE 0 END)
		FROM (
		  SELECT order_id, SUM(payment_value) AS total
		  FROM olist_stage.raw_payments GROUP BY order_id
		) payments
		JOIN (
		  SELECT order_id, SUM(price + freight_value) AS total
		  FROM olist_stage.raw_order_items GROUP BY order_id
		) items USING (order_id)
		ORDER BY rule
	`, tolerance)
	if err != nil {
		return nil, err
	}
	return scanRates(rows)
}

// OnTimeRate calcule le % de commandes livrées au plus tard à la date estimée.
// Borne inclusive: livrée le jour estimé = dans les temps.
func (r *QualityQueryRepository) OnTimeRate() (sql.NullFloat64, error) {
	var rate sql.NullFloat64
	err := r.QueryRow(`
		SELECT 100.0*AVG(CASE WHEN order_delivered_customer_date <= order_estimated_delivery_date THEN 1 ELSE 0 END)
		FROM olist_stage.raw_orders
		WHERE order_delivered_customer_date IS NOT NULL
		  AND order_estimated_delivery_date IS NOT NULL
	`).Scan(&rate)
	return rate, err
}

// LeadTimes calcule la distribution du lead time (jours entre achat et livraison)
func (r *QualityQueryRepository) LeadTimes() (LeadTimeStats, error) {
	var stats LeadTimeStats
	err := r.QueryRow(`
		SELECT COUNT(*),
		       AVG(lead_time_days),
		       PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY lead_time_days),
		       PERCENTILE_CONT(0.95) WITHIN GROUP (ORDER BY lead_time_days)
		FROM (
		  SELECT (DATE(order_delivered_customer_date) - DATE(order_purchase_timestamp))::INT AS lead_time_days
		  FROM olist_stage.raw_orders
		  WHERE order_delivered_customer_date IS NOT NULL AND order_purchase_timestamp IS NOT NULL
		) t
	`).Scan(&stats.Deliveries, &stats.AvgDays, &stats.P50Days, &stats.P95Days)
	return stats, err
}

// queryRates exécute une requête (rule, rate) et scanne les résultats
func (r *QualityQueryRepository) queryRates(query string) ([]RateRow, error) {
	rows, err := r.Query(query)
	if err != nil {
		return nil, err
	}
	return scanRates(rows)
}

// scanRates scanne des lignes (rule, rate nullable)
func scanRates(rows *sql.Rows) ([]RateRow, error) {
	defer rows.Close()

	var rates []RateRow
	for rows.Next() {
		var rate RateRow
		if err := rows.Scan(&rate.Rule, &rate.Rate); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}
