package application

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"olistdw/database"
	"olistdw/internal/quality/domain"
	"olistdw/internal/quality/infrastructure"
	shareddomain "olistdw/internal/shared/domain"
	"olistdw/internal/testhelpers"
)

// ========================================
// INTEGRATION TESTS - REAL DATABASE
// ========================================
// Ces tests insèrent des scénarios contrôlés directement dans le staging et
// l'entrepôt, puis vérifient les métriques produites par le moteur de qualité.

// setupQualityTest prépare la base et un service avec les seuils donnés
func setupQualityTest(t *testing.T, thresholds domain.Thresholds) (*sql.DB, *QualityService) {
	t.Helper()
	testhelpers.SkipIfNoDatabase(t)

	db := testhelpers.SetupTestDB(t)
	t.Cleanup(func() { database.Close() })
	testhelpers.ResetWarehouse(t, db)

	return db, NewQualityService(infrastructure.NewQualityQueryRepository(db), thresholds)
}

// exec exécute une mutation SQL de mise en place de scénario
func exec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("Failed to exec %q: %v", query, err)
	}
}

// findMetric retourne la métrique d'une règle donnée
func findMetric(t *testing.T, report *domain.Report, rule string) domain.Metric {
	t.Helper()
	for _, m := range report.Metrics {
		if m.Rule == rule {
			return m
		}
	}
	t.Fatalf("metric %q not found in report", rule)
	return domain.Metric{}
}

// TestRunChecksEmptyWarehouse vérifie qu'un entrepôt vide produit des métriques
// indéfinies, jamais des échecs ni des erreurs
func TestRunChecksEmptyWarehouse(t *testing.T) {
	_, service := setupQualityTest(t, domain.DefaultThresholds())

	report := service.RunChecks(uuid.New())

	if len(report.Metrics) == 0 {
		t.Fatal("empty report")
	}
	for _, m := range report.Metrics {
		if m.Err != "" {
			t.Errorf("%s: unexpected error %q", m.Rule, m.Err)
		}
		if m.Family != domain.FamilyUniqueness && m.Defined {
			t.Errorf("%s: defined on empty warehouse (value %.2f)", m.Rule, m.Value)
		}
	}
	if !report.Passed() {
		t.Errorf("empty warehouse should pass, failures: %v", report.Failures())
	}
}

// TestReconciliationTolerance vérifie le rapprochement paiements/lignes:
// un écart égal à la tolérance passe, un écart au-delà échoue
func TestReconciliationTolerance(t *testing.T) {
	thresholds := domain.DefaultThresholds()
	thresholds.Reconciliation = shareddomain.MustNewTolerance(0.50)
	db, service := setupQualityTest(t, thresholds)

	exec(t, db, `INSERT INTO olist_stage.raw_orders (order_id, customer_id, order_status, order_purchase_timestamp)
		VALUES ('o1', 'c1', 'delivered', '2017-05-10 10:00:00')`)
	exec(t, db, `INSERT INTO olist_stage.raw_order_items (order_id, order_item_id, product_id, seller_id, price, freight_value)
		VALUES ('o1', 1, 'p1', 's1', 90.00, 10.00)`)
	// Paiement 100.50 pour 100.00 de lignes: écart exactement à la tolérance
	exec(t, db, `INSERT INTO olist_stage.raw_payments (order_id, payment_sequential, payment_type, payment_installments, payment_value)
		VALUES ('o1', 1, 'credit_card', 1, 100.50)`)

	m := findMetric(t, service.RunChecks(uuid.New()), "payments_match_items")
	if !m.Defined || !m.Passed {
		t.Errorf("delta at tolerance should pass: %+v", m)
	}

	// Tolérance resserrée d'un centime: le même écart échoue
	thresholds.Reconciliation = shareddomain.MustNewTolerance(0.49)
	strict := NewQualityService(infrastructure.NewQualityQueryRepository(db), thresholds)

	m = findMetric(t, strict.RunChecks(uuid.New()), "payments_match_items")
	if !m.Defined || m.Passed {
		t.Errorf("delta beyond tolerance should fail: %+v", m)
	}
	if m.Value != 0 {
		t.Errorf("match rate = %.2f, want 0", m.Value)
	}
}

// TestOnTimeRateInclusiveBoundary vérifie qu'une livraison le jour estimé
// compte comme dans les temps
func TestOnTimeRateInclusiveBoundary(t *testing.T) {
	db, service := setupQualityTest(t, domain.DefaultThresholds())

	// Livrée exactement à l'instant estimé
	exec(t, db, `INSERT INTO olist_stage.raw_orders
		(order_id, customer_id, order_status, order_purchase_timestamp, order_delivered_customer_date, order_estimated_delivery_date)
		VALUES ('o1', 'c1', 'delivered', '2017-05-01 10:00:00', '2017-05-20 00:00:00', '2017-05-20 00:00:00')`)
	// Livrée en retard
	exec(t, db, `INSERT INTO olist_stage.raw_orders
		(order_id, customer_id, order_status, order_purchase_timestamp, order_delivered_customer_date, order_estimated_delivery_date)
		VALUES ('o2', 'c2', 'delivered', '2017-05-01 10:00:00', '2017-05-21 00:00:01', '2017-05-21 00:00:00')`)

	m := findMetric(t, service.RunChecks(uuid.New()), "on_time_delivery_rate")
	if !m.Defined {
		t.Fatal("on_time_delivery_rate undefined")
	}
	if m.Value != 50 {
		t.Errorf("on_time rate = %.2f, want 50 (boundary delivery is on time)", m.Value)
	}
}

// TestUniquenessDetectsDuplicates vérifie qu'un doublon de clé naturelle
// dans le staging fait échouer la règle de comptage
func TestUniquenessDetectsDuplicates(t *testing.T) {
	db, service := setupQualityTest(t, domain.DefaultThresholds())

	exec(t, db, `INSERT INTO olist_stage.raw_orders (order_id, customer_id, order_status)
		VALUES ('o1', 'c1', 'delivered'), ('o1', 'c1', 'shipped')`)

	m := findMetric(t, service.RunChecks(uuid.New()), "raw_orders.order_id")
	if m.Passed {
		t.Error("duplicate order_id should fail uniqueness")
	}
	if m.Value != 1 {
		t.Errorf("duplicates = %.0f, want 1", m.Value)
	}
}

// TestValidityStates vérifie le contrôle des codes UF
func TestValidityStates(t *testing.T) {
	db, service := setupQualityTest(t, domain.DefaultThresholds())

	exec(t, db, `INSERT INTO olist_stage.raw_sellers (seller_id, seller_city, seller_state)
		VALUES ('s1', 'campinas', 'SP'), ('s2', 'nowhere', 'XX')`)

	m := findMetric(t, service.RunChecks(uuid.New()), "seller_state in UF")
	if !m.Defined {
		t.Fatal("seller_state rate undefined")
	}
	if m.Value != 50 {
		t.Errorf("seller_state rate = %.2f, want 50", m.Value)
	}
	if m.Passed {
		t.Error("half-valid states should fail the validity threshold")
	}
}

// TestConsistencyDeliveredHasDate vérifie qu'une commande livrée sans date de
// livraison dégrade la règle croisée
func TestConsistencyDeliveredHasDate(t *testing.T) {
	db, service := setupQualityTest(t, domain.DefaultThresholds())

	exec(t, db, `INSERT INTO olist_stage.raw_orders
		(order_id, customer_id, order_status, order_purchase_timestamp, order_delivered_customer_date)
		VALUES ('o1', 'c1', 'delivered', '2017-05-01 10:00:00', '2017-05-10 10:00:00'),
		       ('o2', 'c2', 'delivered', '2017-05-01 10:00:00', NULL),
		       ('o3', 'c3', 'shipped',   '2017-05-01 10:00:00', NULL)`)

	m := findMetric(t, service.RunChecks(uuid.New()), "delivered_has_date")
	if !m.Defined {
		t.Fatal("delivered_has_date undefined")
	}
	// Deux livrées dont une sans date, la commande expédiée n'est pas concernée
	if int(m.Value*100) != 6666 {
		t.Errorf("delivered_has_date = %.4f, want ~66.67", m.Value)
	}
}

// TestConsistencyDeliveredBeforePurchase vérifie qu'une livraison antérieure
// à l'achat fait échouer la règle de chronologie
func TestConsistencyDeliveredBeforePurchase(t *testing.T) {
	db, service := setupQualityTest(t, domain.DefaultThresholds())

	exec(t, db, `INSERT INTO olist_stage.raw_orders
		(order_id, customer_id, order_status, order_purchase_timestamp, order_delivered_customer_date)
		VALUES ('o1', 'c1', 'delivered', '2017-05-10 10:00:00', '2017-05-01 08:00:00')`)

	m := findMetric(t, service.RunChecks(uuid.New()), "delivered_after_purchase")
	if !m.Defined {
		t.Fatal("delivered_after_purchase undefined")
	}
	if m.Value != 0 {
		t.Errorf("delivered_after_purchase = %.2f, want 0", m.Value)
	}
	if m.Passed {
		t.Error("delivery before purchase should fail consistency")
	}
}

// TestMalformedThresholdFailsOnlyThatFamily vérifie qu'un seuil hors bornes
// fait échouer ses règles sans empêcher les autres familles
func TestMalformedThresholdFailsOnlyThatFamily(t *testing.T) {
	thresholds := domain.DefaultThresholds()
	thresholds.Completeness = 150
	db, service := setupQualityTest(t, thresholds)

	exec(t, db, `INSERT INTO olist_stage.raw_sellers (seller_id, seller_city, seller_state)
		VALUES ('s1', 'campinas', 'SP')`)

	report := service.RunChecks(uuid.New())

	for _, m := range report.Metrics {
		if m.Family == domain.FamilyCompleteness && m.Err == "" {
			t.Errorf("%s: malformed threshold should annotate the rule", m.Rule)
		}
		if m.Family != domain.FamilyCompleteness && m.Err != "" {
			t.Errorf("%s: unexpected error %q", m.Rule, m.Err)
		}
	}

	m := findMetric(t, report, "seller_state in UF")
	if !m.Defined || !m.Passed {
		t.Errorf("validity should still evaluate: %+v", m)
	}
}

// TestExportCSVReport vérifie l'export tabulaire du rapport
func TestExportCSVReport(t *testing.T) {
	_, service := setupQualityTest(t, domain.DefaultThresholds())

	report := service.RunChecks(uuid.New())
	data, err := service.ExportCSV(report)
	if err != nil {
		t.Fatal("ExportCSV failed:", err)
	}
	if len(data) == 0 {
		t.Fatal("empty export")
	}

	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != len(report.Metrics)+1 {
		t.Errorf("export lines = %d, want %d (header + one per metric)", lines, len(report.Metrics)+1)
	}
}

// BenchmarkRunChecks mesure l'évaluation parallèle des cinq familles
func BenchmarkRunChecks(b *testing.B) {
	testhelpers.SkipIfNoDatabase(b)

	db := testhelpers.SetupTestDB(b)
	b.Cleanup(func() { database.Close() })

	service := NewQualityService(
		infrastructure.NewQualityQueryRepository(db),
		domain.DefaultThresholds(),
	)
	runID := uuid.New()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = service.RunChecks(runID)
	}
}
