package infrastructure

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"olistdw/internal/staging/domain"
)

// ExtractGenerator produit un jeu d'extracts CSV synthétiques au format Olist,
// utilisable comme entrée du pipeline (démo et tests manuels).
type ExtractGenerator struct {
	dataDir string
	rng     *rand.Rand
}

// NewExtractGenerator crée un générateur écrivant dans dataDir
func NewExtractGenerator(dataDir string, seed int64) *ExtractGenerator {
	return &ExtractGenerator{
		dataDir: dataDir,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

var states = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "DF", "GO", "PE"}

var cities = map[string][]string{
	"SP": {"sao paulo", "campinas", "santos"},
	"RJ": {"rio de janeiro", "niteroi"},
	"MG": {"belo horizonte", "uberlandia"},
	"RS": {"porto alegre", "caxias do sul"},
	"PR": {"curitiba", "londrina"},
	"SC": {"florianopolis", "joinville"},
	"BA": {"salvador", "feira de santana"},
	"DF": {"brasilia"},
	"GO": {"goiania"},
	"PE": {"recife"},
}

var categories = []struct {
	Name    string
	English string
}{
	{"beleza_saude", "health_beauty"},
	{"informatica_acessorios", "computers_accessories"},
	{"cama_mesa_banho", "bed_bath_table"},
	{"moveis_decoracao", "furniture_decor"},
	{"esporte_lazer", "sports_leisure"},
	{"utilidades_domesticas", "housewares"},
	{"relogios_presentes", "watches_gifts"},
	{"telefonia", "telephony"},
}

var paymentTypes = []string{"credit_card", "boleto", "voucher", "debit_card"}

var orderStatuses = []string{"delivered", "delivered", "delivered", "delivered",
	"shipped", "invoiced", "canceled"}

// GenerateAll génère les huit extracts du catalogue, cohérents entre eux
// (clés croisées résolues, paiements alignés sur les lignes de commande).
func (g *ExtractGenerator) GenerateAll(orders int) error {
	if err := os.MkdirAll(g.dataDir, 0o755); err != nil {
		return fmt.Errorf("erreur création répertoire: %w", err)
	}

	fmt.Println("🌱 Génération des données de référence...")
	customers := g.generateCustomers(orders)
	sellers := g.generateSellers(orders/20 + 5)
	products := g.generateProducts(orders/10 + 10)

	fmt.Println("🌱 Génération des commandes...")
	orderRows, itemRows, paymentRows, reviewRows := g.generateOrders(orders, customers, sellers, products)

	files := []struct {
		fileName string
		rows     [][]string
	}{
		{"olist_customers_dataset.csv", customers},
		{"olist_sellers_dataset.csv", sellers},
		{"olist_products_dataset.csv", products},
		{"olist_orders_dataset.csv", orderRows},
		{"olist_order_items_dataset.csv", itemRows},
		{"olist_order_payments_dataset.csv", paymentRows},
		{"olist_order_reviews_dataset.csv", reviewRows},
		{"product_category_name_translation.csv", g.generateTranslations()},
	}

	catalog := map[string]domain.Extract{}
	for _, extract := range domain.Catalog() {
		catalog[extract.FileName] = extract
	}

	for _, f := range files {
		extract := catalog[f.fileName]
		if err := g.writeCSV(extract, f.rows); err != nil {
			return fmt.Errorf("erreur écriture %s: %w", f.fileName, err)
		}
		fmt.Printf("   ✅ %s: %d lignes\n", f.fileName, len(f.rows))
	}
	return nil
}

// generateCustomers génère une ligne client par commande (modèle Olist:
// customer_id est propre à la commande, customer_unique_id identifie la personne)
func (g *ExtractGenerator) generateCustomers(n int) [][]string {
	uniques := n/2 + 1
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		state := states[g.rng.Intn(len(states))]
		cityList := cities[state]
		rows = append(rows, []string{
			hexID("cust", i),
			hexID("uniq", g.rng.Intn(uniques)),
			fmt.Sprintf("%05d", 1000+g.rng.Intn(90000)),
			cityList[g.rng.Intn(len(cityList))],
			state,
		})
	}
	return rows
}

func (g *ExtractGenerator) generateSellers(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		state := states[g.rng.Intn(len(states))]
		cityList := cities[state]
		rows = append(rows, []string{
			hexID("sell", i),
			fmt.Sprintf("%05d", 1000+g.rng.Intn(90000)),
			cityList[g.rng.Intn(len(cityList))],
			state,
		})
	}
	return rows
}

func (g *ExtractGenerator) generateProducts(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		category := categories[g.rng.Intn(len(categories))].Name
		// ~5% des produits sans catégorie, comme dans le dataset réel
		if g.rng.Intn(20) == 0 {
			category = ""
		}
		rows = append(rows, []string{
			hexID("prod", i),
			category,
			strconv.Itoa(20 + g.rng.Intn(60)),
			strconv.Itoa(100 + g.rng.Intn(2000)),
			strconv.Itoa(1 + g.rng.Intn(5)),
			strconv.Itoa(50 + g.rng.Intn(5000)),
			strconv.Itoa(5 + g.rng.Intn(60)),
			strconv.Itoa(2 + g.rng.Intn(40)),
			strconv.Itoa(5 + g.rng.Intn(40)),
		})
	}
	return rows
}

// generateOrders génère commandes, lignes, paiements et avis cohérents.
// Le total des paiements d'une commande égale la somme prix + fret de ses
// lignes, au centime près.
func (g *ExtractGenerator) generateOrders(n int, customers, sellers, products [][]string) (orders, items, payments, reviews [][]string) {
	base := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		orderID := hexID("ordr", i)
		status := orderStatuses[g.rng.Intn(len(orderStatuses))]
		purchase := base.Add(time.Duration(g.rng.Intn(540*24)) * time.Hour)
		approved := purchase.Add(time.Duration(1+g.rng.Intn(48)) * time.Hour)
		carrier := approved.Add(time.Duration(12+g.rng.Intn(96)) * time.Hour)
		delivered := carrier.Add(time.Duration(24+g.rng.Intn(300)) * time.Hour)
		estimated := purchase.AddDate(0, 0, 14+g.rng.Intn(14))

		deliveredStr := ""
		carrierStr := ""
		if status == "delivered" {
			deliveredStr = stamp(delivered)
			carrierStr = stamp(carrier)
		} else if status == "shipped" {
			carrierStr = stamp(carrier)
		}

		orders = append(orders, []string{
			orderID,
			customers[i][0],
			status,
			stamp(purchase),
			stamp(approved),
			carrierStr,
			deliveredStr,
			stamp(estimated),
		})

		// Lignes de commande
		total := 0
		itemCount := 1 + g.rng.Intn(3)
		for seq := 1; seq <= itemCount; seq++ {
			priceCents := 1000 + g.rng.Intn(30000)
			freightCents := 500 + g.rng.Intn(4000)
			total += priceCents + freightCents
			items = append(items, []string{
				orderID,
				strconv.Itoa(seq),
				products[g.rng.Intn(len(products))][0],
				sellers[g.rng.Intn(len(sellers))][0],
				stamp(purchase.Add(time.Duration(72+g.rng.Intn(96)) * time.Hour)),
				cents(priceCents),
				cents(freightCents),
			})
		}

		// Paiements: un ou deux versements couvrant exactement le total
		if g.rng.Intn(4) == 0 && total > 2000 {
			first := total / 2
			payments = append(payments,
				[]string{orderID, "1", paymentTypes[g.rng.Intn(len(paymentTypes))], "1", cents(first)},
				[]string{orderID, "2", "voucher", "1", cents(total - first)},
			)
		} else {
			payments = append(payments, []string{
				orderID, "1",
				paymentTypes[g.rng.Intn(len(paymentTypes))],
				strconv.Itoa(1 + g.rng.Intn(10)),
				cents(total),
			})
		}

		// Avis sur ~70% des commandes livrées
		if status == "delivered" && g.rng.Intn(10) < 7 {
			creation := delivered.Add(24 * time.Hour)
			reviews = append(reviews, []string{
				hexID("revw", i),
				orderID,
				strconv.Itoa(1 + g.rng.Intn(5)),
				"",
				"",
				stamp(creation),
				stamp(creation.Add(time.Duration(12+g.rng.Intn(72)) * time.Hour)),
			})
		}
	}
	return orders, items, payments, reviews
}

func (g *ExtractGenerator) generateTranslations() [][]string {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Name, c.English})
	}
	return rows
}

// writeCSV écrit un extract avec sa ligne d'en-tête
func (g *ExtractGenerator) writeCSV(extract domain.Extract, rows [][]string) error {
	file, err := os.Create(filepath.Join(g.dataDir, extract.FileName))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(extract.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// hexID fabrique un identifiant hexadécimal de 32 caractères, stable par index
func hexID(prefix string, i int) string {
	return fmt.Sprintf("%08x%s%020x", i, prefix, i*7919)
}

// cents formate un montant en centimes vers la notation décimale
func cents(v int) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}

// stamp formate un horodatage au format des extracts Olist
func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
