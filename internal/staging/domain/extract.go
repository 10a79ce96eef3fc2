package domain

import (
	"errors"
	"fmt"
)

// ErrMissingFile extract attendu absent du répertoire d'entrée
var ErrMissingFile = errors.New("extract file not found")

// ErrUnexpectedHeader l'en-tête du fichier ne correspond pas aux colonnes attendues
var ErrUnexpectedHeader = errors.New("unexpected extract header")

// Extract décrit un fichier source et sa table landing.
// L'ordre des colonnes est fixe et vérifié contre la ligne d'en-tête avant
// toute mutation de l'entrepôt.
type Extract struct {
	Table    string
	FileName string
	Columns  []string
}

// ValidateHeader vérifie que l'en-tête lu correspond exactement aux colonnes attendues
func (e Extract) ValidateHeader(header []string) error {
	if len(header) != len(e.Columns) {
		return fmt.Errorf("%w: %s: %d colonnes, %d attendues",
			ErrUnexpectedHeader, e.FileName, len(header), len(e.Columns))
	}
	for i, col := range e.Columns {
		if header[i] != col {
			return fmt.Errorf("%w: %s: colonne %d = %q, %q attendue",
				ErrUnexpectedHeader, e.FileName, i, header[i], col)
		}
	}
	return nil
}

// Catalog retourne la liste des extracts attendus (fichier -> table de staging)
func Catalog() []Extract {
	return []Extract{
		{
			Table:    "raw_customers",
			FileName: "olist_customers_dataset.csv",
			Columns: []string{"customer_id", "customer_unique_id",
				"customer_zip_code_prefix", "customer_city", "customer_state"},
		},
		{
			Table:    "raw_orders",
			FileName: "olist_orders_dataset.csv",
			Columns: []string{"order_id", "customer_id", "order_status",
				"order_purchase_timestamp", "order_approved_at",
				"order_delivered_carrier_date", "order_delivered_customer_date",
				"order_estimated_delivery_date"},
		},
		{
			Table:    "raw_order_items",
			FileName: "olist_order_items_dataset.csv",
			Columns: []string{"order_id", "order_item_id", "product_id",
				"seller_id", "shipping_limit_date", "price", "freight_value"},
		},
		{
			Table:    "raw_products",
			FileName: "olist_products_dataset.csv",
			Columns: []string{"product_id", "product_category_name",
				"product_name_lenght", "product_description_lenght",
				"product_photos_qty", "product_weight_g", "product_length_cm",
				"product_height_cm", "product_width_cm"},
		},
		{
			Table:    "raw_sellers",
			FileName: "olist_sellers_dataset.csv",
			Columns: []string{"seller_id", "seller_zip_code_prefix",
				"seller_city", "seller_state"},
		},
		{
			Table:    "raw_payments",
			FileName: "olist_order_payments_dataset.csv",
			Columns: []string{"order_id", "payment_sequential", "payment_type",
				"payment_installments", "payment_value"},
		},
		{
			Table:    "raw_reviews",
			FileName: "olist_order_reviews_dataset.csv",
			Columns: []string{"review_id", "order_id", "review_score",
				"review_comment_title", "review_comment_message",
				"review_creation_date", "review_answer_timestamp"},
		},
		{
			Table:    "raw_category_translation",
			FileName: "product_category_name_translation.csv",
			Columns:  []string{"product_category_name", "product_category_name_english"},
		},
	}
}
