package infrastructure

import (
	"database/sql"

	"olistdw/database"
	"olistdw/internal/shared/infrastructure"
)

// DimensionRepository repository pour la construction des dimensions.
// Toutes les opérations sont ensemblistes (un seul upsert par dimension):
// pas d'aller-retour ligne à ligne, les extracts font des dizaines de
// milliers à quelques millions de lignes.
type DimensionRepository struct {
	infrastructure.BaseRepository
}

// NewDimensionRepository crée un nouveau repository de dimensions
func NewDimensionRepository(db *sql.DB) *DimensionRepository {
	return &DimensionRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository liée à la transaction
func (r *DimensionRepository) WithTx(tx *sql.Tx) *DimensionRepository {
	return &DimensionRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// UpsertCustomers fusionne les clients du staging dans dim_customer.
// Règle de fusion: une valeur entrante non-nulle écrase l'existante, une
// valeur entrante nulle n'écrase jamais une non-nulle (COALESCE). La clé
// naturelle et la clé de substitution ne changent jamais après création.
func (r *DimensionRepository) UpsertCustomers() (int64, error) {
	res, err := r.Exec(`
		INSERT INTO olist_dw.dim_customer (customer_id, customer_unique_id, zip_prefix, city, state)
		SELECT DISTINCT customer_id, customer_unique_id, customer_zip_code_prefix, customer_city, customer_state
		FROM olist_stage.raw_customers
		WHERE customer_id IS NOT NULL
		ON CONFLICT (customer_id) DO UPDATE
		  SET customer_unique_id = COALESCE(EXCLUDED.customer_unique_id, olist_dw.dim_customer.customer_unique_id),
		      zip_prefix = COALESCE(EXCLUDED.zip_prefix, olist_dw.dim_customer.zip_prefix),
		      city = COALESCE(EXCLUDED.city, olist_dw.dim_customer.city),
		      state = COALESCE(EXCLUDED.state, olist_dw.dim_customer.state)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertSellers fusionne les vendeurs du staging dans dim_seller
func (r *DimensionRepository) UpsertSellers() (int64, error) {
	res, err := r.Exec(`
		INSERT INTO olist_dw.dim_seller (seller_id, zip_prefix, city, state)
		SELECT DISTINCT seller_id, seller_zip_code_prefix, seller_city, seller_state
		FROM olist_stage.raw_sellers
		WHERE seller_id IS NOT NULL
		ON CONFLICT (seller_id) DO UPDATE
		  SET zip_prefix = COALESCE(EXCLUDED.zip_prefix, olist_dw.dim_seller.zip_prefix),
		      city = COALESCE(EXCLUDED.city, olist_dw.dim_seller.city),
		      state = COALESCE(EXCLUDED.state, olist_dw.dim_seller.state)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpsertProducts fusionne les produits du staging dans dim_product.
// La traduction de catégorie vient d'un left-join sur la table de
// correspondance: une traduction absente donne un NULL, pas une erreur.
func (r *DimensionRepository) UpsertProducts() (int64, error) {
	res, err := r.Exec(`
		INSERT INTO olist_dw.dim_product (product_id, category_name, category_name_en,
		                                  weight_g, length_cm, height_cm, width_cm)
		SELECT DISTINCT p.product_id,
		       p.product_category_name,
		       t.product_category_name_english,
		       p.product_weight_g, p.product_length_cm, p.product_height_cm, p.product_width_cm
		FROM olist_stage.raw_products p
		LEFT JOIN olist_stage.raw_category_translation t
		  ON t.product_category_name = p.product_category_name
		WHERE p.product_id IS NOT NULL
		ON CONFLICT (product_id) DO UPDATE
		  SET category_name = COALESCE(EXCLUDED.category_name, olist_dw.dim_product.category_name),
		      category_name_en = COALESCE(EXCLUDED.category_name_en, olist_dw.dim_product.category_name_en),
		      weight_g = COALESCE(EXCLUDED.weight_g, olist_dw.dim_product.weight_g),
		      length_cm = COALESCE(EXCLUDED.length_cm, olist_dw.dim_product.length_cm),
		      height_cm = COALESCE(EXCLUDED.height_cm, olist_dw.dim_product.height_cm),
		      width_cm = COALESCE(EXCLUDED.width_cm, olist_dw.dim_product.width_cm)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindCustomer retourne une ligne de dim_customer par clé naturelle
func (r *DimensionRepository) FindCustomer(customerID string) (*database.DimCustomer, error) {
	var c database.DimCustomer
	err := r.QueryRow(`
		SELECT customer_sk, customer_id, customer_unique_id, zip_prefix, city, state
		FROM olist_dw.dim_customer WHERE customer_id = $1`, customerID).
		Scan(&c.CustomerSK, &c.CustomerID, &c.CustomerUniqueID, &c.ZipPrefix, &c.City, &c.State)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindProduct retourne une ligne de dim_product par clé naturelle
func (r *DimensionRepository) FindProduct(productID string) (*database.DimProduct, error) {
	var p database.DimProduct
	err := r.QueryRow(`
		SELECT product_sk, product_id, category_name, category_name_en,
		       weight_g, length_cm, height_cm, width_cm
		FROM olist_dw.dim_product WHERE product_id = $1`, productID).
		Scan(&p.ProductSK, &p.ProductID, &p.CategoryName, &p.CategoryNameEn,
			&p.WeightG, &p.LengthCm, &p.HeightCm, &p.WidthCm)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertDates insère dans dim_date l'union de toutes les colonnes datées des
// sources, tronquée au jour. Les attributs sont des fonctions pures de la
// date: les lignes existantes ne sont jamais mises à jour (DO NOTHING).
func (r *DimensionRepository) InsertDates() (int64, error) {
	res, err := r.Exec(`
		WITH d AS (
		  SELECT DISTINCT DATE(order_purchase_timestamp) AS d FROM olist_stage.raw_orders WHERE order_purchase_timestamp IS NOT NULL
		  UNION SELECT DISTINCT DATE(order_approved_at) FROM olist_stage.raw_orders WHERE order_approved_at IS NOT NULL
		  UNION SELECT DISTINCT DATE(order_delivered_carrier_date) FROM olist_stage.raw_orders WHERE order_delivered_carrier_date IS NOT NULL
		  UNION SELECT DISTINCT DATE(order_delivered_customer_date) FROM olist_stage.raw_orders WHERE order_delivered_customer_date IS NOT NULL
		  UNION SELECT DISTINCT DATE(order_estimated_delivery_date) FROM olist_stage.raw_orders WHERE order_estimated_delivery_date IS NOT NULL
		  UNION SELECT DISTINCT DATE(shipping_limit_date) FROM olist_stage.raw_order_items WHERE shipping_limit_date IS NOT NULL
		  UNION SELECT DISTINCT DATE(review_creation_date) FROM olist_stage.raw_reviews WHERE review_creation_date IS NOT NULL
		  UNION SELECT DISTINCT DATE(review_answer_timestamp) FROM olist_stage.raw_reviews WHERE review_answer_timestamp IS NOT NULL
		)
		INSERT INTO olist_dw.dim_date (date_id, year, quarter, month, day, week, dow)
		SELECT d,
		       EXTRACT(YEAR FROM d)::SMALLINT,
		       ((EXTRACT(MONTH FROM d)::INT - 1)/3 + 1)::SMALLINT,
		       EXTRACT(MONTH FROM d)::SMALLINT,
		       EXTRACT(DAY FROM d)::SMALLINT,
		       EXTRACT(WEEK FROM d)::SMALLINT,
		       EXTRACT(DOW FROM d)::SMALLINT
		FROM d
		ON CONFLICT (date_id) DO NOTHING
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
