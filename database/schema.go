package database

// ============================================================================
// SCHÉMA - Staging (miroir des extracts) et DW (étoile: dimensions + faits)
// ============================================================================

// schemaDDL contient le DDL complet des deux namespaces.
// Le staging ne porte aucune contrainte au-delà des types: les doublons et les
// valeurs manquantes sont attendus et mesurés par le moteur de qualité.
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS olist_stage;
CREATE SCHEMA IF NOT EXISTS olist_dw;

CREATE TABLE IF NOT EXISTS olist_stage.raw_customers (
	customer_id              TEXT,
	customer_unique_id       TEXT,
	customer_zip_code_prefix TEXT,
	customer_city            TEXT,
	customer_state           TEXT
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_orders (
	order_id                      TEXT,
	customer_id                   TEXT,
	order_status                  TEXT,
	order_purchase_timestamp      TIMESTAMP,
	order_approved_at             TIMESTAMP,
	order_delivered_carrier_date  TIMESTAMP,
	order_delivered_customer_date TIMESTAMP,
	order_estimated_delivery_date TIMESTAMP
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_order_items (
	order_id            TEXT,
	order_item_id       INTEGER,
	product_id          TEXT,
	seller_id           TEXT,
	shipping_limit_date TIMESTAMP,
	price               NUMERIC(12,2),
	freight_value       NUMERIC(12,2)
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_products (
	product_id                 TEXT,
	product_category_name      TEXT,
	product_name_lenght        INTEGER,
	product_description_lenght INTEGER,
	product_photos_qty         INTEGER,
	product_weight_g           NUMERIC(12,2),
	product_length_cm          NUMERIC(12,2),
	product_height_cm          NUMERIC(12,2),
	product_width_cm           NUMERIC(12,2)
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_sellers (
	seller_id              TEXT,
	seller_zip_code_prefix TEXT,
	seller_city            TEXT,
	seller_state           TEXT
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_payments (
	order_id             TEXT,
	payment_sequential   INTEGER,
	payment_type         TEXT,
	payment_installments INTEGER,
	payment_value        NUMERIC(12,2)
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_reviews (
	review_id               TEXT,
	order_id                TEXT,
	review_score            INTEGER,
	review_comment_title    TEXT,
	review_comment_message  TEXT,
	review_creation_date    TIMESTAMP,
	review_answer_timestamp TIMESTAMP
);

CREATE TABLE IF NOT EXISTS olist_stage.raw_category_translation (
	product_category_name         TEXT,
	product_category_name_english TEXT
);

CREATE TABLE IF NOT EXISTS olist_dw.dim_customer (
	customer_sk        BIGSERIAL PRIMARY KEY,
	customer_id        TEXT NOT NULL UNIQUE,
	customer_unique_id TEXT,
	zip_prefix         TEXT,
	city               TEXT,
	state              TEXT
);

CREATE TABLE IF NOT EXISTS olist_dw.dim_seller (
	seller_sk  BIGSERIAL PRIMARY KEY,
	seller_id  TEXT NOT NULL UNIQUE,
	zip_prefix TEXT,
	city       TEXT,
	state      TEXT
);

CREATE TABLE IF NOT EXISTS olist_dw.dim_product (
	product_sk       BIGSERIAL PRIMARY KEY,
	product_id       TEXT NOT NULL UNIQUE,
	category_name    TEXT,
	category_name_en TEXT,
	weight_g         NUMERIC(12,2),
	length_cm        NUMERIC(12,2),
	height_cm        NUMERIC(12,2),
	width_cm         NUMERIC(12,2)
);

CREATE TABLE IF NOT EXISTS olist_dw.dim_date (
	date_id DATE PRIMARY KEY,
	year    SMALLINT NOT NULL,
	quarter SMALLINT NOT NULL,
	month   SMALLINT NOT NULL,
	day     SMALLINT NOT NULL,
	week    SMALLINT NOT NULL,
	dow     SMALLINT NOT NULL
);

CREATE TABLE IF NOT EXISTS olist_dw.fact_order_item (
	order_id                   TEXT NOT NULL,
	order_item_id              INTEGER NOT NULL,
	customer_sk                BIGINT NOT NULL REFERENCES olist_dw.dim_customer (customer_sk),
	seller_sk                  BIGINT NOT NULL REFERENCES olist_dw.dim_seller (seller_sk),
	product_sk                 BIGINT NOT NULL REFERENCES olist_dw.dim_product (product_sk),
	purchase_date_id           DATE REFERENCES olist_dw.dim_date (date_id),
	approved_date_id           DATE REFERENCES olist_dw.dim_date (date_id),
	shipping_limit_date_id     DATE REFERENCES olist_dw.dim_date (date_id),
	delivered_customer_date_id DATE REFERENCES olist_dw.dim_date (date_id),
	estimated_delivery_date_id DATE REFERENCES olist_dw.dim_date (date_id),
	order_status               TEXT,
	price                      NUMERIC(12,2) CHECK (price >= 0),
	freight_value              NUMERIC(12,2) CHECK (freight_value >= 0),
	PRIMARY KEY (order_id, order_item_id)
);

CREATE TABLE IF NOT EXISTS olist_dw.fact_payment (
	order_id             TEXT NOT NULL,
	payment_sequential   INTEGER NOT NULL,
	payment_type         TEXT,
	payment_installments INTEGER,
	payment_value        NUMERIC(12,2) CHECK (payment_value >= 0),
	purchase_date_id     DATE REFERENCES olist_dw.dim_date (date_id),
	PRIMARY KEY (order_id, payment_sequential)
);
`

// EnsureSchema crée les namespaces et les tables s'ils n'existent pas.
// Idempotent: peut être exécuté avant chaque run du pipeline.
func EnsureSchema() error {
	_, err := DB.Exec(schemaDDL)
	return err
}
