package database

import (
	"database/sql"
	"time"
)

// ============================================================================
// MODÈLES DE DONNÉES - Entrepôt (schéma étoile olist_dw)
// ============================================================================

// DimCustomer - Dimension client (clé de substitution + clé naturelle)
type DimCustomer struct {
	CustomerSK       int64          `json:"customer_sk"`
	CustomerID       string         `json:"customer_id"`
	CustomerUniqueID sql.NullString `json:"customer_unique_id,omitempty"`
	ZipPrefix        sql.NullString `json:"zip_prefix,omitempty"`
	City             sql.NullString `json:"city,omitempty"`
	State            sql.NullString `json:"state,omitempty"`
}

// DimSeller - Dimension vendeur
type DimSeller struct {
	SellerSK  int64          `json:"seller_sk"`
	SellerID  string         `json:"seller_id"`
	ZipPrefix sql.NullString `json:"zip_prefix,omitempty"`
	City      sql.NullString `json:"city,omitempty"`
	State     sql.NullString `json:"state,omitempty"`
}

// DimProduct - Dimension produit (catégorie traduite via left-join staging)
type DimProduct struct {
	ProductSK      int64           `json:"product_sk"`
	ProductID      string          `json:"product_id"`
	CategoryName   sql.NullString  `json:"category_name,omitempty"`
	CategoryNameEn sql.NullString  `json:"category_name_en,omitempty"`
	WeightG        sql.NullFloat64 `json:"weight_g,omitempty"`
	LengthCm       sql.NullFloat64 `json:"length_cm,omitempty"`
	HeightCm       sql.NullFloat64 `json:"height_cm,omitempty"`
	WidthCm        sql.NullFloat64 `json:"width_cm,omitempty"`
}

// DimDate - Dimension calendrier, clé = la date elle-même.
// Attributs dérivés de la date, jamais mis à jour après insertion.
type DimDate struct {
	DateID  time.Time `json:"date_id"`
	Year    int       `json:"year"`
	Quarter int       `json:"quarter"`
	Month   int       `json:"month"`
	Day     int       `json:"day"`
	Week    int       `json:"week"`
	Dow     int       `json:"dow"`
}

// FactOrderItem - Fait ligne de commande (grain: order_id + order_item_id)
type FactOrderItem struct {
	OrderID                 string          `json:"order_id"`
	OrderItemID             int             `json:"order_item_id"`
	CustomerSK              int64           `json:"customer_sk"`
	SellerSK                int64           `json:"seller_sk"`
	ProductSK               int64           `json:"product_sk"`
	PurchaseDateID          sql.NullTime    `json:"purchase_date_id,omitempty"`
	ApprovedDateID          sql.NullTime    `json:"approved_date_id,omitempty"`
	ShippingLimitDateID     sql.NullTime    `json:"shipping_limit_date_id,omitempty"`
	DeliveredCustomerDateID sql.NullTime    `json:"delivered_customer_date_id,omitempty"`
	EstimatedDeliveryDateID sql.NullTime    `json:"estimated_delivery_date_id,omitempty"`
	OrderStatus             sql.NullString  `json:"order_status,omitempty"`
	Price                   sql.NullFloat64 `json:"price,omitempty"`
	FreightValue            sql.NullFloat64 `json:"freight_value,omitempty"`
}

// FactPayment - Fait paiement (grain: order_id + payment_sequential)
type FactPayment struct {
	OrderID             string          `json:"order_id"`
	PaymentSequential   int             `json:"payment_sequential"`
	PaymentType         sql.NullString  `json:"payment_type,omitempty"`
	PaymentInstallments sql.NullInt64   `json:"payment_installments,omitempty"`
	PaymentValue        sql.NullFloat64 `json:"payment_value,omitempty"`
	PurchaseDateID      sql.NullTime    `json:"purchase_date_id,omitempty"`
}
