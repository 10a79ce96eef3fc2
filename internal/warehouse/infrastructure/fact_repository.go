package infrastructure

import (
	"database/sql"

	"olistdw/database"
	"olistdw/internal/shared/infrastructure"
)

// FactRepository repository pour l'assemblage des faits.
// Les lignes sources sont résolues vers les clés de substitution via les clés
// naturelles; une référence qui ne se résout pas est exclue et comptée, jamais
// fabriquée avec une clé sentinelle.
type FactRepository struct {
	infrastructure.BaseRepository
}

// NewFactRepository crée un nouveau repository de faits
func NewFactRepository(db *sql.DB) *FactRepository {
	return &FactRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

// WithTx retourne une copie du repository liée à la transaction
func (r *FactRepository) WithTx(tx *sql.Tx) *FactRepository {
	return &FactRepository{BaseRepository: r.BaseRepository.WithTx(tx)}
}

// UpsertOrderItems assemble fact_order_item depuis le staging.
// Clé composite (order_id, order_item_id); en cas de conflit le statut, les
// mesures et toutes les références de date sont écrasés par les nouvelles
// valeurs. Les jointures dimensions sont INNER: une ligne non résolue est
// ignorée ici et comptée par CountUnresolvedOrderItems.
func (r *FactRepository) UpsertOrderItems() (int64, error) {
	res, err := r.Exec(`
		INSERT INTO olist_dw.fact_order_item
		  (order_id, order_item_id, customer_sk, seller_sk, product_sk,
		   purchase_date_id, approved_date_id, shipping_limit_date_id,
		   delivered_customer_date_id, estimated_delivery_date_id,
		   order_status, price, freight_value)
		SELECT
		  i.order_id,
		  i.order_item_id,
		  dc.customer_sk,
		  ds.seller_sk,
		  dp.product_sk,
		  DATE(o.order_purchase_timestamp),
		  DATE(o.order_approved_at),
		  DATE(i.shipping_limit_date),
		  DATE(o.order_delivered_customer_date),
		  DATE(o.order_estimated_delivery_date),
		  o.order_status,
		  i.price,
		  i.freight_value
		FROM olist_stage.raw_order_items i
		JOIN olist_stage.raw_orders o  ON o.order_id = i.order_id
		JOIN olist_dw.dim_customer dc  ON dc.customer_id = o.customer_id
		JOIN olist_dw.dim_seller ds    ON ds.seller_id = i.seller_id
		JOIN olist_dw.dim_product dp   ON dp.product_id = i.product_id
		WHERE i.order_item_id IS NOT NULL
		ON CONFLICT (order_id, order_item_id)
		DO UPDATE SET
		  order_status = EXCLUDED.order_status,
		  price = EXCLUDED.price,
		  freight_value = EXCLUDED.freight_value,
		  purchase_date_id = EXCLUDED.purchase_date_id,
		  approved_date_id = EXCLUDED.approved_date_id,
		  shipping_limit_date_id = EXCLUDED.shipping_limit_date_id,
		  delivered_customer_date_id = EXCLUDED.delivered_customer_date_id,
		  estimated_delivery_date_id = EXCLUDED.estimated_delivery_date_id
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnresolvedOrderItems compte les lignes du staging exclues de
// fact_order_item faute de commande ou de dimension résolue. Non fatal:
// signal de qualité remonté dans le résumé du chargement.
func (r *FactRepository) CountUnresolvedOrderItems() (int64, error) {
	var count int64
	err := r.QueryRow(`
		SELECT COUNT(*)
		FROM olist_stage.raw_order_items i
		LEFT JOIN olist_stage.raw_orders o ON o.order_id = i.order_id
		LEFT JOIN olist_dw.dim_customer dc ON dc.customer_id = o.customer_id
		LEFT JOIN olist_dw.dim_seller ds   ON ds.seller_id = i.seller_id
		LEFT JOIN olist_dw.dim_product dp  ON dp.product_id = i.product_id
		WHERE i.order_item_id IS NOT NULL
		  AND (o.order_id IS NULL OR dc.customer_sk IS NULL
		       OR ds.seller_sk IS NULL OR dp.product_sk IS NULL)
	`).Scan(&count)
	return count, err
}

// UpsertPayments assemble fact_payment depuis le staging.
// Clé composite (order_id, payment_sequential); le conflit écrase le type,
// le nombre d'échéances, le montant et la date d'achat.
func (r *FactRepository) UpsertPayments() (int64, error) {
	res, err := r.Exec(`
		INSERT INTO olist_dw.fact_payment
		  (order_id, payment_sequential, payment_type, payment_installments, payment_value, purchase_date_id)
		SELECT
		  p.order_id, p.payment_sequential, p.payment_type, p.payment_installments, p.payment_value,
		  DATE(o.order_purchase_timestamp)
		FROM olist_stage.raw_payments p
		JOIN olist_stage.raw_orders o ON o.order_id = p.order_id
		WHERE p.payment_sequential IS NOT NULL
		ON CONFLICT (order_id, payment_sequential) DO UPDATE
		  SET payment_type = EXCLUDED.payment_type,
		      payment_installments = EXCLUDED.payment_installments,
		      payment_value = EXCLUDED.payment_value,
		      purchase_date_id = EXCLUDED.purchase_date_id
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindOrderItem retourne une ligne de fact_order_item par sa clé composite
func (r *FactRepository) FindOrderItem(orderID string, orderItemID int) (*database.FactOrderItem, error) {
	var f database.FactOrderItem
	err := r.QueryRow(`
		SELECT order_id, order_item_id, customer_sk, seller_sk, product_sk,
		       purchase_date_id, approved_date_id, shipping_limit_date_id,
		       delivered_customer_date_id, estimated_delivery_date_id,
		       order_status, price, freight_value
		FROM olist_dw.fact_order_item
		WHERE order_id = $1 AND order_item_id = $2`, orderID, orderItemID).
		Scan(&f.OrderID, &f.OrderItemID, &f.CustomerSK, &f.SellerSK, &f.ProductSK,
			&f.PurchaseDateID, &f.ApprovedDateID, &f.ShippingLimitDateID,
			&f.DeliveredCustomerDateID, &f.EstimatedDeliveryDateID,
			&f.OrderStatus, &f.Price, &f.FreightValue)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CountUnresolvedPayments compte les paiements du staging sans commande associée
func (r *FactRepository) CountUnresolvedPayments() (int64, error) {
	var count int64
	err := r.QueryRow(`
		SELECT COUNT(*)
		FROM olist_stage.raw_payments p
		LEFT JOIN olist_stage.raw_orders o ON o.order_id = p.order_id
		WHERE p.payment_sequential IS NOT NULL AND o.order_id IS NULL
	`).Scan(&count)
	return count, err
}
