package models

import "time"

// Product represents a product in the catalog. Stock is the single source of
// truth for availability; it is only decremented inside a committed checkout.
type Product struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     int64     `db:"price" json:"price"`
	Stock     int       `db:"stock" json:"stock"`
	ImageURL  string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CartLine is one requested product/quantity pair in a checkout. Repeated
// product ids within a single cart are treated as cumulative demand.
type CartLine struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Transaction is one committed sale. It is immutable once created; change may
// be negative when underpayment is accepted.
type Transaction struct {
	ID             string            `db:"id" json:"id"`
	UserID         string            `db:"user_id" json:"user_id"`
	TotalPrice     int64             `db:"total_price" json:"total_price"`
	PaidAmount     int64             `db:"paid_amount" json:"paid_amount"`
	Change         int64             `db:"change" json:"change"`
	IdempotencyKey string            `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	Items          []TransactionItem `db:"-" json:"items"`
}

// TransactionItem is one line of a committed sale. Subtotal captures the unit
// price at commit time: subtotal = price * quantity.
type TransactionItem struct {
	ID            string `db:"id" json:"id"`
	TransactionID string `db:"transaction_id" json:"transaction_id"`
	ProductID     string `db:"product_id" json:"product_id"`
	Quantity      int    `db:"quantity" json:"quantity"`
	Subtotal      int64  `db:"subtotal" json:"subtotal"`
}

// ReceiptLine is one transaction item joined with the product name and the
// unit price reconstructed from the captured subtotal.
type ReceiptLine struct {
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
	Subtotal    int64  `db:"subtotal" json:"subtotal"`
}

// Receipt is a transaction prepared for display.
type Receipt struct {
	Transaction
	Lines []ReceiptLine `json:"lines"`
}

// SalesSummary aggregates committed transactions over a reporting period.
type SalesSummary struct {
	TotalIncome  int64         `json:"total_income"`
	TotalTx      int           `json:"total_tx"`
	Transactions []Transaction `json:"transactions"`
}

// BestSeller is the product with the highest sold quantity in a period.
type BestSeller struct {
	ProductID string `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// DashboardStats is the aggregate view served to the POS dashboard.
type DashboardStats struct {
	DailyIncome    int64       `json:"daily_income"`
	DailyTxCount   int         `json:"daily_tx_count"`
	MonthlyIncome  int64       `json:"monthly_income"`
	MonthlyTxCount int         `json:"monthly_tx_count"`
	BestSeller     *BestSeller `json:"best_seller"`
}
