package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Anomaly records are appended by the anomaly result consumer and deleted
// only by the owning tenant ("dismiss"). TransactionID may be nil when the
// source transaction has been deleted.
type Anomaly struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"companyId"`
	TransactionID *int64          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	DetectedAt    time.Time       `json:"detectedAt"`
}
