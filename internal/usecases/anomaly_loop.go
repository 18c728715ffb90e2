package usecases

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/shopspring/decimal"
)

const anomalyStoreTimeout = 5 * time.Second

// anomalyResultMessage is the JSON shape published by the detection worker
// on ai.anomaly.results.
type anomalyResultMessage struct {
	CompanyID int64 `json:"companyId"`
	Anomalies []struct {
		ID     *int64          `json:"id"`
		Amount decimal.Decimal `json:"amount"`
	} `json:"anomalies"`
}

// AnomalyLoop persists detection results and fans out to the notifier.
// The caller (the broker consumer) acks every message whatever happens
// here — failures are logged and the message is dropped, trading
// redelivery for availability.
type AnomalyLoop struct {
	anomalies interfaces.AnomalyStore
	notifier  *Notifier
	clock     interfaces.Clock
}

func NewAnomalyLoop(anomalies interfaces.AnomalyStore, notifier *Notifier, clock interfaces.Clock) *AnomalyLoop {
	return &AnomalyLoop{anomalies: anomalies, notifier: notifier, clock: clock}
}

// HandleMessage processes one ai.anomaly.results message: insert a row per
// entry, then notify the owner once with the whole batch. Messages are not
// deduplicated, so a duplicate delivery produces duplicate rows.
func (l *AnomalyLoop) HandleMessage(body []byte) {
	var msg anomalyResultMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Printf("anomaly loop: unparseable message dropped: %v", err)
		return
	}
	if len(msg.Anomalies) == 0 {
		log.Printf("anomaly loop: no anomalies for company %d", msg.CompanyID)
		return
	}

	log.Printf("anomaly loop: received %d anomaly/anomalies for company %d", len(msg.Anomalies), msg.CompanyID)

	ctx, cancel := context.WithTimeout(context.Background(), anomalyStoreTimeout)
	defer cancel()

	saved := make([]entities.Anomaly, 0, len(msg.Anomalies))
	for _, a := range msg.Anomalies {
		anomaly := entities.Anomaly{
			CompanyID:     msg.CompanyID,
			TransactionID: a.ID,
			Amount:        a.Amount,
			DetectedAt:    l.clock.Now(),
		}
		if err := l.anomalies.Insert(ctx, &anomaly); err != nil {
			log.Printf("anomaly loop: insert failed for company %d: %v", msg.CompanyID, err)
			continue
		}
		saved = append(saved, anomaly)
	}

	// One batch, at most one notification. The notifier runs on its own
	// worker so the consumer can ack immediately.
	if len(saved) > 0 {
		l.notifier.NotifyAsync(msg.CompanyID, saved)
	}
}
