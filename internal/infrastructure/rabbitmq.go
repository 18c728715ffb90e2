package infrastructure

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker topology shared with the Python anomaly worker. Declared
// idempotently at startup so both sides agree on names and routing keys.
const (
	ExchangeName = "finance.exchange"

	AnomalyQueue        = "ai.anomaly.queue"   // outbound: backend -> worker
	AnomalyResultsQueue = "ai.anomaly.results" // inbound:  worker -> backend

	RoutingKeyNewTransactions = "transactions.new"
	RoutingKeyAnomalies       = "anomalies.detected"
)

const publishTimeout = 5 * time.Second

// transactionEvent is the JSON payload published on transactions.new.
type transactionEvent struct {
	CompanyID int64   `json:"companyId"`
	TxnIDs    []int64 `json:"txnIds"`
}

// RabbitClient wraps the AMQP connection. Publish is best-effort: failures
// are logged and swallowed, never surfaced to the write path.
type RabbitClient struct {
	conn *amqp.Connection

	mu    sync.Mutex
	pubCh *amqp.Channel
}

func NewRabbitClient(url string) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	client := &RabbitClient{conn: conn}
	if err := client.declareTopology(); err != nil {
		conn.Close()
		return nil, err
	}

	client.pubCh, err = conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return client, nil
}

func (r *RabbitClient) declareTopology() error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	queues := map[string]string{
		AnomalyQueue:        RoutingKeyNewTransactions,
		AnomalyResultsQueue: RoutingKeyAnomalies,
	}
	for queue, key := range queues {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(queue, key, ExchangeName, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// PublishNewTransactions publishes a transactions.new event. Called after
// the DB commit; a failure here must never fail the HTTP response.
func (r *RabbitClient) PublishNewTransactions(companyID int64, txnIDs []int64) {
	body, err := json.Marshal(transactionEvent{CompanyID: companyID, TxnIDs: txnIDs})
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.pubCh.PublishWithContext(ctx, ExchangeName, RoutingKeyNewTransactions, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		// Non-critical — anomaly detection is advisory, never fail the save
		log.Printf("rabbitmq: publish failed (non-critical): %v", err)
		return
	}
	log.Printf("rabbitmq: published %d txn(s) for company=%d", len(txnIDs), companyID)
}

// ConsumeAnomalyResults delivers each ai.anomaly.results message body to
// handler. Messages are always acked, even when handling fails (drop
// policy — availability over redelivery storms). Blocks until ctx is
// cancelled; the in-flight message is drained before returning.
func (r *RabbitClient) ConsumeAnomalyResults(ctx context.Context, handler func([]byte)) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(AnomalyResultsQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			handler(d.Body)
			if err := d.Ack(false); err != nil {
				log.Printf("rabbitmq: ack failed: %v", err)
			}
		}
	}
}

func (r *RabbitClient) Close() {
	r.conn.Close()
}

// NoopPublisher is selected when no broker is configured. The application
// must start and serve writes without a broker.
type NoopPublisher struct{}

func (NoopPublisher) PublishNewTransactions(companyID int64, txnIDs []int64) {
	log.Printf("rabbitmq not configured — skipping event for company=%d", companyID)
}
