package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/shopspring/decimal"
)

const (
	notifierQueueSize = 64
	mailTimeout       = 10 * time.Second
)

type notification struct {
	companyID int64
	anomalies []entities.Anomaly
}

// Notifier emails the company owner when anomalies are detected. It runs on
// its own worker goroutine so mail I/O never delays message acknowledgement
// in the consumer. Every failure is logged and swallowed.
type Notifier struct {
	companies interfaces.CompanyStore
	users     interfaces.UserStore
	mailer    interfaces.Mailer
	appName   string

	jobs chan notification
}

func NewNotifier(companies interfaces.CompanyStore, users interfaces.UserStore, mailer interfaces.Mailer, appName string) *Notifier {
	return &Notifier{
		companies: companies,
		users:     users,
		mailer:    mailer,
		appName:   appName,
		jobs:      make(chan notification, notifierQueueSize),
	}
}

// Start launches the worker. It drains until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-n.jobs:
				n.send(job.companyID, job.anomalies)
			}
		}
	}()
}

// NotifyAsync enqueues a notification without blocking the caller. When the
// queue is full the notification is dropped — mail is best-effort.
func (n *Notifier) NotifyAsync(companyID int64, anomalies []entities.Anomaly) {
	select {
	case n.jobs <- notification{companyID: companyID, anomalies: anomalies}:
	default:
		log.Printf("notifier: queue full, dropping alert for company %d", companyID)
	}
}

func (n *Notifier) send(companyID int64, anomalies []entities.Anomaly) {
	if len(anomalies) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
	defer cancel()

	company, err := n.companies.FindByID(ctx, companyID)
	if err != nil || company == nil {
		log.Printf("notifier: company %d not found, cannot send alert: %v", companyID, err)
		return
	}
	owner, err := n.users.FindByID(ctx, company.OwnerID)
	if err != nil || owner == nil {
		log.Printf("notifier: owner %d not found for company %d: %v", company.OwnerID, companyID, err)
		return
	}

	subject := n.buildSubject(len(anomalies), company.Name)
	body := n.buildBody(anomalies, company)

	if err := n.mailer.Send(owner.Email, subject, body); err != nil {
		// Mail failure must never reach the anomaly pipeline
		log.Printf("notifier: failed to send alert to %s: %v", owner.Email, err)
		return
	}
	log.Printf("notifier: anomaly alert sent to %s for company '%s' (%d anomaly/anomalies)",
		owner.Email, company.Name, len(anomalies))
}

func (n *Notifier) buildSubject(count int, companyName string) string {
	noun := "Anomalies"
	if count == 1 {
		noun = "Anomaly"
	}
	return fmt.Sprintf("[%s] %d %s Detected in %s", n.appName, count, noun, companyName)
}

func (n *Notifier) buildBody(anomalies []entities.Anomaly, company *entities.Company) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString(fmt.Sprintf("<h2>Anomaly Alert — %s</h2>", company.Name))
	sb.WriteString(fmt.Sprintf("<p><strong>%d unusual transaction(s)</strong> detected in your account by the anomaly detection engine.</p>", len(anomalies)))
	sb.WriteString("<ul>")
	for _, a := range anomalies {
		txnRef := "N/A"
		if a.TransactionID != nil {
			txnRef = fmt.Sprintf("#%d", *a.TransactionID)
		}
		sb.WriteString(fmt.Sprintf("<li>%s — transaction %s, detected %s</li>",
			formatAmount(a.Amount, company.Currency), txnRef,
			a.DetectedAt.Format("02 Jan 2006, 03:04 PM")))
	}
	sb.WriteString("</ul>")
	sb.WriteString("<p>Please review these transactions in your dashboard. If they look correct you can dismiss the alerts.</p>")
	sb.WriteString(fmt.Sprintf("<p style='color:#888;font-size:12px'>Automated alert from %s — you are receiving this as the owner of %s.</p>", n.appName, company.Name))
	sb.WriteString("</body></html>")
	return sb.String()
}

func formatAmount(amount decimal.Decimal, currency string) string {
	switch strings.ToUpper(currency) {
	case "INR":
		return "₹" + amount.Abs().StringFixed(2)
	case "USD":
		return "$" + amount.Abs().StringFixed(2)
	default:
		return currency + " " + amount.Abs().StringFixed(2)
	}
}
