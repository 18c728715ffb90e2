package usecases

import (
	"context"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/shopspring/decimal"
)

const maxDescriptionLength = 512

// TransactionView is the wire representation of a ledger row. Dates are
// always "YYYY-MM-DD" strings; amounts keep their fixed-point precision.
type TransactionView struct {
	ID           int64           `json:"id"`
	Date         string          `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	CategoryName *string         `json:"categoryName"`
}

// Amount carries no binding tag: a zero amount is unusual but legal and
// must not be rejected at the DTO layer.
type CreateTransactionInput struct {
	Date        string          `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required"`
}

// TransactionUsecase owns the write path: persist, evict the reporting
// cache, publish the event. Publish failures never fail the request or
// roll back the write.
type TransactionUsecase struct {
	txns      interfaces.TransactionStore
	publisher interfaces.EventPublisher
	reports   *ReportingUsecase
}

func NewTransactionUsecase(txns interfaces.TransactionStore, publisher interfaces.EventPublisher, reports *ReportingUsecase) *TransactionUsecase {
	return &TransactionUsecase{txns: txns, publisher: publisher, reports: reports}
}

func (uc *TransactionUsecase) List(ctx context.Context, companyID int64) ([]TransactionView, error) {
	txns, err := uc.txns.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	views := make([]TransactionView, 0, len(txns))
	for i := range txns {
		views = append(views, toView(&txns[i]))
	}
	return views, nil
}

func (uc *TransactionUsecase) Create(ctx context.Context, companyID int64, input CreateTransactionInput) (*TransactionView, error) {
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, entities.ErrValidation("date must be YYYY-MM-DD")
	}
	if len(input.Description) > maxDescriptionLength {
		return nil, entities.ErrValidation("description too long")
	}

	txn := &entities.Transaction{
		CompanyID:   companyID,
		Date:        date,
		Amount:      input.Amount,
		Description: input.Description,
		Source:      entities.SourceManual,
	}
	if err := uc.txns.Create(ctx, txn); err != nil {
		return nil, err
	}

	// Eviction happens after the commit but before the HTTP response;
	// the publish after that is best-effort.
	uc.reports.EvictCompany(companyID)
	uc.publisher.PublishNewTransactions(companyID, []int64{txn.ID})

	view := toView(txn)
	return &view, nil
}

// Delete removes the owner's transaction. The pipeline has already checked
// tenant ownership; the company match here is defense in depth.
func (uc *TransactionUsecase) Delete(ctx context.Context, companyID, transactionID int64) error {
	txn, err := uc.txns.FindByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn == nil {
		return entities.ErrNotFound
	}
	if txn.CompanyID != companyID {
		return entities.ErrForbidden
	}
	if err := uc.txns.Delete(ctx, transactionID); err != nil {
		return err
	}
	uc.reports.EvictCompany(companyID)
	return nil
}

func toView(t *entities.Transaction) TransactionView {
	return TransactionView{
		ID:           t.ID,
		Date:         t.Date.Format(dateLayout),
		Amount:       t.Amount,
		Description:  t.Description,
		CategoryName: t.CategoryName,
	}
}
