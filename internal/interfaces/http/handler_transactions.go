package http

import (
	"net/http"
	"strconv"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/usecases"
	"github.com/gin-gonic/gin"
)

// ListTransactions returns the company's transactions, newest first.
func (h *Handler) ListTransactions(c *gin.Context) {
	views, err := h.transactions.List(c.Request.Context(), pathCompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateTransaction persists a manual ledger entry. Sign convention:
// positive = income, negative = expense.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var input usecases.CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errorBody(c, http.StatusBadRequest, CodeValidationFailed, "Invalid request")
		return
	}

	view, err := h.transactions.Create(c.Request.Context(), pathCompanyID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	transactionID, err := strconv.ParseInt(c.Param("transactionId"), 10, 64)
	if err != nil {
		errorBody(c, http.StatusNotFound, CodeNotFound, "Transaction not found")
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), pathCompanyID(c), transactionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
