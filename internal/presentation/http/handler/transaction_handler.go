package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/application/service"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizledger-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bizledger-api/pkg/pagination"
)

// TransactionHandler handles ledger transaction HTTP requests
type TransactionHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// List handles listing transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	customerID, err := parseOptionalID("customer_id", filter.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	supplierID, err := parseOptionalID("supplier_id", filter.SupplierID)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, to, err := parseDateRange("start_date", filter.StartDate, "end_date", filter.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ledgerService.List(c.Request.Context(), &service.ListTransactionsInput{
		Pagination:    pagination.NewParams(filter.Page, filter.PerPage, filter.Limit),
		Types:         enum.ParseTransactionTypes(filter.Type),
		CustomerID:    customerID,
		SupplierID:    supplierID,
		PaymentStatus: enum.PaymentStatus(strings.ToUpper(filter.PaymentStatus)),
		Search:        filter.Search,
		From:          from,
		To:            to,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Transactions retrieved successfully", result)
}

// Create handles recording a new transaction
func (h *TransactionHandler) Create(c *gin.Context) {
	input, ok := bindTransaction(c)
	if !ok {
		return
	}

	txn, err := h.ledgerService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transaction created successfully", txn)
}

// Get handles getting a single transaction
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.ledgerService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", txn)
}

// Update handles replacing a transaction
func (h *TransactionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	input, ok := bindTransaction(c)
	if !ok {
		return
	}

	txn, err := h.ledgerService.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction updated successfully", txn)
}

// Delete handles deleting a transaction and reverting its stock movement
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	if err := h.ledgerService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction deleted successfully", nil)
}

func bindTransaction(c *gin.Context) (*service.TransactionInput, bool) {
	var req request.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	date, err := parseDateOr("date", req.Date, time.Time{})
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	input := &service.TransactionInput{
		Type:           req.Type,
		Date:           date,
		Amount:         req.Amount,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		PaymentStatus:  req.PaymentStatus,
		PaymentMethod:  req.PaymentMethod,
		CustomerID:     req.CustomerID,
		SupplierID:     req.SupplierID,
		Category:       req.Category,
		Description:    req.Description,
		Notes:          req.Notes,
		Currency:       req.Currency,
		ExchangeRate:   req.ExchangeRate,
		Items:          make([]service.TransactionLineInput, 0, len(req.Items)),
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, service.TransactionLineInput{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
			TaxRate:   line.TaxRate,
			CGSTRate:  line.CGSTRate,
			SGSTRate:  line.SGSTRate,
			IGSTRate:  line.IGSTRate,
		})
	}
	return input, true
}
