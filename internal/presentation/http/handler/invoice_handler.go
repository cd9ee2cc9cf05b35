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

// InvoiceHandler handles invoice, payment and reminder HTTP requests
type InvoiceHandler struct {
	invoiceService  *service.InvoiceService
	reminderService *service.ReminderService
	reportService   *service.ReportService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(
	invoiceService *service.InvoiceService,
	reminderService *service.ReminderService,
	reportService *service.ReportService,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		reminderService: reminderService,
		reportService:   reportService,
	}
}

// List handles listing invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	customerID, err := parseOptionalID("customer_id", filter.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, to, err := parseDateRange("start_date", filter.StartDate, "end_date", filter.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.invoiceService.List(c.Request.Context(), &service.ListInvoicesInput{
		Pagination: pagination.NewParams(filter.Page, filter.PerPage, filter.Limit),
		Status:     enum.InvoiceStatus(strings.ToUpper(filter.Status)),
		CustomerID: customerID,
		Search:     filter.Search,
		From:       from,
		To:         to,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Create handles issuing a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	input, ok := bindInvoice(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// CreateFromTransaction handles invoicing an existing sale
func (h *InvoiceHandler) CreateFromTransaction(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("transactionId"))
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req request.FromTransactionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	issueDate, err := parseOptionalDate("issue_date", req.IssueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateFromTransaction(c.Request.Context(), transactionID, &service.FromTransactionInput{
		IssueDate: issueDate,
		DueDate:   dueDate,
		Notes:     req.Notes,
		Terms:     req.Terms,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles replacing an open invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	input, ok := bindInvoice(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// Delete handles deleting a draft invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice deleted successfully", nil)
}

// Send handles marking a draft invoice as sent
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Send(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice sent successfully", invoice)
}

// Cancel handles cancelling an open invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled successfully", invoice)
}

// RecordPayment handles recording a payment against an invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	paidAt, err := parseDateOr("payment_date", req.PaymentDate, time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, &service.PaymentInput{
		Amount:        *req.Amount,
		PaymentDate:   paidAt,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", invoice)
}

// MarkOverdue handles flipping every SENT invoice past its due date to OVERDUE
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	updated, err := h.invoiceService.MarkOverdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Overdue invoices updated", gin.H{"updated": updated})
}

// Analytics handles the invoice analytics dashboard
func (h *InvoiceHandler) Analytics(c *gin.Context) {
	var req request.InvoiceAnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	customerID, err := parseOptionalID("customer_id", req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	analytics, err := h.reportService.InvoiceAnalytics(c.Request.Context(), req.Days, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice analytics retrieved successfully", analytics)
}

// SendReminder handles composing a reminder for an unpaid invoice
func (h *InvoiceHandler) SendReminder(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	var req request.ReminderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	reminder, err := h.reminderService.GenerateReminder(
		c.Request.Context(), id, enum.ParseReminderType(req.ReminderType), strings.TrimSpace(req.CustomMessage),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reminder generated successfully", reminder)
}

// ReminderInfo handles reporting the reminder state of an invoice
func (h *InvoiceHandler) ReminderInfo(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	info, err := h.reminderService.GetReminderInfo(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reminder info retrieved successfully", info)
}

func invoiceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func bindInvoice(c *gin.Context) (*service.InvoiceInput, bool) {
	var req request.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, false
	}

	issueDate, err := parseDateOr("issue_date", req.IssueDate, time.Time{})
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	input := &service.InvoiceInput{
		CustomerID: req.CustomerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Status:     req.Status,
		Notes:      req.Notes,
		Terms:      req.Terms,
		Items:      make([]service.InvoiceLineInput, 0, len(req.Items)),
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, service.InvoiceLineInput{
			ItemID:      line.ItemID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Discount:    line.Discount,
			TaxRate:     line.TaxRate,
			CGSTRate:    line.CGSTRate,
			SGSTRate:    line.SGSTRate,
			IGSTRate:    line.IGSTRate,
		})
	}
	return input, true
}
