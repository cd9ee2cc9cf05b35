package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bizledger-api/internal/application/service"
	"github.com/sangkips/bizledger-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizledger-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bizledger-api/pkg/period"
)

// ReportHandler handles reporting and point-of-sale analytics requests
type ReportHandler struct {
	reportService *service.ReportService
	now           func() time.Time
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

// Generate handles GET /reports/:domain
func (h *ReportHandler) Generate(c *gin.Context) {
	var req request.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	q, err := h.reportQuery(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reportService.Generate(c.Request.Context(), c.Param("domain"), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report generated successfully", report)
}

func (h *ReportHandler) reportQuery(req *request.ReportRequest) (service.ReportQuery, error) {
	from, to, err := parseDateRange("startDate", req.StartDate, "endDate", req.EndDate)
	if err != nil {
		return service.ReportQuery{}, err
	}
	asOf, err := parseOptionalDate("asOf", req.AsOf)
	if err != nil {
		return service.ReportQuery{}, err
	}
	customerID, err := parseOptionalID("customerId", req.CustomerID)
	if err != nil {
		return service.ReportQuery{}, err
	}
	categoryID, err := parseOptionalID("categoryId", req.CategoryID)
	if err != nil {
		return service.ReportQuery{}, err
	}

	q := service.ReportQuery{
		Type:       req.Type,
		Range:      period.Resolve(req.Period, from, to, h.now()),
		CustomerID: customerID,
		CategoryID: categoryID,
		Limit:      req.Limit,
		Interval:   req.Interval,
	}
	if asOf != nil {
		q.AsOf = period.EndOfDay(*asOf)
	}
	return q, nil
}

// POSDaily handles GET /pos/analytics for one business day, today by default
func (h *ReportHandler) POSDaily(c *gin.Context) {
	var req request.POSDailyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	date, err := parseDateOr("date", req.Date, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	daily, err := h.reportService.POSDaily(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "POS analytics retrieved successfully", daily)
}

// POSPerformance handles POST /pos/analytics comparing a range with an earlier one
func (h *ReportHandler) POSPerformance(c *gin.Context) {
	var req request.POSPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "startDate and endDate are required")
		return
	}
	from, to, err := parseDateRange("startDate", req.StartDate, "endDate", req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	performance, err := h.reportService.POSPerformance(
		c.Request.Context(), period.Resolve("", from, to, h.now()), req.CompareWith,
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "POS performance retrieved successfully", performance)
}
