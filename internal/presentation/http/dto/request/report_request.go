package request

// ReportRequest holds the query parameters shared by every report domain
type ReportRequest struct {
	Type       string `form:"type"`
	Period     string `form:"period"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	AsOf       string `form:"asOf"`
	CustomerID string `form:"customerId"`
	CategoryID string `form:"categoryId"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Interval   string `form:"interval" binding:"omitempty,oneof=daily monthly"`
}

// POSDailyRequest selects the day of the point-of-sale dashboard
type POSDailyRequest struct {
	Date string `form:"date"`
}

// POSPerformanceRequest compares a point-of-sale period with an earlier one
type POSPerformanceRequest struct {
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
	CompareWith string `json:"compareWith"`
}
