package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/allforone/afo-portal/internal/models"
)

// DefaultLogLimit is the page size of the audit log.
const DefaultLogLimit = 20

// LogQuery carries the server-side filters of GET /logs/all.
type LogQuery struct {
	Page       int
	Limit      int
	Action     string
	TargetType string
	StartDate  string
	EndDate    string
}

// Values encodes the query, leaving out empty filters.
func (q LogQuery) Values() url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLogLimit
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if q.Action != "" {
		v.Set("action", q.Action)
	}
	if q.TargetType != "" {
		v.Set("targetType", q.TargetType)
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	return v
}

// LogPage is one page of audit log entries.
type LogPage struct {
	Data       []models.AuditLogEntry `json:"data"`
	Pagination models.Pagination      `json:"pagination"`
}

// ListLogs calls GET /logs/all.
func (c *Client) ListLogs(ctx context.Context, token string, q LogQuery) (*LogPage, error) {
	var out LogPage
	if err := c.do(ctx, http.MethodGet, "/logs/all?"+q.Values().Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogStats calls GET /logs/stats.
func (c *Client) LogStats(ctx context.Context, token, startDate, endDate string) (*models.AuditLogStats, error) {
	v := url.Values{}
	if startDate != "" {
		v.Set("startDate", startDate)
	}
	if endDate != "" {
		v.Set("endDate", endDate)
	}
	path := "/logs/stats"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out struct {
		Data models.AuditLogStats `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
