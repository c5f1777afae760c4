package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/allforone/afo-portal/internal/models"
)

type adhesionsEnvelope struct {
	Data []models.AdhesionRequest `json:"data"`
}

// ListAdhesionRequests calls GET /adhesion-requests/all.
func (c *Client) ListAdhesionRequests(ctx context.Context, token string) ([]models.AdhesionRequest, error) {
	var out adhesionsEnvelope
	if err := c.do(ctx, http.MethodGet, "/adhesion-requests/all", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ApproveAdhesion calls POST /adhesion-requests/:id/approve.
func (c *Client) ApproveAdhesion(ctx context.Context, token, id string) (string, error) {
	return c.doMessage(ctx, http.MethodPost, "/adhesion-requests/"+url.PathEscape(id)+"/approve", token, struct{}{})
}

// RejectAdhesion calls POST /adhesion-requests/:id/reject.
func (c *Client) RejectAdhesion(ctx context.Context, token, id, raison string) (string, error) {
	body := models.RejectRequest{RaisonRefus: raison}
	return c.doMessage(ctx, http.MethodPost, "/adhesion-requests/"+url.PathEscape(id)+"/reject", token, body)
}
