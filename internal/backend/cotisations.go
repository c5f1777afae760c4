package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/allforone/afo-portal/internal/models"
)

type cotisationsEnvelope struct {
	Data []models.Cotisation `json:"data"`
}

// ListCotisations calls GET /cotisations/all.
func (c *Client) ListCotisations(ctx context.Context, token string) ([]models.Cotisation, error) {
	var out cotisationsEnvelope
	if err := c.do(ctx, http.MethodGet, "/cotisations/all", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// MemberCotisations calls GET /cotisations/user/:id.
func (c *Client) MemberCotisations(ctx context.Context, token, userID string) ([]models.Cotisation, error) {
	var out cotisationsEnvelope
	if err := c.do(ctx, http.MethodGet, "/cotisations/user/"+url.PathEscape(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// MarkPaid calls PUT /cotisations/:id/payer.
func (c *Client) MarkPaid(ctx context.Context, token, id, methode string) (string, error) {
	body := models.MarkPaidRequest{MethodePaiement: methode}
	return c.doMessage(ctx, http.MethodPut, "/cotisations/"+url.PathEscape(id)+"/payer", token, body)
}

// GenerateSelective calls POST /cotisations/generer-selective.
func (c *Client) GenerateSelective(ctx context.Context, token string, req models.GenerationRequest) (*models.GenerationResponse, error) {
	var out models.GenerationResponse
	if err := c.do(ctx, http.MethodPost, "/cotisations/generer-selective", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
