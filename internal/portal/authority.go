package portal

import (
	"context"
	"net/url"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

func (c *Client) AuthorityStats(ctx context.Context) (*models.AuthorityStats, error) {
	var s models.AuthorityStats
	if err := c.getJSON(ctx, "authority_stats", "/authority/stats/", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) AllInstitutions(ctx context.Context) ([]models.InstitutionSummary, error) {
	var list []models.InstitutionSummary
	err := c.getJSON(ctx, "authority_all", "/authority/all/", nil, &list)
	return list, err
}

// PendingApprovals — пустой status означает все заявки.
func (c *Client) PendingApprovals(ctx context.Context, status string) ([]models.ApprovalRequest, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var list []models.ApprovalRequest
	err := c.getJSON(ctx, "authority_pending", "/authority/pending/", q, &list)
	return list, err
}

// Review — решения по всем разделам уходят одним запросом.
func (c *Client) Review(ctx context.Context, sub models.ReviewSubmission) error {
	return c.postJSON(ctx, "authority_review", "/authority/review/", sub, nil)
}
