// Package trendyol implements the Trendyol brand-offer-report client.
// The metrics endpoint is paginated with page/size parameters and an
// epoch-millisecond date window.
package trendyol

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campaign-reconciliation-service/internal/clients"
	"campaign-reconciliation-service/internal/models"
	apperrors "campaign-reconciliation-service/pkg/errors"
	"campaign-reconciliation-service/pkg/logger"
)

const (
	defaultBaseURL = "https://apigw.trendyol.com/discovery-ia-webgw-service/v1/brand-offer-report/metrics"

	pageSize = 20
)

// Client talks to the Trendyol influencer-center report API.
type Client struct {
	baseURL string
	httpc   clients.HTTPClient
	backoff clients.Backoff
	log     logger.Logger
}

// NewClient creates a report client. A nil http client gets a default
// with a 30 second timeout.
func NewClient(httpc clients.HTTPClient) *Client {
	return NewClientWithBaseURL(defaultBaseURL, httpc)
}

// NewClientWithBaseURL creates a client against a custom endpoint.
func NewClientWithBaseURL(baseURL string, httpc clients.HTTPClient) *Client {
	if httpc == nil {
		httpc = clients.NewHTTPClient(30 * time.Second)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		backoff: clients.Backoff{Base: 500 * time.Millisecond, MaxRetries: 3},
		log:     logger.GetGlobalLogger().WithComponent("trendyol-client"),
	}
}

// apiResponse is the report list envelope.
type apiResponse struct {
	BrandOfferReports []models.CommerceReport `json:"brandOfferReports"`
}

// headers builds the required agent headers. The endpoint rejects
// requests that do not present the influencer-center client identity.
func headers(token string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "*/*")
	h.Set("Authorization", "bearer "+token)
	h.Set("Culture", "tr-TR")
	h.Set("Origin", "https://influencercenter.trendyol.com")
	h.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 18_6_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148")
	h.Set("X-Agent-Origin", "client")
	h.Set("X-Agent-Name", "web-report")
	h.Set("X-Platform", "IOS")
	return h
}

// GetReports fetches every report page within the date window. The
// window bounds are epoch milliseconds. Fetching stops when a page comes
// back empty or short.
func (c *Client) GetReports(ctx context.Context, token string, startDate, endDate int64) ([]models.CommerceReport, error) {
	all := []models.CommerceReport{}
	page := 0

	tracker := logger.NewPageTracker("trendyol reports", c.log)
	for {
		reports, err := c.fetchPage(ctx, token, page, startDate, endDate)
		if err != nil {
			tracker.CompleteWithError(err)
			return nil, err
		}

		if len(reports) == 0 {
			break
		}

		all = append(all, reports...)
		tracker.Page(len(reports))
		page++

		if len(reports) < pageSize {
			break
		}
	}

	tracker.Complete()
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, token string, page int, startDate, endDate int64) ([]models.CommerceReport, error) {
	params := url.Values{
		"page":           {strconv.Itoa(page)},
		"size":           {strconv.Itoa(pageSize)},
		"startDate":      {strconv.FormatInt(startDate, 10)},
		"endDate":        {strconv.FormatInt(endDate, 10)},
		"profitedOffers": {"false"},
		"sortingType":    {"DATE_DESC"},
	}
	pageURL := c.baseURL + "?" + params.Encode()

	var response apiResponse
	err := c.backoff.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			c.log.WithFields(logger.Fields{"page": page, "attempt": attempt}).Debug("Retrying report page")
		}
		return clients.GetJSON(ctx, c.httpc, pageURL, headers(token), &response)
	})
	if err != nil {
		return nil, wrapError(fmt.Sprintf("page %d", page), err)
	}

	return response.BrandOfferReports, nil
}

func wrapError(endpoint string, err error) *apperrors.AppError {
	statusErr, ok := err.(*clients.StatusError)
	if !ok {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			code := apperrors.CodeConnectionFailed
			if urlErr.Timeout() {
				code = apperrors.CodeTimeout
			}
			return apperrors.NetworkError(code, endpoint, err)
		}
		return apperrors.TrendyolAPIError(apperrors.CodeBadResponse, endpoint, 0, err)
	}

	code := apperrors.CodeUpstreamRejected
	switch statusErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = apperrors.CodeInvalidToken
	case http.StatusTooManyRequests:
		code = apperrors.CodeRateLimited
	}

	return apperrors.TrendyolAPIError(code, endpoint, statusErr.StatusCode, err)
}
