// Package meta implements a Meta Graph API client for ad accounts,
// campaigns, ad sets, ads and insights. List endpoints follow cursor
// pagination until the paging.next link disappears.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campaign-reconciliation-service/internal/clients"
	"campaign-reconciliation-service/internal/models"
	apperrors "campaign-reconciliation-service/pkg/errors"
	"campaign-reconciliation-service/pkg/logger"
)

const (
	apiVersion     = "v21.0"
	defaultBaseURL = "https://graph.facebook.com/" + apiVersion

	listLimit    = "100"
	insightLimit = "500"
)

const insightFields = "campaign_id,campaign_name,adset_id,adset_name,ad_id,ad_name,impressions,clicks,spend,reach,cpc,cpm,ctr,actions"

// Client talks to the Meta Graph API.
type Client struct {
	baseURL string
	httpc   clients.HTTPClient
	log     logger.Logger
}

// NewClient creates a Graph API client. A nil http client gets a default
// with a 30 second timeout.
func NewClient(httpc clients.HTTPClient) *Client {
	return NewClientWithBaseURL(defaultBaseURL, httpc)
}

// NewClientWithBaseURL creates a client against a custom Graph endpoint.
func NewClientWithBaseURL(baseURL string, httpc clients.HTTPClient) *Client {
	if httpc == nil {
		httpc = clients.NewHTTPClient(30 * time.Second)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		log:     logger.GetGlobalLogger().WithComponent("meta-client"),
	}
}

// CleanToken strips all whitespace from an access token. Tokens pasted
// from dashboards often carry stray newlines.
func CleanToken(token string) string {
	return strings.Join(strings.Fields(token), "")
}

// page is the Graph API list envelope.
type page[T any] struct {
	Data   []T `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// apiError is the Graph API error envelope.
type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// wrapError converts a raw fetch failure into a categorized error,
// surfacing the upstream code and message when the envelope is present.
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
		return apperrors.MetaAPIError(apperrors.CodeBadResponse, endpoint, 0, 0, "", err)
	}

	var envelope apiError
	if jsonErr := json.Unmarshal(statusErr.Body, &envelope); jsonErr != nil || envelope.Error.Message == "" {
		return apperrors.MetaAPIError(apperrors.CodeBadResponse, endpoint, statusErr.StatusCode, 0, "", err)
	}

	code := apperrors.CodeUpstreamRejected
	switch {
	case statusErr.StatusCode == http.StatusUnauthorized || envelope.Error.Code == 190:
		code = apperrors.CodeInvalidToken
	case statusErr.StatusCode == http.StatusTooManyRequests:
		code = apperrors.CodeRateLimited
	}

	return apperrors.MetaAPIError(code, endpoint, statusErr.StatusCode,
		envelope.Error.Code, envelope.Error.Message, err)
}

// fetchPaginated collects every page of a Graph list endpoint. The
// paging.next link already embeds the query and token and is followed
// verbatim.
func fetchPaginated[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var all []T
	next := endpoint + "?" + params.Encode()

	tracker := logger.NewPageTracker(endpoint, c.log)
	for next != "" {
		var current page[T]
		if err := clients.GetJSON(ctx, c.httpc, next, nil, &current); err != nil {
			wrapped := wrapError(endpoint, err)
			tracker.CompleteWithError(wrapped)
			return nil, wrapped
		}

		all = append(all, current.Data...)
		tracker.Page(len(current.Data))
		next = current.Paging.Next
	}

	tracker.Complete()
	return all, nil
}

func (c *Client) listParams(token, fields string) url.Values {
	return url.Values{
		"fields":       {fields},
		"access_token": {CleanToken(token)},
		"limit":        {listLimit},
	}
}

// GetAdAccounts lists the ad accounts visible to the token.
func (c *Client) GetAdAccounts(ctx context.Context, token string) ([]models.AdAccount, error) {
	endpoint := c.baseURL + "/me/adaccounts"
	fields := "id,name,account_status,currency,amount_spent"
	return fetchPaginated[models.AdAccount](ctx, c, endpoint, c.listParams(token, fields))
}

// GetCampaigns lists the campaigns of one ad account.
func (c *Client) GetCampaigns(ctx context.Context, token, adAccountID string) ([]models.Campaign, error) {
	endpoint := fmt.Sprintf("%s/%s/campaigns", c.baseURL, adAccountID)
	fields := "id,name,status,objective,created_time,start_time,stop_time,daily_budget,lifetime_budget"
	return fetchPaginated[models.Campaign](ctx, c, endpoint, c.listParams(token, fields))
}

// GetAdSets lists the ad sets of one ad account.
func (c *Client) GetAdSets(ctx context.Context, token, adAccountID string) ([]models.AdSet, error) {
	endpoint := fmt.Sprintf("%s/%s/adsets", c.baseURL, adAccountID)
	fields := "id,name,status,campaign_id,daily_budget,lifetime_budget"
	return fetchPaginated[models.AdSet](ctx, c, endpoint, c.listParams(token, fields))
}

// GetAds lists the ads of one ad account.
func (c *Client) GetAds(ctx context.Context, token, adAccountID string) ([]models.Ad, error) {
	endpoint := fmt.Sprintf("%s/%s/ads", c.baseURL, adAccountID)
	fields := "id,name,status,adset_id,campaign_id,created_time"
	return fetchPaginated[models.Ad](ctx, c, endpoint, c.listParams(token, fields))
}

// GetInsights fetches insight rows for one ad account using a relative
// date preset such as "last_30d".
func (c *Client) GetInsights(ctx context.Context, token, adAccountID, datePreset, level string) ([]models.Insight, error) {
	params := url.Values{
		"access_token": {CleanToken(token)},
		"fields":       {insightFields},
		"date_preset":  {datePreset},
		"level":        {level},
		"limit":        {insightLimit},
	}
	return c.fetchInsights(ctx, adAccountID, params)
}

// GetInsightsByDateRange fetches insight rows for an explicit date range.
// Dates use the YYYY-MM-DD format.
func (c *Client) GetInsightsByDateRange(ctx context.Context, token, adAccountID, startDate, endDate, level string) ([]models.Insight, error) {
	timeRange, err := json.Marshal(map[string]string{"since": startDate, "until": endDate})
	if err != nil {
		return nil, apperrors.InternalError("encode insight time range", err)
	}

	params := url.Values{
		"access_token": {CleanToken(token)},
		"fields":       {insightFields},
		"time_range":   {string(timeRange)},
		"level":        {level},
		"limit":        {insightLimit},
	}
	return c.fetchInsights(ctx, adAccountID, params)
}

func (c *Client) fetchInsights(ctx context.Context, adAccountID string, params url.Values) ([]models.Insight, error) {
	endpoint := fmt.Sprintf("%s/%s/insights", c.baseURL, adAccountID)

	var current page[models.Insight]
	if err := clients.GetJSON(ctx, c.httpc, endpoint+"?"+params.Encode(), nil, &current); err != nil {
		return nil, wrapError(endpoint, err)
	}
	return current.Data, nil
}

// AllData bundles everything GetAll fetches across ad accounts.
type AllData struct {
	AdAccounts []models.AdAccount `json:"adAccounts"`
	Campaigns  []models.Campaign  `json:"campaigns"`
	AdSets     []models.AdSet     `json:"adSets"`
	Ads        []models.Ad        `json:"ads"`
	Insights   []models.Insight   `json:"insights"`
}

// GetAll fetches campaigns, ad sets, ads and ad-level insights across
// every visible ad account. A failing account is logged and skipped so
// one revoked account does not sink the whole fetch. An empty date range
// falls back to the last_30d preset.
func (c *Client) GetAll(ctx context.Context, token, startDate, endDate string) (*AllData, error) {
	accounts, err := c.GetAdAccounts(ctx, token)
	if err != nil {
		return nil, err
	}

	all := &AllData{
		AdAccounts: accounts,
		Campaigns:  []models.Campaign{},
		AdSets:     []models.AdSet{},
		Ads:        []models.Ad{},
		Insights:   []models.Insight{},
	}

	for _, account := range accounts {
		campaigns, err := c.GetCampaigns(ctx, token, account.ID)
		if err != nil {
			c.log.WithError(err).WithField("account_id", account.ID).Warn("Skipping ad account")
			continue
		}

		adSets, err := c.GetAdSets(ctx, token, account.ID)
		if err != nil {
			c.log.WithError(err).WithField("account_id", account.ID).Warn("Skipping ad account")
			continue
		}

		ads, err := c.GetAds(ctx, token, account.ID)
		if err != nil {
			c.log.WithError(err).WithField("account_id", account.ID).Warn("Skipping ad account")
			continue
		}

		var insights []models.Insight
		if startDate != "" && endDate != "" {
			insights, err = c.GetInsightsByDateRange(ctx, token, account.ID, startDate, endDate, "ad")
		} else {
			insights, err = c.GetInsights(ctx, token, account.ID, "last_30d", "ad")
		}
		if err != nil {
			c.log.WithError(err).WithField("account_id", account.ID).Warn("Skipping ad account")
			continue
		}

		all.Campaigns = append(all.Campaigns, campaigns...)
		all.AdSets = append(all.AdSets, adSets...)
		all.Ads = append(all.Ads, ads...)
		all.Insights = append(all.Insights, insights...)
	}

	return all, nil
}
