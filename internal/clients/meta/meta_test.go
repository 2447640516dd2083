package meta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	apperrors "campaign-reconciliation-service/pkg/errors"
)

func TestCleanToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc123", "abc123"},
		{"  abc123  ", "abc123"},
		{"abc\n123", "abc123"},
		{"a b\tc\r\nd", "abcd"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanToken(tt.input); got != tt.expected {
			t.Errorf("CleanToken(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestClient_GetAdAccounts_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	requests := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch requests {
		case 1:
			if got := r.URL.Query().Get("access_token"); got != "token123" {
				t.Errorf("Expected cleaned token in query, got %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "100" {
				t.Errorf("Expected limit 100, got %q", got)
			}
			fmt.Fprintf(w, `{
				"data": [{"id": "act_1", "name": "Account One"}],
				"paging": {"next": "%s/me/adaccounts?after=cursor1"}
			}`, server.URL)
		case 2:
			if got := r.URL.Query().Get("after"); got != "cursor1" {
				t.Errorf("Expected the next link to be followed verbatim, got query %q", r.URL.RawQuery)
			}
			fmt.Fprint(w, `{"data": [{"id": "act_2", "name": "Account Two"}], "paging": {}}`)
		default:
			t.Error("Unexpected extra request")
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	accounts, err := client.GetAdAccounts(context.Background(), "token\n123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts across pages, got %d", len(accounts))
	}
	if accounts[0].ID != "act_1" || accounts[1].ID != "act_2" {
		t.Errorf("Unexpected accounts: %+v", accounts)
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
}

func TestClient_GetCampaigns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/act_1/campaigns" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"data": [
			{"id": "c1", "name": "Karaca Home Promo", "status": "ACTIVE"},
			{"id": "c2", "name": "English Home Winter", "status": "PAUSED"}
		], "paging": {}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	campaigns, err := client.GetCampaigns(context.Background(), "tok", "act_1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(campaigns) != 2 || campaigns[0].Name != "Karaca Home Promo" {
		t.Errorf("Unexpected campaigns: %+v", campaigns)
	}
}

func TestClient_GetInsightsByDateRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("time_range"); got != `{"since":"2024-12-01","until":"2024-12-31"}` {
			t.Errorf("Unexpected time_range %q", got)
		}
		if got := q.Get("level"); got != "ad" {
			t.Errorf("Expected level ad, got %q", got)
		}
		if got := q.Get("limit"); got != "500" {
			t.Errorf("Expected insight limit 500, got %q", got)
		}
		fmt.Fprint(w, `{"data": [{"campaign_id": "c1", "spend": "1000", "impressions": "50", "clicks": "5", "reach": "40"}]}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	insights, err := client.GetInsightsByDateRange(context.Background(), "tok", "act_1", "2024-12-01", "2024-12-31", "ad")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(insights) != 1 || insights[0].Spend != "1000" {
		t.Errorf("Unexpected insights: %+v", insights)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedCode apperrors.ErrorCode
	}{
		{
			name:         "oauth code 190 maps to invalid token",
			status:       http.StatusBadRequest,
			body:         `{"error": {"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190, "fbtrace_id": "tr1"}}`,
			expectedCode: apperrors.CodeInvalidToken,
		},
		{
			name:         "status 401 maps to invalid token",
			status:       http.StatusUnauthorized,
			body:         `{"error": {"message": "Unauthorized", "type": "OAuthException", "code": 102}}`,
			expectedCode: apperrors.CodeInvalidToken,
		},
		{
			name:         "status 429 maps to rate limited",
			status:       http.StatusTooManyRequests,
			body:         `{"error": {"message": "User request limit reached", "type": "ApiError", "code": 17}}`,
			expectedCode: apperrors.CodeRateLimited,
		},
		{
			name:         "other envelope maps to upstream rejected",
			status:       http.StatusBadRequest,
			body:         `{"error": {"message": "Unsupported request", "type": "GraphMethodException", "code": 100}}`,
			expectedCode: apperrors.CodeUpstreamRejected,
		},
		{
			name:         "unreadable body maps to bad response",
			status:       http.StatusBadRequest,
			body:         `not json at all`,
			expectedCode: apperrors.CodeBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewClientWithBaseURL(server.URL, server.Client())
			_, err := client.GetAdAccounts(context.Background(), "tok")
			if err == nil {
				t.Fatal("Expected an error")
			}

			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				t.Fatalf("Expected an AppError, got %T", err)
			}
			if appErr.Category != apperrors.CategoryMetaAPI {
				t.Errorf("Expected meta_api category, got %s", appErr.Category)
			}
			if appErr.Code != tt.expectedCode {
				t.Errorf("Expected code %s, got %s", tt.expectedCode, appErr.Code)
			}
		})
	}
}

func TestClient_GetAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/adaccounts":
			fmt.Fprint(w, `{"data": [{"id": "act_good"}, {"id": "act_bad"}], "paging": {}}`)
		case "/act_good/campaigns":
			fmt.Fprint(w, `{"data": [{"id": "c1", "name": "Karaca Home Promo"}], "paging": {}}`)
		case "/act_good/adsets":
			fmt.Fprint(w, `{"data": [{"id": "as1", "campaign_id": "c1"}], "paging": {}}`)
		case "/act_good/ads":
			fmt.Fprint(w, `{"data": [{"id": "a1", "campaign_id": "c1"}], "paging": {}}`)
		case "/act_good/insights":
			if got := r.URL.Query().Get("level"); got != "ad" {
				t.Errorf("Expected ad-level insights, got level %q", got)
			}
			fmt.Fprint(w, `{"data": [{"campaign_id": "c1", "spend": "2000", "impressions": "100", "clicks": "10", "reach": "90"}]}`)
		case "/act_bad/campaigns":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": {"message": "Account disabled", "code": 368}}`)
		default:
			t.Errorf("Unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	all, err := client.GetAll(context.Background(), "tok", "2024-12-01", "2024-12-31")
	if err != nil {
		t.Fatalf("Expected a failing account to be skipped, got %v", err)
	}

	if len(all.AdAccounts) != 2 {
		t.Errorf("Expected both accounts listed, got %d", len(all.AdAccounts))
	}
	if len(all.Campaigns) != 1 || all.Campaigns[0].ID != "c1" {
		t.Errorf("Expected only the healthy account's campaigns, got %+v", all.Campaigns)
	}
	if len(all.Insights) != 1 {
		t.Errorf("Expected 1 insight row, got %d", len(all.Insights))
	}
}

func TestClient_GetAll_AccountListFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Invalid OAuth access token", "code": 190}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	_, err := client.GetAll(context.Background(), "bad", "", "")
	if err == nil {
		t.Fatal("Expected the account listing failure to abort the fetch")
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeInvalidToken {
		t.Errorf("Expected invalid_token error, got %v", err)
	}
}

type failingTransport struct {
	err error
}

func (f failingTransport) Do(req *http.Request) (*http.Response, error) {
	return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: f.err}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	client := NewClientWithBaseURL("http://graph.invalid", failingTransport{err: errors.New("connection refused")})

	_, err := client.GetCampaigns(context.Background(), "tok", "act_1")
	if err == nil {
		t.Fatal("Expected a transport failure to surface as an error")
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("Expected a categorized error, got %v", err)
	}
	if appErr.Category != apperrors.CategoryNetwork {
		t.Errorf("Expected network category, got %s", appErr.Category)
	}
	if appErr.Code != apperrors.CodeConnectionFailed {
		t.Errorf("Expected connection_failed, got %s", appErr.Code)
	}
}
