package trendyol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"campaign-reconciliation-service/internal/clients"
	"campaign-reconciliation-service/internal/models"
	apperrors "campaign-reconciliation-service/pkg/errors"
)

func fastBackoff() clients.Backoff {
	return clients.Backoff{Base: time.Millisecond, MaxRetries: 3}
}

func reportPage(ownerID int64, count int) string {
	reports := make([]models.CommerceReport, count)
	for i := range reports {
		reports[i] = models.CommerceReport{
			Owner:    models.Owner{ID: ownerID, Name: "Karaca Home"},
			Currency: "TRY",
		}
	}
	payload, _ := json.Marshal(map[string]interface{}{"brandOfferReports": reports})
	return string(payload)
}

func TestClient_GetReports_PaginatesUntilShortPage(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("size"); got != "20" {
			t.Errorf("Expected page size 20, got %q", got)
		}
		if got := q.Get("startDate"); got != "1733011200000" {
			t.Errorf("Expected epoch-millisecond start date, got %q", got)
		}
		if got := q.Get("profitedOffers"); got != "false" {
			t.Errorf("Expected profitedOffers=false, got %q", got)
		}
		if got := q.Get("sortingType"); got != "DATE_DESC" {
			t.Errorf("Expected DATE_DESC sorting, got %q", got)
		}

		page, _ := strconv.Atoi(q.Get("page"))
		if page != requests {
			t.Errorf("Expected page %d, got %d", requests, page)
		}
		requests++

		// Two full pages, then a short one.
		if page < 2 {
			fmt.Fprint(w, reportPage(101, 20))
		} else {
			fmt.Fprint(w, reportPage(101, 5))
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	reports, err := client.GetReports(context.Background(), "tok", 1733011200000, 1735689599999)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(reports) != 45 {
		t.Errorf("Expected 45 reports across pages, got %d", len(reports))
	}
	if requests != 3 {
		t.Errorf("Expected the short page to end pagination at 3 requests, got %d", requests)
	}
}

func TestClient_GetReports_StopsOnEmptyPage(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			fmt.Fprint(w, reportPage(101, 20))
		} else {
			fmt.Fprint(w, `{"brandOfferReports": []}`)
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	reports, err := client.GetReports(context.Background(), "tok", 0, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(reports) != 20 {
		t.Errorf("Expected 20 reports, got %d", len(reports))
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
}

func TestClient_GetReports_SendsAgentHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := map[string]string{
			"Authorization":  "bearer secret-token",
			"Culture":        "tr-TR",
			"X-Agent-Origin": "client",
			"X-Agent-Name":   "web-report",
			"X-Platform":     "IOS",
		}
		for key, want := range expected {
			if got := r.Header.Get(key); got != want {
				t.Errorf("Header %s: expected %q, got %q", key, want, got)
			}
		}
		if got := r.Header.Get("Origin"); got != "https://influencercenter.trendyol.com" {
			t.Errorf("Unexpected Origin header %q", got)
		}
		fmt.Fprint(w, `{"brandOfferReports": []}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	if _, err := client.GetReports(context.Background(), "secret-token", 0, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestClient_GetReports_ErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		expectedCode apperrors.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, apperrors.CodeInvalidToken},
		{"forbidden", http.StatusForbidden, apperrors.CodeInvalidToken},
		{"bad request", http.StatusBadRequest, apperrors.CodeUpstreamRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClientWithBaseURL(server.URL, server.Client())
			_, err := client.GetReports(context.Background(), "tok", 0, 1)
			if err == nil {
				t.Fatal("Expected an error")
			}

			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				t.Fatalf("Expected an AppError, got %T", err)
			}
			if appErr.Category != apperrors.CategoryTrendyolAPI {
				t.Errorf("Expected trendyol_api category, got %s", appErr.Category)
			}
			if appErr.Code != tt.expectedCode {
				t.Errorf("Expected code %s, got %s", tt.expectedCode, appErr.Code)
			}
		})
	}
}

func TestClient_GetReports_RetriesServerErrors(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, reportPage(101, 3))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, server.Client())
	client.backoff = fastBackoff()

	reports, err := client.GetReports(context.Background(), "tok", 0, 1)
	if err != nil {
		t.Fatalf("Expected the retry to recover, got %v", err)
	}
	if len(reports) != 3 {
		t.Errorf("Expected 3 reports, got %d", len(reports))
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
}

type failingTransport struct {
	err error
}

func (f failingTransport) Do(req *http.Request) (*http.Response, error) {
	return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: f.err}
}

func TestClient_GetReports_TransportFailureIsNetworkError(t *testing.T) {
	client := NewClientWithBaseURL("http://apigw.invalid", failingTransport{err: errors.New("connection refused")})
	client.backoff = fastBackoff()

	_, err := client.GetReports(context.Background(), "tok", 1733011200000, 1735689599999)
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
