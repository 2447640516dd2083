package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"campaign-reconciliation-service/internal/clients/meta"
	"campaign-reconciliation-service/internal/models"
	apperrors "campaign-reconciliation-service/pkg/errors"
	"campaign-reconciliation-service/pkg/logger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField, "body", nil, err))
		return
	}

	if req.Username != s.config.AdminUsername || req.Password != s.config.AdminPassword {
		writeError(w, apperrors.AuthError(apperrors.CodeInvalidCredentials, nil))
		return
	}

	token, err := s.tokens.Generate(req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, Username: req.Username})
}

type reportsRequest struct {
	StartDate     int64  `json:"startDate"`
	EndDate       int64  `json:"endDate"`
	TrendyolToken string `json:"trendyolToken"`
}

type reportsResponse struct {
	Success           bool                    `json:"success"`
	TotalCount        int                     `json:"totalCount"`
	BrandOfferReports []models.CommerceReport `json:"brandOfferReports"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	var req reportsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField, "body", nil, err))
		return
	}
	if req.StartDate == 0 || req.EndDate == 0 || req.TrendyolToken == "" {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField,
			"startDate, endDate, trendyolToken", nil, nil))
		return
	}

	reports, err := s.trendyol.GetReports(r.Context(), req.TrendyolToken, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reportsResponse{
		Success:           true,
		TotalCount:        len(reports),
		BrandOfferReports: reports,
	})
}

type metaAllRequest struct {
	MetaToken string `json:"metaToken"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

func (s *Server) handleMetaAll(w http.ResponseWriter, r *http.Request) {
	var req metaAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField, "body", nil, err))
		return
	}
	if req.MetaToken == "" {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField, "metaToken", nil, nil))
		return
	}

	data, err := s.meta.GetAll(r.Context(), req.MetaToken, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"adAccounts": data.AdAccounts,
		"campaigns":  data.Campaigns,
		"adSets":     data.AdSets,
		"ads":        data.Ads,
		"insights":   data.Insights,
	})
}

// metaToken pulls the access token GET endpoints carry as a query param.
func metaToken(r *http.Request) (string, error) {
	token := r.URL.Query().Get("metaToken")
	if token == "" {
		return "", apperrors.ValidationError(apperrors.CodeMissingField, "metaToken", nil, nil)
	}
	return token, nil
}

func (s *Server) handleMetaAccounts(w http.ResponseWriter, r *http.Request) {
	token, err := metaToken(r)
	if err != nil {
		writeError(w, err)
		return
	}

	accounts, err := s.meta.GetAdAccounts(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, accounts)
}

func (s *Server) handleMetaCampaigns(w http.ResponseWriter, r *http.Request) {
	token, err := metaToken(r)
	if err != nil {
		writeError(w, err)
		return
	}

	campaigns, err := s.meta.GetCampaigns(r.Context(), token, chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, campaigns)
}

func (s *Server) handleMetaAdSets(w http.ResponseWriter, r *http.Request) {
	token, err := metaToken(r)
	if err != nil {
		writeError(w, err)
		return
	}

	adSets, err := s.meta.GetAdSets(r.Context(), token, chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, adSets)
}

func (s *Server) handleMetaAds(w http.ResponseWriter, r *http.Request) {
	token, err := metaToken(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ads, err := s.meta.GetAds(r.Context(), token, chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, ads)
}

func (s *Server) handleMetaInsights(w http.ResponseWriter, r *http.Request) {
	token, err := metaToken(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	level := query.Get("level")
	if level == "" {
		level = "campaign"
	}

	accountID := chi.URLParam(r, "accountID")
	startDate := query.Get("startDate")
	endDate := query.Get("endDate")

	var insights []models.Insight
	if startDate != "" && endDate != "" {
		insights, err = s.meta.GetInsightsByDateRange(r.Context(), token, accountID, startDate, endDate, level)
	} else {
		insights, err = s.meta.GetInsights(r.Context(), token, accountID, "last_30d", level)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, insights)
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": data})
}

type combinedRequest struct {
	MetaToken      string                 `json:"metaToken"`
	TrendyolToken  string                 `json:"trendyolToken"`
	StartDate      string                 `json:"startDate"`
	EndDate        string                 `json:"endDate"`
	ManualMappings []models.ManualMapping `json:"manualMappings,omitempty"`
}

type combinedResponse struct {
	Success    bool                    `json:"success"`
	TotalCount int                     `json:"totalCount"`
	Records    []models.CombinedRecord `json:"records"`
}

// handleCombined fetches both platforms concurrently, reconciles and
// returns the full per-campaign view. Either upstream failing aborts the
// request; combined output is never partial.
func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	var req combinedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField, "body", nil, err))
		return
	}
	if req.MetaToken == "" || req.TrendyolToken == "" || req.StartDate == "" || req.EndDate == "" {
		writeError(w, apperrors.ValidationError(apperrors.CodeMissingField,
			"metaToken, trendyolToken, startDate, endDate", nil, nil))
		return
	}

	startMillis, endMillis, err := dateRangeMillis(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}

	if claims, ok := ClaimsFromContext(r.Context()); ok {
		s.log.WithFields(logger.Fields{
			"username":   claims.Username,
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		}).Info("Combined view requested")
	}

	var (
		wg          sync.WaitGroup
		metaData    *meta.AllData
		metaErr     error
		reports     []models.CommerceReport
		trendyolErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		metaData, metaErr = s.meta.GetAll(r.Context(), req.MetaToken, req.StartDate, req.EndDate)
	}()
	go func() {
		defer wg.Done()
		reports, trendyolErr = s.trendyol.GetReports(r.Context(), req.TrendyolToken, startMillis, endMillis)
	}()
	wg.Wait()

	if metaErr != nil {
		writeError(w, metaErr)
		return
	}
	if trendyolErr != nil {
		writeError(w, trendyolErr)
		return
	}

	var records []models.CombinedRecord
	if err := logger.TimedOperation("combined reconciliation", s.log, func() error {
		records = s.engine.Reconcile(metaData.Campaigns, metaData.Insights, reports, req.ManualMappings)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, combinedResponse{
		Success:    true,
		TotalCount: len(records),
		Records:    records,
	})
}

// dateRangeMillis converts an inclusive YYYY-MM-DD range into the epoch
// millisecond window the report API expects: start of the first day
// through the last millisecond of the final day, in UTC.
func dateRangeMillis(startDate, endDate string) (int64, int64, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, 0, apperrors.ValidationError(apperrors.CodeInvalidDate, "startDate", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0, 0, apperrors.ValidationError(apperrors.CodeInvalidDate, "endDate", endDate, err)
	}
	if end.Before(start) {
		return 0, 0, apperrors.ValidationError(apperrors.CodeOutOfRange, "endDate", endDate, nil)
	}

	endOfDay := end.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start.UnixMilli(), endOfDay.UnixMilli(), nil
}
