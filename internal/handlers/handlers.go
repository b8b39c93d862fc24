package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/AKI-NANA/ebay-price-solver/internal/database"
	"github.com/AKI-NANA/ebay-price-solver/internal/ebay"
	"github.com/AKI-NANA/ebay-price-solver/internal/pricing"
	"github.com/AKI-NANA/ebay-price-solver/internal/refdata"
)

const sessionName = "price-solver"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db             *database.DB
	ebayClient     *ebay.Client
	currentAccount *database.Account // Current instance's account (can be nil)
	sessions       *database.DBSessionStore
	encryptionKey  []byte // nil when token persistence is disabled
	ratePath       string // exchange-rate snapshot file
}

// NewHandler creates a new handler
func NewHandler(db *database.DB, client *ebay.Client, account *database.Account,
	sessions *database.DBSessionStore, encryptionKey []byte, ratePath string) *Handler {
	return &Handler{
		db:             db,
		ebayClient:     client,
		currentAccount: account,
		sessions:       sessions,
		encryptionKey:  encryptionKey,
		ratePath:       ratePath,
	}
}

// JSON response helper
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// Error response helper
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// HealthCheck returns API health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	_, rateErr := refdata.LoadExchangeRate(h.ratePath)
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"authenticated": h.ebayClient.IsAuthenticated(),
		"configured":    h.ebayClient.IsConfigured(),
		"hasAccount":    h.currentAccount != nil,
		"hasRates":      rateErr == nil,
	})
}

// GetAuthURL returns the OAuth authorization URL. The state nonce is held in
// the operator session so the callback can verify it after the redirect.
func (h *Handler) GetAuthURL(w http.ResponseWriter, r *http.Request) {
	state := generateState()

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["oauthState"] = state
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
		errorResponse(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	url := h.ebayClient.GetAuthURL(state)
	jsonResponse(w, http.StatusOK, map[string]string{"url": url})
}

// OAuthCallback handles the OAuth callback
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errParam := r.URL.Query().Get("error")
	errDesc := r.URL.Query().Get("error_description")

	if errParam != "" {
		log.Printf("OAuth error from eBay: %s - %s", errParam, errDesc)
		http.Error(w, "eBay OAuth error: "+errDesc, http.StatusBadRequest)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	expectedState, _ := session.Values["oauthState"].(string)
	if state == "" || state != expectedState {
		log.Printf("OAuth state mismatch - received: %s", state)
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	if err := h.ebayClient.ExchangeCode(r.Context(), code); err != nil {
		log.Printf("OAuth exchange error: %v", err)
		http.Error(w, "Failed to authenticate: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Persist the token so restarts don't force a re-auth
	if h.encryptionKey != nil && h.currentAccount != nil {
		if err := h.db.SaveOAuthToken(h.currentAccount.ID, h.ebayClient.GetToken(), h.encryptionKey); err != nil {
			log.Printf("Failed to persist token: %v", err)
		}
	}

	log.Printf("OAuth success, token obtained")
	http.Redirect(w, r, "/?auth=success", http.StatusFound)
}

// GetAuthStatus returns current auth status
func (h *Handler) GetAuthStatus(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"authenticated": h.ebayClient.IsAuthenticated(),
		"configured":    h.ebayClient.IsConfigured(),
	})
}

// Calculate runs the price solver on the posted inputs against the current
// reference-data snapshot and records the outcome, successful or not. A
// business failure is still a 200: the result payload carries the error kind
// and diagnostics.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var inputs pricing.CostInputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if inputs.SellerTier == "" {
		inputs.SellerTier = pricing.TierStandard
	}

	rates, err := refdata.LoadExchangeRate(h.ratePath)
	if err != nil {
		log.Printf("Exchange rate unavailable: %v", err)
		errorResponse(w, http.StatusServiceUnavailable, "exchange rate unavailable: "+err.Error())
		return
	}

	ref := refdata.Snapshot(rates, inputs.Category, inputs.Destination, inputs.Condition)
	h.applySettingOverrides(&ref)

	result := pricing.Calculate(inputs, ref)

	var recordID int64
	if h.currentAccount != nil {
		rec, err := h.db.SaveCalculation(h.currentAccount.ID, inputs, result)
		if err != nil {
			log.Printf("Failed to save calculation: %v", err)
		} else {
			recordID = rec.ID
		}
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"id":     recordID,
		"result": result,
	})
}

// applySettingOverrides lets the operator adjust solver knobs without a
// redeploy. Unset or malformed settings leave the defaults alone.
func (h *Handler) applySettingOverrides(ref *pricing.RefData) {
	if s, err := h.db.GetSetting("rounding_unit"); err == nil && s != nil {
		if v, err := strconv.ParseFloat(s.Value, 64); err == nil && v > 0 {
			ref.Solver.RoundingUnit = v
		}
	}
	if s, err := h.db.GetSetting("target_margin"); err == nil && s != nil {
		if v, err := strconv.ParseFloat(s.Value, 64); err == nil && v > 0 && v < 1 {
			ref.Margin.TargetMargin = v
		}
	}
}

// GetHistory returns stored calculations for the current account, or one
// full record when ?id= is given.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid id")
			return
		}
		rec, err := h.db.GetCalculation(id)
		if err != nil {
			log.Printf("GetCalculation error: %v", err)
			errorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rec == nil {
			errorResponse(w, http.StatusNotFound, "calculation not found")
			return
		}
		jsonResponse(w, http.StatusOK, rec)
		return
	}

	if h.currentAccount == nil {
		jsonResponse(w, http.StatusOK, map[string]interface{}{
			"history": []database.CalculationRecord{},
			"total":   0,
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	history, err := h.db.GetCalculations(h.currentAccount.ID, limit)
	if err != nil {
		log.Printf("GetCalculations error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}

// GetZones returns the shipping zones of the active policy
func (h *Handler) GetZones(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"policy": refdata.DefaultPolicy.Name,
		"zones":  refdata.DefaultPolicy.Zones,
	})
}

// GetCategories returns the category fee table
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"categories": refdata.DefaultCategoryFees.Schedules,
		"default":    refdata.DefaultCategoryFees.Default,
	})
}

// GetTariffs returns the tariff classification table
func (h *Handler) GetTariffs(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"classifications": refdata.DefaultTariffs.Classifications,
		"defaultRate":     refdata.DefaultTariffs.DefaultRate,
		"surchargeOrigin": refdata.DefaultTariffs.SurchargeOrigin,
	})
}

// GetRates returns the current exchange-rate snapshot
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := refdata.LoadExchangeRate(h.ratePath)
	if err != nil {
		errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, rates)
}

// UpdateSettingRequest is the body for the settings endpoint
type UpdateSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// allowed solver-override settings
var settableKeys = map[string]bool{
	"rounding_unit": true,
	"target_margin": true,
}

// UpdateSetting stores a solver override
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !settableKeys[req.Key] {
		errorResponse(w, http.StatusBadRequest, "unknown setting: "+req.Key)
		return
	}

	if err := h.db.UpdateSetting(req.Key, req.Value); err != nil {
		log.Printf("UpdateSetting error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ApplyPriceRequest names a stored calculation and the offer to push it to
type ApplyPriceRequest struct {
	CalculationID int64  `json:"calculationId"`
	OfferID       string `json:"offerId"`
	Currency      string `json:"currency"`
}

// ApplyPrice publishes a stored successful calculation to a live eBay offer
func (h *Handler) ApplyPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	if !h.ebayClient.IsAuthenticated() {
		errorResponse(w, http.StatusUnauthorized, "Not authenticated with eBay")
		return
	}

	var req ApplyPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	rec, err := h.db.GetCalculation(req.CalculationID)
	if err != nil {
		log.Printf("ApplyPrice load error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		errorResponse(w, http.StatusNotFound, "calculation not found")
		return
	}
	if !rec.Success || rec.Result == nil {
		errorResponse(w, http.StatusBadRequest, "calculation did not produce a price")
		return
	}

	update := ebay.PriceUpdate{
		ProductPrice:    rec.Result.ProductPrice,
		Currency:        req.Currency,
		DisplayShipping: rec.Result.DisplayShipping,
		DisplayHandling: rec.Result.DisplayHandling,
	}
	if err := h.ebayClient.UpdateOfferPricing(r.Context(), req.OfferID, update); err != nil {
		log.Printf("UpdateOfferPricing error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetOffers returns the account's offers so the operator can pick one to re-price
func (h *Handler) GetOffers(w http.ResponseWriter, r *http.Request) {
	if !h.ebayClient.IsAuthenticated() {
		errorResponse(w, http.StatusUnauthorized, "Not authenticated with eBay")
		return
	}

	sku := r.URL.Query().Get("sku")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	offers, err := h.ebayClient.GetOffers(r.Context(), sku, limit, offset)
	if err != nil {
		log.Printf("GetOffers error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, offers)
}

func generateState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "price-solver-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}
