package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// Sandbox URLs
	SandboxAuthURL    = "https://auth.sandbox.ebay.com/oauth2/authorize"
	SandboxTokenURL   = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
	SandboxAPIBaseURL = "https://api.sandbox.ebay.com"

	// Production URLs
	ProductionAuthURL    = "https://auth.ebay.com/oauth2/authorize"
	ProductionTokenURL   = "https://api.ebay.com/identity/v1/oauth2/token"
	ProductionAPIBaseURL = "https://api.ebay.com"
)

// Config holds eBay API configuration
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Sandbox      bool
	Scopes       []string
}

// Client is the eBay API client used to read offers and publish solved
// prices back to live listings.
type Client struct {
	config      Config
	httpClient  *http.Client
	oauthConfig *oauth2.Config
	token       *oauth2.Token
	baseURL     string
}

// NewClient creates a new eBay API client
func NewClient(cfg Config) *Client {
	var authURL, tokenURL, baseURL string
	if cfg.Sandbox {
		authURL = SandboxAuthURL
		tokenURL = SandboxTokenURL
		baseURL = SandboxAPIBaseURL
	} else {
		authURL = ProductionAuthURL
		tokenURL = ProductionTokenURL
		baseURL = ProductionAPIBaseURL
	}

	// Default scopes: read inventory, write offers
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{
			"https://api.ebay.com/oauth/api_scope",
			"https://api.ebay.com/oauth/api_scope/sell.inventory",
			"https://api.ebay.com/oauth/api_scope/sell.inventory.readonly",
		}
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	return &Client{
		config:      cfg,
		oauthConfig: oauthConfig,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
	}
}

// GetAuthURL returns the OAuth authorization URL
func (c *Client) GetAuthURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode exchanges an auth code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	c.token = token
	return nil
}

// SetToken sets the OAuth token directly (e.g. restored from storage)
func (c *Client) SetToken(token *oauth2.Token) {
	c.token = token
}

// GetToken returns the current token
func (c *Client) GetToken() *oauth2.Token {
	return c.token
}

// IsAuthenticated returns true if we have a valid token
func (c *Client) IsAuthenticated() bool {
	return c.token != nil && c.token.Valid()
}

// IsConfigured returns true if eBay API credentials are set
func (c *Client) IsConfigured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// doRequest makes an authenticated API request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if c.token == nil {
		return nil, fmt.Errorf("client not authenticated")
	}

	// Ensure token is fresh
	src := c.oauthConfig.TokenSource(ctx, c.token)
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get valid token: %w", err)
	}
	c.token = token

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// Amount holds monetary values as the API represents them
type Amount struct {
	Value    string `json:"value,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// PricingSummary holds the offer price
type PricingSummary struct {
	Price *Amount `json:"price,omitempty"`
}

// ShippingCostOverride overrides a shipping service cost on an offer
type ShippingCostOverride struct {
	ShippingServiceType    string  `json:"shippingServiceType,omitempty"` // DOMESTIC or INTERNATIONAL
	Priority               int     `json:"priority,omitempty"`
	ShippingCost           *Amount `json:"shippingCost,omitempty"`
	AdditionalShippingCost *Amount `json:"additionalShippingCost,omitempty"`
}

// ListingPolicies holds policy references on an offer
type ListingPolicies struct {
	FulfillmentPolicyID   string                 `json:"fulfillmentPolicyId,omitempty"`
	PaymentPolicyID       string                 `json:"paymentPolicyId,omitempty"`
	ReturnPolicyID        string                 `json:"returnPolicyId,omitempty"`
	ShippingCostOverrides []ShippingCostOverride `json:"shippingCostOverrides,omitempty"`
}

// Offer represents an eBay listing offer
type Offer struct {
	OfferID            string           `json:"offerId,omitempty"`
	SKU                string           `json:"sku,omitempty"`
	MarketplaceID      string           `json:"marketplaceId,omitempty"`
	Format             string           `json:"format,omitempty"`
	ListingDescription string           `json:"listingDescription,omitempty"`
	PricingSummary     *PricingSummary  `json:"pricingSummary,omitempty"`
	ListingPolicies    *ListingPolicies `json:"listingPolicies,omitempty"`
	Status             string           `json:"status,omitempty"`
}

// OffersResponse is the response from getOffers
type OffersResponse struct {
	Offers []Offer `json:"offers,omitempty"`
	Total  int     `json:"total,omitempty"`
	Limit  int     `json:"limit,omitempty"`
	Offset int     `json:"offset,omitempty"`
	Href   string  `json:"href,omitempty"`
	Next   string  `json:"next,omitempty"`
}

// GetOffers retrieves offers for a SKU or all offers
func (c *Client) GetOffers(ctx context.Context, sku string, limit, offset int) (*OffersResponse, error) {
	path := fmt.Sprintf("/sell/inventory/v1/offer?limit=%d&offset=%d", limit, offset)
	if sku != "" {
		path += "&sku=" + url.QueryEscape(sku)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var result OffersResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// PriceUpdate carries the solver output destined for one offer.
type PriceUpdate struct {
	ProductPrice    float64
	Currency        string
	DisplayShipping float64
	DisplayHandling float64
}

// UpdateOfferPricing writes a solved listing price and its shipping display
// figures onto an existing offer via read-modify-write, since the offer PUT
// replaces the whole resource.
func (c *Client) UpdateOfferPricing(ctx context.Context, offerID string, update PriceUpdate) error {
	path := "/sell/inventory/v1/offer/" + url.PathEscape(offerID)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to get offer: %d %s", resp.StatusCode, string(body))
	}

	var offer Offer
	if err := json.NewDecoder(resp.Body).Decode(&offer); err != nil {
		return fmt.Errorf("failed to decode offer: %w", err)
	}

	offer.PricingSummary = &PricingSummary{
		Price: &Amount{
			Value:    fmt.Sprintf("%.2f", update.ProductPrice),
			Currency: update.Currency,
		},
	}
	if offer.ListingPolicies == nil {
		offer.ListingPolicies = &ListingPolicies{}
	}
	offer.ListingPolicies.ShippingCostOverrides = []ShippingCostOverride{
		{
			ShippingServiceType: "INTERNATIONAL",
			Priority:            1,
			ShippingCost: &Amount{
				Value:    fmt.Sprintf("%.2f", update.DisplayShipping),
				Currency: update.Currency,
			},
			AdditionalShippingCost: &Amount{
				Value:    fmt.Sprintf("%.2f", update.DisplayHandling),
				Currency: update.Currency,
			},
		},
	}

	updateBody, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	resp2, err := c.doRequest(ctx, http.MethodPut, path, strings.NewReader(string(updateBody)))
	if err != nil {
		return err
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != http.StatusOK && resp2.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp2.Body)
		return fmt.Errorf("failed to update offer: %d %s", resp2.StatusCode, string(body))
	}

	return nil
}
