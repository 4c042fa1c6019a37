package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/apklist/apklist/internal/metrics"
)

// DefaultBaseURL points at the public product API.
const DefaultBaseURL = "https://api-extern.systembolaget.se"

const (
	productsPath = "/product/v1/product"
	apiKeyHeader = "Ocp-Apim-Subscription-Key"
)

// ClientConfig controls the catalog HTTP client.
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Client retrieves the full product catalog over HTTPS.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      *RetryPolicy
	logger     *zap.Logger
}

// NewClient constructs a Client. A zero Timeout falls back to 15 seconds.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      NewRetryPolicy(cfg.MaxRetries, cfg.BackoffInitial, cfg.BackoffMax),
		logger:     logger,
	}
}

// productJSON mirrors the wire format. The mandatory numeric fields are
// pointers so a missing field is distinguishable from a literal zero.
type productJSON struct {
	ProductID              string   `json:"ProductId"`
	ProductNameBold        string   `json:"ProductNameBold"`
	ProducerName           string   `json:"ProducerName"`
	Country                string   `json:"Country"`
	Category               string   `json:"Category"`
	SubCategory            string   `json:"SubCategory"`
	Assortment             string   `json:"Assortment"`
	AlcoholPercentage      *float64 `json:"AlcoholPercentage"`
	Volume                 *float64 `json:"Volume"`
	Price                  *float64 `json:"Price"`
	RecycleFee             *float64 `json:"RecycleFee"`
	IsCompletelyOutOfStock bool     `json:"IsCompletelyOutOfStock"`
}

// FetchAll retrieves every product in the catalog. Transient failures are
// retried with backoff inside the call; products missing a mandatory
// numeric field are skipped and counted rather than failing the fetch.
func (c *Client) FetchAll(ctx context.Context) ([]Product, error) {
	attempt := 0
	for {
		products, err := c.fetchOnce(ctx)
		if err == nil {
			return products, nil
		}
		if !c.retry.ShouldRetry(err, attempt) {
			return nil, err
		}
		delay := c.retry.Backoff(attempt)
		attempt++
		c.logger.Warn("catalog fetch failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+productsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog responded with status %d", resp.StatusCode)
	}

	var raw []productJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]Product, 0, len(raw))
	for _, r := range raw {
		p, ok := r.toProduct()
		if !ok {
			metrics.ObserveSkippedProduct()
			c.logger.Warn("product missing mandatory field, skipping",
				zap.String("product_id", r.ProductID),
				zap.String("name", r.ProductNameBold),
			)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// toProduct converts the wire form, reporting false when a mandatory
// numeric field is absent.
func (r productJSON) toProduct() (Product, bool) {
	if r.AlcoholPercentage == nil || r.Volume == nil || r.Price == nil || r.RecycleFee == nil {
		return Product{}, false
	}
	return Product{
		ID:                     r.ProductID,
		Name:                   r.ProductNameBold,
		Producer:               r.ProducerName,
		Country:                r.Country,
		Category:               r.Category,
		SubCategory:            r.SubCategory,
		Assortment:             r.Assortment,
		AlcoholPercentage:      *r.AlcoholPercentage,
		Volume:                 *r.Volume,
		Price:                  *r.Price,
		RecycleFee:             *r.RecycleFee,
		IsCompletelyOutOfStock: r.IsCompletelyOutOfStock,
	}, true
}
