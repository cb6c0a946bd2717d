// Package catalog talks to the remote stock and product services over HTTP.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotFound = errors.New("not found")

// errCallerDone marks failures caused by the caller's own context, which say
// nothing about the remote service's health.
var errCallerDone = errors.New("caller context done")

type Options struct {
	StockBaseURL   string
	CatalogBaseURL string
	Timeout        time.Duration
	// BreakerFailures consecutive failures open the endpoint's breaker for
	// BreakerCooldown. Zero disables tripping.
	BreakerFailures uint32
	BreakerCooldown time.Duration
	// Transport defaults to http.DefaultTransport. It is always wrapped
	// with otelhttp.
	Transport http.RoundTripper
}

// Client implements port.StockService and port.CatalogService.
type Client struct {
	stockURL   *url.URL
	catalogURL *url.URL
	http       *http.Client

	stock    *gobreaker.CircuitBreaker[domain.StockInfo]
	product  *gobreaker.CircuitBreaker[domain.Product]
	products *gobreaker.CircuitBreaker[[]domain.Product]
}

func NewClient(opts Options) (*Client, error) {
	stockURL, err := parseBaseURL(opts.StockBaseURL)
	if err != nil {
		return nil, fmt.Errorf("stock base url: %w", err)
	}
	catalogURL, err := parseBaseURL(opts.CatalogBaseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog base url: %w", err)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		stockURL:   stockURL,
		catalogURL: catalogURL,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		stock:    gobreaker.NewCircuitBreaker[domain.StockInfo](breakerSettings("stock", opts)),
		product:  gobreaker.NewCircuitBreaker[domain.Product](breakerSettings("product", opts)),
		products: gobreaker.NewCircuitBreaker[[]domain.Product](breakerSettings("products", opts)),
	}, nil
}

func (c *Client) GetStock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	return c.stock.Execute(func() (domain.StockInfo, error) {
		var body struct {
			Amount *int `json:"amount"`
		}
		if err := c.getJSON(ctx, c.stockURL, "stock/"+strconv.FormatInt(productID, 10), &body); err != nil {
			return domain.StockInfo{}, fmt.Errorf("c.getJSON: %w", err)
		}
		if body.Amount == nil || *body.Amount < 0 {
			return domain.StockInfo{}, fmt.Errorf("stock[%d] has invalid amount", productID)
		}

		return domain.StockInfo{ProductID: productID, Amount: *body.Amount}, nil
	})
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	return c.product.Execute(func() (domain.Product, error) {
		var product domain.Product
		if err := c.getJSON(ctx, c.catalogURL, "products/"+strconv.FormatInt(productID, 10), &product); err != nil {
			return domain.Product{}, fmt.Errorf("c.getJSON: %w", err)
		}
		if product.ID != productID {
			return domain.Product{}, fmt.Errorf("product[%d] answered with id[%d]", productID, product.ID)
		}

		return product, nil
	})
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.products.Execute(func() ([]domain.Product, error) {
		var products []domain.Product
		if err := c.getJSON(ctx, c.catalogURL, "products", &products); err != nil {
			return nil, fmt.Errorf("c.getJSON: %w", err)
		}

		return products, nil
	})
}

func (c *Client) getJSON(ctx context.Context, base *url.URL, path string, dest any) (err error) {
	defer func() {
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", errCallerDone, err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.JoinPath(path).String(), nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", req.URL.Path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GET %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

func breakerSettings(name string, opts Options) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return opts.BreakerFailures > 0 && counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		// a missing product is an answer, not an outage; neither is a caller
		// that went away
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, errCallerDone)
		},
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scheme %q is not http(s)", u.Scheme)
	}
	return u, nil
}
