// Package httpapi exposes the storefront pages as a JSON API.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/notify"
	"github.com/nikolayk812/rocketshoes-cart/internal/storefront"
	"github.com/nikolayk812/rocketshoes-cart/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type productLister interface {
	Products(ctx context.Context) ([]storefront.ProductCard, error)
	AddToCart(ctx context.Context, productID int64) (domain.Cart, error)
}

type cartPage interface {
	Page() storefront.Page
	Increment(ctx context.Context, productID int64) (domain.Cart, error)
	Decrement(ctx context.Context, productID int64) (domain.Cart, error)
	SetAmount(ctx context.Context, productID int64, amount int) (domain.Cart, error)
	Remove(ctx context.Context, productID int64) (domain.Cart, error)
}

type notificationDrainer interface {
	Drain() []notify.Notification
}

type RouterParams struct {
	Catalog       productLister
	Cart          cartPage
	Notifications notificationDrainer
	Logger        *logger.Logger
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

func NewRouter(p RouterParams) (http.Handler, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog page required")
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("cart page required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}

	h := &handlers{
		catalog:       p.Catalog,
		cart:          p.Cart,
		notifications: p.Notifications,
		log:           p.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID(p.Logger))
	r.Use(accessLog(p.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/products", h.listProducts)
	r.Get("/notifications", h.drainNotifications)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Route("/items/{productID}", func(r chi.Router) {
			r.Post("/", h.addProduct)
			r.Put("/", h.updateAmount)
			r.Delete("/", h.removeProduct)
			r.Post("/increment", h.increment)
			r.Post("/decrement", h.decrement)
		})
	})

	return otelhttp.NewHandler(r, "storefront"), nil
}
