package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dramirezh/tienda-backend/api/controllers"
	"github.com/dramirezh/tienda-backend/api/middleware"
	authsvc "github.com/dramirezh/tienda-backend/internal/auth"
	cartsvc "github.com/dramirezh/tienda-backend/internal/cart"
	catalogsvc "github.com/dramirezh/tienda-backend/internal/catalog"
	checkoutsvc "github.com/dramirezh/tienda-backend/internal/checkout"
	orderssvc "github.com/dramirezh/tienda-backend/internal/orders"
	"github.com/dramirezh/tienda-backend/pkg/config"
	"github.com/dramirezh/tienda-backend/pkg/db"
	"github.com/dramirezh/tienda-backend/pkg/logger"
	pkgredis "github.com/dramirezh/tienda-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *pkgredis.Client
	Registry prometheus.Gatherer

	Auth     authsvc.Service
	Catalog  catalogsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   orderssvc.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(deps.Redis, logg)).Post("/registro", controllers.Registro(deps.Auth, logg))
		r.Post("/login", controllers.Login(deps.Auth, logg))
	})

	r.Route("/api/productos", func(r chi.Router) {
		r.Get("/", controllers.ProductosList(deps.Catalog, logg))
		r.Get("/{productoId}", controllers.ProductosGet(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Config.JWT, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/", controllers.ProductosCreate(deps.Catalog, logg))
			r.Put("/{productoId}", controllers.ProductosUpdate(deps.Catalog, logg))
			r.Delete("/{productoId}", controllers.ProductosDelete(deps.Catalog, logg))
			r.Post("/{productoId}/restock", controllers.ProductosRestock(deps.Catalog, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, logg))

		r.Route("/carrito", func(r chi.Router) {
			r.Get("/", controllers.CarritoGet(deps.Checkout, logg))
			r.Delete("/", controllers.CarritoClear(deps.Cart, logg))
			r.Post("/items", controllers.CarritoAddItem(deps.Cart, logg))
			r.Put("/items/{itemId}", controllers.CarritoUpdateItem(deps.Cart, logg))
			r.Put("/items/{itemId}/guardar", controllers.CarritoGuardarItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CarritoRemoveItem(deps.Cart, logg))
			r.With(middleware.Idempotency(deps.Redis, logg)).Post("/checkout", controllers.CarritoCheckout(deps.Checkout, logg))
		})

		r.Route("/pedidos", func(r chi.Router) {
			r.Get("/", controllers.PedidosList(deps.Orders, logg))
			r.Get("/{pedidoId}", controllers.PedidosGet(deps.Orders, logg))
		})
	})

	return r
}
