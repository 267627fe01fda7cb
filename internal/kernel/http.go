// Package kernel assembles the HTTP handler: global middleware, services,
// controllers and routes.
package kernel

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/controllers"
	"github.com/krishi360/krishi/app/events"
	appgraphql "github.com/krishi360/krishi/app/graphql"
	"github.com/krishi360/krishi/app/routes"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/config"
	"github.com/krishi360/krishi/pkg/database"
	"github.com/krishi360/krishi/pkg/graphql"
	"github.com/krishi360/krishi/pkg/metrics"
	"github.com/krishi360/krishi/pkg/middleware"
	"github.com/krishi360/krishi/pkg/reqid"
	"github.com/krishi360/krishi/pkg/router"
	"github.com/krishi360/krishi/pkg/session"
)

// Deps are the long-lived collaborators the kernel wires into services.
type Deps struct {
	DB       *gorm.DB
	Events   events.Publisher
	Sessions session.Store
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(d Deps) (*HTTPKernel, error) {
	if d.Sessions == nil {
		d.Sessions = session.NewMemoryStore()
	}

	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.AppEnv() == "production"

	r := router.New()

	// Outermost first. Metrics wraps everything so latency is total; request
	// ids must exist before the logger runs.
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		session.Middleware(d.Sessions, opts),
		middleware.CORS(config.CORSOrigins()),
		middleware.RateLimit(middleware.NewIPLimiter(config.RateLimitPerMinute())),
	)

	// Unauthenticated.
	r.Handle("/metrics", metrics.Handler())

	c, err := buildControllers(d)
	if err != nil {
		return nil, err
	}
	routes.RegisterAPI(r, c)

	return &HTTPKernel{router: r}, nil
}

func buildControllers(d Deps) (routes.Controllers, error) {
	var (
		crops         = services.NewCropService(d.DB)
		orders        = services.NewOrderService(d.DB, d.Events)
		consultations = services.NewConsultationService(d.DB, d.Events)
	)

	schema, err := appgraphql.NewSchema(crops)
	if err != nil {
		return routes.Controllers{}, err
	}

	return routes.Controllers{
		Auth:   controllers.NewAuthController(services.NewAuthService(d.DB)),
		Farmer: controllers.NewFarmerController(crops, orders, consultations),
		Buyer: controllers.NewBuyerController(crops,
			services.NewCartService(d.DB),
			services.NewCheckoutService(d.DB, d.Events),
			orders),
		Consultant:    controllers.NewConsultantController(consultations),
		Dashboards:    controllers.NewDashboardController(services.NewDashboardService(d.DB)),
		Admin:         controllers.NewAdminController(services.NewAdminService(d.DB), crops, orders, consultations),
		Notifications: controllers.NewNotificationController(services.NewNotificationService(d.DB)),
		Health: controllers.NewHealthController(func(ctx context.Context) error {
			return database.Ping(ctx, d.DB)
		}),
		GraphQL: graphql.Handler(schema),
	}, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the mounted named routes.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }
