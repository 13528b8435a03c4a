package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"learnhub-backend/application/services"
	"learnhub-backend/infrastructure/persistence"
	"learnhub-backend/interfaces/http/rest/handlers"
	"learnhub-backend/interfaces/http/rest/middleware"
	"learnhub-backend/pkg/auth"
	"learnhub-backend/pkg/verify"
)

// Router creates and configures the HTTP router
type Router struct {
	db         *persistence.Database
	enroller   *services.EnrollmentService
	subs       *services.SubscriptionService
	limiter    *verify.Limiter
	validator  *auth.JWTValidator
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	db *persistence.Database,
	enroller *services.EnrollmentService,
	subs *services.SubscriptionService,
	limiter *verify.Limiter,
	validator *auth.JWTValidator,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		db:         db,
		enroller:   enroller,
		subs:       subs,
		limiter:    limiter,
		validator:  validator,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.learnhub.in"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		workshopHandler := handlers.NewWorkshopHandler(rt.db.Workshops, rt.logger)
		moduleHandler := handlers.NewModuleHandler(rt.db.Modules, rt.logger)
		r.Route("/workshops", func(r chi.Router) {
			r.Get("/", workshopHandler.ListWorkshops)
			r.Get("/{workshopID}", workshopHandler.GetWorkshop)
			r.Get("/slug/{slug}", workshopHandler.GetWorkshopBySlug)
			r.Get("/{workshopID}/modules", moduleHandler.ListWorkshopModules)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Post("/", workshopHandler.CreateWorkshop)
				r.Put("/{workshopID}", workshopHandler.UpdateWorkshop)
				r.Delete("/{workshopID}", workshopHandler.DeleteWorkshop)
			})
		})

		r.Route("/modules", func(r chi.Router) {
			r.Get("/{moduleID}", moduleHandler.GetModule)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Post("/", moduleHandler.CreateModule)
				r.Put("/{moduleID}", moduleHandler.UpdateModule)
				r.Delete("/{moduleID}", moduleHandler.DeleteModule)
			})
		})

		enrollmentHandler := handlers.NewEnrollmentHandler(rt.db.Enrollments, rt.enroller, rt.subs, rt.logger)
		r.Route("/enrollments", func(r chi.Router) {
			r.Post("/", enrollmentHandler.Enroll)
			r.Get("/", enrollmentHandler.ListMyEnrollments)
			r.Get("/stream", enrollmentHandler.StreamMyEnrollments)
			r.Get("/{enrollmentID}", enrollmentHandler.GetEnrollment)
			r.Put("/{enrollmentID}/progress", enrollmentHandler.UpdateProgress)
			r.Post("/{enrollmentID}/cancel", enrollmentHandler.CancelEnrollment)
		})

		paymentHandler := handlers.NewPaymentHandler(rt.db.Payments, rt.db.Enrollments, rt.db.Store, rt.logger)
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", paymentHandler.ListMyPayments)
			r.Get("/{paymentID}", paymentHandler.GetPayment)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Get("/all", paymentHandler.ListAllPayments)
				r.Post("/{paymentID}/confirm", paymentHandler.ConfirmPayment)
			})
		})

		userHandler := handlers.NewUserHandler(rt.db.Users, rt.limiter, rt.logger)
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateProfile)
			r.Get("/me", userHandler.GetProfile)
			r.Put("/me", userHandler.UpdateProfile)
			r.Delete("/me", userHandler.DeleteProfile)
			r.Post("/me/verify-phone", userHandler.RequestPhoneVerification)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
