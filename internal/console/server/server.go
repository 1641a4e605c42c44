package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/ams-passport/internal/console/handler"
	"github.com/xela07ax/ams-passport/internal/domain"
	"github.com/xela07ax/ams-passport/internal/infra/auth"
	"go.uber.org/zap"
)

// ConsoleServer — HTTP-поверхность консоли управления.
// Роутинг делится на два периметра: публичный (логин, health, metrics)
// и защищенный, где каждый маршрут объявляет требуемое право доступа.
type ConsoleServer struct {
	router  *chi.Mux
	logger  *zap.Logger
	metrics *Metrics

	// Проверка токенов: общий секрет с выпуском (AuthService)
	validator *auth.BaseValidator

	authHandler  *handler.AuthHandler
	adminHandler *handler.AdminHandler
	roleHandler  *handler.RoleHandler

	metricsHandler http.Handler // promhttp поверх нашего registry
}

// NewConsoleServer инициализирует сервер админки со всеми зависимостями.
func NewConsoleServer(
	logger *zap.Logger,
	metrics *Metrics,
	validator *auth.BaseValidator,
	authH *handler.AuthHandler,
	adminH *handler.AdminHandler,
	roleH *handler.RoleHandler,
	metricsH http.Handler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:         chi.NewRouter(),
		logger:         logger.Named("console-api"),
		metrics:        metrics,
		validator:      validator,
		authHandler:    authH,
		adminHandler:   adminH,
		roleHandler:    roleH,
		metricsHandler: metricsH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TracingMiddleware)
	r.Use(s.observe)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин должен быть доступен без токена
		r.Post("/admins/login", s.authHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		if s.metricsHandler != nil {
			r.Get("/metrics", s.metricsHandler.ServeHTTP)
		}
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР ---
	// Middleware строит контекст безопасности из токена; требуемое
	// право объявляется на каждом маршруте отдельно.
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.validator, s.logger))

		// Управление администраторами
		r.With(auth.RequirePermission(domain.PermAdminRead)).
			Get("/admins", s.adminHandler.List)
		r.With(auth.RequirePermission(domain.PermAdminAddNew)).
			Post("/admins/add-new", s.adminHandler.AddNew)
		r.Route("/admins/{id:[0-9]+}", func(r chi.Router) {
			r.With(auth.RequirePermission(domain.PermAdminDelete)).
				Post("/delete", s.adminHandler.Delete)
			r.With(auth.RequirePermission(domain.PermAdminUpdate)).
				Post("/enable", s.adminHandler.Enable)
			r.With(auth.RequirePermission(domain.PermAdminUpdate)).
				Post("/disable", s.adminHandler.Disable)
		})

		// Роли: читать может любой аутентифицированный администратор
		r.With(auth.RequireAuthenticated()).
			Get("/roles", s.roleHandler.List)
	})
}

// observe снимает метрики трафика, латентности и отказов доступа.
func (s *ConsoleServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern() // без кардинальности по конкретным id
		}

		s.metrics.TotalRequests.WithLabelValues(r.Method, path).Inc()
		s.metrics.RequestDuration.
			WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())

		switch ww.Status() {
		case http.StatusUnauthorized:
			s.metrics.AuthDenials.WithLabelValues("unauthenticated").Inc()
		case http.StatusForbidden:
			s.metrics.AuthDenials.WithLabelValues("forbidden").Inc()
		}
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
