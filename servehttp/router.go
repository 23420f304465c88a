package servehttp

import (
	"net/http"
	"tenantry/account"
	"tenantry/bizerror"
	"tenantry/common"
	"tenantry/infra/metrics"
	"tenantry/infra/tracing"
	"tenantry/rbac"
	"tenantry/session"
	"tenantry/sessions"
	"time"

	"github.com/gin-gonic/gin"
)

type Services struct {
	Sessions    *session.Store
	Users       account.UserManagerTraits
	Assignments rbac.AssignmentManagerTraits
}

type EngineOptions struct {
	LoginRate  float64
	LoginBurst int

	// Metrics, when set, instruments every request and serves GET /metrics.
	Metrics *metrics.HTTPMetrics
}

// PublicRoutes are served without a session.
var PublicRoutes = map[string]bool{
	http.MethodGet + " /":                           true,
	http.MethodGet + " /metrics":                    true,
	http.MethodPost + " " + sessions.PathSessions:   true,
	http.MethodDelete + " " + sessions.PathSessions: true,
}

func NewEngine(svc Services, opts EngineOptions) *gin.Engine {
	engine := gin.Default()
	engine.Use(tracing.TracingIngress())
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	engine.Use(bizerror.ErrorHandling())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine, svc.Sessions, svc.Users, svc.Assignments,
		session.LoginRateLimit(opts.LoginRate, opts.LoginBurst, 10*time.Minute))

	protected := []gin.HandlerFunc{session.SimpleAuthFilter(svc.Sessions), session.PolicyFilter(AccessPolicy())}
	sessions.RegisterSessionHandler(engine, svc.Sessions, svc.Assignments, protected...)
	account.RegisterUsersHandler(engine, svc.Users, protected...)
	rbac.RegisterAssignmentsHandler(engine, svc.Assignments, protected...)

	return engine
}
