package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/gateway"
	"github.com/rollcall-app/rollcall/internal/guard"
	"github.com/rollcall-app/rollcall/internal/middleware"
	"github.com/rollcall-app/rollcall/internal/modules/attendance"
	"github.com/rollcall-app/rollcall/internal/modules/auth"
	"github.com/rollcall-app/rollcall/internal/modules/security"
	"github.com/rollcall-app/rollcall/internal/modules/session"
	"github.com/rollcall-app/rollcall/internal/modules/student"
	"github.com/rollcall-app/rollcall/internal/network"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
)

func (a *App) registerRoutes() {
	r := a.router
	cfg := a.cfg

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	rateGuard := guard.NewRateGuard(cfg.Guard)
	events := guard.NewSecurityLog(a.logger)
	detector := guard.NewAnomalyDetector()
	loginLimiter := guard.NewLoginLimiter()

	sessionSvc := session.NewService(a.store, cfg.Session, a.hub, rateGuard)
	attendanceSvc := attendance.NewService(a.store, sessionSvc, a.hub, cfg.Guard.PerIPSubmissionCap)
	studentSvc := student.NewService(a.store)

	hostMW := middleware.HostAuth()
	admissionMW := network.Admission(a.filter, sessionSvc.ActiveHostIP)

	// The websocket upgrade hijacks the connection, so /ws sits outside
	// the request-deadline middleware.
	r.GET("/ws", gateway.ServeWS(a.hub, a.filter, a.logger))

	api := r.Group("/api")
	api.Use(middleware.RequestSize(events))
	api.Use(middleware.Deadline(cfg.RequestTimeout, events))
	api.Use(middleware.RateLimit(rateGuard, events))
	api.Use(middleware.Anomaly(detector, events))

	api.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	network.NewHandler(a.filter, sessionSvc.ActiveHostIP).RegisterRoutes(api)
	auth.NewHandler(cfg, loginLimiter, events).RegisterRoutes(api)
	session.NewHandler(sessionSvc).RegisterRoutes(api, hostMW)
	attendance.NewHandler(attendanceSvc, events).RegisterRoutes(api, hostMW, admissionMW)
	student.NewHandler(studentSvc).RegisterRoutes(api)
	security.NewHandler(events).RegisterRoutes(api, hostMW)
	gateway.RegisterRoutes(api, a.hub)
}
