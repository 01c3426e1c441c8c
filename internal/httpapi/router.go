// Package httpapi is the JSON transport over the allocation services.
package httpapi

import (
	"net/http"
	"sync"

	"github.com/alexanderramin/staffplan/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Services are the use cases the routes call.
type Services struct {
	Ledger       service.LedgerService
	Approval     service.ApprovalService
	Batch        service.BatchService
	Availability service.AvailabilityService
	HourChanges  service.HourChangeService
	Directory    service.DirectoryService
}

type Options struct {
	AllowedOrigins []string
}

type handler struct {
	svc    Services
	logger logrus.FieldLogger
}

var registerValidators sync.Once

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Services, logger logrus.FieldLogger, opts Options) *gin.Engine {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonTagName)
			v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
			_ = v.RegisterValidation("hours", validateHours)
			_ = v.RegisterValidation("date", validateDate)
		}
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(tracing())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	h := &handler{svc: svc, logger: logger}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	r.GET("/consultants", h.listConsultants)
	r.POST("/consultants", h.createConsultant)
	r.GET("/consultants/availability", h.availability)
	r.GET("/consultants/:id", h.getConsultant)
	r.GET("/projects", h.listProjects)
	r.POST("/projects", h.createProject)
	r.GET("/projects/:id/phases", h.listPhases)
	r.POST("/projects/:id/phases", h.createPhase)

	r.GET("/phase-allocations", h.listAllocations)
	r.POST("/phase-allocations", h.createAllocation)
	r.GET("/phase-allocations/:id", h.getAllocation)
	r.POST("/phase-allocations/:id", h.phaseAction)

	r.POST("/weekly-allocations", h.submitWeek)
	r.POST("/weekly-allocations/submit", h.submitWeeks)
	r.POST("/weekly-allocations/batch", h.batch)
	r.GET("/weekly-allocations/pending", h.pendingSubmissions)
	r.POST("/weekly-allocations/:id", h.weeklyAction)

	r.GET("/hour-change-requests", h.listHourChanges)
	r.POST("/hour-change-requests", h.createHourChange)
	r.POST("/hour-change-requests/:id", h.decideHourChange)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "route not found"})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
