package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VruddithShetty/TrialEquity/app"
	"github.com/VruddithShetty/TrialEquity/internal"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// Server exposes the assessment pipeline over HTTP
type Server struct {
	router      *gin.Engine
	logger      *internal.Logger
	assessments *app.AssessmentService
	training    *app.TrainingService
	repo        ports.AssessmentRepository
	store       ports.ModelStore
	metrics     *Metrics
}

// NewServer wires the HTTP surface. repo may be nil when the service runs
// without audit persistence.
func NewServer(
	assessments *app.AssessmentService,
	training *app.TrainingService,
	repo ports.AssessmentRepository,
	store ports.ModelStore,
	logger *internal.Logger,
) *Server {
	s := &Server{
		router:      gin.New(),
		logger:      logger,
		assessments: assessments,
		training:    training,
		repo:        repo,
		store:       store,
		metrics:     NewMetrics(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", s.metrics.Handler())

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/trials/:trial_id/assess", s.handleAssess)
		v1.POST("/trials/:trial_id/upload", s.handleUpload)
		v1.GET("/trials/:trial_id/assessments", s.handleListAssessments)
		v1.GET("/assessments/:id", s.handleGetAssessment)
		v1.GET("/assessments/:id/report", s.handleAssessmentReport)
		v1.POST("/models/retrain", s.handleRetrain)
		v1.GET("/models/current", s.handleCurrentModel)
	}
}

// Start runs the HTTP server on the given address
func (s *Server) Start(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if bundle := s.store.Current(); bundle != nil {
		status["model_version"] = bundle.Version
	} else {
		status["model_version"] = ""
	}
	c.JSON(http.StatusOK, status)
}
