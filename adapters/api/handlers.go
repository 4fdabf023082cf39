package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VruddithShetty/TrialEquity/adapters/ingest"
	"github.com/VruddithShetty/TrialEquity/domain/cohort"
	"github.com/VruddithShetty/TrialEquity/domain/core"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/internal/report"
)

type assessRequest struct {
	Participants []cohort.Participant `json:"participants"`
}

type retrainRequest struct {
	Cohorts int   `json:"cohorts"`
	Seed    int64 `json:"seed"`
}

func (s *Server) handleAssess(c *gin.Context) {
	trialID, err := core.ParseTrialID(c.Param("trial_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	record := &cohort.Record{TrialID: trialID, Participants: req.Participants}
	s.runAssessment(c, record)
}

func (s *Server) handleUpload(c *gin.Context) {
	trialID, err := core.ParseTrialID(c.Param("trial_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload file"})
		return
	}

	reader, err := ingest.ForFilename(fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	record, err := reader.Read(c.Request.Context(), file)
	if err != nil {
		s.renderError(c, err)
		return
	}
	record.TrialID = trialID

	s.runAssessment(c, record)
}

func (s *Server) runAssessment(c *gin.Context, record *cohort.Record) {
	start := time.Now()
	result, err := s.assessments.Assess(c.Request.Context(), record)
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.metrics.AssessmentsTotal.WithLabelValues(string(result.Verdict)).Inc()
	s.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetAssessment(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit persistence is not configured"})
		return
	}
	id, err := core.ParseAssessmentID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.repo.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAssessmentReport(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit persistence is not configured"})
		return
	}
	id, err := core.ParseAssessmentID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := s.repo.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(result))
}

func (s *Server) handleListAssessments(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit persistence is not configured"})
		return
	}
	trialID, err := core.ParseTrialID(c.Param("trial_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := s.repo.ListByTrial(c.Request.Context(), trialID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trial_id": trialID, "assessments": results})
}

func (s *Server) handleRetrain(c *gin.Context) {
	var req retrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	result, err := s.training.Train(c.Request.Context(), req.Cohorts, req.Seed)
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.metrics.TrainingRunsTotal.Inc()
	s.metrics.ModelAccuracy.Set(result.Accuracy)
	s.logger.Info("retrained model %s (accuracy %.3f, %d cohorts)",
		result.Version, result.Accuracy, result.Cohorts)

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCurrentModel(c *gin.Context) {
	bundle := s.store.Current()
	if bundle == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model bundle is loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":       bundle.Version,
		"accuracy":      bundle.Accuracy,
		"feature_count": len(bundle.FeatureNames),
		"trained_at":    bundle.TrainedAt,
	})
}

// renderError maps application error codes to HTTP statuses
func (s *Server) renderError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeInsufficientData:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeModelNotTrained:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
