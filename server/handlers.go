package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
	"github.com/trigtutor/tutor/knowledge"
)

// Handlers implements the HTTP endpoints.
type Handlers struct {
	solver  Solver
	holder  *knowledge.Holder
	timeout time.Duration
}

func NewHandlers(solver Solver, holder *knowledge.Holder, timeout time.Duration) *Handlers {
	return &Handlers{solver: solver, holder: holder, timeout: timeout}
}

type SolveRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type GraphRequest struct {
	Equation string `json:"equation" binding:"required"`
	// Unit is "degrees" or "radians"; empty uses radians.
	Unit      string   `json:"unit,omitempty"`
	DomainMin *float64 `json:"domain_min,omitempty"`
	DomainMax *float64 `json:"domain_max,omitempty"`
}

type GraphResponse struct {
	Equation   string           `json:"equation"`
	GraphImage string           `json:"graph_image"`
	Properties graph.Properties `json:"properties"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) Solve(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question is required"})
		return
	}
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	c.JSON(http.StatusOK, h.solver.Solve(ctx, req.Question, req.SessionID))
}

func (h *Handlers) Graph(c *gin.Context) {
	var req GraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "equation is required"})
		return
	}
	expr, err := equation.Parse(req.Equation)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}
	var domain *graph.Domain
	if req.DomainMin != nil && req.DomainMax != nil {
		if *req.DomainMin >= *req.DomainMax {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "domain_min must be below domain_max"})
			return
		}
		domain = &graph.Domain{Min: *req.DomainMin, Max: *req.DomainMax}
	}
	rendering, err := h.solver.Renderer().Render(expr, domain, equation.ParseUnit(req.Unit))
	if err != nil {
		logger.Warnf("server: render %q: %v", req.Equation, err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, GraphResponse{
		Equation:   "y = " + expr.String(),
		GraphImage: rendering.DataURI(),
		Properties: rendering.Properties,
	})
}

func (h *Handlers) ResetSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "session id is required"})
		return
	}
	if err := h.solver.Reset(c.Request.Context(), id); err != nil {
		logger.Errorf("server: reset session %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to reset session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.holder != nil {
		if b := h.holder.Load(); b != nil {
			resp["knowledge_entries"] = b.Len()
			resp["similarity_threshold"] = b.Threshold()
		}
	}
	c.JSON(http.StatusOK, resp)
}
