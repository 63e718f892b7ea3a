package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aescanero/botutils/internal/application/state"
	"github.com/aescanero/botutils/pkg/codec"
	"github.com/aescanero/botutils/pkg/ports"
	"github.com/aescanero/botutils/pkg/resolve"
)

// StatePutRequest represents a typed state write
type StatePutRequest struct {
	Module string          `json:"module" binding:"required"`
	Type   string          `json:"type" binding:"required"`
	Value  json.RawMessage `json:"value" binding:"required"`
}

// StateResponse represents a decoded state entry
type StateResponse struct {
	Key   string `json:"key"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	checks := gin.H{
		"resolver_listeners": s.domain.ListenerCount(),
	}
	code, status := http.StatusOK, "healthy"

	if s.health != nil {
		resolver := s.health.GetStatus()
		checks["resolver"] = resolver
		if !resolver.Healthy {
			code, status = http.StatusServiceUnavailable, "unhealthy"
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleGetSettings returns the resolved bot settings
func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings)
}

// handleListModules lists designated and loaded modules
func (s *Server) handleListModules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"designated":       s.state.Modules(),
		"loaded":           s.domain.Loaded(),
		"active_listeners": s.domain.ListenerCount(),
	})
}

// handleListState lists stored state keys
func (s *Server) handleListState(c *gin.Context) {
	keys, err := s.state.Keys(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list state", zap.Error(err))
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keys":  keys,
		"total": len(keys),
	})
}

// handlePutState stores a typed value
func (s *Server) handlePutState(c *gin.Context) {
	var req StatePutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	m, err := s.state.Module(req.Module)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if err := resolve.ValidateTypeName(req.Type); err != nil {
		s.writeError(c, err)
		return
	}

	t, ok := m.Lookup(req.Type)
	if !ok {
		s.writeError(c, codec.ErrUnknownType)
		return
	}

	value := reflect.New(t).Interface()
	if err := json.Unmarshal(req.Value, value); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_VALUE",
				Message: err.Error(),
			},
		})
		return
	}

	key, err := s.state.Save(c.Request.Context(), c.Param("key"), m, req.Type, value)
	if err != nil {
		s.logger.Error("failed to save state", zap.Error(err))
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		Key:   key,
		Type:  codec.QualifiedTypeName(req.Type, m.FullName()),
		Value: value,
	})
}

// handleGetState returns a stored value, decoded when a module is given
func (s *Server) handleGetState(c *gin.Context) {
	key := c.Param("key")
	moduleName := c.Query("module")

	if moduleName == "" {
		data, err := s.state.LoadRaw(c.Request.Context(), key)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	m, err := s.state.Module(moduleName)
	if err != nil {
		s.writeError(c, err)
		return
	}

	value, err := s.state.Load(c.Request.Context(), key, m)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		Key:   key,
		Value: value,
	})
}

// handleDeleteState deletes a stored value
func (s *Server) handleDeleteState(c *gin.Context) {
	if err := s.state.Delete(c.Request.Context(), c.Param("key")); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError maps service errors to HTTP responses
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	switch {
	case errors.Is(err, ports.ErrStateNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, state.ErrUnknownModule):
		status, code = http.StatusNotFound, "UNKNOWN_MODULE"
	case errors.Is(err, codec.ErrUnknownType):
		status, code = http.StatusUnprocessableEntity, "UNKNOWN_TYPE"
	case errors.Is(err, resolve.ErrModuleNotFound):
		status, code = http.StatusUnprocessableEntity, "UNRESOLVED_MODULE"
	case errors.Is(err, codec.ErrInvalidEnvelope):
		status, code = http.StatusUnprocessableEntity, "INVALID_ENVELOPE"
	case errors.Is(err, state.ErrInvalidKey):
		status, code = http.StatusBadRequest, "INVALID_KEY"
	case errors.Is(err, resolve.ErrInvalidIdentity):
		status, code = http.StatusBadRequest, "INVALID_MODULE"
	case errors.Is(err, resolve.ErrInvalidTypeName):
		status, code = http.StatusBadRequest, "INVALID_TYPE"
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
