package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	statementdomain "github.com/haulbiz/dispatch/internal/statement/domain"
)

func (s *Server) GenerateStatement(c *gin.Context) {
	var req statementdomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	item, err := s.statementSvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListStatements(c *gin.Context) {
	items, err := s.statementSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetStatement(c *gin.Context) {
	item, lines, err := s.statementSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item, "lines": lines})
}

func (s *Server) SendStatement(c *gin.Context) {
	item, err := s.statementSvc.MarkSent(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}
