package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
)

func (s *Server) CreatePriceEntry(c *gin.Context) {
	var req pricelistdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	item, err := s.pricelistSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListPriceEntries(c *gin.Context) {
	items, err := s.pricelistSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetPriceEntry(c *gin.Context) {
	item, err := s.pricelistSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type resolvePriceRequest struct {
	CustomerID  string                      `json:"customer_id"`
	MaterialID  string                      `json:"material_id"`
	BillingUnit referencedomain.BillingUnit `json:"billing_unit"`
	FromSiteID  *string                     `json:"from_site_id"`
	ToSiteID    *string                     `json:"to_site_id"`
	AsOf        *time.Time                  `json:"as_of"`
}

func (s *Server) ResolvePrice(c *gin.Context) {
	var req resolvePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		AbortWithError(c, pricelistdomain.ErrInvalidCustomer)
		return
	}
	materialID, err := snowflake.ParseString(req.MaterialID)
	if err != nil {
		AbortWithError(c, pricelistdomain.ErrInvalidMaterial)
		return
	}

	resolve := pricelistdomain.ResolveRequest{
		CustomerID:  customerID,
		MaterialID:  materialID,
		BillingUnit: req.BillingUnit,
		AsOf:        req.AsOf,
	}
	if req.FromSiteID != nil {
		id, err := snowflake.ParseString(*req.FromSiteID)
		if err != nil {
			AbortWithError(c, pricelistdomain.ErrInvalidSite)
			return
		}
		resolve.FromSiteID = &id
	}
	if req.ToSiteID != nil {
		id, err := snowflake.ParseString(*req.ToSiteID)
		if err != nil {
			AbortWithError(c, pricelistdomain.ErrInvalidSite)
			return
		}
		resolve.ToSiteID = &id
	}

	item, err := s.pricelistSvc.Resolve(c.Request.Context(), resolve)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}
