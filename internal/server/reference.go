package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/haulbiz/dispatch/internal/orgcontext"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/haulbiz/dispatch/pkg/repository"
	"gorm.io/gorm"
)

// refStores holds the tenant reference stores served by the CRUD routes.
type refStores struct {
	customers repository.Repository[referencedomain.Customer]
	sites     repository.Repository[referencedomain.Site]
	materials repository.Repository[referencedomain.Material]
	trucks    repository.Repository[referencedomain.Truck]
	drivers   repository.Repository[referencedomain.Driver]
	trailers  repository.Repository[referencedomain.Trailer]
}

func newRefStores(db *gorm.DB) refStores {
	return refStores{
		customers: repository.ProvideStore[referencedomain.Customer](db),
		sites:     repository.ProvideStore[referencedomain.Site](db),
		materials: repository.ProvideStore[referencedomain.Material](db),
		trucks:    repository.ProvideStore[referencedomain.Truck](db),
		drivers:   repository.ProvideStore[referencedomain.Driver](db),
		trailers:  repository.ProvideStore[referencedomain.Trailer](db),
	}
}

func (s *Server) registerReferenceRoutes(v1 *gin.RouterGroup) {
	customers := v1.Group("/customers")
	{
		customers.POST("", s.CreateCustomer)
		customers.GET("", s.ListCustomers)
		customers.GET("/:id", s.GetCustomer)
	}

	sites := v1.Group("/sites")
	{
		sites.POST("", s.CreateSite)
		sites.GET("", s.ListSites)
		sites.GET("/:id", s.GetSite)
	}

	materials := v1.Group("/materials")
	{
		materials.POST("", s.CreateMaterial)
		materials.GET("", s.ListMaterials)
		materials.GET("/:id", s.GetMaterial)
	}

	trucks := v1.Group("/trucks")
	{
		trucks.POST("", s.CreateTruck)
		trucks.GET("", s.ListTrucks)
		trucks.GET("/:id", s.GetTruck)
	}

	drivers := v1.Group("/drivers")
	{
		drivers.POST("", s.CreateDriver)
		drivers.GET("", s.ListDrivers)
		drivers.GET("/:id", s.GetDriver)
	}

	trailers := v1.Group("/trailers")
	{
		trailers.POST("", s.CreateTrailer)
		trailers.GET("", s.ListTrailers)
		trailers.GET("/:id", s.GetTrailer)
	}
}

func orgFromRequest(c *gin.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		return 0, orgcontext.ErrTenantContextMissing
	}
	return orgID, nil
}

// parseRefID maps malformed and unknown IDs to the same outcome.
func parseRefID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0, referencedomain.ErrNotFound
	}
	return id, nil
}

type createCustomerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	TaxNumber string `json:"tax_number"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}

	item := &referencedomain.Customer{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		TaxNumber: strings.TrimSpace(req.TaxNumber),
	}
	if err := s.refs.customers.Create(c.Request.Context(), item); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListCustomers(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.refs.customers.Find(c.Request.Context(), &referencedomain.Customer{OrgID: orgID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetCustomer(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	id, err := parseRefID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.registry.Customer(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type createSiteRequest struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

func (s *Server) CreateSite(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}

	item := &referencedomain.Site{
		ID:      s.genID.Generate(),
		OrgID:   orgID,
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Lat:     req.Lat,
		Lng:     req.Lng,
	}
	if err := s.refs.sites.Create(c.Request.Context(), item); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListSites(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.refs.sites.Find(c.Request.Context(), &referencedomain.Site{OrgID: orgID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetSite(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	id, err := parseRefID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.registry.Site(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type createMaterialRequest struct {
	Name        string                      `json:"name"`
	BillingUnit referencedomain.BillingUnit `json:"billing_unit"`
}

func (s *Server) CreateMaterial(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}
	if !referencedomain.ValidUnit(req.BillingUnit) {
		AbortWithError(c, referencedomain.ErrInvalidUnit)
		return
	}

	item := &referencedomain.Material{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Name:        strings.TrimSpace(req.Name),
		BillingUnit: req.BillingUnit,
	}
	if err := s.refs.materials.Create(c.Request.Context(), item); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListMaterials(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.refs.materials.Find(c.Request.Context(), &referencedomain.Material{OrgID: orgID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetMaterial(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	id, err := parseRefID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.registry.Material(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type createTruckRequest struct {
	PlateNumber      string     `json:"plate_number"`
	Model            string     `json:"model"`
	InsuranceExpiry  *time.Time `json:"insurance_expiry"`
	InspectionExpiry *time.Time `json:"inspection_expiry"`
}

func (s *Server) CreateTruck(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createTruckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.PlateNumber) == "" {
		AbortWithError(c, newValidationError("plate_number", "required", "plate_number is required"))
		return
	}

	item := &referencedomain.Truck{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		PlateNumber:      strings.TrimSpace(req.PlateNumber),
		Model:            strings.TrimSpace(req.Model),
		InsuranceExpiry:  req.InsuranceExpiry,
		InspectionExpiry: req.InspectionExpiry,
	}
	if err := s.refs.trucks.Create(c.Request.Context(), item); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListTrucks(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.refs.trucks.Find(c.Request.Context(), &referencedomain.Truck{OrgID: orgID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetTruck(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	id, err := parseRefID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.registry.Truck(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type createDriverRequest struct {
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	LicenseNumber string     `json:"license_number"`
	LicenseExpiry *time.Time `json:"license_expiry"`
}

func (s *Server) CreateDriver(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}

	item := &referencedomain.Driver{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Name:          strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		LicenseExpiry: req.LicenseExpiry,
	}
	if err := s.refs.drivers.Create(c.Request.Context(), item); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListDrivers(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.refs.drivers.Find(c.Request.Context(), &referencedomain.Driver{OrgID: orgID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetDriver(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	id, err := parseRefID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.registry.Driver(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

type createTrailerRequest struct {
	PlateNumber string `json:"plate_number"`
	Kind        string `json:"kind"`
}

func (s *Server) CreateTrailer(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createTrailerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}
	if strings.TrimSpace(req.PlateNumber) == "" {
		AbortWithError(c, newValidationError("plate_number", "required", "plate_number is required"))
		return
	}

	item := &referencedomain.Trailer{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		PlateNumber: strings.TrimSpace(req.PlateNumber),
		Kind:        strings.TrimSpace(req.Kind),
	}
	if err := s.refs.trailers.Create(c.Request.Context(), item); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) ListTrailers(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.refs.trailers.Find(c.Request.Context(), &referencedomain.Trailer{OrgID: orgID})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetTrailer(c *gin.Context) {
	orgID, err := orgFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	id, err := parseRefID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.registry.Trailer(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}
