package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/store"
)

const maxPropertyPageSize = 100

// PropertyHandlers provides HTTP handlers for listing endpoints.
type PropertyHandlers struct {
	store store.PropertyStore
	log   *zerolog.Logger
}

// NewPropertyHandlers creates a new property handlers instance.
func NewPropertyHandlers(st store.PropertyStore, logger *zerolog.Logger) *PropertyHandlers {
	return &PropertyHandlers{
		store: st,
		log:   logger,
	}
}

// CreatePropertyRequest represents the create property request body.
type CreatePropertyRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Address     string `json:"address" binding:"required"`
	City        string `json:"city" binding:"required"`
	MonthlyRent int64  `json:"monthlyRent" binding:"required,gt=0"`
	Bedrooms    int    `json:"bedrooms" binding:"gte=0"`
	Available   *bool  `json:"available"`
}

// PropertyResponse represents a property in API responses.
type PropertyResponse struct {
	ID          int64     `json:"id"`
	LandlordID  int64     `json:"landlordId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	MonthlyRent int64     `json:"monthlyRent"`
	Bedrooms    int       `json:"bedrooms"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
}

func propertyResponse(p *store.Property) PropertyResponse {
	return PropertyResponse{
		ID:          p.ID,
		LandlordID:  p.LandlordID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		MonthlyRent: p.MonthlyRent,
		Bedrooms:    p.Bedrooms,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
	}
}

// CreateProperty handles listing creation by landlords and admins.
// POST /api/properties
func (h *PropertyHandlers) CreateProperty(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		h.log.Error().Msg("user_id not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	if role := store.Role(identity.Role); role != store.RoleLandlord && role != store.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only landlords can create listings"})
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create property request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	property, err := h.store.CreateProperty(c.Request.Context(), &store.Property{
		LandlordID:  identity.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		MonthlyRent: req.MonthlyRent,
		Bedrooms:    req.Bedrooms,
		Available:   available,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to create property")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Int64("property_id", property.ID).Int64("landlord_id", identity.UserID).Msg("property created successfully")
	c.JSON(http.StatusCreated, propertyResponse(property))
}

// GetProperty returns a single listing.
// GET /api/properties/:id
func (h *PropertyHandlers) GetProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid property id"})
		return
	}

	property, err := h.store.GetProperty(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "property not found"})
			return
		}
		h.log.Error().Err(err).Int64("property_id", id).Msg("failed to get property")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, propertyResponse(property))
}

// ListProperties handles listing search.
// GET /api/properties?city=&maxRent=&minBedrooms=&available=&limit=&offset=
func (h *PropertyHandlers) ListProperties(c *gin.Context) {
	filter, err := parsePropertyFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	properties, err := h.store.ListProperties(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list properties")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		response = append(response, propertyResponse(p))
	}

	h.log.Debug().Int("property_count", len(properties)).Msg("properties listed successfully")
	c.JSON(http.StatusOK, response)
}

func parsePropertyFilter(c *gin.Context) (store.PropertyFilter, error) {
	filter := store.PropertyFilter{
		City:  strings.TrimSpace(c.Query("city")),
		Limit: 20,
	}

	intParam := func(name string, dst *int) error {
		raw := c.Query(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return errors.New("invalid " + name)
		}
		*dst = v
		return nil
	}

	if raw := c.Query("maxRent"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return filter, errors.New("invalid maxRent")
		}
		filter.MaxRent = v
	}
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("invalid available")
		}
		filter.AvailableOnly = v
	}
	if err := intParam("minBedrooms", &filter.MinBedrooms); err != nil {
		return filter, err
	}
	if err := intParam("limit", &filter.Limit); err != nil {
		return filter, err
	}
	if err := intParam("offset", &filter.Offset); err != nil {
		return filter, err
	}
	if filter.Limit == 0 || filter.Limit > maxPropertyPageSize {
		filter.Limit = maxPropertyPageSize
	}
	return filter, nil
}
