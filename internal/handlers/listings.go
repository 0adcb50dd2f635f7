package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobgate/api/internal/ids"
	"jobgate/api/internal/middleware"
	"jobgate/api/internal/models"
)

type listingResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Location  string `json:"location"`
	CreatedAt string `json:"createdAt"`
}

// ListListings is readable by every role, visitors included; it exists on
// the authorized group so anonymous and authenticated traffic flow through
// the same middleware chain.
func (h HandlerSet) ListListings(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	listings, err := h.listings.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list listings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing lookup failed"})
		return
	}

	items := make([]listingResponse, 0, len(listings))
	for _, listing := range listings {
		items = append(items, listingResponse{
			ID:        listing.ID,
			Title:     listing.Title,
			Location:  listing.Location,
			CreatedAt: listing.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createListingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (h HandlerSet) CreateListing(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.tokens.UserFor(c.Request.Context(), identity.Token)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	listing := models.Listing{
		ID:          ids.New(),
		EmployerID:  user.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}

	if err := h.listings.Create(c.Request.Context(), listing); err != nil {
		h.log.Error().Err(err).Msg("create listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create listing failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": listing.ID})
}
