package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/repos"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/services"
	"github.com/vodworks/catalog-backend/internal/types"
)

type CatalogHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, csvc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:            log.With("handler", "CatalogHandler"),
		catalogService: csvc,
	}
}

// POST /api/records
func (h *CatalogHandler) CreateRecord(c *gin.Context) {
	var record types.ContentRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.catalogService.CreateRecord(c.Request.Context(), nil, &record)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /api/records
func (h *CatalogHandler) ListRecords(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 50)
	keyword := c.Query("keyword")

	records, total, err := h.catalogService.ListRecords(c.Request.Context(), offset, limit, keyword)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondPage(c, records, total)
}

// GET /api/records/:id
func (h *CatalogHandler) GetRecord(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	record, err := h.catalogService.GetRecord(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repos.ErrNotFound) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "get_failed", err)
		return
	}
	RespondOK(c, record)
}

// PUT /api/records/:id?tenants=a,b
//
// The edit is applied and every tenant projection derived from the record
// is reconciled in the same transaction; the response reports what each
// reconciliation did. Tenants listed in the query that have no projection
// yet get one created.
func (h *CatalogHandler) UpdateRecord(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var record types.ContentRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	tenants := splitCSV(c.Query("tenants"))
	updated, results, err := h.catalogService.UpdateRecord(c.Request.Context(), id, &record, tenants)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repos.ErrNotFound) || errors.Is(err, schema.ErrUnknownTenant) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "update_failed", err)
		return
	}
	RespondOK(c, gin.H{"record": updated, "reconciled": results})
}

// DELETE /api/records/:id
func (h *CatalogHandler) DeleteRecord(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.catalogService.DeleteRecord(c.Request.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repos.ErrNotFound) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/tenants/:tenant/synthesize
func (h *CatalogHandler) SynthesizeTitles(c *gin.Context) {
	var body struct {
		Titles []string `json:"titles"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	headers, err := h.catalogService.SynthesizeTitles(c.Request.Context(), c.Param("tenant"), body.Titles)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, schema.ErrUnknownTenant) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "synthesize_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": headers})
}

// GET /api/tenants/:tenant/headers
func (h *CatalogHandler) ListHeaders(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 50)

	headers, total, err := h.catalogService.ListHeaders(c.Request.Context(), c.Param("tenant"), offset, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, schema.ErrUnknownTenant) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "list_failed", err)
		return
	}
	RespondPage(c, headers, total)
}

// GET /api/headers/:id
func (h *CatalogHandler) GetHeader(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	header, episodes, err := h.catalogService.GetHeader(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repos.ErrNotFound) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "get_failed", err)
		return
	}
	RespondOK(c, gin.H{"header": header, "episodes": episodes})
}

func idParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
