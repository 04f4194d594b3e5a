package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/services"
)

type ScanHandler struct {
	log         *logger.Logger
	scanService services.ScanService
}

func NewScanHandler(log *logger.Logger, ssvc services.ScanService) *ScanHandler {
	return &ScanHandler{
		log:         log.With("handler", "ScanHandler"),
		scanService: ssvc,
	}
}

// POST /api/scan/import
//
// Multipart upload of the scan inventory, CSV or XLSX by file extension.
// "replace=true" swaps the whole inventory; the default appends, skipping
// entries already known.
func (h *ScanHandler) ImportInventory(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	replace := c.Query("replace") == "true" || c.PostForm("replace") == "true"

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()

	var summary *services.ScanImportSummary
	if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		summary, err = h.scanService.ImportCSV(c.Request.Context(), f, replace)
	} else {
		summary, err = h.scanService.ImportWorkbook(c.Request.Context(), f, replace)
	}
	if err != nil {
		RespondError(c, http.StatusBadRequest, "scan_import_failed", err)
		return
	}
	RespondOK(c, summary)
}

// GET /api/scan/stats
func (h *ScanHandler) Stats(c *gin.Context) {
	total, err := h.scanService.Count(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	RespondOK(c, gin.H{"entries": total})
}
