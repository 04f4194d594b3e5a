package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/schema"
	"github.com/vodworks/catalog-backend/internal/services"
	"github.com/vodworks/catalog-backend/internal/tasks"
)

type ImportExportHandler struct {
	log           *logger.Logger
	importService services.ImportService
	exportService services.ExportService
	taskStore     *tasks.Store
}

func NewImportExportHandler(
	log *logger.Logger,
	isvc services.ImportService,
	esvc services.ExportService,
	taskStore *tasks.Store,
) *ImportExportHandler {
	return &ImportExportHandler{
		log:           log.With("handler", "ImportExportHandler"),
		importService: isvc,
		exportService: esvc,
		taskStore:     taskStore,
	}
}

// POST /api/import
//
// Multipart upload: "file" is the editorial workbook, "tenants" a comma
// separated list of tenant codes to synthesize projections for. Responds
// with a task id immediately; episode generation continues in the
// background.
func (h *ImportExportHandler) ImportWorkbook(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	tenantCodes := splitCSV(c.PostForm("tenants"))
	if len(tenantCodes) == 0 {
		RespondError(c, http.StatusBadRequest, "missing_tenants", errors.New("at least one tenant code is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()

	taskID, err := h.importService.ImportWorkbook(c.Request.Context(), f, tenantCodes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, schema.ErrUnknownTenant) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "import_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
}

// GET /api/tasks/:id
func (h *ImportExportHandler) GetTask(c *gin.Context) {
	task, ok := h.taskStore.Get(c.Param("id"))
	if !ok {
		RespondError(c, http.StatusNotFound, "task_not_found", errors.New("unknown or expired task id"))
		return
	}
	RespondOK(c, task)
}

// GET /api/tenants/:tenant/export
//
// Streams the tenant's delivery workbook. "titles" narrows the export to a
// comma separated list of title names; omitted means everything.
func (h *ImportExportHandler) ExportWorkbook(c *gin.Context) {
	titles := splitCSV(c.Query("titles"))

	f, name, err := h.exportService.Export(c.Request.Context(), c.Param("tenant"), titles)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, schema.ErrUnknownTenant) {
			status = http.StatusNotFound
		}
		RespondError(c, status, "export_failed", err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename*=UTF-8''`+url.PathEscape(name))
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("failed to stream workbook", "error", err)
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
