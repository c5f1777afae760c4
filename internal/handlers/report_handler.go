package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/allforone/afo-portal/internal/middleware"
	"github.com/allforone/afo-portal/internal/models"
	"github.com/allforone/afo-portal/internal/repository"
	"github.com/allforone/afo-portal/internal/services"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	cotisationService *services.CotisationService
	reportService     *services.ReportService
	exportService     *services.ExportService
	archiveService    *services.ArchiveService
}

func NewReportHandler(cotisationService *services.CotisationService, reportService *services.ReportService, exportService *services.ExportService, archiveService *services.ArchiveService) *ReportHandler {
	return &ReportHandler{
		cotisationService: cotisationService,
		reportService:     reportService,
		exportService:     exportService,
		archiveService:    archiveService,
	}
}

// send streams a report as an attachment and archives a copy in the
// background.
func (h *ReportHandler) send(c *gin.Context, report *services.Report) {
	if h.archiveService != nil {
		h.archiveService.ArchiveAsync(report, middleware.GetPrincipal(c).User.ID)
	}
	c.Header("Content-Disposition", contentDisposition(report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}

// contentDisposition builds an attachment header with a quoted ASCII
// filename and the RFC 5987 UTF-8 form for accented month names.
func contentDisposition(name string) string {
	var fallback, encoded strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			fallback.WriteByte('_')
		} else {
			fallback.WriteRune(r)
		}
	}
	for _, b := range []byte(name) {
		if isAttrChar(b) {
			encoded.WriteByte(b)
		} else {
			fmt.Fprintf(&encoded, "%%%02X", b)
		}
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback.String(), encoded.String())
}

func isAttrChar(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", b) >= 0
}

// Monthly renders the PDF report of one month.
func (h *ReportHandler) Monthly(c *gin.Context) {
	mois := c.Param("mois")
	if _, ok := models.ParseMonth(mois); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le mois doit être au format AAAA-MM"})
		return
	}

	snap, err := h.cotisationService.Snapshot(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	stat, ok := services.FindMonth(services.ComputeMonthlyStats(snap.Dues), mois)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune cotisation pour " + services.MonthLong(mois)})
		return
	}

	report, err := h.reportService.MonthlyReport(stat, snap.Dues, snap.Members)
	if err != nil {
		respondError(c, err)
		return
	}
	h.send(c, report)
}

// Global renders the PDF report over every month.
func (h *ReportHandler) Global(c *gin.Context) {
	snap, err := h.cotisationService.Snapshot(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.reportService.GlobalReport(services.ComputeMonthlyStats(snap.Dues), snap.Dues, snap.Members, services.ComputeGlobalStats(snap.Dues))
	if err != nil {
		respondError(c, err)
		return
	}
	h.send(c, report)
}

// Export downloads every dues record as xlsx (default) or csv.
func (h *ReportHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", models.ReportXLSX))
	if format != models.ReportXLSX && format != models.ReportCSV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format non supporté (xlsx ou csv)"})
		return
	}

	snap, err := h.cotisationService.Snapshot(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var report *services.Report
	if format == models.ReportCSV {
		report, err = h.exportService.DuesCSV(snap.Dues, snap.Members)
	} else {
		report, err = h.exportService.DuesWorkbook(services.ComputeMonthlyStats(snap.Dues), snap.Dues, snap.Members, services.ComputeGlobalStats(snap.Dues))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.send(c, report)
}

// Archives lists the archived report files.
func (h *ReportHandler) Archives(c *gin.Context) {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		query.PerPage = perPage
	}
	if kind := c.Query("kind"); kind != "" {
		query.Filters["kind"] = kind
	}
	if mois := c.Query("mois"); mois != "" {
		query.Filters["mois"] = mois
	}

	list, err := h.archiveService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ArchiveDownload re-downloads an archived report.
func (h *ReportHandler) ArchiveDownload(c *gin.Context) {
	archive, data, err := h.archiveService.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(archive.FileName))
	c.Data(http.StatusOK, services.ContentTypeFor(archive.Kind), data)
}
