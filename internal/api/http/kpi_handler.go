package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	analytics "maintenance-kpi/internal/analytics/application"
	"maintenance-kpi/internal/analytics/domain/statistic"
	kpiexport "maintenance-kpi/internal/analytics/interfaces"
	"maintenance-kpi/internal/audit"
	"maintenance-kpi/internal/auth"
	"maintenance-kpi/internal/observability/metrics"
)

// KPIReports is the read model served under /api/v1/kpi.
type KPIReports interface {
	StockCompliance(ctx context.Context) (statistic.Compliance, error)
	InventoryTurnover(ctx context.Context, periods int) (statistic.Turnover, error)
	PreventiveReactive(ctx context.Context, periods int, unit statistic.Granularity) ([]statistic.MixPoint, error)
	MTBF(ctx context.Context, equipmentID string) (statistic.MTBFStats, error)
	AverageMaintenanceDuration(ctx context.Context, equipmentID string) (statistic.DurationStats, error)
	OrderFinancials(ctx context.Context, periods int) ([]statistic.FinancialPoint, error)
	OrderCancellationRatio(ctx context.Context) (statistic.CancellationRatio, error)
	SupplierPriceComparison(ctx context.Context) (statistic.PriceComparison, error)
	Dashboard(ctx context.Context, periods int) (*analytics.Dashboard, error)
}

// KPIHandler serves KPI queries and report exports.
type KPIHandler struct {
	reports        KPIReports
	auditLogger    audit.Logger
	logger         *log.Logger
	defaultPeriods int
	exportTitle    string
}

// KPIOption customizes a KPIHandler.
type KPIOption func(*KPIHandler)

// WithDefaultPeriods sets the window count used when ?periods is absent.
func WithDefaultPeriods(periods int) KPIOption {
	return func(h *KPIHandler) {
		if periods > 0 {
			h.defaultPeriods = periods
		}
	}
}

// WithExportTitle sets the title printed on exported reports.
func WithExportTitle(title string) KPIOption {
	return func(h *KPIHandler) {
		h.exportTitle = title
	}
}

// NewKPIHandler constructs a KPIHandler. auditLogger may be nil.
func NewKPIHandler(reports KPIReports, auditLogger audit.Logger, logger *log.Logger, opts ...KPIOption) (*KPIHandler, error) {
	if reports == nil {
		return nil, errors.New("kpi handler: nil reports")
	}
	h := &KPIHandler{
		reports:        reports,
		auditLogger:    auditLogger,
		logger:         logger,
		defaultPeriods: 6,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Routes registers the KPI endpoints on r.
func (h *KPIHandler) Routes(r chi.Router) {
	r.Get("/stock-compliance", h.StockCompliance)
	r.Get("/inventory-turnover", h.InventoryTurnover)
	r.Get("/maintenance-mix", h.MaintenanceMix)
	r.Get("/mtbf", h.MTBF)
	r.Get("/maintenance-duration", h.MaintenanceDuration)
	r.Get("/order-financials", h.OrderFinancials)
	r.Get("/order-cancellations", h.OrderCancellations)
	r.Get("/supplier-prices", h.SupplierPrices)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/export.pdf", h.exportHandler("pdf"))
	r.Get("/export.xlsx", h.exportHandler("xlsx"))
}

// StockCompliance handles GET /api/v1/kpi/stock-compliance.
func (h *KPIHandler) StockCompliance(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.StockCompliance(r.Context())
	if err != nil {
		writeError(w, h.logger, "stock compliance", err)
		return
	}
	writeJSON(w, http.StatusOK, toComplianceDTO(result))
}

// InventoryTurnover handles GET /api/v1/kpi/inventory-turnover?periods=.
func (h *KPIHandler) InventoryTurnover(w http.ResponseWriter, r *http.Request) {
	periods, err := parsePeriods(r, h.defaultPeriods)
	if err != nil {
		writeError(w, h.logger, "inventory turnover", err)
		return
	}
	result, err := h.reports.InventoryTurnover(r.Context(), periods)
	if err != nil {
		writeError(w, h.logger, "inventory turnover", err)
		return
	}
	writeJSON(w, http.StatusOK, toTurnoverDTO(result))
}

// MaintenanceMix handles GET /api/v1/kpi/maintenance-mix?periods=&unit=.
func (h *KPIHandler) MaintenanceMix(w http.ResponseWriter, r *http.Request) {
	periods, err := parsePeriods(r, h.defaultPeriods)
	if err != nil {
		writeError(w, h.logger, "maintenance mix", err)
		return
	}
	unit, err := statistic.ParseGranularity(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, h.logger, "maintenance mix", err)
		return
	}
	result, err := h.reports.PreventiveReactive(r.Context(), periods, unit)
	if err != nil {
		writeError(w, h.logger, "maintenance mix", err)
		return
	}
	writeJSON(w, http.StatusOK, mixDTO{Unit: unit, Series: toMixDTOs(result)})
}

// MTBF handles GET /api/v1/kpi/mtbf?equipment_id=.
func (h *KPIHandler) MTBF(w http.ResponseWriter, r *http.Request) {
	equipmentID := r.URL.Query().Get("equipment_id")
	result, err := h.reports.MTBF(r.Context(), equipmentID)
	if err != nil {
		writeError(w, h.logger, "mtbf", err)
		return
	}
	writeJSON(w, http.StatusOK, mtbfDTO{
		EquipmentID:   equipmentID,
		AverageDays:   result.AverageDays,
		IntervalCount: result.IntervalCount,
	})
}

// MaintenanceDuration handles GET /api/v1/kpi/maintenance-duration?equipment_id=.
func (h *KPIHandler) MaintenanceDuration(w http.ResponseWriter, r *http.Request) {
	equipmentID := r.URL.Query().Get("equipment_id")
	result, err := h.reports.AverageMaintenanceDuration(r.Context(), equipmentID)
	if err != nil {
		writeError(w, h.logger, "maintenance duration", err)
		return
	}
	writeJSON(w, http.StatusOK, durationDTO{
		EquipmentID: equipmentID,
		AverageDays: result.AverageDays,
		TotalDays:   result.TotalDays,
		SampleCount: result.SampleCount,
	})
}

// OrderFinancials handles GET /api/v1/kpi/order-financials?periods=.
func (h *KPIHandler) OrderFinancials(w http.ResponseWriter, r *http.Request) {
	periods, err := parsePeriods(r, h.defaultPeriods)
	if err != nil {
		writeError(w, h.logger, "order financials", err)
		return
	}
	result, err := h.reports.OrderFinancials(r.Context(), periods)
	if err != nil {
		writeError(w, h.logger, "order financials", err)
		return
	}
	writeJSON(w, http.StatusOK, financialsDTO{Series: toFinancialDTOs(result)})
}

// OrderCancellations handles GET /api/v1/kpi/order-cancellations.
func (h *KPIHandler) OrderCancellations(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.OrderCancellationRatio(r.Context())
	if err != nil {
		writeError(w, h.logger, "order cancellations", err)
		return
	}
	writeJSON(w, http.StatusOK, toCancellationDTO(result))
}

// SupplierPrices handles GET /api/v1/kpi/supplier-prices.
func (h *KPIHandler) SupplierPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.reports.SupplierPriceComparison(r.Context())
	if err != nil {
		writeError(w, h.logger, "supplier prices", err)
		return
	}
	writeJSON(w, http.StatusOK, toPriceComparisonDTO(result))
}

// Dashboard handles GET /api/v1/kpi/dashboard?periods=.
func (h *KPIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	periods, err := parsePeriods(r, h.defaultPeriods)
	if err != nil {
		writeError(w, h.logger, "dashboard", err)
		return
	}
	result, err := h.reports.Dashboard(r.Context(), periods)
	if err != nil {
		writeError(w, h.logger, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(result))
}

func (h *KPIHandler) exportHandler(format string) http.HandlerFunc {
	contentType := "application/pdf"
	build := kpiexport.BuildKPIReportPDF
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		build = kpiexport.BuildKPIReportXLSX
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var err error
		defer func() {
			metrics.ObserveExport(format, metrics.ResultOf(err), time.Since(start))
			h.logAudit(r, format, err)
		}()

		periods, err := parsePeriods(r, h.defaultPeriods)
		if err != nil {
			writeError(w, h.logger, "export "+format, err)
			return
		}
		dashboard, err := h.reports.Dashboard(r.Context(), periods)
		if err != nil {
			writeError(w, h.logger, "export "+format, err)
			return
		}
		data, err := build(h.exportTitle, dashboard)
		if err != nil {
			writeError(w, h.logger, "export "+format, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="kpi-report.`+format+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (h *KPIHandler) logAudit(r *http.Request, format string, err error) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"format":  format,
		"periods": r.URL.Query().Get("periods"),
	})
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       audit.ActionKPIExport,
		ResourceType: "kpi_report",
		ResourceID:   format,
		Outcome:      metrics.ResultOf(err),
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if logErr := h.auditLogger.Log(r.Context(), entry); logErr != nil {
		metrics.IncAuditWriteError()
		if h.logger != nil {
			h.logger.Printf("audit write error: action=%s err=%v", entry.Action, logErr)
		}
	}
}
