package reportshandler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"peopledesk/internal/apperror"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/domain/leave"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
)

type Handler struct {
	Leave *leave.Service
}

func NewHandler(leaveSvc *leave.Service) *Handler {
	return &Handler{Leave: leaveSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/balances", h.handleBalances)
	})
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			api.Fail(w, http.StatusBadRequest, apperror.CodeValidation, "invalid year", middleware.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}

	rows, err := h.Leave.ReportBalances(r.Context(), year)
	if err != nil {
		api.FromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "csv":
		h.writeCSV(w, year, rows)
	case "pdf":
		h.writePDF(w, year, rows)
	default:
		if rows == nil {
			rows = []leave.BalanceSummary{}
		}
		api.Success(w, rows, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) writeCSV(w http.ResponseWriter, year int, rows []leave.BalanceSummary) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leave-balances-%d.csv", year))

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"employee_id", "year", "annual_total", "annual_used", "annual_remaining", "sick_total", "sick_used", "sick_remaining"}); err != nil {
		slog.Warn("balance report csv header write failed", "err", err)
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.EmployeeID,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.AnnualTotal),
			strconv.Itoa(row.AnnualUsed),
			strconv.Itoa(row.AnnualRemaining),
			strconv.Itoa(row.SickTotal),
			strconv.Itoa(row.SickUsed),
			strconv.Itoa(row.SickRemaining),
		}); err != nil {
			slog.Warn("balance report csv row write failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("balance report csv flush failed", "err", err)
	}
}

func (h *Handler) writePDF(w http.ResponseWriter, year int, rows []leave.BalanceSummary) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Leave Balances %d", year))
	pdf.Ln(12)

	headers := []string{"Employee", "Annual Total", "Annual Used", "Annual Left", "Sick Total", "Sick Used", "Sick Left"}
	widths := []float64{80, 30, 30, 30, 30, 30, 30}

	pdf.SetFont("Arial", "B", 9)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		cells := []string{
			row.EmployeeID,
			strconv.Itoa(row.AnnualTotal),
			strconv.Itoa(row.AnnualUsed),
			strconv.Itoa(row.AnnualRemaining),
			strconv.Itoa(row.SickTotal),
			strconv.Itoa(row.SickUsed),
			strconv.Itoa(row.SickRemaining),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leave-balances-%d.pdf", year))
	if err := pdf.Output(w); err != nil {
		slog.Warn("balance report pdf write failed", "err", err)
	}
}
