package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HappySolarCoder/happy-solar-referrals/internal/domain"
)

// ReferralExportHeader is the column order of the admin XLSX export.
var ReferralExportHeader = []string{
	"ID",
	"Created At",
	"Updated At",
	"Referrer Name",
	"Referrer Email",
	"Lead Name",
	"Lead Address",
	"Lead Phone",
	"Lead Email",
	"Lead Notes",
	"Status",
	"Assigned Setter",
	"Incentive Amount",
	"Incentive Status",
	"Last Contact Date",
}

// Export handles GET /referrals/export: the whole collection as an XLSX
// attachment for offline incentive reconciliation.
func (h *ReferralHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.FetchAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := GenerateReferralsExport(records)
	if err != nil {
		h.writeError(w, err)
		return
	}

	filename := fmt.Sprintf("referrals-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GenerateReferralsExport renders records into an XLSX workbook with a
// bold header row, one referral per row.
func GenerateReferralsExport(records []domain.Referral) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() here: WriteTo needs the file open.

	sheetName := "Referrals"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ReferralExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, rec := range records {
		row := []any{
			rec.ID,
			rec.CreatedAt.Format(time.RFC3339),
			formatOptionalTime(rec.UpdatedAt),
			rec.ReferrerName,
			rec.ReferrerEmail,
			rec.LeadName,
			rec.LeadAddress,
			rec.LeadPhone,
			rec.LeadEmail,
			rec.LeadNotes,
			rec.Status,
			rec.AssignedSetter,
			rec.IncentiveAmount,
			rec.IncentiveStatus,
			formatOptionalTime(rec.LastContactDate),
		}
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	out, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return out.Bytes(), nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
