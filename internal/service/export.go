package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"deskhive/internal/domain"
	"deskhive/internal/repository"

	"github.com/xuri/excelize/v2"
)

// reservationExportHeader columns of the admin reservations export.
var reservationExportHeader = []string{
	"Reservation ID",
	"Workspace",
	"Owner User ID",
	"Start Time",
	"End Time",
	"People",
	"Guests",
	"Status",
}

// ExportCompanyReservations renders every live reservation of the actor's
// company (matching the filters) as an .xlsx workbook. Admin-only.
func ExportCompanyReservations(
	ctx context.Context,
	actor domain.Actor,
	reservations repository.ReservationsRepository,
	workspaces repository.WorkspacesRepository,
	filters repository.ReservationFilters,
) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	// The export covers every matching reservation; page through the
	// repository until exhausted. 100 is the repository's page ceiling.
	const exportPageSize = 100
	var list []*domain.Reservation
	for page := 1; ; page++ {
		batch, total, err := reservations.ListByCompany(ctx, actor.CompanyID, filters, page, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load reservations for export: %w", err)
		}
		list = append(list, batch...)
		if len(batch) == 0 || len(list) >= total {
			break
		}
	}

	// Resolve workspace names once per workspace.
	names := map[string]string{}
	for _, res := range list {
		if _, ok := names[res.WorkspaceID]; ok {
			continue
		}
		ws, err := workspaces.GetWorkspace(ctx, actor.CompanyID, res.WorkspaceID)
		if err != nil {
			names[res.WorkspaceID] = res.WorkspaceID
			continue
		}
		names[res.WorkspaceID] = ws.Name
	}

	f := excelize.NewFile()
	// WriteTo needs the file open; Close only on the error paths.

	sheetName := "Reservations"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range reservationExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	const timeLayout = "2006-01-02 15:04"
	for i, res := range list {
		row := i + 2
		values := []any{
			res.ReservationID,
			names[res.WorkspaceID],
			res.UserID,
			res.StartTime.Format(timeLayout),
			res.EndTime.Format(timeLayout),
			res.NumberOfPeople,
			strings.Join(res.Guests, ", "),
			res.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	_ = f.Close()
	return buf.Bytes(), nil
}
