package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
	"github.com/joseph-ayodele/boletos-tracker/internal/repository"
	"github.com/joseph-ayodele/boletos-tracker/internal/utils"
)

// ContentTypeXLSX is the MIME type of the workbook produced by ExportBillsXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Boletos"

// Service is a tiny façade over the bill store that produces XLSX bytes for exports.
type Service struct {
	store  repository.BillStore
	logger *slog.Logger
}

func NewService(store repository.BillStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportBillsXLSX returns an XLSX workbook (as bytes) with every bill in due-date order.
func (s *Service) ExportBillsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	bills, err := s.store.SelectAll(ctx)
	if err != nil {
		return nil, common.WrapError(err, "query bills")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close", "error", err)
		}
	}()

	// rename the default sheet instead of adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	headers := []string{
		"ID",
		"Fornecedor",
		"Valor",
		"Vencimento",
		"Status",
		"Data Pagamento",
		"Anexo",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	for _, b := range bills {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		write(1, b.ID)
		write(2, b.Supplier)
		// decimal text, never a float
		write(3, b.Amount.StringFixed(2))
		write(4, utils.FormatYMD(b.DueDate))
		write(5, string(b.Status))
		if b.PaymentDate != nil {
			write(6, utils.FormatYMD(*b.PaymentDate))
		} else {
			write(6, "")
		}
		write(7, utils.StrOrEmpty(b.Attachment))

		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)  // id
	_ = f.SetColWidth(sheetName, "B", "B", 32) // supplier
	_ = f.SetColWidth(sheetName, "C", "C", 14) // amount
	_ = f.SetColWidth(sheetName, "D", "F", 14) // dates, status
	_ = f.SetColWidth(sheetName, "G", "G", 40) // attachment

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(bills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
