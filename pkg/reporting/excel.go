package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantbyte/signal-fusion-bot/internal/risk"
)

// ExcelReporter writes the trade history to an Excel workbook.
type ExcelReporter struct{}

func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteTradeHistory writes one row per closed trade plus a summary
// sheet. The parent directory is created if missing.
func (r *ExcelReporter) WriteTradeHistory(trades []risk.Position, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"
	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	headers := []string{"Opened", "Closed", "Symbol", "Side", "Size",
		"Entry Price", "Exit Price", "Stop Loss", "Take Profit", "PnL", "Close Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(tradesSheet, cell, h)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	fx.SetCellStyle(tradesSheet, "A1", endHeader, headerStyle)

	totalPnL := 0.0
	wins, losses := 0, 0
	for i, tr := range trades {
		row := i + 2
		values := []interface{}{
			tr.OpenedAt.Format("2006-01-02 15:04:05"),
			tr.ClosedAt.Format("2006-01-02 15:04:05"),
			tr.Symbol,
			string(tr.Side),
			tr.Size,
			tr.EntryPrice,
			tr.ExitPrice,
			tr.StopLoss,
			tr.TakeProfit,
			tr.PnL,
			tr.CloseReason,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			fx.SetCellValue(tradesSheet, cell, v)
		}

		totalPnL += tr.PnL
		if tr.PnL > 0 {
			wins++
		} else if tr.PnL < 0 {
			losses++
		}
	}

	winRate := 0.0
	if len(trades) > 0 {
		winRate = float64(wins) / float64(len(trades)) * 100
	}
	summary := [][]interface{}{
		{"Total Trades", len(trades)},
		{"Winning Trades", wins},
		{"Losing Trades", losses},
		{"Win Rate", fmt.Sprintf("%.1f%%", winRate)},
		{"Total PnL", totalPnL},
	}
	for i, row := range summary {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			fx.SetCellValue(summarySheet, cell, v)
		}
	}

	return fx.SaveAs(path)
}
