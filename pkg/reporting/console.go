package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantbyte/signal-fusion-bot/internal/risk"
)

// ConsoleReporter renders portfolio state as terminal tables.
type ConsoleReporter struct{}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintOpenPositions renders the open positions with their live PnL at
// the supplied prices.
func (r *ConsoleReporter) PrintOpenPositions(positions []risk.Position, prices map[string]float64) {
	if len(positions) == 0 {
		fmt.Println("No open positions")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Open Positions")
	t.AppendHeader(table.Row{"Symbol", "Side", "Size", "Entry", "Stop", "Target", "PnL", "PnL %"})

	for _, pos := range positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			price = pos.EntryPrice
		}
		pnl := pos.UnrealizedPnL(price)
		t.AppendRow(table.Row{
			pos.Symbol,
			pos.Side,
			fmt.Sprintf("%.6f", pos.Size),
			fmt.Sprintf("%.4f", pos.EntryPrice),
			fmt.Sprintf("%.4f", pos.StopLoss),
			fmt.Sprintf("%.4f", pos.TakeProfit),
			colorPnL(pnl, fmt.Sprintf("%+.2f", pnl)),
			colorPnL(pnl, fmt.Sprintf("%+.2f%%", pos.UnrealizedPnLPercent(price))),
		})
	}
	t.Render()
}

// PrintTradeHistory renders the closed trades newest-last.
func (r *ConsoleReporter) PrintTradeHistory(trades []risk.Position) {
	if len(trades) == 0 {
		fmt.Println("No closed trades")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Trade History")
	t.AppendHeader(table.Row{"Opened", "Closed", "Symbol", "Side", "Entry", "Exit", "PnL", "Reason"})

	totalPnL := 0.0
	wins := 0
	for _, tr := range trades {
		totalPnL += tr.PnL
		if tr.PnL > 0 {
			wins++
		}
		t.AppendRow(table.Row{
			tr.OpenedAt.Format("01-02 15:04"),
			tr.ClosedAt.Format("01-02 15:04"),
			tr.Symbol,
			tr.Side,
			fmt.Sprintf("%.4f", tr.EntryPrice),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			colorPnL(tr.PnL, fmt.Sprintf("%+.2f", tr.PnL)),
			tr.CloseReason,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total",
		colorPnL(totalPnL, fmt.Sprintf("%+.2f", totalPnL)),
		fmt.Sprintf("%d/%d wins", wins, len(trades))})
	t.Render()
}

// PrintRiskSummary renders the portfolio accumulators.
func (r *ConsoleReporter) PrintRiskSummary(balance float64, state risk.RiskState) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Portfolio")
	t.AppendRows([]table.Row{
		{"Balance", fmt.Sprintf("$%.2f", balance)},
		{"Peak Balance", fmt.Sprintf("$%.2f", state.PeakBalance)},
		{"Drawdown", fmt.Sprintf("%.2f%%", state.Drawdown*100)},
		{"Daily Loss", fmt.Sprintf("$%.2f", state.DailyLoss)},
		{"Daily Profit", fmt.Sprintf("$%.2f", state.DailyProfit)},
	})
	t.Render()
}

func colorPnL(pnl float64, s string) string {
	if pnl > 0 {
		return text.FgGreen.Sprint(s)
	}
	if pnl < 0 {
		return text.FgRed.Sprint(s)
	}
	return s
}
