package analytics

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

const (
	priceBarWidth  = 40
	volumeBarWidth = 30
	recentRows     = 10
)

// Analyzer renders plain-text reports over a symbol's trade history.
type Analyzer struct {
	repo port.Repository
}

func NewAnalyzer(repo port.Repository) *Analyzer {
	return &Analyzer{repo: repo}
}

// WriteReport renders the trade overview, summary and per-price volume
// analysis for a symbol.
func (a *Analyzer) WriteReport(ctx context.Context, w io.Writer, symbol string) error {
	trades, err := a.repo.TradesBySymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Fprintf(w, "No trades found for %s.\n", symbol)
		return nil
	}
	writePriceChart(w, symbol, trades)
	writeSummary(w, trades)
	writeVolumeAnalysis(w, trades)
	writeRecentActivity(w, trades)
	return nil
}

func writePriceChart(w io.Writer, symbol string, trades []domain.Trade) {
	sorted := make([]domain.Trade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Price.LessThan(sorted[j].Price)
	})

	minPrice := sorted[0].Price
	maxPrice := sorted[len(sorted)-1].Price

	fmt.Fprintf(w, "TRADE OVERVIEW - %s\n", symbol)
	fmt.Fprintf(w, "Price range: %s - %s\n", minPrice, maxPrice)
	for _, t := range sorted {
		fmt.Fprintf(w, "%-10s |%s| vol %d\n", t.Price, scaledBar(t.Price, minPrice, maxPrice, priceBarWidth), t.Quantity)
	}
	fmt.Fprintln(w)
}

func scaledBar(price, min, max decimal.Decimal, width int) string {
	if max.Equal(min) {
		return strings.Repeat("#", width)
	}
	ratio, _ := price.Sub(min).Div(max.Sub(min)).Float64()
	n := int(ratio*float64(width) + 0.5)
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("#", n) + strings.Repeat(" ", width-n)
}

func writeSummary(w io.Writer, trades []domain.Trade) {
	var totalVolume int64
	totalValue := decimal.Zero
	priceSum := decimal.Zero
	for _, t := range trades {
		totalVolume += t.Quantity
		totalValue = totalValue.Add(t.Value())
		priceSum = priceSum.Add(t.Price)
	}
	avgPrice := priceSum.Div(decimal.NewFromInt(int64(len(trades)))).Round(2)

	fmt.Fprintln(w, "TRADE SUMMARY")
	fmt.Fprintf(w, "Total trades:  %d\n", len(trades))
	fmt.Fprintf(w, "Total volume:  %d shares\n", totalVolume)
	fmt.Fprintf(w, "Total value:   %s\n", totalValue)
	fmt.Fprintf(w, "Average price: %s\n", avgPrice)
	fmt.Fprintln(w)
}

func writeVolumeAnalysis(w io.Writer, trades []domain.Trade) {
	volumeByPrice := make(map[string]int64)
	prices := make(map[string]decimal.Decimal)
	for _, t := range trades {
		k := t.Price.String()
		volumeByPrice[k] += t.Quantity
		prices[k] = t.Price
	}

	keys := make([]string, 0, len(volumeByPrice))
	for k := range volumeByPrice {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return prices[keys[i]].GreaterThan(prices[keys[j]])
	})

	var maxVolume int64 = 1
	for _, v := range volumeByPrice {
		if v > maxVolume {
			maxVolume = v
		}
	}

	fmt.Fprintln(w, "VOLUME ANALYSIS")
	for _, k := range keys {
		vol := volumeByPrice[k]
		n := int(float64(vol)/float64(maxVolume)*float64(volumeBarWidth) + 0.5)
		if n < 1 {
			n = 1
		}
		bar := strings.Repeat("=", n) + strings.Repeat(" ", volumeBarWidth-n)
		fmt.Fprintf(w, "%-10s |%s| %d\n", k, bar, vol)
	}
	fmt.Fprintln(w)
}

func writeRecentActivity(w io.Writer, trades []domain.Trade) {
	recent := make([]domain.Trade, len(trades))
	copy(recent, trades)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].ExecutedAt.After(recent[j].ExecutedAt)
	})
	if len(recent) > recentRows {
		recent = recent[:recentRows]
	}

	fmt.Fprintln(w, "RECENT TRADE ACTIVITY")
	fmt.Fprintf(w, "%-9s %-10s %-9s %s\n", "time", "price", "quantity", "value")
	for _, t := range recent {
		fmt.Fprintf(w, "%-9s %-10s %-9d %s\n",
			t.ExecutedAt.Format("15:04:05"), t.Price, t.Quantity, t.Value())
	}
}
