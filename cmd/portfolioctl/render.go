package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/dustin/go-humanize"
)

func toman(v float64) string {
	return humanize.CommafWithDigits(v, 0)
}

func writeRefresh(w io.Writer, res models.RefreshResult) {
	if res.Skipped {
		fmt.Fprintln(w, res.Message)
		return
	}
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSOURCE\tPROVIDER\tPRICES")
	for _, src := range res.Sources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", src.Type, src.SourceLabel, src.Provider, src.Count)
	}
	tw.Flush()

	if res.Data != nil {
		fmt.Fprintln(w)
		writeSnapshot(w, res.Data)
	}
}

func writeSnapshot(w io.Writer, s *models.PriceSnapshot) {
	fetched := "never"
	if !s.FetchedAt.IsZero() {
		fetched = s.FetchedAt.Format(time.RFC3339) + " (" + humanize.Time(s.FetchedAt) + ")"
	}
	fmt.Fprintf(w, "Fetched: %s\n", fetched)
	fmt.Fprintf(w, "USD %s  EUR %s  GOLD18 %s\n\n", toman(s.USDToLocal), toman(s.EURToLocal), toman(s.Gold18ToLocal))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TYPE\tSYMBOL\tTOMAN\t")
	for _, group := range []struct {
		category models.Category
		prices   models.PriceMap
	}{
		{models.CategoryFiat, s.FiatPrices},
		{models.CategoryCrypto, s.CryptoPrices},
		{models.CategoryGold, s.GoldPrices},
	} {
		symbols := make([]string, 0, len(group.prices))
		for symbol := range group.prices {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", group.category, symbol, toman(group.prices[symbol]))
		}
	}
	tw.Flush()
}

func writeSummary(w io.Writer, s models.PortfolioSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tQTY\tPRICE\tVALUE\tCOST\tPNL\tPNL %\tALLOC %\t")
	for _, a := range s.Assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t\n",
			a.Symbol,
			humanize.Ftoa(a.TotalQuantity),
			toman(a.CurrentPriceLocal),
			toman(a.CurrentValueLocal),
			toman(a.CostBasisLocal),
			toman(a.PnlLocal),
			a.PnlPercent,
			a.AllocationPercent,
		)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\t%s\t%s\t%.2f\t\t\n",
		toman(s.TotalValueLocal),
		toman(s.TotalCostBasisLocal),
		toman(s.TotalPnlLocal),
		s.TotalPnlPercent,
	)
	tw.Flush()
}
