package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// usdMarkers flag a scraped value quoted in dollars rather than toman/rial.
var usdMarkers = []string{"$", "USD", "دلار"}

// TableSpec describes where prices live in a provider's HTML table.
type TableSpec struct {
	RowSelector string            // e.g. "table tbody tr"
	KeyAttr     string            // row attribute holding the provider code; empty uses the KeyCell text
	KeyCell     int               // td index of the row label
	PriceCell   int               // td index of the price
	UnitCell    int               // td index carrying a unit marker, -1 to look in the price cell only
	Codes       map[string]string // provider code (lower case) -> canonical symbol
	Unit        Unit
	DetectUSD   bool // convert rows carrying a USD marker with the injected rate
}

// TableScraper scrapes a single HTML page holding one price table.
type TableScraper struct {
	name    string
	url     string
	spec    TableSpec
	client  *http.Client
	log     zerolog.Logger
	usdRate float64
}

// NewTableScraper creates a scraper for url described by spec.
func NewTableScraper(name, url string, spec TableSpec, client *http.Client, log zerolog.Logger) *TableScraper {
	return &TableScraper{
		name:   name,
		url:    url,
		spec:   spec,
		client: client,
		log:    log.With().Str("provider", name).Logger(),
	}
}

func (s *TableScraper) Name() string { return s.name }

// WithUSDRate returns a copy that converts USD-marked rows at rate.
func (s *TableScraper) WithUSDRate(rate float64) Fetcher {
	cp := *s
	cp.usdRate = rate
	return &cp
}

func (s *TableScraper) Fetch(ctx context.Context) (models.PriceMap, error) {
	body, err := get(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.name, err)
	}
	return s.parse(doc), nil
}

func (s *TableScraper) parse(doc *goquery.Document) models.PriceMap {
	prices := models.PriceMap{}

	doc.Find(s.spec.RowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")

		key := ""
		if s.spec.KeyAttr != "" {
			key, _ = row.Attr(s.spec.KeyAttr)
		} else {
			key = cells.Eq(s.spec.KeyCell).Text()
		}
		symbol, ok := s.spec.Codes[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return
		}

		priceText := cells.Eq(s.spec.PriceCell).Text()
		value, ok := ParseLocalized(priceText)
		if !ok || value <= 0 {
			s.log.Debug().Str("symbol", symbol).Str("raw", priceText).Msg("Skipping unparseable price")
			return
		}

		unitText := priceText
		if s.spec.UnitCell >= 0 {
			unitText += " " + cells.Eq(s.spec.UnitCell).Text()
		}
		if s.spec.DetectUSD && hasUSDMarker(unitText) {
			if s.usdRate <= 0 {
				s.log.Debug().Str("symbol", symbol).Msg("USD-denominated row without a USD rate")
				return
			}
			prices.Set(symbol, value*s.usdRate)
			return
		}

		prices.Set(symbol, s.spec.Unit.toToman(value))
	})

	return prices
}

func hasUSDMarker(s string) bool {
	for _, m := range usdMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// FiatTableSpec is the layout of the fiat primary page: one row per currency,
// code in the first cell, sell price in the third.
func FiatTableSpec() TableSpec {
	return TableSpec{
		RowSelector: "table tr",
		KeyCell:     0,
		PriceCell:   2,
		UnitCell:    -1,
		Unit:        UnitToman,
		Codes: map[string]string{
			"usd": "USD", "eur": "EUR", "gbp": "GBP", "aed": "AED", "try": "TRY",
			"cny": "CNY", "cad": "CAD", "aud": "AUD", "chf": "CHF", "iqd": "IQD",
		},
	}
}

// CryptoTableSpec is the layout of the crypto primary page: rows keyed by a
// market attribute, toman price in the third cell.
func CryptoTableSpec() TableSpec {
	return TableSpec{
		RowSelector: "table tbody tr",
		KeyAttr:     "data-market-row",
		PriceCell:   2,
		UnitCell:    -1,
		Unit:        UnitRial,
		Codes: map[string]string{
			"crypto-bitcoin": "BTC", "crypto-ethereum": "ETH", "crypto-tether": "USDT",
			"crypto-binance-coin": "BNB", "crypto-solana": "SOL", "crypto-ripple": "XRP",
			"crypto-dogecoin": "DOGE", "crypto-tron": "TRX", "crypto-cardano": "ADA",
			"crypto-toncoin": "TON",
		},
	}
}

// GoldTableSpec is the layout of the gold primary page. Ounce rows are quoted in
// dollars and flagged in the unit cell.
func GoldTableSpec() TableSpec {
	return TableSpec{
		RowSelector: "table tbody tr",
		KeyAttr:     "data-market-row",
		PriceCell:   1,
		UnitCell:    4,
		Unit:        UnitRial,
		DetectUSD:   true,
		Codes: map[string]string{
			"geram18": "geram18", "geram24": "GOLD24", "mesghal": "MESGHAL",
			"ons": "OUNCE", "sekee": "COIN_EMAMI", "sekeb": "COIN_BAHAR",
			"nim": "COIN_HALF", "rob": "COIN_QUARTER", "gerami": "COIN_GRAMI",
		},
	}
}
