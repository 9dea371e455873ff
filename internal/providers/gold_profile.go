package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// DefaultGoldProfileSelector points at the headline price of a gold profile page.
const DefaultGoldProfileSelector = `[data-col="info.last_trade.PDrCotVal"]`

// GoldProfileFetcher reads the single headline price of the 18k gold profile
// page. The page quotes rial.
type GoldProfileFetcher struct {
	url      string
	selector string
	client   *http.Client
	log      zerolog.Logger
}

func NewGoldProfileFetcher(url, selector string, client *http.Client, log zerolog.Logger) *GoldProfileFetcher {
	if selector == "" {
		selector = DefaultGoldProfileSelector
	}
	return &GoldProfileFetcher{
		url:      url,
		selector: selector,
		client:   client,
		log:      log.With().Str("provider", "gold-profile").Logger(),
	}
}

func (f *GoldProfileFetcher) Name() string { return "gold-profile" }

func (f *GoldProfileFetcher) Fetch(ctx context.Context) (models.PriceMap, error) {
	body, err := get(ctx, f.client, f.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse gold profile: %w", err)
	}

	prices := models.PriceMap{}
	raw := doc.Find(f.selector).First().Text()
	value, ok := ParseLocalized(raw)
	if !ok || value <= 0 {
		f.log.Debug().Str("raw", raw).Msg("No headline price on profile page")
		return prices, nil
	}
	prices.Set(models.SymbolGold18, RialToToman(value))
	return prices, nil
}
