package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// NameEntry binds a Persian label fragment to a canonical symbol.
type NameEntry struct {
	Pattern  string
	Symbol   string
	Category models.Category
}

// NameTable resolves message labels by substring containment, first match wins.
// Entries must be ordered most specific first: a pattern that contains an
// earlier pattern can never match.
type NameTable []NameEntry

// Resolve returns the first entry whose pattern occurs in name.
func (t NameTable) Resolve(name string) (NameEntry, bool) {
	for _, e := range t {
		if strings.Contains(name, e.Pattern) {
			return e, true
		}
	}
	return NameEntry{}, false
}

// DefaultNameTable covers the labels used by the price channel.
var DefaultNameTable = NameTable{
	{"دلار کانادا", "CAD", models.CategoryFiat},
	{"دلار استرالیا", "AUD", models.CategoryFiat},
	{"دلار", "USD", models.CategoryFiat},
	{"یورو", "EUR", models.CategoryFiat},
	{"پوند", "GBP", models.CategoryFiat},
	{"درهم", "AED", models.CategoryFiat},
	{"لیر", "TRY", models.CategoryFiat},
	{"یوان", "CNY", models.CategoryFiat},
	{"فرانک", "CHF", models.CategoryFiat},
	{"دینار", "IQD", models.CategoryFiat},

	{"نیم سکه", "COIN_HALF", models.CategoryGold},
	{"ربع سکه", "COIN_QUARTER", models.CategoryGold},
	{"سکه گرمی", "COIN_GRAMI", models.CategoryGold},
	{"سکه بهار", "COIN_BAHAR", models.CategoryGold},
	{"سکه امامی", "COIN_EMAMI", models.CategoryGold},
	{"طلای ۲۴", "GOLD24", models.CategoryGold},
	{"طلای 24", "GOLD24", models.CategoryGold},
	{"طلای ۱۸", models.SymbolGold18, models.CategoryGold},
	{"طلای 18", models.SymbolGold18, models.CategoryGold},
	{"مثقال", "MESGHAL", models.CategoryGold},

	{"بیت کوین", "BTC", models.CategoryCrypto},
	{"بیتکوین", "BTC", models.CategoryCrypto},
	{"اتریوم", "ETH", models.CategoryCrypto},
	{"تتر", "USDT", models.CategoryCrypto},
	{"تون کوین", "TON", models.CategoryCrypto},
	{"سولانا", "SOL", models.CategoryCrypto},
	{"ریپل", "XRP", models.CategoryCrypto},
	{"دوج", "DOGE", models.CategoryCrypto},
	{"ترون", "TRX", models.CategoryCrypto},
	{"کاردانو", "ADA", models.CategoryCrypto},
}

const (
	tokenRial  = "ریال"
	tokenToman = "تومان"
)

var priceLine = regexp.MustCompile(`^\s*(.+?)\s*[:：]\s*([0-9\x{06F0}-\x{06F9}\x{0660}-\x{0669},\x{066C}.\x{066B}]+)\s*(ریال|تومان)`)

// bullets separate entries that share one physical line.
func isBullet(r rune) bool {
	switch r {
	case '\n', '•', '▪', '▫', '◾', '◽', '|', '🔸', '🔹', '➖':
		return true
	}
	return false
}

// ParseMessage extracts prices for category from one channel message.
func ParseMessage(text string, table NameTable, category models.Category) models.PriceMap {
	prices := models.PriceMap{}
	for _, line := range strings.FieldsFunc(text, isBullet) {
		m := priceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		entry, ok := table.Resolve(m[1])
		if !ok || entry.Category != category {
			continue
		}
		value, ok := ParseLocalized(m[2])
		if !ok || value <= 0 {
			continue
		}
		if m[3] == tokenRial {
			value = RialToToman(value)
		}
		// first line wins when a message repeats a symbol
		if _, seen := prices[entry.Symbol]; !seen {
			prices.Set(entry.Symbol, value)
		}
	}
	return prices
}

// DefaultChannelTTL bounds how often one channel page is downloaded. It spans
// a whole refresh, so the fiat, crypto and gold backups share one request.
const DefaultChannelTTL = time.Minute

// TelegramChannel downloads the public web preview of a price channel and
// caches its most recent message for TTL. Concurrent callers wait for the
// download in flight and reuse it.
type TelegramChannel struct {
	url    string
	client *http.Client
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger

	mu        sync.Mutex
	text      string
	err       error
	fetchedAt time.Time
}

func NewTelegramChannel(url string, ttl time.Duration, client *http.Client, log zerolog.Logger) *TelegramChannel {
	if ttl <= 0 {
		ttl = DefaultChannelTTL
	}
	return &TelegramChannel{
		url:    url,
		client: client,
		ttl:    ttl,
		now:    time.Now,
		log:    log.With().Str("provider", "telegram").Logger(),
	}
}

// LatestMessage returns the text of the newest message. Failures are cached
// like successes, except for the caller's own cancellation.
func (c *TelegramChannel) LatestMessage(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.ttl {
		return c.text, c.err
	}

	text, err := c.download(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	c.text, c.err, c.fetchedAt = text, err, now
	return text, err
}

func (c *TelegramChannel) download(ctx context.Context) (string, error) {
	body, err := get(ctx, c.client, c.url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse channel page: %w", err)
	}

	// the preview lists messages oldest first
	latest := doc.Find(".tgme_widget_message_text").Last()
	if latest.Length() == 0 {
		return "", ErrEmptyResponse
	}
	latest.Find("br").ReplaceWithHtml("\n")
	c.log.Debug().Msg("Downloaded channel page")
	return latest.Text(), nil
}

// TelegramFetcher parses one asset category out of the channel's latest
// message.
type TelegramFetcher struct {
	channel  *TelegramChannel
	category models.Category
	table    NameTable
	log      zerolog.Logger
}

func NewTelegramFetcher(channel *TelegramChannel, category models.Category, log zerolog.Logger) *TelegramFetcher {
	return &TelegramFetcher{
		channel:  channel,
		category: category,
		table:    DefaultNameTable,
		log:      log.With().Str("provider", "telegram").Str("category", string(category)).Logger(),
	}
}

func (f *TelegramFetcher) Name() string { return "telegram" }

func (f *TelegramFetcher) Fetch(ctx context.Context) (models.PriceMap, error) {
	text, err := f.channel.LatestMessage(ctx)
	if err != nil {
		return nil, err
	}

	prices := ParseMessage(text, f.table, f.category)
	f.log.Debug().Int("count", len(prices)).Msg("Parsed channel message")
	return prices, nil
}
