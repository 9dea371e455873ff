package models

// AssetType classifies an asset for display and allocation grouping.
type AssetType string

const (
	AssetFiat   AssetType = "FIAT"
	AssetGold   AssetType = "GOLD"
	AssetCrypto AssetType = "CRYPTO"
)

// Canonical symbols referenced directly by the price pipeline.
const (
	SymbolUSD    = "USD"
	SymbolEUR    = "EUR"
	SymbolGold18 = "GOLD18"
)

// Gold18Aliases are provider codes that all mean 18 karat gold per gram.
var Gold18Aliases = []string{"geram18", "gold_18k", "18ayar"}

// AssetInfo describes a known asset.
type AssetInfo struct {
	Symbol string    `json:"symbol"`
	Name   string    `json:"name"`
	Type   AssetType `json:"type"`
}

var catalog = map[string]AssetInfo{
	"USD": {"USD", "US Dollar", AssetFiat},
	"EUR": {"EUR", "Euro", AssetFiat},
	"GBP": {"GBP", "British Pound", AssetFiat},
	"AED": {"AED", "UAE Dirham", AssetFiat},
	"TRY": {"TRY", "Turkish Lira", AssetFiat},
	"CNY": {"CNY", "Chinese Yuan", AssetFiat},
	"CAD": {"CAD", "Canadian Dollar", AssetFiat},
	"AUD": {"AUD", "Australian Dollar", AssetFiat},
	"CHF": {"CHF", "Swiss Franc", AssetFiat},
	"IQD": {"IQD", "Iraqi Dinar", AssetFiat},

	"GOLD18":       {"GOLD18", "18K Gold (gram)", AssetGold},
	"GOLD24":       {"GOLD24", "24K Gold (gram)", AssetGold},
	"MESGHAL":      {"MESGHAL", "Gold Mesghal", AssetGold},
	"OUNCE":        {"OUNCE", "Gold Ounce", AssetGold},
	"COIN_EMAMI":   {"COIN_EMAMI", "Emami Coin", AssetGold},
	"COIN_BAHAR":   {"COIN_BAHAR", "Bahar Azadi Coin", AssetGold},
	"COIN_HALF":    {"COIN_HALF", "Half Coin", AssetGold},
	"COIN_QUARTER": {"COIN_QUARTER", "Quarter Coin", AssetGold},
	"COIN_GRAMI":   {"COIN_GRAMI", "Gram Coin", AssetGold},

	"BTC":  {"BTC", "Bitcoin", AssetCrypto},
	"ETH":  {"ETH", "Ethereum", AssetCrypto},
	"USDT": {"USDT", "Tether", AssetCrypto},
	"BNB":  {"BNB", "BNB", AssetCrypto},
	"SOL":  {"SOL", "Solana", AssetCrypto},
	"XRP":  {"XRP", "XRP", AssetCrypto},
	"TON":  {"TON", "Toncoin", AssetCrypto},
	"DOGE": {"DOGE", "Dogecoin", AssetCrypto},
	"TRX":  {"TRX", "TRON", AssetCrypto},
	"ADA":  {"ADA", "Cardano", AssetCrypto},
	"NOT":  {"NOT", "Notcoin", AssetCrypto},
}

// LookupAsset returns catalog info for a canonical symbol.
func LookupAsset(symbol string) (AssetInfo, bool) {
	info, ok := catalog[symbol]
	return info, ok
}

// IsGold18 reports whether symbol is the canonical 18k symbol or one of its aliases.
func IsGold18(symbol string) bool {
	if symbol == SymbolGold18 {
		return true
	}
	for _, alias := range Gold18Aliases {
		if symbol == alias {
			return true
		}
	}
	return false
}
