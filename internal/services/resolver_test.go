package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestResolve_PrimaryWinsWithoutTouchingBackups(t *testing.T) {
	primary := &fakeFetcher{name: "primary", prices: models.PriceMap{"USD": 98500}}
	b1 := &fakeFetcher{name: "b1", prices: models.PriceMap{"USD": 1}}
	b2 := &fakeFetcher{name: "b2", prices: models.PriceMap{"USD": 2}}

	res := NewResolver(time.Second, zerolog.Nop()).Resolve(context.Background(), models.CategoryFiat, primary, b1, b2)

	assert.Equal(t, SourcePrimary, res.SourceLabel)
	assert.Equal(t, "primary", res.Provider)
	assert.Equal(t, models.PriceMap{"USD": 98500}, res.Data)
	assert.Equal(t, 1, primary.Calls())
	assert.Equal(t, 0, b1.Calls())
	assert.Equal(t, 0, b2.Calls())
}

func TestResolve_LabelsBackupByPosition(t *testing.T) {
	primary := &fakeFetcher{name: "primary", err: errors.New("connection refused")}
	b1 := &fakeFetcher{name: "b1", prices: models.PriceMap{}}
	b2 := &fakeFetcher{name: "b2", prices: models.PriceMap{"BTC": 5}}
	b3 := &fakeFetcher{name: "b3", prices: models.PriceMap{"BTC": 6}}

	res := NewResolver(time.Second, zerolog.Nop()).Resolve(context.Background(), models.CategoryCrypto, primary, b1, b2, b3)

	assert.Equal(t, "backup2", res.SourceLabel)
	assert.Equal(t, models.PriceMap{"BTC": 5}, res.Data)
	assert.Equal(t, 0, b3.Calls())
}

func TestResolve_AllFailIsNoneNotError(t *testing.T) {
	res := NewResolver(time.Second, zerolog.Nop()).Resolve(context.Background(), models.CategoryGold,
		&fakeFetcher{name: "a", err: errors.New("503")},
		&fakeFetcher{name: "b", prices: nil},
		&fakeFetcher{name: "c", panics: true},
	)

	assert.Equal(t, SourceNone, res.SourceLabel)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestResolve_PanicIsIsolated(t *testing.T) {
	backup := &fakeFetcher{name: "backup", prices: models.PriceMap{"EUR": 110000}}

	var res Resolution
	assert.NotPanics(t, func() {
		res = NewResolver(time.Second, zerolog.Nop()).Resolve(context.Background(), models.CategoryFiat,
			&fakeFetcher{name: "primary", panics: true}, backup)
	})
	assert.Equal(t, "backup1", res.SourceLabel)
}

func TestResolve_TimeoutMovesToNextSource(t *testing.T) {
	slow := &fakeFetcher{name: "slow", block: true}
	backup := &fakeFetcher{name: "backup", prices: models.PriceMap{"USD": 98000}}

	start := time.Now()
	res := NewResolver(20*time.Millisecond, zerolog.Nop()).Resolve(context.Background(), models.CategoryFiat, slow, backup)

	assert.Equal(t, "backup1", res.SourceLabel)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_SkipsNilSources(t *testing.T) {
	backup := &fakeFetcher{name: "backup", prices: models.PriceMap{"USD": 98000}}

	res := NewResolver(time.Second, zerolog.Nop()).Resolve(context.Background(), models.CategoryFiat, nil, nil, backup)

	assert.Equal(t, "backup2", res.SourceLabel)
}
