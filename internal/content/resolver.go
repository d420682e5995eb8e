package content

import (
	"context"

	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// Resolver turns a timer payload into a verse, falling back step by step so
// that an alarm always has something to read.
type Resolver struct {
	catalog *Catalog
	bible   Provider
}

// NewResolver creates a resolver. bible may be nil, in which case every
// selector is served by the catalog.
func NewResolver(catalog *Catalog, bible Provider) *Resolver {
	return &Resolver{
		catalog: catalog,
		bible:   bible,
	}
}

// Resolve picks the verse for payload. The order is:
// sequential cursor (when requested), filtered pick, unfiltered pick from
// the same provider, unfiltered catalog pick, DefaultVerse.
func (r *Resolver) Resolve(ctx context.Context, payload alarm.Payload) Verse {
	if payload.Sequential {
		v, err := r.catalog.NextSequentialVerse(ctx)
		if err == nil {
			return v
		}

		logger.WarnKV(ctx, "Sequential verse unavailable, picking at random", "error", err)
	}

	provider := r.providerFor(payload.Content)

	v, err := provider.RandomVerse(ctx, payload.Content)
	if err == nil {
		return v
	}

	logger.WarnKV(ctx, "No verse for selector, using unfiltered pick",
		"selector", payload.Content.String(),
		"error", err)

	if v, err = provider.RandomVerse(ctx, alarm.FullBible()); err == nil {
		return v
	}

	if provider != Provider(r.catalog) {
		if v, err = r.catalog.RandomVerse(ctx, alarm.FullBible()); err == nil {
			return v
		}
	}

	logger.ErrorKV(ctx, "Every verse provider failed, using default verse", "error", err)

	return DefaultVerse()
}

func (r *Resolver) providerFor(sel alarm.ContentSelector) Provider {
	if r.bible == nil || sel.Source == alarm.SourceCategory {
		return r.catalog
	}

	return r.bible
}
