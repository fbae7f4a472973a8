package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tagdeck/internal/contenthash"
	"tagdeck/internal/fetchcache"
	"tagdeck/internal/logging"
	"tagdeck/internal/reconcile"
	"tagdeck/internal/tagset"
)

// Stage names the step a progress update belongs to.
type Stage string

const (
	StageHash  Stage = "hash"
	StageFetch Stage = "fetch"
)

// Progress is one fractional update.
type Progress struct {
	Stage    Stage
	Fraction float64
}

// Lookuper is the remote side of Service.
type Lookuper interface {
	Lookup(ctx context.Context, hash string, progress func(float64)) (Remote, error)
}

// Cache is the persistence side of Service.
type Cache interface {
	Lookup(ctx context.Context, hash string) (*fetchcache.Entry, error)
	Store(ctx context.Context, entry fetchcache.Entry) error
}

// Outcome carries the fetch result and the local hash it must be checked
// against.
type Outcome struct {
	Result    reconcile.FetchResult
	LocalHash string
	Cached    bool
	// Invalid lists remote tags that cannot be stored as tags on this host.
	Invalid []string
}

// Service hashes, looks up and caches remote tags for one file per call.
type Service struct {
	remote Lookuper
	cache  Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service. cache may be nil to disable caching.
func NewService(remote Lookuper, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		remote: remote,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "fetch"),
		now:    time.Now,
	}
}

// Fetch returns the remote tags for the file at path. Cancellation at any
// step returns ctx.Err() and stores nothing.
func (s *Service) Fetch(ctx context.Context, path string, progress func(Progress)) (Outcome, error) {
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldMediaPath, path))
	report := func(stage Stage) func(float64) {
		return func(f float64) {
			if progress != nil {
				progress(Progress{Stage: stage, Fraction: f})
			}
		}
	}

	hashProgress := report(StageHash)
	localHash, err := contenthash.File(ctx, path, func(p contenthash.Progress) { hashProgress(p.Fraction()) })
	if err != nil {
		return Outcome{}, err
	}
	logger.Debug("content hashed", logging.String("content_hash", localHash))

	if s.cache != nil {
		entry, err := s.cache.Lookup(ctx, localHash)
		if err != nil {
			logging.WarnWithContext(logger, "fetch cache lookup failed", "fetch_cache_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "querying the remote instead"),
				logging.String(logging.FieldErrorHint, "run tagdeck cache clear if this persists"))
		} else if entry != nil {
			report(StageFetch)(1)
			tags, invalid := tagset.FromLines(entry.Tags)
			logger.Info("fetch served from cache", logging.String("source", entry.Source))
			return Outcome{
				Result:    reconcile.FetchResult{ContentHash: entry.ContentHash, RemoteTags: tags, Source: entry.Source},
				LocalHash: localHash,
				Cached:    true,
				Invalid:   invalid,
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if s.remote == nil {
		return Outcome{}, fmt.Errorf("fetch %s: remote lookup disabled", path)
	}
	remote, err := s.remote.Lookup(ctx, localHash, report(StageFetch))
	if err != nil {
		if errors.Is(err, ErrNoRemoteMatch) {
			logger.Info("no remote match", logging.String("content_hash", localHash))
		}
		return Outcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	tags, invalid := tagset.FromLines(remote.Tags)
	if len(invalid) > 0 {
		logging.WarnWithContext(logger, "remote tags skipped", "fetch_invalid_tags",
			logging.Strings("tags", invalid),
			logging.String(logging.FieldImpact, "those tags are not offered for merge"),
			logging.String(logging.FieldErrorHint, "add equivalent tags by hand"))
	}

	if s.cache != nil && contenthash.Equal(remote.ContentHash, localHash) {
		entry := fetchcache.Entry{ContentHash: localHash, Tags: tags.Tags(), Source: remote.Source, FetchedAt: s.now()}
		if err := s.cache.Store(ctx, entry); err != nil {
			logging.WarnWithContext(logger, "fetch cache store failed", "fetch_cache_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next fetch for this file queries the remote again"))
		}
	}

	logger.Info("fetch completed",
		logging.String("source", remote.Source),
		logging.Int("remote_tags", tags.Len()))
	return Outcome{
		Result:    reconcile.FetchResult{ContentHash: remote.ContentHash, RemoteTags: tags, Source: remote.Source},
		LocalHash: localHash,
		Invalid:   invalid,
	}, nil
}
