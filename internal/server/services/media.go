package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
)

// drainTimeout bounds each deletion performed while shutting down.
const drainTimeout = 10 * time.Second

// MediaTracker deletes the objects behind released media URLs in the
// background. Release never blocks and deletion failures are only logged.
// Only objects the releasing owner uploaded, served from one of the known
// endpoints, are ever deleted.
type MediaTracker struct {
	store  storage.ObjectStore
	bucket string
	hosts  map[string]struct{}
	queue  chan []string
	logger logging.Logger
}

// NewMediaTracker creates a tracker with a queue of queueSize jobs. endpoints
// are the base URLs media is served from; URLs on any other host are ignored.
func NewMediaTracker(store storage.ObjectStore, bucket string, endpoints []string, queueSize int, logger logging.Logger) *MediaTracker {
	if queueSize < 1 {
		queueSize = 1
	}
	hosts := make(map[string]struct{}, len(endpoints))
	for _, ep := range endpoints {
		if h := storage.EndpointHost(ep); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return &MediaTracker{
		store:  store,
		bucket: bucket,
		hosts:  hosts,
		queue:  make(chan []string, queueSize),
		logger: logger.With("module", "media_tracker"),
	}
}

// ObjectKeyFromURL maps a media URL to its object key when the URL points at
// one of ownerID's uploads on a known endpoint.
func (t *MediaTracker) ObjectKeyFromURL(ownerID, rawURL string) (string, bool) {
	host, key, ok := storage.ParseObjectURL(rawURL, t.bucket)
	if !ok || ownerID == "" {
		return "", false
	}
	if _, known := t.hosts[host]; !known {
		return "", false
	}
	if !strings.HasPrefix(key, storage.OwnerPrefix(ownerID)) || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

// Release schedules deletion of ownerID's objects behind urls. Foreign or
// unparsable URLs are skipped. When the queue is full the job is dropped.
func (t *MediaTracker) Release(ctx context.Context, ownerID string, urls []string) {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		key, ok := t.ObjectKeyFromURL(ownerID, u)
		if !ok {
			t.logger.Warn(ctx, "skipping media url not owned by caller", "owner_id", ownerID, "url", u)
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}

	select {
	case t.queue <- keys:
	default:
		t.logger.Warn(ctx, "media cleanup queue full, dropping job", "keys", len(keys))
	}
}

// Run deletes queued objects until ctx is cancelled, then drains what is
// already queued and returns.
func (t *MediaTracker) Run(ctx context.Context) error {
	t.logger.Info(ctx, "Starting media cleanup worker")

	for {
		select {
		case keys := <-t.queue:
			t.delete(ctx, keys)
		case <-ctx.Done():
			t.drain(context.WithoutCancel(ctx))
			t.logger.Info(ctx, "Media cleanup worker stopped")
			return nil
		}
	}
}

func (t *MediaTracker) drain(ctx context.Context) {
	for {
		select {
		case keys := <-t.queue:
			dctx, cancel := context.WithTimeout(ctx, drainTimeout)
			t.delete(dctx, keys)
			cancel()
		default:
			return
		}
	}
}

func (t *MediaTracker) delete(ctx context.Context, keys []string) {
	if err := t.store.DeleteMany(ctx, keys); err != nil {
		t.logger.Error(ctx, "media cleanup failed", "keys", keys, "error", err)
		return
	}
	t.logger.Debug(ctx, "media deleted", "count", len(keys))
}
