package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"blood-donate.backend/pkg/metrics"
	"github.com/go-jose/go-jose/v3"
	"golang.org/x/sync/singleflight"
)

// KeySet caches a remote JSON Web Key Set.
// Entries live for the response's max-age, or the configured TTL when absent.
type KeySet struct {
	url    string
	ttl    time.Duration
	client *http.Client

	// minRefresh limits forced refetches triggered by unknown key ids
	minRefresh   time.Duration
	fetchTimeout time.Duration

	mu        sync.RWMutex
	set       jose.JSONWebKeySet
	fetchedAt time.Time
	expiresAt time.Time

	group singleflight.Group
	now   func() time.Time
}

// NewKeySet creates a key set fetched from url
func NewKeySet(url string, ttl time.Duration, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &KeySet{
		url:          url,
		ttl:          ttl,
		client:       client,
		minRefresh:   30 * time.Second,
		fetchTimeout: 10 * time.Second,
		now:          time.Now,
	}
}

// Key returns the public key for kid
func (k *KeySet) Key(ctx context.Context, kid string) (interface{}, error) {
	if key, fresh := k.lookup(kid); key != nil && fresh {
		return key, nil
	}

	if err := k.refresh(ctx, kid); err != nil {
		// A stale key is still the issuer's key; keep serving it while the endpoint is down.
		if key, _ := k.lookup(kid); key != nil {
			return key, nil
		}
		return nil, err
	}

	key, _ := k.lookup(kid)
	if key == nil {
		return nil, ErrInvalidToken
	}
	return key, nil
}

func (k *KeySet) lookup(kid string) (interface{}, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	fresh := k.now().Before(k.expiresAt)
	for _, jwk := range k.set.Key(kid) {
		if jwk.IsPublic() && jwk.Valid() {
			return jwk.Key, fresh
		}
	}
	return nil, fresh
}

func (k *KeySet) refresh(ctx context.Context, kid string) error {
	ch := k.group.DoChan("jwks", func() (interface{}, error) {
		k.mu.RLock()
		fresh := k.now().Before(k.expiresAt)
		recent := k.now().Sub(k.fetchedAt) < k.minRefresh
		known := len(k.set.Key(kid)) > 0
		k.mu.RUnlock()
		if (fresh && known) || (fresh && recent) {
			return nil, nil
		}

		// Detached from the first caller so its cancellation does not fail the waiters.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.fetchTimeout)
		defer cancel()

		start := time.Now()
		set, maxAge, err := k.fetch(fetchCtx)
		metrics.RecordExternalCall("firebase", "jwks_fetch", err, time.Since(start))
		if err != nil {
			return nil, err
		}

		ttl := k.ttl
		if maxAge > 0 {
			ttl = maxAge
		}
		now := k.now()
		k.mu.Lock()
		k.set = set
		k.fetchedAt = now
		k.expiresAt = now.Add(ttl)
		k.mu.Unlock()
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrKeysUnavailable, ctx.Err())
	}
}

func (k *KeySet) fetch(ctx context.Context) (jose.JSONWebKeySet, time.Duration, error) {
	var set jose.JSONWebKeySet

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return set, 0, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return set, 0, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return set, 0, fmt.Errorf("%w: jwks endpoint returned %d", ErrKeysUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return set, 0, fmt.Errorf("%w: decode jwks: %v", ErrKeysUnavailable, err)
	}
	if len(set.Keys) == 0 {
		return set, 0, fmt.Errorf("%w: empty key set", ErrKeysUnavailable)
	}

	return set, maxAge(resp.Header.Get("Cache-Control")), nil
}

func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil || seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	return 0
}
