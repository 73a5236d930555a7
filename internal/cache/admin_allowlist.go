package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const allowlistKey = "prep:admin:allowlist"

// AdminAllowlist caches the admin-email list in redis with a TTL. It is
// owned by the composition root and injected where needed; Invalidate
// forces the next lookup through the loader.
type AdminAllowlist struct {
	client *redis.Client
	loader func(ctx context.Context) ([]string, error)
	ttl    time.Duration
}

func NewAdminAllowlist(client *redis.Client, ttl time.Duration, loader func(ctx context.Context) ([]string, error)) *AdminAllowlist {
	return &AdminAllowlist{client: client, loader: loader, ttl: ttl}
}

// Contains reports whether email is on the allowlist. Cache faults fall
// through to the loader; loader faults deny.
func (a *AdminAllowlist) Contains(ctx context.Context, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range a.emails(ctx) {
		if strings.ToLower(e) == email {
			return true
		}
	}
	return false
}

func (a *AdminAllowlist) Invalidate(ctx context.Context) {
	if a.client == nil {
		return
	}
	if err := a.client.Del(ctx, allowlistKey).Err(); err != nil {
		log.Printf("admin allowlist: invalidate failed: %v", err)
	}
}

func (a *AdminAllowlist) emails(ctx context.Context) []string {
	if a.client != nil {
		raw, err := a.client.Get(ctx, allowlistKey).Bytes()
		if err == nil {
			var cached []string
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		} else if err != redis.Nil {
			log.Printf("admin allowlist: cache read failed: %v", err)
		}
	}

	emails, err := a.loader(ctx)
	if err != nil {
		log.Printf("admin allowlist: loader failed: %v", err)
		return nil
	}

	if a.client != nil {
		if raw, err := json.Marshal(emails); err == nil {
			if err := a.client.Set(ctx, allowlistKey, raw, a.ttl).Err(); err != nil {
				log.Printf("admin allowlist: cache write failed: %v", err)
			}
		}
	}
	return emails
}
