package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

const (
	projectKeyPrefix      = "project:"
	organizationKeyPrefix = "organization:"

	cacheName = "target"
)

// Observer receives cache hit and miss events.
type Observer interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// targetCacheAdapter caches project and organization lookups in process.
// Misses are not cached, so a newly created group is visible immediately.
type targetCacheAdapter struct {
	next     outbound.TargetDatabasePort
	cache    *gocache.Cache
	observer Observer
}

// NewTargetCacheAdapter wraps next with a short lived in-memory cache.
// observer may be nil.
func NewTargetCacheAdapter(next outbound.TargetDatabasePort, ttl time.Duration, observer Observer) outbound.TargetDatabasePort {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &targetCacheAdapter{
		next:     next,
		cache:    gocache.New(ttl, 2*ttl),
		observer: observer,
	}
}

func (a *targetCacheAdapter) FindProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	key := projectKeyPrefix + id.String()
	if cached, found := a.cache.Get(key); found {
		a.hit()
		project := *cached.(*model.Project)
		return &project, nil
	}
	a.miss()

	project, err := a.next.FindProject(ctx, id)
	if err != nil || project == nil {
		return project, err
	}

	stored := *project
	a.cache.Set(key, &stored, gocache.DefaultExpiration)
	return project, nil
}

func (a *targetCacheAdapter) FindOrganization(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	key := organizationKeyPrefix + id.String()
	if cached, found := a.cache.Get(key); found {
		a.hit()
		org := *cached.(*model.Organization)
		return &org, nil
	}
	a.miss()

	org, err := a.next.FindOrganization(ctx, id)
	if err != nil || org == nil {
		return org, err
	}

	stored := *org
	a.cache.Set(key, &stored, gocache.DefaultExpiration)
	return org, nil
}

func (a *targetCacheAdapter) hit() {
	if a.observer != nil {
		a.observer.RecordCacheHit(cacheName)
	}
}

func (a *targetCacheAdapter) miss() {
	if a.observer != nil {
		a.observer.RecordCacheMiss(cacheName)
	}
}
