package di

import repocache "github.com/goliatone/go-repository-cache/cache"

// SetCacheServiceFactory replaces the cache constructor until the returned
// restore func runs.
func SetCacheServiceFactory(fn func(repocache.Config) (repocache.CacheService, error)) (restore func()) {
	prev := newCacheService
	newCacheService = fn
	return func() { newCacheService = prev }
}
