package rbac

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"tenantry/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
)

// DomainResolver reports the domains a user may operate in.
type DomainResolver interface {
	UserDomains(ctx context.Context, userID types.ID) ([]string, error)
}

// FilterDomains keeps the domains containing term; a nil term keeps everything.
func FilterDomains(domains []string, term *string) []string {
	if term == nil {
		return domains
	}
	filtered := []string{}
	for _, domain := range domains {
		if strings.Contains(domain, *term) {
			filtered = append(filtered, domain)
		}
	}
	return filtered
}

// GormDomainResolver derives domains from the user's assignments. An assignment
// without domain opens every registered domain.
type GormDomainResolver struct {
	dataSource *persistence.DataSourceManager
}

func NewGormDomainResolver(ds *persistence.DataSourceManager) *GormDomainResolver {
	return &GormDomainResolver{dataSource: ds}
}

func (r *GormDomainResolver) UserDomains(ctx context.Context, userID types.ID) ([]string, error) {
	db := r.dataSource.GormDB(ctx)

	var scoped []sql.NullString
	if err := db.Model(&UserRole{}).Where("user_id = ?", userID).Order("domain ASC").
		Pluck("DISTINCT domain", &scoped).Error; err != nil {
		return nil, err
	}

	global := false
	domains := []string{}
	for _, d := range scoped {
		if !d.Valid {
			global = true
			continue
		}
		domains = append(domains, d.String)
	}
	if !global {
		return domains, nil
	}

	var registered []string
	if err := db.Model(&Domain{}).Order("name ASC").Pluck("name", &registered).Error; err != nil {
		return nil, err
	}
	return mergeSorted(registered, domains), nil
}

func mergeSorted(a, b []string) []string {
	seen := map[string]bool{}
	merged := []string{}
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				merged = append(merged, v)
			}
		}
	}
	sort.Strings(merged)
	return merged
}

// CachedDomainResolver memoizes another resolver per user for ttl.
type CachedDomainResolver struct {
	delegate DomainResolver
	cache    *cache.Cache
}

func NewCachedDomainResolver(delegate DomainResolver, ttl time.Duration) *CachedDomainResolver {
	return &CachedDomainResolver{delegate: delegate, cache: cache.New(ttl, 2*ttl)}
}

func (r *CachedDomainResolver) UserDomains(ctx context.Context, userID types.ID) ([]string, error) {
	key := userID.String()
	if v, found := r.cache.Get(key); found {
		return append([]string{}, v.([]string)...), nil
	}
	domains, err := r.delegate.UserDomains(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, append([]string{}, domains...))
	return domains, nil
}

func (r *CachedDomainResolver) Invalidate(userID types.ID) {
	r.cache.Delete(userID.String())
}

func (r *CachedDomainResolver) Flush() {
	r.cache.Flush()
}
