package user

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/youth-club/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	nameCacheTTL     = 5 * time.Minute
	nameCacheCleanup = 10 * time.Minute
)

// Resolver looks up display names for user ids referenced by content
// records, caching hits in memory.
type Resolver struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
}

func NewResolver(db *gorm.DB, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		db:     db,
		cache:  cache.New(nameCacheTTL, nameCacheCleanup),
		logger: logger.Named("user.resolver"),
	}
}

// Names returns id → display name. Ids that do not resolve are absent; a
// store failure yields whatever was cached.
func (r *Resolver) Names(ctx context.Context, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	missing := lo.Filter(lo.Uniq(ids), func(id string, _ int) bool {
		if v, ok := r.cache.Get(id); ok {
			out[id] = v.(string)
			return false
		}
		return id != ""
	})
	if len(missing) == 0 {
		return out
	}

	var users []models.UserModel
	if err := r.db.WithContext(ctx).
		Select("id", "username", "name").
		Where("id IN ?", missing).
		Find(&users).Error; err != nil {
		r.logger.Warn("resolve user names failed", zap.Error(err), zap.Int("ids", len(missing)))
		return out
	}
	for i := range users {
		name := DisplayName(&users[i])
		out[users[i].ID] = name
		r.cache.SetDefault(users[i].ID, name)
	}
	return out
}

// Forget drops a cached name, e.g. after a profile change.
func (r *Resolver) Forget(id string) { r.cache.Delete(id) }
