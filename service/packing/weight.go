package packing

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"fbadash/core/cache"
	catalogRepo "fbadash/model/repository/catalog"
)

const weightTTL = 10 * time.Minute

// WeightResolver maps ASIN codes to grams per unit. Lookups are memoised in the
// process cache and, when a client is given, in a Redis hash per user.
type WeightResolver struct {
	catalog *catalogRepo.CatalogRepository
	cache   *cache.Cache
	redis   *redis.Client
}

// NewWeightResolver builds a resolver. c may be nil to use the process cache;
// rdb may be nil to skip Redis.
func NewWeightResolver(catalog *catalogRepo.CatalogRepository, c *cache.Cache, rdb *redis.Client) *WeightResolver {
	if c == nil {
		c = cache.GetInstance()
	}
	return &WeightResolver{catalog: catalog, cache: c, redis: rdb}
}

func weightTag(userID string) string {
	return "asin_weight:" + userID
}

func redisKey(userID string) string {
	return "fbadash:asin_weight:" + userID
}

// GramsPerUnit returns the unit weight of code in grams. Unknown ASINs and ASINs
// without a weight resolve to 0.
func (r *WeightResolver) GramsPerUnit(ctx context.Context, userID, code string) (float64, error) {
	m, err := r.Weights(ctx, userID, []string{code})
	if err != nil {
		return 0, err
	}
	return m[code], nil
}

// Weights resolves many codes at once, loading cache misses in one query.
func (r *WeightResolver) Weights(ctx context.Context, userID string, codes []string) (map[string]float64, error) {
	out := make(map[string]float64, len(codes))
	var misses []string
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if v, ok := r.cache.Get(cache.Key("asin_weight", userID, code)); ok {
			out[code] = v.(float64)
			continue
		}
		if v, ok := r.fromRedis(ctx, userID, code); ok {
			r.remember(userID, code, v)
			out[code] = v
			continue
		}
		misses = append(misses, code)
	}
	if len(misses) == 0 {
		return out, nil
	}

	asins, err := r.catalog.ASINsByCodes(ctx, userID, misses)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{}, len(misses))
	for _, code := range misses {
		var grams float64
		if a, ok := asins[code]; ok {
			grams = a.GramsPerUnit()
		}
		out[code] = grams
		r.remember(userID, code, grams)
		fields[code] = strconv.FormatFloat(grams, 'f', -1, 64)
	}
	r.toRedis(ctx, userID, fields)
	return out, nil
}

// FNSKUs returns the catalog FNSKU of every known code that has one.
func (r *WeightResolver) FNSKUs(ctx context.Context, userID string, codes []string) (map[string]string, error) {
	out := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	asins, err := r.catalog.ASINsByCodes(ctx, userID, codes)
	if err != nil {
		return nil, err
	}
	for code, a := range asins {
		if a.FNSKU != "" {
			out[code] = a.FNSKU
		}
	}
	return out, nil
}

// Invalidate forgets every cached weight of the user.
func (r *WeightResolver) Invalidate(ctx context.Context, userID string) {
	r.cache.DeleteByTag(weightTag(userID))
	if r.redis == nil {
		return
	}
	if err := r.redis.Del(ctx, redisKey(userID)).Err(); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("redis: drop asin weights")
	}
}

func (r *WeightResolver) remember(userID, code string, grams float64) {
	r.cache.Set(cache.Key("asin_weight", userID, code), grams, weightTTL, []string{weightTag(userID)})
}

func (r *WeightResolver) fromRedis(ctx context.Context, userID, code string) (float64, bool) {
	if r.redis == nil {
		return 0, false
	}
	s, err := r.redis.HGet(ctx, redisKey(userID), code).Result()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Debug("redis: read asin weight")
		}
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r *WeightResolver) toRedis(ctx context.Context, userID string, fields map[string]interface{}) {
	if r.redis == nil || len(fields) == 0 {
		return
	}
	key := redisKey(userID)
	pipe := r.redis.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, weightTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).Debug("redis: store asin weights")
	}
}
