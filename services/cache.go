package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// CacheService кэширует расчеты dashboard в Redis. Отсутствие Redis не
// является ошибкой: кэш просто пропускается.
type CacheService struct {
	redis  *redis.Client
	logger *log.Logger
}

// NewCacheService создает новый экземпляр CacheService
func NewCacheService(redisClient *redis.Client, logger *log.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Константы для TTL кэша
const (
	CacheTTLShort  = 5 * time.Minute  // Для живых показателей dashboard
	CacheTTLMedium = 15 * time.Minute // Для умеренно изменяемых данных
	CacheTTLLong   = 1 * time.Hour    // Для справочников
)

// GetJSON читает значение из кэша и десериализует его в dest
func (cs *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if cs.redis == nil {
		return false, nil
	}

	val, err := cs.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("falha ao desserializar cache: %w", err)
	}
	return true, nil
}

// SetJSON сериализует значение и сохраняет его в кэш с TTL
func (cs *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if cs.redis == nil {
		if cs.logger != nil {
			cs.logger.Printf("Redis indisponível, cache ignorado para a chave: %s", key)
		}
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("falha ao serializar cache: %w", err)
	}

	return cs.redis.Set(ctx, key, string(data), ttl).Err()
}

// Del удаляет ключ из кэша
func (cs *CacheService) Del(ctx context.Context, key string) error {
	if cs.redis == nil {
		return nil
	}
	return cs.redis.Del(ctx, key).Err()
}

// DashboardKey ключ кэша для показателей dashboard за окно
func DashboardKey(start, end time.Time) string {
	return fmt.Sprintf("dashboard:kpi:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}
