// Package redis 管理网关依赖的 Redis 连接
//
// 网关按用途拆分两个逻辑库：
//   - MainDB  承载分布式限流计数
//   - QueueDB 承载支付事件队列
package redis

import (
	"context"
	"sync"
	"time"

	"payugw/pkg/logger"

	redis "github.com/redis/go-redis/v9"
)

const (
	// DefaultPoolSize 连接池大小
	DefaultPoolSize = 100
	// DefaultMinIdleConns 最小空闲连接数
	DefaultMinIdleConns = 10
	// DefaultTimeout 单次操作超时
	DefaultTimeout = 5 * time.Second
)

// RedisInstance 实例用途标识
type RedisInstance string

const (
	// MainDB 限流等通用用途
	MainDB RedisInstance = "main"
	// QueueDB 支付事件队列专用
	QueueDB RedisInstance = "queue"
)

// RedisClient 封装单个 go-redis 连接
type RedisClient struct {
	Client  *redis.Client
	Context context.Context
}

// RedisConfig 连接参数
type RedisConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Timeout      time.Duration
}

// RedisManager 按用途保存各实例
type RedisManager struct {
	instances map[RedisInstance]*RedisClient
	mutex     sync.RWMutex
}

var (
	once sync.Once

	// Manager 全局实例管理器，未初始化时为 nil。
	// 队列等可选组件以此判断 Redis 是否可用。
	Manager *RedisManager
)

// NewClient 按配置建立连接并立即 Ping 校验
func NewClient(config RedisConfig) *RedisClient {
	rds := &RedisClient{
		Context: context.Background(),
	}

	rds.Client = redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Username:     config.Username,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	})

	if err := rds.Ping(); err != nil {
		logger.ErrorString("Redis", "连接失败", err.Error())
	}
	return rds
}

// Ping 测试连接是否可用
func (rds *RedisClient) Ping() error {
	ctx, cancel := context.WithTimeout(rds.Context, DefaultTimeout)
	defer cancel()

	_, err := rds.Client.Ping(ctx).Result()
	return err
}

// InitRedis 初始化限流实例与队列实例，重复调用只生效一次
func InitRedis(address, username, password string, mainDB, queueDB int) {
	once.Do(func() {
		Manager = &RedisManager{
			instances: make(map[RedisInstance]*RedisClient),
		}

		base := RedisConfig{
			Address:      address,
			Username:     username,
			Password:     password,
			PoolSize:     DefaultPoolSize,
			MinIdleConns: DefaultMinIdleConns,
			Timeout:      DefaultTimeout,
		}

		mainConfig := base
		mainConfig.DB = mainDB
		Manager.instances[MainDB] = NewClient(mainConfig)

		queueConfig := base
		queueConfig.DB = queueDB
		Manager.instances[QueueDB] = NewClient(queueConfig)
	})
}

// GetRedis 按用途取实例，未知用途回落到主实例
func GetRedis(instance RedisInstance) *RedisClient {
	Manager.mutex.RLock()
	defer Manager.mutex.RUnlock()

	if client, ok := Manager.instances[instance]; ok {
		return client
	}
	return Manager.instances[MainDB]
}
