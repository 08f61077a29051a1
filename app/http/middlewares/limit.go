package middlewares

import (
	"sync"
	"time"

	"payugw/pkg/app"
	"payugw/pkg/limiter"
	"payugw/pkg/logger"
	"payugw/pkg/redis"
	"payugw/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"
)

const (
	// DefaultBurst 本地令牌桶的突发容量
	DefaultBurst = 100
)

var (
	// 本地令牌桶缓存，Redis 不可用时的降级路径
	limiters    sync.Map
	lastCleanup sync.Map
)

// LimitIP 按客户端 IP 限流
//
// 支持的格式:
// - 5 reqs/second:   "5-S"
// - 10 reqs/minute:  "10-M"
// - 1000 reqs/hour:  "1000-H"
// - 2000 reqs/day:   "2000-D"
//
// Redis 可用时走分布式计数，多实例部署共享额度；
// 否则降级为进程内令牌桶。
func LimitIP(limit string) gin.HandlerFunc {
	// 测试环境放开限制
	if app.IsTesting() {
		limit = "1000000-H"
	}

	return createLimiterHandler(limiter.GetKeyIP, limit)
}

// LimitPerRoute 按 路由+IP 限流，用于回调和发起支付这类敏感接口
func LimitPerRoute(limit string) gin.HandlerFunc {
	if app.IsTesting() {
		limit = "1000000-H"
	}

	return createLimiterHandler(limiter.GetKeyRouteWithIP, limit)
}

func createLimiterHandler(keyFunc func(*gin.Context) string, limit string) gin.HandlerFunc {
	go cleanupLimiters()

	return func(c *gin.Context) {
		key := keyFunc(c)

		if redis.Manager != nil {
			handleDistributed(c, key, limit)
			return
		}
		handleLocal(c, key, limit)
	}
}

// handleDistributed Redis 计数，格式同 ulule/limiter 的 "100-H"
func handleDistributed(c *gin.Context, key string, limit string) {
	rateResult, err := limiter.CheckRate(c, key, limit)
	if err != nil {
		logger.ErrorString("限流器", "检测失败", err.Error())
		// 限流器自身故障时放行请求
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", cast.ToString(rateResult.Limit))
	c.Header("X-RateLimit-Remaining", cast.ToString(rateResult.Remaining))
	c.Header("X-RateLimit-Reset", cast.ToString(rateResult.Reset))

	if rateResult.Reached {
		tooManyRequests(c)
		return
	}
	c.Next()
}

// handleLocal 进程内令牌桶
func handleLocal(c *gin.Context, key string, limit string) {
	lim, err := getLimiter(key, limit)
	if err != nil {
		logger.ErrorString("限流器", "创建失败", err.Error())
		c.Next()
		return
	}

	if !lim.Allow() {
		tooManyRequests(c)
		return
	}

	c.Header("X-RateLimit-Limit", cast.ToString(lim.Limit()))
	c.Header("X-RateLimit-Remaining", cast.ToString(lim.Tokens()))
	c.Header("X-RateLimit-Reset", cast.ToString(time.Now().Add(time.Second).Unix()))

	c.Next()
}

func tooManyRequests(c *gin.Context) {
	response.JSON(c, gin.H{
		"code":    429,
		"message": "请求太频繁，请稍后再试",
		"error":   "Too Many Requests",
	})
	c.Abort()
}

// getLimiter 获取或创建本地令牌桶
func getLimiter(key string, limit string) (*rate.Limiter, error) {
	if lim, exists := limiters.Load(key); exists {
		lastCleanup.Store(key, time.Now())
		return lim.(*rate.Limiter), nil
	}

	r, err := limiter.ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	lim := rate.NewLimiter(rate.Limit(r.Rate), DefaultBurst)
	actual, _ := limiters.LoadOrStore(key, lim)
	lastCleanup.Store(key, time.Now())
	return actual.(*rate.Limiter), nil
}

// cleanupLimiters 清理超过 24 小时未使用的本地令牌桶
func cleanupLimiters() {
	ticker := time.NewTicker(1 * time.Hour)
	for range ticker.C {
		now := time.Now()
		limiters.Range(func(key, value interface{}) bool {
			lastAccess, ok := lastCleanup.Load(key)
			if !ok {
				lastCleanup.Store(key, now)
				return true
			}

			if now.Sub(lastAccess.(time.Time)) > 24*time.Hour {
				limiters.Delete(key)
				lastCleanup.Delete(key)
			}
			return true
		})
	}
}
