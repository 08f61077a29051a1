// Package limiter 封装限流键与速率解析
package limiter

import (
	"fmt"
	"strconv"
	"strings"

	"payugw/pkg/config"
	"payugw/pkg/logger"
	"payugw/pkg/redis"

	"github.com/gin-gonic/gin"
	limiterlib "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Rate 换算成每秒的限流速率
type Rate struct {
	Rate float64
}

// ParseLimit 解析 "5-S"、"10-M"、"1000-H"、"2000-D" 格式的限流配置
func ParseLimit(limit string) (*Rate, error) {
	// limiterlib 用 "/" 分隔，先做格式校验
	formatted := strings.ReplaceAll(limit, "-", "/")
	if _, err := limiterlib.NewRateFromFormatted(formatted); err != nil {
		return nil, fmt.Errorf("invalid limit format: %w", err)
	}

	parts := strings.Split(limit, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid limit format: %s", limit)
	}

	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %s", parts[0])
	}

	var ratePerSecond float64
	switch strings.ToUpper(parts[1]) {
	case "S":
		ratePerSecond = value
	case "M":
		ratePerSecond = value / 60.0
	case "H":
		ratePerSecond = value / 3600.0
	case "D":
		ratePerSecond = value / 86400.0
	default:
		return nil, fmt.Errorf("invalid time unit: %s", parts[1])
	}

	return &Rate{Rate: ratePerSecond}, nil
}

// GetKeyIP 以客户端 IP 作为限流键
func GetKeyIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetKeyRouteWithIP 以 路由+IP 作为限流键，用于单个路由的限流
func GetKeyRouteWithIP(c *gin.Context) string {
	return routeToKeyString(c.FullPath()) + c.ClientIP()
}

// CheckRate 基于 Redis 的分布式限流检测
// 回调地址会被网关重试多次，计数放在 Redis 里保证多实例部署时额度共享。
func CheckRate(c *gin.Context, key string, formatted string) (limiterlib.Context, error) {

	var context limiterlib.Context
	rate, err := limiterlib.NewRateFromFormatted(formatted)
	if err != nil {
		logger.LogIf(err)
		return context, err
	}

	store, err := sredis.NewStoreWithOptions(redis.GetRedis(redis.MainDB).Client, limiterlib.StoreOptions{
		// 加前缀，避免与队列键混在一起
		Prefix: config.GetString("app.name") + ":limiter",
	})
	if err != nil {
		logger.LogIf(err)
		return context, err
	}

	limiterObj := limiterlib.New(store, rate)

	// 多个路由组叠加限流中间件时，同一次请求只计数一次
	if c.GetBool("limiter-once") {
		return limiterObj.Peek(c, key)
	}
	c.Set("limiter-once", true)
	return limiterObj.Get(c, key)
}

func routeToKeyString(routeName string) string {
	routeName = strings.ReplaceAll(routeName, "/", "-")
	routeName = strings.ReplaceAll(routeName, ":", "_")
	return routeName
}
