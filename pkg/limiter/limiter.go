// Package limiter token-bucket rate limiting for inbound HTTP routes
// Package limiter 基于令牌桶的接口限流
package limiter

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key route path prefix the rule applies to
	Key string
	// Method limits the rule to one HTTP method, empty matches any
	Method string
	// Exact matches Key only as the whole path; exact rules win over prefixes
	Exact bool
	// FillInterval 填充间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次填充的令牌数
	Quantum int64
}

// MethodLimiter limits by the exact rule of the request, else by its longest registered path prefix
// MethodLimiter 优先按精确规则限流，否则按请求路径的最长匹配前缀限流
type MethodLimiter struct {
	buckets map[string]*ratelimit.Bucket
	rules   []BucketRule
}

func NewMethodLimiter() Face {
	return &MethodLimiter{buckets: make(map[string]*ratelimit.Bucket)}
}

// id bucket key of a rule, "METHOD path" when the rule has a method
func (r BucketRule) id() string {
	id := r.Key
	if r.Method != "" {
		id = r.Method + " " + id
	}
	if r.Exact {
		id = "=" + id
	}
	return id
}

func (l *MethodLimiter) Key(c *gin.Context) string {
	path := c.Request.URL.Path
	method := c.Request.Method
	best := ""
	bestLen := -1
	for _, r := range l.rules {
		if r.Method != "" && r.Method != method {
			continue
		}
		if r.Exact {
			if path == r.Key {
				return r.id()
			}
			continue
		}
		if strings.HasPrefix(path, r.Key) && len(r.Key) > bestLen {
			best, bestLen = r.id(), len(r.Key)
		}
	}
	return best
}

func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if key == "" {
		return nil, false
	}
	bucket, ok := l.buckets[key]
	return bucket, ok
}

// AddBuckets must be called before the limiter serves requests
func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	for _, rule := range rules {
		id := rule.id()
		if _, ok := l.buckets[id]; ok {
			continue
		}
		l.buckets[id] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
		l.rules = append(l.rules, rule)
	}
	return l
}
