package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter はクライアントごとのリクエスト数をRedisで数えます。
// 複数インスタンスで上限を共有できます。
// rdb が nil の場合は制限を行いません。
type RedisLimiter struct {
	rdb       *redis.Client
	limit     int
	window    time.Duration
	namespace string
	now       func() time.Time
}

// NewRedisLimiter は新しいRedisLimiterを生成します。
// limit や window が0以下の場合は既定値、namespace が空の場合は "ratelimit" を使用します。
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, namespace string) *RedisLimiter {
	limit, window = normalize(limit, window)
	if namespace == "" {
		namespace = "ratelimit"
	}
	return &RedisLimiter{
		rdb:       rdb,
		limit:     limit,
		window:    window,
		namespace: namespace,
		now:       time.Now,
	}
}

// Allow はクライアントのカウンタを1つ進め、上限以内であれば true を返します。
// 残り時間（次のウィンドウまで）も返します。
func (l *RedisLimiter) Allow(ctx context.Context, client string) (bool, time.Duration, error) {
	if l.rdb == nil {
		return true, 0, nil
	}

	now := l.now()
	windowStart := now.Truncate(l.window)
	key := l.key(client, windowStart)

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, 0, err
	}
	// ウィンドウ内の最初のリクエストで有効期限を設定
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return true, 0, err
		}
	}

	retryAfter := windowStart.Add(l.window).Sub(now)
	return n <= int64(l.limit), retryAfter, nil
}

// key はクライアントとウィンドウ開始時刻からキーを生成します。
func (l *RedisLimiter) key(client string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.namespace, safe(client), windowStart.Unix())
}

// safe はRedisキーで問題となる文字をエスケープします（IPv6アドレスのコロンなど）。
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
