package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter はプロセス内でクライアントごとのリクエスト数を数えます。
// Redisが使えない場合の代替で、上限はインスタンスごとに独立します。
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int           // ウィンドウあたりの上限
	window  time.Duration // どの単位でリセットするか
	counts  map[string]int
	current time.Time // 現在のウィンドウ開始時刻
	now     func() time.Time
}

// NewMemoryLimiter は新しいMemoryLimiterを生成します。
// limit や window が0以下の場合は既定値を使用します。
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	limit, window = normalize(limit, window)
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		counts: map[string]int{},
		now:    time.Now,
	}
}

// Allow はクライアントのカウンタを1つ進めます。エラーは返しません。
func (l *MemoryLimiter) Allow(_ context.Context, client string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Truncate(l.window)
	// window を過ぎたら全クライアントのカウントをリセット
	if !windowStart.Equal(l.current) {
		l.counts = map[string]int{}
		l.current = windowStart
	}

	l.counts[client]++
	retryAfter := windowStart.Add(l.window).Sub(now)
	return l.counts[client] <= l.limit, retryAfter, nil
}

