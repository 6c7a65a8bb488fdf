// Package http provides HTTP building blocks shared by outbound clients.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout is used when a caller passes a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// NewHTTPClient は外部サービス呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConnsPerHost: 同一の履歴サービスへの接続を再利用するため既定値より多めに確保
//   - Client.Timeout: リクエスト全体のタイムアウト（0以下なら DefaultTimeout）
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
//   - リトライは行わない。タイムアウトした時点で呼び出し元にエラーを返す
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
