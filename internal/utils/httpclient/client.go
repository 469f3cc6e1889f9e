package httpclient

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/url"
	"time"

	"MedGuard/internal/config"

	"github.com/sirupsen/logrus"
)

// NewHTTPClient 大模型接口使用的 HTTP 客户端（代理、超时、gzip 解压）
func NewHTTPClient(cfg *config.AIConfig, logger *logrus.Logger) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("代理地址解析失败，将不使用代理")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", cfg.Proxy).Info("大模型客户端已配置代理")
		}
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &gzipTransport{next: transport, logger: logger},
	}
}

// gzipTransport 显式声明 gzip 并自行解压
type gzipTransport struct {
	next   http.RoundTripper
	logger *logrus.Logger
}

func (t *gzipTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return resp, nil
	}

	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.logger.WithError(err).Warn("gzip解压失败，返回原始响应")
		return resp, nil
	}
	resp.Body = &gzipBody{Reader: zr, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

// gzipBody 关闭时同时关闭解压器与原始响应体
type gzipBody struct {
	*gzip.Reader
	raw io.ReadCloser
}

func (b *gzipBody) Close() error {
	if err := b.Reader.Close(); err != nil {
		_ = b.raw.Close()
		return err
	}
	return b.raw.Close()
}
