package myhttpclient

import (
	"context"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

//go:generate mockgen -source=api.go -package myhttpclient -destination http_sender_mock.go HTTPSender
type HTTPSender interface {
	Send(c context.Context, method string, url string, headers map[string]string, body []byte) (int, []byte, error)
}

func New() HTTPSender {
	return newHTTPClient(defaultTimeout)
}
