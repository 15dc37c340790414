package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MarcGrol/agencyportal/lib/mylog"
)

type httpClient struct {
	client *http.Client
	logger mylog.Logger
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: mylog.New("httpclient"),
	}
}

func (hc httpClient) Send(c context.Context, method string, url string, headers map[string]string, body []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(c, method, url, bodyReader)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for %s %s: %w", method, url, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	for name, value := range headers {
		httpReq.Header.Set(name, value)
	}

	httpResp, err := hc.client.Do(httpReq)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error calling %s %s: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	hc.logger.Log(c, "", mylog.SeverityInfo, "HTTP call: %s %s -> %d", method, httpReq.URL.Path, httpResp.StatusCode)

	respPayload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize+1))
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response %s %s: %w", method, url, err)
	}
	if len(respPayload) > maxResponseSize {
		return 0, []byte{}, fmt.Errorf("response of %s %s exceeds %d bytes", method, url, maxResponseSize)
	}

	return httpResp.StatusCode, respPayload, nil
}
