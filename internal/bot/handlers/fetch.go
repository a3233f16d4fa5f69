package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Telegram отдаёт ботам файлы не больше 20 МБ.
const maxFileSize = 20 << 20

// HTTPFetch — скачивание файла по ссылке Bot API.
func HTTPFetch(client *http.Client) FetchFunc {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download: http %d", resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxFileSize {
			return nil, fmt.Errorf("download: file larger than %d bytes", maxFileSize)
		}
		return data, nil
	}
}
