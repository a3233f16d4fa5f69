package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/disclosure-portal-bot/internal/logging"
	"github.com/Spok95/disclosure-portal-bot/internal/metrics"
	"github.com/Spok95/disclosure-portal-bot/internal/observability"
)

const DefaultBaseURL = "https://api.chandus7.in/vvit"

// ответ крупнее считаем ошибкой сервера; отчёт xlsx укладывается с запасом
var maxBody int64 = 32 << 20

// Client — REST-клиент портала. Повторов нет: каждая операция выполняется ровно один раз.
type Client struct {
	base   string
	http   *http.Client
	upload *http.Client
	log    *zap.Logger
}

func New(baseURL string, timeout, uploadTimeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		upload: &http.Client{Timeout: uploadTimeout},
		log:    log,
	}
}

// ErrUnavailable — портал не ответил (сеть, таймаут).
var ErrUnavailable = errors.New("portal unavailable")

// ErrBodyTooLarge — тело ответа больше maxBody, идёт вместе с ErrUnavailable.
var ErrBodyTooLarge = errors.New("portal response too large")

// APIError — ответ портала с не-2xx статусом.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		case payload.Detail != "":
			msg = payload.Detail
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = fmt.Sprintf("http %d", status)
		}
	}
	return &APIError{Status: status, Message: msg}
}

func (c *Client) url(path string, q url.Values) string {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do выполняет запрос и читает тело. На не-2xx возвращает *APIError и заголовки ответа.
func (c *Client) do(hc *http.Client, req *http.Request, endpoint string) (http.Header, []byte, error) {
	rid := uuid.NewString()
	log := logging.For(req.Context(), c.log).With(zap.String("endpoint", endpoint), zap.String("request_id", rid))
	req.Header.Set("X-Request-ID", rid)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	t0 := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		metrics.ObservePortal(endpoint, 0, time.Since(t0))
		log.Warn("portal request failed", zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w: %w", endpoint, ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	metrics.ObservePortal(endpoint, resp.StatusCode, time.Since(t0))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	if int64(len(body)) > maxBody {
		err := fmt.Errorf("%s: %w: %w", endpoint, ErrUnavailable, ErrBodyTooLarge)
		observability.CaptureErr(req.Context(), err)
		log.Warn("portal response too large", zap.Int("status", resp.StatusCode))
		return nil, nil, err
	}

	log.Debug("portal", zap.Int("status", resp.StatusCode), zap.Duration("dur", time.Since(t0)))

	if resp.StatusCode/100 != 2 {
		apiErr := newAPIError(resp.StatusCode, body)
		if resp.StatusCode >= 500 {
			observability.CaptureErr(req.Context(), fmt.Errorf("portal %s: http %d: %s", endpoint, resp.StatusCode, apiErr.Message))
		}
		return resp.Header, body, apiErr
	}
	return resp.Header, body, nil
}

func decode(endpoint string, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return err
	}
	_, body, err := c.do(c.http, req, endpoint)
	if err != nil {
		return err
	}
	return decode(endpoint, body, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, body, err := c.do(c.http, req, endpoint)
	if err != nil {
		return err
	}
	return decode(endpoint, body, out)
}

type formField struct{ name, value string }

// postMultipart — файл всегда идёт полем pdf_file.
func (c *Client) postMultipart(ctx context.Context, endpoint, path string, fields []formField, fileName string, data []byte, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("pdf_file", fileName)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, body, err := c.do(c.upload, req, endpoint)
	if err != nil {
		return err
	}
	return decode(endpoint, body, out)
}

func instQuery(id int64) url.Values {
	return url.Values{"institution_id": {fmt.Sprint(id)}}
}
