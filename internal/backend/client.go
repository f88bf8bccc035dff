// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backend is the HTTP client of the external content REST API.

Every page and every admin action ends up here. The client owns the one
externally configured base URL, the bearer-token header, response decoding and
the mapping from HTTP statuses onto [apperr.AppError].

Architecture:

  - Reads: a resty client with bounded retries on transport errors, 429 and 5xx.
  - Writes: a second resty client that never retries, so a POST is sent once.
  - Errors: 401 becomes [ErrUnauthorized]; other failures keep the server's message.
  - Observer: every call is reported with method, resource, status and latency.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/constants"
)

// # Endpoints

const (
	PathBanners                 = "/api/banners"
	PathBooks                   = "/api/books"
	PathBlogs                   = "/api/blogs"
	PathCourses                 = "/api/courses"
	PathTalksArticles           = "/api/talks-articles"
	PathTeam                    = "/api/team"
	PathYearwisePublications    = "/api/publications/yearwise"
	PathSubjectwisePublications = "/api/publications/subjectwise"
	PathUpload                  = "/api/upload"
	PathLogin                   = "/api/auth/login"
	PathFeedback                = "/api/auth/send-feedback"
)

// UploadField is the multipart field name expected by the upload endpoint.
const UploadField = "image"

// retry tuning for idempotent reads
const (
	retryWaitTime    = 200 * time.Millisecond
	retryMaxWaitTime = 2 * time.Second
)

// Observer receives one callback per API call. A zero status means no response arrived.
type Observer interface {
	ObserveBackendCall(method, resource string, statusCode int, duration time.Duration)
}

// Config configures a [Client].
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Logger     *slog.Logger
	Observer   Observer
}

// Client talks to the content REST API.
type Client struct {
	reader   *resty.Client
	writer   *resty.Client
	logger   *slog.Logger
	observer Observer
}

// New builds a client for cfg.BaseURL.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	newResty := func() *resty.Client {
		return resty.New().
			SetBaseURL(base).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", constants.AppName+"/"+constants.AppVersion).
			SetLogger(restyLogger{logger: logger})
	}

	// 1. Reads retry on transport errors, throttling and server faults
	reader := newResty().
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(func(response *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			status := response.StatusCode()
			return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
		})

	// 2. Writes are sent exactly once
	writer := newResty().SetRetryCount(0)

	return &Client{
		reader:   reader,
		writer:   writer,
		logger:   logger,
		observer: cfg.Observer,
	}
}

// # Content

// Get fetches path and decodes the JSON body into out.
func (client *Client) Get(ctx context.Context, path string, out any) error {
	response, err := client.do(ctx, client.reader, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	return decode(response.Body(), out)
}

// Create POSTs body to path with the bearer token and decodes the reply into out (may be nil).
func (client *Client) Create(ctx context.Context, path, token string, body, out any) error {
	response, err := client.do(ctx, client.writer, http.MethodPost, path, token, func(request *resty.Request) {
		request.SetBody(body)
	})
	if err != nil {
		return err
	}
	return decode(response.Body(), out)
}

// Update PUTs body to path with the bearer token and decodes the reply into out (may be nil).
func (client *Client) Update(ctx context.Context, path, token string, body, out any) error {
	response, err := client.do(ctx, client.writer, http.MethodPut, path, token, func(request *resty.Request) {
		request.SetBody(body)
	})
	if err != nil {
		return err
	}
	return decode(response.Body(), out)
}

// Delete removes the document at path.
func (client *Client) Delete(ctx context.Context, path, token string) error {
	_, err := client.do(ctx, client.writer, http.MethodDelete, path, token, nil)
	return err
}

// Upload sends an image as multipart field "image" and returns the stored file URL.
func (client *Client) Upload(ctx context.Context, token, filename string, content io.Reader) (string, error) {
	response, err := client.do(ctx, client.writer, http.MethodPost, PathUpload, token, func(request *resty.Request) {
		request.SetFileReader(UploadField, filename, content)
	})
	if err != nil {
		return "", err
	}

	var uploaded struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := decode(response.Body(), &uploaded); err != nil {
		return "", err
	}
	if uploaded.ImageURL == "" {
		return "", apperr.BadGateway("Upload did not return an image URL", nil)
	}
	return uploaded.ImageURL, nil
}

// # Authentication

// Login exchanges admin credentials for a bearer token.
func (client *Client) Login(ctx context.Context, email, password string) (string, error) {
	response, err := client.do(ctx, client.writer, http.MethodPost, PathLogin, "", func(request *resty.Request) {
		request.SetBody(map[string]string{"email": email, "password": password})
	})
	if err != nil {
		if IsUnauthorized(err) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	var issued struct {
		Token string `json:"token"`
	}
	if err := decode(response.Body(), &issued); err != nil {
		return "", err
	}
	if issued.Token == "" {
		return "", ErrInvalidCredentials
	}
	return issued.Token, nil
}

// SendFeedback forwards a visitor message. Any token in the reply is ignored.
func (client *Client) SendFeedback(ctx context.Context, email, message string) error {
	_, err := client.do(ctx, client.writer, http.MethodPost, PathFeedback, "", func(request *resty.Request) {
		request.SetBody(map[string]string{"email": email, "message": message})
	})
	return err
}

// Ping checks that the API answers a cheap collection read.
func (client *Client) Ping(ctx context.Context) error {
	_, err := client.do(ctx, client.writer, http.MethodGet, PathBanners, "", nil)
	return err
}

// # Transport

// do executes one request and maps failures onto application errors.
func (client *Client) do(ctx context.Context, transport *resty.Client, method, path, token string, build func(*resty.Request)) (*resty.Response, error) {
	request := transport.R().SetContext(ctx)
	if token != "" {
		request.SetAuthToken(token)
	}
	if build != nil {
		build(request)
	}

	startTime := time.Now()
	response, err := request.Execute(method, path)

	status := 0
	if response != nil && response.RawResponse != nil {
		status = response.StatusCode()
	}
	if client.observer != nil {
		client.observer.ObserveBackendCall(method, ResourceOf(path), status, time.Since(startTime))
	}

	// 1. No response at all
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		client.logger.WarnContext(ctx, "backend_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil, apperr.BadGateway("Content service unavailable", err)
	}

	// 2. Non-2xx
	if response.IsError() {
		client.logger.InfoContext(ctx, "backend_request_rejected",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
		)
		return nil, statusError(status, response.Body())
	}

	return response, nil
}

// decode reads a JSON body into out. Bodies wrapped in {"data": ...} are unwrapped.
func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err == nil {
			return nil
		}
	}

	return apperr.BadGateway("Unexpected response from content service", errors.New("backend: undecodable body"))
}

// ResourceOf reduces a request path to its collection, for metric labels.
//
//	/api/books/t                    → /api/books
//	/api/publications/yearwise/42   → /api/publications/yearwise
func ResourceOf(path string) string {
	if index := strings.IndexAny(path, "?#"); index >= 0 {
		path = path[:index]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != "api" {
		return path
	}

	keep := 2
	if (segments[1] == "publications" || segments[1] == "auth") && len(segments) > 2 {
		keep = 3
	}
	if keep > len(segments) {
		keep = len(segments)
	}
	return "/" + strings.Join(segments[:keep], "/")
}

// restyLogger routes resty's own diagnostics through slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, args ...any) {
	l.logger.Error("resty_error", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l restyLogger) Warnf(format string, args ...any) {
	l.logger.Warn("resty_warning", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l restyLogger) Debugf(format string, args ...any) {
	l.logger.Debug("resty_debug", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}
