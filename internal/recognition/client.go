package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	pkgerrors "github.com/ilkeraydogduPofuduk/kolajBot-sub001/pkg/errors"

	"github.com/rs/zerolog"
)

// Client calls the external text-recognition service. Transient failures are
// wrapped retryable; Recognize itself performs the bounded retry loop so
// callers see at most one terminal error per image.
type Client struct {
	cfg         *config.Config
	httpClient  *http.Client
	authManager *AuthManager
	log         zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Recognition.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		authManager: NewAuthManager(cfg),
		log:         logger.With("recognition"),
	}
}

type recognizeRequest struct {
	Image string `json:"image"`
}

// Recognize submits one image and returns the recognized text with the
// service's own confidence. Retries up to the configured attempt budget on
// retryable failures, with a fixed delay between attempts.
func (c *Client) Recognize(ctx context.Context, image []byte) (model.RecognitionResult, error) {
	attempts := c.cfg.Recognition.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := c.recognizeOnce(ctx, image)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !pkgerrors.IsRetryable(err) {
			break
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("Recognition attempt failed")

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return model.RecognitionResult{}, ctx.Err()
		case <-time.After(c.cfg.Recognition.RetryDelay):
		}
	}

	return model.RecognitionResult{}, fmt.Errorf("%w: %v", pkgerrors.ErrRecognitionFailed, lastErr)
}

func (c *Client) recognizeOnce(ctx context.Context, image []byte) (model.RecognitionResult, error) {
	token, err := c.authManager.GetToken(ctx)
	if err != nil {
		return model.RecognitionResult{}, pkgerrors.NewRetryableError(err, "failed to get auth token")
	}

	payload := recognizeRequest{Image: base64.StdEncoding.EncodeToString(image)}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return model.RecognitionResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.cfg.Recognition.BaseURL + c.cfg.Recognition.RecognizeEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return model.RecognitionResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.RecognitionResult{}, pkgerrors.NewRetryableError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result model.RecognitionResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return model.RecognitionResult{}, fmt.Errorf("failed to decode response: %w", err)
		}
		return result, nil
	case http.StatusUnauthorized:
		// Token might be expired, retry will refresh it
		return model.RecognitionResult{}, pkgerrors.NewRetryableError(fmt.Errorf("unauthorized"), "authentication failed")
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		// The image itself is unreadable - don't retry
		return model.RecognitionResult{}, fmt.Errorf("recognition rejected image: HTTP %d", resp.StatusCode)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return model.RecognitionResult{}, pkgerrors.NewRetryableError(fmt.Errorf("service unavailable"), "recognition service unavailable")
	default:
		return model.RecognitionResult{}, pkgerrors.NewRetryableError(fmt.Errorf("HTTP %d", resp.StatusCode), "recognition API error")
	}
}
