package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/essenza-market/essenza-backend/pkg/config"
	"github.com/essenza-market/essenza-backend/pkg/logger"
)

const (
	baseEndpoint = "https://api.cloudinary.com/v1_1"
	pingTimeout  = 5 * time.Second
)

// UploadResult describes a stored image.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Uploader is the image store surface consumed by listing services.
type Uploader interface {
	Upload(ctx context.Context, name string, content io.Reader) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client talks to the Cloudinary upload and admin APIs over plain HTTP.
type Client struct {
	httpClient *http.Client
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	now        func() time.Time
}

func closeBody(ctx context.Context, logg *logger.Logger, body io.Closer, msg string) {
	if body == nil {
		return
	}
	if err := body.Close(); err != nil && logg != nil {
		logg.Warn(ctx, msg)
	}
}

// NewClient validates the configuration and verifies connectivity.
func NewClient(ctx context.Context, cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if cfg.CloudName == "" {
		return nil, errors.New("cloudinary cloud name is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary api credentials are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		now:        time.Now,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("cloudinary health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "cloudinary client initialized")
	}

	return client, nil
}

// Upload stores the image content and returns its secure URL and public id.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (*UploadResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("cloudinary client not initialized")
	}
	if content == nil {
		return nil, errors.New("upload content is required")
	}

	timestamp := strconv.FormatInt(c.now().UTC().Unix(), 10)
	params := map[string]string{"timestamp": timestamp}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	signature := c.sign(params)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", sanitizeFileName(name))
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copying upload content: %w", err)
	}

	fields := map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"signature": signature,
	}
	if c.folder != "" {
		fields["folder"] = c.folder
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("writing form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", baseEndpoint, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	defer closeBody(ctx, nil, resp.Body, "closing upload response body")

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cloudinary upload failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if result.SecureURL == "" {
		return nil, errors.New("cloudinary upload returned no secure url")
	}
	return &result, nil
}

// Destroy removes a previously uploaded image by public id.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if c == nil || c.httpClient == nil {
		return errors.New("cloudinary client not initialized")
	}
	if publicID == "" {
		return errors.New("public id is required")
	}

	timestamp := strconv.FormatInt(c.now().UTC().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := c.sign(params)

	form := make([]string, 0, 4)
	form = append(form,
		"public_id="+publicID,
		"timestamp="+timestamp,
		"api_key="+c.apiKey,
		"signature="+signature,
	)

	endpoint := fmt.Sprintf("%s/%s/image/destroy", baseEndpoint, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(strings.Join(form, "&")))
	if err != nil {
		return fmt.Errorf("building destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("destroying image: %w", err)
	}
	defer closeBody(ctx, nil, resp.Body, "closing destroy response body")

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cloudinary destroy failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}

// Ping verifies the account credentials against the admin API.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("cloudinary client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/ping", baseEndpoint, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinging cloudinary: %w", err)
	}
	defer closeBody(ctx, nil, resp.Body, "closing ping response body")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cloudinary ping failed: status %d", resp.StatusCode)
	}
	return nil
}

// sign produces the SHA-1 request signature over the sorted parameter string.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return name
}
