package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://vision.googleapis.com"
	DefaultMaxResults = 10
	annotatePath      = "/v1/images:annotate"
)

// Cloud Vision feature types requested for every image.
const (
	featureLabels  = "LABEL_DETECTION"
	featureObjects = "OBJECT_LOCALIZATION"
	featureText    = "TEXT_DETECTION"
	featureColors  = "IMAGE_PROPERTIES"
)

var allFeatures = []string{featureLabels, featureObjects, featureText, featureColors}

// Extractor turns an image into normalized signals.
type Extractor interface {
	Extract(ctx context.Context, img Image) (*Signals, error)
}

// ClientOpts configures a Cloud Vision client.
type ClientOpts struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	RequestsPerSecond float64 // 0 disables client-side quota limiting
	Downloader        *Downloader
}

// Client calls the Cloud Vision REST API. It is safe for concurrent use and
// meant to be constructed once per process and shared.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	maxResults int
	limiter    *rate.Limiter
	downloader *Downloader
}

var _ Extractor = (*Client)(nil)

// NewClient creates a Cloud Vision client. A missing API key yields
// ErrNotConfigured so callers can report the feature as unavailable.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is empty", ErrNotConfigured)
	}

	c := &Client{
		apiKey:     opts.APIKey,
		maxResults: opts.MaxResults,
		downloader: opts.Downloader,
	}
	if c.maxResults <= 0 {
		c.maxResults = DefaultMaxResults
	}
	if c.downloader == nil {
		c.downloader = NewDownloader(0, 0)
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < len(allFeatures) {
			burst = len(allFeatures)
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return c, nil
}

// Extract requests labels, objects, OCR text and dominant colors for img
// concurrently. When a by-URL request fails at the transport level, the image
// is downloaded and the whole extraction retried exactly once inline.
func (c *Client) Extract(ctx context.Context, img Image) (*Signals, error) {
	if !img.Valid() {
		return nil, fmt.Errorf("no image source provided")
	}

	signals, err := c.extract(ctx, img)
	if err == nil {
		return signals, nil
	}
	if !img.ByReference() || img.URL == "" || !retryableInline(err) || ctx.Err() != nil {
		return nil, err
	}

	log.Warn().Err(err).Str("image", img.URL).Msg("vision request by url failed, retrying with inline content")

	inline, dlErr := c.downloader.Fetch(ctx, img.URL)
	if dlErr != nil {
		return nil, fmt.Errorf("%w (inline retry download failed: %v)", err, dlErr)
	}
	return c.extract(ctx, inline)
}

func (c *Client) extract(ctx context.Context, img Image) (*Signals, error) {
	reqImage := toRequestImage(img)
	responses := make([]*imageResponse, len(allFeatures))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, feature := range allFeatures {
		g.Go(func() error {
			resp, err := c.annotate(gctx, reqImage, feature, img.ByReference())
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	signals := normalizeResponses(responses)
	log.Info().
		Str("image", img.String()).
		Int("labels", len(signals.Labels)).
		Int("objects", len(signals.Objects)).
		Int("textLength", len(signals.Text)).
		Int("colors", len(signals.DominantColors)).
		Dur("latency", time.Since(start)).
		Msg("vision signals extracted")

	return signals, nil
}

func (c *Client) annotate(ctx context.Context, img requestImage, feature string, byReference bool) (*imageResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("vision rate limiter: %w", err)
		}
	}

	body := annotateRequest{Requests: []imageRequest{{
		Image:    img,
		Features: []featureRequest{{Type: feature, MaxResults: c.maxResults}},
	}}}

	var out annotateResponse
	var apiErr apiErrorBody
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(annotatePath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, feature, err)
	}
	if err := classifyStatus(res, apiErr, feature); err != nil {
		return nil, err
	}

	if len(out.Responses) == 0 {
		return &imageResponse{}, nil
	}
	resp := out.Responses[0]
	if resp.Error != nil && resp.Error.Code != 0 {
		if byReference {
			return nil, fmt.Errorf("%w: %s: %s", ErrImageUnreachable, feature, resp.Error.Message)
		}
		return nil, fmt.Errorf("vision %s failed: %s (code %d)", feature, resp.Error.Message, resp.Error.Code)
	}
	return &resp, nil
}

// classifyStatus maps a failing HTTP response onto the package error taxonomy.
func classifyStatus(res *resty.Response, apiErr apiErrorBody, feature string) error {
	if !res.IsError() {
		return nil
	}
	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(res.StatusCode())
	}
	switch code := res.StatusCode(); {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: %s (status %d)", ErrNotConfigured, msg, code)
	case code == http.StatusTooManyRequests, code >= 500:
		return fmt.Errorf("%w: %s: %s (status %d)", ErrTransport, feature, msg, code)
	case code == http.StatusBadRequest && apiErr.Error.Status == "INVALID_ARGUMENT" && isKeyError(msg):
		return fmt.Errorf("%w: %s", ErrNotConfigured, msg)
	default:
		return fmt.Errorf("vision %s request failed: %s (status %d)", feature, msg, code)
	}
}

// isKeyError detects Google's "API key not valid" responses, which arrive as
// 400 INVALID_ARGUMENT rather than 401.
func isKeyError(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "api key")
}

func toRequestImage(img Image) requestImage {
	switch {
	case len(img.Content) > 0:
		return requestImage{Content: base64.StdEncoding.EncodeToString(img.Content)}
	case img.StorageURI != "":
		return requestImage{Source: &imageSource{GCSImageURI: img.StorageURI}}
	default:
		return requestImage{Source: &imageSource{ImageURI: img.URL}}
	}
}
