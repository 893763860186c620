// Package classifier adapts a remote vision model that grades vehicle damage
// photos into one of three severity buckets.
package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
)

// severityByCode maps the model's single-character answer to a severity
// bucket. Anything else, including a refusal or a malformed reply, grades as
// unknown rather than failing the request.
var severityByCode = map[string]string{
	"1": api.DamageSeverityLight,
	"2": api.DamageSeverityModerate,
	"3": api.DamageSeveritySevere,
}

var narrativeBySeverity = map[string]string{
	api.DamageSeverityLight:    "Light damage: mostly cosmetic, with an estimated repair cost of up to $750.",
	api.DamageSeverityModerate: "Moderate damage: repairable, with an estimated repair cost between $750 and $1,500.",
	api.DamageSeveritySevere:   "Severe damage: the vehicle is likely a total loss.",
	api.DamageSeverityUnknown:  "The damage could not be assessed from the provided photos.",
}

// Classifier calls the remote model, caching results per photo set and
// spacing calls out so the upstream service is never hit more than once per
// interval. Concurrent callers asking about the same photo set still result
// in at most one upstream call each interval; the rest wait their turn and
// then hit the cache.
type Classifier struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.Mutex
	cache map[string]api.ClassificationOutput
}

// New builds a Classifier for the given endpoint. minInterval is the minimum
// spacing between upstream calls.
func New(endpoint string, minInterval time.Duration) *Classifier {
	return &Classifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: time.Second * 30},
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		cache:      map[string]api.ClassificationOutput{},
	}
}

// NewFromEnv builds a Classifier from the environment configuration.
func NewFromEnv() *Classifier {
	interval := time.Duration(domain.Env.ClassifierMinIntervalSeconds) * time.Second
	return New(domain.Env.ClassifierURL, interval)
}

type modelRequest struct {
	Images []string `json:"images"`
}

type modelResponse struct {
	Result string `json:"result"`
}

// Classify grades a set of damage photos together. Results are cached by the
// exact set of image references, so re-running classification for an
// unchanged photo set costs nothing.
func (c *Classifier) Classify(ctx context.Context, imageRefs []string) (api.ClassificationOutput, error) {
	if len(imageRefs) == 0 {
		return output(api.DamageSeverityUnknown), nil
	}

	key := strings.Join(imageRefs, "|")

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return api.ClassificationOutput{}, err
	}

	// another caller may have filled the cache while we waited
	c.mu.Lock()
	cached, ok = c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	code, err := c.callModel(ctx, imageRefs)
	if err != nil {
		return api.ClassificationOutput{}, err
	}

	severity, ok := severityByCode[strings.TrimSpace(code)]
	if !ok {
		severity = api.DamageSeverityUnknown
	}
	result := output(severity)

	c.mu.Lock()
	c.cache[key] = result
	c.mu.Unlock()

	return result, nil
}

func (c *Classifier) callModel(ctx context.Context, imageRefs []string) (string, error) {
	images := make([]string, len(imageRefs))
	for i, ref := range imageRefs {
		images[i] = normalizeImageRef(ref)
	}

	body, err := json.Marshal(modelRequest{Images: images})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier service returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var mr modelResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("unexpected classifier response: %w", err)
	}

	return mr.Result, nil
}

// normalizeImageRef passes URLs and data URIs through unchanged, and wraps
// raw image bytes as a base64 data URI.
func normalizeImageRef(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:") {
		return ref
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(ref))
}

func output(severity string) api.ClassificationOutput {
	return api.ClassificationOutput{
		Severity:  severity,
		Narrative: narrativeBySeverity[severity],
	}
}
