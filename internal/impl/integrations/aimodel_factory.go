package integrations

import (
	"net/http"
	"net/url"
	"time"

	"github.com/drujensen/deskimager/internal/domain/errors"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds a single request to the inference server. Vision requests
// on a CPU can take minutes.
const DefaultRequestTimeout = 5 * time.Minute

// OllamaClientFactory opens clients for Ollama compatible servers
type OllamaClientFactory struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOllamaClientFactory creates a new factory sharing one HTTP client
func NewOllamaClientFactory(timeout time.Duration, logger *zap.Logger) *OllamaClientFactory {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &OllamaClientFactory{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// NewClient validates baseURL and returns a client bound to it
func (f *OllamaClientFactory) NewClient(baseURL string) (interfaces.InferenceClient, error) {
	u, err := ParseServerURL(baseURL)
	if err != nil {
		return nil, err
	}
	return NewOllamaClient(u, f.httpClient, f.logger), nil
}

// ParseServerURL accepts http and https URLs with a host.
func ParseServerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.ValidationErrorf("invalid server url %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.ValidationErrorf("server url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, errors.ValidationErrorf("server url %q has no host", raw)
	}
	return u, nil
}

var _ interfaces.InferenceClientFactory = (*OllamaClientFactory)(nil)
