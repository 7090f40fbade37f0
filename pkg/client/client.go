package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/farhan-ahmed1/settle/internal/logger"
)

// DefaultEndpoint is the resource fetched when no endpoint is configured
const DefaultEndpoint = "https://jsonplaceholder.typicode.com/users"

// FailureMessage is the fixed message carried by every FetchError
const FailureMessage = "An Error Occurred"

// Response is what a Transport returns for a GET. Data holds the decoded
// JSON body.
type Response struct {
	Data interface{} `json:"data"`
}

// Transport performs the outbound GET
type Transport interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, url string) (*Response, error)

// Get calls f
func (f TransportFunc) Get(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// FetchObserver is told about every fetch and whether it succeeded
type FetchObserver interface {
	ObserveFetch(endpoint string, duration time.Duration, err error)
}

// Config holds fetcher configuration
type Config struct {
	Endpoint string
	Timeout  time.Duration // only applied to the default HTTP transport

	Transport Transport
	Logger    *logger.Logger
	Observer  FetchObserver
}

// Fetcher GETs one fixed endpoint
type Fetcher struct {
	config Config
	log    *logger.Logger
}

// New creates a fetcher. A nil Transport selects an HTTPTransport.
func New(config Config) (*Fetcher, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if _, err := url.ParseRequestURI(config.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", config.Endpoint, err)
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Transport == nil {
		config.Transport = NewHTTPTransport(&http.Client{Timeout: config.Timeout})
	}

	log := config.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Fetcher{
		config: config,
		log:    log.WithComponent("fetcher"),
	}, nil
}

// Endpoint returns the URL this fetcher reads
func (f *Fetcher) Endpoint() string {
	return f.config.Endpoint
}

// Fetch performs one GET against the endpoint. On success it returns the
// transport's response as is. On failure it returns a *FetchError whose
// Cause is the transport error.
func (f *Fetcher) Fetch(ctx context.Context) (*Response, error) {
	start := time.Now()
	resp, err := f.config.Transport.Get(ctx, f.config.Endpoint)
	duration := time.Since(start)

	if f.config.Observer != nil {
		f.config.Observer.ObserveFetch(f.config.Endpoint, duration, err)
	}

	if err != nil {
		f.log.Debug("Fetch failed", logger.Fields{
			"endpoint": f.config.Endpoint,
			"duration": duration,
			"error":    err,
		})
		return nil, &FetchError{Cause: err, Message: FailureMessage}
	}

	f.log.Debug("Fetch completed", logger.Fields{
		"endpoint": f.config.Endpoint,
		"duration": duration,
	})
	return resp, nil
}

// FetchError is the failure returned by Fetch
type FetchError struct {
	Cause   error
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the transport failure
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// MarshalJSON renders {"error": cause, "message": message}
func (e *FetchError) MarshalJSON() ([]byte, error) {
	var cause interface{}
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return json.Marshal(struct {
		Error   interface{} `json:"error"`
		Message string      `json:"message"`
	}{
		Error:   cause,
		Message: e.Message,
	})
}
