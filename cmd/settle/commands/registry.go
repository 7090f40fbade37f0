package commands

import (
	"context"
	"errors"
	"time"

	"github.com/farhan-ahmed1/settle/internal/task"
	"github.com/farhan-ahmed1/settle/pkg/client"
)

// errFailHandler is what the "fail" handler always returns
var errFailHandler = errors.New("fail handler failed")

const sleepHandlerDelay = 100 * time.Millisecond

// newRegistry registers the handlers the run command can launch by name
func newRegistry(fetcher *client.Fetcher) (*task.Registry, error) {
	registry := task.NewRegistry()

	handlers := map[string]task.Handler{
		"fetch": func(ctx context.Context) (interface{}, error) {
			return fetcher.Fetch(ctx)
		},
		"sleep": func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(sleepHandlerDelay):
				return sleepHandlerDelay.String(), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
		"fail": func(ctx context.Context) (interface{}, error) {
			return nil, errFailHandler
		},
	}

	for name, h := range handlers {
		if err := registry.Register(name, h); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
