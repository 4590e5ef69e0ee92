//go:build integration

// Package tests contains helpers for integration tests against real infrastructure running in docker.
package tests

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

var ErrDockerFailure = errors.New("docker failure")

// RetryFunc connects to the started container.
// The returned func is called by the dockertest.Pool until it succeeds or the container times out.
type RetryFunc func(resource *dockertest.Resource) func() error

type container struct {
	cleanup func() error
	users   int
}

//nolint:gochecknoglobals // containers are shared between tests of one package.
var (
	containers = map[string]*container{}
	mu         = sync.Mutex{}
)

// StartDockerContainer starts a container and blocks until retryFunc could connect to it.
// The returned cleanup removes the container once the last user called it.
func StartDockerContainer(runOptions *dockertest.RunOptions, retryFunc RetryFunc) (func() error, error) {
	if runOptions == nil {
		return nil, fmt.Errorf("%w: invalid run options", ErrDockerFailure)
	}

	if retryFunc == nil {
		return nil, fmt.Errorf("%w: invalid retry func", ErrDockerFailure)
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: could not create new pool: %v", ErrDockerFailure, err) //nolint:errorlint,lll // prevent err in api
	}

	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: could not connect to docker: %v", ErrDockerFailure, err) //nolint:errorlint,lll // prevent err in api
	}

	resource, err := pool.RunWithOptions(runOptions, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no", MaximumRetryCount: 0}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not start resource: %v", ErrDockerFailure, err) //nolint:errorlint,lll // prevent err in api
	}

	const timeout = 120
	_ = resource.Expire(timeout) // hard kill, if a test run never calls cleanup

	pool.MaxWait = timeout * time.Second
	if err = pool.Retry(retryFunc(resource)); err != nil {
		_ = pool.Purge(resource)

		return nil, fmt.Errorf("%w: could not connect to container: %v", ErrDockerFailure, err) //nolint:errorlint,lll // prevent err in api
	}

	name := resource.Container.Name
	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		containers[name].users--
		if containers[name].users > 0 {
			return nil
		}

		delete(containers, name)

		if err := pool.Purge(resource); err != nil {
			return fmt.Errorf("%w: could not purge resource: %v", ErrDockerFailure, err) //nolint:errorlint,lll // prevent err in api
		}

		return nil
	}

	mu.Lock()
	containers[name] = &container{cleanup: cleanup, users: 1}
	mu.Unlock()

	return cleanup, nil
}
