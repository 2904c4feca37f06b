package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jdalgard/pageplan/pkg/driver"
	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/region"
	"github.com/jdalgard/pageplan/pkg/reroute"
	"github.com/jdalgard/pageplan/pkg/segment"
)

// job holds one document's planning session.
type job struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Regions   []region.Config
	Driver    *driver.Driver
}

type storeFactory func(ctx context.Context) (reroute.Store, error)

// jobStore is the in-memory job registry.
type jobStore struct {
	mu       sync.RWMutex
	jobs     map[string]*job
	newStore storeFactory
	cfg      driver.Config
	logger   *log.Logger
}

func newJobStore(factory storeFactory, cfg driver.Config, logger *log.Logger) *jobStore {
	return &jobStore{
		jobs:     make(map[string]*job),
		newStore: factory,
		cfg:      cfg,
		logger:   logger,
	}
}

func (js *jobStore) create(ctx context.Context, title string, segments []segment.Descriptor, regions []region.Config) (*job, error) {
	store, err := js.newStore(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create reroute store")
	}

	d := driver.New(js.cfg, store, driver.WithLogger(js.logger))
	d.SetRegions(regions)
	d.SetSegments(segments)

	j := &job{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Regions:   regions,
		Driver:    d,
	}

	js.mu.Lock()
	js.jobs[j.ID] = j
	js.mu.Unlock()
	return j, nil
}

func (js *jobStore) get(id string) (*job, error) {
	js.mu.RLock()
	defer js.mu.RUnlock()
	j, ok := js.jobs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeJobNotFound, "no such job: %s", id)
	}
	return j, nil
}

func (js *jobStore) closeAll() {
	js.mu.Lock()
	defer js.mu.Unlock()
	for _, j := range js.jobs {
		if err := j.Driver.Close(); err != nil {
			js.logger.Warn("close job", "id", j.ID, "err", err)
		}
	}
	js.jobs = make(map[string]*job)
}
