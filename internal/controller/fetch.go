package controller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"dhcpconsole/internal/reconcile"
	"dhcpconsole/pkg/models"
	"dhcpconsole/pkg/utils"
)

// fetch runs one fetch of resource r. Each fetch takes a sequence number when
// issued; its result is applied only if no later-issued fetch of the same
// resource has been applied already, so a slow stale response never
// overwrites newer data.
func fetch[T any](
	ctx context.Context,
	c *Controller,
	r Resource,
	get func(context.Context) (T, error),
	apply func(*reconcile.Snapshot, T),
) error {
	seq := c.begin(r)
	v, err := get(ctx)
	applied := c.settle(r, seq, err, func(s *reconcile.Snapshot) { apply(s, v) })

	if applied {
		c.notifier.Updated(r)
	}
	return err
}

func (c *Controller) begin(r Resource) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.states[r]
	st.issued++
	st.inFlight++
	return st.issued
}

func (c *Controller) settle(r Resource, seq uint64, err error, apply func(*reconcile.Snapshot)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.states[r]
	st.inFlight--

	if seq <= st.applied {
		log.Printf("Discarding stale %s response (fetch %d, have %d)", r, seq, st.applied)
		return false
	}

	if err != nil {
		st.lastErr = err
		return false
	}

	apply(&c.data)
	st.applied = seq
	st.lastErr = nil
	st.lastSuccess = time.Now()
	return true
}

func (c *Controller) load(ctx context.Context, r Resource) error {
	switch r {
	case Stats:
		return fetch(ctx, c, r, c.backend.Stats, func(s *reconcile.Snapshot, v models.Stats) {
			s.Stats = v
		})
	case Devices:
		return fetch(ctx, c, r, c.backend.Devices, func(s *reconcile.Snapshot, v []models.Device) {
			s.Devices = v
		})
	case Tags:
		return fetch(ctx, c, r, c.backend.Tags, func(s *reconcile.Snapshot, v []models.Tag) {
			s.Tags = v
		})
	case Leases:
		return fetch(ctx, c, r, c.backend.Leases, func(s *reconcile.Snapshot, v []models.Lease) {
			s.Leases = v
		})
	}
	return fmt.Errorf("unknown resource %q", r)
}

// loadConcurrently fetches resources in parallel and waits for all of them.
// A failure never cancels the others; each success is applied on its own.
func (c *Controller) loadConcurrently(ctx context.Context, resources ...Resource) error {
	var wg sync.WaitGroup
	errs := make([]error, len(resources))

	for i, r := range resources {
		wg.Add(1)
		go func(i int, r Resource) {
			defer wg.Done()
			errs[i] = c.load(ctx, r)
		}(i, r)
	}
	wg.Wait()

	failures := make(map[string]error)
	for i, err := range errs {
		if err != nil {
			failures[string(resources[i])] = err
		}
	}
	if len(failures) > 0 {
		return &models.PartialRefreshError{Failures: failures}
	}
	return nil
}

// LoadAll refreshes stats, devices, tags and leases concurrently
func (c *Controller) LoadAll(ctx context.Context) error {
	if err := c.loadConcurrently(ctx, AllResources...); err != nil {
		c.notify(models.LevelError, "Error loading data: "+utils.Message(err, models.DefaultRequestError))
		return err
	}

	c.mu.Lock()
	c.lastUpdated = time.Now()
	c.mu.Unlock()
	return nil
}

// LoadOverview refreshes the resources shown on the overview: stats, leases and tags
func (c *Controller) LoadOverview(ctx context.Context) error {
	if err := c.loadConcurrently(ctx, Stats, Leases, Tags); err != nil {
		c.notify(models.LevelError, "Error loading overview: "+utils.Message(err, models.DefaultRequestError))
		return err
	}
	return nil
}

// LoadStats refreshes the summary counters. Failures are logged only.
func (c *Controller) LoadStats(ctx context.Context) error {
	err := c.load(ctx, Stats)
	utils.CheckWarn(err, "loading stats")
	return err
}

// LoadLeases refreshes the lease list. Failures are logged only.
func (c *Controller) LoadLeases(ctx context.Context) error {
	err := c.load(ctx, Leases)
	utils.CheckWarn(err, "loading leases")
	return err
}

// LoadDevices refreshes the device list
func (c *Controller) LoadDevices(ctx context.Context) error {
	if err := c.load(ctx, Devices); err != nil {
		c.notify(models.LevelError, "Error loading devices: "+utils.Message(err, models.DefaultRequestError))
		return err
	}
	return nil
}

// LoadTags refreshes the custom tag list
func (c *Controller) LoadTags(ctx context.Context) error {
	if err := c.load(ctx, Tags); err != nil {
		c.notify(models.LevelError, "Error loading tags: "+utils.Message(err, models.DefaultRequestError))
		return err
	}
	return nil
}

// Discover forces a device refresh so newly seen devices show up
func (c *Controller) Discover(ctx context.Context) error {
	c.notify(models.LevelInfo, "Device discovery started...")
	if err := c.LoadDevices(ctx); err != nil {
		return err
	}
	c.notify(models.LevelSuccess, "Device discovery completed")
	return nil
}
