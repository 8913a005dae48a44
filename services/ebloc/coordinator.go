// Package ebloc coordinates polling of the e-bloc.ro portal: one
// authenticated session, one refresh pipeline, one published snapshot
// shared by every reader.
package ebloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	scraper "ebloc-backend/lib/scrapers/ebloc"
	"ebloc-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("ebloc.services.ebloc")
var meter = otel.Meter("services/ebloc")

// the portal updates at most a few times a day, polling faster than
// this only risks tripping its abuse detection
const DefaultPollInterval = time.Minute * 5

type Options struct {
	// defaults to the public portal when empty
	BaseUrl       string `json:"base_url"`
	AssociationId string `json:"association_id"`
	ApartmentId   string `json:"apartment_id"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

func (o Options) validate() error {
	var missing []string
	if o.AssociationId == "" {
		missing = append(missing, "association_id")
	}
	if o.ApartmentId == "" {
		missing = append(missing, "apartment_id")
	}
	if o.Username == "" {
		missing = append(missing, "username")
	}
	if o.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required options: %v", missing)
	}
	return nil
}

// Coordinator owns the portal session and the refresh algorithm.
// Overlapping refresh requests are coalesced into a single in-flight
// cycle whose outcome every caller shares.
type Coordinator struct {
	opts Options
	acct scraper.Account

	// owned by the refresh cycle, which singleflight serializes;
	// never handed out to readers
	client        *scraper.Client
	authenticated atomic.Bool

	flight   singleflight.Group
	snapshot atomic.Pointer[Snapshot]

	mu        sync.Mutex
	lastErr   error
	healthy   bool
	listeners []func()

	refreshOk     metric.Int64Counter
	refreshFailed metric.Int64Counter
}

func NewCoordinator(opts Options) (*Coordinator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	refreshOk, err := meter.Int64Counter(
		"refresh_total",
		metric.WithDescription("The total amount of refresh cycles that published a snapshot."),
	)
	if err != nil {
		return nil, err
	}
	refreshFailed, err := meter.Int64Counter(
		"refresh_failed_total",
		metric.WithDescription("The total amount of refresh cycles that failed."),
	)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		opts: opts,
		acct: scraper.Account{
			AssociationId: opts.AssociationId,
			ApartmentId:   opts.ApartmentId,
		},
		refreshOk:     refreshOk,
		refreshFailed: refreshFailed,
	}, nil
}

// Snapshot returns the latest published snapshot. It keeps returning
// the last successful cycle's data after a failed cycle; Healthy tells
// the two apart.
func (c *Coordinator) Snapshot() (*Snapshot, bool) {
	snap := c.snapshot.Load()
	return snap, snap != nil
}

// Healthy reports whether the most recent refresh cycle succeeded.
func (c *Coordinator) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// OnUpdate registers a callback invoked after every refresh cycle,
// successful or not.
func (c *Coordinator) OnUpdate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Refresh runs one refresh cycle. Callers that arrive while a cycle is
// already in flight await that cycle's outcome instead of starting
// another one.
func (c *Coordinator) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := c.flight.Do("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (c *Coordinator) refresh(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "coordinator:refresh")
	defer span.End()

	snap, err := c.cycle(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh cycle failed")
		c.refreshFailed.Add(ctx, 1)

		c.mu.Lock()
		c.lastErr = err
		c.healthy = false
		c.mu.Unlock()
		c.notify()
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	c.snapshot.Store(snap)
	c.refreshOk.Add(ctx, 1)

	c.mu.Lock()
	c.lastErr = nil
	c.healthy = true
	c.mu.Unlock()
	c.notify()

	slog.DebugContext(ctx, "published snapshot", "active_month", snap.ActiveMonth)
	return snap, nil
}

// cycle is the refresh algorithm proper. Errors returned from here abort
// the whole cycle; failures inside individual dataset fetches degrade to
// empty datasets instead (see dataset).
func (c *Coordinator) cycle(ctx context.Context) (*Snapshot, error) {
	if c.client == nil {
		client, err := scraper.NewClient(ctx, scraper.ClientOptions{BaseUrl: c.opts.BaseUrl})
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		c.client = client
	}

	if !c.authenticated.Load() {
		err := c.client.Login(ctx, c.opts.Username, c.opts.Password)
		if err != nil {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		c.authenticated.Store(true)
	}

	months, err := c.fetchMonths(ctx)
	if err != nil {
		return nil, err
	}

	activeMonth, ok := months.Active()
	if !ok {
		slog.WarnContext(ctx, "month list is empty, fetching without a billing period")
	}

	// no ordering dependency among the three once the month is known
	var home, index, receipts scraper.RawMap
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		home = c.dataset(ctx, "home", activeMonth, c.client.FetchHome)
	}()
	go func() {
		defer wg.Done()
		index = c.dataset(ctx, "index", activeMonth, c.client.FetchIndex)
	}()
	go func() {
		defer wg.Done()
		receipts = c.dataset(ctx, "receipts", activeMonth, c.client.FetchReceipts)
	}()
	wg.Wait()

	return &Snapshot{
		Home:        home,
		Index:       index,
		Receipts:    receipts,
		Months:      months,
		ActiveMonth: activeMonth,
		FetchedAt:   timezone.Now(),
	}, nil
}

// fetchMonths is an orchestration-level step: a transport failure aborts
// the cycle. A bad status or an undecodable body degrades to an empty
// list, which turns into an absent active month downstream.
func (c *Coordinator) fetchMonths(ctx context.Context) (scraper.MonthList, error) {
	months, err := c.client.FetchMonths(ctx, c.acct)
	switch {
	case err == nil:
		return months, nil
	case errors.Is(err, scraper.ErrDecode):
		// the portal dumped us onto its login page, log in again next cycle
		c.authenticated.Store(false)
		slog.WarnContext(ctx, "month list fetch degraded to empty", "err", err)
		return nil, nil
	case errors.Is(err, scraper.ErrStatus):
		slog.WarnContext(ctx, "month list fetch degraded to empty", "err", err)
		return nil, nil
	default:
		return nil, fmt.Errorf("fetch month list: %w", err)
	}
}

// dataset degrades any failure to an empty map so one broken endpoint
// does not abort its sibling fetches. A 200 carrying the login page
// instead of JSON additionally means the session silently expired, so
// the next cycle re-authenticates.
func (c *Coordinator) dataset(
	ctx context.Context,
	name string,
	month string,
	fetch func(context.Context, scraper.Account, string) (scraper.RawMap, error),
) scraper.RawMap {
	m, err := fetch(ctx, c.acct, month)
	if err == nil {
		return m
	}
	if errors.Is(err, scraper.ErrDecode) {
		c.authenticated.Store(false)
	}
	slog.WarnContext(ctx, "dataset fetch degraded to empty", "dataset", name, "err", err)
	return scraper.RawMap{}
}

// Run refreshes immediately and then on a fixed interval until the
// context is done. Failed cycles are logged and retried next interval.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	_, err := c.Refresh(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "refresh", "err", err)
	}

	ticker := time.NewTicker(interval)
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case <-ticker.C:
			_, err := c.Refresh(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "refresh", "err", err)
			}
		}
	}
}
