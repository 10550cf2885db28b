// Mini NTP Clock
// Copyright (c) 2026 The Mini NTP Clock Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Mini NTP Clock.
//
// Mini NTP Clock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mini NTP Clock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mini NTP Clock.  If not, see <http://www.gnu.org/licenses/>.

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/config"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/datastore"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/sources"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timecore"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ClockMonitorInterval is how often the host clock is checked for becoming
// reliable after boot.
const ClockMonitorInterval = time.Minute

// Core is the opened time core: medium, store, authority and the optional
// host clock source.
type Core struct {
	Medium    datastore.Medium
	Store     *datastore.Store
	Authority *timecore.Authority
	Host      *sources.HostClock
	closer    io.Closer
	clock     clockwork.Clock
}

// Open builds the time core described by cfg. Relative medium paths are
// resolved against dataDir. A nil clock uses the real clock.
func Open(cfg *config.Instance, dataDir string, clock clockwork.Clock) (*Core, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	m, closer, err := openMedium(cfg, dataDir)
	if err != nil {
		return nil, err
	}

	store, err := datastore.NewStore(m)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	if bad := store.VerifyAll(); len(bad) > 0 {
		log.Warn().Strs("records", bad).Msg("records failed integrity check, defaults will be restored")
	}

	core := &Core{
		Medium:    m,
		Store:     store,
		Authority: timecore.New(store),
		closer:    closer,
		clock:     clock,
	}

	if cfg.HostSource() {
		core.Host = sources.NewHostClock(clock)
		if err := core.Authority.RegisterSource(timecore.LocalClock, core.Host); err != nil {
			_ = core.Close()
			return nil, fmt.Errorf("failed to register host clock: %w", err)
		}
		log.Info().Msg("registered host clock as local clock source")
	}

	return core, nil
}

// Close releases the medium.
func (c *Core) Close() error {
	if c.closer == nil {
		return nil
	}
	if err := c.closer.Close(); err != nil {
		return fmt.Errorf("failed to close medium: %w", err)
	}
	return nil
}

// Seed offers the host time once as a local clock reading, if the host
// clock looks set.
func (c *Core) Seed() bool {
	now := c.clock.Now()
	if !helpers.IsClockReliable(now) {
		log.Warn().Time("host", now).Msg("host clock unreliable, not seeding")
		return false
	}
	utc, ok := helpers.UnixSeconds(now)
	if !ok {
		return false
	}
	accepted := c.Authority.OfferUTC(utc, timecore.LocalClock)
	if accepted {
		log.Info().Uint32("utc", utc).Msg("seeded time from host clock")
	}
	return accepted
}

func openMedium(cfg *config.Instance, dataDir string) (datastore.Medium, io.Closer, error) {
	backend := cfg.StorageBackend()
	switch backend {
	case config.BackendMemory:
		log.Info().Msg("using in-memory medium, settings will not survive a restart")
		return datastore.NewMemoryMedium(datastore.DefaultCapacity), nil, nil
	case config.BackendBolt:
		path := cfg.StoragePath(dataDir)
		log.Info().Str("path", path).Msg("opening bolt medium")
		if err := helpers.EnsureDirectories(filepath.Dir(path)); err != nil {
			return nil, nil, err
		}
		m, err := datastore.OpenBoltMedium(path, datastore.DefaultCapacity)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt medium: %w", err)
		}
		return m, m, nil
	case config.BackendFile, "":
		path := cfg.StoragePath(dataDir)
		log.Info().Str("path", path).Msg("opening file medium")
		m, err := datastore.OpenFileMedium(afero.NewOsFs(), path, datastore.DefaultCapacity)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file medium: %w", err)
		}
		return m, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// Start opens the time core and runs it until stop is called or ctx is
// cancelled. done is closed once every goroutine has exited and the medium
// is closed.
func Start(
	ctx context.Context,
	cfg *config.Instance,
	dataDir string,
	clock clockwork.Clock,
) (core *Core, stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	bootUUID := uuid.New().String()
	log.Info().Msgf("boot session UUID: %s", bootUUID)

	core, err = Open(cfg, dataDir, clock)
	if err != nil {
		log.Error().Err(err).Msg("error opening time core")
		return nil, nil, nil, err
	}

	if cfg.SeedFromHost() {
		core.Seed()
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	runner := timecore.NewRunner(core.Authority, core.clock, cfg.PollInterval())
	g.Go(func() error {
		return runner.Run(gctx)
	})

	if core.Host != nil {
		g.Go(func() error {
			monitorHostClock(gctx, core.clock, core.Authority)
			return nil
		})
	}

	log.Info().Msg("time core started")

	doneCh := make(chan struct{})
	var runErr error
	go func() {
		runErr = g.Wait()
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			log.Error().Err(runErr).Msg("time core stopped with error")
		}
		if closeErr := core.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing medium")
		}
		log.Info().Str("boot", bootUUID).Msg("time core stopped")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return runErr
	}
	return core, stop, doneCh, nil
}

// monitorHostClock polls the sources as soon as the host clock becomes
// reliable, instead of waiting for the next poll interval.
func monitorHostClock(ctx context.Context, clock clockwork.Clock, a *timecore.Authority) {
	if helpers.IsClockReliable(clock.Now()) {
		return
	}

	ticker := clock.NewTicker(ClockMonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if !helpers.IsClockReliable(clock.Now()) {
				continue
			}
			log.Info().Msg("host clock became reliable, polling sources")
			report := a.PollSources()
			log.Debug().
				Int("accepted", report.Accepted).
				Int("rejected", report.Rejected).
				Int("delayed", report.Delayed).
				Msg("poll after host clock sync")
			return
		case <-ctx.Done():
			return
		}
	}
}
