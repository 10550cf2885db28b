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

package timecore

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Runner drives an Authority: it ticks once per second and polls the
// registered sources every PollInterval.
type Runner struct {
	auth         *Authority
	clock        clockwork.Clock
	quiet        *rate.Sometimes
	pollInterval time.Duration
}

// NewRunner returns a runner for a. A nil clock uses the real clock and a
// zero pollInterval disables polling.
func NewRunner(a *Authority, clock clockwork.Clock, pollInterval time.Duration) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		auth:         a,
		clock:        clock,
		pollInterval: pollInterval,
		quiet:        &rate.Sometimes{First: 1, Interval: 10 * time.Minute},
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()

	var pollC <-chan time.Time
	if r.pollInterval > 0 {
		poller := r.clock.NewTicker(r.pollInterval)
		defer poller.Stop()
		pollC = poller.Chan()
		r.poll()
	}

	log.Debug().
		Dur("poll_interval", r.pollInterval).
		Msg("timecore: runner started")

	for {
		select {
		case <-ticker.Chan():
			r.tick()
		case <-pollC:
			r.poll()
		case <-ctx.Done():
			log.Debug().Msg("timecore: runner stopped")
			return nil
		}
	}
}

func (r *Runner) tick() {
	from, to, demoted := r.auth.tick()
	if demoted {
		log.Info().
			Stringer("from", from).
			Stringer("to", to).
			Msg("timecore: no fresh time, trust degraded")
	}
}

func (r *Runner) poll() {
	report := r.auth.PollSources()
	if report.Accepted > 0 {
		log.Debug().
			Int("accepted", report.Accepted).
			Stringer("master", r.auth.Master()).
			Msg("timecore: sources polled")
	}
	if report.Rejected > 0 || report.Delayed > 0 {
		r.quiet.Do(func() {
			log.Warn().
				Int("rejected", report.Rejected).
				Int("delayed", report.Delayed).
				Msg("timecore: source readings not applied")
		})
	}
}
