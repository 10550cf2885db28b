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

//go:build deadlock

// Package syncutil holds the lock types guarding the authority, the store,
// the host clock and the daemon config. A normal build uses the sync
// package. Building with -tags=deadlock swaps in go-deadlock, which reports
// a lock waited on for longer than DeadlockTimeout, such as a write-back
// stuck in a source.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock checking is compiled in.
const DeadlockEnabled = true

// DeadlockTimeout is well above the slowest commit to the medium.
const DeadlockTimeout = 10 * time.Second

func init() {
	deadlock.Opts.DeadlockTimeout = DeadlockTimeout
}

// Mutex is a checked mutex.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is the reader/writer variant of Mutex.
type RWMutex struct {
	deadlock.RWMutex
}
