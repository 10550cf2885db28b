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

//go:build !deadlock

// Package syncutil holds the lock types guarding the authority, the store,
// the host clock and the daemon config. A normal build uses the sync
// package. Building with -tags=deadlock swaps in go-deadlock, which reports
// a lock waited on for longer than DeadlockTimeout, such as a write-back
// stuck in a source.
package syncutil

import (
	"sync"
	"time"
)

// DeadlockEnabled reports whether lock checking is compiled in.
const DeadlockEnabled = false

// DeadlockTimeout has no effect without the deadlock tag.
const DeadlockTimeout time.Duration = 0

// Mutex is a plain sync.Mutex.
type Mutex struct {
	sync.Mutex //nolint:forbidigo // only place sync.Mutex is used
}

// RWMutex is the reader/writer variant of Mutex.
type RWMutex struct {
	sync.RWMutex //nolint:forbidigo // only place sync.RWMutex is used
}
