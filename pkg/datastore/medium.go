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

package datastore

const (
	// DefaultCapacity is the size of the emulated EEPROM region.
	DefaultCapacity = 4096
	// EraseByte is the value of an erased cell.
	EraseByte = 0xFF
)

// Medium is byte addressable non-volatile storage. Writes land in a RAM
// image and only survive a power cycle once Commit returns nil. Addresses
// outside [0, Capacity) read as EraseByte and writes to them are dropped.
type Medium interface {
	Capacity() int
	ByteAt(addr int) byte
	SetByte(addr int, v byte)
	Commit() error
}

// image is the RAM shadow shared by all media.
type image struct {
	buf []byte
}

func newImage(capacity int) image {
	buf := make([]byte, capacity)
	for i := range buf {
		buf[i] = EraseByte
	}
	return image{buf: buf}
}

// load copies data into the image, padding with erased cells.
func (im *image) load(data []byte) {
	n := copy(im.buf, data)
	for i := n; i < len(im.buf); i++ {
		im.buf[i] = EraseByte
	}
}

func (im *image) Capacity() int {
	return len(im.buf)
}

func (im *image) ByteAt(addr int) byte {
	if addr < 0 || addr >= len(im.buf) {
		return EraseByte
	}
	return im.buf[addr]
}

func (im *image) SetByte(addr int, v byte) {
	if addr < 0 || addr >= len(im.buf) {
		return
	}
	im.buf[addr] = v
}

func (im *image) snapshot() []byte {
	out := make([]byte, len(im.buf))
	copy(out, im.buf)
	return out
}

// MemoryMedium keeps both the working image and the committed image in
// RAM. It is used for tests and ephemeral runs.
type MemoryMedium struct {
	// CommitErr, when set, is returned by Commit and nothing is persisted.
	CommitErr error
	committed []byte
	image
	commits int
}

// NewMemoryMedium returns an erased medium of the given capacity.
func NewMemoryMedium(capacity int) *MemoryMedium {
	m := &MemoryMedium{image: newImage(capacity)}
	m.committed = m.snapshot()
	return m
}

// Commit persists the working image.
func (m *MemoryMedium) Commit() error {
	if m.CommitErr != nil {
		return m.CommitErr
	}
	m.committed = m.snapshot()
	m.commits++
	return nil
}

// Commits returns the number of successful commits.
func (m *MemoryMedium) Commits() int {
	return m.commits
}

// Committed returns a copy of the last committed image.
func (m *MemoryMedium) Committed() []byte {
	out := make([]byte, len(m.committed))
	copy(out, m.committed)
	return out
}

// PowerCycle drops uncommitted writes by reloading the committed image.
func (m *MemoryMedium) PowerCycle() {
	m.load(m.committed)
}
