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

// Package datastore persists typed configuration records on a small byte
// addressable medium. Every record carries a CRC32 trailer; a record that
// fails its check is replaced by its default and written back.
package datastore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers/syncutil"
)

var (
	ErrOutOfRange   = errors.New("record outside medium")
	ErrIntegrity    = errors.New("record failed integrity check")
	ErrNotesTooLong = errors.New("notes exceed 500 bytes")
	ErrValueTooLong = errors.New("value exceeds field size")
)

// Store reads and writes CRC guarded records. It is safe for concurrent
// use.
type Store struct {
	m      Medium
	layout Layout
	mu     syncutil.Mutex
}

// NewStore wraps m and checks that the default layout fits on it.
func NewStore(m Medium) (*Store, error) {
	layout := DefaultLayout()
	if err := ValidateLayout(layout, m.Capacity()); err != nil {
		return nil, fmt.Errorf("invalid layout for medium: %w", err)
	}
	return &Store{m: m, layout: layout}, nil
}

// Medium returns the underlying medium.
func (s *Store) Medium() Medium {
	return s.m
}

// Layout returns the address map in use.
func (s *Store) Layout() Layout {
	return s.layout
}

func (s *Store) inBounds(addr, size int) bool {
	return addr >= 0 && size >= 0 && addr+size+TrailerSize <= s.m.Capacity()
}

// WriteRecord writes raw at addr followed by its CRC32 and commits once.
func (s *Store) WriteRecord(addr int, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(addr, raw)
}

func (s *Store) writeLocked(addr int, raw []byte) error {
	if !s.inBounds(addr, len(raw)) {
		return fmt.Errorf("write %d bytes at %d: %w", len(raw), addr, ErrOutOfRange)
	}

	for i, b := range raw {
		s.m.SetByte(addr+i, b)
	}
	var trailer [TrailerSize]byte
	binary.LittleEndian.PutUint32(trailer[:], crc32.ChecksumIEEE(raw))
	for i, b := range trailer {
		s.m.SetByte(addr+len(raw)+i, b)
	}

	if err := s.m.Commit(); err != nil {
		return fmt.Errorf("failed to commit record at %d: %w", addr, err)
	}
	return nil
}

// ReadRecord returns the size bytes stored at addr and whether their CRC32
// matches the trailer.
func (s *Store) ReadRecord(addr, size int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(addr, size)
}

func (s *Store) readLocked(addr, size int) ([]byte, bool) {
	if !s.inBounds(addr, size) {
		return nil, false
	}

	raw := make([]byte, size)
	for i := range raw {
		raw[i] = s.m.ByteAt(addr + i)
	}
	var trailer [TrailerSize]byte
	for i := range trailer {
		trailer[i] = s.m.ByteAt(addr + size + i)
	}
	return raw, binary.LittleEndian.Uint32(trailer[:]) == crc32.ChecksumIEEE(raw)
}

// Verify checks the record at addr without healing it.
func (s *Store) Verify(addr, size int) error {
	if !s.inBounds(addr, size) {
		return fmt.Errorf("verify %d bytes at %d: %w", size, addr, ErrOutOfRange)
	}
	if _, ok := s.ReadRecord(addr, size); !ok {
		return fmt.Errorf("record at %d: %w", addr, ErrIntegrity)
	}
	return nil
}

// VerifyAll checks every region of the layout and returns the names of the
// regions that fail.
func (s *Store) VerifyAll() []string {
	var bad []string
	for _, r := range s.layout {
		if err := s.Verify(r.Addr, r.Size); err != nil {
			bad = append(bad, r.Name)
		}
	}
	return bad
}

// EraseAll fills the whole medium with erased cells and commits.
func (s *Store) EraseAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eraseLocked(0, s.m.Capacity())
}

func (s *Store) eraseLocked(addr, size int) error {
	for i := addr; i < addr+size; i++ {
		s.m.SetByte(i, EraseByte)
	}
	if err := s.m.Commit(); err != nil {
		return fmt.Errorf("failed to commit erase at %d: %w", addr, err)
	}
	return nil
}
