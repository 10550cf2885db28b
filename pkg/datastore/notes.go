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

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// NotesBlob is the fixed size notes record: text followed by zero padding.
type NotesBlob [notesTextLimit + 1]byte

// Text returns the notes up to the first zero byte.
func (b NotesBlob) Text() string {
	return cString(b[:])
}

// NewNotesBlob packs text into a blob. Text longer than 500 bytes is
// rejected.
func NewNotesBlob(text string) (NotesBlob, error) {
	var b NotesBlob
	if len(text) > notesTextLimit {
		return b, fmt.Errorf("%d bytes: %w", len(text), ErrNotesTooLong)
	}
	copy(b[:], text)
	return b, nil
}

// writeNotesLocked erases the notes window, commits, then writes the blob.
func (s *Store) writeNotesLocked(b NotesBlob) error {
	if err := s.eraseLocked(RegionNotes.Addr, RegionNotes.Span()); err != nil {
		return err
	}
	return s.writeLocked(RegionNotes.Addr, b[:])
}

// NotesBlob returns the stored notes record. A record that fails its check
// is replaced by an all zero blob.
func (s *Store) NotesBlob() (NotesBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b NotesBlob
	raw, ok := s.readLocked(RegionNotes.Addr, RegionNotes.Size)
	if ok {
		copy(b[:], raw)
		return b, nil
	}

	log.Warn().
		Str("record", RegionNotes.Name).
		Int("addr", RegionNotes.Addr).
		Msg("datastore: record failed integrity check, restoring default")

	if err := s.writeNotesLocked(b); err != nil {
		return b, fmt.Errorf("failed to restore default notes: %w", err)
	}
	return b, nil
}

// Notes returns the stored notes text.
func (s *Store) Notes() (string, error) {
	b, err := s.NotesBlob()
	return b.Text(), err
}

// SetNotes persists text. Nothing is written if text is longer than 500
// bytes.
func (s *Store) SetNotes(text string) error {
	b, err := NewNotesBlob(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeNotesLocked(b); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}
