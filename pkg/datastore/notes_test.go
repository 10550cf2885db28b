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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesHealToZeroBlob(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	b, err := s.NotesBlob()
	require.NoError(t, err)
	assert.Equal(t, NotesBlob{}, b)

	raw, ok := s.ReadRecord(RegionNotes.Addr, RegionNotes.Size)
	require.True(t, ok)
	assert.Len(t, raw, 501)
	for i, v := range raw {
		if v != 0 {
			t.Fatalf("notes byte %d = %#x, want 0", i, v)
		}
	}
}

func TestSetNotes(t *testing.T) {
	t.Parallel()

	s, m := newTestStore(t)
	require.NoError(t, s.SetNotes("remember to check the antenna"))
	// erase window commit plus record commit
	assert.Equal(t, 2, m.Commits())

	got, err := s.Notes()
	require.NoError(t, err)
	assert.Equal(t, "remember to check the antenna", got)

	// bytes after the trailer stay erased inside the window
	end := RegionNotes.Addr + RegionNotes.Size + TrailerSize
	for addr := end; addr < RegionNotes.End(); addr++ {
		assert.Equal(t, byte(EraseByte), m.ByteAt(addr), "addr %d", addr)
	}
}

func TestSetNotesMaximumLength(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	text := strings.Repeat("n", 500)
	require.NoError(t, s.SetNotes(text))

	got, err := s.Notes()
	require.NoError(t, err)
	assert.Equal(t, text, got)

	b, err := s.NotesBlob()
	require.NoError(t, err)
	assert.Equal(t, byte(0), b[500])
}

func TestSetNotesTooLong(t *testing.T) {
	t.Parallel()

	s, m := newTestStore(t)
	require.NoError(t, s.SetNotes("keep me"))
	commits := m.Commits()

	err := s.SetNotes(strings.Repeat("x", 501))
	require.ErrorIs(t, err, ErrNotesTooLong)
	assert.Equal(t, commits, m.Commits())

	got, err := s.Notes()
	require.NoError(t, err)
	assert.Equal(t, "keep me", got)
}

func TestShorterNotesClearPreviousText(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	require.NoError(t, s.SetNotes(strings.Repeat("long ", 50)))
	require.NoError(t, s.SetNotes("short"))

	got, err := s.Notes()
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}

func TestSetEmptyNotesWritesZeroBlob(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	require.NoError(t, s.SetNotes("something"))
	require.NoError(t, s.SetNotes(""))

	b, err := s.NotesBlob()
	require.NoError(t, err)
	assert.Equal(t, NotesBlob{}, b)
	assert.Len(t, b, 501)
	assert.NoError(t, s.Verify(RegionNotes.Addr, RegionNotes.Size))

	got, err := s.Notes()
	require.NoError(t, err)
	assert.Empty(t, got)
}
