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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// FileMedium stores the image as a plain file. Commit writes a sibling temp
// file and renames it over the image so a crash leaves either the old or
// the new image in place.
type FileMedium struct {
	fs   afero.Fs
	path string
	image
}

// OpenFileMedium loads the image at path, or starts from an erased image
// if the file does not exist. Short files are padded with erased cells and
// long files are truncated to capacity.
func OpenFileMedium(fs afero.Fs, path string, capacity int) (*FileMedium, error) {
	m := &FileMedium{
		fs:    fs,
		path:  path,
		image: newImage(capacity),
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("path", path).Msg("datastore: no image found, starting erased")
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	if len(data) != capacity {
		log.Warn().
			Str("path", path).
			Int("size", len(data)).
			Int("capacity", capacity).
			Msg("datastore: image size mismatch")
	}
	m.load(data)
	return m, nil
}

// Path returns the image file path.
func (m *FileMedium) Path() string {
	return m.path
}

// Commit atomically replaces the image file.
func (m *FileMedium) Commit() error {
	if err := m.fs.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, m.buf, 0o600); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace image: %w", err)
	}
	return nil
}
