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
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketImage = []byte("eeprom")
	keyImage    = []byte("image")
)

// BoltMedium stores the image as a single value in a bolt database. Each
// commit is one transaction.
type BoltMedium struct {
	bdb *bolt.DB
	image
}

// OpenBoltMedium opens or creates the database at path and loads the
// stored image.
func OpenBoltMedium(path string, capacity int) (*BoltMedium, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	m := &BoltMedium{
		bdb:   db,
		image: newImage(capacity),
	}

	err = db.Update(func(txn *bolt.Tx) error {
		b, bErr := txn.CreateBucketIfNotExists(bucketImage)
		if bErr != nil {
			return fmt.Errorf("failed to create bucket %q: %w", bucketImage, bErr)
		}
		if v := b.Get(keyImage); v != nil {
			m.load(v)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	return m, nil
}

// Commit stores the working image.
func (m *BoltMedium) Commit() error {
	err := m.bdb.Update(func(txn *bolt.Tx) error {
		b := txn.Bucket(bucketImage)
		if b == nil {
			return fmt.Errorf("bucket %q does not exist", bucketImage)
		}
		return b.Put(keyImage, m.snapshot())
	})
	if err != nil {
		return fmt.Errorf("failed to commit image: %w", err)
	}
	return nil
}

// Close releases the database.
func (m *BoltMedium) Close() error {
	if err := m.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}
