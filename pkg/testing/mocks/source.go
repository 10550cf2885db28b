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

package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of the timecore Source interface
// using testify/mock
type MockSource struct {
	mock.Mock
}

// NewMockSource returns a source that accepts any write-back.
func NewMockSource() *MockSource {
	m := &MockSource{}
	m.On("SetTime", mock.Anything).Return().Maybe()
	return m
}

// SetTime records a write-back from the authority
func (m *MockSource) SetTime(utc uint32) {
	m.Called(utc)
}

// Time returns the configured reading
func (m *MockSource) Time() (utc uint32, delayed bool) {
	args := m.Called()
	if v, ok := args.Get(0).(uint32); ok {
		utc = v
	}
	return utc, args.Bool(1)
}

// WriteBacks returns the values pushed with SetTime in call order
func (m *MockSource) WriteBacks() []uint32 {
	var out []uint32
	for _, call := range m.Calls {
		if call.Method != "SetTime" {
			continue
		}
		if v, ok := call.Arguments.Get(0).(uint32); ok {
			out = append(out, v)
		}
	}
	return out
}
