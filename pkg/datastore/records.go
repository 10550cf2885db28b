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
	"bytes"
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timezones"
	"github.com/rs/zerolog/log"
)

const (
	timecoreConfigSize = 20
	ipv4SettingsSize   = 1 + 5*4
)

// codec binds a record type to its region and byte layout.
type codec[T any] struct {
	def    func() T
	encode func(T) []byte
	decode func([]byte) T
	region Region
}

// load reads the record, substituting and persisting the default when the
// stored bytes fail their check. The returned value is always usable; the
// error only reports a failed write back.
func load[T any](s *Store, c codec[T]) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.readLocked(c.region.Addr, c.region.Size)
	if ok {
		return c.decode(raw), nil
	}

	log.Warn().
		Str("record", c.region.Name).
		Int("addr", c.region.Addr).
		Msg("datastore: record failed integrity check, restoring default")

	v := c.def()
	if err := s.writeLocked(c.region.Addr, c.encode(v)); err != nil {
		return v, fmt.Errorf("failed to restore default %s: %w", c.region.Name, err)
	}
	return v, nil
}

func save[T any](s *Store, c codec[T], v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(c.region.Addr, c.encode(v)); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.region.Name, err)
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// cString returns the bytes of b up to the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// TimecoreConfig holds the persisted timezone and DST settings.
type TimecoreConfig struct {
	TimeZone         int
	DstOffsetIndex   int
	GMTOffsetMinutes int32
	ManualDst        bool
	AutomaticDst     bool
	TimeZoneOverride bool
}

// DefaultTimecoreConfig is Europe/London with automatic DST.
func DefaultTimecoreConfig() TimecoreConfig {
	return TimecoreConfig{
		TimeZone:       0,
		DstOffsetIndex: timezones.DefaultManualDstOffsetIndex,
		AutomaticDst:   true,
	}
}

// Normalize replaces out of range indexes with their defaults.
func (c TimecoreConfig) Normalize() TimecoreConfig {
	if c.TimeZone < 0 || c.TimeZone >= timezones.Count() {
		c.TimeZone = 0
	}
	if c.DstOffsetIndex < 0 || c.DstOffsetIndex >= len(timezones.ManualOffsets) {
		c.DstOffsetIndex = timezones.DefaultManualDstOffsetIndex
	}
	return c
}

func encodeTimecoreConfig(c TimecoreConfig) []byte {
	buf := make([]byte, timecoreConfigSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.TimeZone))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.DstOffsetIndex))
	buf[8] = boolByte(c.ManualDst)
	buf[9] = boolByte(c.AutomaticDst)
	buf[10] = boolByte(c.TimeZoneOverride)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(c.GMTOffsetMinutes))
	return buf
}

func decodeTimecoreConfig(buf []byte) TimecoreConfig {
	c := TimecoreConfig{
		TimeZone:         int(binary.LittleEndian.Uint32(buf[0:4])),
		DstOffsetIndex:   int(binary.LittleEndian.Uint32(buf[4:8])),
		ManualDst:        buf[8] != 0,
		AutomaticDst:     buf[9] != 0,
		TimeZoneOverride: buf[10] != 0,
		GMTOffsetMinutes: int32(binary.LittleEndian.Uint32(buf[12:16])),
	}
	return c.Normalize()
}

var timecoreCodec = codec[TimecoreConfig]{
	region: RegionTimecore,
	def:    DefaultTimecoreConfig,
	encode: encodeTimecoreConfig,
	decode: decodeTimecoreConfig,
}

// TimecoreConfig returns the stored timezone settings, healing them if
// needed.
func (s *Store) TimecoreConfig() (TimecoreConfig, error) {
	return load(s, timecoreCodec)
}

// SetTimecoreConfig persists c.
func (s *Store) SetTimecoreConfig(c TimecoreConfig) error {
	return save(s, timecoreCodec, c.Normalize())
}

// Credentials are the WiFi station credentials.
type Credentials struct {
	SSID     string
	Password string
}

func encodeCredentials(c Credentials) []byte {
	buf := make([]byte, 2*credentialFieldSize)
	copy(buf[:credentialFieldSize], c.SSID)
	copy(buf[credentialFieldSize:], c.Password)
	return buf
}

func decodeCredentials(buf []byte) Credentials {
	return Credentials{
		SSID:     cString(buf[:credentialFieldSize]),
		Password: cString(buf[credentialFieldSize:]),
	}
}

var credentialsCodec = codec[Credentials]{
	region: RegionCredentials,
	def:    func() Credentials { return Credentials{} },
	encode: encodeCredentials,
	decode: decodeCredentials,
}

// Credentials returns the stored WiFi credentials.
func (s *Store) Credentials() (Credentials, error) {
	return load(s, credentialsCodec)
}

// SetCredentials persists c. Each field holds at most 127 bytes.
func (s *Store) SetCredentials(c Credentials) error {
	if len(c.SSID) >= credentialFieldSize || len(c.Password) >= credentialFieldSize {
		return fmt.Errorf("credentials: %w", ErrValueTooLong)
	}
	return save(s, credentialsCodec, c)
}

// GPSSettings controls whether the GPS receiver may set the clock.
type GPSSettings struct {
	SyncOnGPS bool
}

var gpsCodec = codec[GPSSettings]{
	region: RegionGPS,
	def:    func() GPSSettings { return GPSSettings{SyncOnGPS: true} },
	encode: func(g GPSSettings) []byte { return []byte{boolByte(g.SyncOnGPS)} },
	decode: func(buf []byte) GPSSettings { return GPSSettings{SyncOnGPS: buf[0] != 0} },
}

// GPSSettings returns the stored GPS settings.
func (s *Store) GPSSettings() (GPSSettings, error) {
	return load(s, gpsCodec)
}

// SetGPSSettings persists g.
func (s *Store) SetGPSSettings(g GPSSettings) error {
	return save(s, gpsCodec, g)
}

// DisplaySettings holds display preferences.
type DisplaySettings struct {
	SwapDisplay bool
}

var displayCodec = codec[DisplaySettings]{
	region: RegionDisplay,
	def:    func() DisplaySettings { return DisplaySettings{} },
	encode: func(d DisplaySettings) []byte { return []byte{boolByte(d.SwapDisplay)} },
	decode: func(buf []byte) DisplaySettings { return DisplaySettings{SwapDisplay: buf[0] != 0} },
}

// DisplaySettings returns the stored display settings.
func (s *Store) DisplaySettings() (DisplaySettings, error) {
	return load(s, displayCodec)
}

// SetDisplaySettings persists d.
func (s *Store) SetDisplaySettings(d DisplaySettings) error {
	return save(s, displayCodec, d)
}

// IPv4Settings is the static address configuration. UseStatic false means
// DHCP.
type IPv4Settings struct {
	Address   netip.Addr
	Netmask   netip.Addr
	Gateway   netip.Addr
	DNS0      netip.Addr
	DNS1      netip.Addr
	UseStatic bool
}

var unspecified = netip.AddrFrom4([4]byte{})

// DefaultIPv4Settings is DHCP with all addresses zeroed.
func DefaultIPv4Settings() IPv4Settings {
	return IPv4Settings{
		Address: unspecified,
		Netmask: unspecified,
		Gateway: unspecified,
		DNS0:    unspecified,
		DNS1:    unspecified,
	}
}

func encodeIPv4Settings(c IPv4Settings) []byte {
	buf := make([]byte, 0, ipv4SettingsSize)
	buf = append(buf, boolByte(c.UseStatic))
	for _, a := range []netip.Addr{c.Address, c.Netmask, c.Gateway, c.DNS0, c.DNS1} {
		if !a.Is4() {
			buf = append(buf, 0, 0, 0, 0)
			continue
		}
		b := a.As4()
		buf = append(buf, b[:]...)
	}
	return buf
}

func decodeIPv4Settings(buf []byte) IPv4Settings {
	c := IPv4Settings{UseStatic: buf[0] != 0}
	addrs := []*netip.Addr{&c.Address, &c.Netmask, &c.Gateway, &c.DNS0, &c.DNS1}
	for i, a := range addrs {
		off := 1 + 4*i
		*a = netip.AddrFrom4([4]byte(buf[off : off+4]))
	}
	return c
}

var ipv4Codec = codec[IPv4Settings]{
	region: RegionIPv4,
	def:    DefaultIPv4Settings,
	encode: encodeIPv4Settings,
	decode: decodeIPv4Settings,
}

// IPv4Settings returns the stored static address configuration.
func (s *Store) IPv4Settings() (IPv4Settings, error) {
	return load(s, ipv4Codec)
}

// SetIPv4Settings persists c. Addresses that are not IPv4 are stored as
// 0.0.0.0.
func (s *Store) SetIPv4Settings(c IPv4Settings) error {
	return save(s, ipv4Codec, c)
}
