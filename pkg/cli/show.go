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

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/calendar"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/datastore"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/service"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timezones"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrBadFormat = errors.New("unknown output format")

// ShowOutput is the stored settings and clock status for display.
type ShowOutput struct {
	Clock    ClockOutput    `json:"clock" yaml:"clock"`
	Timezone TimezoneOutput `json:"timezone" yaml:"timezone"`
	Network  NetworkOutput  `json:"network" yaml:"network"`
	Notes    string         `json:"notes" yaml:"notes"`
	GPSSync  bool           `json:"gps_sync" yaml:"gps_sync"`
	Swap     bool           `json:"swap_display" yaml:"swap_display"`
	Layout   int            `json:"layout_version" yaml:"layout_version"`
	Capacity int            `json:"capacity" yaml:"capacity"`
}

type ClockOutput struct {
	UTC       string `json:"utc" yaml:"utc"`
	Local     string `json:"local" yaml:"local"`
	Master    string `json:"master" yaml:"master"`
	DegradeIn string `json:"degrade_in" yaml:"degrade_in"`
}

type TimezoneOutput struct {
	Name         string `json:"name" yaml:"name"`
	DstStart     string `json:"dst_start,omitempty" yaml:"dst_start,omitempty"`
	DstEnd       string `json:"dst_end,omitempty" yaml:"dst_end,omitempty"`
	Override     string `json:"override,omitempty" yaml:"override,omitempty"`
	Index        int    `json:"index" yaml:"index"`
	ManualOffset int16  `json:"manual_dst_offset" yaml:"manual_dst_offset"`
	AutomaticDst bool   `json:"automatic_dst" yaml:"automatic_dst"`
	DstActive    bool   `json:"dst_active" yaml:"dst_active"`
	ManualDst    bool   `json:"manual_dst" yaml:"manual_dst"`
}

type NetworkOutput struct {
	SSID      string `json:"ssid" yaml:"ssid"`
	Address   string `json:"address,omitempty" yaml:"address,omitempty"`
	Netmask   string `json:"netmask,omitempty" yaml:"netmask,omitempty"`
	Gateway   string `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	DNS0      string `json:"dns0,omitempty" yaml:"dns0,omitempty"`
	DNS1      string `json:"dns1,omitempty" yaml:"dns1,omitempty"`
	UseStatic bool   `json:"static" yaml:"static"`
}

func validFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

func offset(minutes int32) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

func buildShowOutput(core *service.Core) (ShowOutput, error) {
	st := core.Authority.Status()
	w := core.Authority.DstWindow()

	gps, err := core.Store.GPSSettings()
	if err != nil {
		return ShowOutput{}, fmt.Errorf("error reading gps settings: %w", err)
	}
	display, err := core.Store.DisplaySettings()
	if err != nil {
		return ShowOutput{}, fmt.Errorf("error reading display settings: %w", err)
	}
	ipv4, err := core.Store.IPv4Settings()
	if err != nil {
		return ShowOutput{}, fmt.Errorf("error reading network settings: %w", err)
	}
	creds, err := core.Store.Credentials()
	if err != nil {
		return ShowOutput{}, fmt.Errorf("error reading credentials: %w", err)
	}
	notes, err := core.Store.Notes()
	if err != nil {
		return ShowOutput{}, fmt.Errorf("error reading notes: %w", err)
	}

	output := ShowOutput{
		Clock: ClockOutput{
			UTC:       calendar.FromSeconds(st.UTC).String(),
			Local:     calendar.FromSeconds(st.Local).String(),
			Master:    st.Master.String(),
			DegradeIn: (time.Duration(st.DegradeIn) * time.Second).String(),
		},
		Timezone: TimezoneOutput{
			Name:         st.TimeZone,
			Index:        st.Config.TimeZone,
			AutomaticDst: st.Config.AutomaticDst,
			DstActive:    st.DstActive,
			ManualDst:    st.Config.ManualDst,
			ManualOffset: timezones.ManualOffset(st.Config.DstOffsetIndex),
		},
		Network: NetworkOutput{
			SSID:      creds.SSID,
			UseStatic: ipv4.UseStatic,
		},
		Notes:    notes,
		GPSSync:  gps.SyncOnGPS,
		Swap:     display.SwapDisplay,
		Layout:   datastore.LayoutVersion,
		Capacity: core.Medium.Capacity(),
	}

	if w.Start != w.End {
		output.Timezone.DstStart = calendar.FromSeconds(calendar.ClampSeconds(w.Start)).String()
		output.Timezone.DstEnd = calendar.FromSeconds(calendar.ClampSeconds(w.End)).String()
	}
	if st.Config.TimeZoneOverride {
		output.Timezone.Override = "UTC" + offset(st.Config.GMTOffsetMinutes)
	}
	if ipv4.UseStatic {
		output.Network.Address = ipv4.Address.String()
		output.Network.Netmask = ipv4.Netmask.String()
		output.Network.Gateway = ipv4.Gateway.String()
		output.Network.DNS0 = ipv4.DNS0.String()
		output.Network.DNS1 = ipv4.DNS1.String()
	}
	return output, nil
}

// PrintSettings writes the clock status and every stored record.
func PrintSettings(out io.Writer, core *service.Core, format string) error {
	output, err := buildShowOutput(core)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
	case FormatYAML:
		data, err := yaml.Marshal(output)
		if err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		_, _ = fmt.Fprint(out, string(data))
	case FormatText, "":
		printShowText(out, &output)
	default:
		return fmt.Errorf("%w: %s", ErrBadFormat, format)
	}
	return nil
}

func printShowText(out io.Writer, o *ShowOutput) {
	_, _ = fmt.Fprintf(out, "UTC:        %s\n", o.Clock.UTC)
	_, _ = fmt.Fprintf(out, "Local:      %s\n", o.Clock.Local)
	_, _ = fmt.Fprintf(out, "Master:     %s (degrades in %s)\n", o.Clock.Master, o.Clock.DegradeIn)
	_, _ = fmt.Fprintf(out, "Timezone:   %s (index %d)\n", o.Timezone.Name, o.Timezone.Index)
	if o.Timezone.Override != "" {
		_, _ = fmt.Fprintf(out, "Override:   %s\n", o.Timezone.Override)
	}
	_, _ = fmt.Fprintf(out, "Auto DST:   %t (active %t)\n", o.Timezone.AutomaticDst, o.Timezone.DstActive)
	if o.Timezone.DstStart != "" {
		_, _ = fmt.Fprintf(out, "DST window: %s .. %s UTC\n", o.Timezone.DstStart, o.Timezone.DstEnd)
	}
	_, _ = fmt.Fprintf(out, "Manual DST: %t (%+d min)\n", o.Timezone.ManualDst, o.Timezone.ManualOffset)
	_, _ = fmt.Fprintf(out, "GPS sync:   %t\n", o.GPSSync)
	_, _ = fmt.Fprintf(out, "Swap disp:  %t\n", o.Swap)
	_, _ = fmt.Fprintf(out, "SSID:       %q\n", o.Network.SSID)
	if o.Network.UseStatic {
		_, _ = fmt.Fprintf(out, "IPv4:       %s/%s gw %s dns %s %s\n",
			o.Network.Address, o.Network.Netmask, o.Network.Gateway, o.Network.DNS0, o.Network.DNS1)
	} else {
		_, _ = fmt.Fprintln(out, "IPv4:       dhcp")
	}
	_, _ = fmt.Fprintf(out, "Notes:      %q\n", o.Notes)
	_, _ = fmt.Fprintf(out, "Layout:     v%d, %d bytes\n", o.Layout, o.Capacity)
}
