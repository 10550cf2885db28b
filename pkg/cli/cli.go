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
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/calendar"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/config"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/service"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timecore"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timezones"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownZone = errors.New("unknown timezone")
	ErrBadDatum    = errors.New("expected YYYY-MM-DD HH:MM:SS")
)

type Flags struct {
	fs        *flag.FlagSet
	Version   *bool
	Daemon    *bool
	ListZones *bool
	Show      *bool
	Verify    *bool
	Erase     *bool
	TimeZone  *string
	Notes     *string
	SetTime   *string
	Format    *string
}

// SetupFlags defines all CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs: fs,
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"also log to stderr",
		),
		ListZones: fs.Bool(
			"list-zones",
			false,
			"print the timezone table and exit",
		),
		Show: fs.Bool(
			"show",
			false,
			"print the stored settings and exit",
		),
		Verify: fs.Bool(
			"verify",
			false,
			"check every stored record and exit",
		),
		Erase: fs.Bool(
			"erase",
			false,
			"erase the settings medium and exit",
		),
		TimeZone: fs.String(
			"timezone",
			"",
			"store a new timezone by name and exit",
		),
		Notes: fs.String(
			"notes",
			"",
			"store the notes text and exit",
		),
		SetTime: fs.String(
			"settime",
			"",
			"start with a user defined local time (YYYY-MM-DD HH:MM:SS)",
		),
		Format: fs.String(
			"format",
			FormatText,
			"output format for -show: text, json or yaml",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and actions any immediate flags that don't require the
// environment to be set up. exit is true when nothing else should run.
func (f *Flags) Pre(args []string, out io.Writer) (exit bool, err error) {
	if err := f.fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}
	if !validFormat(*f.Format) {
		return true, fmt.Errorf("%w: %s", ErrBadFormat, *f.Format)
	}

	switch {
	case *f.Version:
		_, _ = fmt.Fprintf(out, "Mini NTP Clock v%s\n", config.AppVersion)
		return true, nil
	case *f.ListZones:
		PrintZones(out)
		return true, nil
	}
	return false, nil
}

// OneShot reports whether a flag was given that runs against the stored
// settings instead of starting the daemon.
func (f *Flags) OneShot() bool {
	return *f.Show || *f.Verify || *f.Erase ||
		f.isFlagPassed("timezone") || f.isFlagPassed("notes")
}

// Setup creates the directories, initializes logging and loads the daemon
// config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	err := helpers.EnsureDirectories(helpers.ConfigDir(), helpers.DataDir(), helpers.LogDir())
	if err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	err = helpers.InitLogging(helpers.LogDir(), writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	helpers.SetLogLevel(cfg.DebugLogging())
	return cfg, nil
}

// Post actions the one-shot flags against an opened core, in order: erase,
// timezone, notes, verify, show.
func (f *Flags) Post(out io.Writer, core *service.Core) error {
	if *f.Erase {
		if err := core.Store.EraseAll(); err != nil {
			return fmt.Errorf("error erasing medium: %w", err)
		}
		log.Info().Msg("settings medium erased")
		_, _ = fmt.Fprintln(out, "Settings erased, defaults apply on next start.")
		if err := core.Authority.LoadConfig(); err != nil {
			return fmt.Errorf("error restoring defaults: %w", err)
		}
	}

	if f.isFlagPassed("timezone") {
		index, ok := timezones.Find(*f.TimeZone)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownZone, *f.TimeZone)
		}
		core.Authority.SetTimeZone(index)
		if err := core.Authority.SaveConfig(); err != nil {
			return fmt.Errorf("error saving timezone: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Timezone set to %s.\n", timezones.Name(index))
	}

	if f.isFlagPassed("notes") {
		if err := core.Store.SetNotes(*f.Notes); err != nil {
			return fmt.Errorf("error saving notes: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Notes saved (%d bytes).\n", len(*f.Notes))
	}

	if *f.Verify {
		bad := core.Store.VerifyAll()
		if len(bad) == 0 {
			_, _ = fmt.Fprintln(out, "All records valid.")
		} else {
			_, _ = fmt.Fprintf(out, "Invalid records: %s\n", strings.Join(bad, ", "))
		}
	}

	if *f.Show {
		return PrintSettings(out, core, *f.Format)
	}
	return nil
}

// ApplySetTime offers the -settime value to a running authority.
func (f *Flags) ApplySetTime(a *timecore.Authority) error {
	if *f.SetTime == "" {
		return nil
	}
	d, err := ParseDatum(*f.SetTime)
	if err != nil {
		return err
	}
	if !a.OfferLocal(d) {
		return errors.New("user defined time rejected")
	}
	log.Info().Str("local", d.Clamp().String()).Msg("time set by user")
	return nil
}

// ParseDatum reads "YYYY-MM-DD HH:MM:SS". Out of range fields are clamped
// later by the authority, not rejected.
func ParseDatum(s string) (calendar.Datum, error) {
	var year, month, day, hour, minute, second int
	n, err := fmt.Sscanf(strings.TrimSpace(s), "%d-%d-%d %d:%d:%d",
		&year, &month, &day, &hour, &minute, &second)
	if err != nil || n != 6 {
		return calendar.Datum{}, fmt.Errorf("%w: %q", ErrBadDatum, s)
	}
	if year < 0 || year > 0xFFFF {
		return calendar.Datum{}, fmt.Errorf("%w: year %d", ErrBadDatum, year)
	}
	return calendar.Datum{
		Year:   uint16(year),
		Month:  field(month),
		Day:    field(day),
		Hour:   field(hour),
		Minute: field(minute),
		Second: field(second),
	}, nil
}

// field maps values that don't fit a byte to zero, which clamping treats
// as out of range.
func field(v int) uint8 {
	if v < 0 || v > 0xFF {
		return 0
	}
	return uint8(v)
}

// PrintZones writes the timezone table.
func PrintZones(out io.Writer) {
	for i := range timezones.Count() {
		def := timezones.LoadDefinition(i)
		line := fmt.Sprintf("%3d  %-32s UTC%s", i, def.Name, offset(int32(def.BaseOffsetMinutes)))
		if def.HasDST {
			line += fmt.Sprintf("  DST %s .. %s", def.Start, def.End)
		}
		_, _ = fmt.Fprintln(out, line)
	}
}
