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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/cli"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/config"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	exit, err := flags.Pre(os.Args[1:], os.Stdout)
	if exit || err != nil {
		return err
	}

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg, err := cli.Setup(config.BaseDefaults, logWriters)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	if flags.OneShot() {
		core, err := service.Open(cfg, helpers.DataDir(), nil)
		if err != nil {
			return fmt.Errorf("error opening settings: %w", err)
		}
		postErr := flags.Post(os.Stdout, core)
		if err := core.Close(); err != nil {
			log.Error().Err(err).Msg("error closing settings")
		}
		return postErr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	core, stopSvc, done, err := service.Start(ctx, cfg, helpers.DataDir(), nil)
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}

	defer func() {
		err := stopSvc()
		if err != nil {
			log.Error().Msgf("error stopping service: %s", err)
		}
	}()

	if err := flags.ApplySetTime(core.Authority); err != nil {
		return err
	}

	log.Info().Msg("started in daemon mode")

	select {
	case <-ctx.Done():
		log.Info().Msg("received stop signal")
	case <-done:
	}

	return nil
}
