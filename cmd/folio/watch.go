// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/folio/internal/events"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/supervisor"
	"github.com/tomtom215/folio/internal/supervisor/services"
)

// runWatch runs the supervisor tree until interrupted:
//
//	source-layer: snapshot poller publishing change events (when poll_interval > 0)
//	events-layer: staleness watcher marking the model stale
//	admin-layer:  retrain service, triggered by SIGHUP
func runWatch(ctx context.Context, env *commandEnv, args []string) error {
	fs := env.newFlagSet("watch")
	trainOnStartup := fs.Bool("train-on-startup", env.cfg.Supervisor.TrainOnStartup, "train once before waiting for signals")
	if err := parse(fs, args); err != nil {
		return err
	}

	sup := env.cfg.Supervisor
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: sup.FailureThreshold,
		FailureDecay:     sup.FailureDecay,
		FailureBackoff:   sup.FailureBackoff,
		ShutdownTimeout:  sup.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	bus := events.NewBus(logging.NewSlogLogger(), sup.EventBuffer)
	defer func() {
		if err := bus.Close(); err != nil {
			env.logger.Warn().Err(err).Msg("error closing event bus")
		}
	}()

	engine := env.components.Engine
	base := logging.Logger()

	retrain := services.NewRetrainService(engine, services.RetrainServiceConfig{
		TrainOnStartup: *trainOnStartup,
		TrainTimeout:   env.cfg.Recommend.TrainTimeout,
	}, base)
	tree.AddAdminService(retrain)
	tree.AddEventService(services.NewStalenessService(bus, engine, base))

	if interval := env.cfg.Snapshot.PollInterval; interval > 0 {
		tree.AddSourceService(services.NewSnapshotPollService(env.components.Files, bus, interval, base))
		env.logger.Info().Dur("interval", interval).Msg("snapshot poller added to supervisor tree")
	} else {
		env.logger.Info().Msg("snapshot polling disabled (snapshot.poll_interval=0)")
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go forwardRetrainSignals(ctx, env, hup, retrain)

	env.logger.Info().Int("pid", os.Getpid()).Msg("watching for changes; send SIGHUP to retrain")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			env.logger.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	status := engine.Status()
	env.logger.Info().
		Str("state", status.State.String()).
		Int("model_version", status.ModelVersion).
		Msg("watch stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// forwardRetrainSignals turns each SIGHUP into a retrain request.
func forwardRetrainSignals(ctx context.Context, env *commandEnv, sigs <-chan os.Signal, retrain *services.RetrainService) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			if retrain.Trigger("signal " + sig.String()) {
				env.logger.Info().Str("signal", sig.String()).Msg("retrain requested")
			} else {
				env.logger.Info().Str("signal", sig.String()).Msg("retrain already pending")
			}
		}
	}
}
