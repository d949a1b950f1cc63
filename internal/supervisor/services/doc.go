// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package services provides the Suture services run by the watch command.

# Services

SnapshotPollService (source layer):
  - Fingerprints the catalog, ratings, and bookmarks exports on an interval
  - Publishes folio.catalog.changed or folio.ratings.changed when a file changes
  - Keeps the previous baseline when publishing fails so the change is retried

StalenessService (events layer):
  - Subscribes to the change topics
  - Marks the serving model stale; never starts training
  - Acks every message, including malformed ones

RetrainService (admin layer):
  - Runs retrain requests submitted through Trigger (SIGHUP in the CLI)
  - Optionally trains once on startup
  - Logs throttled, concurrent, and failed runs; the prior model keeps serving

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	retrain := services.NewRetrainService(engine, services.RetrainServiceConfig{TrainOnStartup: true}, logger)
	tree.AddAdminService(retrain)
	tree.AddEventService(services.NewStalenessService(bus, engine, logger))
	tree.AddSourceService(services.NewSnapshotPollService(fileSource, bus, 30*time.Second, logger))

	go func() {
	    for range hup {
	        retrain.Trigger("sighup")
	    }
	}()

	return tree.Serve(ctx)

# Error Handling

Services return ctx.Err() on shutdown. Any other returned error makes the
supervisor restart the service with backoff.
*/
package services
