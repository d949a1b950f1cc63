// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package supervisor provides process supervision for Folio using suture v4.

# Overview

The watch command runs its long-lived services under a three-layer tree:

	RootSupervisor ("folio")
	├── SourceSupervisor ("source-layer")
	│   └── SnapshotPollService
	├── EventsSupervisor ("events-layer")
	│   └── StalenessService
	└── AdminSupervisor ("admin-layer")
	    └── RetrainService

Each layer restarts independently. A store outage that crashes the poller
does not stop staleness tracking, and a restart of the event consumer does
not interrupt a retrain in progress.

# Logging

Supervisor events (service start, failure, restart, backoff) are logged
through sutureslog, bridged into the process zerolog logger with
logging.NewSlogLogger.

# Shutdown

Canceling the context passed to Serve stops every service. Services that do
not stop within TreeConfig.ShutdownTimeout are listed by
UnstoppedServiceReport.
*/
package supervisor
