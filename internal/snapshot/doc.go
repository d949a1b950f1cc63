// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package snapshot adapts external stores into recommend.SnapshotSource.
//
// Three sources are provided:
//
//   - MemorySource: holds a snapshot in memory, used by tests and embedders
//   - FileSource: reads the catalog, ratings, and bookmarks from JSON files
//   - BreakerSource: wraps any source with a circuit breaker so a failing
//     store is not hammered by repeated retrain attempts
//
// FileSource also reports a Fingerprint of its files, which the snapshot
// poller compares between ticks to publish change notifications.
package snapshot
