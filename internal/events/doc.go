// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package events carries change notifications from the external store to the
// recommendation engine.
//
// Two topics exist:
//
//	folio.ratings.changed  - ratings were added, edited, or removed
//	folio.catalog.changed  - books were added, edited, or removed
//
// Notifications only mark the serving model stale. They never start a
// training run; retraining stays an explicit administrative action.
//
// Messages travel over an in-process Watermill GoChannel. Payloads are JSON
// encoded ChangeEvent values and carry the publisher's correlation id in the
// message metadata.
package events
