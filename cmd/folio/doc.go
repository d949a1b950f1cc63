// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package main is the administrative CLI for the Folio recommendation engine.

Folio recommends books to members of a reading community by blending content
similarity (TF-IDF over title, authors, categories and description) with
user-based collaborative filtering, and falls back to popularity for new
members.

# Commands

	folio train                                  train and print the run metadata
	folio similar   -book 12 [-k 10]             content neighbours of a book
	folio for-you   -user 7 [-n 20]              hybrid list, cold_start flag, no fallback
	folio recommend -user 7 [-n 20]              hybrid list with popularity fallback
	folio collab    -user 7 [-n 20]              collaborative predictions only
	folio predict   -user 7 -book 12             predicted rating on the 1-5 scale
	folio popular   [-category manga] [-filter 'book.average_rating >= 4.0']
	folio history   [-limit 10]                  stored training runs, newest first
	folio watch     [-train-on-startup=false]    supervised change watching

Query commands train a fresh model from the configured exports first; the
model lives only for the invocation. Results are printed to stdout as JSON
and logs are written to stderr.

# Watch Mode

watch runs a Suture v4 supervisor tree:

	RootSupervisor ("folio")
	├── source-layer
	│   └── snapshot poller (publishes folio.catalog.changed / folio.ratings.changed)
	├── events-layer
	│   └── staleness watcher (marks the model stale, never trains)
	└── admin-layer
	    └── retrain service (SIGHUP requests a retrain)

Change events travel over an in-process Watermill channel. Retraining is an
explicit action: send SIGHUP to the process.

# Configuration

Configuration is loaded via Koanf v2 (defaults, then YAML file, then FOLIO_*
environment variables). Pass -config to name the file explicitly:

	folio -config /etc/folio/config.yaml train

# Exit Codes

	0  success
	1  the command failed (configuration, training or query error)
	2  usage error
*/
package main
