// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package config loads Folio's configuration with Koanf v2.

# Sources

Configuration is layered, later sources overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. YAML file: CONFIG_PATH, else the first of DefaultConfigPaths that exists
 3. Environment variables prefixed with FOLIO_

# Example File

	logging:
	  level: info
	  format: json
	recommend:
	  content_weight: 0.6
	  collaborative_weight: 0.4
	  neighbor_count: 10
	  min_rating_count_for_popularity: 10
	  cold_start_rating_threshold: 4
	  retrain_min_interval: 1m
	snapshot:
	  catalog_path: /data/books.json
	  ratings_path: /data/ratings.json
	  bookmarks_path: /data/bookmarks.json
	  poll_interval: 30s
	  breaker:
	    failure_threshold: 3
	    timeout: 30s
	history:
	  enabled: true
	  path: /var/lib/folio/history

# Environment Variables

Each key maps to FOLIO_<SECTION>_<FIELD>:

	FOLIO_RECOMMEND_CONTENT_WEIGHT=0.6
	FOLIO_RECOMMEND_COLLABORATIVE_WEIGHT=0.4
	FOLIO_SNAPSHOT_CATALOG_PATH=/data/books.json
	FOLIO_SNAPSHOT_BREAKER_TIMEOUT=1m
	FOLIO_HISTORY_ENABLED=true
	FOLIO_LOGGING_LEVEL=debug

# Validation

Field ranges are declared as validate tags and checked through the
validation package. Rules spanning fields, such as the hybrid weights summing
to 1.0, are checked in Config.Validate.
*/
package config
