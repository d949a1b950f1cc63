// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package recommend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a query names an unknown book.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned for bad limits, malformed weights or unknown options.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnpredictable is returned when no evidence exists to estimate a score.
// Callers recover locally by substituting a default.
var ErrUnpredictable = errors.New("score unpredictable")

// ErrTrainingFailed is returned when a training snapshot is empty or malformed
// or the build fails. No model is published when it is returned.
var ErrTrainingFailed = errors.New("training failed")

// ErrModelNotReady is returned by model queries before any model has been published.
var ErrModelNotReady = errors.New("model not ready")

// ErrTrainingInProgress is returned when a retrain is requested while another is running.
var ErrTrainingInProgress = errors.New("training already in progress")

// ErrRetrainThrottled is returned when retrain requests exceed the configured rate.
var ErrRetrainThrottled = errors.New("retrain rate limited")

// trainingFailed tags err as a training failure while keeping the cause inspectable.
func trainingFailed(err error) error {
	if errors.Is(err, ErrTrainingFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTrainingFailed, err)
}
