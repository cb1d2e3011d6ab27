// aviation/errors.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrConflictingLimits = errors.New("Both VMO and MMO given for a fixed limit")
	ErrInvalidBands      = errors.New("Invalid altitude bands")
	ErrInvalidLimit      = errors.New("Invalid VMO/MMO value")
	ErrInvalidTable      = errors.New("Invalid maximum speed table")
	ErrNoLimits          = errors.New("Neither VMO nor MMO given")
	ErrNoMaxSpeedTable   = errors.New("No VMO/MMO table for aircraft")
)
