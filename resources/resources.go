// resources/resources.go
// Copyright(c) 2025-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package resources holds the data files that are built into the binary.
package resources

import "embed"

//go:embed *.json
var FS embed.FS
