// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"log/slog"

	"github.com/gogpu/vgraph"
)

// slogger returns the logger shared with the root package, so a single
// vgraph.SetLogger call configures GPU diagnostics as well.
func slogger() *slog.Logger { return vgraph.Logger() }
