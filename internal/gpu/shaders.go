// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/vgraph"
)

//go:embed shaders/instance.wgsl
var instanceShaderSource string

// Shader entry points.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

// InstanceShaderSource returns the WGSL source of the path instance shader.
func InstanceShaderSource() string { return instanceShaderSource }

// ValidateShader compiles WGSL source with naga and reports the first
// problem as an ErrSetup error. Drivers accept WGSL directly, so the
// compiled output is discarded.
func ValidateShader(label, source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("%w: %s shader source is empty", vgraph.ErrSetup, label)
	}
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("%w: compile %s shader: %w", vgraph.ErrSetup, label, err)
	}
	return nil
}
