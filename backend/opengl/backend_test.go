package opengl

import (
	"errors"
	"testing"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/backend"
)

// Only paths that do not touch GL run here; drawing needs a window.

func TestNewWithoutContext(t *testing.T) {
	_, err := New()
	if !errors.Is(err, vgraph.ErrSetup) || !errors.Is(err, ErrNoContext) {
		t.Errorf("New() without Init = %v, want ErrSetup and ErrNoContext", err)
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameOpenGL) {
		t.Errorf("%q backend not registered", backend.NameOpenGL)
	}
	if _, err := backend.Open(backend.NameOpenGL); !errors.Is(err, ErrNoContext) {
		t.Errorf("Open(opengl) without context = %v, want ErrNoContext", err)
	}
}
