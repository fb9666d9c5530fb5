package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/render"
)

type stubBackend struct {
	name   string
	closed bool
}

func (s *stubBackend) Upload(*frame.FrameBuffer, frame.Uniforms) error { return nil }
func (s *stubBackend) Draw() error                                     { return nil }
func (s *stubBackend) Close()                                          { s.closed = true }

// withRegistry swaps in an empty registry for the duration of the test.
func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func stubFactory(name string) Factory {
	return func() (render.Backend, error) { return &stubBackend{name: name}, nil }
}

func failingFactory() (render.Backend, error) {
	return nil, vgraph.ErrSetup
}

func TestRegisterAndOpen(t *testing.T) {
	withRegistry(t)

	Register("b", stubFactory("b"))
	Register("a", stubFactory("a"))
	if got := Available(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Available() = %v, want [a b]", got)
	}
	if !IsRegistered("a") {
		t.Error("IsRegistered(a) = false")
	}

	b, err := Open("a")
	if err != nil {
		t.Fatalf("Open(a): %v", err)
	}
	if b.(*stubBackend).name != "a" {
		t.Errorf("opened %q, want a", b.(*stubBackend).name)
	}

	Unregister("a")
	if IsRegistered("a") {
		t.Error("a still registered after Unregister")
	}
	if _, err := Open("a"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(unregistered) = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenWrapsFactoryError(t *testing.T) {
	withRegistry(t)
	Register("broken", failingFactory)

	_, err := Open("broken")
	if !errors.Is(err, vgraph.ErrSetup) {
		t.Errorf("Open(broken) = %v, want ErrSetup", err)
	}
}

func TestDefaultPriority(t *testing.T) {
	tests := []struct {
		name       string
		registered map[string]Factory
		want       string
		wantErr    bool
	}{
		{
			name:    "empty",
			wantErr: true,
		},
		{
			name: "priority wins",
			registered: map[string]Factory{
				"custom":   stubFactory("custom"),
				NameOpenGL: stubFactory(NameOpenGL),
				NameGoGPU:  stubFactory(NameGoGPU),
			},
			want: NameGoGPU,
		},
		{
			name: "falls through failures",
			registered: map[string]Factory{
				NameGoGPU:  failingFactory,
				NameOpenGL: stubFactory(NameOpenGL),
			},
			want: NameOpenGL,
		},
		{
			name: "non-priority last",
			registered: map[string]Factory{
				NameGoGPU: failingFactory,
				"custom":  stubFactory("custom"),
			},
			want: "custom",
		},
		{
			name: "all fail",
			registered: map[string]Factory{
				NameGoGPU:  failingFactory,
				NameOpenGL: failingFactory,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withRegistry(t)
			for name, f := range tt.registered {
				Register(name, f)
			}
			name, b, err := Default()
			if tt.wantErr {
				if !errors.Is(err, ErrBackendNotAvailable) {
					t.Errorf("Default() err = %v, want ErrBackendNotAvailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Default(): %v", err)
			}
			if name != tt.want || b.(*stubBackend).name != tt.want {
				t.Errorf("Default() = %q, want %q", name, tt.want)
			}
		})
	}
}

func TestDefaultJoinsErrors(t *testing.T) {
	withRegistry(t)
	Register(NameGoGPU, failingFactory)

	_, _, err := Default()
	if !errors.Is(err, vgraph.ErrSetup) {
		t.Errorf("Default() = %v, want joined ErrSetup", err)
	}
}

func TestClose(t *testing.T) {
	s := &stubBackend{}
	Close(s)
	if !s.closed {
		t.Error("Close did not call Close on a Closer")
	}
	// Backends without Close are ignored.
	Close(render.Backend(nil))
}
