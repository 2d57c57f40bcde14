package drape

import (
	"sort"
	"sync"
)

// BackendKind identifies the execution class of a render backend.
type BackendKind int

// Backend kinds.
const (
	KindCPU BackendKind = iota
	KindGPU
)

// String returns the kind name.
func (k BackendKind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Capabilities describes a backend for diagnostics.
type Capabilities struct {
	// Name identifies the backend implementation (e.g. "software", "wgpu").
	Name string

	// Kind is the backend's execution class.
	Kind BackendKind

	// MaxImageDim is the largest image side length the backend accepts.
	MaxImageDim int
}

// Backend renders a texture onto a garment through a mask. The two
// implementations (CPU pixel-buffer, wgpu compute) must produce matching
// results within a small per-channel tolerance.
//
// Backend packages register themselves at init time and users opt in via
// blank import:
//
//	import _ "github.com/gogpu/drape/gpu" // enables GPU compositing
type Backend interface {
	// Kind returns the backend's execution class.
	Kind() BackendKind

	// IsSupported probes whether the backend can run in this process.
	// Must be cheap after the first call.
	IsSupported() bool

	// Capabilities returns diagnostic info about the backend.
	Capabilities() Capabilities

	// Render composites texture onto garment through mask. All three
	// rasters must share dimensions.
	Render(garment, texture, mask *Raster, opts RenderOptions) (*Raster, error)

	// Close releases backend resources. The backend must tolerate
	// Close without a prior successful Render.
	Close()
}

// registeredBackend pairs a backend with its selection priority.
type registeredBackend struct {
	backend  Backend
	priority int
}

var (
	backendMu   sync.RWMutex
	backends    []registeredBackend
	probedCache map[Backend]bool
)

// RegisterBackend adds a backend to the process-wide registry. Higher
// priority backends are probed first. Safe for concurrent use; typically
// called from a backend package's init.
func RegisterBackend(b Backend, priority int) {
	if b == nil {
		return
	}
	backendMu.Lock()
	defer backendMu.Unlock()

	backends = append(backends, registeredBackend{backend: b, priority: priority})
	sort.SliceStable(backends, func(i, j int) bool {
		return backends[i].priority > backends[j].priority
	})
}

// selectBackend picks the highest-priority supported backend. GPU-class
// backends are skipped when preferGPU is false. Probe results are cached
// process-wide; the cache is advisory and cleared by ResetBackendProbes.
func selectBackend(preferGPU bool) (Backend, error) {
	backendMu.Lock()
	defer backendMu.Unlock()

	if probedCache == nil {
		probedCache = make(map[Backend]bool)
	}

	for _, rb := range backends {
		if rb.backend.Kind() == KindGPU && !preferGPU {
			continue
		}
		supported, probed := probedCache[rb.backend]
		if !probed {
			supported = rb.backend.IsSupported()
			probedCache[rb.backend] = supported
		}
		if supported {
			return rb.backend, nil
		}
	}
	return nil, ErrNoRenderBackend
}

// ResetBackendProbes clears the cached capability probe results so the
// next selection re-probes every backend. Intended for tests.
func ResetBackendProbes() {
	backendMu.Lock()
	probedCache = nil
	backendMu.Unlock()
}

// RegisteredBackends returns the capabilities of all registered
// backends in priority order, for diagnostics.
func RegisteredBackends() []Capabilities {
	backendMu.RLock()
	defer backendMu.RUnlock()

	caps := make([]Capabilities, 0, len(backends))
	for _, rb := range backends {
		caps = append(caps, rb.backend.Capabilities())
	}
	return caps
}
