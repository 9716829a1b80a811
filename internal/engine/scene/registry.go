package scene

// Kind names a class of GPU-backed resource.
type Kind string

const (
	KindGeometry Kind = "geometry"
	KindMaterial Kind = "material"
	KindTexture  Kind = "texture"
)

// Kinds lists every resource kind.
var Kinds = []Kind{KindGeometry, KindMaterial, KindTexture}

// Observer is notified of resource lifecycle events.
type Observer interface {
	ResourceCreated(kind string)
	ResourceDisposed(kind string)
}

// Registry creates resources and keeps per-kind created/disposed counts.
// One registry belongs to one mounted scene.
type Registry struct {
	created  map[Kind]int
	disposed map[Kind]int
	observer Observer
}

// NewRegistry creates a registry. obs may be nil.
func NewRegistry(obs Observer) *Registry {
	return &Registry{
		created:  make(map[Kind]int),
		disposed: make(map[Kind]int),
		observer: obs,
	}
}

// NewGeometry wraps vertex data in a disposable geometry.
func (r *Registry) NewGeometry(data GeometryData) *Geometry {
	g := &Geometry{Data: data}
	g.init(r, KindGeometry)
	return g
}

// NewMaterial registers a copy of m.
func (r *Registry) NewMaterial(m Material) *Material {
	mat := m
	mat.resource = resource{}
	mat.init(r, KindMaterial)
	return &mat
}

// NewTexture registers an empty texture that will be filled from url.
func (r *Registry) NewTexture(url string) *Texture {
	t := &Texture{URL: url}
	t.init(r, KindTexture)
	return t
}

// Created returns how many resources of kind were created.
func (r *Registry) Created(kind Kind) int {
	return r.created[kind]
}

// Disposed returns how many resources of kind were disposed.
func (r *Registry) Disposed(kind Kind) int {
	return r.disposed[kind]
}

// Live returns how many resources of kind are still held.
func (r *Registry) Live(kind Kind) int {
	return r.created[kind] - r.disposed[kind]
}

// CreatedTotal returns the number of resources created across all kinds.
func (r *Registry) CreatedTotal() int {
	total := 0
	for _, n := range r.created {
		total += n
	}
	return total
}

// DisposedTotal returns the number of resources disposed across all kinds.
func (r *Registry) DisposedTotal() int {
	total := 0
	for _, n := range r.disposed {
		total += n
	}
	return total
}

func (r *Registry) acquired(kind Kind) {
	r.created[kind]++
	if r.observer != nil {
		r.observer.ResourceCreated(string(kind))
	}
}

func (r *Registry) released(kind Kind) {
	r.disposed[kind]++
	if r.observer != nil {
		r.observer.ResourceDisposed(string(kind))
	}
}

// resource carries the idempotent dispose logic shared by geometries,
// materials and textures.
type resource struct {
	kind      Kind
	registry  *Registry
	disposed  bool
	listeners []func()
}

func (r *resource) init(reg *Registry, kind Kind) {
	r.kind = kind
	r.registry = reg
	if reg != nil {
		reg.acquired(kind)
	}
}

// Kind returns the resource kind.
func (r *resource) Kind() Kind {
	return r.kind
}

// Disposed reports whether Dispose has run.
func (r *resource) Disposed() bool {
	return r.disposed
}

// OnDispose registers fn to run when the resource is released. Listeners
// registered after disposal run immediately.
func (r *resource) OnDispose(fn func()) {
	if r.disposed {
		fn()
		return
	}
	r.listeners = append(r.listeners, fn)
}

// Dispose releases the resource. Calling it again has no effect.
func (r *resource) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	listeners := r.listeners
	r.listeners = nil
	for _, fn := range listeners {
		fn()
	}
	if r.registry != nil {
		r.registry.released(r.kind)
	}
}
