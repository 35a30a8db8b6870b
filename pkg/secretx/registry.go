// Package secretx holds the two process secrets used by the auth core: the
// bearer-token signing key and the CSRF signing key.
//
// Each secret lives in a write-once cell. The first successful initializer
// wins, every later attempt fails with ErrAlreadyInitialized, and reading a
// cell that was never initialized panics. A misconfigured deployment must
// never quietly run with a weak or missing key.
package secretx

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// Kind names one of the two secrets.
type Kind string

const (
	KindBearer Kind = "bearer"
	KindCSRF   Kind = "csrf"
)

// Registry is the security context threaded through the request pipeline.
// Build it with Load; the zero value is valid but every read panics until
// both Init methods have succeeded.
type Registry struct {
	bearer atomic.Pointer[[]byte]
	csrf   atomic.Pointer[[]byte]
}

// Load validates both raw secrets and returns a fully initialized Registry.
func Load(bearerRaw, csrfRaw string) (*Registry, error) {
	r := &Registry{}
	if err := r.InitBearer(bearerRaw); err != nil {
		return nil, err
	}
	if err := r.InitCSRF(csrfRaw); err != nil {
		return nil, err
	}
	return r, nil
}

// InitBearer validates raw against the bearer rules and stores it.
func (r *Registry) InitBearer(raw string) error {
	return r.init(&r.bearer, KindBearer, raw)
}

// InitCSRF validates raw against the CSRF rules and stores it.
func (r *Registry) InitCSRF(raw string) error {
	return r.init(&r.csrf, KindCSRF, raw)
}

func (r *Registry) init(cell *atomic.Pointer[[]byte], kind Kind, raw string) error {
	if cell.Load() != nil {
		return fmt.Errorf("secretx: %s secret: %w", kind, ErrAlreadyInitialized)
	}

	value, err := Validate(kind, raw)
	if err != nil {
		return fmt.Errorf("secretx: %s secret: %w", kind, err)
	}

	b := []byte(value)
	if !cell.CompareAndSwap(nil, &b) {
		// Lost a race with another initializer.
		return fmt.Errorf("secretx: %s secret: %w", kind, ErrAlreadyInitialized)
	}
	return nil
}

// Bearer returns a copy of the bearer signing key. Panics if uninitialized.
func (r *Registry) Bearer() []byte { return read(&r.bearer, KindBearer) }

// CSRF returns a copy of the CSRF signing key. Panics if uninitialized.
func (r *Registry) CSRF() []byte { return read(&r.csrf, KindCSRF) }

// Ready reports whether both secrets have been initialized.
func (r *Registry) Ready() bool {
	return r != nil && r.bearer.Load() != nil && r.csrf.Load() != nil
}

func read(cell *atomic.Pointer[[]byte], kind Kind) []byte {
	p := cell.Load()
	if p == nil {
		panic(fmt.Sprintf("secretx: %s secret read before initialization", kind))
	}
	return slices.Clone(*p)
}
