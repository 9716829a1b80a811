package scene

import (
	"errors"
	"fmt"
)

// Disposable is anything holding GPU-side memory.
type Disposable interface {
	Dispose()
	Disposed() bool
}

// Reclaimer releases the GPU resources reachable from a subtree.
type Reclaimer struct {
	released int
}

// Released returns how many resources this reclaimer has released.
func (rc *Reclaimer) Released() int {
	return rc.released
}

// Reclaim disposes every geometry, material and texture under root and
// returns how many were newly released. Shared resources are released once.
func (rc *Reclaimer) Reclaim(root *Node) int {
	if root == nil {
		return 0
	}
	n := 0
	root.Traverse(func(node *Node) {
		if node.Mesh == nil {
			return
		}
		if g := node.Mesh.Geometry; g != nil {
			n += rc.release(g)
		}
		if m := node.Mesh.Material; m != nil {
			for _, t := range m.Textures() {
				n += rc.release(t)
			}
			n += rc.release(m)
		}
	})
	rc.released += n
	return n
}

func (rc *Reclaimer) release(d Disposable) int {
	if d.Disposed() {
		return 0
	}
	d.Dispose()
	return 1
}

// Disposer is a list of release functions built while a scene is
// constructed. Dispose runs them once, newest first.
type Disposer struct {
	fns  []func()
	done bool
}

// Defer adds fn to the list. After Dispose has run, fn runs immediately.
func (d *Disposer) Defer(fn func()) {
	if d.done {
		fn()
		return
	}
	d.fns = append(d.fns, fn)
}

// Dispose runs every release function exactly once, newest first. A panic in
// one function does not stop the others; panics are returned as errors.
func (d *Disposer) Dispose() error {
	if d.done {
		return nil
	}
	d.done = true

	var errs []error
	for i := len(d.fns) - 1; i >= 0; i-- {
		if err := runRelease(d.fns[i]); err != nil {
			errs = append(errs, err)
		}
	}
	d.fns = nil
	return errors.Join(errs...)
}

// Done reports whether Dispose has run.
func (d *Disposer) Done() bool {
	return d.done
}

func runRelease(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("release panicked: %v", r)
		}
	}()
	fn()
	return nil
}
