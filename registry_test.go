package offload_test

import (
	"context"
	"errors"
	"testing"

	"github.com/offload-dev/offload"
)

// ---------------------------------------------------------------------------
// Register / Lookup / Unregister
// ---------------------------------------------------------------------------

func TestRegistryRegisterLookup(t *testing.T) {
	reg := offload.NewRegistry()
	lim := offload.NewCapacityLimiter(2, nil)

	reg.Register("db", lim)

	got, ok := reg.Lookup("db")
	if !ok {
		t.Fatal(`Lookup("db") ok = false, want true`)
	}
	if got != lim {
		t.Fatal(`Lookup("db") returned a different limiter`)
	}
}

func TestRegistryLookupAbsent(t *testing.T) {
	reg := offload.NewRegistry()

	got, ok := reg.Lookup("missing")
	if ok {
		t.Fatal(`Lookup("missing") ok = true, want false`)
	}
	if got != nil {
		t.Fatalf(`Lookup("missing") = %v, want nil`, got)
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := offload.NewRegistry()
	reg.Register("db", offload.NewCapacityLimiter(2, nil))

	reg.Unregister("db")

	if _, ok := reg.Lookup("db"); ok {
		t.Fatal(`Lookup("db") ok = true after Unregister, want false`)
	}
}

func TestRegistryUnregisterAbsentIsNoOp(t *testing.T) {
	reg := offload.NewRegistry()

	// Must not panic or error.
	reg.Unregister("never-registered")
}

// ---------------------------------------------------------------------------
// Re-registering replaces; the old limiter is orphaned, not drained
// ---------------------------------------------------------------------------

func TestRegistryReRegisterReplacesAndOrphans(t *testing.T) {
	reg := offload.NewRegistry()
	old := offload.NewCapacityLimiter(1, nil)
	reg.Register("db", old)

	// A holder is in flight on the old limiter.
	if err := old.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() = %v, want nil", err)
	}

	fresh := offload.NewCapacityLimiter(3, nil)
	reg.Register("db", fresh)

	got, ok := reg.Lookup("db")
	if !ok || got != fresh {
		t.Fatal(`Lookup("db") did not return the replacement limiter`)
	}

	// The orphaned holder still releases cleanly against its own
	// reference.
	if got := old.InFlight(); got != 1 {
		t.Fatalf("old.InFlight() = %d, want 1", got)
	}
	old.Release()
	if got := old.InFlight(); got != 0 {
		t.Fatalf("old.InFlight() = %d after release, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// Len / Names
// ---------------------------------------------------------------------------

func TestRegistryLenAndNames(t *testing.T) {
	reg := offload.NewRegistry()
	reg.Register("zeta", offload.NewCapacityLimiter(1, nil))
	reg.Register("alpha", offload.NewCapacityLimiter(1, nil))

	if got := reg.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("Names() = %v, want [alpha zeta]", names)
	}
}

// ---------------------------------------------------------------------------
// Scoped: registered inside the scope, gone on every exit path
// ---------------------------------------------------------------------------

func TestRegistryScopedRegistersInsideScope(t *testing.T) {
	reg := offload.NewRegistry()

	err := reg.Scoped("docker", 4, func(lim *offload.CapacityLimiter) error {
		if lim.Capacity() != 4 {
			t.Fatalf("scoped limiter Capacity() = %d, want 4", lim.Capacity())
		}

		got, ok := reg.Lookup("docker")
		if !ok || got != lim {
			t.Fatal(`Lookup("docker") inside scope did not return the scoped limiter`)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("Scoped() = %v, want nil", err)
	}

	if _, ok := reg.Lookup("docker"); ok {
		t.Fatal(`Lookup("docker") ok = true after scope exit, want false`)
	}
}

func TestRegistryScopedUnregistersOnError(t *testing.T) {
	reg := offload.NewRegistry()
	boom := errors.New("scope failed")

	err := reg.Scoped("docker", 2, func(_ *offload.CapacityLimiter) error {
		return boom
	})
	if err != boom {
		t.Fatalf("Scoped() = %v, want the scope's own error", err)
	}

	if _, ok := reg.Lookup("docker"); ok {
		t.Fatal(`Lookup("docker") ok = true after failing scope, want false`)
	}
}

func TestRegistryScopedUnregistersOnPanic(t *testing.T) {
	reg := offload.NewRegistry()

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Fatalf("recovered %v, want the scope's own panic", r)
			}
		}()

		_ = reg.Scoped("docker", 2, func(_ *offload.CapacityLimiter) error {
			panic("kaboom")
		})
	}()

	if _, ok := reg.Lookup("docker"); ok {
		t.Fatal(`Lookup("docker") ok = true after panicking scope, want false`)
	}
}

// ---------------------------------------------------------------------------
// Default registry singleton and package-level facade
// ---------------------------------------------------------------------------

func TestDefaultRegistryIsSingleton(t *testing.T) {
	if offload.DefaultRegistry() != offload.DefaultRegistry() {
		t.Fatal("DefaultRegistry() returned different instances")
	}
}

func TestPackageLevelFacade(t *testing.T) {
	const name = "facade-test-limiter"
	lim := offload.NewCapacityLimiter(1, nil)

	offload.Register(name, lim)
	defer offload.Unregister(name)

	got, ok := offload.Lookup(name)
	if !ok || got != lim {
		t.Fatal("package-level Lookup did not return the registered limiter")
	}

	direct, ok := offload.DefaultRegistry().Lookup(name)
	if !ok || direct != lim {
		t.Fatal("package-level Register did not target the default registry")
	}
}

func TestPackageLevelScoped(t *testing.T) {
	const name = "facade-scoped-limiter"

	err := offload.Scoped(name, 2, func(_ *offload.CapacityLimiter) error {
		if _, ok := offload.Lookup(name); !ok {
			t.Fatalf("Lookup(%q) inside scope ok = false, want true", name)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("Scoped() = %v, want nil", err)
	}

	if _, ok := offload.Lookup(name); ok {
		t.Fatalf("Lookup(%q) ok = true after scope exit, want false", name)
	}
}
