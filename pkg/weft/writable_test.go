package weft_test

import (
	"math"
	"testing"

	"github.com/weft-ui/weft/pkg/weft"
)

// renderPass brackets fn the way the host runtime brackets a component
// render: owner established for the goroutine, slots reset, order checked.
func renderPass(owner *weft.Owner, fn func()) {
	weft.WithOwner(owner, func() {
		owner.StartRender()
		fn()
		owner.EndRender()
	})
}

// countingScheduler records re-render requests.
type countingScheduler struct {
	requests int
}

func (s *countingScheduler) RequestRender() { s.requests++ }

func TestMountResolvesStaticWithoutInvocation(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	var got int
	renderPass(owner, func() {
		got, _ = weft.UseWritableComputed(weft.Static(42))
	})

	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestMountProducerReceivesNilPrev(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	var sawNil bool
	var got int
	renderPass(owner, func() {
		got, _ = weft.UseWritableComputed(weft.Computed(func(prev *int) int {
			sawNil = prev == nil
			return 7
		}), 1)
	})

	if !sawNil {
		t.Error("mount producer should receive nil prev")
	}
	if got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestInitializerEvaluatedOnlyAtMount(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	runs := 0
	producer := func(prev *int) int {
		runs++
		return 5
	}

	for i := 0; i < 5; i++ {
		renderPass(owner, func() {
			got, _ := weft.UseWritableComputed(weft.Computed(producer))
			if got != 5 {
				t.Fatalf("render %d: expected 5, got %d", i, got)
			}
		})
	}

	if runs != 1 {
		t.Fatalf("producer should run exactly once across renders with stable deps, ran %d times", runs)
	}
}

func TestDifferentInitialIgnoredWhileDepsUnchanged(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	renderPass(owner, func() {
		got, _ := weft.UseWritableComputed(weft.Static(1), "k")
		if got != 1 {
			t.Fatalf("expected 1, got %d", got)
		}
	})

	// The cell is not re-initialized once mounted; a different initial with
	// an unchanged dependency snapshot has no effect.
	renderPass(owner, func() {
		got, _ := weft.UseWritableComputed(weft.Static(999), "k")
		if got != 1 {
			t.Fatalf("expected 1 after re-supplying a different initial, got %d", got)
		}
	})
}

func TestDependencyChangeRecomputesFromLatestState(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	sched := &countingScheduler{}
	owner.SetScheduler(sched)

	var lastPrev *int
	producer := func(prev *int) int {
		lastPrev = prev
		if prev == nil {
			return 10
		}
		return *prev + 10
	}

	var got int
	var set *weft.Setter[int]
	render := func(dep int) {
		renderPass(owner, func() {
			got, set = weft.UseWritableComputed(weft.Computed(producer), dep)
		})
	}

	render(1)
	if got != 10 {
		t.Fatalf("mount: expected 10, got %d", got)
	}
	if lastPrev != nil {
		t.Fatal("mount: producer should receive nil prev")
	}

	set.Set(100)
	if sched.requests != 1 {
		t.Fatalf("expected 1 render request after override, got %d", sched.requests)
	}

	render(2)
	if got != 110 {
		t.Fatalf("recompute should fold the manual override: expected 110, got %d", got)
	}
	if lastPrev == nil || *lastPrev != 100 {
		t.Fatalf("producer should have received the overridden value 100, got %v", lastPrev)
	}
}

func TestStaticStoredVerbatimOnDependencyChange(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	render := func(initial, dep int) (got int) {
		renderPass(owner, func() {
			got, _ = weft.UseWritableComputed(weft.Static(initial), dep)
		})
		return got
	}

	if got := render(1, 1); got != 1 {
		t.Fatalf("mount: expected 1, got %d", got)
	}
	if got := render(50, 2); got != 50 {
		t.Fatalf("dependency change with Static should store the literal verbatim, got %d", got)
	}
}

func TestDepsLengthMismatchIsChanged(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	runs := 0
	producer := func(prev *int) int {
		runs++
		return runs
	}

	renderPass(owner, func() {
		weft.UseWritableComputed(weft.Computed(producer), 1)
	})
	renderPass(owner, func() {
		weft.UseWritableComputed(weft.Computed(producer), 1, 2)
	})

	if runs != 2 {
		t.Fatalf("length mismatch must count as changed; producer ran %d times", runs)
	}
}

func TestNaNDependencyIsStable(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	runs := 0
	producer := func(prev *string) string {
		runs++
		return "v"
	}

	for i := 0; i < 3; i++ {
		renderPass(owner, func() {
			weft.UseWritableComputed(weft.Computed(producer), math.NaN())
		})
	}

	if runs != 1 {
		t.Fatalf("NaN must equal itself under same-value comparison; producer ran %d times", runs)
	}
}

func TestSignedZeroDependenciesDiffer(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	runs := 0
	producer := func(prev *int) int {
		runs++
		return runs
	}

	negZero := math.Copysign(0, -1)

	renderPass(owner, func() {
		weft.UseWritableComputed(weft.Computed(producer), 0.0)
	})
	renderPass(owner, func() {
		weft.UseWritableComputed(weft.Computed(producer), negZero)
	})

	if runs != 2 {
		t.Fatalf("+0 and -0 are distinct under same-value comparison; producer ran %d times", runs)
	}
}

func TestIdempotentWriteRequestsNoRender(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	sched := &countingScheduler{}
	owner.SetScheduler(sched)

	var set *weft.Setter[int]
	renderPass(owner, func() {
		_, set = weft.UseWritableComputed(weft.Static(3))
	})

	set.Set(3)
	if sched.requests != 0 {
		t.Fatalf("same-value write must not request a render, got %d requests", sched.requests)
	}

	set.Update(func(n int) int { return n })
	if sched.requests != 0 {
		t.Fatalf("identity update must not request a render, got %d requests", sched.requests)
	}

	set.Set(4)
	if sched.requests != 1 {
		t.Fatalf("changed write must request exactly one render, got %d", sched.requests)
	}
}

func TestNaNValueWriteConverges(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	sched := &countingScheduler{}
	owner.SetScheduler(sched)

	var set *weft.Setter[float64]
	renderPass(owner, func() {
		_, set = weft.UseWritableComputed(weft.Static(math.NaN()))
	})

	set.Set(math.NaN())
	if sched.requests != 0 {
		t.Fatalf("NaN -> NaN is a convergent write, got %d requests", sched.requests)
	}

	set.Set(0)
	set.Set(math.Copysign(0, -1))
	if sched.requests != 2 {
		t.Fatalf("+0 -> -0 is a real change, got %d requests", sched.requests)
	}
}

func TestUpdateReceivesCurrentValue(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	var got int
	var set *weft.Setter[int]
	render := func() {
		renderPass(owner, func() {
			got, set = weft.UseWritableComputed(weft.Static(1))
		})
	}

	render()
	set.Update(func(n int) int { return n * 10 })
	render()

	if got != 10 {
		t.Fatalf("expected 10 after update, got %d", got)
	}

	set.Update(func(n int) int { return n + 5 })
	render()
	if got != 15 {
		t.Fatalf("update must receive the current cell value, got %d", got)
	}
}

func TestSetterIdentityStable(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	var setters []*weft.Setter[int]
	render := func(dep int) {
		renderPass(owner, func() {
			_, set := weft.UseWritableComputed(weft.Computed(func(prev *int) int {
				return dep
			}), dep)
			setters = append(setters, set)
		})
	}

	render(1)
	setters[0].Set(99)
	render(2)
	setters[1].Update(func(n int) int { return n + 1 })
	render(3)

	for i := 1; i < len(setters); i++ {
		if setters[i] != setters[0] {
			t.Fatalf("setter identity changed at render %d", i)
		}
	}
}

func TestFunctionTypedPayloadStoredNotInvoked(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	sched := &countingScheduler{}
	owner.SetScheduler(sched)

	payload := func() int { return 1 }

	var got func() int
	var set *weft.Setter[func() int]
	render := func() {
		renderPass(owner, func() {
			got, set = weft.UseWritableComputed(weft.Static(payload))
		})
	}

	render()
	if got() != 1 {
		t.Fatal("function payload should be stored verbatim")
	}

	// Writing the same function value converges by identity.
	set.Set(payload)
	if sched.requests != 0 {
		t.Fatalf("same function identity must be a no-op write, got %d requests", sched.requests)
	}

	next := func() int { return 2 }
	set.Set(next)
	if sched.requests != 1 {
		t.Fatalf("distinct function identity is a change, got %d requests", sched.requests)
	}

	render()
	if got() != 2 {
		t.Fatal("stored payload should be the newly written function")
	}
}

func TestProducerPanicPropagates(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("producer panic should propagate to the caller")
		}
	}()

	renderPass(owner, func() {
		weft.UseWritableComputed(weft.Computed(func(prev *int) int {
			panic("boom")
		}))
	})
}

func TestHookOutsideRenderPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("hook call without a current owner should panic")
		}
	}()

	weft.UseWritableComputed(weft.Static(1))
}

func TestZeroishValuesAreLegitimate(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	sched := &countingScheduler{}
	owner.SetScheduler(sched)

	var got string
	var set *weft.Setter[string]
	render := func() {
		renderPass(owner, func() {
			got, set = weft.UseWritableComputed(weft.Static("initial"))
		})
	}

	render()
	set.Set("")
	render()
	if got != "" {
		t.Fatalf("empty string is a legitimate value, got %q", got)
	}
	if sched.requests != 1 {
		t.Fatalf("expected 1 request, got %d", sched.requests)
	}

	set.Set("")
	if sched.requests != 1 {
		t.Fatalf("rewriting empty string must converge, got %d requests", sched.requests)
	}
}
