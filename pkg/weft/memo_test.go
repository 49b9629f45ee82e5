package weft_test

import (
	"testing"

	"github.com/weft-ui/weft/pkg/weft"
)

func TestUseMemoCachesUntilDepsChange(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	runs := 0
	render := func(dep int) (got int) {
		renderPass(owner, func() {
			got = weft.UseMemo(func() int {
				runs++
				return dep * 2
			}, dep)
		})
		return got
	}

	if got := render(1); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := render(1); got != 2 {
		t.Fatalf("expected cached 2, got %d", got)
	}
	if runs != 1 {
		t.Fatalf("compute should have run once, ran %d times", runs)
	}

	if got := render(3); got != 6 {
		t.Fatalf("expected 6 after dep change, got %d", got)
	}
	if runs != 2 {
		t.Fatalf("compute should have run twice, ran %d times", runs)
	}
}

func TestUseMemoEmptyDepsComputesOnce(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	runs := 0
	for i := 0; i < 4; i++ {
		renderPass(owner, func() {
			weft.UseMemo(func() string {
				runs++
				return "once"
			})
		})
	}

	if runs != 1 {
		t.Fatalf("empty dependency sequence should compute once, ran %d times", runs)
	}
}

func TestUseCallbackReplacedOnDepChange(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	calls := map[string]int{}
	render := func(dep string) (cb func()) {
		renderPass(owner, func() {
			cb = weft.UseCallback(func() { calls[dep]++ }, dep)
		})
		return cb
	}

	render("a")
	cb := render("a")
	cb()
	if calls["a"] != 1 {
		t.Fatalf("expected mount callback to run, calls=%v", calls)
	}

	cb = render("b")
	cb()
	if calls["b"] != 1 {
		t.Fatalf("expected replaced callback after dep change, calls=%v", calls)
	}
}

func TestUseRefDoesNotRequestRenders(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	sched := &countingScheduler{}
	owner.SetScheduler(sched)

	var ref *weft.Ref[int]
	renderPass(owner, func() {
		ref = weft.UseRef(1)
	})

	ref.Set(2)
	if sched.requests != 0 {
		t.Fatalf("ref writes must never request renders, got %d", sched.requests)
	}
	if ref.Current() != 2 {
		t.Fatalf("expected 2, got %d", ref.Current())
	}
	if !ref.IsSet() {
		t.Error("ref should report set after write")
	}

	ref.Clear()
	if ref.Current() != 0 || ref.IsSet() {
		t.Error("clear should zero the ref")
	}
}
