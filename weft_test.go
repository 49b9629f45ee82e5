package weft_test

import (
	"testing"

	"github.com/weft-ui/weft"
)

func TestFacadeHooksRoundTrip(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	renders := 0
	owner.SetScheduler(weft.SchedulerFunc(func() { renders++ }))

	var setter *weft.Setter[int]
	pass := func() (out int) {
		weft.WithOwner(owner, func() {
			owner.StartRender()
			v, s := weft.UseWritableComputed(weft.Static(10))
			setter = s
			out = weft.UseMemo(func() int { return v * 2 }, v)
			owner.EndRender()
		})
		return out
	}

	if got := pass(); got != 20 {
		t.Fatalf("first pass = %d, want 20", got)
	}

	setter.Set(15)
	if renders != 1 {
		t.Fatalf("renders = %d after Set, want 1", renders)
	}
	if got := pass(); got != 30 {
		t.Fatalf("second pass = %d, want 30", got)
	}
}

func TestFacadeComputedInitial(t *testing.T) {
	owner := weft.NewOwner(nil)
	defer owner.Dispose()

	var got string
	weft.WithOwner(owner, func() {
		owner.StartRender()
		got, _ = weft.UseWritableComputed(weft.Computed(func(prev *string) string {
			if prev != nil {
				t.Error("prev should be nil at mount")
			}
			return "woven"
		}))
		owner.EndRender()
	})

	if got != "woven" {
		t.Fatalf("got %q, want %q", got, "woven")
	}
}
