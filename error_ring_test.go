package carousel

import (
	"errors"
	"testing"
)

func TestRing_NilSafe(t *testing.T) {
	var r *ring[error]

	// All operations should be safe on nil
	r.push(errors.New("test"))
	r.clear()

	if r.all() != nil {
		t.Error("expected nil from nil ring")
	}
}

func TestRing_ZeroSize(t *testing.T) {
	if r := newRing[error](0); r != nil {
		t.Error("expected nil ring for size 0")
	}
}

func TestRing_NegativeSize(t *testing.T) {
	if r := newRing[Rejection[string]](-1); r != nil {
		t.Error("expected nil ring for negative size")
	}
}

func TestRing_WrapsAndEvictsOldest(t *testing.T) {
	r := newRing[Rejection[string]](3)

	for i, src := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		r.push(Rejection[string]{Index: i, Slide: src, Err: errors.New("404")})
	}

	got := r.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 rejections, got %d", len(got))
	}

	// a.jpg should be gone, oldest is now b.jpg
	if got[0].Slide != "b.jpg" {
		t.Errorf("expected b.jpg first after wrap, got %s", got[0].Slide)
	}
	if got[2].Slide != "d.jpg" {
		t.Errorf("expected d.jpg last, got %s", got[2].Slide)
	}
}

func TestRing_MultipleWraps(t *testing.T) {
	r := newRing[error](2)

	for i := 0; i < 10; i++ {
		r.push(errors.New("error"))
	}

	if errs := r.all(); len(errs) != 2 {
		t.Errorf("expected 2 errors after multiple wraps, got %d", len(errs))
	}
}

func TestRing_ClearThenPush(t *testing.T) {
	r := newRing[error](3)

	r.push(errors.New("error1"))
	r.push(errors.New("error2"))
	r.clear()

	if errs := r.all(); errs != nil {
		t.Errorf("expected nil after clear, got %v", errs)
	}

	r.push(errors.New("new error"))

	errs := r.all()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error after clear+push, got %d", len(errs))
	}
	if errs[0].Error() != "new error" {
		t.Error("expected new error")
	}
}

func TestRing_SizeOne(t *testing.T) {
	r := newRing[error](1)

	r.push(errors.New("error1"))
	errs := r.all()
	if len(errs) != 1 || errs[0].Error() != "error1" {
		t.Error("expected error1")
	}

	r.push(errors.New("error2"))
	errs = r.all()
	if len(errs) != 1 || errs[0].Error() != "error2" {
		t.Error("expected error2 to replace error1")
	}
}
