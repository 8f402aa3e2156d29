package strata

import (
	"context"
	"testing"
)

func TestSlot_StartsEmpty(t *testing.T) {
	s := NewSlot[int]()

	if _, ok := s.Current(); ok {
		t.Error("expected no current value")
	}
	if _, ok := s.Next(); ok {
		t.Error("expected no pending value")
	}
}

func TestSlot_CommitMovesNext(t *testing.T) {
	s := NewSlot[int]()
	s.SetNext(7)

	s.Commit()

	v, ok := s.Current()
	if !ok || v != 7 {
		t.Errorf("expected current 7, got %v (ok=%v)", v, ok)
	}

	// Pending stays equal to committed so change detection is quiet.
	v, ok = s.Next()
	if !ok || v != 7 {
		t.Errorf("expected next 7, got %v (ok=%v)", v, ok)
	}
}

func TestSlot_ClearNextDisablesOnCommit(t *testing.T) {
	s := NewSlot[int]()
	s.SetNext(7)
	s.Commit()

	s.ClearNext()
	s.Commit()

	if _, ok := s.Current(); ok {
		t.Error("expected disabled after clearing and committing")
	}
}

func TestStack_NextIsTop(t *testing.T) {
	s := NewStack("L1", "L2")

	v, ok := s.Next()
	if !ok || v != "L2" {
		t.Errorf("expected next L2, got %v (ok=%v)", v, ok)
	}
	if s.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", s.Depth())
	}
}

func TestStack_PopUncoversPrevious(t *testing.T) {
	s := NewStack("L1", "L2")
	s.Commit()

	if !s.Pop() {
		t.Fatal("expected pop to succeed")
	}

	v, ok := s.Next()
	if !ok || v != "L1" {
		t.Errorf("expected next L1 after pop, got %v (ok=%v)", v, ok)
	}

	s.Commit()
	v, ok = s.Current()
	if !ok || v != "L1" {
		t.Errorf("expected current L1 after commit, got %v (ok=%v)", v, ok)
	}
}

func TestStack_PopEmpty(t *testing.T) {
	s := NewStack[string]()

	if s.Pop() {
		t.Error("expected pop on empty stack to fail")
	}
}

func TestStack_PopLastDisables(t *testing.T) {
	s := NewStack("only")
	s.Commit()

	s.Pop()
	if _, ok := s.Next(); ok {
		t.Error("expected no pending value after popping last")
	}

	s.Commit()
	if _, ok := s.Current(); ok {
		t.Error("expected disabled after committing empty stack")
	}
}

func TestStack_SetNextReplacesTop(t *testing.T) {
	s := NewStack("L1", "L2")

	s.SetNext("L2b")

	if s.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", s.Depth())
	}
	v, _ := s.Next()
	if v != "L2b" {
		t.Errorf("expected next L2b, got %v", v)
	}
}

func TestStack_ClearNextEmptiesStack(t *testing.T) {
	s := NewStack("L1", "L2")

	s.ClearNext()

	if s.Depth() != 0 {
		t.Errorf("expected empty stack, got depth %d", s.Depth())
	}
	if _, ok := s.Next(); ok {
		t.Error("expected no pending value")
	}
}

// swapStorage is a custom two-slot backend: the pending value can be
// swapped with a standby value without going through the engine.
type swapStorage[S any] struct {
	current    S
	hasCurrent bool
	slots      [2]S
	present    [2]bool
}

func (s *swapStorage[S]) Current() (S, bool) { return s.current, s.hasCurrent }
func (s *swapStorage[S]) Next() (S, bool)    { return s.slots[0], s.present[0] }
func (s *swapStorage[S]) SetNext(v S)        { s.slots[0], s.present[0] = v, true }
func (s *swapStorage[S]) ClearNext() {
	var zero S
	s.slots[0], s.present[0] = zero, false
}
func (s *swapStorage[S]) Commit() {
	s.current, s.hasCurrent = s.slots[0], s.present[0]
}
func (s *swapStorage[S]) swap() {
	s.slots[0], s.slots[1] = s.slots[1], s.slots[0]
	s.present[0], s.present[1] = s.present[1], s.present[0]
}

func TestCustomStorage_SwapBackend(t *testing.T) {
	st := &swapStorage[string]{}
	st.SetNext("x")
	st.slots[1], st.present[1] = "y", true

	e := NewEngine()
	side, err := Add[string](e, "side")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	side.Storage(st)

	if err := e.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ctx := context.Background()
	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if v, _ := side.Current(); v != "x" {
		t.Errorf("expected current x, got %v", v)
	}

	st.swap()
	if err := e.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if v, _ := side.Current(); v != "y" {
		t.Errorf("expected current y after swap, got %v", v)
	}
}
