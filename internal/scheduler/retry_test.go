package scheduler

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestRegister_PopExpired(t *testing.T) {
	r := NewRegister()
	r.Schedule("carol", epoch.Add(2*time.Second))
	r.Schedule("bob", epoch.Add(time.Second))
	r.Schedule("alice", epoch.Add(time.Second))
	r.Schedule("dave", epoch.Add(5*time.Second))

	if got := r.PopExpired(epoch.Add(500 * time.Millisecond)); got != nil {
		t.Errorf("PopExpired() early = %v, want nil", got)
	}

	got := r.PopExpired(epoch.Add(2 * time.Second))
	want := []string{"alice", "bob", "carol"}
	if !slices.Equal(got, want) {
		t.Errorf("PopExpired() = %v, want %v", got, want)
	}

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	if got := r.PopExpired(epoch.Add(time.Hour)); !slices.Equal(got, []string{"dave"}) {
		t.Errorf("PopExpired() after pop = %v, want [dave]", got)
	}
}

func TestRegister_ScheduleReplaces(t *testing.T) {
	r := NewRegister()
	r.Schedule("alice", epoch)
	r.Schedule("alice", epoch.Add(time.Minute))

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if got := r.PopExpired(epoch.Add(time.Second)); got != nil {
		t.Errorf("PopExpired() = %v, want nil after reschedule", got)
	}
}

func TestRegister_Concurrent(t *testing.T) {
	r := NewRegister()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Schedule(string(rune('a'+i)), epoch)
		}(i)
	}
	wg.Wait()

	if got := len(r.PopExpired(epoch)); got != 8 {
		t.Errorf("PopExpired() returned %d names, want 8", got)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestFailure_FirstErrorWins(t *testing.T) {
	f := newFailure()

	if f.Err() != nil {
		t.Fatalf("Err() = %v before set, want nil", f.Err())
	}
	select {
	case <-f.Done():
		t.Fatal("Done() closed before set")
	default:
	}

	first := errors.New("first")
	f.set(first)
	f.set(errors.New("second"))

	if f.Err() != first {
		t.Errorf("Err() = %v, want %v", f.Err(), first)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done() not closed after set")
	}
}
