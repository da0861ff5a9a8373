package stop

import (
	"sync"
	"testing"
)

func TestFlag(t *testing.T) {
	f := NewFlag()
	if f.IsSet() {
		t.Fatal("new flag should be clear")
	}
	f.Set()
	f.Set()
	if !f.IsSet() {
		t.Fatal("flag should be set")
	}
}

func TestNilFlagIsNeverSet(t *testing.T) {
	var f *Flag
	if f.IsSet() {
		t.Fatal("nil flag reported set")
	}
}

func TestFlagConcurrentSet(t *testing.T) {
	f := NewFlag()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Set()
			_ = f.IsSet()
		}()
	}
	wg.Wait()
	if !f.IsSet() {
		t.Fatal("flag should be set")
	}
}
