package metrics

import (
	"reflect"
	"testing"
)

func TestBasicProvider_Counter_ReusedAndAccumulates(t *testing.T) {
	p := NewBasicProvider()

	c1 := p.Counter("puts")
	c2 := p.Counter("puts")

	if reflect.ValueOf(c1).Pointer() != reflect.ValueOf(c2).Pointer() {
		t.Fatalf("expected same counter instance for same name")
	}

	bc, ok := c1.(*BasicCounter)
	if !ok {
		t.Fatalf("expected *BasicCounter, got %T", c1)
	}

	c1.Add(3)
	c2.Add(2)
	if got := bc.Snapshot(); got != 5 {
		t.Fatalf("counter value = %d; want 5", got)
	}

	other := p.Counter("takes")
	if reflect.ValueOf(other).Pointer() == reflect.ValueOf(c1).Pointer() {
		t.Fatalf("expected different counter instance for different name")
	}
}

func TestBasicProvider_UpDownCounter_ReusedAndMoves(t *testing.T) {
	p := NewBasicProvider()
	u1 := p.UpDownCounter("backlog")
	u2 := p.UpDownCounter("backlog")

	if reflect.ValueOf(u1).Pointer() != reflect.ValueOf(u2).Pointer() {
		t.Fatalf("expected same updown instance for same name")
	}

	bu, ok := u1.(*BasicUpDownCounter)
	if !ok {
		t.Fatalf("expected *BasicUpDownCounter, got %T", u1)
	}

	u1.Add(3)
	u2.Add(-1)
	u1.Add(10)
	if got := bu.Snapshot(); got != 12 {
		t.Fatalf("updown value = %d; want 12", got)
	}
}

func TestBasicProvider_Histogram_TracksMinMaxMean(t *testing.T) {
	p := NewBasicProvider()
	h := p.Histogram("latency")

	bh, ok := h.(*BasicHistogram)
	if !ok {
		t.Fatalf("expected *BasicHistogram, got %T", h)
	}

	h.Record(1)
	h.Record(5)
	h.Record(3)

	snap := bh.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("count = %d; want 3", snap.Count)
	}
	if snap.Min != 1 {
		t.Fatalf("min = %v; want 1", snap.Min)
	}
	if snap.Max != 5 {
		t.Fatalf("max = %v; want 5", snap.Max)
	}
	if snap.Mean != 3 {
		t.Fatalf("mean = %v; want 3", snap.Mean)
	}
}

func TestNoopProvider_DiscardsEverything(t *testing.T) {
	p := NewNoopProvider()
	p.Counter("x").Add(5)
	p.UpDownCounter("y").Add(-5)
	p.Histogram("z").Record(1.5)
	// No panics, nothing to observe: this is the contract.
}
