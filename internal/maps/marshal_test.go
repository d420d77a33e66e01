// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package maps

import (
	"reflect"
	"testing"
)

func TestCheckPodAccepts(t *testing.T) {
	type flowKey struct {
		SrcIP   uint32
		DstIP   uint32
		SrcPort uint16
		DstPort uint16
	}
	type nested struct {
		Addr  [4]byte
		Stats [2]flowKey
	}

	for _, v := range []any{
		uint32(0),
		int64(0),
		float64(0),
		[4]byte{},
		[16]uint32{},
		flowKey{},
		nested{},
	} {
		if err := checkPod(reflect.TypeOf(v)); err != nil {
			t.Errorf("checkPod(%T) = %v, want nil", v, err)
		}
	}
}

func TestCheckPodRejects(t *testing.T) {
	type padded struct {
		A uint8
		B uint32
	}
	type withPointer struct {
		P *uint32
	}

	for _, v := range []any{
		"",
		true,
		[]byte{},
		map[uint32]uint32{},
		new(uint32),
		padded{},
		withPointer{},
		[2]bool{},
		make(chan int),
		uintptr(0),
		complex64(0),
	} {
		if err := checkPod(reflect.TypeOf(v)); err == nil {
			t.Errorf("checkPod(%T) = nil, want error", v)
		}
	}
}

func TestCheckPodNilType(t *testing.T) {
	if err := checkPod(nil); err == nil {
		t.Error("checkPod(nil) = nil, want error")
	}
}

func TestPodRoundTrip(t *testing.T) {
	type pair struct {
		A uint32
		B uint32
	}

	in := pair{A: 0xdeadbeef, B: 7}
	b := podIn(&in)
	if len(b) != 8 {
		t.Fatalf("podIn length = %d, want 8", len(b))
	}

	var out pair
	copy(podOut(&out), b)
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	// podIn aliases the value, it does not copy it.
	in.B = 8
	var again pair
	copy(podOut(&again), b)
	if again.B != 8 {
		t.Errorf("aliased read = %d, want 8", again.B)
	}
}

func TestSizeOf(t *testing.T) {
	if got := sizeOf[uint32](); got != 4 {
		t.Errorf("sizeOf[uint32] = %d, want 4", got)
	}
	if got := sizeOf[[6]byte](); got != 6 {
		t.Errorf("sizeOf[[6]byte] = %d, want 6", got)
	}
}
