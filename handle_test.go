package handletable

import "testing"

func TestHandle_RoundTrip(t *testing.T) {
	cases := []struct {
		index      uint32
		generation uint8
		instance   uint8
	}{
		{0, 1, 0},
		{1, 1, 0},
		{0, 3, 63},
		{12345, 2, 7},
		{IndexMax, 3, InstanceMax},
		{IndexMax, 1, 0},
		{0xABCDE, 2, 33},
	}

	for _, c := range cases {
		h := NewHandle(c.index, c.generation, c.instance)
		if h.Index() != c.index {
			t.Fatalf("index: got %d, want %d (handle %s)", h.Index(), c.index, h)
		}
		if h.Generation() != c.generation {
			t.Fatalf("generation: got %d, want %d (handle %s)", h.Generation(), c.generation, h)
		}
		if h.Instance() != c.instance {
			t.Fatalf("instance: got %d, want %d (handle %s)", h.Instance(), c.instance, h)
		}
	}
}

func TestHandle_Layout(t *testing.T) {
	// Bit-exact expectations: the layout is a compatibility contract.
	cases := []struct {
		index      uint32
		generation uint8
		instance   uint8
		want       Handle
	}{
		{0, 0, 0, 0x00000000},
		{0, 1, 0, 0x40000000},
		{1, 1, 0, 0x40000040},
		{0, 3, 0, 0xC0000000},
		{0, 0, 63, 0x0000003F},
		{IndexMax, 0, 0, 0x3FFFFFC0},
		{IndexMax, 3, 63, 0xFFFFFFFF},
	}

	for _, c := range cases {
		h := NewHandle(c.index, c.generation, c.instance)
		if h != c.want {
			t.Fatalf("NewHandle(%d, %d, %d) = %s, want %s",
				c.index, c.generation, c.instance, h, c.want)
		}
	}
}

func TestHandle_Truncation(t *testing.T) {
	// Out-of-width values truncate to the field width, nothing more.
	h := NewHandle(IndexMax+1, 1, 0)
	if h.Index() != 0 {
		t.Fatalf("index overflow should truncate to 0, got %d", h.Index())
	}

	h = NewHandle(0, GenerationMax+2, 0)
	if h.Generation() != 1 {
		t.Fatalf("generation 5 should truncate to 1, got %d", h.Generation())
	}

	h = NewHandle(0, 1, InstanceMax+1)
	if h.Instance() != 0 {
		t.Fatalf("instance overflow should truncate to 0, got %d", h.Instance())
	}
}

func TestHandle_ZeroReserved(t *testing.T) {
	// Any handle with a live generation is non-zero.
	for gen := uint8(1); gen <= GenerationMax; gen++ {
		if NewHandle(0, gen, 0) == 0 {
			t.Fatalf("handle with generation %d must not be zero", gen)
		}
	}

	var zero Handle
	if zero.Generation() != 0 {
		t.Fatal("zero handle must decode generation 0")
	}
	if zero.Index() != 0 || zero.Instance() != 0 {
		t.Fatal("zero handle must decode all-zero fields")
	}
}

func TestHandle_String(t *testing.T) {
	h := NewHandle(1, 1, 0)
	if h.String() != "0x40000040" {
		t.Fatalf("String: got %s", h.String())
	}
}

func FuzzHandleRoundTrip(f *testing.F) {
	f.Add(uint32(0), uint8(1), uint8(0))
	f.Add(uint32(IndexMax), uint8(3), uint8(InstanceMax))
	f.Add(uint32(1024), uint8(2), uint8(5))

	f.Fuzz(func(t *testing.T, index uint32, generation, instance uint8) {
		h := NewHandle(index, generation, instance)
		if h.Index() != index&IndexMax {
			t.Fatalf("index: got %d, want %d", h.Index(), index&IndexMax)
		}
		if h.Generation() != generation&GenerationMax {
			t.Fatalf("generation: got %d, want %d", h.Generation(), generation&GenerationMax)
		}
		if h.Instance() != instance&InstanceMax {
			t.Fatalf("instance: got %d, want %d", h.Instance(), instance&InstanceMax)
		}
	})
}
