package types

import "testing"

func TestNewHandleTableValidatesSizes(t *testing.T) {
	cases := []struct {
		name  string
		sizes map[string]uint32
		ok    bool
	}{
		{"default", DefaultHandles, true},
		{"multiple of four", map[string]uint32{"Sampler": 8, "Tex": 16}, true},
		{"not multiple", map[string]uint32{"Odd": 6}, false},
		{"zero", map[string]uint32{"Zero": 0}, false},
		{"shadows builtin", map[string]uint32{"float2": 8}, false},
		{"empty name", map[string]uint32{"": 4}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewHandleTable(tc.sizes)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestHandleTableMergeOverrides(t *testing.T) {
	base := MustHandleTable(DefaultHandles)
	merged, err := base.Merge(map[string]uint32{"PalDescriptorHandle": 8, "Sampler": 4})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if size, _ := merged.Lookup("PalDescriptorHandle"); size != 8 {
		t.Fatalf("override not applied, got %d", size)
	}
	names := merged.Names()
	if len(names) != 2 || names[0] != "PalDescriptorHandle" || names[1] != "Sampler" {
		t.Fatalf("unexpected names %v", names)
	}
	if size, _ := base.Lookup("PalDescriptorHandle"); size != 4 {
		t.Fatalf("base table mutated")
	}
}

func TestPaddingUnits(t *testing.T) {
	cases := []struct {
		size, unit, count uint32
	}{
		{4, 4, 1},
		{12, 4, 3},
		{2, 2, 1},
		{6, 2, 3},
		{14, 2, 7},
	}
	for _, tc := range cases {
		p := Padding{Size: tc.size}
		if p.Unit() != tc.unit || p.Count() != tc.count {
			t.Fatalf("size %d: unit %d count %d, want %d/%d", tc.size, p.Unit(), p.Count(), tc.unit, tc.count)
		}
	}
}
