package pixfmt

import "testing"

func TestLookup(t *testing.T) {
	d, ok := Lookup("yuv420p10")
	if !ok {
		t.Fatal("expected yuv420p10 to be known")
	}
	if d.BitDepth != 10 || d.RGB {
		t.Errorf("unexpected descriptor %+v", d)
	}

	if _, ok := Lookup("nv12-tiled"); ok {
		t.Error("expected unknown format")
	}
}

func TestOutputComponents_PromotesGray(t *testing.T) {
	gray, _ := Lookup("gray")
	if got := OutputComponents(gray); got != 3 {
		t.Errorf("gray: expected 3 components, got %d", got)
	}
	ya, _ := Lookup("ya8")
	if got := OutputComponents(ya); got != 4 {
		t.Errorf("ya8: expected 4 components, got %d", got)
	}
}

func TestChooseLayout(t *testing.T) {
	tests := []struct {
		depth, comps int
		want         Layout
	}{
		{8, 3, RGB8},
		{8, 4, RGBA8},
		{10, 3, RGB16},
		{16, 4, RGBA16},
	}
	for _, tt := range tests {
		if got := ChooseLayout(tt.depth, tt.comps); got != tt.want {
			t.Errorf("ChooseLayout(%d, %d) = %s, want %s", tt.depth, tt.comps, got, tt.want)
		}
	}
}

func TestLayout_Sizes(t *testing.T) {
	if RGBA16.BytesPerPixel() != 8 {
		t.Errorf("expected 8 bytes per RGBA16 pixel, got %d", RGBA16.BytesPerPixel())
	}
	if RGB8.BytesPerPixel() != 3 {
		t.Errorf("expected 3 bytes per RGB8 pixel, got %d", RGB8.BytesPerPixel())
	}
}
