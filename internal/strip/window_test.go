package strip

import (
	"reflect"
	"testing"
)

func makeImages(n int) []Image {
	var r Registry
	for i := 0; i < n; i++ {
		r.Append(FileResource("img"), 100, 80)
	}
	return r.Images()
}

func TestComputeWindow_Scenarios(t *testing.T) {
	images := makeImages(4)

	tests := []struct {
		name        string
		cursor      int
		capacity    int
		maxAllowed  int
		wantWindow  []int
		wantVisible []int
	}{
		{"capacity two", 0, 2, Unlimited, []int{3, 0, 1, 2}, []int{0, 1}},
		{"capacity exceeds registry", 0, 10, Unlimited, []int{3, 0, 1, 2, 3, 0}, []int{0, 1, 2, 3}},
		{"capacity zero", 0, 0, Unlimited, []int{3, 0}, nil},
		{"max allowed caps", 1, 4, 1, []int{0, 1, 2}, []int{1}},
		{"max allowed zero", 2, 4, 0, []int{1, 2}, nil},
		{"negative cursor wraps", -1, 2, Unlimited, []int{2, 3, 0, 1}, []int{3, 0}},
		{"large cursor wraps", 9, 2, Unlimited, []int{0, 1, 2, 3}, []int{1, 2}},
		{"negative capacity", 0, -3, Unlimited, []int{3, 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := ComputeWindow(images, tt.cursor, tt.capacity, tt.maxAllowed)
			if got := Indices(window); !reflect.DeepEqual(got, tt.wantWindow) {
				t.Fatalf("window = %v, want %v", got, tt.wantWindow)
			}
			if got := Indices(VisibleSet(window)); !reflect.DeepEqual(got, tt.wantVisible) {
				t.Fatalf("visible = %v, want %v", got, tt.wantVisible)
			}
		})
	}
}

func TestComputeWindow_EmptyRegistry(t *testing.T) {
	if got := ComputeWindow(nil, 3, 5, Unlimited); got != nil {
		t.Fatalf("ComputeWindow(empty) = %v, want nil", got)
	}
}

func TestComputeWindow_LengthForAllCursors(t *testing.T) {
	for n := 1; n <= 6; n++ {
		images := makeImages(n)
		for capacity := 0; capacity <= 8; capacity++ {
			for _, maxAllowed := range []int{Unlimited, 0, 1, 3, 10} {
				want := min(capacity, n) + 2
				if maxAllowed >= 0 {
					want = min(capacity, n, maxAllowed) + 2
				}
				for cursor := -2 * n; cursor <= 2*n; cursor++ {
					window := ComputeWindow(images, cursor, capacity, maxAllowed)
					if len(window) != want {
						t.Fatalf("n=%d capacity=%d max=%d cursor=%d: len = %d, want %d", n, capacity, maxAllowed, cursor, len(window), want)
					}
					visible := VisibleSet(window)
					if len(visible) != len(window)-2 {
						t.Fatalf("visible len = %d, want %d", len(visible), len(window)-2)
					}
					if len(visible) > 0 && (&visible[0] == &window[0] || &visible[len(visible)-1] == &window[len(window)-1]) {
						t.Fatalf("visible set includes a buffer entry")
					}
				}
			}
		}
	}
}

func TestComputeWindow_StartsOneBeforeCursor(t *testing.T) {
	images := makeImages(5)
	for cursor := 0; cursor < 5; cursor++ {
		window := ComputeWindow(images, cursor, 3, Unlimited)
		if got, want := window[0].Index, (cursor+4)%5; got != want {
			t.Fatalf("cursor %d: first index = %d, want %d", cursor, got, want)
		}
		if got := VisibleSet(window)[0].Index; got != cursor {
			t.Fatalf("cursor %d: first visible = %d, want %d", cursor, got, cursor)
		}
	}
}
