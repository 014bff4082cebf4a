package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSignals_EncodeOnlyPresentFields(t *testing.T) {
	raw, err := json.Marshal(CapacitySignal(0))
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `{"numOfImages":0}` {
		t.Fatalf("capacity signal = %s, want numOfImages only", raw)
	}

	raw, err = json.Marshal(ScrollSignal(CursorLeft))
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `{"cursor":"left"}` {
		t.Fatalf("scroll signal = %s, want cursor only", raw)
	}
}

func TestSignals_Empty(t *testing.T) {
	if !(Signals{}).Empty() {
		t.Fatalf("zero Signals should be empty")
	}
	if ClickSignal(0).Empty() {
		t.Fatalf("click on index 0 should not be empty")
	}
	if ResyncSignal().Empty() {
		t.Fatalf("resync should not be empty")
	}
}

func TestDirectives_DecodeFromAttributeBag(t *testing.T) {
	payload := `{
		"alignment": 1,
		"animated": true,
		"boxWidth": 120,
		"boxHeight": 90,
		"selectable": true,
		"removeAll": false,
		"direction": -1,
		"selectedImage": -1,
		"images": [{"resource": "/assets/a.png", "index": 2, "width": 100, "height": 80}],
		"window": [1, 2, 3]
	}`
	var d Directives
	if err := json.NewDecoder(strings.NewReader(payload)).Decode(&d); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if d.Alignment != AlignVertical || d.Direction != DirectionLeading || d.SelectedImage != NoSelection {
		t.Fatalf("decoded scalars = %#v", d)
	}
	if len(d.Images) != 1 || d.Images[0].Index != 2 || d.Images[0].Resource != "/assets/a.png" {
		t.Fatalf("decoded images = %#v", d.Images)
	}
	if !d.HasWindow() || d.Window[2] != 3 {
		t.Fatalf("decoded window = %v", d.Window)
	}
}
