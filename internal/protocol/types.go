package protocol

// Alignment values carried by Directives.Alignment.
const (
	AlignHorizontal = 0
	AlignVertical   = 1
)

// Direction values carried by Directives.Direction.
const (
	DirectionLeading  = -1 // items slide toward the leading edge (later images appear)
	DirectionNone     = 0
	DirectionTrailing = 1 // items slide toward the trailing edge (earlier images appear)
)

// Cursor values accepted in Signals.Cursor.
const (
	CursorLeft  = "left"
	CursorRight = "right"
)

// NoSelection is reported in Directives.SelectedImage when nothing is selected.
const NoSelection = -1

// Directives is the attribute bag emitted by the server after every cycle.
type Directives struct {
	Alignment     int            `json:"alignment"`
	Animated      bool           `json:"animated"`
	BoxWidth      int            `json:"boxWidth"`
	BoxHeight     int            `json:"boxHeight"`
	Selectable    bool           `json:"selectable"`
	RemoveAll     bool           `json:"removeAll"`
	Direction     int            `json:"direction"`
	SelectedImage int            `json:"selectedImage"`
	Images        []ImagePayload `json:"images,omitempty"`
	Window        []int          `json:"window,omitempty"`
}

// HasWindow reports whether the directives carry a recomputed window.
func (d Directives) HasWindow() bool {
	return len(d.Window) > 0
}

// ImagePayload describes one image crossing the boundary for the first time.
type ImagePayload struct {
	Resource string `json:"resource"`
	Index    int    `json:"index"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Signals carries the inbound client events of one cycle. Absent fields were
// not signalled.
type Signals struct {
	NumOfImages  *int   `json:"numOfImages,omitempty"`
	Cursor       string `json:"cursor,omitempty"`
	ClickedImage *int   `json:"clickedImage,omitempty"`
	Resync       bool   `json:"resync,omitempty"`
}

// Empty reports whether no signal is present, which makes the cycle a plain refresh.
func (s Signals) Empty() bool {
	return s.NumOfImages == nil && s.Cursor == "" && s.ClickedImage == nil && !s.Resync
}

// CapacitySignal builds a capacity report.
func CapacitySignal(n int) Signals {
	return Signals{NumOfImages: &n}
}

// ScrollSignal builds a scroll request.
func ScrollSignal(cursor string) Signals {
	return Signals{Cursor: cursor}
}

// ResyncSignal asks the strip to resend every window image, for a client that
// lost a reply and no longer holds what the strip believes it sent.
func ResyncSignal() Signals {
	return Signals{Resync: true}
}

// ClickSignal builds a selection report.
func ClickSignal(index int) Signals {
	return Signals{ClickedImage: &index}
}

// Session mirrors the payload returned when a strip session is created.
type Session struct {
	ID         string     `json:"id"`
	Directives Directives `json:"directives"`
}

// Status summarizes a session for monitoring.
type Status struct {
	ID            string `json:"id"`
	Images        int    `json:"images"`
	Cursor        int    `json:"cursor"`
	Capacity      int    `json:"capacity"`
	MaxAllowed    int    `json:"maxAllowed"`
	SelectedImage int    `json:"selectedImage"`
	Visible       []int  `json:"visible"`
	Animated      bool   `json:"animated"`
	Selectable    bool   `json:"selectable"`
}

// RegisterRequest mirrors the body of POST /api/strips/{id}/images.
type RegisterRequest struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

// RegisterResponse describes a freshly registered image.
type RegisterResponse struct {
	Index  int `json:"index"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ErrorResponse is written by the server for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
