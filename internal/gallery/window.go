package gallery

const (
	// InitialVisible is the window size on regular viewports.
	InitialVisible = 24
	// NarrowInitialVisible is the smaller starting window on narrow viewports.
	NarrowInitialVisible = 12
	// VisibleIncrement is added each time the client nears the bottom.
	VisibleIncrement = 24
	// MaxVisible bounds a client-supplied window.
	MaxVisible = 1000
)

// Window is the number of derived entries exposed to the client. It only
// grows, so repeated Grow calls from redundant scroll events are harmless.
type Window struct {
	Visible int
}

// NewWindow returns the starting window for the viewport.
func NewWindow(narrow bool) Window {
	if narrow {
		return Window{Visible: NarrowInitialVisible}
	}
	return Window{Visible: InitialVisible}
}

// WindowFor restores a window the client already grew to, clamped to sane bounds.
func WindowFor(visible int, narrow bool) Window {
	w := NewWindow(narrow)
	if visible > w.Visible {
		w.Visible = visible
	}
	if w.Visible > MaxVisible {
		w.Visible = MaxVisible
	}
	return w
}

// Grow extends the window by one increment.
func (w *Window) Grow() {
	w.Visible += VisibleIncrement
	if w.Visible > MaxVisible {
		w.Visible = MaxVisible
	}
}

// Slice returns the first Visible entries and whether more remain.
func (w Window) Slice(entries []Entry) ([]Entry, bool) {
	if w.Visible <= 0 {
		return nil, len(entries) > 0
	}
	if len(entries) <= w.Visible {
		return entries, false
	}
	return entries[:w.Visible], true
}
