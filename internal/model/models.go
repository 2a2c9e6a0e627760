package model

// V1Animation is the root of a version-1 sequence document.
type V1Animation struct {
	Name    string
	Created int64 // Unix timestamp
	Updated int64 // Unix timestamp
	Width   int
	Height  int
	XSheet  V1XSheet
}

// V1XSheet is the version-1 timing track: a flat, ordered list of frames.
type V1XSheet struct {
	FPS       int
	SeqLength int // advisory; not checked against len(Frames)
	Frames    []V1Frame
}

// V1Frame is a one-off composition. Its cels are embedded in document order,
// which is also their stacking order (first = bottom).
type V1Frame struct {
	Name string
	Num  int // sequence index, unique within the xsheet
	Hold int // duration in frame ticks
	Cels []V1Cel
}

// V1Cel is a positioned image inside a frame.
// UUID doubles as the backing image filename: <uuid>.png.
type V1Cel struct {
	UUID string
	X    int
	Y    int
	W    int
	H    int
}

// CelCount returns the total number of cel occurrences across all frames.
func (a *V1Animation) CelCount() int {
	n := 0
	for _, f := range a.XSheet.Frames {
		n += len(f.Cels)
	}
	return n
}
