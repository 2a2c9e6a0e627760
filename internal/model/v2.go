package model

// CelType identifies the encoding of a cel's backing image.
type CelType string

const CelTypePNG CelType = "PNG"

// V2Animation is the root of a version-2 sequence document.
// Cels and Frames are definitions; the xsheet and frames refer to them by name.
type V2Animation struct {
	Name    string
	Created int64
	Updated int64
	Width   int
	Height  int
	Cels    []V2Cel
	Frames  []V2Frame
	XSheet  V2XSheet
}

// V2Cel is a cel definition: an image asset that staged cels point at.
type V2Cel struct {
	Type CelType
	Name string
	W    int
	H    int
}

// V2CelRef places a cel definition inside a frame.
// ZOrder is 1-based; 1 is the bottom of the stack.
type V2CelRef struct {
	Cel    string
	X      int
	Y      int
	ZOrder int
}

// V2Frame is a reusable frame definition.
type V2Frame struct {
	Name       string
	StagedCels []V2CelRef
}

// V2FrameRef places a frame definition on a plane of the xsheet.
type V2FrameRef struct {
	Num   int
	Hold  int
	Frame string
}

// Plane is one parallel timing track of an xsheet.
type Plane []V2FrameRef

// V2XSheet holds one or more planes. Planes are numbered from 1 when serialized.
type V2XSheet struct {
	FPS       int
	SeqLength int
	Planes    []Plane
}

// CelNames returns the distinct cel definition names in first-seen order.
// The same name may back several definitions; its image only needs copying once.
func (a *V2Animation) CelNames() []string {
	seen := make(map[string]bool, len(a.Cels))
	names := make([]string, 0, len(a.Cels))
	for _, c := range a.Cels {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		names = append(names, c.Name)
	}
	return names
}

// FindCel returns the first cel definition with the given name.
func (a *V2Animation) FindCel(name string) (*V2Cel, bool) {
	for i := range a.Cels {
		if a.Cels[i].Name == name {
			return &a.Cels[i], true
		}
	}
	return nil, false
}

// FindFrame returns the first frame definition with the given name.
func (a *V2Animation) FindFrame(name string) (*V2Frame, bool) {
	for i := range a.Frames {
		if a.Frames[i].Name == name {
			return &a.Frames[i], true
		}
	}
	return nil, false
}
