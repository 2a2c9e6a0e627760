package document

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"

	mErrors "blit-migrate/internal/errors"
	"blit-migrate/internal/model"
)

// ReadV2 reads a version-2 sequence tree back into the typed model.
// Count attributes must agree with the number of children, and every staged
// cel and timed frame must name an existing definition.
func ReadV2(root *etree.Element) (*model.V2Animation, error) {
	if root == nil || root.Tag != "animation" {
		return nil, mErrors.NewMalformedDocument(SequenceFile, "root element must be <animation>")
	}
	if err := RequireVersion(root, SequenceFile, 2); err != nil {
		return nil, err
	}

	path := "animation"
	anim := &model.V2Animation{}
	var err error

	if anim.Name, err = requiredText(root, path, "name"); err != nil {
		return nil, err
	}
	if anim.Created, err = int64Text(root, path, "created"); err != nil {
		return nil, err
	}
	if anim.Updated, err = int64Text(root, path, "updated"); err != nil {
		return nil, err
	}
	if anim.Width, err = intText(root, path, "width"); err != nil {
		return nil, err
	}
	if anim.Height, err = intText(root, path, "height"); err != nil {
		return nil, err
	}

	celsNode, err := requiredChild(root, path, "cels")
	if err != nil {
		return nil, err
	}
	if anim.Cels, err = readCels(celsNode, path+"/cels"); err != nil {
		return nil, err
	}

	framesNode, err := requiredChild(root, path, "frames")
	if err != nil {
		return nil, err
	}
	if anim.Frames, err = readFrames(framesNode, path+"/frames", anim); err != nil {
		return nil, err
	}

	xsNode, err := requiredChild(root, path, "xsheet")
	if err != nil {
		return nil, err
	}
	if anim.XSheet, err = readXSheet(xsNode, path+"/xsheet", anim); err != nil {
		return nil, err
	}
	return anim, nil
}

// checkCount compares the count attribute of node with the children it holds.
func checkCount(node *etree.Element, path string, actual int) error {
	count, err := intAttr(node, path, "count")
	if err != nil {
		return err
	}
	if count != actual {
		return mErrors.NewMalformedDocument(path, fmt.Sprintf("count is %d but %d children are present", count, actual))
	}
	return nil
}

func readCels(node *etree.Element, path string) ([]model.V2Cel, error) {
	children := node.SelectElements("cel")
	if err := checkCount(node, path, len(children)); err != nil {
		return nil, err
	}

	cels := make([]model.V2Cel, 0, len(children))
	for i, el := range children {
		celPath := childPath(path, "cel", i)
		var cel model.V2Cel

		typ, err := requiredAttr(el, celPath, "type")
		if err != nil {
			return nil, err
		}
		cel.Type = model.CelType(typ)
		if cel.Name, err = requiredAttr(el, celPath, "name"); err != nil {
			return nil, err
		}
		if err := celName(cel.Name, celPath, "name"); err != nil {
			return nil, err
		}
		if cel.W, err = intAttr(el, celPath, "width"); err != nil {
			return nil, err
		}
		if cel.H, err = intAttr(el, celPath, "height"); err != nil {
			return nil, err
		}
		cels = append(cels, cel)
	}
	return cels, nil
}

func readFrames(node *etree.Element, path string, anim *model.V2Animation) ([]model.V2Frame, error) {
	children := node.SelectElements("frame")
	if err := checkCount(node, path, len(children)); err != nil {
		return nil, err
	}

	frames := make([]model.V2Frame, 0, len(children))
	for i, el := range children {
		framePath := childPath(path, "frame", i)
		name, err := requiredAttr(el, framePath, "name")
		if err != nil {
			return nil, err
		}

		stagedNodes := el.SelectElements("staged_cel")
		refs := make([]model.V2CelRef, 0, len(stagedNodes))
		for j, s := range stagedNodes {
			ref, err := readCelRef(s, childPath(framePath, "staged_cel", j), anim)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		// Stacking follows z_order, not document order.
		sort.SliceStable(refs, func(a, b int) bool { return refs[a].ZOrder < refs[b].ZOrder })

		frames = append(frames, model.V2Frame{Name: name, StagedCels: refs})
	}
	return frames, nil
}

func readCelRef(node *etree.Element, path string, anim *model.V2Animation) (model.V2CelRef, error) {
	var ref model.V2CelRef
	var err error

	if ref.Cel, err = requiredAttr(node, path, "cel"); err != nil {
		return ref, err
	}
	if _, ok := anim.FindCel(ref.Cel); !ok {
		return ref, mErrors.NewMalformedDocument(path, fmt.Sprintf("unknown cel %q", ref.Cel))
	}
	if ref.X, err = intAttr(node, path, "x"); err != nil {
		return ref, err
	}
	if ref.Y, err = intAttr(node, path, "y"); err != nil {
		return ref, err
	}
	if ref.ZOrder, err = intAttr(node, path, "z_order"); err != nil {
		return ref, err
	}
	return ref, nil
}

func readXSheet(node *etree.Element, path string, anim *model.V2Animation) (model.V2XSheet, error) {
	var xs model.V2XSheet
	var err error

	if xs.FPS, err = intAttr(node, path, "fps"); err != nil {
		return xs, err
	}
	if xs.SeqLength, err = intAttr(node, path, "seq_length"); err != nil {
		return xs, err
	}

	type numberedPlane struct {
		number int
		plane  model.Plane
	}
	planeNodes := node.SelectElements("plane")
	numbered := make([]numberedPlane, 0, len(planeNodes))
	for i, el := range planeNodes {
		planePath := childPath(path, "plane", i)
		number, err := intAttr(el, planePath, "number")
		if err != nil {
			return xs, err
		}

		timed := el.SelectElements("timed_frame")
		if err := checkCount(el, planePath, len(timed)); err != nil {
			return xs, err
		}
		plane := make(model.Plane, 0, len(timed))
		for j, t := range timed {
			ref, err := readFrameRef(t, childPath(planePath, "timed_frame", j), anim)
			if err != nil {
				return xs, err
			}
			plane = append(plane, ref)
		}
		numbered = append(numbered, numberedPlane{number: number, plane: plane})
	}
	sort.SliceStable(numbered, func(a, b int) bool { return numbered[a].number < numbered[b].number })

	xs.Planes = make([]model.Plane, 0, len(numbered))
	for _, np := range numbered {
		xs.Planes = append(xs.Planes, np.plane)
	}
	return xs, nil
}

func readFrameRef(node *etree.Element, path string, anim *model.V2Animation) (model.V2FrameRef, error) {
	var ref model.V2FrameRef
	var err error

	if ref.Frame, err = requiredAttr(node, path, "frame"); err != nil {
		return ref, err
	}
	if _, ok := anim.FindFrame(ref.Frame); !ok {
		return ref, mErrors.NewMalformedDocument(path, fmt.Sprintf("unknown frame %q", ref.Frame))
	}
	if ref.Num, err = intAttr(node, path, "number"); err != nil {
		return ref, err
	}
	if ref.Hold, err = intAttr(node, path, "hold"); err != nil {
		return ref, err
	}
	return ref, nil
}
