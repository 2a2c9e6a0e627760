package document

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	mErrors "blit-migrate/internal/errors"
	"blit-migrate/internal/model"
)

// BuildV1 builds a version-1 animation from a sequence tree rooted at <animation>.
//
// Frames and cels are taken in document order; that order is what fixes the
// frame sequence and each frame's cel stacking. The version attribute is not
// checked here (see RequireVersion).
func BuildV1(root *etree.Element) (*model.V1Animation, error) {
	if root == nil {
		return nil, mErrors.NewMalformedDocument(SequenceFile, "no root element")
	}
	if root.Tag != "animation" {
		return nil, mErrors.NewMalformedDocument(root.Tag, "root element must be <animation>")
	}
	return buildAnimation(root, "animation")
}

func buildAnimation(node *etree.Element, path string) (*model.V1Animation, error) {
	anim := &model.V1Animation{}
	var err error

	if anim.Name, err = requiredText(node, path, "name"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(anim.Name) == "" {
		return nil, mErrors.NewMalformedDocument(path, "empty <name>")
	}
	if anim.Created, err = int64Text(node, path, "created"); err != nil {
		return nil, err
	}
	if anim.Updated, err = int64Text(node, path, "updated"); err != nil {
		return nil, err
	}
	if anim.Width, err = intText(node, path, "width"); err != nil {
		return nil, err
	}
	if anim.Height, err = intText(node, path, "height"); err != nil {
		return nil, err
	}

	xsNode, err := requiredChild(node, path, "xsheet")
	if err != nil {
		return nil, err
	}
	if anim.XSheet, err = buildXSheet(xsNode, path+"/xsheet"); err != nil {
		return nil, err
	}
	return anim, nil
}

func buildXSheet(node *etree.Element, path string) (model.V1XSheet, error) {
	var xs model.V1XSheet
	var err error

	if xs.FPS, err = intField(node, path, "fps"); err != nil {
		return xs, err
	}
	if xs.FPS <= 0 {
		return xs, mErrors.NewMalformedDocument(path, fmt.Sprintf("fps must be positive, got %d", xs.FPS))
	}
	if xs.SeqLength, err = intField(node, path, "seq_length"); err != nil {
		return xs, err
	}

	// frame number -> 1-based position of the frame that claimed it
	claimed := make(map[int]int)
	for i, frameNode := range node.SelectElements("frame") {
		framePath := childPath(path, "frame", i)
		frame, err := buildFrame(frameNode, framePath)
		if err != nil {
			return xs, err
		}
		if prev, ok := claimed[frame.Num]; ok {
			return xs, mErrors.NewMalformedDocument(framePath,
				fmt.Sprintf("frame number %d already used by frame[%d]", frame.Num, prev))
		}
		claimed[frame.Num] = i + 1
		xs.Frames = append(xs.Frames, frame)
	}
	return xs, nil
}

func buildFrame(node *etree.Element, path string) (model.V1Frame, error) {
	var frame model.V1Frame
	var err error

	if frame.Name, err = requiredText(node, path, "name"); err != nil {
		return frame, err
	}
	if strings.TrimSpace(frame.Name) == "" {
		return frame, mErrors.NewMalformedDocument(path, "empty <name>")
	}
	if frame.Num, err = intField(node, path, "number"); err != nil {
		return frame, err
	}
	if frame.Hold, err = intField(node, path, "hold"); err != nil {
		return frame, err
	}
	if frame.Hold < 0 {
		return frame, mErrors.NewMalformedDocument(path, fmt.Sprintf("hold must not be negative, got %d", frame.Hold))
	}

	for i, celNode := range node.SelectElements("cel") {
		if err := appendCel(&frame, celNode, childPath(path, "cel", i)); err != nil {
			return frame, err
		}
	}
	return frame, nil
}

// appendCel builds one cel and stacks it on top of frame.
func appendCel(frame *model.V1Frame, node *etree.Element, path string) error {
	var cel model.V1Cel
	var err error

	if cel.UUID, err = requiredAttr(node, path, "uuid"); err != nil {
		return err
	}
	if err := celName(cel.UUID, path, "uuid"); err != nil {
		return err
	}
	if cel.X, err = intText(node, path, "x"); err != nil {
		return err
	}
	if cel.Y, err = intText(node, path, "y"); err != nil {
		return err
	}
	if cel.W, err = intText(node, path, "width"); err != nil {
		return err
	}
	if cel.H, err = intText(node, path, "height"); err != nil {
		return err
	}

	frame.Cels = append(frame.Cels, cel)
	return nil
}
