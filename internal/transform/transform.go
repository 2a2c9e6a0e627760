// Package transform maps the version-1 document model onto the version-2 model.
//
// Version 1 embeds cels inside frames by position. Version 2 splits them into
// cel definitions plus staged references, and frames into definitions plus
// timed references on an xsheet plane. The mapping is pure: it performs no I/O
// and cannot fail on a model produced by the document builder.
package transform

import "blit-migrate/internal/model"

// ToV2 converts a version-1 animation into its version-2 shape.
//
// Cel definitions are emitted frame-major, cel-minor, one per occurrence; a
// uuid used by two frames yields two definitions with the same name. The
// resulting xsheet always has exactly one plane.
func ToV2(src *model.V1Animation) *model.V2Animation {
	dst := &model.V2Animation{
		Name:    src.Name,
		Created: src.Created,
		Updated: src.Updated,
		Width:   src.Width,
		Height:  src.Height,
		Cels:    make([]model.V2Cel, 0, src.CelCount()),
		Frames:  make([]model.V2Frame, 0, len(src.XSheet.Frames)),
	}

	plane := make(model.Plane, 0, len(src.XSheet.Frames))
	for _, f := range src.XSheet.Frames {
		for _, c := range f.Cels {
			dst.Cels = append(dst.Cels, celDefinition(c))
		}
		dst.Frames = append(dst.Frames, frameDefinition(f))
		plane = append(plane, frameRef(f))
	}

	dst.XSheet = model.V2XSheet{
		FPS:       src.XSheet.FPS,
		SeqLength: src.XSheet.SeqLength,
		Planes:    []model.Plane{plane},
	}
	return dst
}

func celDefinition(c model.V1Cel) model.V2Cel {
	return model.V2Cel{
		Type: model.CelTypePNG,
		Name: c.UUID,
		W:    c.W,
		H:    c.H,
	}
}

// celRef stages c at the given frame-local, 1-based stacking position.
func celRef(c model.V1Cel, zOrder int) model.V2CelRef {
	return model.V2CelRef{
		Cel:    c.UUID,
		X:      c.X,
		Y:      c.Y,
		ZOrder: zOrder,
	}
}

func frameDefinition(f model.V1Frame) model.V2Frame {
	refs := make([]model.V2CelRef, len(f.Cels))
	for i, c := range f.Cels {
		refs[i] = celRef(c, i+1)
	}
	return model.V2Frame{
		Name:       f.Name,
		StagedCels: refs,
	}
}

func frameRef(f model.V1Frame) model.V2FrameRef {
	return model.V2FrameRef{
		Num:   f.Num,
		Hold:  f.Hold,
		Frame: f.Name,
	}
}
