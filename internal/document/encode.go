package document

import (
	"strconv"

	"github.com/beevik/etree"

	"blit-migrate/internal/model"
)

const timestampFormat = "unix_timestamp"

// EncodeV2 renders a version-2 sequence document.
// The same model always produces the same bytes.
func EncodeV2(anim *model.V2Animation) ([]byte, error) {
	doc := newDocument()
	root := doc.CreateElement("animation")
	root.CreateAttr("version", "2")

	root.CreateElement("name").SetText(anim.Name)
	created := root.CreateElement("created")
	created.CreateAttr("format", timestampFormat)
	created.SetText(strconv.FormatInt(anim.Created, 10))
	updated := root.CreateElement("updated")
	updated.CreateAttr("format", timestampFormat)
	updated.SetText(strconv.FormatInt(anim.Updated, 10))
	root.CreateElement("width").SetText(strconv.Itoa(anim.Width))
	root.CreateElement("height").SetText(strconv.Itoa(anim.Height))

	writeCels(root, anim.Cels)
	writeFrames(root, anim.Frames)
	writeXSheet(root, anim.XSheet)

	return encode(doc)
}

func writeCels(parent *etree.Element, cels []model.V2Cel) {
	el := parent.CreateElement("cels")
	el.CreateAttr("count", strconv.Itoa(len(cels)))
	for _, c := range cels {
		cel := el.CreateElement("cel")
		cel.CreateAttr("type", string(c.Type))
		cel.CreateAttr("name", c.Name)
		cel.CreateAttr("width", strconv.Itoa(c.W))
		cel.CreateAttr("height", strconv.Itoa(c.H))
	}
}

func writeFrames(parent *etree.Element, frames []model.V2Frame) {
	el := parent.CreateElement("frames")
	el.CreateAttr("count", strconv.Itoa(len(frames)))
	for _, f := range frames {
		frame := el.CreateElement("frame")
		frame.CreateAttr("name", f.Name)
		for _, ref := range f.StagedCels {
			staged := frame.CreateElement("staged_cel")
			staged.CreateAttr("cel", ref.Cel)
			staged.CreateAttr("x", strconv.Itoa(ref.X))
			staged.CreateAttr("y", strconv.Itoa(ref.Y))
			staged.CreateAttr("z_order", strconv.Itoa(ref.ZOrder))
		}
	}
}

func writeXSheet(parent *etree.Element, xs model.V2XSheet) {
	el := parent.CreateElement("xsheet")
	el.CreateAttr("fps", strconv.Itoa(xs.FPS))
	el.CreateAttr("seq_length", strconv.Itoa(xs.SeqLength))
	for i, plane := range xs.Planes {
		p := el.CreateElement("plane")
		p.CreateAttr("number", strconv.Itoa(i+1))
		p.CreateAttr("count", strconv.Itoa(len(plane)))
		for _, ref := range plane {
			tf := p.CreateElement("timed_frame")
			tf.CreateAttr("frame", ref.Frame)
			tf.CreateAttr("number", strconv.Itoa(ref.Num))
			tf.CreateAttr("hold", strconv.Itoa(ref.Hold))
		}
	}
}
