package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Cel is a cel placement in a version-1 fixture frame.
type Cel struct {
	UUID       string
	X, Y, W, H int
}

// Frame is a version-1 fixture frame.
type Frame struct {
	Name string
	Num  int
	Hold int
	Cels []Cel
}

// Project describes a version-1 project directory to write to disk.
type Project struct {
	Name          string
	Width, Height int
	FPS           int
	SeqLength     int
	Frames        []Frame
	// Version overrides the sequence version attribute. Defaults to "1".
	Version string
	// SkipAssets lists cel UUIDs whose image is not written.
	SkipAssets []string
}

// TwoCelProject is a one-frame project whose frame stages cels "a" and "b".
func TwoCelProject() Project {
	return Project{
		Name:      "bounce",
		Width:     64,
		Height:    48,
		FPS:       24,
		SeqLength: 4,
		Frames: []Frame{
			{Name: "f1", Num: 1, Hold: 4, Cels: []Cel{
				{UUID: "a", X: 0, Y: 0, W: 10, H: 10},
				{UUID: "b", X: 5, Y: 5, W: 10, H: 10},
			}},
		},
	}
}

// PaletteV1 is the palette document written by WriteProject.
const PaletteV1 = `<?xml version="1.0"?>
<palette version="1">
  <color value="FF000000"/>
  <color value="FFFFFFFF"/>
</palette>
`

// SequenceXML renders p as a version-1 sequence document.
func (p Project) SequenceXML() string {
	version := p.Version
	if version == "" {
		version = "1"
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(&b, "<animation version=%q>\n", version)
	fmt.Fprintf(&b, "  <name>%s</name>\n", p.Name)
	b.WriteString("  <created>1500000000</created>\n")
	b.WriteString("  <updated>1500000100</updated>\n")
	fmt.Fprintf(&b, "  <width>%d</width>\n", p.Width)
	fmt.Fprintf(&b, "  <height>%d</height>\n", p.Height)
	fmt.Fprintf(&b, "  <xsheet fps=\"%d\" seq_length=\"%d\">\n", p.FPS, p.SeqLength)
	for _, f := range p.Frames {
		fmt.Fprintf(&b, "    <frame number=\"%d\">\n", f.Num)
		fmt.Fprintf(&b, "      <name>%s</name>\n", f.Name)
		fmt.Fprintf(&b, "      <hold>%d</hold>\n", f.Hold)
		for _, c := range f.Cels {
			fmt.Fprintf(&b, "      <cel uuid=%q><x>%d</x><y>%d</y><width>%d</width><height>%d</height></cel>\n",
				c.UUID, c.X, c.Y, c.W, c.H)
		}
		b.WriteString("    </frame>\n")
	}
	b.WriteString("  </xsheet>\n")
	b.WriteString("</animation>\n")
	return b.String()
}

// CelUUIDs returns the distinct cel UUIDs of p in order of first use.
func (p Project) CelUUIDs() []string {
	seen := make(map[string]bool)
	var uuids []string
	for _, f := range p.Frames {
		for _, c := range f.Cels {
			if !seen[c.UUID] {
				seen[c.UUID] = true
				uuids = append(uuids, c.UUID)
			}
		}
	}
	return uuids
}

// AssetData returns the image bytes WriteProject stores for uuid.
func AssetData(uuid string) []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), []byte("cel:"+uuid)...)
}

// WriteProject writes p into dir (created if needed): sequence.xml,
// palette.xml, and one PNG per cel UUID. It returns dir.
func WriteProject(t *testing.T, dir string, p Project) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating project dir: %v", err)
	}
	WriteFile(t, filepath.Join(dir, "sequence.xml"), p.SequenceXML())
	WriteFile(t, filepath.Join(dir, "palette.xml"), PaletteV1)

	skip := make(map[string]bool, len(p.SkipAssets))
	for _, uuid := range p.SkipAssets {
		skip[uuid] = true
	}
	for _, uuid := range p.CelUUIDs() {
		if skip[uuid] {
			continue
		}
		WriteFile(t, filepath.Join(dir, uuid+".png"), string(AssetData(uuid)))
	}
	return dir
}

// WriteFile writes content to path or fails the test.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// DirEntries lists the names in dir, or nil if dir does not exist.
func DirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
