package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mErrors "blit-migrate/internal/errors"
	"blit-migrate/internal/model"
	"blit-migrate/internal/transform"
)

func readFromString(t *testing.T, data string) (*model.V2Animation, error) {
	t.Helper()
	doc, err := Parse([]byte(data), SequenceFile)
	require.NoError(t, err)
	return ReadV2(doc.Root())
}

func TestReadV2_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  *model.V1Animation
	}{
		{
			name: "two cel frame",
			src: &model.V1Animation{
				Name: "bounce", Created: 1500000000, Updated: 1500000100, Width: 64, Height: 48,
				XSheet: model.V1XSheet{FPS: 24, SeqLength: 4, Frames: []model.V1Frame{
					{Name: "f1", Num: 1, Hold: 4, Cels: []model.V1Cel{
						{UUID: "a", W: 10, H: 10},
						{UUID: "b", X: 5, Y: 5, W: 10, H: 10},
					}},
				}},
			},
		},
		{
			name: "no frames",
			src:  &model.V1Animation{Name: "empty", XSheet: model.V1XSheet{FPS: 12}},
		},
		{
			name: "shared cel across frames",
			src: &model.V1Animation{
				Name: "walk", Width: 320, Height: 240,
				XSheet: model.V1XSheet{FPS: 12, SeqLength: 6, Frames: []model.V1Frame{
					{Name: "contact", Num: 1, Hold: 2, Cels: []model.V1Cel{{UUID: "bg", W: 320, H: 240}, {UUID: "leg", X: 40, Y: -3, W: 20, H: 60}}},
					{Name: "pass", Num: 3, Hold: 0},
					{Name: "up", Num: 4, Hold: 3, Cels: []model.V1Cel{{UUID: "bg", W: 320, H: 240}}},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := transform.ToV2(tt.src)
			data, err := EncodeV2(want)
			require.NoError(t, err)

			got, err := readFromString(t, string(data))
			require.NoError(t, err)

			assert.Equal(t, want, got)
		})
	}
}

func TestReadV2_SortsStagedCelsByZOrder(t *testing.T) {
	data := `<animation version="2">
	<name>z</name><created>0</created><updated>0</updated><width>1</width><height>1</height>
	<cels count="2"><cel type="PNG" name="a" width="1" height="1"/><cel type="PNG" name="b" width="1" height="1"/></cels>
	<frames count="1">
		<frame name="f">
			<staged_cel cel="b" x="0" y="0" z_order="2"/>
			<staged_cel cel="a" x="0" y="0" z_order="1"/>
		</frame>
	</frames>
	<xsheet fps="12" seq_length="1"><plane number="1" count="1"><timed_frame frame="f" number="1" hold="1"/></plane></xsheet>
</animation>`

	got, err := readFromString(t, data)
	require.NoError(t, err)

	refs := got.Frames[0].StagedCels
	require.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].Cel)
	assert.Equal(t, "b", refs[1].Cel)
}

func TestReadV2_OrdersPlanesByNumber(t *testing.T) {
	data := `<animation version="2">
	<name>p</name><created>0</created><updated>0</updated><width>1</width><height>1</height>
	<cels count="0"/>
	<frames count="2"><frame name="fg"/><frame name="bg"/></frames>
	<xsheet fps="12" seq_length="1">
		<plane number="2" count="1"><timed_frame frame="fg" number="1" hold="1"/></plane>
		<plane number="1" count="1"><timed_frame frame="bg" number="1" hold="1"/></plane>
	</xsheet>
</animation>`

	got, err := readFromString(t, data)
	require.NoError(t, err)

	require.Len(t, got.XSheet.Planes, 2)
	assert.Equal(t, "bg", got.XSheet.Planes[0][0].Frame)
	assert.Equal(t, "fg", got.XSheet.Planes[1][0].Frame)
}

func TestReadV2_RejectsVersion1(t *testing.T) {
	_, err := readFromString(t, twoCelSequenceV1)

	require.Error(t, err)
	assert.True(t, mErrors.Is(err, mErrors.ErrUnsupportedVersion), "error = %v", err)
}

func TestReadV2_Malformed(t *testing.T) {
	const head = `<name>x</name><created>0</created><updated>0</updated><width>1</width><height>1</height>`
	const xsheet = `<xsheet fps="1" seq_length="0"/>`

	tests := []struct {
		name string
		data string
	}{
		{
			name: "cel count mismatch",
			data: `<animation version="2">` + head + `<cels count="2"><cel type="PNG" name="a" width="1" height="1"/></cels><frames count="0"/>` + xsheet + `</animation>`,
		},
		{
			name: "missing frames",
			data: `<animation version="2">` + head + `<cels count="0"/>` + xsheet + `</animation>`,
		},
		{
			name: "unknown staged cel",
			data: `<animation version="2">` + head + `<cels count="0"/><frames count="1"><frame name="f"><staged_cel cel="ghost" x="0" y="0" z_order="1"/></frame></frames>` + xsheet + `</animation>`,
		},
		{
			name: "unknown timed frame",
			data: `<animation version="2">` + head + `<cels count="0"/><frames count="0"/><xsheet fps="1" seq_length="1"><plane number="1" count="1"><timed_frame frame="ghost" number="1" hold="1"/></plane></xsheet></animation>`,
		},
		{
			name: "plane count mismatch",
			data: `<animation version="2">` + head + `<cels count="0"/><frames count="1"><frame name="f"/></frames><xsheet fps="1" seq_length="1"><plane number="1" count="3"><timed_frame frame="f" number="1" hold="1"/></plane></xsheet></animation>`,
		},
		{
			name: "cel name outside the project",
			data: `<animation version="2">` + head + `<cels count="1"><cel type="PNG" name="../a" width="1" height="1"/></cels><frames count="0"/>` + xsheet + `</animation>`,
		},
		{
			name: "bad z_order",
			data: `<animation version="2">` + head + `<cels count="1"><cel type="PNG" name="a" width="1" height="1"/></cels><frames count="1"><frame name="f"><staged_cel cel="a" x="0" y="0" z_order="top"/></frame></frames>` + xsheet + `</animation>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readFromString(t, tt.data)

			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, mErrors.Is(err, mErrors.ErrMalformedDocument), "error = %v", err)
		})
	}
}
