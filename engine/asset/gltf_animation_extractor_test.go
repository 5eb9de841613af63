package asset

import (
	"testing"

	"github.com/cwahlfeldt/ember-go/engine/model"
)

// animFixture wires one animation over per-accessor buffers. Accessor i
// reads datas[i] through its own bufferView.
func animFixture(datas [][]byte, accessors []gltfAccessor, anim gltfAnimation) *accessorDecoder {
	dec := multiDecoder(datas, accessors)
	dec.doc.Nodes = []gltfNode{{Name: "hip"}, {Name: "spine"}}
	dec.doc.Animations = []gltfAnimation{anim}
	return dec
}

func TestExtractAnimationClipLinearTranslation(t *testing.T) {
	node := 0
	dec := animFixture(
		[][]byte{
			floatBytes(0, 0.5, 1),
			floatBytes(0, 0, 0, 1, 0, 0, 2, 0, 0),
		},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 3, Type: "SCALAR"},
			{ComponentType: 5126, Count: 3, Type: "VEC3"},
		},
		gltfAnimation{
			Name: "walk",
			Samplers: []gltfAnimSampler{
				{Input: 0, Output: 1, Interpolation: "LINEAR"},
			},
			Channels: []gltfAnimChannel{
				{Sampler: 0, Target: gltfAnimTarget{Node: &node, Path: "translation"}},
			},
		},
	)

	clip, err := extractAnimationClip(dec, 0, map[int]int32{0: 0})
	if err != nil {
		t.Fatalf("extractAnimationClip failed: %v", err)
	}
	if clip.Name != "walk" {
		t.Fatalf("name = %q", clip.Name)
	}
	if clip.Duration != 1 {
		t.Fatalf("duration = %v, want 1", clip.Duration)
	}
	if len(clip.Channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(clip.Channels))
	}

	ch := clip.Channels[0]
	if ch.BoneIndex != 0 {
		t.Fatalf("bone index = %d", ch.BoneIndex)
	}
	if ch.PositionInterp != model.InterpolationLinear {
		t.Fatalf("interp = %v", ch.PositionInterp)
	}
	if len(ch.PositionKeys) != 3 {
		t.Fatalf("got %d position keys", len(ch.PositionKeys))
	}
	if ch.PositionKeys[2].Time != 1 || ch.PositionKeys[2].Value.X() != 2 {
		t.Fatalf("key 2 = %+v", ch.PositionKeys[2])
	}
}

func TestExtractAnimationClipSkipsUnmappedChannels(t *testing.T) {
	hip, spine := 0, 1
	dec := animFixture(
		[][]byte{
			floatBytes(0, 1),
			floatBytes(0, 0, 0, 1, 1, 1),
		},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 2, Type: "SCALAR"},
			{ComponentType: 5126, Count: 2, Type: "VEC3"},
		},
		gltfAnimation{
			Samplers: []gltfAnimSampler{{Input: 0, Output: 1}},
			Channels: []gltfAnimChannel{
				// Morph weights are not imported.
				{Sampler: 0, Target: gltfAnimTarget{Node: &hip, Path: "weights"}},
				// Node 1 is not a bone of this skin.
				{Sampler: 0, Target: gltfAnimTarget{Node: &spine, Path: "translation"}},
				{Sampler: 0, Target: gltfAnimTarget{Node: &hip, Path: "scale"}},
			},
		},
	)

	clip, err := extractAnimationClip(dec, 0, map[int]int32{0: 0})
	if err != nil {
		t.Fatalf("extractAnimationClip failed: %v", err)
	}
	if len(clip.Channels) != 1 {
		t.Fatalf("got %d channels, want only the scale track", len(clip.Channels))
	}
	if len(clip.Channels[0].ScaleKeys) != 2 {
		t.Fatalf("scale keys = %d", len(clip.Channels[0].ScaleKeys))
	}
	if len(clip.Channels[0].PositionKeys) != 0 {
		t.Fatal("skipped channels should not produce keys")
	}
}

func TestExtractAnimationClipStepRotation(t *testing.T) {
	node := 0
	dec := animFixture(
		[][]byte{
			floatBytes(0, 1),
			// Unnormalized quaternions; import normalizes.
			floatBytes(0, 0, 0, 2, 0, 0, 0, 0.5),
		},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 2, Type: "SCALAR"},
			{ComponentType: 5126, Count: 2, Type: "VEC4"},
		},
		gltfAnimation{
			Samplers: []gltfAnimSampler{{Input: 0, Output: 1, Interpolation: "STEP"}},
			Channels: []gltfAnimChannel{
				{Sampler: 0, Target: gltfAnimTarget{Node: &node, Path: "rotation"}},
			},
		},
	)

	clip, err := extractAnimationClip(dec, 0, map[int]int32{0: 0})
	if err != nil {
		t.Fatalf("extractAnimationClip failed: %v", err)
	}
	ch := clip.Channels[0]
	if ch.RotationInterp != model.InterpolationStep {
		t.Fatalf("interp = %v, want step", ch.RotationInterp)
	}
	for i, k := range ch.RotationKeys {
		if d := k.Value.Len() - 1; d > 1e-5 || d < -1e-5 {
			t.Fatalf("key %d quaternion length = %v, want 1", i, k.Value.Len())
		}
	}
}

func TestExtractAnimationClipCubicSpline(t *testing.T) {
	node := 0
	// Two keyframes, each an (in-tangent, value, out-tangent) triplet; only
	// the middle element of each triplet is the imported value.
	dec := animFixture(
		[][]byte{
			floatBytes(0, 1),
			floatBytes(
				9, 9, 9, 1, 2, 3, 9, 9, 9,
				9, 9, 9, 4, 5, 6, 9, 9, 9,
			),
		},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 2, Type: "SCALAR"},
			{ComponentType: 5126, Count: 6, Type: "VEC3"},
		},
		gltfAnimation{
			Samplers: []gltfAnimSampler{{Input: 0, Output: 1, Interpolation: "CUBICSPLINE"}},
			Channels: []gltfAnimChannel{
				{Sampler: 0, Target: gltfAnimTarget{Node: &node, Path: "translation"}},
			},
		},
	)

	clip, err := extractAnimationClip(dec, 0, map[int]int32{0: 0})
	if err != nil {
		t.Fatalf("extractAnimationClip failed: %v", err)
	}
	ch := clip.Channels[0]
	if ch.PositionInterp != model.InterpolationCubicSpline {
		t.Fatalf("interp = %v", ch.PositionInterp)
	}
	if ch.PositionKeys[0].Value.X() != 1 || ch.PositionKeys[1].Value.X() != 4 {
		t.Fatalf("keys = %+v, want triplet middle values", ch.PositionKeys)
	}
}

func TestExtractAnimationClipCubicSplineShortOutput(t *testing.T) {
	node := 0
	dec := animFixture(
		[][]byte{
			floatBytes(0, 1),
			floatBytes(1, 2, 3, 4, 5, 6), // 2 values, cubic wants 6
		},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 2, Type: "SCALAR"},
			{ComponentType: 5126, Count: 2, Type: "VEC3"},
		},
		gltfAnimation{
			Samplers: []gltfAnimSampler{{Input: 0, Output: 1, Interpolation: "CUBICSPLINE"}},
			Channels: []gltfAnimChannel{
				{Sampler: 0, Target: gltfAnimTarget{Node: &node, Path: "translation"}},
			},
		},
	)

	_, err := extractAnimationClip(dec, 0, map[int]int32{0: 0})
	wantKind(t, err, KindContent)
}

func TestExtractAnimationClipUnknownInterpolation(t *testing.T) {
	node := 0
	dec := animFixture(
		[][]byte{floatBytes(0), floatBytes(0, 0, 0)},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 1, Type: "SCALAR"},
			{ComponentType: 5126, Count: 1, Type: "VEC3"},
		},
		gltfAnimation{
			Samplers: []gltfAnimSampler{{Input: 0, Output: 1, Interpolation: "HERMITE"}},
			Channels: []gltfAnimChannel{
				{Sampler: 0, Target: gltfAnimTarget{Node: &node, Path: "translation"}},
			},
		},
	)

	_, err := extractAnimationClip(dec, 0, map[int]int32{0: 0})
	wantKind(t, err, KindFormat)
}

func TestExtractAnimationClipNameFallback(t *testing.T) {
	dec := animFixture(nil, nil, gltfAnimation{})

	clip, err := extractAnimationClip(dec, 0, map[int]int32{})
	if err != nil {
		t.Fatalf("extractAnimationClip failed: %v", err)
	}
	if clip.Name != "animation_0" {
		t.Fatalf("name = %q", clip.Name)
	}
	if clip.Duration != 0 || len(clip.Channels) != 0 {
		t.Fatal("empty animation should import as empty clip")
	}
}
