// gltf_animation_extractor.go converts animation samplers and channels into
// per-bone keyframe tracks.
package asset

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
)

// parseInterpolation validates a sampler's interpolation string. An empty
// string means linear per the format default.
func parseInterpolation(s string) (model.Interpolation, error) {
	switch s {
	case "", gltfAnimInterpolationLinear:
		return model.InterpolationLinear, nil
	case gltfAnimInterpolationStep:
		return model.InterpolationStep, nil
	case gltfAnimInterpolationCubicSpline:
		return model.InterpolationCubicSpline, nil
	default:
		return 0, formatErrf("unknown animation interpolation %q", s)
	}
}

// extractAnimationClip converts one animation into per-bone keyframe tracks.
// Channels targeting morph weights or nodes outside the bone map are skipped,
// not imported. The clip's duration is the maximum keyframe time across all
// imported tracks.
func extractAnimationClip(dec *accessorDecoder, animIndex int, nodeToBone map[int]int32) (*model.AnimationClip, error) {
	doc := dec.doc
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, boundsErrf("animation index %d out of range", animIndex)
	}
	anim := &doc.Animations[animIndex]

	name := common.Coalesce(anim.Name, fmt.Sprintf("animation_%d", animIndex))

	clip := &model.AnimationClip{Name: name}
	channelByBone := make(map[int32]*model.AnimationChannel)

	for _, ch := range anim.Channels {
		if ch.Target.Path == gltfAnimPathWeights {
			continue
		}
		if ch.Target.Node == nil {
			continue
		}
		boneIndex, ok := nodeToBone[*ch.Target.Node]
		if !ok {
			continue
		}

		sampler := &anim.Samplers[ch.Sampler]
		interp, err := parseInterpolation(sampler.Interpolation)
		if err != nil {
			return nil, err
		}

		times, err := dec.ReadScalarFloats(sampler.Input)
		if err != nil {
			return nil, err
		}

		track, ok := channelByBone[boneIndex]
		if !ok {
			track = &model.AnimationChannel{BoneIndex: boneIndex}
			channelByBone[boneIndex] = track
		}

		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathScale:
			values, err := dec.ReadVec3(sampler.Output)
			if err != nil {
				return nil, err
			}
			keys, err := vectorKeyframes(times, values, interp)
			if err != nil {
				return nil, err
			}
			if ch.Target.Path == gltfAnimPathTranslation {
				track.PositionKeys = keys
				track.PositionInterp = interp
			} else {
				track.ScaleKeys = keys
				track.ScaleInterp = interp
			}

		case gltfAnimPathRotation:
			values, err := dec.ReadVec4(sampler.Output)
			if err != nil {
				return nil, err
			}
			keys, err := quaternionKeyframes(times, values, interp)
			if err != nil {
				return nil, err
			}
			track.RotationKeys = keys
			track.RotationInterp = interp

		default:
			return nil, formatErrf("animation %d targets unknown path %q", animIndex, ch.Target.Path)
		}

		for _, t := range times {
			if t > clip.Duration {
				clip.Duration = t
			}
		}
	}

	clip.Channels = make([]model.AnimationChannel, 0, len(channelByBone))
	for _, track := range channelByBone {
		clip.Channels = append(clip.Channels, *track)
	}

	return clip, nil
}

// cubicValueIndex maps a keyframe index onto the value element of a
// cubic-spline output triplet (in-tangent, value, out-tangent).
func cubicValueIndex(i int) int {
	return i*3 + 1
}

func vectorKeyframes(times []float32, values [][3]float32, interp model.Interpolation) ([]model.VectorKeyframe, error) {
	if err := checkOutputCount(len(times), len(values), interp); err != nil {
		return nil, err
	}

	keys := make([]model.VectorKeyframe, len(times))
	for i, t := range times {
		vi := i
		if interp == model.InterpolationCubicSpline {
			vi = cubicValueIndex(i)
		}
		keys[i] = model.VectorKeyframe{Time: t, Value: mgl32.Vec3(values[vi])}
	}
	return keys, nil
}

func quaternionKeyframes(times []float32, values [][4]float32, interp model.Interpolation) ([]model.QuaternionKeyframe, error) {
	if err := checkOutputCount(len(times), len(values), interp); err != nil {
		return nil, err
	}

	keys := make([]model.QuaternionKeyframe, len(times))
	for i, t := range times {
		vi := i
		if interp == model.InterpolationCubicSpline {
			vi = cubicValueIndex(i)
		}
		v := values[vi]
		keys[i] = model.QuaternionKeyframe{
			Time:  t,
			Value: mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize(),
		}
	}
	return keys, nil
}

// checkOutputCount verifies the sampler output length matches its input:
// one value per keyframe, or one triplet per keyframe for cubic splines.
func checkOutputCount(timeCount, valueCount int, interp model.Interpolation) error {
	want := timeCount
	if interp == model.InterpolationCubicSpline {
		want = timeCount * 3
	}
	if valueCount < want {
		return contentErrf("animation sampler has %d output values for %d keyframes", valueCount, timeCount)
	}
	return nil
}
