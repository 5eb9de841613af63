package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/cwahlfeldt/ember-go/common"
)

// --- Vertex & Mesh Types ---

// Vertex is the interleaved per-vertex layout produced by the importer.
// The field layout is stable and GPU-facing; plain float arrays keep the
// memory layout under direct control for buffer uploads.
type Vertex struct {
	// Position is the vertex position in mesh-local space.
	Position [3]float32

	// Normal is the unit vertex normal.
	Normal [3]float32

	// TexCoord is the first UV channel.
	TexCoord [2]float32

	// Color is the vertex color (RGBA), defaulting to opaque white.
	Color [4]float32

	// Tangent is the vertex tangent (xyz) with handedness in w.
	Tangent [4]float32

	// Joints are up to four skeleton joint indices influencing this vertex.
	Joints [4]uint32

	// Weights are the influence weights paired with Joints.
	Weights [4]float32
}

// DecodedMesh represents a single decoded mesh primitive: one vertex array,
// one index array, and one material reference.
type DecodedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the decoded vertices.
	Vertices []Vertex

	// Indices are the triangle indices (always present; synthesized when the
	// source primitive is non-indexed).
	Indices []uint32

	// MaterialIndex references the owning asset's material table, or -1 when
	// the source primitive has no material.
	MaterialIndex int

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}

// --- Transform & Skeleton Types ---

// Transform represents a decomposed translation/rotation/scale transform.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns a Transform with zero translation, identity
// rotation, and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Mat4 composes the transform into a column-major matrix (T * R * S).
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func (t Transform) Mat4() mgl32.Mat4 {
	trans := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rot := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return trans.Mul4(rot).Mul4(scale)
}

// TransformFromMatrix decomposes a column-major matrix into translation,
// rotation, and scale. Scale is recovered from the basis column lengths;
// negative determinants (mirrored transforms) fold the sign into the X scale.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - Transform: the decomposed transform
func TransformFromMatrix(m mgl32.Mat4) Transform {
	translation := mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}

	c0 := mgl32.Vec3{m.At(0, 0), m.At(1, 0), m.At(2, 0)}
	c1 := mgl32.Vec3{m.At(0, 1), m.At(1, 1), m.At(2, 1)}
	c2 := mgl32.Vec3{m.At(0, 2), m.At(1, 2), m.At(2, 2)}

	scale := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Det() < 0 {
		scale[0] = -scale[0]
	}

	rot := mgl32.Ident4()
	if scale.X() != 0 && scale.Y() != 0 && scale.Z() != 0 {
		n0 := c0.Mul(1 / scale.X())
		n1 := c1.Mul(1 / scale.Y())
		n2 := c2.Mul(1 / scale.Z())
		rot = mgl32.Mat4{
			n0.X(), n0.Y(), n0.Z(), 0,
			n1.X(), n1.Y(), n1.Z(), 0,
			n2.X(), n2.Y(), n2.Z(), 0,
			0, 0, 0, 1,
		}
	}

	return Transform{
		Translation: translation,
		Rotation:    mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:       scale,
	}
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone within the skeleton's bone
	// array (-1 for root bones, or when the true parent is not a joint).
	ParentIndex int32

	// LocalBind is the bone's bind-pose transform relative to its parent.
	LocalBind Transform

	// InverseBind transforms from model space to bone space at bind pose.
	InverseBind mgl32.Mat4
}

// Skeleton represents a bone hierarchy for skeletal animation. Bones are
// stored in the order the source skin declares its joints, so vertex joint
// indices index Bones directly.
type Skeleton struct {
	// Bones is the array of all bones in the skeleton.
	Bones []Bone

	// RootBoneIndices are indices of bones with no parent.
	RootBoneIndices []int32

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// --- Animation Types ---

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	// InterpolationLinear blends linearly between adjacent keyframes (the default).
	InterpolationLinear Interpolation = iota

	// InterpolationStep holds each keyframe value until the next keyframe.
	InterpolationStep

	// InterpolationCubicSpline blends with cubic Hermite splines.
	InterpolationCubicSpline
)

// String returns the human-readable name of the interpolation mode.
func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "linear"
	case InterpolationStep:
		return "step"
	case InterpolationCubicSpline:
		return "cubic-spline"
	default:
		return "unknown"
	}
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value mgl32.Vec3
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe.
	Value mgl32.Quat
}

// AnimationChannel contains keyframe data for a single bone. Each property
// carries its own interpolation mode.
type AnimationChannel struct {
	// BoneIndex is the index of the bone this channel animates.
	BoneIndex int32

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// PositionInterp is the interpolation mode for PositionKeys.
	PositionInterp Interpolation

	// RotationKeys are keyframes for rotation.
	RotationKeys []QuaternionKeyframe

	// RotationInterp is the interpolation mode for RotationKeys.
	RotationInterp Interpolation

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe

	// ScaleInterp is the interpolation mode for ScaleKeys.
	ScaleInterp Interpolation
}

// AnimationClip represents a single animation (walk, run, attack, etc.).
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds, taken from
	// the largest keyframe timestamp across all channels.
	Duration float32

	// Channels contains animation data for each animated bone.
	Channels []AnimationChannel
}

// --- Camera Types ---

// Camera holds perspective camera parameters imported from a model file.
type Camera struct {
	// Name is the camera identifier.
	Name string

	// FovY is the vertical field of view in radians.
	FovY float32

	// Near is the near clipping plane distance.
	Near float32

	// Far is the far clipping plane distance (0 when the source declares an
	// infinite projection).
	Far float32

	// Aspect is the aspect ratio (width/height), or 0 when unspecified.
	Aspect float32
}

// --- Import Aggregates ---

// ImportedModel bundles everything decoded from a single model file.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains all decoded mesh primitives.
	Meshes []DecodedMesh

	// Skeleton is the bone hierarchy (nil for static models).
	Skeleton *Skeleton

	// Animations are all animation clips bundled with the model.
	Animations []*AnimationClip

	// Materials are the model's materials; DecodedMesh.MaterialIndex points here.
	Materials []common.ImportedMaterial

	// Textures are the model's textures; material texture slots point here.
	Textures []common.ImportedTexture

	// Cameras are the model's perspective cameras.
	Cameras []Camera
}
