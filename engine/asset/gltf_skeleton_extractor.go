// gltf_skeleton_extractor.go builds a bone hierarchy from a skin's joint
// list and imports inverse bind matrices.
package asset

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
)

// buildParentMap computes a node-index → parent-index map in one pass over
// the node array. Nodes without a parent map to -1. Shared for every joint
// lookup instead of rescanning the node list per joint.
func buildParentMap(doc *gltfDocument) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			parents[child] = i
		}
	}
	return parents
}

// extractSkeleton builds a Skeleton from a skin. Bones are stored in the
// skin's joint order so vertex joint indices index the bone array directly.
// A joint whose true parent node is not itself a joint of the same skin is
// recorded as a root, flattening skeletons with non-joint intermediate nodes.
func extractSkeleton(dec *accessorDecoder, skinIndex int) (*model.Skeleton, error) {
	doc := dec.doc
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, boundsErrf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	if len(skin.Joints) == 0 {
		return nil, contentErrf("skin %d has no joints", skinIndex)
	}

	// Inverse bind matrices are validated before any bone is constructed.
	var inverseBinds []mgl32.Mat4
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBinds, err = dec.ReadMat4(*skin.InverseBindMatrices)
		if err != nil {
			return nil, err
		}
		if len(inverseBinds) != len(skin.Joints) {
			return nil, contentErrf("skin %d has %d inverse bind matrices for %d joints", skinIndex, len(inverseBinds), len(skin.Joints))
		}
	}

	parents := buildParentMap(doc)

	// Map node index -> bone index for parent resolution within this skin.
	nodeToBone := make(map[int]int32, len(skin.Joints))
	for boneIndex, nodeIndex := range skin.Joints {
		nodeToBone[nodeIndex] = int32(boneIndex)
	}

	skeleton := &model.Skeleton{
		Bones:           make([]model.Bone, len(skin.Joints)),
		BoneNameToIndex: make(map[string]int32, len(skin.Joints)),
	}

	for boneIndex, nodeIndex := range skin.Joints {
		node := &doc.Nodes[nodeIndex]

		name := common.Coalesce(node.Name, fmt.Sprintf("joint_%d", nodeIndex))

		parentBone := int32(-1)
		if parentNode := parents[nodeIndex]; parentNode >= 0 {
			if pb, ok := nodeToBone[parentNode]; ok {
				parentBone = pb
			}
		}

		bone := model.Bone{
			Name:        name,
			ParentIndex: parentBone,
			LocalBind:   nodeTransform(node),
			InverseBind: mgl32.Ident4(),
		}
		if inverseBinds != nil {
			bone.InverseBind = inverseBinds[boneIndex]
		}

		skeleton.Bones[boneIndex] = bone
		skeleton.BoneNameToIndex[name] = int32(boneIndex)
		if parentBone < 0 {
			skeleton.RootBoneIndices = append(skeleton.RootBoneIndices, int32(boneIndex))
		}
	}

	return skeleton, nil
}

// nodeTransform decomposes a node's matrix-or-TRS transform. The parser
// rejects nodes declaring both forms, so the two cases are exclusive here.
func nodeTransform(node *gltfNode) model.Transform {
	if node.Matrix != nil {
		return model.TransformFromMatrix(mgl32.Mat4(*node.Matrix))
	}

	t := model.IdentityTransform()
	if node.Translation != nil {
		t.Translation = mgl32.Vec3(*node.Translation)
	}
	if node.Rotation != nil {
		r := *node.Rotation
		t.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	if node.Scale != nil {
		t.Scale = mgl32.Vec3(*node.Scale)
	}
	return t
}
