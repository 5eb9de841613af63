// scene_importer.go instantiates a decoded asset into the scene-graph
// store: one entity per node, auxiliary child entities for multi-primitive
// meshes, transforms decomposed from matrix-or-TRS form.
package asset

import (
	"github.com/pkg/errors"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
	"github.com/cwahlfeldt/ember-go/engine/scene"
)

// ImportScene instantiates one of the asset's scenes into the store. With a
// nil sceneIndex the document's default scene is used; if none is declared,
// every node not listed as a child of another node is treated as a root.
// Each call produces an independent entity hierarchy, but all hierarchies
// share the asset's decoded mesh and texture handles.
//
// Parameters:
//   - store: the scene-graph store to create entities in
//   - sceneIndex: the scene to import, or nil for the default
//
// Returns:
//   - []scene.EntityID: every entity created by this call, in creation order
//   - error: error if the scene is invalid or the node graph contains a cycle
func (a *Asset) ImportScene(store scene.Scene, sceneIndex *int) ([]scene.EntityID, error) {
	roots, err := a.sceneRoots(sceneIndex)
	if err != nil {
		return nil, err
	}

	imp := &sceneImport{
		asset:   a,
		store:   store,
		visited: make(map[int]bool),
	}

	for _, root := range roots {
		if err := imp.importNode(root, 0); err != nil {
			return nil, err
		}
	}

	return imp.created, nil
}

// sceneRoots resolves the root node list for an import.
func (a *Asset) sceneRoots(sceneIndex *int) ([]int, error) {
	doc := a.doc

	switch {
	case sceneIndex != nil:
		if *sceneIndex < 0 || *sceneIndex >= len(doc.Scenes) {
			return nil, boundsErrf("scene index %d out of range", *sceneIndex)
		}
		return doc.Scenes[*sceneIndex].Nodes, nil

	case doc.Scene != nil:
		return doc.Scenes[*doc.Scene].Nodes, nil

	default:
		// No scene declared: every node that is not a child of another node
		// is a root, computed in one pass marking child indices.
		isChild := make([]bool, len(doc.Nodes))
		for _, node := range doc.Nodes {
			for _, child := range node.Children {
				isChild[child] = true
			}
		}
		var roots []int
		for i := range doc.Nodes {
			if !isChild[i] {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}
}

type sceneImport struct {
	asset   *Asset
	store   scene.Scene
	visited map[int]bool
	created []scene.EntityID
}

// importNode creates the entity for one node and recurses into its
// children depth-first. Revisiting a node within one import is a content
// error: the child-index graph must be acyclic.
func (imp *sceneImport) importNode(nodeIndex int, parent scene.EntityID) error {
	if imp.visited[nodeIndex] {
		return contentErrf("node graph cycle detected at node %d", nodeIndex)
	}
	imp.visited[nodeIndex] = true

	a := imp.asset
	node := &a.doc.Nodes[nodeIndex]

	entity := imp.store.CreateEntity()
	imp.created = append(imp.created, entity)

	if err := imp.store.Attach(entity, scene.TransformComponent{Local: nodeTransform(node)}); err != nil {
		return errors.Wrapf(err, "failed to attach transform for node %d", nodeIndex)
	}
	if parent != 0 {
		if err := imp.store.SetParent(entity, parent); err != nil {
			return errors.Wrapf(err, "failed to parent node %d", nodeIndex)
		}
	}

	if node.Mesh != nil {
		if err := imp.attachMesh(entity, *node.Mesh); err != nil {
			return err
		}
	}

	if node.Camera != nil {
		if camIdx, ok := a.cameraLookup[*node.Camera]; ok {
			if err := imp.store.Attach(entity, scene.CameraComponent{Camera: a.cameras[camIdx]}); err != nil {
				return errors.Wrapf(err, "failed to attach camera for node %d", nodeIndex)
			}
		}
	}

	for _, child := range node.Children {
		if err := imp.importNode(child, entity); err != nil {
			return err
		}
	}

	return nil
}

// attachMesh binds a node's mesh to its entity. A single-primitive mesh
// attaches directly; a multi-primitive mesh gets one child entity per
// primitive, each with an identity transform, since the render component
// models one mesh per entity.
func (imp *sceneImport) attachMesh(entity scene.EntityID, meshIndex int) error {
	a := imp.asset
	primCount := len(a.doc.Meshes[meshIndex].Primitives)

	if primCount == 1 {
		return imp.store.Attach(entity, a.meshRendererComponent(meshIndex, 0))
	}

	for primIndex := 0; primIndex < primCount; primIndex++ {
		child := imp.store.CreateEntity()
		imp.created = append(imp.created, child)

		if err := imp.store.Attach(child, scene.TransformComponent{Local: model.IdentityTransform()}); err != nil {
			return errors.Wrapf(err, "failed to attach transform for mesh %d primitive %d", meshIndex, primIndex)
		}
		if err := imp.store.SetParent(child, entity); err != nil {
			return errors.Wrapf(err, "failed to parent mesh %d primitive %d", meshIndex, primIndex)
		}
		if err := imp.store.Attach(child, a.meshRendererComponent(meshIndex, primIndex)); err != nil {
			return errors.Wrapf(err, "failed to attach renderer for mesh %d primitive %d", meshIndex, primIndex)
		}
	}

	return nil
}

// meshRendererComponent assembles the render component for one primitive:
// the shared mesh handle, the material, and the per-slot texture handles.
func (a *Asset) meshRendererComponent(meshIndex, primIndex int) scene.MeshRendererComponent {
	comp := scene.MeshRendererComponent{Material: common.DefaultMaterial()}

	decodedIndex, ok := a.MeshIndex(meshIndex, primIndex)
	if !ok {
		return comp
	}
	comp.Mesh = a.MeshHandle(decodedIndex)

	if mi := a.meshes[decodedIndex].MaterialIndex; mi >= 0 && mi < len(a.materials) {
		comp.Material = a.materials[mi]
	}

	if slot := comp.Material.BaseColorTexture; slot != common.NoTexture {
		comp.BaseColorTexture = a.TextureHandle(slot)
	}
	if slot := comp.Material.MetallicRoughnessTexture; slot != common.NoTexture {
		comp.MetallicRoughnessTexture = a.TextureHandle(slot)
	}
	if slot := comp.Material.NormalTexture; slot != common.NoTexture {
		comp.NormalTexture = a.TextureHandle(slot)
	}
	if slot := comp.Material.OcclusionTexture; slot != common.NoTexture {
		comp.OcclusionTexture = a.TextureHandle(slot)
	}
	if slot := comp.Material.EmissiveTexture; slot != common.NoTexture {
		comp.EmissiveTexture = a.TextureHandle(slot)
	}

	return comp
}
