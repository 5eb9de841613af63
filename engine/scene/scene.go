// package scene provides the entity registry the asset importer instantiates
// models into: entities, parent/child links, and typed components. It is a
// passive store; traversal and rendering policy live with the caller.
package scene

import (
	"fmt"
	"sync"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
	"github.com/cwahlfeldt/ember-go/engine/renderer"
)

// EntityID identifies an entity within a Scene. Zero is never a valid ID.
type EntityID uint64

// Component marks types that can be attached to an entity. At most one
// component of each concrete type may be attached per entity.
type Component interface {
	componentName() string
}

// TransformComponent holds an entity's local transform relative to its parent.
type TransformComponent struct {
	// Local is the entity's transform relative to its parent entity.
	Local model.Transform
}

func (TransformComponent) componentName() string { return "transform" }

// MeshRendererComponent binds an entity to uploaded GPU mesh and texture
// resources plus the material used to shade them.
type MeshRendererComponent struct {
	// Mesh is the GPU mesh handle.
	Mesh renderer.MeshHandle

	// Material is the material to shade the mesh with.
	Material common.ImportedMaterial

	// BaseColorTexture is the GPU handle for the base color texture, or 0.
	BaseColorTexture renderer.TextureHandle

	// MetallicRoughnessTexture is the GPU handle for the metallic-roughness texture, or 0.
	MetallicRoughnessTexture renderer.TextureHandle

	// NormalTexture is the GPU handle for the normal map, or 0.
	NormalTexture renderer.TextureHandle

	// OcclusionTexture is the GPU handle for the occlusion map, or 0.
	OcclusionTexture renderer.TextureHandle

	// EmissiveTexture is the GPU handle for the emissive map, or 0.
	EmissiveTexture renderer.TextureHandle
}

func (MeshRendererComponent) componentName() string { return "mesh-renderer" }

// CameraComponent holds perspective projection parameters for an entity.
type CameraComponent struct {
	// Camera holds the projection parameters.
	Camera model.Camera
}

func (CameraComponent) componentName() string { return "camera" }

type entityRecord struct {
	parent     EntityID
	children   []EntityID
	components map[string]Component
}

type sceneImpl struct {
	mu       sync.RWMutex
	nextID   EntityID
	entities map[EntityID]*entityRecord
}

// Scene is a registry of entities with parent/child links and typed
// components. Thread-safe for concurrent access.
type Scene interface {
	// CreateEntity allocates a new entity with no parent and no components.
	//
	// Returns:
	//   - EntityID: the new entity's ID
	CreateEntity() EntityID

	// Attach attaches a component to an entity, replacing any existing
	// component of the same type.
	//
	// Parameters:
	//   - entity: the entity to attach to
	//   - component: the component to attach
	//
	// Returns:
	//   - error: error if the entity does not exist
	Attach(entity EntityID, component Component) error

	// SetParent re-parents an entity. A parent of zero detaches the entity
	// to the root level.
	//
	// Parameters:
	//   - entity: the entity to re-parent
	//   - parent: the new parent, or zero for none
	//
	// Returns:
	//   - error: error if either entity does not exist or the change would
	//     create a cycle
	SetParent(entity, parent EntityID) error

	// Parent returns an entity's parent, or zero if it has none.
	//
	// Parameters:
	//   - entity: the entity to query
	//
	// Returns:
	//   - EntityID: the parent ID or zero
	Parent(entity EntityID) EntityID

	// Children returns an entity's direct children.
	//
	// Parameters:
	//   - entity: the entity to query
	//
	// Returns:
	//   - []EntityID: the child IDs (copy; safe to retain)
	Children(entity EntityID) []EntityID

	// Components returns all components attached to an entity.
	//
	// Parameters:
	//   - entity: the entity to query
	//
	// Returns:
	//   - []Component: the attached components
	Components(entity EntityID) []Component

	// Count returns the number of entities in the scene.
	//
	// Returns:
	//   - int: the entity count
	Count() int
}

var _ Scene = &sceneImpl{}

// NewScene creates an empty Scene configured with the given options.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		nextID:   1,
		entities: make(map[EntityID]*entityRecord),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *sceneImpl) CreateEntity() EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.entities[id] = &entityRecord{
		components: make(map[string]Component),
	}
	return id
}

func (s *sceneImpl) Attach(entity EntityID, component Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entities[entity]
	if !ok {
		return fmt.Errorf("entity %d does not exist", entity)
	}
	rec.components[component.componentName()] = component
	return nil
}

func (s *sceneImpl) SetParent(entity, parent EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entities[entity]
	if !ok {
		return fmt.Errorf("entity %d does not exist", entity)
	}
	if parent != 0 {
		if _, ok := s.entities[parent]; !ok {
			return fmt.Errorf("parent entity %d does not exist", parent)
		}
		// Walking up from the new parent must never reach the entity itself.
		for p := parent; p != 0; p = s.entities[p].parent {
			if p == entity {
				return fmt.Errorf("re-parenting entity %d under %d would create a cycle", entity, parent)
			}
		}
	}

	if rec.parent != 0 {
		old := s.entities[rec.parent]
		for i, c := range old.children {
			if c == entity {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}

	rec.parent = parent
	if parent != 0 {
		p := s.entities[parent]
		p.children = append(p.children, entity)
	}
	return nil
}

func (s *sceneImpl) Parent(entity EntityID) EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entities[entity]
	if !ok {
		return 0
	}
	return rec.parent
}

func (s *sceneImpl) Children(entity EntityID) []EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entities[entity]
	if !ok {
		return nil
	}
	out := make([]EntityID, len(rec.children))
	copy(out, rec.children)
	return out
}

func (s *sceneImpl) Components(entity EntityID) []Component {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entities[entity]
	if !ok {
		return nil
	}
	out := make([]Component, 0, len(rec.components))
	for _, c := range rec.components {
		out = append(out, c)
	}
	return out
}

func (s *sceneImpl) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Get returns the component of type T attached to an entity, if present.
//
// Parameters:
//   - s: the scene to query
//   - entity: the entity to query
//
// Returns:
//   - T: the component value (zero value when absent)
//   - bool: true if a component of type T is attached
func Get[T Component](s Scene, entity EntityID) (T, bool) {
	var zero T
	for _, c := range s.Components(entity) {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	return zero, false
}
