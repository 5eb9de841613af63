package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *sceneImpl)

// WithEntityCapacity pre-sizes the scene's entity storage for the expected
// number of entities.
//
// Parameters:
//   - n: the expected entity count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEntityCapacity(n int) SceneBuilderOption {
	return func(s *sceneImpl) {
		if n > 0 {
			s.entities = make(map[EntityID]*entityRecord, n)
		}
	}
}
