package asset

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loaderImpl)

// WithFileSource is an option builder that sets the byte source used to
// resolve file paths and external buffer/image URIs.
//
// Parameters:
//   - fs: the file source
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file source option
func WithFileSource(fs FileSource) LoaderBuilderOption {
	return func(l *loaderImpl) {
		if fs != nil {
			l.fs = fs
		}
	}
}

// WithAsset is an option builder that pre-populates the asset cache.
//
// Parameters:
//   - key: the cache key for the asset
//   - a: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option
func WithAsset(key string, a *Asset) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.assetCache[key] = a
	}
}
