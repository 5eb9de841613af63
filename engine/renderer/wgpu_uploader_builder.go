package renderer

import (
	"github.com/cwahlfeldt/ember-go/common"
)

// WGPUUploaderBuilderOption is a functional option for configuring a wgpu
// ResourceUploader via NewWGPUUploader.
type WGPUUploaderBuilderOption func(*wgpuUploaderImpl)

// WithImageDecoder is an option builder that sets the image decoder used to
// turn encoded texture bytes into RGBA pixels before upload.
//
// Parameters:
//   - decoder: the image decoder to use
//
// Returns:
//   - WGPUUploaderBuilderOption: a function that applies the decoder option
func WithImageDecoder(decoder common.ImageDecoder) WGPUUploaderBuilderOption {
	return func(u *wgpuUploaderImpl) {
		if decoder != nil {
			u.decoder = decoder
		}
	}
}
