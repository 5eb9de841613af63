// gltf_container.go splits a GLB binary container into its JSON and binary
// chunks. The returned slices are views into the input buffer; no bytes are
// copied at this stage.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
package asset

import (
	"encoding/binary"
)

// glbChunks holds the framed chunks of a GLB container.
type glbChunks struct {
	// jsonChunk is the required JSON document chunk.
	jsonChunk []byte

	// binChunk is the optional embedded binary chunk (nil when absent).
	binChunk []byte
}

// isGLB reports whether the data starts with the GLB magic number.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic
}

// splitGLB validates the GLB header and walks the chunk list. The magic,
// version, and declared length are checked before any chunk is touched;
// unknown chunk types are skipped per format convention. Chunk boundaries
// are 4-byte aligned, with padding excluded from the returned payloads.
func splitGLB(data []byte) (glbChunks, error) {
	var chunks glbChunks

	if len(data) < gltfGLBHeaderSize {
		return chunks, formatErrf("GLB container too small: %d bytes", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	version := binary.LittleEndian.Uint32(data[4:8])
	length := binary.LittleEndian.Uint32(data[8:12])

	if magic != gltfGLBMagic {
		return chunks, formatErr(errInvalidGLBMagic)
	}
	if version != gltfGLBVersion {
		return chunks, formatErr(errInvalidGLBVersion)
	}
	if int(length) > len(data) {
		return chunks, formatErrf("GLB declared length %d exceeds file size %d", length, len(data))
	}

	offset := gltfGLBHeaderSize
	end := int(length)

	for offset < end {
		if offset+gltfGLBChunkHeaderSize > end {
			return chunks, formatErrf("truncated GLB chunk header at offset %d", offset)
		}

		chunkLength := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])

		payloadStart := offset + gltfGLBChunkHeaderSize
		payloadEnd := payloadStart + chunkLength
		if payloadEnd > end {
			return chunks, formatErrf("GLB chunk at offset %d extends past declared length", offset)
		}

		switch chunkType {
		case gltfGLBChunkJSON:
			if chunks.jsonChunk == nil {
				chunks.jsonChunk = data[payloadStart:payloadEnd]
			}
		case gltfGLBChunkBIN:
			if chunks.binChunk == nil {
				chunks.binChunk = data[payloadStart:payloadEnd]
			}
		}

		// Chunks start on 4-byte boundaries; padding is skipped.
		offset = payloadEnd
		if rem := offset % 4; rem != 0 {
			offset += 4 - rem
		}
	}

	if chunks.jsonChunk == nil {
		return chunks, formatErr(errMissingJSONChunk)
	}

	return chunks, nil
}
