package payload

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"vto/internal/providers/bedrock"
)

// Nova2System is the system prompt that pins the output size for Nova 2 Omni.
func Nova2System(height, width int) string {
	return fmt.Sprintf("Generate an image with dimensions %dx%d pixels based on the user's request.", width, height)
}

// Nova2Generate builds the Converse call for one Nova 2 text-to-image unit.
func Nova2Generate(prompt string, height, width int) bedrock.ConverseRequest {
	return bedrock.ConverseRequest{
		ModelID:   bedrock.Nova2ModelID,
		System:    Nova2System(height, width),
		Prompt:    prompt,
		Inference: bedrock.Nova2Inference,
	}
}

// Nova2Edit builds the Converse call for one Nova 2 image edit unit.
func Nova2Edit(prompt string, image []byte, height, width int) bedrock.ConverseRequest {
	req := Nova2Generate(prompt, height, width)
	req.Image = image
	req.ImageFormat = ImageFormat(image)
	return req
}

// ImageFormat sniffs the Converse image format of data, defaulting to PNG.
func ImageFormat(data []byte) types.ImageFormat {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return types.ImageFormatJpeg
	case "image/gif":
		return types.ImageFormatGif
	case "image/webp":
		return types.ImageFormatWebp
	}
	return types.ImageFormatPng
}
