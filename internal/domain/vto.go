package domain

// MaskType selects how the try-on region is located.
type MaskType string

const (
	MaskTypeGarment MaskType = "GARMENT"
	MaskTypeImage   MaskType = "IMAGE"
	MaskTypePrompt  MaskType = "PROMPT"
)

// Operation names one accept-and-acknowledge endpoint family.
type Operation string

const (
	OperationVTO               Operation = "vto"
	OperationTextToImage       Operation = "text_to_image"
	OperationReplaceBackground Operation = "replace_background"
	OperationImageEdit         Operation = "image_edit"
)

const (
	ShapeDefault = "DEFAULT"

	QualityStandard = "standard"
	QualityPremium  = "premium"

	SeedUnset = -1
	SeedMax   = 2147483647

	MaxImagesPerRequest = 5

	DefaultGarmentClass = "UPPER_BODY"

	DefaultBackgroundMaskPrompt = "people"
	OutPaintingModeDefault      = "DEFAULT"
	OutPaintingModePrecise      = "PRECISE"
)

// Model identifiers accepted by the API.
const (
	ModelNovaCanvas = "amazon.nova-canvas-v1:0"
	ModelTitanV2    = "amazon.titan-image-generator-v2:0"
	ModelNova2      = "nova2"
)

// ValidDimensions lists the output sizes accepted for Nova Canvas and Titan requests.
var ValidDimensions = []int{256, 512, 768, 1024, 1280, 1536, 1792, 2048}

// GarmentClasses maps the classifier category ids to their names.
var GarmentClasses = map[int]string{
	5:  "LONG_SLEEVE_SHIRT",
	6:  "SHORT_SLEEVE_SHIRT",
	7:  "NO_SLEEVE_SHIRT",
	8:  "OTHER_UPPER_BODY",
	9:  "LONG_PANTS",
	10: "SHORT_PANTS",
	11: "OTHER_LOWER_BODY",
	12: "LONG_DRESS",
	13: "SHORT_DRESS",
	14: "FULL_BODY_OUTFIT",
	15: "OTHER_FULL_BODY",
	16: "SHOES",
	17: "BOOTS",
	18: "OTHER_FOOTWEAR",
}
