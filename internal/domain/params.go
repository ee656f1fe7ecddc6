package domain

import "encoding/json"

// UnitFields are the per-unit controls shared by every worker parameter block.
// The dispatch planner rewrites them when a request is split into several units.
type UnitFields struct {
	ModelID        string   `json:"model_id,omitempty"`
	NumberOfImages int      `json:"number_of_images"`
	Quality        string   `json:"quality,omitempty"`
	CfgScale       *float64 `json:"cfg_scale,omitempty"`
	ObjectNames    []string `json:"object_names"`
	ImageIndex     *int     `json:"image_index,omitempty"`
}

// Params is implemented by the parameter block of each worker operation.
type Params interface {
	Operation() Operation
	Fields() UnitFields
	WithFields(UnitFields) Params
}

// VTOParams is the worker input for a virtual try-on unit.
type VTOParams struct {
	UnitFields
	SourceImageObjectName    string   `json:"source_image_object_name"`
	ReferenceImageObjectName string   `json:"reference_image_object_name"`
	MaskImageObjectName      string   `json:"mask_image_object_name,omitempty"`
	MaskType                 MaskType `json:"mask_type"`
	MaskPrompt               string   `json:"mask_prompt"`
	GarmentClass             string   `json:"garment_class"`
	LongSleeveStyle          string   `json:"long_sleeve_style,omitempty"`
	TuckingStyle             string   `json:"tucking_style,omitempty"`
	OuterLayerStyle          string   `json:"outer_layer_style,omitempty"`
	MaskShape                string   `json:"mask_shape,omitempty"`
	MaskShapePrompt          string   `json:"mask_shape_prompt,omitempty"`
	PreserveBodyPose         string   `json:"preserve_body_pose,omitempty"`
	PreserveHands            string   `json:"preserve_hands,omitempty"`
	PreserveFace             string   `json:"preserve_face,omitempty"`
	MergeStyle               string   `json:"merge_style,omitempty"`
	ReturnMask               bool     `json:"return_mask"`
	Seed                     int      `json:"seed"`
	DateFolder               string   `json:"date_folder,omitempty"`
	TimestampUID             string   `json:"timestamp_uid,omitempty"`
}

func (p VTOParams) Operation() Operation { return OperationVTO }
func (p VTOParams) Fields() UnitFields   { return p.UnitFields }
func (p VTOParams) WithFields(f UnitFields) Params {
	p.UnitFields = f
	return p
}

// TextToImageParams is the worker input for a text-to-image unit.
type TextToImageParams struct {
	UnitFields
	Prompt string `json:"prompt"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

func (p TextToImageParams) Operation() Operation { return OperationTextToImage }
func (p TextToImageParams) Fields() UnitFields   { return p.UnitFields }
func (p TextToImageParams) WithFields(f UnitFields) Params {
	p.UnitFields = f
	return p
}

// BackgroundParams is the worker input for a background replacement unit.
type BackgroundParams struct {
	UnitFields
	Prompt               string `json:"prompt"`
	InputImageObjectName string `json:"input_image_object_name"`
	MaskPrompt           string `json:"mask_prompt,omitempty"`
	MaskImageObjectName  string `json:"mask_image_object_name,omitempty"`
	OutPaintingMode      string `json:"outPaintingMode"`
	Height               int    `json:"height"`
	Width                int    `json:"width"`
}

func (p BackgroundParams) Operation() Operation { return OperationReplaceBackground }
func (p BackgroundParams) Fields() UnitFields   { return p.UnitFields }
func (p BackgroundParams) WithFields(f UnitFields) Params {
	p.UnitFields = f
	return p
}

// EditParams is the worker input for an image edit unit.
type EditParams struct {
	UnitFields
	Prompt               string `json:"prompt"`
	InputImageObjectName string `json:"input_image_object_name"`
	Height               int    `json:"height"`
	Width                int    `json:"width"`
}

func (p EditParams) Operation() Operation { return OperationImageEdit }
func (p EditParams) Fields() UnitFields   { return p.UnitFields }
func (p EditParams) WithFields(f UnitFields) Params {
	p.UnitFields = f
	return p
}

// Event is the envelope delivered to the generation worker. Exactly one block is set.
type Event struct {
	Test        string             `json:"test,omitempty"`
	VTO         *VTOParams         `json:"vto_params,omitempty"`
	TextToImage *TextToImageParams `json:"text_to_image_params,omitempty"`
	Background  *BackgroundParams  `json:"replace_background_params,omitempty"`
	Edit        *EditParams        `json:"image_edit_params,omitempty"`
}

// HealthCheckEvent is the probe value of Event.Test.
const HealthCheckEvent = "health_check"

// NewEvent wraps params in the worker envelope.
func NewEvent(p Params) Event {
	switch v := p.(type) {
	case VTOParams:
		return Event{VTO: &v}
	case TextToImageParams:
		return Event{TextToImage: &v}
	case BackgroundParams:
		return Event{Background: &v}
	case EditParams:
		return Event{Edit: &v}
	}
	return Event{}
}

// MarshalEvent encodes params as a worker event payload.
func MarshalEvent(p Params) ([]byte, error) {
	return json.Marshal(NewEvent(p))
}
