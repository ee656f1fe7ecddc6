package handlers

import (
	"fmt"

	"vto/internal/domain"
)

const (
	defaultCfgScale  = 6.5
	defaultDimension = 1024
	defaultEditSize  = 512
)

// generationRequest holds the fields shared by every accept-and-acknowledge route.
type generationRequest struct {
	GroupID        string   `json:"group_id" validate:"notblank"`
	UserID         string   `json:"user_id" validate:"notblank"`
	DateFolder     string   `json:"date_folder"`
	Timestamp      string   `json:"timestamp"`
	UID            string   `json:"uid"`
	ObjectNames    []string `json:"object_names" validate:"required,min=1,max=5,dive,notblank"`
	NumberOfImages *int     `json:"number_of_images" validate:"omitnil,min=1,max=5"`
}

func (g generationRequest) imageCount() int {
	if g.NumberOfImages == nil {
		return 1
	}
	return *g.NumberOfImages
}

func (g generationRequest) check() []fieldError {
	if n := g.imageCount(); len(g.ObjectNames) != n {
		return []fieldError{{
			Loc:  []string{"body", "object_names"},
			Msg:  fmt.Sprintf("must contain exactly number_of_images (%d) entries, got %d", n, len(g.ObjectNames)),
			Type: "value_error",
		}}
	}
	return nil
}

type vtoRequest struct {
	generationRequest
	SourceImageObjectName    string   `json:"source_image_object_name" validate:"notblank"`
	ReferenceImageObjectName string   `json:"reference_image_object_name" validate:"notblank"`
	MaskImageObjectName      string   `json:"mask_image_object_name"`
	MaskType                 string   `json:"mask_type" validate:"omitempty,oneof=GARMENT IMAGE PROMPT"`
	MaskPrompt               string   `json:"mask_prompt"`
	GarmentClass             string   `json:"garment_class" validate:"omitempty,oneof=UPPER_BODY LOWER_BODY FULL_BODY SHOES"`
	LongSleeveStyle          string   `json:"long_sleeve_style"`
	TuckingStyle             string   `json:"tucking_style"`
	OuterLayerStyle          string   `json:"outer_layer_style"`
	MaskShape                string   `json:"mask_shape"`
	MaskShapePrompt          string   `json:"mask_shape_prompt"`
	PreserveBodyPose         string   `json:"preserve_body_pose"`
	PreserveHands            string   `json:"preserve_hands"`
	PreserveFace             string   `json:"preserve_face"`
	MergeStyle               string   `json:"merge_style"`
	ReturnMask               bool     `json:"return_mask"`
	Quality                  string   `json:"quality" validate:"omitempty,oneof=standard premium"`
	CfgScale                 *float64 `json:"cfg_scale" validate:"omitnil,min=1,max=10"`
	Seed                     *int     `json:"seed" validate:"omitnil,min=-1,max=2147483647"`
}

func (r vtoRequest) check() []fieldError {
	errs := r.generationRequest.check()
	switch domain.MaskType(r.MaskType) {
	case domain.MaskTypeImage:
		if isBlank(r.MaskImageObjectName) {
			errs = append(errs, fieldError{Loc: []string{"body"}, Msg: "mask_image_object_name is required when mask_type is IMAGE", Type: "value_error"})
		}
	case domain.MaskTypePrompt:
		if isBlank(r.MaskPrompt) {
			errs = append(errs, fieldError{Loc: []string{"body"}, Msg: "mask_prompt is required when mask_type is PROMPT", Type: "value_error"})
		}
	}
	return errs
}

type textToImageRequest struct {
	generationRequest
	Prompt   string   `json:"prompt" validate:"notblank,max=1024"`
	ModelID  string   `json:"model_id"`
	CfgScale *float64 `json:"cfg_scale" validate:"omitnil,min=1.1,max=10"`
	Quality  string   `json:"quality" validate:"omitempty,oneof=standard premium"`
	Height   *int     `json:"height" validate:"omitnil,oneof=256 512 768 1024 1280 1536 1792 2048"`
	Width    *int     `json:"width" validate:"omitnil,oneof=256 512 768 1024 1280 1536 1792 2048"`
}

type backgroundRequest struct {
	generationRequest
	Prompt               string   `json:"prompt" validate:"notblank,max=1024"`
	InputImageObjectName string   `json:"input_image_object_name" validate:"notblank"`
	MaskPrompt           *string  `json:"mask_prompt"`
	MaskImageObjectName  string   `json:"mask_image_object_name"`
	ModelID              string   `json:"model_id" validate:"omitempty,ne=nova2"`
	OutPaintingMode      string   `json:"outPaintingMode" validate:"omitempty,oneof=DEFAULT PRECISE"`
	CfgScale             *float64 `json:"cfg_scale" validate:"omitnil,min=1.1,max=10"`
	Quality              string   `json:"quality" validate:"omitempty,oneof=standard premium"`
	Height               *int     `json:"height" validate:"omitnil,oneof=256 512 768 1024 1280 1536 1792 2048"`
	Width                *int     `json:"width" validate:"omitnil,oneof=256 512 768 1024 1280 1536 1792 2048"`
}

type editRequest struct {
	generationRequest
	Prompt               string `json:"prompt" validate:"notblank,max=1024"`
	InputImageObjectName string `json:"input_image_object_name" validate:"notblank"`
	ModelID              string `json:"model_id" validate:"omitempty,eq=nova2"`
	Height               *int   `json:"height" validate:"omitnil,gt=0"`
	Width                *int   `json:"width" validate:"omitnil,gt=0"`
}

type classifyRequest struct {
	GroupID         string `json:"group_id" validate:"notblank"`
	UserID          string `json:"user_id" validate:"notblank"`
	ImageBase64     string `json:"image_base64"`
	ImageObjectName string `json:"image_object_name"`
}

func (r classifyRequest) check() []fieldError {
	if isBlank(r.ImageBase64) && isBlank(r.ImageObjectName) {
		return []fieldError{{Loc: []string{"body"}, Msg: "Either image_base64 or image_object_name must be provided", Type: "value_error"}}
	}
	return nil
}

type enhanceRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	Language string `json:"language" validate:"omitempty,oneof=en ja"`
}

type presignRequest struct {
	ObjectName string `json:"object_name" validate:"notblank"`
	Expiration *int   `json:"expiration" validate:"omitnil,min=1,max=3600"`
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func orDefaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func cfgOrDefault(v *float64) *float64 {
	if v != nil {
		return v
	}
	def := defaultCfgScale
	return &def
}
