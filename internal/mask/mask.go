// Package mask decides how a try-on request locates the region to replace.
package mask

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vto/internal/domain"
	"vto/internal/translate"
)

// Input carries the raw mask-related request fields. MaskImage holds the bytes
// of the caller-supplied mask when one was loaded from storage.
type Input struct {
	MaskType         domain.MaskType
	MaskPrompt       string
	MaskImage        []byte
	GarmentClass     string
	LongSleeveStyle  string
	TuckingStyle     string
	OuterLayerStyle  string
	MaskShape        string
	MaskShapePrompt  string
	PreserveBodyPose string
	PreserveHands    string
	PreserveFace     string
	MergeStyle       string
}

// Spec is the resolved mask. Exactly one of Prompt, Garment and Image is set,
// matching Type.
type Spec struct {
	Type       domain.MaskType
	Prompt     *PromptMask
	Garment    *GarmentMask
	Image      *ImageMask
	Exclusions *Exclusions
	MergeStyle string
}

type PromptMask struct {
	MaskPrompt string `json:"maskPrompt"`
	MaskShape  string `json:"maskShape,omitempty"`
}

type GarmentMask struct {
	GarmentClass   string          `json:"garmentClass"`
	GarmentStyling *GarmentStyling `json:"garmentStyling,omitempty"`
	MaskShape      string          `json:"maskShape,omitempty"`
}

type GarmentStyling struct {
	LongSleeveStyle string `json:"longSleeveStyle,omitempty"`
	TuckingStyle    string `json:"tuckingStyle,omitempty"`
	OuterLayerStyle string `json:"outerLayerStyle,omitempty"`
}

// ImageMask holds a binarized mask, base64 encoded.
type ImageMask struct {
	MaskImage string `json:"maskImage"`
}

type Exclusions struct {
	PreserveBodyPose string `json:"preserveBodyPose,omitempty"`
	PreserveHands    string `json:"preserveHands,omitempty"`
	PreserveFace     string `json:"preserveFace,omitempty"`
}

// Resolver turns an Input into a Spec. Prompt masks are translated to English first.
type Resolver struct {
	Translator translate.Translator
	Logger     zerolog.Logger
}

// NewResolver builds a Resolver. A nil translator passes prompts through unchanged.
func NewResolver(t translate.Translator, logger *zerolog.Logger) *Resolver {
	if t == nil {
		t = translate.Passthrough{}
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Resolver{Translator: t, Logger: l}
}

// Resolve applies mask precedence: a non-blank prompt always wins, otherwise the
// declared type decides.
func (r *Resolver) Resolve(ctx context.Context, in Input) (Spec, error) {
	spec := Spec{
		Exclusions: exclusions(in),
		MergeStyle: strings.TrimSpace(in.MergeStyle),
	}

	kind := in.MaskType
	if kind == "" {
		kind = domain.MaskTypeGarment
	}
	if strings.TrimSpace(in.MaskPrompt) != "" {
		kind = domain.MaskTypePrompt
	}
	spec.Type = kind

	switch kind {
	case domain.MaskTypePrompt:
		if strings.TrimSpace(in.MaskPrompt) == "" {
			return Spec{}, fmt.Errorf("%w: mask_prompt is required for PROMPT mask type", domain.ErrInvalidRequest)
		}
		translated := r.Translator.ToEnglish(ctx, in.MaskPrompt)
		if translated.Degraded {
			r.Logger.Warn().Msg("mask prompt translation degraded, using original text")
		}
		spec.Prompt = &PromptMask{
			MaskPrompt: translated.Text,
			MaskShape:  unlessDefault(in.MaskShapePrompt),
		}
	case domain.MaskTypeGarment:
		if strings.TrimSpace(in.GarmentClass) == "" {
			return Spec{}, fmt.Errorf("%w: garment_class is required for GARMENT mask type", domain.ErrInvalidRequest)
		}
		spec.Garment = &GarmentMask{
			GarmentClass:   in.GarmentClass,
			GarmentStyling: styling(in),
			MaskShape:      unlessDefault(in.MaskShape),
		}
	case domain.MaskTypeImage:
		if len(in.MaskImage) == 0 {
			return Spec{}, domain.ErrMissingMaskImage
		}
		encoded, err := BinarizeBase64(in.MaskImage)
		if err != nil {
			return Spec{}, err
		}
		spec.Image = &ImageMask{MaskImage: encoded}
	default:
		return Spec{}, fmt.Errorf("%w: unknown mask type %q", domain.ErrInvalidRequest, kind)
	}

	return spec, nil
}

func styling(in Input) *GarmentStyling {
	s := GarmentStyling{
		LongSleeveStyle: strings.TrimSpace(in.LongSleeveStyle),
		TuckingStyle:    strings.TrimSpace(in.TuckingStyle),
		OuterLayerStyle: strings.TrimSpace(in.OuterLayerStyle),
	}
	if s == (GarmentStyling{}) {
		return nil
	}
	return &s
}

func exclusions(in Input) *Exclusions {
	e := Exclusions{
		PreserveBodyPose: unlessDefault(in.PreserveBodyPose),
		PreserveHands:    unlessDefault(in.PreserveHands),
		PreserveFace:     unlessDefault(in.PreserveFace),
	}
	if e == (Exclusions{}) {
		return nil
	}
	return &e
}

func unlessDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == domain.ShapeDefault {
		return ""
	}
	return v
}
