// Package payload builds the InvokeModel request bodies for Nova Canvas and Titan.
// Each WithX setter is a no-op when given the task's baseline value, so a body
// only carries the settings that differ from what the service assumes.
package payload

import (
	"vto/internal/domain"
	"vto/internal/mask"
)

const (
	TaskVirtualTryOn = "VIRTUAL_TRY_ON"
	TaskTextImage    = "TEXT_IMAGE"
	TaskOutpainting  = "OUTPAINTING"
)

// Baselines per task.
const (
	baselineImages      = 1
	baselineVTOCfg      = 3.0
	baselineGenerateCfg = 6.5
)

// GenerationConfig is imageGenerationConfig. Every field is optional on the wire.
type GenerationConfig struct {
	NumberOfImages int      `json:"numberOfImages,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	CfgScale       *float64 `json:"cfgScale,omitempty"`
	Seed           *int     `json:"seed,omitempty"`
	Height         int      `json:"height,omitempty"`
	Width          int      `json:"width,omitempty"`
}

func (c *GenerationConfig) empty() bool {
	return c == nil || *c == (GenerationConfig{})
}

// generation holds the setters shared by all three tasks.
type generation struct {
	cfg         GenerationConfig
	baselineCfg float64
}

func (g *generation) numberOfImages(n int) {
	if n != baselineImages && n > 0 {
		g.cfg.NumberOfImages = n
	}
}

func (g *generation) quality(q string) {
	if q != "" && q != domain.QualityStandard {
		g.cfg.Quality = q
	}
}

func (g *generation) cfgScale(v *float64) {
	if v != nil && *v != g.baselineCfg {
		scale := *v
		g.cfg.CfgScale = &scale
	}
}

func (g *generation) seed(s int) {
	if s != domain.SeedUnset {
		seed := s
		g.cfg.Seed = &seed
	}
}

func (g *generation) config() *GenerationConfig {
	if g.cfg.empty() {
		return nil
	}
	out := g.cfg
	return &out
}

// VirtualTryOnRequest is the VIRTUAL_TRY_ON body.
type VirtualTryOnRequest struct {
	TaskType              string             `json:"taskType"`
	VirtualTryOnParams    VirtualTryOnParams `json:"virtualTryOnParams"`
	ImageGenerationConfig *GenerationConfig  `json:"imageGenerationConfig,omitempty"`
}

type VirtualTryOnParams struct {
	SourceImage      string            `json:"sourceImage"`
	ReferenceImage   string            `json:"referenceImage"`
	MaskType         domain.MaskType   `json:"maskType"`
	PromptBasedMask  *mask.PromptMask  `json:"promptBasedMask,omitempty"`
	GarmentBasedMask *mask.GarmentMask `json:"garmentBasedMask,omitempty"`
	ImageBasedMask   *mask.ImageMask   `json:"imageBasedMask,omitempty"`
	MaskExclusions   *mask.Exclusions  `json:"maskExclusions,omitempty"`
	MergeStyle       string            `json:"mergeStyle,omitempty"`
	ReturnMask       bool              `json:"returnMask,omitempty"`
}

// VirtualTryOn composes a try-on body. Images are base64 encoded.
type VirtualTryOn struct {
	gen    generation
	params VirtualTryOnParams
}

func NewVirtualTryOn(sourceImage, referenceImage string, spec mask.Spec) *VirtualTryOn {
	return &VirtualTryOn{
		gen: generation{baselineCfg: baselineVTOCfg},
		params: VirtualTryOnParams{
			SourceImage:      sourceImage,
			ReferenceImage:   referenceImage,
			MaskType:         spec.Type,
			PromptBasedMask:  spec.Prompt,
			GarmentBasedMask: spec.Garment,
			ImageBasedMask:   spec.Image,
			MaskExclusions:   spec.Exclusions,
			MergeStyle:       spec.MergeStyle,
		},
	}
}

func (b *VirtualTryOn) WithNumberOfImages(n int) *VirtualTryOn { b.gen.numberOfImages(n); return b }
func (b *VirtualTryOn) WithQuality(q string) *VirtualTryOn     { b.gen.quality(q); return b }
func (b *VirtualTryOn) WithCfgScale(v *float64) *VirtualTryOn  { b.gen.cfgScale(v); return b }
func (b *VirtualTryOn) WithSeed(s int) *VirtualTryOn           { b.gen.seed(s); return b }
func (b *VirtualTryOn) WithReturnMask(r bool) *VirtualTryOn    { b.params.ReturnMask = r; return b }

func (b *VirtualTryOn) Build() VirtualTryOnRequest {
	return VirtualTryOnRequest{
		TaskType:              TaskVirtualTryOn,
		VirtualTryOnParams:    b.params,
		ImageGenerationConfig: b.gen.config(),
	}
}

// TextToImageRequest is the TEXT_IMAGE body.
type TextToImageRequest struct {
	TaskType              string            `json:"taskType"`
	TextToImageParams     TextToImageParams `json:"textToImageParams"`
	ImageGenerationConfig *GenerationConfig `json:"imageGenerationConfig,omitempty"`
}

type TextToImageParams struct {
	Text string `json:"text"`
}

type TextToImage struct {
	gen  generation
	text string
}

// NewTextToImage composes a text-to-image body. Dimensions are always sent.
func NewTextToImage(text string, height, width int) *TextToImage {
	b := &TextToImage{gen: generation{baselineCfg: baselineGenerateCfg}, text: text}
	b.gen.cfg.Height = height
	b.gen.cfg.Width = width
	return b
}

func (b *TextToImage) WithNumberOfImages(n int) *TextToImage { b.gen.numberOfImages(n); return b }
func (b *TextToImage) WithQuality(q string) *TextToImage     { b.gen.quality(q); return b }
func (b *TextToImage) WithCfgScale(v *float64) *TextToImage  { b.gen.cfgScale(v); return b }
func (b *TextToImage) WithSeed(s int) *TextToImage           { b.gen.seed(s); return b }

func (b *TextToImage) Build() TextToImageRequest {
	return TextToImageRequest{
		TaskType:              TaskTextImage,
		TextToImageParams:     TextToImageParams{Text: b.text},
		ImageGenerationConfig: b.gen.config(),
	}
}

// OutpaintingRequest is the OUTPAINTING body.
type OutpaintingRequest struct {
	TaskType              string            `json:"taskType"`
	OutPaintingParams     OutPaintingParams `json:"outPaintingParams"`
	ImageGenerationConfig *GenerationConfig `json:"imageGenerationConfig,omitempty"`
}

// OutPaintingParams carries either MaskImage or MaskPrompt, never both.
type OutPaintingParams struct {
	Text            string `json:"text"`
	Image           string `json:"image"`
	OutPaintingMode string `json:"outPaintingMode"`
	MaskImage       string `json:"maskImage,omitempty"`
	MaskPrompt      string `json:"maskPrompt,omitempty"`
}

type Outpainting struct {
	gen    generation
	params OutPaintingParams
}

// NewOutpainting composes a background replacement body. Dimensions are always sent.
func NewOutpainting(text, image string, height, width int) *Outpainting {
	b := &Outpainting{
		gen: generation{baselineCfg: baselineGenerateCfg},
		params: OutPaintingParams{
			Text:            text,
			Image:           image,
			OutPaintingMode: domain.OutPaintingModeDefault,
			MaskPrompt:      domain.DefaultBackgroundMaskPrompt,
		},
	}
	b.gen.cfg.Height = height
	b.gen.cfg.Width = width
	return b
}

func (b *Outpainting) WithNumberOfImages(n int) *Outpainting { b.gen.numberOfImages(n); return b }
func (b *Outpainting) WithQuality(q string) *Outpainting     { b.gen.quality(q); return b }
func (b *Outpainting) WithCfgScale(v *float64) *Outpainting  { b.gen.cfgScale(v); return b }
func (b *Outpainting) WithSeed(s int) *Outpainting           { b.gen.seed(s); return b }

func (b *Outpainting) WithMode(mode string) *Outpainting {
	if mode != "" {
		b.params.OutPaintingMode = mode
	}
	return b
}

// WithMaskPrompt sets the text mask unless a mask image is already attached.
func (b *Outpainting) WithMaskPrompt(prompt string) *Outpainting {
	if prompt != "" && b.params.MaskImage == "" {
		b.params.MaskPrompt = prompt
	}
	return b
}

// WithMaskImage attaches a binarized, base64 encoded mask, which replaces any mask prompt.
func (b *Outpainting) WithMaskImage(encoded string) *Outpainting {
	if encoded != "" {
		b.params.MaskImage = encoded
		b.params.MaskPrompt = ""
	}
	return b
}

func (b *Outpainting) Build() OutpaintingRequest {
	return OutpaintingRequest{
		TaskType:              TaskOutpainting,
		OutPaintingParams:     b.params,
		ImageGenerationConfig: b.gen.config(),
	}
}

// ImageResponse is the common reply of the image tasks.
type ImageResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error,omitempty"`
}
