// Package worker runs one generation unit per invocation and stores its outputs.
package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vto/internal/domain"
	"vto/internal/mask"
	"vto/internal/payload"
	"vto/internal/providers/bedrock"
	"vto/internal/storage"
	"vto/internal/translate"
)

const imageContentType = "image/png"

// ImageModel is the Bedrock surface the worker calls.
type ImageModel interface {
	InvokeJSON(ctx context.Context, modelID string, body, out any) error
	ConverseImage(ctx context.Context, req bedrock.ConverseRequest) ([]byte, error)
}

// Response is the function result, shaped like an API Gateway proxy reply.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type Options struct {
	Store      storage.Store
	Model      ImageModel
	Translator translate.Translator
	Logger     *zerolog.Logger
}

type Handler struct {
	store      storage.Store
	model      ImageModel
	translator translate.Translator
	masks      *mask.Resolver
	logger     zerolog.Logger
}

func NewHandler(opts Options) (*Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("worker requires a store")
	}
	if opts.Model == nil {
		return nil, errors.New("worker requires an image model")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	t := opts.Translator
	if t == nil {
		t = translate.Passthrough{}
	}
	return &Handler{
		store:      opts.Store,
		model:      opts.Model,
		translator: t,
		masks:      mask.NewResolver(t, &logger),
		logger:     logger,
	}, nil
}

// Handle routes a raw event by its parameter key. It never returns an error;
// failures are reported in the status code.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (Response, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(event, &keys); err != nil {
		h.logger.Error().Err(err).Msg("worker: event is not a JSON object")
		return failure(400, "event must be a JSON object", "Request processing failed"), nil
	}

	switch {
	case isHealthCheck(keys["test"]):
		h.logger.Info().Msg("worker: health check")
		return respond(200, map[string]any{
			"message": "Health check successful",
			"status":  "healthy",
			"service": "vto_handler",
		}), nil
	case keys["vto_params"] != nil:
		p := domain.VTOParams{
			MaskType:     domain.MaskTypeGarment,
			GarmentClass: domain.DefaultGarmentClass,
			Seed:         domain.SeedUnset,
		}
		if err := decodeParams(keys["vto_params"], &p); err != nil {
			return failure(400, "No VTO parameters found in event", "VTO processing failed"), nil
		}
		return h.virtualTryOn(ctx, p), nil
	case keys["replace_background_params"] != nil:
		var p domain.BackgroundParams
		if err := decodeParams(keys["replace_background_params"], &p); err != nil {
			return failure(400, err.Error(), "Background replacement failed"), nil
		}
		return h.replaceBackground(ctx, p), nil
	case keys["text_to_image_params"] != nil:
		var p domain.TextToImageParams
		if err := decodeParams(keys["text_to_image_params"], &p); err != nil {
			return failure(400, err.Error(), "Text-to-image generation failed"), nil
		}
		return h.textToImage(ctx, p), nil
	case keys["image_edit_params"] != nil:
		var p domain.EditParams
		if err := decodeParams(keys["image_edit_params"], &p); err != nil {
			return failure(400, err.Error(), "Image edit failed"), nil
		}
		return h.imageEdit(ctx, p), nil
	}

	h.logger.Error().Msg("worker: no recognized parameter type found in event")
	return failure(400,
		"No recognized parameter type (vto_params, replace_background_params, text_to_image_params, image_edit_params, or health_check) found in event",
		"Request processing failed"), nil
}

func (h *Handler) virtualTryOn(ctx context.Context, p domain.VTOParams) Response {
	const failed = "VTO processing failed"
	log := h.logger.With().Str("operation", string(domain.OperationVTO)).Str("timestamp_uid", p.TimestampUID).Logger()

	source, err := h.loadImage(ctx, p.SourceImageObjectName)
	if err != nil {
		log.Error().Err(err).Str("object_name", p.SourceImageObjectName).Msg("worker: load source image failed")
		return failure(500, "Failed to load source image from S3: "+p.SourceImageObjectName, failed)
	}
	reference, err := h.loadImage(ctx, p.ReferenceImageObjectName)
	if err != nil {
		log.Error().Err(err).Str("object_name", p.ReferenceImageObjectName).Msg("worker: load reference image failed")
		return failure(500, "Failed to load reference image from S3: "+p.ReferenceImageObjectName, failed)
	}
	var maskImage []byte
	if p.MaskImageObjectName != "" {
		maskImage, err = h.loadImage(ctx, p.MaskImageObjectName)
		if err != nil {
			log.Warn().Err(err).Str("object_name", p.MaskImageObjectName).Msg("worker: load mask image failed")
		}
	}

	spec, err := h.masks.Resolve(ctx, mask.Input{
		MaskType:         p.MaskType,
		MaskPrompt:       p.MaskPrompt,
		MaskImage:        maskImage,
		GarmentClass:     p.GarmentClass,
		LongSleeveStyle:  p.LongSleeveStyle,
		TuckingStyle:     p.TuckingStyle,
		OuterLayerStyle:  p.OuterLayerStyle,
		MaskShape:        p.MaskShape,
		MaskShapePrompt:  p.MaskShapePrompt,
		PreserveBodyPose: p.PreserveBodyPose,
		PreserveHands:    p.PreserveHands,
		PreserveFace:     p.PreserveFace,
		MergeStyle:       p.MergeStyle,
	})
	if err != nil {
		log.Error().Err(err).Msg("worker: mask resolution failed")
		if errors.Is(err, domain.ErrMissingMaskImage) || errors.Is(err, domain.ErrInvalidRequest) {
			return failure(400, err.Error(), failed)
		}
		return failure(500, err.Error(), failed)
	}

	body := payload.NewVirtualTryOn(encode(source), encode(reference), spec).
		WithNumberOfImages(p.NumberOfImages).
		WithQuality(p.Quality).
		WithCfgScale(p.CfgScale).
		WithSeed(p.Seed).
		WithReturnMask(p.ReturnMask).
		Build()

	images, err := h.invokeImages(ctx, domain.ModelNovaCanvas, body)
	if err != nil {
		log.Error().Err(err).Msg("worker: virtual try-on failed")
		return failure(500, err.Error(), failed)
	}
	stored := h.storeAll(ctx, log, images, p.ObjectNames)
	return completed("VTO processing request accepted and processed", stored)
}

func (h *Handler) textToImage(ctx context.Context, p domain.TextToImageParams) Response {
	const failed = "Text-to-image generation failed"
	log := h.logger.With().Str("operation", string(domain.OperationTextToImage)).Str("model_id", p.ModelID).Logger()

	if strings.TrimSpace(p.Prompt) == "" {
		return failure(400, "Prompt is required for text-to-image generation", failed)
	}
	prompt := h.toEnglish(ctx, log, p.Prompt)
	height, width := dims(p.Height, p.Width, 1024)

	if bedrock.IsNova2(p.ModelID) {
		if p.NumberOfImages > 1 {
			log.Warn().Int("number_of_images", p.NumberOfImages).Msg("worker: nova2 generates one image per unit")
		}
		return h.converseOne(ctx, log, payload.Nova2Generate(prompt, height, width), p.ObjectNames, imageIndex(p.ImageIndex), "Nova 2 image generation")
	}

	modelID := p.ModelID
	if modelID == "" {
		modelID = domain.ModelNovaCanvas
	}
	body := payload.NewTextToImage(prompt, height, width).
		WithNumberOfImages(p.NumberOfImages).
		WithQuality(p.Quality).
		WithCfgScale(p.CfgScale).
		Build()

	images, err := h.invokeImages(ctx, modelID, body)
	if err != nil {
		log.Error().Err(err).Msg("worker: text-to-image failed")
		return failure(500, err.Error(), failed)
	}
	stored := h.storeAll(ctx, log, images, p.ObjectNames)
	return completed("Text-to-image generation request accepted and processed", stored)
}

func (h *Handler) replaceBackground(ctx context.Context, p domain.BackgroundParams) Response {
	const failed = "Background replacement failed"
	log := h.logger.With().Str("operation", string(domain.OperationReplaceBackground)).Logger()

	if strings.TrimSpace(p.Prompt) == "" {
		return failure(400, "Prompt is required for background replacement", failed)
	}
	if strings.TrimSpace(p.InputImageObjectName) == "" {
		return failure(400, "input_image_object_name is required for background replacement", failed)
	}
	input, err := h.loadImage(ctx, p.InputImageObjectName)
	if err != nil {
		log.Error().Err(err).Str("object_name", p.InputImageObjectName).Msg("worker: load input image failed")
		return failure(500, "Failed to load input image from S3: "+p.InputImageObjectName, failed)
	}

	var maskEncoded string
	if p.MaskImageObjectName != "" {
		raw, err := h.loadImage(ctx, p.MaskImageObjectName)
		if err == nil {
			maskEncoded, err = mask.BinarizeBase64(raw)
		}
		if err != nil {
			log.Warn().Err(err).Str("object_name", p.MaskImageObjectName).Msg("worker: mask image unusable, falling back to mask prompt")
			maskEncoded = ""
		}
	}

	prompt := h.toEnglish(ctx, log, p.Prompt)
	height, width := dims(p.Height, p.Width, 512)
	body := payload.NewOutpainting(prompt, encode(input), height, width).
		WithMode(p.OutPaintingMode).
		WithMaskPrompt(p.MaskPrompt).
		WithMaskImage(maskEncoded).
		WithNumberOfImages(p.NumberOfImages).
		WithQuality(p.Quality).
		WithCfgScale(p.CfgScale).
		Build()

	modelID := p.ModelID
	if modelID == "" {
		modelID = domain.ModelNovaCanvas
	}
	images, err := h.invokeImages(ctx, modelID, body)
	if err != nil {
		log.Error().Err(err).Msg("worker: background replacement failed")
		return failure(500, err.Error(), failed)
	}
	stored := h.storeAll(ctx, log, images, p.ObjectNames)
	return completed("Background replacement request accepted and processed", stored)
}

func (h *Handler) imageEdit(ctx context.Context, p domain.EditParams) Response {
	const failed = "Image edit failed"
	log := h.logger.With().Str("operation", string(domain.OperationImageEdit)).Logger()

	if strings.TrimSpace(p.Prompt) == "" {
		return failure(400, "Prompt is required", failed)
	}
	input, err := h.loadImage(ctx, p.InputImageObjectName)
	if err != nil {
		log.Error().Err(err).Str("object_name", p.InputImageObjectName).Msg("worker: load input image failed")
		return failure(500, "Failed to load input image from S3: "+p.InputImageObjectName, failed)
	}
	prompt := h.toEnglish(ctx, log, p.Prompt)
	height, width := dims(p.Height, p.Width, 512)
	return h.converseOne(ctx, log, payload.Nova2Edit(prompt, input, height, width), p.ObjectNames, imageIndex(p.ImageIndex), "Nova 2 image edit")
}

// converseOne runs a single Nova 2 call and stores its image at the first object name.
func (h *Handler) converseOne(ctx context.Context, log zerolog.Logger, req bedrock.ConverseRequest, objectNames []string, index int, label string) Response {
	failed := label + " failed"
	log = log.With().Int("image_index", index).Logger()

	start := time.Now()
	image, err := h.model.ConverseImage(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("worker: converse failed")
		if errors.Is(err, bedrock.ErrNoImage) {
			return failure(500, "No image generated", failed)
		}
		return failure(500, err.Error(), failed)
	}
	log.Info().Dur("duration", time.Since(start)).Int("bytes", len(image)).Msg("worker: image generated")

	if len(objectNames) == 0 {
		log.Warn().Msg("worker: no object names provided, image discarded")
	} else if err := h.store.Put(ctx, objectNames[0], image, imageContentType); err != nil {
		log.Error().Err(err).Str("object_name", objectNames[0]).Msg("worker: store image failed")
		return failure(500, "Failed to save image to S3", failed)
	}
	return respond(200, map[string]any{
		"message":     label + " completed",
		"status":      "completed",
		"image_index": index,
	})
}

func (h *Handler) invokeImages(ctx context.Context, modelID string, body any) ([]string, error) {
	var resp payload.ImageResponse
	start := time.Now()
	if err := h.model.InvokeJSON(ctx, modelID, body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: image generation error: %s", domain.ErrProviderFailure, *resp.Error)
	}
	h.logger.Info().Str("model_id", modelID).Dur("duration", time.Since(start)).Int("images", len(resp.Images)).Msg("worker: images generated")
	return resp.Images, nil
}

// storeAll writes images[i] to objectNames[i]. Individual failures are logged.
func (h *Handler) storeAll(ctx context.Context, log zerolog.Logger, images, objectNames []string) int {
	stored := 0
	for i, img := range images {
		if i >= len(objectNames) {
			log.Warn().Int("image_index", i).Msg("worker: no object name for image")
			continue
		}
		data, err := base64.StdEncoding.DecodeString(img)
		if err == nil {
			err = h.store.Put(ctx, objectNames[i], data, imageContentType)
		}
		if err != nil {
			log.Warn().Err(err).Int("image_index", i).Str("object_name", objectNames[i]).Msg("worker: store image failed")
			continue
		}
		stored++
	}
	log.Info().Int("stored", stored).Msg("worker: images saved")
	return stored
}

func (h *Handler) loadImage(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, storage.ErrNotFound
	}
	data, err := h.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("object %s is empty", key)
	}
	return data, nil
}

func (h *Handler) toEnglish(ctx context.Context, log zerolog.Logger, text string) string {
	res := h.translator.ToEnglish(ctx, text)
	if res.Degraded {
		log.Warn().Msg("worker: prompt translation degraded, using original text")
	}
	return res.Text
}

func decodeParams(raw json.RawMessage, dst any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return errors.New("parameters are empty")
	}
	return json.Unmarshal(raw, dst)
}

func isHealthCheck(raw json.RawMessage) bool {
	var v string
	return raw != nil && json.Unmarshal(raw, &v) == nil && v == domain.HealthCheckEvent
}

func dims(height, width, def int) (int, int) {
	if height <= 0 {
		height = def
	}
	if width <= 0 {
		width = def
	}
	return height, width
}

func imageIndex(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func respond(status int, body map[string]any) Response {
	b, _ := json.Marshal(body)
	return Response{StatusCode: status, Body: string(b)}
}

func failure(status int, errMsg, message string) Response {
	return respond(status, map[string]any{"error": errMsg, "message": message})
}

func completed(message string, stored int) Response {
	return respond(200, map[string]any{"message": message, "status": "completed", "stored": stored})
}
