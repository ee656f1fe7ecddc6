package handlers

import (
	"net/http"
	"strings"

	"vto/internal/dispatch"
	"vto/internal/domain"
	"vto/internal/middleware"
)

type acceptedResponse struct {
	RequestID   string   `json:"request_id"`
	Status      string   `json:"status"`
	ObjectNames []string `json:"object_names"`
	Message     string   `json:"message"`
}

// NovaVTO accepts a virtual try-on request.
func (a *App) NovaVTO(w http.ResponseWriter, r *http.Request) {
	var req vtoRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.fillIdentifiers(&req.generationRequest)

	maskType := domain.MaskType(orDefaultString(req.MaskType, string(domain.MaskTypeGarment)))
	params := domain.VTOParams{
		UnitFields: domain.UnitFields{
			NumberOfImages: req.imageCount(),
			Quality:        orDefaultString(req.Quality, domain.QualityPremium),
			CfgScale:       cfgOrDefault(req.CfgScale),
			ObjectNames:    req.ObjectNames,
		},
		SourceImageObjectName:    req.SourceImageObjectName,
		ReferenceImageObjectName: req.ReferenceImageObjectName,
		MaskImageObjectName:      req.MaskImageObjectName,
		MaskType:                 maskType,
		MaskPrompt:               req.MaskPrompt,
		GarmentClass:             orDefaultString(req.GarmentClass, domain.DefaultGarmentClass),
		LongSleeveStyle:          req.LongSleeveStyle,
		TuckingStyle:             req.TuckingStyle,
		OuterLayerStyle:          req.OuterLayerStyle,
		MaskShape:                orDefaultString(req.MaskShape, domain.ShapeDefault),
		MaskShapePrompt:          orDefaultString(req.MaskShapePrompt, domain.ShapeDefault),
		PreserveBodyPose:         orDefaultString(req.PreserveBodyPose, domain.ShapeDefault),
		PreserveHands:            orDefaultString(req.PreserveHands, domain.ShapeDefault),
		PreserveFace:             orDefaultString(req.PreserveFace, domain.ShapeDefault),
		MergeStyle:               req.MergeStyle,
		ReturnMask:               req.ReturnMask,
		Seed:                     orDefault(req.Seed, domain.SeedUnset),
		DateFolder:               req.DateFolder,
		TimestampUID:             req.Timestamp + "_" + req.UID,
	}
	a.accept(w, r, req.generationRequest, params, "VTO processing request accepted. Images will be saved to S3.")
}

// NovaModel accepts a text-to-image request.
func (a *App) NovaModel(w http.ResponseWriter, r *http.Request) {
	var req textToImageRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.fillIdentifiers(&req.generationRequest)

	params := domain.TextToImageParams{
		UnitFields: domain.UnitFields{
			ModelID:        orDefaultString(req.ModelID, domain.ModelNovaCanvas),
			NumberOfImages: req.imageCount(),
			Quality:        orDefaultString(req.Quality, domain.QualityPremium),
			CfgScale:       cfgOrDefault(req.CfgScale),
			ObjectNames:    req.ObjectNames,
		},
		Prompt: req.Prompt,
		Height: orDefault(req.Height, defaultDimension),
		Width:  orDefault(req.Width, defaultDimension),
	}
	a.accept(w, r, req.generationRequest, params, "Nova Model processing request accepted. Images will be saved to S3.")
}

// NovaBackground accepts a background replacement request.
func (a *App) NovaBackground(w http.ResponseWriter, r *http.Request) {
	var req backgroundRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.fillIdentifiers(&req.generationRequest)

	maskPrompt := domain.DefaultBackgroundMaskPrompt
	if req.MaskPrompt != nil {
		maskPrompt = *req.MaskPrompt
	}
	params := domain.BackgroundParams{
		UnitFields: domain.UnitFields{
			ModelID:        orDefaultString(req.ModelID, domain.ModelNovaCanvas),
			NumberOfImages: req.imageCount(),
			Quality:        orDefaultString(req.Quality, domain.QualityPremium),
			CfgScale:       cfgOrDefault(req.CfgScale),
			ObjectNames:    req.ObjectNames,
		},
		Prompt:               req.Prompt,
		InputImageObjectName: req.InputImageObjectName,
		MaskPrompt:           maskPrompt,
		MaskImageObjectName:  req.MaskImageObjectName,
		OutPaintingMode:      orDefaultString(req.OutPaintingMode, domain.OutPaintingModeDefault),
		Height:               orDefault(req.Height, defaultEditSize),
		Width:                orDefault(req.Width, defaultEditSize),
	}
	a.accept(w, r, req.generationRequest, params, "Background replacement request accepted. Images will be saved to S3.")
}

// NovaEdit accepts an image edit request.
func (a *App) NovaEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.fillIdentifiers(&req.generationRequest)

	params := domain.EditParams{
		UnitFields: domain.UnitFields{
			ModelID:        domain.ModelNova2,
			NumberOfImages: req.imageCount(),
			ObjectNames:    req.ObjectNames,
		},
		Prompt:               req.Prompt,
		InputImageObjectName: req.InputImageObjectName,
		Height:               orDefault(req.Height, defaultEditSize),
		Width:                orDefault(req.Width, defaultEditSize),
	}
	a.accept(w, r, req.generationRequest, params, "Image edit request accepted. Images will be saved to S3.")
}

// fillIdentifiers allocates naming identifiers the client did not supply.
func (a *App) fillIdentifiers(g *generationRequest) {
	if g.UID != "" && g.DateFolder != "" && g.Timestamp != "" {
		return
	}
	ids := a.Addresser.New(g.GroupID, g.UserID)
	if g.UID == "" {
		g.UID = ids.UID
	}
	if g.DateFolder == "" {
		g.DateFolder = ids.DateFolder
	}
	if g.Timestamp == "" {
		g.Timestamp = ids.Timestamp
	}
}

func (a *App) accept(w http.ResponseWriter, r *http.Request, g generationRequest, params domain.Params, message string) {
	ctx := r.Context()
	req := dispatch.GenerationRequest{
		RequestID: g.UID,
		GroupID:   g.GroupID,
		UserID:    g.UserID,
		Locale:    middleware.LocaleFromContext(ctx),
		Country:   middleware.CountryFromContext(ctx),
		Params:    params,
	}
	a.Logger.Info().
		Str("request_id", req.RequestID).
		Str("group_id", g.GroupID).
		Str("user_id", g.UserID).
		Str("operation", string(params.Operation())).
		Str("object_names", strings.Join(g.ObjectNames, ",")).
		Msg("generation request received")

	status := dispatch.StatusAccepted
	if a.Dispatcher != nil {
		status = a.Dispatcher.Submit(ctx, req).Status
	} else {
		a.Logger.Error().Str("request_id", req.RequestID).Msg("no dispatcher configured, request not submitted")
	}
	a.json(w, http.StatusOK, acceptedResponse{
		RequestID:   req.RequestID,
		Status:      status,
		ObjectNames: g.ObjectNames,
		Message:     message,
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
