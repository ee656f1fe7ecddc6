// Package dispatch splits accepted generation requests into worker units and
// submits them asynchronously.
package dispatch

import (
	"vto/internal/domain"
	"vto/internal/providers/bedrock"
)

// GenerationRequest is a validated request ready for dispatch. Params carries the
// operation-specific worker input with the request-level unit fields.
type GenerationRequest struct {
	RequestID string
	GroupID   string
	UserID    string
	Locale    string
	Country   string
	Params    domain.Params
}

// Operation returns the worker operation of the request.
func (r GenerationRequest) Operation() domain.Operation {
	if r.Params == nil {
		return ""
	}
	return r.Params.Operation()
}

// OutputNames returns the pre-allocated object names of the whole request.
func (r GenerationRequest) OutputNames() []string {
	if r.Params == nil {
		return nil
	}
	return r.Params.Fields().ObjectNames
}

// Unit is one worker invocation.
type Unit struct {
	ImageIndex    int
	Params        domain.Params
	IgnoredParams []string
}

// Plan returns the units for req. Models that produce one image per call get one
// unit per requested image; all other models get a single unit with the full count.
func Plan(req GenerationRequest) []Unit {
	if req.Params == nil {
		return nil
	}
	fields := req.Params.Fields()
	if !bedrock.IsNova2(fields.ModelID) {
		return []Unit{{ImageIndex: 0, Params: req.Params}}
	}

	var ignored []string
	if fields.CfgScale != nil {
		ignored = append(ignored, "cfg_scale")
	}
	if fields.Quality != "" {
		ignored = append(ignored, "quality")
	}

	n := fields.NumberOfImages
	if n < 1 {
		n = 1
	}
	units := make([]Unit, 0, n)
	for i := 0; i < n; i++ {
		f := fields
		f.NumberOfImages = 1
		f.CfgScale = nil
		f.Quality = ""
		f.ObjectNames = nil
		if i < len(fields.ObjectNames) {
			f.ObjectNames = []string{fields.ObjectNames[i]}
		}
		idx := i
		f.ImageIndex = &idx
		units = append(units, Unit{ImageIndex: i, Params: req.Params.WithFields(f), IgnoredParams: ignored})
	}
	return units
}
