package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"

	"vto/internal/addressing"
	"vto/internal/dispatch"
	"vto/internal/infra"
	"vto/internal/providers/garment"
	"vto/internal/providers/prompt"
	"vto/internal/storage"
)

// Dispatcher accepts a validated generation request and submits its units.
type Dispatcher interface {
	Submit(ctx context.Context, req dispatch.GenerationRequest) dispatch.Outcome
}

type App struct {
	Config     infra.Config
	Logger     infra.Logger
	Store      storage.Store
	Dispatcher Dispatcher
	Addresser  *addressing.Addresser
	Classifier garment.Classifier
	Enhancer   prompt.Enhancer

	validate *validator.Validate
}

type Options struct {
	Config     infra.Config
	Logger     *zerolog.Logger
	Store      storage.Store
	Dispatcher Dispatcher
	Addresser  *addressing.Addresser
	Classifier garment.Classifier
	Enhancer   prompt.Enhancer
}

func NewApp(opts Options) *App {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	addr := opts.Addresser
	if addr == nil {
		addr = addressing.New()
	}
	return &App{
		Config:     opts.Config,
		Logger:     logger,
		Store:      opts.Store,
		Dispatcher: opts.Dispatcher,
		Addresser:  addr,
		Classifier: opts.Classifier,
		Enhancer:   opts.Enhancer,
		validate:   newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Detail: message, Code: code})
}

// fieldError mirrors one entry of a 422 detail list.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (a *App) invalid(w http.ResponseWriter, errs []fieldError) {
	a.json(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			a.error(w, http.StatusBadRequest, "bad_request", "request body is empty")
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			a.invalid(w, []fieldError{{Loc: []string{"body", typeErr.Field}, Msg: "invalid type, expected " + typeErr.Type.String(), Type: "type_error"}})
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON payload")
		return false
	}
	var errs []fieldError
	if err := a.validate.Struct(dst); err != nil {
		errs = append(errs, validationErrors(err)...)
	}
	if c, ok := dst.(interface{ check() []fieldError }); ok && len(errs) == 0 {
		errs = append(errs, c.check()...)
	}
	if len(errs) > 0 {
		a.invalid(w, errs)
		return false
	}
	return true
}

func validationErrors(err error) []fieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
	out := make([]fieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fieldError{
			Loc:  []string{"body", fe.Field()},
			Msg:  describe(fe),
			Type: fe.Tag(),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must be non-empty string"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "eq":
		return "must be " + fe.Param()
	case "ne":
		return "must not be " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
