package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"vto/internal/http/handlers"
	"vto/internal/infra"
	"vto/internal/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	Logger         infra.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/", app.Root)
	r.Get("/health", app.Health)

	r.Route("/vto", func(r chi.Router) {
		r.Post("/nova/process", app.NovaVTO)
		r.Post("/nova/model", app.NovaModel)
		r.Post("/nova/background", app.NovaBackground)
		r.Post("/nova/edit", app.NovaEdit)
		r.Post("/classify-garment", app.ClassifyGarment)
	})
	r.Post("/enhance-prompt", app.EnhancePrompt)

	r.Route("/utils", func(r chi.Router) {
		r.Get("/get/objectname", app.ObjectNames)
		r.Post("/s3url/upload", app.PresignUpload)
		r.Post("/s3url/download", app.PresignDownload)
	})

	return r
}
