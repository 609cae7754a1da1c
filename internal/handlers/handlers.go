// Package handlers implements the request pipeline: one handler per
// endpoint, cache-aside reads for the cacheable resources, and a single
// finalization point that turns every outcome into a response envelope.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"guild-gateway/internal/api"
	"guild-gateway/internal/cache"
	"guild-gateway/internal/common/logging"
	"guild-gateway/internal/directory"
)

// Handlers holds the pipeline's collaborators, injected at startup so
// tests can substitute doubles.
type Handlers struct {
	directory directory.Client
	cache     cache.Store
	logger    logging.Logger
}

// New builds the request pipeline. store may be nil; the pipeline then
// runs in always-miss mode.
func New(dir directory.Client, store cache.Store, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		directory: dir,
		cache:     store,
		logger:    logger.WithFields(logging.String("component", "handlers")),
	}
}

// Register wires the endpoint handlers onto the router
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/users", h.GetUsers).Methods("GET")
	r.HandleFunc("/user/{id}", h.GetUser).Methods("GET")
	r.HandleFunc("/getUsersCount", h.GetUsersCount).Methods("GET")
	r.HandleFunc("/channelUsers", h.ChannelUsers).Methods("GET")

	r.HandleFunc("/moveUser/{id}", h.MoveUser).Methods("POST")
	r.HandleFunc("/kickUserInVoice/{id}", h.KickUserInVoice).Methods("POST")
}

// requestBody carries the identifiers clients send in the request body
type requestBody struct {
	GuildID   string `json:"guildId"`
	ChannelID string `json:"channelId"`
}

// decodeBody reads the optional JSON body. A missing or malformed body
// decodes to the zero value; the per-field validation produces the
// domain error.
func decodeBody(r *http.Request) requestBody {
	var body requestBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	return body
}

// pathID returns the {id} path variable
func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// finish is the single finalization point for every handler: run the
// pipeline body, log failures with request context, and write exactly
// one envelope.
func (h *Handlers) finish(w http.ResponseWriter, r *http.Request, run func(ctx context.Context) (interface{}, error)) {
	data, err := run(r.Context())
	if err != nil {
		h.logger.Error("Request failed", err,
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		)
		api.WriteError(w, err)
		return
	}

	api.WriteSuccess(w, data)
}

// NotFound writes the uniform 404 envelope for unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	api.NotFound(w, r)
}
