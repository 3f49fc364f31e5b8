package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/pkg/interfaces/store"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as a go-errors response. Server side failures are
// logged with the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	if reqID, ok := hlog.IDFromRequest(r); ok {
		mapped = mapped.WithRequestID(reqID.String())
	}
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, mapped.ToErrorResponse(false, nil))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Invalid("invalid JSON body")
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid " + name)
	}
	return id, nil
}

func listOptions(r *http.Request) store.ListOptions {
	q := r.URL.Query()
	opts := store.ListOptions{}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		opts.Offset = v
	}
	return opts
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func listBody[T any](res store.ListResult[T]) listResponse[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: res.Total}
}
