package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"library-rental-backend/internal/domain"
)

// pathID parses the {id} route variable. Anything that is not a positive int32 cannot name a
// record, so it is reported as not found.
func pathID(r *http.Request) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || v <= 0 {
		return 0, domain.ErrNotFound
	}
	return int32(v), nil
}

// queryInt32 returns def when the parameter is absent.
func queryInt32(r *http.Request, name string, def int32) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, domain.Invalidf("%s must be an integer", name)
	}
	return int32(v), nil
}

func pageParams(r *http.Request) (limit, offset int32, err error) {
	if limit, err = queryInt32(r, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt32(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// requester returns the authenticated identity, writing 401 when there is none.
func requester(w http.ResponseWriter, r *http.Request) (domain.Requester, bool) {
	req, ok := RequesterFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	}
	return req, ok
}
