package stock

import (
	"net/http"

	"github.com/stocktide/stocktide/internal/auth"
)

func actorID(r *http.Request) int64 {
	return auth.UserIDFromContext(r.Context())
}
