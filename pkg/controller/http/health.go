package http

import (
	"net/http"

	"github.com/yamori/gleaner/pkg/domain/model"
	"github.com/yamori/gleaner/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &model.HealthStatus{
		Status:  "healthy",
		Service: "gleaner",
		Version: types.Version,
	})
}
