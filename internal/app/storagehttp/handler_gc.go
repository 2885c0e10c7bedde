package storagehttp

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const manualGCTTL = 24 * time.Hour

// gcOnce вручную запускает сбор старых незапечатанных каталогов.
func (a *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	removed, err := a.disk.Sweep(manualGCTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Ctx(r.Context()).Info().Int("removed", removed).Msg("manual chunk gc finished")
	w.WriteHeader(http.StatusNoContent)
}
