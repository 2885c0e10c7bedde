package storagehttp

import (
	"encoding/json"
	"net/http"

	"github.com/sir_venger/gridfiles/pkg/storageproto"
)

// health возвращает агрегированную статистику по данным стоража.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := a.disk.Ping(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	total, err := a.disk.Usage()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// У стораджа нет сложных метрик, поэтому отдаём только total и флаг OK.
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(storageproto.Health{
		OK:         true,
		TotalBytes: total,
	})
}
