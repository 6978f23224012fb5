package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/sensor_monitor/internal/bias"
	"github.com/relabs-tech/sensor_monitor/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dashboards
	},
}

// calibrateResponse is the JSON answer of POST /calibrate.
type calibrateResponse struct {
	OK        bool        `json:"ok"`
	Bias      *bias.Model `json:"bias,omitempty"`
	Persisted bool        `json:"persisted"`
	Error     string      `json:"error,omitempty"`
}

// RunWeb serves the HTTP surface of the monitor:
//
//	GET  /data      latest telemetry snapshot (basic auth)
//	POST /calibrate blocking calibration trigger (basic auth)
//	GET  /api/live  websocket telemetry stream
//
// Blocks forever; intended to run on the main goroutine after
// Monitor.Start.
func RunWeb(m *Monitor) error {
	cfg := config.Get()

	http.HandleFunc("/data", withAuth(cfg, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(m.Telemetry()); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	}))

	http.HandleFunc("/calibrate", withAuth(cfg, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}

		log.Println("web: calibration requested")
		outcome, err := m.Calibrate()

		w.Header().Set("Content-Type", "application/json")
		resp := calibrateResponse{}
		switch {
		case errors.Is(err, bias.ErrOrientationInvalid):
			resp.Error = "orientation invalid: unit was not flat and level"
		case err != nil:
			resp.Error = err.Error()
		default:
			resp.OK = true
			resp.Bias = &outcome.Model
			resp.Persisted = outcome.PersistErr == nil
			if outcome.PersistErr != nil {
				resp.Error = outcome.PersistErr.Error()
			}
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	}))

	http.HandleFunc("/api/live", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
		defer ticker.Stop()

		for range ticker.C {
			if err := conn.WriteJSON(m.Telemetry()); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// withAuth enforces HTTP basic auth when credentials are configured.
func withAuth(cfg *config.Config, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.HTTPUser != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != cfg.HTTPUser || pass != cfg.HTTPPass {
				w.Header().Set("WWW-Authenticate", `Basic realm="sensor_monitor"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}
