package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/miretskiy/mlqsim/simulator"
)

// maxWorkloadBytes bounds the simulate request body
const maxWorkloadBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// handleSimulate runs a posted workload to completion and returns its report.
// Rejected workloads get 400 with the validation message.
func handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var wl simulator.Workload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWorkloadBytes)).Decode(&wl); err != nil {
		simulationsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid workload: " + err.Error()})
		return
	}
	wl.ApplyDefaults()

	report, err := simulator.RunWorkload(wl, nil)
	switch {
	case errors.Is(err, simulator.ErrInvalidConfig):
		simulationsTotal.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		simulationsTotal.WithLabelValues("failed").Inc()
		log.Printf("Error running workload: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	simulationsTotal.WithLabelValues("completed").Inc()
	updatePrometheusMetrics(report.Metrics)
	log.Printf("Simulated %d processes in %d ticks", len(wl.Processes), report.Clock)
	writeJSON(w, http.StatusOK, report)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
