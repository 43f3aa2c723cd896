package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miretskiy/mlqsim/simulator"
)

// defaultTickInterval paces auto-stepping after a "start" command
const defaultTickInterval = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// Client message types
type ClientMessage struct {
	Type      string                        `json:"type"` // load, step, start, pause, run, reset, config_update
	Config    *simulator.SimConfig          `json:"config,omitempty"`
	Processes []simulator.ProcessDescriptor `json:"processes,omitempty"`
	Steps     int                           `json:"steps,omitempty"` // step only, default 1
}

// Server message types
type ServerMessage struct {
	Type    string                 `json:"type"` // status, tick, state, metrics, results, log, error
	Running *bool                  `json:"running,omitempty"`
	Config  *simulator.SimConfig   `json:"config,omitempty"`
	Metrics *simulator.Metrics     `json:"metrics,omitempty"`
	State   map[string]interface{} `json:"state,omitempty"`
	Tick    *simulator.TickOutcome `json:"tick,omitempty"`
	Report  *simulator.Report      `json:"report,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// simState owns one simulator per connection and the auto-step flags.
// Every access to sim goes through mu.
type simState struct {
	sim     *simulator.Simulator
	running bool
	paused  bool
	mu      sync.Mutex
	stopCh  chan struct{}
	logFn   func(msg string)
}

func newSimState(w simulator.Workload, logFn func(msg string)) (*simState, error) {
	sim, err := simulator.NewSimulator(w.Processes, w.Config)
	if err != nil {
		return nil, err
	}
	sim.LogEvent = logFn

	return &simState{
		sim:    sim,
		stopCh: make(chan struct{}),
		logFn:  logFn,
	}, nil
}

// load replaces the simulator. The old one is kept if the workload is rejected.
func (s *simState) load(w simulator.Workload) error {
	sim, err := simulator.NewSimulator(w.Processes, w.Config)
	if err != nil {
		return err
	}
	sim.LogEvent = s.logFn

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = sim
	s.running = false
	s.paused = false
	return nil
}

// start begins auto-stepping
func (s *simState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.paused = false
}

// pause stops auto-stepping; manual steps still work
func (s *simState) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// reset restarts the simulation from its descriptors
func (s *simState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Reset()
	s.running = false
	s.paused = false
}

// updateConfig updates the configuration
func (s *simState) updateConfig(config simulator.SimConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.UpdateConfig(config)
}

// isRunning returns true if auto-stepping is on and not paused
func (s *simState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.paused
}

// getConfig returns the current simulator configuration
func (s *simState) getConfig() simulator.SimConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Config()
}

// step advances the simulation by one tick. Auto-stepping stops once the
// simulation finishes.
func (s *simState) step() (simulator.TickOutcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.sim.Step()
	finished := s.sim.IsFinished()
	if finished {
		s.running = false
	}
	return out, finished, err
}

// runToCompletion steps until the simulation finishes and returns the report
func (s *simState) runToCompletion() (*simulator.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sim.RunToCompletion(); err != nil {
		return nil, err
	}
	s.running = false
	return s.sim.Report(), nil
}

// report returns the current report
func (s *simState) report() *simulator.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Report()
}

// metrics returns current metrics
func (s *simState) metrics() *simulator.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Metrics()
}

// state returns current state
func (s *simState) state() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.State()
}

// stop signals the UI loop to stop
func (s *simState) stop() {
	close(s.stopCh)
}

// uiUpdateLoop steps the simulation once per interval while it is started
// and pushes the outcome to the client. This runs in its own goroutine.
func uiUpdateLoop(conn *safeConn, state *simState, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-state.stopCh:
			log.Println("UI update loop stopping")
			return

		case <-ticker.C:
			if !state.isRunning() {
				continue
			}
			if _, err := sendStep(conn, state); err != nil {
				log.Printf("Error sending tick: %v", err)
				return
			}
		}
	}
}

// sendStep performs one step and writes tick, metrics and state messages,
// followed by results and a status once the simulation finishes. done is true
// when no further step is possible.
func sendStep(conn *safeConn, state *simState) (done bool, err error) {
	out, finished, err := state.step()
	if err != nil {
		return true, conn.WriteJSON(ServerMessage{Type: "error", Message: err.Error()})
	}
	if err := conn.WriteJSON(ServerMessage{Type: "tick", Tick: &out}); err != nil {
		return true, err
	}

	metrics := state.metrics()
	updatePrometheusMetrics(metrics)
	if err := conn.WriteJSON(ServerMessage{Type: "metrics", Metrics: metrics}); err != nil {
		return true, err
	}
	if err := conn.WriteJSON(ServerMessage{Type: "state", State: state.state()}); err != nil {
		return true, err
	}

	if finished {
		if err := conn.WriteJSON(ServerMessage{Type: "results", Report: state.report()}); err != nil {
			return true, err
		}
		return true, sendStatus(conn, state)
	}
	return false, nil
}

func sendStatus(conn *safeConn, state *simState) error {
	running := state.isRunning()
	cfg := state.getConfig()
	return conn.WriteJSON(ServerMessage{
		Type:    "status",
		Running: &running,
		Config:  &cfg,
	})
}

func sendError(conn *safeConn, err error) {
	if werr := conn.WriteJSON(ServerMessage{Type: "error", Message: err.Error()}); werr != nil {
		log.Printf("Error sending error: %v", werr)
	}
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent writes
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.Conn.WriteJSON(v)
}

// wsHandler serves the step-by-step protocol; interval paces auto-stepping
func wsHandler(interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, interval)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, interval time.Duration) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	// Wrap connection with mutex for safe concurrent writes
	safeConn := &safeConn{Conn: conn}

	log.Println("Client connected")

	// Simulator event lines go to the client as log messages
	logFn := func(msg string) {
		if err := safeConn.WriteJSON(ServerMessage{Type: "log", Message: msg}); err != nil {
			log.Printf("Error sending log: %v", err)
		}
	}

	// Start with the sample workload until the client loads its own
	state, err := newSimState(simulator.DefaultWorkload(), logFn)
	if err != nil {
		log.Printf("Error creating simulator: %v", err)
		return
	}

	if err := sendStatus(safeConn, state); err != nil {
		log.Printf("Error sending status: %v", err)
		return
	}

	go uiUpdateLoop(safeConn, state, interval)

	// Handle messages from client
	for {
		var msg ClientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		log.Printf("Received command: %s", msg.Type)

		switch msg.Type {
		case "load":
			wl := simulator.Workload{Processes: msg.Processes}
			if msg.Config != nil {
				wl.Config = *msg.Config
			}
			wl.ApplyDefaults()
			if err := state.load(wl); err != nil {
				log.Printf("Error loading workload: %v", err)
				sendError(safeConn, err)
				continue
			}
			log.Printf("Loaded %d processes", len(wl.Processes))
			sendStatus(safeConn, state)
			safeConn.WriteJSON(ServerMessage{Type: "state", State: state.state()})

		case "step":
			n := max(msg.Steps, 1)
			for i := 0; i < n; i++ {
				done, err := sendStep(safeConn, state)
				if err != nil {
					log.Printf("Error sending tick: %v", err)
				}
				if done {
					break
				}
			}

		case "start":
			state.start()
			log.Println("Simulator started")
			sendStatus(safeConn, state)

		case "pause":
			state.pause()
			log.Println("Simulator paused")
			sendStatus(safeConn, state)

		case "run":
			report, err := state.runToCompletion()
			if err != nil {
				sendError(safeConn, err)
				continue
			}
			updatePrometheusMetrics(report.Metrics)
			safeConn.WriteJSON(ServerMessage{Type: "results", Report: report})
			sendStatus(safeConn, state)

		case "reset":
			state.reset()
			log.Println("Simulator reset")
			sendStatus(safeConn, state)

		case "config_update":
			if msg.Config == nil {
				sendError(safeConn, fmt.Errorf("config_update requires a config"))
				continue
			}
			if err := state.updateConfig(*msg.Config); err != nil {
				log.Printf("Error updating config: %v", err)
				sendError(safeConn, err)
				continue
			}
			log.Printf("Config updated: %+v", msg.Config)
			sendStatus(safeConn, state)

		default:
			sendError(safeConn, fmt.Errorf("unknown command %q", msg.Type))
		}
	}

	// Clean up
	state.stop()
	log.Println("Client disconnected")
}

func quitHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Shutdown requested via /quitquitquit")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Server shutting down...")

	go func() {
		time.Sleep(100 * time.Millisecond)
		log.Println("Server stopped")
		os.Exit(0)
	}()
}

func newMux(interval time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(interval))
	mux.HandleFunc("/api/simulate", handleSimulate)
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/quitquitquit", quitHandler)
	return mux
}

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	tick := flag.Duration("tick", defaultTickInterval, "Auto-step interval after a start command")
	flag.Parse()

	if *tick <= 0 {
		log.Fatalf("Invalid -tick %v: must be > 0", *tick)
	}

	initPrometheusMetrics()

	log.Printf("Server starting on http://localhost%s", *addr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", *addr)
	log.Printf("Simulate endpoint: POST http://localhost%s/api/simulate", *addr)
	log.Printf("Shutdown endpoint: http://localhost%s/quitquitquit", *addr)
	log.Fatal(http.ListenAndServe(*addr, newMux(*tick)))
}
