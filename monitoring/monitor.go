// Package monitoring serves a web dashboard and a JSON API for a running
// machine simulation.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cncsim/cnc"
	"github.com/sarchlab/cncsim/monitoring/web"
	"github.com/sarchlab/cncsim/panel"
	"github.com/sarchlab/cncsim/sim"
)

// Machine is the controller that the monitor shows and drives.
type Machine interface {
	sim.Component
	cnc.OperationStarter

	Snapshot() cnc.Snapshot
	Subscribe(ctx context.Context) (cnc.Snapshot, <-chan cnc.Snapshot)
	Start()
	Pause()
	Stop()
	EmergencyStop()
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the machine.
type Monitor struct {
	engine     sim.Engine
	machine    Machine
	components []sim.Component
	portNumber int
	logger     *slog.Logger

	formsLock sync.Mutex
	forms     map[cnc.OperationKind]*cnc.Form

	server   *http.Server
	listener net.Listener
	done     chan struct{}
	doneOnce sync.Once
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		logger: slog.Default(),
		forms:  cnc.NewForms(),
		done:   make(chan struct{}),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		if portNumber != 0 {
			m.logger.Warn("port number is not allowed, using a random port instead",
				"port", portNumber)
		}

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger *slog.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterMachine registers the machine to show. The machine is also
// registered as a component.
func (m *Monitor) RegisterMachine(machine Machine) {
	m.machine = machine
	m.RegisterComponent(machine)
}

// RegisterComponent register a component to be inspected.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)
}

// Handler returns the router of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())

	r.HandleFunc("/api/state", m.state).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard", m.dashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/cycle/{action:start|pause|stop}", m.cycle).
		Methods(http.MethodPost)
	r.HandleFunc("/api/estop", m.emergencyStop).Methods(http.MethodPost)
	r.HandleFunc("/api/operation/{kind}", m.startOperation).
		Methods(http.MethodPost)
	r.HandleFunc("/api/events", m.events).Methods(http.MethodGet)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server. It returns once the server
// is listening.
func (m *Monitor) StartServer() error {
	if m.machine == nil {
		log.Panic("machine is not registered")
	}

	actualPort := fmt.Sprintf(":%d", m.portNumber)

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", actualPort, err)
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.logger.Info("monitoring machine", "url", m.URL())

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitoring server stopped", "error", err)
		}
	}()

	return nil
}

// URL returns the address of the dashboard once the server is started.
func (m *Monitor) URL() string {
	if m.listener == nil {
		return ""
	}

	return fmt.Sprintf("http://localhost:%d",
		m.listener.Addr().(*net.TCPAddr).Port)
}

// Shutdown ends all the event streams and stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.doneOnce.Do(func() { close(m.done) })

	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) render(s cnc.Snapshot) panel.Dashboard {
	m.formsLock.Lock()
	defer m.formsLock.Unlock()

	return panel.Render(s, m.forms)
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.machine.Snapshot())
}

func (m *Monitor) dashboard(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.render(m.machine.Snapshot()))
}

func (m *Monitor) cycle(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["action"] {
	case "start":
		m.machine.Start()
	case "pause":
		m.machine.Pause()
	case "stop":
		m.machine.Stop()
	}

	m.dashboard(w, r)
}

func (m *Monitor) emergencyStop(w http.ResponseWriter, r *http.Request) {
	m.machine.EmergencyStop()
	m.dashboard(w, r)
}

func (m *Monitor) startOperation(w http.ResponseWriter, r *http.Request) {
	kind, err := cnc.ParseOperationKind(mux.Vars(r)["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	fields := map[string]string{}

	err = json.NewDecoder(r.Body).Decode(&fields)
	if err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "malformed body: "+err.Error(), http.StatusBadRequest)
		return
	}

	m.formsLock.Lock()
	form := m.forms[kind]
	err = form.SetAll(fields)
	m.formsLock.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	form.Submit(m.machine)

	m.dashboard(w, r)
}

func (m *Monitor) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	current, updates := m.machine.Subscribe(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if !m.writeEvent(w, flusher, current) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case s, ok := <-updates:
			if !ok {
				return
			}

			if !m.writeEvent(w, flusher, s) {
				return
			}
		}
	}
}

func (m *Monitor) writeEvent(
	w http.ResponseWriter,
	flusher http.Flusher,
	s cnc.Snapshot,
) bool {
	data, err := json.Marshal(m.render(s))
	if err != nil {
		m.logger.Error("encode dashboard", "error", err)
		return false
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}

	flusher.Flush()

	return true
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	m.writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	m.serialize(w, component, func(out io.Writer) error {
		return serializer.Serialize(out)
	})
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, "malformed field request: "+err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.serialize(w, component, func(out io.Writer) error {
		return serializer.Serialize(out)
	})
}

// serialize holds the lock of the component, if it has one, so that the
// fields are not read while the component updates them.
func (m *Monitor) serialize(
	w http.ResponseWriter,
	component sim.Component,
	encode func(io.Writer) error,
) {
	buf := bytes.NewBuffer(nil)

	if locker, ok := component.(sync.Locker); ok {
		locker.Lock()
		defer locker.Unlock()
	}

	if err := encode(buf); err != nil {
		m.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Component not found", http.StatusNotFound)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()

	process, err := process.NewProcess(int32(pid))
	if err != nil {
		m.internalError(w, err)
		return
	}

	cpuPercent, err := process.CPUPercent()
	if err != nil {
		m.internalError(w, err)
		return
	}

	memorySize, err := process.MemoryInfo()
	if err != nil {
		m.internalError(w, err)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		m.internalError(w, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.internalError(w, err)
		return
	}

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (m *Monitor) internalError(w http.ResponseWriter, err error) {
	m.logger.Error("monitoring request failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
