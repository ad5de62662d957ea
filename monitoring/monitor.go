// Package monitoring serves the state of running simulations over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/cachesim/cache"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// SimulatorState is the published view of a simulator.
type SimulatorState struct {
	Name      string
	Policy    string
	Config    cache.Config
	Stats     cache.Stats
	HitRate   float64
	Lines     []cache.Line
	Published time.Time
}

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulators.
type Monitor struct {
	portNumber      int
	openBrowser     bool
	publishInterval uint64

	statesLock sync.Mutex
	stateNames []string
	states     map[string]*SimulatorState

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		publishInterval: DefaultPublishInterval,
		states:          make(map[string]*SimulatorState),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open a browser once the server starts.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// WithPublishInterval sets how many accesses pass between two snapshots of
// a watched simulator. 0 only publishes at registration and completion.
func (m *Monitor) WithPublishInterval(interval uint64) *Monitor {
	m.publishInterval = interval
	return m
}

// Watch registers a simulator. Its progress is tracked against total
// accesses, where 0 means unknown.
func (m *Monitor) Watch(s *cache.Simulator, total uint64) *ProgressBar {
	bar := m.CreateProgressBar(s.Name(), total)

	s.AcceptHook(&simulatorHook{
		monitor:  m,
		bar:      bar,
		interval: m.publishInterval,
	})

	m.Publish(s)

	return bar
}

// Publish stores a snapshot of the simulator for the server to show.
func (m *Monitor) Publish(s *cache.Simulator) {
	stats := s.Stats()
	rate, _ := stats.HitRate()

	state := &SimulatorState{
		Name:      s.Name(),
		Policy:    s.Config().Policy().String(),
		Config:    s.Config(),
		Stats:     stats,
		HitRate:   rate,
		Lines:     s.Lines(),
		Published: time.Now(),
	}

	m.statesLock.Lock()
	defer m.statesLock.Unlock()

	if _, exists := m.states[state.Name]; !exists {
		m.stateNames = append(m.stateNames, state.Name)
	}

	m.states[state.Name] = state
}

// State returns the last published snapshot of a simulator.
func (m *Monitor) State(name string) (*SimulatorState, bool) {
	m.statesLock.Lock()
	defer m.statesLock.Unlock()

	state, ok := m.states[name]

	return state, ok
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := newProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_simulators", m.listSimulators)
	r.HandleFunc("/api/simulator/{name}", m.simulatorDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/", m.index)

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() int {
	r := m.router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d", port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		if err != nil && !isClosedErr(err) {
			log.Panic(err)
		}
	}()

	if m.openBrowser {
		err := browser.OpenURL(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return port
}

// StopServer stops the web server.
func (m *Monitor) StopServer() {
	if m.listener == nil {
		return
	}

	err := m.listener.Close()
	if err != nil && !isClosedErr(err) {
		log.Print(err)
	}

	m.listener = nil
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (m *Monitor) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "cachesim monitor\n\n"+
		"/api/list_simulators\n"+
		"/api/simulator/{name}\n"+
		"/api/field/{\"sim_name\":..., \"field_name\":...}\n"+
		"/api/progress\n"+
		"/api/resource\n"+
		"/api/profile\n")
}

func (m *Monitor) listSimulators(w http.ResponseWriter, _ *http.Request) {
	m.statesLock.Lock()
	names := make([]string, len(m.stateNames))
	copy(names, m.stateNames)
	m.statesLock.Unlock()

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) simulatorDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	state := m.findStateOr404(w, name)
	if state == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	SimName   string `json:"sim_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	state := m.findStateOr404(w, req.SimName)
	if state == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findStateOr404(
	w http.ResponseWriter,
	name string,
) *SimulatorState {
	state, ok := m.State(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Simulator not found"))
		dieOnErr(err)

		return nil
	}

	return state
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	states := make([]progressBarState, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		states = append(states, b.state())
	}
	m.progressBarsLock.Unlock()

	sort.SliceStable(states, func(i, j int) bool {
		return states[i].StartTime.Before(states[j].StartTime)
	})

	bytes, err := json.Marshal(states)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
