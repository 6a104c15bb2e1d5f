package kismettest

import (
	"net/http"
	"strings"

	"github.com/usestring/kismetrest/pkg/fieldpath"
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /session/check_session", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Login valid\n"))
	})

	mux.HandleFunc("GET /devices/all_devices.ekjson", s.handleAllDevices)
	mux.HandleFunc("POST /devices/last-time/{ts}/devices.ekjson", s.handleLastTime)
	mux.HandleFunc("POST /devices/multimac/devices.ekjson", s.handleMultiMAC)
	mux.HandleFunc("POST /devices/views/phydot11_accesspoints/devices.ekjson", s.handleAccessPoints)
	mux.HandleFunc("POST /phy/phy80211/clients-of/{key}/clients.ekjson", s.handleClientsOf)

	mux.HandleFunc("GET /devices/by-key/{key}/device.json", s.handleByKey)
	mux.HandleFunc("POST /devices/by-key/{key}/device.json", s.handleByKey)
	mux.HandleFunc("GET /devices/by-key/{key}/device.json/{field...}", s.handleByKey)
	mux.HandleFunc("GET /devices/by-mac/{mac}/devices.json", s.handleByMAC)
	mux.HandleFunc("POST /devices/by-mac/{mac}/devices.json", s.handleByMAC)

	mux.HandleFunc("GET /alerts/last-time/{ts}/alerts.json", s.handleDocument("/alerts/all_alerts.json"))
	mux.HandleFunc("GET /messagebus/last-time/{ts}/messages.json", s.handleDocument("/messagebus/all_messages.json"))

	mux.HandleFunc("POST /datasource/by-uuid/{uuid}/{cmd}", s.handleCommand)
	mux.HandleFunc("POST /datasource/add_source.cmd", s.handleCommand)
	mux.HandleFunc("POST /alerts/definitions/define_alert.cmd", s.handleCommand)
	mux.HandleFunc("POST /alerts/raise_alert.cmd", s.handleCommand)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		s.handleDocument(r.URL.Path)(w, r)
	})

	return mux
}

func (s *Server) handleAllDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.snapshot()
	out := make([]any, 0, len(devices))
	for _, dev := range devices {
		out = append(out, dev)
	}
	writeEKJSON(w, out)
}

// selectDevices applies the regex filter and field simplification of q to
// the devices accepted by keep.
func (s *Server) selectDevices(w http.ResponseWriter, q *query, keep func(map[string]any) bool) {
	filter, err := fieldpath.CompileFilter(q.Regex)
	if err != nil {
		http.Error(w, "Invalid regex: "+err.Error(), http.StatusBadRequest)
		return
	}

	var out []any
	for _, dev := range s.snapshot() {
		if keep != nil && !keep(dev) {
			continue
		}
		if !filter.Match(dev) {
			continue
		}
		out = append(out, fieldpath.Simplify(dev, q.Fields))
	}
	writeEKJSON(w, out)
}

func (s *Server) handleLastTime(w http.ResponseWriter, r *http.Request) {
	ts, ok := parseTimestamp(r.PathValue("ts"))
	if !ok {
		http.Error(w, "Invalid timestamp", http.StatusBadRequest)
		return
	}
	q, err := parseQuery(r.PostForm.Get("json"))
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	cutoff := s.sinceCutoff(ts)
	s.selectDevices(w, q, func(dev map[string]any) bool {
		return ts == 0 || lastTime(dev) > cutoff
	})
}

func (s *Server) handleMultiMAC(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.PostForm.Get("json"))
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if q.Devices == nil {
		http.Error(w, "Missing devices", http.StatusBadRequest)
		return
	}

	wanted := make(map[string]bool, len(q.Devices))
	for _, mac := range q.Devices {
		wanted[strings.ToUpper(mac)] = true
	}
	s.selectDevices(w, q, func(dev map[string]any) bool {
		mac, _ := dev["kismet.device.base.macaddr"].(string)
		return wanted[strings.ToUpper(mac)]
	})
}

func (s *Server) handleAccessPoints(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.PostForm.Get("json"))
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	var cutoff float64
	if q.LastTime != nil {
		cutoff = s.sinceCutoff(*q.LastTime)
	}
	s.selectDevices(w, q, func(dev map[string]any) bool {
		if dev["kismet.device.base.type"] != "Wi-Fi AP" {
			return false
		}
		return q.LastTime == nil || lastTime(dev) > cutoff
	})
}

func (s *Server) handleClientsOf(w http.ResponseWriter, r *http.Request) {
	ap := s.deviceByKey(r.PathValue("key"))
	if ap == nil {
		http.Error(w, "No such device", http.StatusNotFound)
		return
	}
	q, err := parseQuery(r.PostForm.Get("json"))
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	bssid := ap["kismet.device.base.macaddr"]
	s.selectDevices(w, q, func(dev map[string]any) bool {
		last, ok := fieldpath.Resolve(dev, "dot11.device/dot11.device.last_bssid")
		return ok && last == bssid && dev["kismet.device.base.key"] != ap["kismet.device.base.key"]
	})
}

func (s *Server) deviceByKey(key string) map[string]any {
	for _, dev := range s.snapshot() {
		if dev["kismet.device.base.key"] == key {
			return dev
		}
	}
	return nil
}

func (s *Server) handleByKey(w http.ResponseWriter, r *http.Request) {
	dev := s.deviceByKey(r.PathValue("key"))
	if dev == nil {
		http.Error(w, "No such device", http.StatusNotFound)
		return
	}

	if field := r.PathValue("field"); field != "" {
		v, ok := fieldpath.Resolve(dev, field)
		if !ok {
			http.Error(w, "No such field", http.StatusNotFound)
			return
		}
		writeJSON(w, v)
		return
	}

	q, err := parseQuery(r.PostForm.Get("json"))
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	writeJSON(w, fieldpath.Simplify(dev, q.Fields))
}

func (s *Server) handleByMAC(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.PostForm.Get("json"))
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	mac := strings.ToUpper(r.PathValue("mac"))
	out := []any{}
	for _, dev := range s.snapshot() {
		if m, _ := dev["kismet.device.base.macaddr"].(string); strings.ToUpper(m) == mac {
			out = append(out, fieldpath.Simplify(dev, q.Fields))
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleDocument(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		doc, ok := s.docs[path]
		s.mu.Unlock()
		if !ok {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		writeJSON(w, doc)
	}
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.PostForm.Get("json") == "" {
		http.Error(w, "Missing command", http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte("OK\n"))
}
