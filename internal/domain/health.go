package domain

import "time"

// ============================================================
// Health & Service status
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastChecked string `json:"lastChecked"`
}

// Incident is an ongoing or recent network incident.
type Incident struct {
	Name      string `json:"nome"`
	Status    string `json:"status"`
	UpdatedAt string `json:"atualizadoEm,omitempty"`
}

// ServiceStatus feeds the service-status widget.
type ServiceStatus struct {
	Indicator   string     `json:"indicador"` // none, minor, major, critical
	Description string     `json:"descricao"`
	Incidents   []Incident `json:"incidentes"`
	Disponivel  bool       `json:"disponivel"`
	FetchedAt   time.Time  `json:"consultadoEm"`
}

// UnavailableServiceStatus is returned when the status feed cannot be read.
func UnavailableServiceStatus() *ServiceStatus {
	return &ServiceStatus{
		Indicator:   "unknown",
		Description: "Status da rede indisponível no momento",
		Incidents:   []Incident{},
	}
}
