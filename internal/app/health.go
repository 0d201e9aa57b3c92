package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/prometheus/procfs"
	log "github.com/sirupsen/logrus"
)

type netDevReader func() (procfs.NetDev, error)

// HealthReporter watches the wireless link the clients come in over
type HealthReporter struct {
	cfg      config.HealthConfig
	sessions *SessionRegistry
	netDev   netDevReader

	lock sync.Mutex
	last models.Health
}

func NewHealthReporter(cfg config.HealthConfig, sessions *SessionRegistry) *HealthReporter {
	return &HealthReporter{
		cfg:      cfg,
		sessions: sessions,
		netDev:   selfNetDev,
		last: models.Health{
			Interface: cfg.Interface,
			Error:     "no health check run yet",
		},
	}
}

func selfNetDev() (procfs.NetDev, error) {
	p, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("error: procfs could not get process: %w", err)
	}
	netDev, err := p.NetDev()
	if err != nil {
		return nil, fmt.Errorf("error: failed getting netstat: %w", err)
	}
	return netDev, nil
}

func (h *HealthReporter) Start(ctx context.Context) error {
	interval := h.cfg.Interval
	if interval <= 0 {
		interval = config.DefaultHealthInterval
	}
	healthTicker := time.NewTicker(interval)
	defer healthTicker.Stop()

	h.Check()
	for {
		select {
		case <-ctx.Done():
			log.Println("health checker stopped")
			return nil
		case <-healthTicker.C:
			status := h.Check()
			if status.Healthy {
				log.Printf("healthcheck: healthy - sessions: %d rx: %d tx: %d dropped: %d",
					status.Sessions, status.RxPackets, status.TxPackets, status.RxDropped+status.TxDropped)
			} else {
				log.Warnf("healthcheck: unhealthy - %s", status.Error)
			}
		}
	}
}

func (h *HealthReporter) Check() models.Health {
	status := models.Health{
		Interface: h.cfg.Interface,
		Sessions:  h.sessions.Count(),
	}

	netDev, err := h.netDev()
	if err != nil {
		status.Error = err.Error()
		return h.store(status)
	}

	stats, ok := netDev[h.cfg.Interface]
	if !ok {
		status.Error = fmt.Sprintf("failed getting %s stats: not found", h.cfg.Interface)
		return h.store(status)
	}

	status.Healthy = true
	status.RxPackets = stats.RxPackets
	status.RxErrors = stats.RxErrors
	status.RxDropped = stats.RxDropped
	status.TxPackets = stats.TxPackets
	status.TxErrors = stats.TxErrors
	status.TxDropped = stats.TxDropped
	return h.store(status)
}

func (h *HealthReporter) Last() models.Health {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.last
}

func (h *HealthReporter) store(status models.Health) models.Health {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.last = status
	return status
}
