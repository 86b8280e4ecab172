package url2pdf

import "time"

// WorkerInfo describes one worker at snapshot time.
type WorkerInfo struct {
	ID           string       `json:"id"`
	Status       WorkerStatus `json:"-"`
	StatusName   string       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastActivity time.Time    `json:"lastActivity"`
	InFlight     int          `json:"inFlight"`
	PID          int          `json:"pid,omitempty"`
}

// TaskInfo describes one waiting task at snapshot time.
type TaskInfo struct {
	ID              string  `json:"id"`
	URL             string  `json:"url"`
	SecondsToExpire float64 `json:"secondsToExpire"`
}

// ConfigInfo is the cluster configuration in serializable units.
type ConfigInfo struct {
	MinWorkers            int     `json:"minWorkers"`
	MaxWorkers            int     `json:"maxWorkers"`
	MaxParallelTasks      int     `json:"maxParallelTasks"`
	MaxLifeSpanSeconds    float64 `json:"maxLifeSpanSeconds"`
	MaxIdleTimeSeconds    float64 `json:"maxIdleTimeSeconds"`
	MaxPageWaitingSeconds float64 `json:"maxPageWaitingSeconds"`
	WatchIntervalSeconds  float64 `json:"watchIntervalSeconds"`
}

// Snapshot is a read-only view of the cluster.
type Snapshot struct {
	Workers   []WorkerInfo `json:"workers"`
	Available int          `json:"available"`
	Starting  int          `json:"starting"`
	Waiting   []TaskInfo   `json:"waiting"`
	Config    ConfigInfo   `json:"config"`
}

// Snapshot reports workers, waiting tasks and configuration. It has no side
// effects on the cluster.
func (c *Cluster) Snapshot() Snapshot {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Workers:   make([]WorkerInfo, 0, c.all.Len()),
		Available: c.available.Len(),
		Starting:  c.starting.Len(),
		Waiting:   make([]TaskInfo, 0, c.waiting.Len()),
		Config: ConfigInfo{
			MinWorkers:            c.cfg.MinWorkers,
			MaxWorkers:            c.cfg.MaxWorkers,
			MaxParallelTasks:      c.cfg.MaxParallelTasks,
			MaxLifeSpanSeconds:    c.cfg.MaxLifeSpan.Seconds(),
			MaxIdleTimeSeconds:    c.cfg.MaxIdleTime.Seconds(),
			MaxPageWaitingSeconds: c.cfg.MaxPageWaitingTime.Seconds(),
			WatchIntervalSeconds:  c.cfg.WatchInterval.Seconds(),
		},
	}

	for w := range c.all.All() {
		info := WorkerInfo{
			ID:           w.id,
			Status:       w.status,
			StatusName:   w.status.String(),
			CreatedAt:    w.createdAt,
			LastActivity: w.lastActivity,
			InFlight:     w.inflight,
		}
		if p, ok := w.browser.(processIdentifier); ok {
			info.PID = p.PID()
		}
		snap.Workers = append(snap.Workers, info)
	}
	for t := range c.waiting.All() {
		snap.Waiting = append(snap.Waiting, TaskInfo{
			ID:              t.id,
			URL:             t.url,
			SecondsToExpire: t.secondsToExpire(now),
		})
	}
	return snap
}
