package url2pdf

import (
	"fmt"
	"log/slog"
	"time"
)

// Cluster defaults.
const (
	DefaultMinWorkers           = 1
	DefaultMaxWorkers           = 10
	DefaultMaxParallelTasks     = 10
	DefaultMaxLifeSpan          = 10 * time.Minute
	DefaultMaxIdleTime          = 5 * time.Minute
	DefaultMaxPageWaitingTime   = 2 * time.Minute
	DefaultMaxWaitBeforeClosing = 2 * time.Minute
	DefaultWatchInterval        = 2 * time.Minute
	DefaultMaxRemovalEachTime   = 20
	DefaultLaunchRetryDelay     = time.Second

	// fallbackCloseGrace applies when MaxWaitBeforeClosing is zero.
	fallbackCloseGrace = 30 * time.Second

	// unlinkDetachDelay lets late announcements reach the cluster after Unlink.
	unlinkDetachDelay = 200 * time.Millisecond
)

// Config holds the cluster parameters.
type Config struct {
	MinWorkers           int           // Workers kept alive while the cluster runs
	MaxWorkers           int           // Hard cap on browser processes
	MaxParallelTasks     int           // Concurrent pages per browser
	MaxLifeSpan          time.Duration // Age after which a browser is recycled
	MaxIdleTime          time.Duration // Inactivity after which a browser is recycled
	MaxPageWaitingTime   time.Duration // Admission budget (0 = wait forever)
	MaxWaitBeforeClosing time.Duration // Drain grace on close (0 = 30s)
	WatchInterval        time.Duration // Eviction sweep period
	MaxRemovalEachTime   int           // Evictions per sweep
	LaunchRetryDelay     time.Duration // Delay before redispatching after a failed launch
}

// DefaultConfig returns the configuration used by NewCluster without options.
func DefaultConfig() Config {
	return Config{
		MinWorkers:           DefaultMinWorkers,
		MaxWorkers:           DefaultMaxWorkers,
		MaxParallelTasks:     DefaultMaxParallelTasks,
		MaxLifeSpan:          DefaultMaxLifeSpan,
		MaxIdleTime:          DefaultMaxIdleTime,
		MaxPageWaitingTime:   DefaultMaxPageWaitingTime,
		MaxWaitBeforeClosing: DefaultMaxWaitBeforeClosing,
		WatchInterval:        DefaultWatchInterval,
		MaxRemovalEachTime:   DefaultMaxRemovalEachTime,
		LaunchRetryDelay:     DefaultLaunchRetryDelay,
	}
}

// Validate checks that the configuration can run a cluster.
func (c Config) Validate() error {
	if c.MinWorkers < 0 {
		return fmt.Errorf("%w: min workers %d (must be >= 0)", ErrInvalidPoolSize, c.MinWorkers)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("%w: max workers %d (must be >= 1)", ErrInvalidPoolSize, c.MaxWorkers)
	}
	if c.MinWorkers > c.MaxWorkers {
		return fmt.Errorf("%w: min workers %d exceeds max workers %d", ErrInvalidPoolSize, c.MinWorkers, c.MaxWorkers)
	}
	if c.MaxParallelTasks < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidParallelism, c.MaxParallelTasks)
	}
	if c.MaxRemovalEachTime < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidRemoval, c.MaxRemovalEachTime)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"max life span", c.MaxLifeSpan},
		{"max idle time", c.MaxIdleTime},
		{"max page waiting time", c.MaxPageWaitingTime},
		{"max wait before closing", c.MaxWaitBeforeClosing},
		{"launch retry delay", c.LaunchRetryDelay},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("%w: %s %v (must not be negative)", ErrInvalidDuration, d.name, d.d)
		}
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("%w: watch interval %v (must be positive)", ErrInvalidDuration, c.WatchInterval)
	}
	return nil
}

// closeGrace returns the drain budget used by Worker.close.
func (c Config) closeGrace() time.Duration {
	if c.MaxWaitBeforeClosing == 0 {
		return fallbackCloseGrace
	}
	return c.MaxWaitBeforeClosing
}

// Option configures a Cluster.
type Option func(*Cluster)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Cluster) {
		c.cfg = cfg
	}
}

// WithPoolSize sets the minimum and maximum number of browsers.
func WithPoolSize(minWorkers, maxWorkers int) Option {
	return func(c *Cluster) {
		c.cfg.MinWorkers = minWorkers
		c.cfg.MaxWorkers = maxWorkers
	}
}

// WithMaxParallelTasks sets the page capacity of each browser.
func WithMaxParallelTasks(n int) Option {
	return func(c *Cluster) {
		c.cfg.MaxParallelTasks = n
	}
}

// WithLifeSpan sets the age after which browsers are recycled.
func WithLifeSpan(d time.Duration) Option {
	return func(c *Cluster) {
		c.cfg.MaxLifeSpan = d
	}
}

// WithIdleTime sets the inactivity after which browsers are recycled.
func WithIdleTime(d time.Duration) Option {
	return func(c *Cluster) {
		c.cfg.MaxIdleTime = d
	}
}

// WithAdmissionTimeout sets how long a task may wait for a browser.
// Zero disables the timeout.
func WithAdmissionTimeout(d time.Duration) Option {
	return func(c *Cluster) {
		c.cfg.MaxPageWaitingTime = d
	}
}

// WithCloseGrace sets how long a closing browser may drain its pages.
func WithCloseGrace(d time.Duration) Option {
	return func(c *Cluster) {
		c.cfg.MaxWaitBeforeClosing = d
	}
}

// WithWatch sets the eviction sweep period and its per-sweep removal cap.
func WithWatch(interval time.Duration, maxRemoval int) Option {
	return func(c *Cluster) {
		c.cfg.WatchInterval = interval
		c.cfg.MaxRemovalEachTime = maxRemoval
	}
}

// WithLaunchRetryDelay sets the pause before redispatching after a launch failure.
func WithLaunchRetryDelay(d time.Duration) Option {
	return func(c *Cluster) {
		c.cfg.LaunchRetryDelay = d
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cluster) {
		if logger != nil {
			c.logger = logger
		}
	}
}
