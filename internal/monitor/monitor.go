// Package monitor keeps a status file describing the running pipeline.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// QueueReporter exposes pending write queue sizes by name.
type QueueReporter interface {
	QueueLengths() map[string]int
}

// ActionQueue is the part of the scheduler the monitor reads.
type ActionQueue interface {
	Len() int
	Idle() bool
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Queue      ActionQueue
	Storage    QueueReporter // optional
	Room       func() string // optional
	StatusPath string
	Interval   time.Duration
	Logger     zerolog.Logger
}

// Status is one snapshot written to the status file.
type Status struct {
	Time         time.Time      `json:"time"`
	Room         string         `json:"room,omitempty"`
	PendingUnits int            `json:"pendingUnits"`
	Idle         bool           `json:"idle"`
	WriteQueues  map[string]int `json:"writeQueues,omitempty"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 5 * time.Second
	}
	deps.Logger = deps.Logger.With().Str("component", "monitor").Logger()
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus takes a snapshot now.
func (s *Service) GetStatus() Status {
	st := Status{
		Time:         time.Now(),
		PendingUnits: s.deps.Queue.Len(),
		Idle:         s.deps.Queue.Idle(),
	}
	if s.deps.Room != nil {
		st.Room = s.deps.Room()
	}
	if s.deps.Storage != nil {
		st.WriteQueues = s.deps.Storage.QueueLengths()
	}
	return st
}

// WriteStatus replaces the status file with a fresh snapshot.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding status: %w", err)
	}
	if err := os.WriteFile(s.deps.StatusPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stopChan, s.done)
}

func (s *Service) run(stop, done chan struct{}) {
	defer close(done)

	s.deps.Logger.Debug().Str("path", s.deps.StatusPath).Dur("interval", s.deps.Interval).Msg("Starting status monitor")
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			if err := s.WriteStatus(); err != nil {
				s.deps.Logger.Error().Err(err).Msg("Failed to write final status")
			}
			return
		case <-ticker.C:
			if err := s.WriteStatus(); err != nil {
				s.deps.Logger.Error().Err(err).Msg("Failed to write status")
			}
		}
	}
}

// Stop stops the status monitor and waits for the final snapshot.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
}
