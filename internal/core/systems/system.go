package systems

import (
	"context"
	"time"
)

// System is a game logic processor driven by the fixed-step Scheduler.
type System interface {
	// Identity

	Name() string

	// Lifecycle

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	// Execution

	FixedUpdate(ctx context.Context, step Step) error

	// Configuration

	Priority() Priority
}

// Step describes one fixed tick. Elapsed is simulated time, Tick * DeltaTime,
// so late ticks never stretch the gap between two consecutive steps.
type Step struct {
	Tick      uint64
	DeltaTime float64 // seconds
	Elapsed   time.Duration
}

// Priority defines execution order; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// StateIdentity represents the current state of the scheduler.
type StateIdentity uint8

const (
	StateUninitialized StateIdentity = iota
	StateInitializing
	StateRunning
	StateShuttingDown
	StateShutdown
	StateFailed
)

func (s StateIdentity) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system.
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(start time.Time, took time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if m.MinExecutionTime == 0 || took < m.MinExecutionTime {
		m.MinExecutionTime = took
	}
	m.LastExecutionTime = start
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
