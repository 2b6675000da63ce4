package motion

import (
	"errors"

	"github.com/zeusync/motiontrack/pkg/sequence"
)

var (
	// ErrInvalidCapacity is returned when a window is sized <= 0.
	ErrInvalidCapacity = sequence.ErrInvalidCapacity

	ErrInvalidSample = errors.New("sample must be a finite vector")
	ErrInvalidDelta  = errors.New("tick delta must be positive and finite")
	ErrUnknownEntity = errors.New("entity is not tracked")
)
