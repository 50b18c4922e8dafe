package game

import "github.com/pkg/errors"

var (
	// ErrUnknownMob is returned when a config has no profile of the requested name.
	ErrUnknownMob = errors.New("unknown mob profile")

	// ErrInvalidConfig wraps every validation failure of Config.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNoPath is returned by Navigation when a search could not even start.
	ErrNoPath = errors.New("no path")
)
