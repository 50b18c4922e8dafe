package path

import "github.com/pkg/errors"

var (
	// ErrNodeQueued is raised when a node that already sits in a heap is
	// inserted again.
	ErrNodeQueued = errors.New("node is already queued")

	// ErrEmptyHeap is raised by Pop and Peek on an empty heap.
	ErrEmptyHeap = errors.New("heap is empty")

	// ErrNodeNotQueued is raised by Remove and ChangeCost for a node that is not
	// part of the heap.
	ErrNodeNotQueued = errors.New("node is not queued")

	// ErrCursorOutOfRange is raised when a path cursor would leave [0, len].
	ErrCursorOutOfRange = errors.New("path cursor out of range")

	// ErrInvalidPath is returned when a serialized path cannot be decoded.
	ErrInvalidPath = errors.New("invalid path data")

	// ErrUnknownMode is returned for evaluator mode names that do not exist.
	ErrUnknownMode = errors.New("unknown movement mode")
)
