package engine

import "sync"

// CommandType distinguishes host commands.
type CommandType int

const (
	// CommandTick runs one frame with Command.Delta.
	CommandTick CommandType = iota + 1
	// CommandKill kills Command.Handle.
	CommandKill
	// CommandPlay requests Command.Handle to start.
	CommandPlay
	// CommandTimeScale sets the global time scale to Command.Scale.
	CommandTimeScale
)

func (t CommandType) String() string {
	switch t {
	case CommandTick:
		return "tick"
	case CommandKill:
		return "kill"
	case CommandPlay:
		return "play"
	case CommandTimeScale:
		return "time_scale"
	default:
		return "unknown"
	}
}

// Command is a request from the host to the Run loop.
type Command struct {
	Type   CommandType
	Delta  float64
	Handle Handle
	Scale  float64
}

// Tick is shorthand for a CommandTick.
func Tick(delta float64) Command {
	return Command{Type: CommandTick, Delta: delta}
}

// commandQueue is a thread-safe FIFO queue for host commands.
//
// The queue is unbounded so a host that produces ticks faster than frames
// run never blocks; frames simply run back to back.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type commandQueue struct {
	mu       sync.Mutex
	commands []Command
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		commands: make([]Command, 0, 64),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a command to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.commands = append(q.commands, c)

	// Non-blocking: a buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front command without blocking.
// Returns (Command{}, false) if the queue is empty.
func (q *commandQueue) TryDequeue() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return Command{}, false
	}

	c := q.commands[0]
	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}
	return c, true
}

// Wait returns a channel that signals when commands may be available.
// The channel is closed when the queue is closed.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Closed reports whether Close has been called.
func (q *commandQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more commands will be enqueued and wakes waiters.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
