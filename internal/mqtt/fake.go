package mqtt

import "sync"

// SentCommand is a single command recorded by the fake.
type SentCommand struct {
	Device    string
	Attribute string
	Value     string
}

// Fake records sent commands for test assertions.
type Fake struct {
	mu sync.Mutex

	// Commands contains every command passed to Send, in order.
	Commands []SentCommand

	// FailFor makes Send return SendError for the named devices.
	FailFor map[string]bool

	// SendError is returned for devices listed in FailFor.
	SendError error

	// Closed tracks whether Close was called.
	Closed bool
}

// NewFake creates a Fake commander for testing.
func NewFake() *Fake {
	return &Fake{FailFor: map[string]bool{}}
}

// Send records the command, or fails if the device is marked as failing.
func (f *Fake) Send(device, attribute, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFor[device] {
		return f.SendError
	}
	f.Commands = append(f.Commands, SentCommand{Device: device, Attribute: attribute, Value: value})
	return nil
}

// Close marks the fake as closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Sent returns a copy of the recorded commands.
func (f *Fake) Sent() []SentCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentCommand, len(f.Commands))
	copy(out, f.Commands)
	return out
}

// Reset clears recorded commands.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = nil
}
