package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Events contains all reading events that were published.
	Events []ReadingEvent

	// Payloads contains the JSON payloads for reading events.
	Payloads [][]byte

	// ErrorEvents contains all failed-read events that were published.
	ErrorEvents []ErrorEvent

	// ErrorPayloads contains the JSON payloads for failed-read events.
	ErrorPayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishErr, if set, will be returned by Publish and PublishError.
	PublishErr error

	// PublishSystemErr, if set, will be returned by PublishSystem.
	PublishSystemErr error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the reading event.
func (f *FakePublisher) Publish(event ReadingEvent) error {
	if f.PublishErr != nil {
		return f.PublishErr
	}

	f.Events = append(f.Events, event)

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishError records the failed-read event.
func (f *FakePublisher) PublishError(event ErrorEvent) error {
	if f.PublishErr != nil {
		return f.PublishErr
	}

	f.ErrorEvents = append(f.ErrorEvents, event)

	payload, err := FormatErrorPayload(event)
	if err != nil {
		return err
	}
	f.ErrorPayloads = append(f.ErrorPayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemErr != nil {
		return f.PublishSystemErr
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.ErrorEvents = nil
	f.ErrorPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishErr = nil
	f.PublishSystemErr = nil
	f.Connected = false
}
