package core

import "sync"

// EventContext carries the payload of a fired event.
type EventContext struct {
	Data struct {
		I32 [4]int32
		U32 [4]uint32
		F32 [4]float32
		C   [2]string
	}
}

// System internal event codes. Applications should use codes beyond MAX_EVENT_CODE.
type SystemEventCode int

const (
	// Shuts the application down on the next tick.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// A segment lost all of its health and was broken.
	/* Context usage:
	 * C[0] object name
	 * I32[0..2] group, board, segment
	 * I32[3] splinter slot, -1 when none
	 */
	EVENT_CODE_SEGMENT_BROKEN SystemEventCode = 0x02

	// A segment was repaired.
	/* Context usage:
	 * C[0] object name
	 * I32[0..2] group, board, segment
	 */
	EVENT_CODE_SEGMENT_REPAIRED SystemEventCode = 0x03

	// Every wood object was restored.
	/* Context usage:
	 * U32[0] number of objects
	 */
	EVENT_CODE_WOOD_RESET SystemEventCode = 0x04

	// A mesh asset changed on disk and was rebuilt.
	/* Context usage:
	 * C[0] object name
	 * C[1] file path
	 */
	EVENT_CODE_MESH_RELOADED SystemEventCode = 0x05

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

const MAX_MESSAGE_CODES = 1024

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	mu         sync.RWMutex
	registered [MAX_MESSAGE_CODES][]*registeredEvent
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

// EventInitialize sets up the event system. Calling it again is harmless.
func EventInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	return true
}

// EventShutdown drops every registration.
func EventShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	for i := range eventState.registered {
		eventState.registered[i] = nil
	}
	return nil
}

func validCode(code SystemEventCode) bool {
	return eventState != nil && code >= 0 && int(code) < MAX_MESSAGE_CODES
}

/**
 * Register to listen for when events are sent with the provided code. A listener
 * can only be registered once per code.
 * @param code The event code to listen for.
 * @param listener The listener instance. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !validCode(code) || onEvent == nil {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister a listener from the provided code.
 * @returns true if the listener was found and removed.
 */
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if !validCode(code) {
		return false
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If a handler returns true
 * the event is considered handled and is not passed on to further listeners.
 * @returns true if handled, otherwise false.
 */
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if !validCode(code) {
		return false
	}
	eventState.mu.RLock()
	events := append([]*registeredEvent(nil), eventState.registered[code]...)
	eventState.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}
