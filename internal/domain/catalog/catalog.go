// Package catalog holds the closed set of event-type names emitted by the
// lift controller and the payload classifier that maps raw broker payloads
// onto it. Classification is pure: no storage, no connection state.
package catalog

import (
	"slices"
	"strconv"
	"strings"
)

// Name families. The floor digit sits after the family prefix; call buttons
// additionally carry a direction suffix.
const (
	arrivalPrefix = "stopped_at_floor_"
	cabinPrefix   = "cabin_button_"
	callPrefix    = "call_button_"
)

// Singleton event names.
const (
	EstopActivated   = "estop_activated"
	EstopReleased    = "estop_released"
	LinkConnected    = "link_connected"
	LinkDisconnected = "link_disconnected"
)

// names is the seed order of the catalog. Immutable after init; the storage
// layer inserts each name if absent on startup.
var names = []string{
	"stopped_at_floor_0",
	"stopped_at_floor_1",
	"stopped_at_floor_2",
	"cabin_button_0",
	"cabin_button_1",
	"cabin_button_2",
	"call_button_0_up",
	"call_button_1_up",
	"call_button_1_down",
	"call_button_2_down",
	EstopActivated,
	EstopReleased,
	LinkConnected,
	LinkDisconnected,
}

var nameSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}()

// Names returns the full catalog in seed order.
func Names() []string { return slices.Clone(names) }

// Classification is the result of matching one payload.
type Classification struct {
	Name  string
	Floor *int
}

// Classify matches payload against the catalog. The second return is false
// for any payload not in the catalog, byte-for-byte. Floor is non-nil only
// for the name families that encode one; extraction fails closed, never
// guessing a value.
func Classify(payload string) (Classification, bool) {
	if _, ok := nameSet[payload]; !ok {
		return Classification{}, false
	}
	c := Classification{Name: payload}
	switch {
	case strings.HasPrefix(payload, arrivalPrefix):
		c.Floor = parseFloor(strings.TrimPrefix(payload, arrivalPrefix))
	case strings.HasPrefix(payload, cabinPrefix):
		c.Floor = parseFloor(strings.TrimPrefix(payload, cabinPrefix))
	case strings.HasPrefix(payload, callPrefix):
		c.Floor = callFloor(strings.TrimPrefix(payload, callPrefix))
	}
	return c, true
}

// parseFloor accepts a bare non-negative numeral.
func parseFloor(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// callFloor parses the floor component of call_button_<floor>_<direction>.
func callFloor(rest string) *int {
	digit, _, ok := strings.Cut(rest, "_")
	if !ok {
		return nil
	}
	return parseFloor(digit)
}

// IsTrip reports whether name is an in-cabin destination press, the unit the
// trip statistics count. Call buttons are never trips.
func IsTrip(name string) bool { return strings.HasPrefix(name, cabinPrefix) }

// IsCall reports whether name is a hall call-button press.
func IsCall(name string) bool { return strings.HasPrefix(name, callPrefix) }

// IsArrival reports whether name is a stopped-at-floor event.
func IsArrival(name string) bool { return strings.HasPrefix(name, arrivalPrefix) }

// TripNames returns the cabin destination-button subset of the catalog.
func TripNames() []string { return subset(IsTrip) }

// CallNames returns the hall call-button subset of the catalog.
func CallNames() []string { return subset(IsCall) }

// ArrivalNames returns the stopped-at-floor subset of the catalog.
func ArrivalNames() []string { return subset(IsArrival) }

func subset(keep func(string) bool) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
