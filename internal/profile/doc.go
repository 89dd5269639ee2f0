// Package profile selects a processing profile from device, network, and
// storage readings and adapts it as conditions change.
//
// Selection is a pure function of the capability readings, evaluated in
// strict priority order: critical storage beats network, network beats
// low storage, low storage beats device class. The Selector wraps that
// function with a trailing window of observed processing times, automatic
// profile switching, and change notification for subscribers.
//
// Profiles are immutable; per-call adjustments (slow processing, low
// battery) are applied to the returned settings only and never persisted
// back into the canonical profile.
package profile
