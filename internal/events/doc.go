// Package events provides an in-process pub/sub bus for pipeline
// signals: capture lifecycle, adaptation changes, and batch progress.
//
// The bus is injected, never global. Components that accept a *Bus
// tolerate nil so the pipeline can run without any subscribers wired.
package events
