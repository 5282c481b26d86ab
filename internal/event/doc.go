// Package event defines the lifecycle event types exposed by the automation
// engine and a synchronous pub-sub bus for delivering them. The bus decouples
// the worker/supervisor layer from whatever front end consumes the events
// (console sink, future UI) without direct dependencies.
//
// Delivery order per session matches the emitting worker's execution order;
// there is no ordering guarantee across sessions.
package event
