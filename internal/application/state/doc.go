// Package state implements the bot state service.
//
// The service stores typed values as codec envelopes and decodes them
// back inside a resolver scope:
//   - Save encodes a value with the type it was registered under in a module
//   - Load opens a resolve.Handle for the caller's module, decodes, and
//     releases the handle on every exit path
//   - Modules registered with the service are designated, not loaded: they
//     are resolvable only while a Load for them is in flight
//
// The validator checks state keys before they reach storage.
package state
