// Package main hosts the onboard CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into progress
// engine calls: session initialization, field and stage updates, skip
// management, session maintenance, and configuration scaffolding. It
// centralizes configuration resolution and store lifecycle so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
