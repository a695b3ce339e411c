// Package activation calls the external entity-activation endpoint when a
// session finishes onboarding.
//
// The engine treats activation as a narrow collaborator: a single Activate
// call per completed entity. When no endpoint is configured a noop
// implementation is returned so the engine never branches on configuration.
package activation
