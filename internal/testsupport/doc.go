// Package testsupport provides shared helpers for package tests: temp-dir
// configs and ready-to-use progress stores.
package testsupport
