// Package api implements the HTTP handlers for the Questlog API:
// authentication, task management, and the organizer agent. Handlers
// decode and validate requests, delegate to stores and services, and map
// internal errors to sanitized HTTP responses.
package api
