// Package domain contains the core entities of the application: tasks,
// users, and the enumerations and validation rules that govern them.
// Domain types carry no persistence or transport concerns.
package domain
