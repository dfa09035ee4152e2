// Package store defines the aggregate persistence interface. Each subsystem
// (role, permission, assignment, auditlog) defines its own store interface.
// The composite Store composes them all.
// Backends: Postgres, SQLite, MongoDB, and Memory.
package store

import (
	"context"

	"github.com/xraph/bastion/assignment"
	"github.com/xraph/bastion/auditlog"
	"github.com/xraph/bastion/permission"
	"github.com/xraph/bastion/role"
)

// Store is the aggregate persistence interface. Each subsystem store is a
// composable interface; a single backend implements all of them.
type Store interface {
	role.Store
	permission.Store
	assignment.Store
	auditlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
