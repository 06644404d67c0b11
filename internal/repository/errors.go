// Package repository holds the data access layer. Sentinel errors defined
// here let handlers and services distinguish failure scenarios without
// inspecting driver errors: for example ErrTableNotFound signals a cart
// targeted at a table that does not exist, while ErrOpenOrderExists
// surfaces the storage-level guarantee that a table carries at most one
// open order.
package repository

import "errors"

// ErrTableNotFound is returned when a table lookup fails. Handlers should
// translate this into an HTTP 404 (or a validation message on the order
// save path).
var ErrTableNotFound = errors.New("table not found")

// ErrOrderNotFound is returned when an order lookup fails.
var ErrOrderNotFound = errors.New("order not found")

// ErrOpenOrderExists is returned when an insert would create a second
// open order for the same table. The partial unique index raises it; the
// order service reacts by merging into the existing order instead.
var ErrOpenOrderExists = errors.New("table already has an open order")
