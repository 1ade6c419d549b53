// Package gateway translates domain operations into calls against the
// identity provider, the relational store and the object store. Every
// operation returns the uniform models.Result envelope; faults never
// propagate past the gateway boundary.
package gateway

import (
	"log/slog"

	"glimpse/internal/blob"
	"glimpse/internal/identity"
	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/querycache"
	"glimpse/internal/store"
)

// Gateway holds the external collaborators behind the domain operations.
type Gateway struct {
	store    store.Store
	identity identity.Provider
	blobs    blob.Store
	coord    *querycache.Coordinator
	pageSize int
	log      *slog.Logger
}

// New creates a Gateway. pageSize is the fixed feed page size N.
func New(st store.Store, provider identity.Provider, blobs blob.Store, coord *querycache.Coordinator, pageSize int) *Gateway {
	return &Gateway{
		store:    st,
		identity: provider,
		blobs:    blobs,
		coord:    coord,
		pageSize: pageSize,
		log:      observability.Named("gateway"),
	}
}

// PageSize returns the feed page size N.
func (g *Gateway) PageSize() int {
	return g.pageSize
}

// ImageUpload is an image handed to the gateway as an opaque blob.
type ImageUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// failOp normalizes an unexpected fault into a failure envelope, logging it
// for diagnostics.
func failOp[T any](g *Gateway, op, message string, err error) models.Result[T] {
	observability.GatewayFailures.WithLabelValues(op).Inc()
	if err != nil {
		g.log.Error("gateway operation failed", slog.String("op", op), slog.String("error", err.Error()))
	} else {
		g.log.Warn("gateway operation rejected", slog.String("op", op), slog.String("message", message))
	}
	return models.Fail[T](message)
}

// failValidation rejects an operation before any remote call.
func failValidation[T any](err error) models.Result[T] {
	return models.Fail[T](err.Error())
}
