// Package userservice provides the user profile API server.
//
// The application entry points live under cmd/. The actual API
// documentation is organized into subpackages:
//
//   - internal/handlers: HTTP request handlers for all API endpoints
//   - internal/models: Data models and database schemas
//   - internal/avatar: Avatar upload, resize, storage and cleanup pipeline
//   - internal/auth: Bearer token issuance and authorization
//   - internal/storage: Object storage (S3) operations
//   - internal/repository: Database access for users and countries
//   - internal/database: Database connection and migrations
//   - internal/cache: Redis-backed presigned URL cache
//   - internal/middleware: HTTP middleware (request ids, logging, metrics)
//   - internal/metrics: Prometheus instrumentation
//   - internal/telemetry: OpenTelemetry tracing setup
//
// See the individual package documentation for detailed API reference.
package userservice
