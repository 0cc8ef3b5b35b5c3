// Package integrations provides the shared HTTP layer for game API clients.
//
// # Overview
//
// The [Client] type wraps net/http with the behaviour every API client
// needs:
//
//   - default headers (auth tokens, user agent) merged with per-request ones
//   - retry with exponential backoff for transient failures (5xx, 429,
//     connection errors) via [cache.RetryWithPolicy]
//   - JSON response caching through any [cache.Cache] backend
//   - request/response events on [observability.HTTP]
//
// Status codes map onto two sentinels: [ErrNotFound] for 404 and
// [ErrNetwork] for everything else that is not 2xx. Only the retryable
// subset is wrapped in [cache.RetryableError].
//
// # Clients
//
//   - [stt]: item descriptions, player data, faction stores, voyages
//
// [stt]: github.com/matzehuels/equipneeds/pkg/integrations/stt
// [cache.Cache]: github.com/matzehuels/equipneeds/pkg/cache.Cache
// [cache.RetryWithPolicy]: github.com/matzehuels/equipneeds/pkg/cache.RetryWithPolicy
// [cache.RetryableError]: github.com/matzehuels/equipneeds/pkg/cache.RetryableError
// [observability.HTTP]: github.com/matzehuels/equipneeds/pkg/observability.HTTP
package integrations
