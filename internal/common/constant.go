package common

// RequestIDHeaderName carries the request correlation id (rqid) on HTTP
// requests/responses and as gRPC metadata.
const RequestIDHeaderName = "X-Request-ID"

// RequestIDMetadataKey is the lower-cased gRPC metadata form of RequestIDHeaderName.
const RequestIDMetadataKey = "x-request-id"
