// Package notification exposes the notification service over JSON/HTTP.
//
// Routes, relative to the mount point:
//
//	POST   /                create a PENDING notification
//	GET    /failed          list FAILED notifications, oldest first
//	POST   /failed/retry    re-arm every FAILED notification with retries left
//	GET    /{id}            fetch one notification
//	PATCH  /{id}            update subject, content, metadata or max_retries
//	DELETE /{id}            delete, 204 on success
//	POST   /{id}/dispatch   deliver a PENDING notification now
//	POST   /{id}/retry      re-arm one FAILED notification
//
// Bodies are wrapped as {"data": ...} on success and
// {"error": {"code", "message", "details"}} on failure. Status codes:
// 422 validation_error, 404 not_found, 409 invalid_state or
// retry_limit_exceeded, 423 locked, 500 configuration_error,
// 502 delivery_failed (data still holds the FAILED record).
package notification
