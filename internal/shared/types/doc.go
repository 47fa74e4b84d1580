// Package types provides shared data structures for the shell backend.
//
// Service Types:
//   - Service, Tool, Parameter: integration service definitions
//   - Context: caller information for a service call
//   - Result: the {success, data, error} envelope, with the HTTP status
//     carried out of band
//
// Request Types:
//   - ActionRequest: POST /api/:service bodies ({action, ...params})
//   - LaunchRequest, PointerRequest, ViewportRequest: window operations
//   - SaveSessionRequest: desktop layout snapshots
//
// Example Usage:
//
//	if missing {
//	    return types.FailureStatus(http.StatusUnauthorized, "missing signature")
//	}
//	return types.Success(map[string]interface{}{"identity": identity})
package types
