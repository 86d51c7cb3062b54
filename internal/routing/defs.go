package routing

// Location is a single routing waypoint.
type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// ErrorResponse is the engine's non-OK response envelope:
// {error, status, request_had_excludes}.
type ErrorResponse struct {
	ErrorMessage       string `json:"error"`
	Status             int    `json:"status"`
	RequestHadExcludes bool   `json:"request_had_excludes"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return e.ErrorMessage
}
