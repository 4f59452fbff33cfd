package metrics

import "time"

// TrackDBOperation returns a completion callback recording the operation's
// duration and outcome. Call it, run the store operation, then invoke the
// callback with the resulting error.
func TrackDBOperation(operation string, table string) func(error) {
	startTime := time.Now()
	return func(err error) {
		duration := time.Since(startTime).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}
		DatabaseOperationsTotal.WithLabelValues(operation, table, status).Inc()
		DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
	}
}
