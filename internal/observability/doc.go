// Package observability provides logging and metrics support for the job
// board service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//
// Add job post or broker context to a logger:
//
//	logger = observability.WithJobPostContext(logger, postID, userID)
//	logger = observability.WithEventContext(logger, topic, key)
//
// # Metrics
//
// Metrics register with the registry passed to NewMetrics:
//
//	metrics := observability.NewMetrics("job_board", prometheus.DefaultRegisterer)
//	metrics.RecordMutation("create", observability.OutcomeSuccess)
//
// A nil *Metrics is valid and records nothing.
//
// # Standard Fields
//
//   - request_id: HTTP request identifier
//   - user_id: Owner of the job post
//   - job_post_id: Job post identifier
//   - topic: Broker topic
//   - message_key: Broker message key (the job post id)
//   - index: Search index name
//   - document_id: Search document identifier
//   - partition, offset: Consumer position
package observability
