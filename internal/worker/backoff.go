package worker

import "math"

// maxBackoffSeconds caps retries at one hour.
const maxBackoffSeconds = 3600

// Backoff returns the visibility timeout, in seconds, before retry number
// retryCount. It doubles from 20s and is capped at one hour.
func Backoff(retryCount int) int32 {
	backoff := math.Pow(2, float64(retryCount)) * 10
	if backoff > maxBackoffSeconds {
		return maxBackoffSeconds
	}
	return int32(backoff)
}
