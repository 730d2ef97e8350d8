// File: utils/constants.go
package utils

import "time"

// SSEHeartbeatInterval is how often the realtime subscription feed sends a
// keep-alive comment to detect dropped clients.
const SSEHeartbeatInterval = 25 * time.Second
