package clients

import "time"

const (
	POOL_MIN_CONNS = 1
	POOL_MAX_CONNS = 5

	LLM_REQUEST_TIMEOUT = 60 * time.Second
)
