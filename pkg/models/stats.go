package models

// EngineStats is a point-in-time health snapshot of the execution engine.
type EngineStats struct {
	// PoolSize is the total number of workers owned by the pool.
	PoolSize int `json:"pool_size"`
	// Available is the number of idle workers.
	Available int `json:"available"`
	// MemoryBytes is the current heap allocation of the process.
	MemoryBytes uint64 `json:"memory_bytes"`
}
