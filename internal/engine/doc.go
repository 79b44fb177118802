// Package engine schedules artifact-generation tasks across a bounded
// pool of isolated workers. Tasks are partitioned into dependency-ordered
// waves; every task within a wave runs concurrently, waves run strictly
// in order, and individual task failures never abort the batch.
package engine
