// Package ports defines the driven-side interfaces of the pipeline:
// model completion and record persistence. Adapters under
// internal/adapters implement them; stages depend only on these
// contracts.
package ports
