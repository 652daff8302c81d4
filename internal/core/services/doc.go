// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never import an adapter; every dependency arrives through a
// port in internal/core/ports/driven.
package services
