// Package domain holds the entities, the application stage machine, change
// events, and the repository contracts. It has no dependencies on transport
// or storage packages.
package domain
