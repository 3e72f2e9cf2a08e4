// Package mock provides test doubles for the ai package interfaces.
// The mocks default to deterministic behavior and support custom behavior
// injection via function fields, so engine and pipeline tests run without
// any external AI service.
package mock
