// Package engine is the composition root that assembles chainy components
// from configuration. It loads YAML or environment configuration, constructs
// the configured model adapters through a provider factory registry, and
// builds retrieval chains — callers get ready-to-run adapters and chains and
// never wire providers directly.
package engine
