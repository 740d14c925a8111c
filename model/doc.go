// Package model contains the in-memory representation of workflow
// definitions.
//
// A workflow is loaded from YAML (see service/dao/workflow) or assembled
// programmatically, then frozen with Build. The built definition is shared
// read-only by every execution; steps, retry policies and catch handlers live
// in the graph sub-package, task contracts and error taxonomy in types.
package model
