package types

// Service is a task collaborator: a named group of task methods.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
