package workflow

import "github.com/viant/smalltalk/service/meta"

type Option func(*Service)

// WithMetaService sets the meta service used to load definitions
func WithMetaService(meta *meta.Service) Option {
	return func(s *Service) {
		s.metaService = meta
	}
}
