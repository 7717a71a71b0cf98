package users

import (
	"go.uber.org/zap"

	"github.com/samplecodes/testkata/pkg/logger"
)

// Registrar creates user handles and logs each creation.
type Registrar struct {
	log *zap.Logger
}

// NewRegistrar creates a Registrar. A nil logger discards output.
func NewRegistrar(log *zap.Logger) *Registrar {
	return &Registrar{log: logger.OrNop(log)}
}

// CreateUser returns the handle for name.
func (r *Registrar) CreateUser(name string) string {
	r.log.Info("user created", zap.String("name", name))
	return "user-" + name
}
