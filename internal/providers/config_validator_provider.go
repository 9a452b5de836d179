package providers

import (
	"errors"
	"timeclock/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the rule tags on the config structs and the invariants
// the tags cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors.OneError()
	}

	if cv.conf.Session.Secret == "" {
		return errors.New("session.secret must be set outside debug mode")
	}
	if cv.conf.Identity.MaxPinAttempts <= 0 {
		return errors.New("identity.maxPinAttempts must be positive")
	}
	return nil
}
