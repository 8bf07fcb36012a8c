package engine

import (
	"errors"

	"github.com/hlop3z/relite/internal/alerr"
)

func asAlerr(err error, target **alerr.Error) bool {
	return errors.As(err, target)
}
