package exchangerate

import (
	"github.com/clearvia/payops/internal/exchangerate/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("exchangerate",
	fx.Provide(repository.Provide),
)
