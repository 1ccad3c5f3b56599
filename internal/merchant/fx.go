package merchant

import (
	"github.com/clearvia/payops/internal/merchant/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("merchant",
	fx.Provide(repository.Provide),
)
