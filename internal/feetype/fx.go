package feetype

import (
	"github.com/clearvia/payops/internal/feetype/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("feetype",
	fx.Provide(repository.Provide),
	fx.Provide(Load),
)
