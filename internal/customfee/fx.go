package customfee

import (
	"github.com/clearvia/payops/internal/customfee/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("customfee",
	fx.Provide(repository.Provide),
)
